package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes, https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgErrorIs(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsUniqueViolationError reports whether err carries a postgres unique violation.
func IsUniqueViolationError(err error) bool {
	return pgErrorIs(err, pgUniqueViolation, "")
}

// IsUniqueViolationOf narrows IsUniqueViolationError down to a single constraint or unique index.
func IsUniqueViolationOf(err error, constraint string) bool {
	return pgErrorIs(err, pgUniqueViolation, constraint)
}

// IsForeignKeyViolationError reports whether err references a row that does not exist.
func IsForeignKeyViolationError(err error) bool {
	return pgErrorIs(err, pgForeignKeyViolation, "")
}
