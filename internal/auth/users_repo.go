package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/lumberjacked/internal/db"
	"github.com/2beens/lumberjacked/internal/ids"
	"github.com/2beens/lumberjacked/internal/telemetry/tracing"
	"github.com/2beens/lumberjacked/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

// emailIndex enforces case-insensitive email uniqueness, see migrations
const emailIndex = "app_user_email_lower_idx"

type UsersRepo struct {
	db    db.Pool
	newID ids.Generator
}

func NewUsersRepo(dbPool db.Pool, newID ids.Generator) *UsersRepo {
	return &UsersRepo{
		db:    dbPool,
		newID: newID,
	}
}

func isEmailTaken(err error) bool {
	return pkg.IsUniqueViolationOf(err, emailIndex)
}

func (r *UsersRepo) Add(ctx context.Context, u User) (_ User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	// only primary key collisions are worth another id
	isIDCollision := func(err error) bool {
		return pkg.IsUniqueViolationError(err) && !isEmailTaken(err)
	}

	u.ID, err = ids.Insert(r.newID, isIDCollision, func(id int64) error {
		_, err := r.db.Exec(
			ctx,
			`INSERT INTO app_user (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
			id, u.Email, u.PasswordHash, u.CreatedAt,
		)
		return err
	})
	if err != nil {
		if isEmailTaken(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

func (r *UsersRepo) Get(ctx context.Context, id int64) (_ User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("user.id", id))

	var u User
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, email, password_hash, created_at FROM app_user WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("user [query row]: %w", err)
	}

	return u, nil
}

// GetByEmail looks the user up ignoring the email's case.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (_ User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get_by_email")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var u User
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, email, password_hash, created_at FROM app_user WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("user by email [query row]: %w", err)
	}

	return u, nil
}
