package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending embedded migrations to the database at dsn.
func Migrate(ctx context.Context, dsn string) error {
	return runGoose(ctx, dsn, func(sqlDB *sql.DB) error {
		return goose.UpContext(ctx, sqlDB, "migrations")
	})
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, dsn string) error {
	return runGoose(ctx, dsn, func(sqlDB *sql.DB) error {
		return goose.DownContext(ctx, sqlDB, "migrations")
	})
}

// MigrationStatus logs the applied state of every migration.
func MigrationStatus(ctx context.Context, dsn string) error {
	return runGoose(ctx, dsn, func(sqlDB *sql.DB) error {
		return goose.StatusContext(ctx, sqlDB, "migrations")
	})
}

func runGoose(ctx context.Context, dsn string, run func(sqlDB *sql.DB) error) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Warnf("close migrations db: %s", err)
		}
	}()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db for migrations: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(log.StandardLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := run(sqlDB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
