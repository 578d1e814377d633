// Package migrate applies SQL migrations to a Postgres database.
package migrate

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrate migrates the DB with the migration files found at path within
// fsys. This is typically used with an embed.FS holding the migrations.
func Migrate(dbconn *sql.DB, fsys fs.FS, path string, options ...Option) error {
	cfg := &postgres.Config{
		MigrationsTable: "migrations",
	}
	for _, option := range options {
		option(cfg)
	}

	source, err := iofs.New(fsys, path)
	if err != nil {
		return fmt.Errorf("open migrations source; error: %w", err)
	}

	driver, err := postgres.WithInstance(dbconn, cfg)
	if err != nil {
		return err
	}

	migration, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}

	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

type Option func(*postgres.Config)

func WithMigrationsTable(name string) Option {
	return func(c *postgres.Config) {
		c.MigrationsTable = name
	}
}
