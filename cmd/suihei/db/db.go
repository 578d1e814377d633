// Package db provides suihei's Postgres datastore.
package db

import (
	"embed"

	igorm "github.com/tjper/suihei/internal/gorm"
	"github.com/tjper/suihei/internal/migrate"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens a connection with suihei's Postgres DB.
func Open(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	return igorm.Open(dsn, igorm.WithLogger(logger))
}

// Migrate migrates the gorm.DB utilizing the embedded migrations.
func Migrate(db *gorm.DB) error {
	dbconn, err := db.DB()
	if err != nil {
		return err
	}
	return migrate.Migrate(
		dbconn,
		migrations,
		"migrations",
		migrate.WithMigrationsTable("suihei_migrations"),
	)
}
