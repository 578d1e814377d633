// Package gorm contains general logic for interacting with a Postgres
// datastore with GORM (https://gorm.io/).
package gorm

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a connection with the specified DSN.
func Open(dsn string, options ...Option) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: NewLogger(zap.NewNop(), 200*time.Millisecond),
	}

	for _, option := range options {
		option(cfg)
	}

	return gorm.Open(postgres.Open(dsn), cfg)
}

// Option is a function that mutates the passed *gorm.Config instance. This is
// typically used with Open.
type Option func(*gorm.Config)

// WithLogger creates an Option that configures *gorm.Config to log through
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *gorm.Config) {
		c.Logger = NewLogger(logger, 200*time.Millisecond)
	}
}

// WithDryRun creates an Option that configures *gorm.Config to build
// statements without executing them.
func WithDryRun() Option {
	return func(c *gorm.Config) {
		c.DryRun = true
	}
}

// OpenDryRun opens a *gorm.DB that builds Postgres statements without a
// database connection. This is typically used to assert generated SQL in
// unit-tests.
func OpenDryRun() (*gorm.DB, error) {
	return gorm.Open(
		postgres.New(postgres.Config{DSN: "host=localhost"}),
		&gorm.Config{
			DryRun:               true,
			DisableAutomaticPing: true,
			Logger:               NewLogger(zap.NewNop(), time.Second),
		},
	)
}
