package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/alexivanou/gans/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
)

// SourceURL returns the migration source for the dialect of cfg,
// rooted at dir (e.g. "migrations").
func SourceURL(dir string, cfg config.DBConfig) string {
	sub := "postgres"
	if cfg.IsSQLite() {
		sub = "sqlite"
	}
	return "file://" + filepath.ToSlash(filepath.Join(dir, sub))
}

// NewMigrator returns a migrate instance bound to an open connection.
// Closing it closes db as well.
func NewMigrator(db *sqlx.DB, cfg config.DBConfig, dir string) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		name   string
		err    error
	)

	if cfg.IsSQLite() {
		name = "sqlite3"
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	} else {
		name = "postgres"
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s migration driver: %w", name, err)
	}

	m, err := migrate.NewWithDatabaseInstance(SourceURL(dir, cfg), name, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies all pending up migrations on an open connection. The
// migrator is intentionally not closed since that would close db too.
func Migrate(db *sqlx.DB, cfg config.DBConfig, dir string) error {
	m, err := NewMigrator(db, cfg, dir)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
