// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration provides a thin wrapper around golang-migrate for
// running database schema migrations.
//
// # Architecture
//
// The SQL files are embedded into the binary, one directory per storage driver,
// so the server and the operator CLI apply the same schema without a
// migrations folder on disk.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql sqlite/*.sql
var migrationsFS embed.FS

// Status describes the schema version of a database.
type Status struct {
	Version uint `json:"version" yaml:"version"`
	Dirty   bool `json:"dirty"   yaml:"dirty"`
}

// # PostgreSQL

// RunUp applies all pending UP migrations to a PostgreSQL database.
//
// # Parameters
//   - dsn: A libpq-compatible DSN or postgres:// URL.
//   - logger: Structured logger for migration events.
func RunUp(dsn string, logger *slog.Logger) error {
	migrator, err := newPostgresMigrator(dsn, logger)
	if err != nil {
		return err
	}
	defer closeMigrator(migrator, logger)

	return apply(migrator, logger)
}

// PostgresVersion reports the applied schema version of a PostgreSQL database.
func PostgresVersion(dsn string, logger *slog.Logger) (Status, error) {
	migrator, err := newPostgresMigrator(dsn, logger)
	if err != nil {
		return Status{}, err
	}
	defer closeMigrator(migrator, logger)

	return version(migrator)
}

func newPostgresMigrator(dsn string, logger *slog.Logger) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationsFS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("migration: failed to open embedded source: %w", err)
	}

	// golang-migrate pgx/v5 driver expects "pgx5://" scheme.
	migrator, err := migrate.NewWithSourceInstance("iofs", sourceDriver, convertToPgx5DSN(dsn))
	if err != nil {
		_ = sourceDriver.Close()
		return nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}

	migrator.Log = &migrateLogger{logger: logger}
	return migrator, nil
}

func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceError, dbError := migrator.Close()
	if sourceError != nil {
		logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
	}
	if dbError != nil {
		logger.Error("migration_db_close_failed", slog.Any("error", dbError))
	}
}

// # SQLite

// RunSQLite applies all pending UP migrations to an open SQLite database.
//
// The migrator is deliberately not closed: closing it would close db, which
// the caller still owns.
func RunSQLite(db *sql.DB, logger *slog.Logger) error {
	migrator, sourceDriver, err := newSQLiteMigrator(db, logger)
	if err != nil {
		return err
	}
	defer closeSource(sourceDriver, logger)

	return apply(migrator, logger)
}

// SQLiteVersion reports the applied schema version of an open SQLite database.
func SQLiteVersion(db *sql.DB, logger *slog.Logger) (Status, error) {
	migrator, sourceDriver, err := newSQLiteMigrator(db, logger)
	if err != nil {
		return Status{}, err
	}
	defer closeSource(sourceDriver, logger)

	return version(migrator)
}

func newSQLiteMigrator(db *sql.DB, logger *slog.Logger) (*migrate.Migrate, source.Driver, error) {
	sourceDriver, err := iofs.New(migrationsFS, "sqlite")
	if err != nil {
		return nil, nil, fmt.Errorf("migration: failed to open embedded source: %w", err)
	}

	databaseDriver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		_ = sourceDriver.Close()
		return nil, nil, fmt.Errorf("migration: failed to wrap sqlite database: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", databaseDriver)
	if err != nil {
		_ = sourceDriver.Close()
		return nil, nil, fmt.Errorf("migration: failed to initialize: %w", err)
	}

	migrator.Log = &migrateLogger{logger: logger}
	return migrator, sourceDriver, nil
}

func closeSource(sourceDriver source.Driver, logger *slog.Logger) {
	if err := sourceDriver.Close(); err != nil {
		logger.Error("migration_source_close_failed", slog.Any("error", err))
	}
}

// # Shared Steps

func apply(migrator *migrate.Migrate, logger *slog.Logger) error {
	currentVersion, isDirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to get current version: %w", err)
	}

	if isDirty {
		return fmt.Errorf("migration: database is in a dirty state at version %d (manual intervention required)", currentVersion)
	}

	logger.Info("migration_started", slog.Int("current_version", int(currentVersion)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	newVersion, _, _ := migrator.Version()
	logger.Info("migration_successful",
		slog.Int("from_version", int(currentVersion)),
		slog.Int("to_version", int(newVersion)),
	)

	return nil
}

func version(migrator *migrate.Migrate) (Status, error) {
	current, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("migration: failed to get current version: %w", err)
	}
	return Status{Version: current, Dirty: dirty}, nil
}

// convertToPgx5DSN ensures the DSN uses the pgx5:// scheme required by golang-migrate/v4.
func convertToPgx5DSN(dsn string) string {
	const pgx5Prefix = "pgx5://"

	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(dsn, prefix); found {
			return pgx5Prefix + rest
		}
	}

	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
