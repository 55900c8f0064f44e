// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package app assembles the infrastructure shared by the API server and the
operator CLI.

It turns a [config.Config] into live connections and repositories:

  - Storage: PostgreSQL (pgxpool) or SQLite, selected by STORAGE_DRIVER.
  - Revocations: Redis when REDIS_URL is set, an in-process map otherwise.
  - Files: local directory or S3 bucket, selected by UPLOAD_BACKEND.

Nothing here holds business logic. Resources are released in reverse order of
acquisition by [Infrastructure.Close].
*/
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/lensfolio/internal/catalog"
	"github.com/taibuivan/lensfolio/internal/platform/config"
	"github.com/taibuivan/lensfolio/internal/platform/filestore"
	"github.com/taibuivan/lensfolio/internal/platform/migration"
	pgstore "github.com/taibuivan/lensfolio/internal/platform/postgres"
	redisstore "github.com/taibuivan/lensfolio/internal/platform/redis"
	"github.com/taibuivan/lensfolio/internal/platform/sqlite"
	"github.com/taibuivan/lensfolio/internal/users/auth"
)

// Options selects which optional resources [Open] acquires.
type Options struct {
	// Cache connects Redis (when configured) for token revocation.
	Cache bool

	// Files opens the upload file store.
	Files bool
}

// Infrastructure bundles the live resources and the repositories built on them.
type Infrastructure struct {
	Config *config.Config
	Logger *slog.Logger

	// Exactly one of Pool and DB is set, according to the storage driver.
	Pool *pgxpool.Pool
	DB   *sql.DB

	// Redis is nil when REDIS_URL is empty or the cache was not requested.
	Redis *goredis.Client

	// Files is nil when the file store was not requested.
	Files filestore.Store

	Users       auth.UserRepository
	Catalogs    catalog.Repository
	Revocations auth.RevocationStore

	closers []func()
}

// Open connects every resource requested by options. On failure, resources
// already acquired are released before the error is returned.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, options Options) (*Infrastructure, error) {
	infra := &Infrastructure{Config: cfg, Logger: logger}

	if err := infra.openStorage(ctx); err != nil {
		infra.Close()
		return nil, err
	}

	if options.Cache {
		if err := infra.openCache(ctx); err != nil {
			infra.Close()
			return nil, err
		}
	}

	if options.Files {
		if err := infra.openFiles(ctx); err != nil {
			infra.Close()
			return nil, err
		}
	}

	return infra, nil
}

func (infra *Infrastructure) openStorage(ctx context.Context) error {
	switch infra.Config.StorageDriver {
	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, infra.Config.DatabaseURL, infra.Logger)
		if err != nil {
			return fmt.Errorf("app: connect postgres: %w", err)
		}
		infra.Pool = pool
		infra.addCloser("postgres", func() error { pool.Close(); return nil })

		infra.Users = auth.NewPostgresUserRepository(pool)
		infra.Catalogs = catalog.NewPostgresRepository(pool)

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, infra.Config.SQLitePath)
		if err != nil {
			return fmt.Errorf("app: open sqlite: %w", err)
		}
		infra.DB = db
		infra.addCloser("sqlite", db.Close)

		infra.Users = auth.NewSQLiteUserRepository(db)
		infra.Catalogs = catalog.NewSQLiteRepository(db)

	default:
		return fmt.Errorf("app: unknown storage driver %q", infra.Config.StorageDriver)
	}

	infra.Logger.Info("storage_opened", slog.String("driver", infra.Config.StorageDriver))
	return nil
}

func (infra *Infrastructure) openCache(ctx context.Context) error {
	if infra.Config.RedisURL == "" {
		infra.Revocations = auth.NewMemoryRevocationStore()
		infra.Logger.Warn("revocation_store_in_memory", slog.String("reason", "REDIS_URL not set"))
		return nil
	}

	client, err := redisstore.NewClient(ctx, infra.Config.RedisURL, infra.Logger)
	if err != nil {
		return fmt.Errorf("app: connect redis: %w", err)
	}
	infra.Redis = client
	infra.addCloser("redis", client.Close)

	infra.Revocations = auth.NewRedisRevocationStore(client)
	return nil
}

func (infra *Infrastructure) openFiles(ctx context.Context) error {
	switch infra.Config.UploadBackend {
	case config.BackendLocal:
		store, err := filestore.NewLocalStore(infra.Config.UploadDir, infra.Logger)
		if err != nil {
			return fmt.Errorf("app: open upload dir: %w", err)
		}
		infra.Files = store

	case config.BackendS3:
		store, err := filestore.NewS3Store(ctx, filestore.S3Options{
			Bucket:          infra.Config.S3Bucket,
			Region:          infra.Config.S3Region,
			Endpoint:        infra.Config.S3Endpoint,
			AccessKeyID:     infra.Config.S3AccessKeyID,
			SecretAccessKey: infra.Config.S3SecretAccessKey,
			UsePathStyle:    infra.Config.S3UsePathStyle,
		})
		if err != nil {
			return fmt.Errorf("app: open s3 bucket: %w", err)
		}
		infra.Files = store

	default:
		return fmt.Errorf("app: unknown upload backend %q", infra.Config.UploadBackend)
	}

	infra.Logger.Info("file_store_opened", slog.String("backend", infra.Config.UploadBackend))
	return nil
}

// # Migrations

// Migrate applies the embedded migrations for the configured driver.
func (infra *Infrastructure) Migrate() error {
	if infra.DB != nil {
		return migration.RunSQLite(infra.DB, infra.Logger)
	}
	return migration.RunUp(infra.Config.DatabaseURL, infra.Logger)
}

// MigrationStatus reports the applied schema version.
func (infra *Infrastructure) MigrationStatus() (migration.Status, error) {
	if infra.DB != nil {
		return migration.SQLiteVersion(infra.DB, infra.Logger)
	}
	return migration.PostgresVersion(infra.Config.DatabaseURL, infra.Logger)
}

// # Health Checks

// CheckDatabase pings the active storage driver.
func (infra *Infrastructure) CheckDatabase(ctx context.Context) error {
	if infra.Pool != nil {
		return pgstore.Ping(ctx, infra.Pool)
	}
	if infra.DB != nil {
		return sqlite.Ping(ctx, infra.DB)
	}
	return errors.New("app: storage not opened")
}

// CheckCache pings Redis. The in-memory fallback is always healthy.
func (infra *Infrastructure) CheckCache(ctx context.Context) error {
	if infra.Redis == nil {
		return nil
	}
	return redisstore.Ping(ctx, infra.Redis)
}

// CheckFiles verifies the file store accepts writes.
func (infra *Infrastructure) CheckFiles(ctx context.Context) error {
	if infra.Files == nil {
		return errors.New("app: file store not opened")
	}
	return infra.Files.Ping(ctx)
}

// # Lifecycle

func (infra *Infrastructure) addCloser(name string, closeFunc func() error) {
	infra.closers = append(infra.closers, func() {
		infra.Logger.Info("closing_resource", slog.String("resource", name))
		if err := closeFunc(); err != nil {
			infra.Logger.Error("resource_close_failed", slog.String("resource", name), slog.Any("error", err))
		}
	})
}

// Close releases every resource in reverse order of acquisition. It is safe
// to call more than once.
func (infra *Infrastructure) Close() {
	for i := len(infra.closers) - 1; i >= 0; i-- {
		infra.closers[i]()
	}
	infra.closers = nil
}
