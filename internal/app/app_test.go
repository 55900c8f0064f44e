// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package app_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lensfolio/internal/app"
	"github.com/taibuivan/lensfolio/internal/platform/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	return &config.Config{
		StorageDriver:  config.DriverSQLite,
		SQLitePath:     filepath.Join(dir, "data", "lensfolio.db"),
		UploadBackend:  config.BackendLocal,
		UploadDir:      filepath.Join(dir, "uploads"),
		MaxUploadBytes: 5 << 20,
	}
}

/*
TestOpen_SQLiteLocal assembles the embedded stack and runs every health check.
*/
func TestOpen_SQLiteLocal(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	infra, err := app.Open(ctx, sqliteConfig(t), logger, app.Options{Cache: true, Files: true})
	require.NoError(t, err)
	defer infra.Close()

	require.NoError(t, infra.Migrate())

	status, err := infra.MigrationStatus()
	require.NoError(t, err)
	assert.Equal(t, uint(1), status.Version)
	assert.False(t, status.Dirty)

	assert.Nil(t, infra.Pool)
	assert.Nil(t, infra.Redis)
	assert.NotNil(t, infra.DB)
	assert.NotNil(t, infra.Users)
	assert.NotNil(t, infra.Catalogs)
	assert.NotNil(t, infra.Revocations)

	assert.NoError(t, infra.CheckDatabase(ctx))
	assert.NoError(t, infra.CheckCache(ctx))
	assert.NoError(t, infra.CheckFiles(ctx))

	infra.Close()
	assert.Error(t, infra.CheckDatabase(ctx))
}

/*
TestOpen_WithoutFiles leaves optional resources unset.
*/
func TestOpen_WithoutFiles(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	infra, err := app.Open(context.Background(), sqliteConfig(t), logger, app.Options{})
	require.NoError(t, err)
	defer infra.Close()

	assert.Nil(t, infra.Files)
	assert.Nil(t, infra.Revocations)
	assert.Error(t, infra.CheckFiles(context.Background()))
}

/*
TestOpen_UnknownDriver rejects drivers the assembly does not know.
*/
func TestOpen_UnknownDriver(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.StorageDriver = "mongo"

	_, err := app.Open(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), app.Options{})
	assert.Error(t, err)
}
