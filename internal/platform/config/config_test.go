// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/lensfolio/internal/platform/config"
)

/*
TestParse_Defaults verifies the defaults applied on top of the required settings.
*/
func TestParse_Defaults(t *testing.T) {
	t.Setenv("SIGNING_KEY", "test-signing-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/lensfolio")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, config.DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, config.BackendLocal, cfg.UploadBackend)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.MigrateOnStart)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestParse_MissingSigningKey ensures the signing key is mandatory.
*/
func TestParse_MissingSigningKey(t *testing.T) {
	t.Setenv("SIGNING_KEY", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/lensfolio")

	_, err := config.Parse()
	assert.Error(t, err)
}

/*
TestValidate_DriverRules checks the storage and upload selector combinations.
*/
func TestValidate_DriverRules(t *testing.T) {
	base := func() config.Config {
		return config.Config{
			StorageDriver:  config.DriverSQLite,
			SQLitePath:     "lensfolio.db",
			UploadBackend:  config.BackendLocal,
			UploadDir:      "uploads",
			MaxUploadBytes: 1024,
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr bool
	}{
		{"sqlite_local_ok", func(cfg *config.Config) {}, false},
		{"postgres_without_url", func(cfg *config.Config) { cfg.StorageDriver = config.DriverPostgres }, true},
		{"unknown_driver", func(cfg *config.Config) { cfg.StorageDriver = "mongo" }, true},
		{"s3_without_bucket", func(cfg *config.Config) { cfg.UploadBackend = config.BackendS3 }, true},
		{"s3_with_bucket", func(cfg *config.Config) {
			cfg.UploadBackend = config.BackendS3
			cfg.S3Bucket = "portfolio"
		}, false},
		{"zero_upload_limit", func(cfg *config.Config) { cfg.MaxUploadBytes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
