package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, 500, cfg.Ingest.ParseBatchSize)
	assert.Equal(t, 1<<20, cfg.Ingest.UploadChunkSize)
	assert.Equal(t, 5, cfg.Ingest.UploadTickPercent)
	assert.Equal(t, 95, cfg.Ingest.UploadTickCeiling)
	assert.Equal(t, 1, cfg.Ingest.ParseTickPercent)
	assert.Equal(t, 99, cfg.Ingest.ParseTickCeiling)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9999\ningest:\n  parse_batch_size: 50\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Ingest.ParseBatchSize)
	// untouched sections keep their defaults
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Ingest.UploadTickPercent)
}

func TestLoadExplicitMissingPathFails(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.User = "app"
	cfg.Database.Password = "secret"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = 3306
	cfg.Database.Name = "files"

	assert.Equal(t,
		"app:secret@tcp(localhost:3306)/files?charset=utf8mb4&parseTime=true&loc=UTC",
		cfg.DatabaseDSN())
}
