package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "newleadsdaily.db", cfg.Store.DatabaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10, cfg.Match.BatchSize)
	assert.Equal(t, 4, cfg.Import.MaxConcurrent)
	assert.Equal(t, 2.0, cfg.Feed.RequestsPerSec)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
store:
  driver: postgres
  database_url: postgres://localhost/newleads
server:
  port: 9090
match:
  batch_size: 25
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/newleads", cfg.Store.DatabaseURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Match.BatchSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Sections absent from the file keep their defaults.
	assert.Equal(t, 4, cfg.Import.MaxConcurrent)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NEWLEADS_STORE_DRIVER", "memory")
	t.Setenv("NEWLEADS_MATCH_BATCH_SIZE", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Match.BatchSize)
}

func TestDefaultMatchesLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, loaded, Default())
}

func TestInitLoggerRejectsBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	require.Error(t, err)

	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
