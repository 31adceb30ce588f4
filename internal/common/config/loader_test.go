package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    host: localhost
    database: lumiere
    user: lumiere
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20, cfg.RateLimit.Limit)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.Equal(t, "memory", cfg.RateLimit.Backend)
	assert.Equal(t, "google/gemini-2.5-flash", cfg.AIGateway.Model)
	assert.Equal(t, "https://ai.gateway.lovable.dev/v1", cfg.AIGateway.BaseURL)
}

func TestLoadFromFile_MissingPostgresHost(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    database: lumiere
    user: lumiere
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.postgres.host")
}

func TestLoadFromFile_RedisBackendNeedsAddress(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    host: localhost
    database: lumiere
    user: lumiere
rate_limit:
  backend: redis
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.address")
}

func TestLoadFromFile_UnknownBackendRejected(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    host: localhost
    database: lumiere
    user: lumiere
rate_limit:
  backend: memcached
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, int64(1500), GetDuration(1500).Milliseconds())
}
