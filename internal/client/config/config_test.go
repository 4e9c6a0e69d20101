package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://story-api.dicoding.dev/v1", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.API.Retry.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Sync.Interval)
	assert.Equal(t, "storypin-v1", cfg.Cache.Name)
	assert.Equal(t, "/index.html", cfg.Cache.ShellPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.Database.Path)
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: https://stories.example.com/v2
  timeout: 5s
sync:
  interval: 2m
cache:
  precache:
    - /
    - /app.js
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://stories.example.com/v2", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, []string{"/", "/app.js"}, cfg.Cache.Precache)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched values still get defaults.
	assert.Equal(t, 2, cfg.API.Retry.MaxAttempts)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("STORYPIN_DB", "/tmp/custom.db")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  path: $STORYPIN_DB\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.Database.Path)
}

func TestLoad_MalformedYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [not a mapping"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
