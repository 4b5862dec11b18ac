package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "isora-app", cfg.Name)
	assert.Equal(t, "localhost:3000", cfg.Server.Addr())
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "/static", cfg.Assets.BaseURL)
	assert.False(t, cfg.Dev.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
name: blog
server:
  port: 8080
session:
  backend: redis
  redis_url: redis://localhost:6379/1
cache:
  enabled: true
  ttl: 10s
dev:
  enabled: true
  watch_dirs:
    - app
    - components
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "isora.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "blog", cfg.Name)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Session.RedisURL)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"app", "components"}, cfg.Dev.WatchDirs)
}

func TestLoadJSONFile(t *testing.T) {
	dir := t.TempDir()
	js := `{"name":"shop","server":{"host":"0.0.0.0","port":9000}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "isora.json"), []byte(js), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.Name)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ISORA_SERVER_PORT", "4040")
	t.Setenv("ISORA_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 4040, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "isora.yaml"), []byte("::: not yaml"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
