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

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8790, cfg.HTTP.Port)
	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.NotEmpty(t, cfg.Data.Dir)
	assert.Equal(t, filepath.Join(cfg.Data.Dir, "paperflow.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join(cfg.Data.Dir, "settings.json"), cfg.SettingsPath())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
http:
  port: 9100
data:
  dir: /var/lib/paperflow
search:
  default_limit: 50
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, "/var/lib/paperflow", cfg.Data.Dir)
	assert.Equal(t, 50, cfg.Search.DefaultLimit)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("PF_TEST_DIR", "/srv/papers")
	path := writeConfig(t, `
data:
  dir: ${PF_TEST_DIR}
http:
  port: ${PF_TEST_PORT:-9200}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/papers", cfg.Data.Dir)
	assert.Equal(t, 9200, cfg.HTTP.Port)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
search:
  default_limit: 500
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_limit")

	path = writeConfig(t, `
logging:
  level: loud
`)
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}
