package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerConfig_IsValid(t *testing.T) {
	cfg := NewServerConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoadServerConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "column_index.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9090
data_dir: /var/lib/column-index
storage:
  backend: sqlite
logging:
  level: debug
  format: json
`), 0600))

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/var/lib/column-index", cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 4096, cfg.Storage.TokenizerCacheSize, "unset keys keep their defaults")
}

func TestLoadServerConfig_EnvOverrides(t *testing.T) {
	t.Setenv("COLUMN_INDEX_PORT", "7070")
	t.Setenv("COLUMN_INDEX_BACKEND", "SQLITE")
	t.Setenv("COLUMN_INDEX_DATA_DIR", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9090\n"), 0600))

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestLoadServerConfig_Errors(t *testing.T) {
	_, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("port: [1, 2"), 0600))
	_, err = LoadServerConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("storage:\n  backend: redis\n"), 0600))
	_, err = LoadServerConfig(invalid)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestServerConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ServerConfig)
	}{
		{"port zero", func(c *ServerConfig) { c.Port = 0 }},
		{"port too large", func(c *ServerConfig) { c.Port = 70000 }},
		{"empty data dir", func(c *ServerConfig) { c.DataDir = " " }},
		{"unknown backend", func(c *ServerConfig) { c.Storage.Backend = "bolt" }},
		{"negative cache", func(c *ServerConfig) { c.Storage.TokenizerCacheSize = -1 }},
		{"bad level", func(c *ServerConfig) { c.Logging.Level = "trace" }},
		{"bad format", func(c *ServerConfig) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewServerConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestServerConfig_WriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := NewServerConfig()
	cfg.Port = 9191
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := LoadServerConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
