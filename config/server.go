package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gcbaptista/go-column-index/store"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "column_index.yaml"

// ServerConfig is the configuration of the HTTP server and its database.
type ServerConfig struct {
	Port    int           `yaml:"port" json:"port"`
	DataDir string        `yaml:"data_dir" json:"data_dir"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// StorageConfig selects the posting backend.
type StorageConfig struct {
	Backend            string `yaml:"backend" json:"backend"`                           // "memory" (gob snapshots) or "sqlite"
	TokenizerCacheSize int    `yaml:"tokenizer_cache_size" json:"tokenizer_cache_size"` // Texts remembered per index column
	PersistOnShutdown  bool   `yaml:"persist_on_shutdown" json:"persist_on_shutdown"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text or json
}

// NewServerConfig returns the defaults.
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    8080,
		DataDir: "./data",
		Storage: StorageConfig{
			Backend:            store.BackendMemory,
			TokenizerCacheSize: 4096,
			PersistOnShutdown:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadServerConfig reads path over the defaults, then applies environment
// overrides and validates the result. An empty path tries DefaultConfigFile
// and falls back to the defaults when it does not exist.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := NewServerConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is provided by the operator
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies COLUMN_INDEX_* environment variables.
func (c *ServerConfig) applyEnvOverrides() {
	if v := os.Getenv("COLUMN_INDEX_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("COLUMN_INDEX_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("COLUMN_INDEX_BACKEND"); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("COLUMN_INDEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if err := store.ValidateBackend(c.Storage.Backend); err != nil {
		return err
	}
	if c.Storage.TokenizerCacheSize < 0 {
		return fmt.Errorf("tokenizer_cache_size must be non-negative, got %d", c.Storage.TokenizerCacheSize)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn' or 'error', got %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be 'text' or 'json', got %s", c.Logging.Format)
	}
	return nil
}

// WriteYAML writes the configuration to path.
func (c *ServerConfig) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
