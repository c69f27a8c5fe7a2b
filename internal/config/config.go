// Package config loads promptforge settings.
//
// Precedence, lowest first: defaults, user file
// (~/.config/promptforge/config.yaml), project file (promptforge.yaml in
// the working directory or a parent), an explicit --config file, then
// PROMPTFORGE_* environment variables (a .env file is read first when
// present).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/promptforge/internal/storage"
	"github.com/HendryAvila/promptforge/internal/templates"
)

// Config is the full configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// StorageConfig selects where templates live.
type StorageConfig struct {
	// Backend is file, sqlite or memory.
	Backend string `yaml:"backend"`
	// DataDir holds the template file or database.
	DataDir string `yaml:"data_dir"`
	// Key is the slot key of the template collection.
	Key string `yaml:"key"`
}

// ExportConfig configures downloads.
type ExportConfig struct {
	DownloadDir string `yaml:"download_dir"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HTTPConfig configures the REST shell.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: string(storage.BackendFile),
			DataDir: defaultDataDir(),
			Key:     templates.DefaultKey,
		},
		Export: ExportConfig{DownloadDir: "."},
		Log:    LogConfig{Level: "info", Format: "text"},
		HTTP:   HTTPConfig{Addr: ":8080"},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".promptforge"
	}
	return filepath.Join(home, ".promptforge")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch storage.Backend(c.Storage.Backend) {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be file, sqlite or memory, got %q", c.Storage.Backend)
	}
	if c.Storage.Backend != string(storage.BackendMemory) && c.Storage.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key is required")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	return nil
}

// LoadFromFile reads a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// readLayer parses a file without defaults so Merge only sees the keys the
// file actually sets.
func readLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge overlays the non-zero values of other.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	mergeString(&c.Storage.Backend, other.Storage.Backend)
	mergeString(&c.Storage.DataDir, other.Storage.DataDir)
	mergeString(&c.Storage.Key, other.Storage.Key)
	mergeString(&c.Export.DownloadDir, other.Export.DownloadDir)
	mergeString(&c.Log.Level, other.Log.Level)
	mergeString(&c.Log.Format, other.Log.Format)
	mergeString(&c.HTTP.Addr, other.HTTP.Addr)
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
