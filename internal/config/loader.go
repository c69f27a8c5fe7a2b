package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// ProjectConfigFile is searched for in the working directory and its parents.
	ProjectConfigFile = "promptforge.yaml"
	// UserConfigDir is relative to the home directory.
	UserConfigDir = ".config/promptforge"
	// UserConfigFile lives in UserConfigDir.
	UserConfigFile = "config.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "PROMPTFORGE_"
)

// envBindings maps environment variables to config fields.
var envBindings = []struct {
	name string
	set  func(*Config, string)
}{
	{"STORAGE_BACKEND", func(c *Config, v string) { c.Storage.Backend = v }},
	{"DATA_DIR", func(c *Config, v string) { c.Storage.DataDir = v }},
	{"STORAGE_KEY", func(c *Config, v string) { c.Storage.Key = v }},
	{"DOWNLOAD_DIR", func(c *Config, v string) { c.Export.DownloadDir = v }},
	{"LOG_LEVEL", func(c *Config, v string) { c.Log.Level = v }},
	{"LOG_FORMAT", func(c *Config, v string) { c.Log.Format = v }},
	{"HTTP_ADDR", func(c *Config, v string) { c.HTTP.Addr = v }},
}

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger

	// Overridable for tests.
	homeDir string
	workDir string
	envFile string
}

// NewLoader creates a loader rooted at the user's home and working directory.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{logger: logger, envFile: ".env"}
	if home, err := os.UserHomeDir(); err == nil {
		l.homeDir = home
	}
	if cwd, err := os.Getwd(); err == nil {
		l.workDir = cwd
	}
	return l
}

// Load builds the configuration. explicit, when non-empty, names a file that
// must exist and is applied after the user and project files.
func (l *Loader) Load(explicit string) (*Config, error) {
	cfg := DefaultConfig()

	if path := l.userConfigPath(); path != "" {
		if userCfg, err := readLayer(path); err == nil {
			l.logger.Debug("loaded user config", "path", path)
			cfg.Merge(userCfg)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("failed to load user config", "path", path, "error", err)
		}
	}

	if path := l.findProjectConfig(); path != "" {
		if projectCfg, err := readLayer(path); err == nil {
			l.logger.Debug("loaded project config", "path", path)
			cfg.Merge(projectCfg)
		} else {
			l.logger.Warn("failed to load project config", "path", path, "error", err)
		}
	}

	if explicit != "" {
		explicitCfg, err := readLayer(explicit)
		if err != nil {
			return nil, err
		}
		cfg.Merge(explicitCfg)
	}

	if l.envFile != "" {
		// Existing environment variables win over the file.
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("failed to read env file", "path", l.envFile, "error", err)
		}
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	for _, b := range envBindings {
		if v, ok := os.LookupEnv(EnvPrefix + b.name); ok && v != "" {
			b.set(cfg, v)
		}
	}
}

func (l *Loader) userConfigPath() string {
	if l.homeDir == "" {
		return ""
	}
	return filepath.Join(l.homeDir, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for promptforge.yaml in the working directory
// and its parents.
func (l *Loader) findProjectConfig() string {
	if l.workDir == "" {
		return ""
	}
	dir := l.workDir
	for {
		path := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
