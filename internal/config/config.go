// Package config loads the YAML configuration shared by the import CLI and
// the bridge server.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Import   ImportConfig  `yaml:"import"`
	Server   ServerConfig  `yaml:"server"`
	Preview  PreviewConfig `yaml:"preview"`
}

// ImportConfig tunes the import pipeline
type ImportConfig struct {
	FinalizeDelay time.Duration `yaml:"finalize_delay"`
	FullGradients bool          `yaml:"full_gradients"`
}

// ServerConfig configures the bridge server
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// PreviewConfig configures PNG page previews
type PreviewConfig struct {
	MaxSize    int    `yaml:"max_size"`
	Background string `yaml:"background"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Import: ImportConfig{
			FinalizeDelay: 500 * time.Millisecond,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			ReadTimeout: 30 * time.Second,
		},
		Preview: PreviewConfig{
			MaxSize:    2048,
			Background: "#ffffff",
		},
	}
}

// Load reads the configuration at path. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Type: NotFound, File: path, Message: "configuration file not found", Cause: err}
		}
		return nil, &ConfigError{Type: Invalid, File: path, Message: "failed to read configuration file", Cause: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
// An empty path also yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	cfg, err := Load(path)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Type == NotFound {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Type: Invalid, Message: "invalid YAML syntax", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fieldError("log_level", "must be one of debug, info, warn, error")
	}
	if c.Import.FinalizeDelay < 0 {
		return fieldError("import.finalize_delay", "delay cannot be negative")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fieldError("server.addr", "address cannot be empty")
	}
	if c.Server.ReadTimeout < 0 {
		return fieldError("server.read_timeout", "timeout cannot be negative")
	}
	if c.Preview.MaxSize < 1 {
		return fieldError("preview.max_size", "max size must be at least 1")
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// ParseLevel parses debug, info, warn or error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("unknown log level " + s)
	}
}
