// ABOUTME: Configuration loading and parsing for the botino client
// ABOUTME: Supports YAML files with environment variable expansion and sensible defaults

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete botino client configuration
type Config struct {
	API     APIConfig     `yaml:"api"`
	Offline bool          `yaml:"offline"`
	State   StateConfig   `yaml:"state"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig holds backend connection configuration
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// StateConfig holds durable local state configuration
type StateConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultTimeout is used when api.timeout is not configured
const DefaultTimeout = 30 * time.Second

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// A missing file is not an error; defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err == nil {
		// Expand environment variables in the raw YAML content
		expandedData := expandEnvVars(string(data))

		if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// DefaultPath returns the default config file location,
// $XDG_CONFIG_HOME/botino/config.yaml or ~/.config/botino/config.yaml.
func DefaultPath() string {
	return filepath.Join(configDir(), "botino", "config.yaml")
}

// DefaultStatePath returns the default durable state database location.
func DefaultStatePath() string {
	return filepath.Join(configDir(), "botino", "state.db")
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config")
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills unset fields and parses raw duration strings.
func (c *Config) applyDefaults() error {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8000"
	}

	if c.API.TimeoutRaw != "" {
		d, err := time.ParseDuration(c.API.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing api.timeout %q: %w", c.API.TimeoutRaw, err)
		}
		c.API.Timeout = d
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultTimeout
	}

	if c.State.Path == "" {
		c.State.Path = DefaultStatePath()
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

// applyEnvOverrides lets environment variables win over file values,
// so one-off invocations can repoint the client without editing config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BOTINO_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("BOTINO_STATE_PATH"); v != "" {
		cfg.State.Path = v
	}
	if v := os.Getenv("BOTINO_OFFLINE"); v != "" {
		cfg.Offline = v == "true" || v == "1"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// SetupLogger builds a slog logger from the logging configuration.
func SetupLogger(cfg LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
