// Package config resolves strata's configuration from an optional YAML file,
// environment variables, and flag overrides. Precedence is flag > environment
// > file > default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/strata/internal/errors"
)

// Environment variable names.
const (
	EnvServerURL = "STRATA_SERVER_URL"
	EnvPlan      = "STRATA_PLAN"
	EnvLogLevel  = "STRATA_LOG_LEVEL"
	EnvLogFormat = "STRATA_LOG_FORMAT"
	EnvAddress   = "STRATA_ADDRESS"
)

// Defaults.
const (
	DefaultAddress   = "127.0.0.1:3000"
	DefaultServerURL = "http://127.0.0.1:3000"
	DefaultLogLevel  = "info"
)

// Config is the resolved configuration shared by the CLI and server commands.
type Config struct {
	// ServerURL is the base URL CLI commands talk to.
	ServerURL string `yaml:"server_url,omitempty"`
	// Plan is the default plan id used when a command names none.
	// Zero means no default.
	Plan int64 `yaml:"plan,omitempty"`
	// Address is the listen address for `strata serve`.
	Address string `yaml:"address,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
	// LogFormat is text or json.
	LogFormat string `yaml:"log_format,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ServerURL: DefaultServerURL,
		Address:   DefaultAddress,
		LogLevel:  DefaultLogLevel,
		LogFormat: "text",
	}
}

// DefaultPath returns the conventional config file location
// (~/.strata/config.yaml), or empty when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".strata", "config.yaml")
}

// Load resolves the configuration. A missing file at the default location is
// not an error; a missing file at an explicitly requested path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.loadFile(path, explicit); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return errors.Wrap(errors.ErrCodeConfigRead, fmt.Sprintf("read config file %s", path), err).
			WithSuggestion("Create it with 'strata config init' or pass --config")
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("parse config file %s", path), err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvServerURL); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv(EnvPlan); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			c.Plan = id
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv(EnvAddress); v != "" {
		c.Address = v
	}
}

// Validate checks field values without touching the filesystem.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown log level %q", c.LogLevel)).
			WithSuggestion("Use debug, info, warn, or error")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown log format %q", c.LogFormat)).
			WithSuggestion("Use text or json")
	}
	if c.Plan < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "plan id must be positive")
	}
	if c.ServerURL != "" && !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("server_url %q must start with http:// or https://", c.ServerURL))
	}
	return nil
}

// Write saves the configuration to path, creating parent directories.
func (c *Config) Write(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return errors.New(errors.ErrCodeConfigRead, "cannot determine config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeConfigRead, "create config directory", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "encode config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeConfigRead, fmt.Sprintf("write config file %s", path), err)
	}
	return nil
}
