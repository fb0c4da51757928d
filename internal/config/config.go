// Package config loads application configuration from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	GitHubToken     string        `yaml:"github_token"`
	GitHubBaseURL   string        `yaml:"github_base_url"`
	ListenAddr      string        `yaml:"listen_addr"`
	DBPath          string        `yaml:"db_path"`
	Scheme          string        `yaml:"scheme"`
	LogLevel        slog.Level    `yaml:"-"`
	MessageLimit    int           `yaml:"message_limit"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// fileConfig mirrors Config with string fields where the YAML form needs parsing.
type fileConfig struct {
	Config   `yaml:",inline"`
	LogLevel string `yaml:"log_level"`
}

// HasGitHubCredentials reports whether a GitHub token is configured. Without
// one only public repositories can be loaded and nothing can be saved.
func (c *Config) HasGitHubCredentials() bool {
	return c.GitHubToken != ""
}

// Load builds the configuration. Values come from, in increasing precedence:
// defaults, the YAML file named by GHDOC_CONFIG, and GHDOC_* environment
// variables.
//
// Defaults: GHDOC_LISTEN_ADDR (127.0.0.1:8080), GHDOC_DB_PATH (ghdoc.db),
// GHDOC_SCHEME (gh), GHDOC_LOG_LEVEL (info), GHDOC_MESSAGE_LIMIT (50),
// GHDOC_SHUTDOWN_TIMEOUT (10s).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:      "127.0.0.1:8080",
		DBPath:          "ghdoc.db",
		Scheme:          "gh",
		LogLevel:        slog.LevelInfo,
		MessageLimit:    50,
		ShutdownTimeout: 10 * time.Second,
	}

	if path, ok := os.LookupEnv("GHDOC_CONFIG"); ok && path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Scheme == "" || strings.Contains(cfg.Scheme, "://") {
		return nil, fmt.Errorf("GHDOC_SCHEME has invalid value %q", cfg.Scheme)
	}
	if cfg.MessageLimit <= 0 {
		return nil, fmt.Errorf("GHDOC_MESSAGE_LIMIT must be positive, got %d", cfg.MessageLimit)
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	fc := fileConfig{Config: *cfg}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	*cfg = fc.Config
	if fc.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(fc.LogLevel)); err != nil {
			return fmt.Errorf("config file %s has invalid log_level %q: %w", path, fc.LogLevel, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var errs []error

	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setString("GHDOC_GITHUB_TOKEN", &cfg.GitHubToken)
	setString("GHDOC_GITHUB_BASE_URL", &cfg.GitHubBaseURL)
	setString("GHDOC_LISTEN_ADDR", &cfg.ListenAddr)
	setString("GHDOC_DB_PATH", &cfg.DBPath)
	setString("GHDOC_SCHEME", &cfg.Scheme)

	if v, ok := os.LookupEnv("GHDOC_LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("GHDOC_LOG_LEVEL has invalid level %q: %w", v, err))
		}
	}

	if v, ok := os.LookupEnv("GHDOC_MESSAGE_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("GHDOC_MESSAGE_LIMIT has invalid number %q: %w", v, err))
		} else {
			cfg.MessageLimit = n
		}
	}

	if v, ok := os.LookupEnv("GHDOC_SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("GHDOC_SHUTDOWN_TIMEOUT has invalid duration %q: %w", v, err))
		} else {
			cfg.ShutdownTimeout = d
		}
	}

	return errors.Join(errs...)
}
