// Package config resolves taskboard settings from defaults, an optional
// YAML file and TASKBOARD_* environment variables, in that order.
package config

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Backends.
const (
	BackendHTTP  = "http"
	BackendFiles = "files"
)

// Preference stores.
const (
	PrefsFile  = "file"
	PrefsRedis = "redis"
)

// Config is the full taskboard configuration.
type Config struct {
	Backend  string         `mapstructure:"backend"`
	API      APIConfig      `mapstructure:"api"`
	Files    FilesConfig    `mapstructure:"files"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Prefs    PrefsConfig    `mapstructure:"prefs"`
	Profile  string         `mapstructure:"profile"`
	LogLevel string         `mapstructure:"log_level"`
	PageSize PageSizeConfig `mapstructure:"page_size"`
}

// APIConfig locates the REST task service.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FilesConfig configures the offline markdown backend. An empty Dir means
// the profile directory.
type FilesConfig struct {
	Dir string `mapstructure:"dir"`
}

// RedisConfig enables the page cache and the shared preference store.
// Both stay off while URL is empty.
type RedisConfig struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

// PrefsConfig selects where the view mode is persisted.
type PrefsConfig struct {
	Store string `mapstructure:"store"`
}

// PageSizeConfig holds the page sizes of the list and board views.
type PageSizeConfig struct {
	List  int `mapstructure:"list"`
	Board int `mapstructure:"board"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendHTTP,
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 15 * time.Second,
		},
		Redis: RedisConfig{
			TTL: 30 * time.Second,
		},
		Prefs: PrefsConfig{
			Store: PrefsFile,
		},
		LogLevel: "warn",
		PageSize: PageSizeConfig{
			List:  12,
			Board: 100,
		},
	}
}

// Validate rejects settings the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendHTTP:
		if c.API.BaseURL == "" {
			return fmt.Errorf("api.base_url is required for the %s backend", BackendHTTP)
		}
	case BackendFiles:
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendHTTP, BackendFiles, c.Backend)
	}
	switch c.Prefs.Store {
	case PrefsFile:
	case PrefsRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("prefs.store %q requires redis.url", PrefsRedis)
		}
	default:
		return fmt.Errorf("prefs.store must be %q or %q, got %q", PrefsFile, PrefsRedis, c.Prefs.Store)
	}
	for name, size := range map[string]int{"page_size.list": c.PageSize.List, "page_size.board": c.PageSize.Board} {
		if size < 1 || size > 100 {
			return fmt.Errorf("%s must be between 1 and 100, got %d", name, size)
		}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the logrus level, defaulting to warn.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.WarnLevel
	}
	return level
}
