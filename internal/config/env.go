package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const namespace = "TASKBOARD"

// Env is the environment overlay. Unset variables keep the value from the
// file or the defaults.
type Env struct {
	Backend       string        `envconfig:"BACKEND"`
	APIBaseURL    string        `envconfig:"API_BASE_URL"`
	APIToken      string        `envconfig:"API_TOKEN"`
	APITimeout    time.Duration `envconfig:"API_TIMEOUT"`
	FilesDir      string        `envconfig:"FILES_DIR"`
	RedisURL      string        `envconfig:"REDIS_URL"`
	RedisTTL      time.Duration `envconfig:"REDIS_TTL"`
	PrefsStore    string        `envconfig:"PREFS_STORE"`
	Profile       string        `envconfig:"PROFILE"`
	LogLevel      string        `envconfig:"LOG_LEVEL"`
	ListPageSize  int           `envconfig:"PAGE_SIZE_LIST"`
	BoardPageSize int           `envconfig:"PAGE_SIZE_BOARD"`
}

// LoadEnv reads TASKBOARD_* variables.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func applyEnv(cfg *Config) error {
	env, err := LoadEnv()
	if err != nil {
		return err
	}
	setString(&cfg.Backend, env.Backend)
	setString(&cfg.API.BaseURL, env.APIBaseURL)
	setString(&cfg.API.Token, env.APIToken)
	setString(&cfg.Files.Dir, env.FilesDir)
	setString(&cfg.Redis.URL, env.RedisURL)
	setString(&cfg.Prefs.Store, env.PrefsStore)
	setString(&cfg.Profile, env.Profile)
	setString(&cfg.LogLevel, env.LogLevel)
	if env.APITimeout > 0 {
		cfg.API.Timeout = env.APITimeout
	}
	if env.RedisTTL > 0 {
		cfg.Redis.TTL = env.RedisTTL
	}
	if env.ListPageSize != 0 {
		cfg.PageSize.List = env.ListPageSize
	}
	if env.BoardPageSize != 0 {
		cfg.PageSize.Board = env.BoardPageSize
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
