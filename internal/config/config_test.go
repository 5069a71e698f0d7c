package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abatilo/taskboard/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolateHome(t)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 12, cfg.PageSize.List)
	assert.Equal(t, 100, cfg.PageSize.Board)
	assert.Equal(t, log.WarnLevel, cfg.Level())
}

func TestLoadFile(t *testing.T) {
	isolateHome(t)
	path := writeConfig(t, `
backend: files
api:
  base_url: https://tasks.example.com/api
  timeout: 5s
files:
  dir: /tmp/tasks
redis:
  url: redis://localhost:6379/0
  ttl: 1m
prefs:
  store: redis
log_level: debug
page_size:
  list: 20
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendFiles, cfg.Backend)
	assert.Equal(t, "https://tasks.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/tmp/tasks", cfg.Files.Dir)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, config.PrefsRedis, cfg.Prefs.Store)
	assert.Equal(t, 20, cfg.PageSize.List)
	assert.Equal(t, 100, cfg.PageSize.Board)
	assert.Equal(t, log.DebugLevel, cfg.Level())
}

func TestLoadGlobalFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".taskboard"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".taskboard", "config.yaml"), []byte("profile: work\n"), 0o644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "work", cfg.Profile)
}

func TestEnvOverridesFile(t *testing.T) {
	isolateHome(t)
	path := writeConfig(t, "api:\n  token: from-file\nprofile: home\n")
	t.Setenv("TASKBOARD_API_TOKEN", "from-env")
	t.Setenv("TASKBOARD_PAGE_SIZE_BOARD", "50")
	t.Setenv("TASKBOARD_API_TIMEOUT", "3s")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.Token)
	assert.Equal(t, "home", cfg.Profile)
	assert.Equal(t, 50, cfg.PageSize.Board)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
}

func TestLoadErrors(t *testing.T) {
	isolateHome(t)

	tests := []struct {
		name    string
		content string
		env     map[string]string
		want    string
	}{
		{"bad backend", "backend: sqlite\n", nil, "backend must be"},
		{"redis prefs without url", "prefs:\n  store: redis\n", nil, "requires redis.url"},
		{"page size too big", "page_size:\n  board: 500\n", nil, "page_size.board"},
		{"bad log level", "log_level: loud\n", nil, "log_level"},
		{"bad env int", "", map[string]string{"TASKBOARD_PAGE_SIZE_LIST": "many"}, "failed to load env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolateHome(t)
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
