package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, DefaultSnapshotPath, cfg.Storage.Path)
	assert.Equal(t, "clima_organizacional_responses", cfg.Storage.RedisKey)
	assert.Equal(t, 12*time.Hour, cfg.Dashboard.TokenTTL)
	assert.True(t, cfg.Survey.RequireComplete)
	assert.Equal(t, 5, cfg.Survey.RecentCount)
	assert.Equal(t, 10, cfg.Survey.EvolutionWindow)
	assert.Empty(t, cfg.Survey.Questions)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  addr: ":9090"
storage:
  backend: sqlite
  path: /tmp/clima.db
survey:
  require_complete: false
  questions:
    - id: q1
      category: comunicacao
      weight: 1.5
      text_i18n:
        en: "Clear goals"
        pt: "Metas claras"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("CLIMA_SERVER_ADDR", ":7070")
	t.Setenv("CLIMA_LOG_LEVEL", "debug")
	t.Setenv("CLIMA_SERVER_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.False(t, cfg.Survey.RequireComplete)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	require.Len(t, cfg.Survey.Questions, 1)
	assert.Equal(t, "Metas claras", cfg.Survey.Questions[0].TextI18n["pt"])
	assert.Equal(t, 1.5, cfg.Survey.Questions[0].Weight)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CLIMA_STORAGE_BACKEND=memory\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CLIMA_STORAGE_BACKEND") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":  {"CLIMA_STORAGE_BACKEND": "postgres"},
		"redis needs addr": {"CLIMA_STORAGE_BACKEND": "redis"},
		"bad log level":    {"CLIMA_LOG_LEVEL": "verbose"},
		"both passwords":   {"CLIMA_DASHBOARD_PASSWORD": "x", "CLIMA_DASHBOARD_PASSWORD_HASH": "y"},
		"zero rate":        {"CLIMA_RATE_LIMIT_RPS": "0"},
		"sqlite on json":   {"CLIMA_STORAGE_BACKEND": "sqlite", "CLIMA_STORAGE_PATH": "data/clima_organizacional_responses.json"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsInvalidQuestion(t *testing.T) {
	dir := t.TempDir()
	yaml := `
survey:
  questions:
    - id: q1
      category: comunicacao
      weight: 0
      text_i18n:
        en: "x"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadSQLiteGetsItsOwnDefaultPath(t *testing.T) {
	t.Setenv("CLIMA_STORAGE_BACKEND", "sqlite")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultSQLitePath, cfg.Storage.Path)
	assert.NotEqual(t, DefaultSnapshotPath, cfg.Storage.Path)
}
