package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathYieldsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.quran.com/api/v4", cfg.API.BaseURL)
	assert.Equal(t, "https://verses.quran.com/", cfg.API.AudioBaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout())
	assert.Equal(t, 5.0, cfg.API.RequestsPerSecond)
	assert.Equal(t, 10, cfg.API.Burst)

	assert.Equal(t, 1, cfg.Reader.DefaultChapter)
	assert.Equal(t, 7, cfg.Reader.DefaultReciterID)
	assert.Equal(t, 131, cfg.Reader.DefaultTranslationID)
	assert.True(t, cfg.Reader.TranslationShown())
	assert.Equal(t, "en", cfg.Reader.Language)

	assert.Equal(t, 0.8, cfg.Playback.InitialVolume())
	assert.Equal(t, 250*time.Millisecond, cfg.Playback.TimeUpdateInterval())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
api:
  timeout_ms: 3000
reader:
  default_chapter: 36
  default_reciter_id: 2
  show_translation: false
playback:
  volume: 0
server:
  addr: ":9090"
  allowed_origins: ["http://localhost:5173"]
  hooks:
    on_started: ["echo started"]
tajweed:
  ghunnah:
    enabled: false
  qalaqah:
    color: "rgb(10, 20, 30)"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.API.Timeout())
	assert.Equal(t, 36, cfg.Reader.DefaultChapter)
	assert.Equal(t, 2, cfg.Reader.DefaultReciterID)
	assert.Equal(t, 131, cfg.Reader.DefaultTranslationID)
	assert.False(t, cfg.Reader.TranslationShown())
	assert.Equal(t, 0.0, cfg.Playback.InitialVolume())
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"echo started"}, cfg.Server.Hooks.OnStarted)

	settings, err := cfg.TajweedSettings()
	require.NoError(t, err)

	ghunnah, ok := settings.Rule("ghunnah")
	require.True(t, ok)
	assert.False(t, ghunnah.Enabled)

	qalaqah, ok := settings.Rule("qalaqah")
	require.True(t, ok)
	assert.True(t, qalaqah.Enabled)
	assert.Equal(t, "rgb(10, 20, 30)", qalaqah.Color)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QURAN_API_BASE_URL", "http://localhost:4000/api/v4")
	t.Setenv("QURAN_AUDIO_BASE_URL", "http://localhost:4000/audio/")
	t.Setenv("QURAN_READER_ADDR", ":7070")

	path := writeConfig(t, `
api:
  base_url: "https://api.quran.com/api/v4"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000/api/v4", cfg.API.BaseURL)
	assert.Equal(t, "http://localhost:4000/audio/", cfg.API.AudioBaseURL)
	assert.Equal(t, ":7070", cfg.Server.Addr)

	defaults, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", defaults.Server.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{
			name:   "chapter out of range",
			yaml:   "reader:\n  default_chapter: 115\n",
			errMsg: "DefaultChapter",
		},
		{
			name:   "volume above one",
			yaml:   "playback:\n  volume: 1.5\n",
			errMsg: "Volume",
		},
		{
			name:   "bad base url",
			yaml:   "api:\n  base_url: \"not a url\"\n",
			errMsg: "BaseURL",
		},
		{
			name:   "bad log level",
			yaml:   "log:\n  level: loud\n",
			errMsg: "Level",
		},
		{
			name:   "unknown tajweed rule",
			yaml:   "tajweed:\n  vibrato:\n    enabled: true\n",
			errMsg: "vibrato",
		},
		{
			name:   "tajweed settings of wrong type",
			yaml:   "tajweed:\n  ghunnah:\n    enabled: \"sometimes\"\n",
			errMsg: "ghunnah",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "reader: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}
