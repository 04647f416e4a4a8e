// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/BadrElyatim/quran-app/internal/domain/tajweed"
)

// Config represents the application configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Reader   ReaderConfig   `yaml:"reader"`
	Playback PlaybackConfig `yaml:"playback"`
	Tajweed  map[string]any `yaml:"tajweed"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig represents Quran.com API configuration.
type APIConfig struct {
	BaseURL           string  `yaml:"base_url" default:"https://api.quran.com/api/v4" validate:"required,url"`
	AudioBaseURL      string  `yaml:"audio_base_url" default:"https://verses.quran.com/" validate:"required,url"`
	TimeoutMs         int     `yaml:"timeout_ms" default:"10000" validate:"gte=100,lte=120000"`
	RequestsPerSecond float64 `yaml:"requests_per_second" default:"5" validate:"gt=0"`
	Burst             int     `yaml:"burst" default:"10" validate:"gte=1"`
}

// Timeout returns the request timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ReaderConfig represents the initial reader selection.
type ReaderConfig struct {
	DefaultChapter       int    `yaml:"default_chapter" default:"1" validate:"gte=1,lte=114"`
	DefaultReciterID     int    `yaml:"default_reciter_id" default:"7" validate:"gte=1"`
	DefaultTranslationID int    `yaml:"default_translation_id" default:"131" validate:"gte=1"`
	ShowTranslation      *bool  `yaml:"show_translation" default:"true"`
	Language             string `yaml:"language" default:"en" validate:"required"`
}

// TranslationShown reports whether translations are shown initially.
func (c ReaderConfig) TranslationShown() bool {
	return c.ShowTranslation == nil || *c.ShowTranslation
}

// PlaybackConfig represents playback configuration.
type PlaybackConfig struct {
	Volume               *float64 `yaml:"volume" default:"0.8" validate:"required,gte=0,lte=1"`
	TimeUpdateIntervalMs int      `yaml:"time_update_interval_ms" default:"250" validate:"gte=10,lte=5000"`
}

// InitialVolume returns the configured volume.
func (c PlaybackConfig) InitialVolume() float64 {
	if c.Volume == nil {
		return 0.8
	}
	return *c.Volume
}

// TimeUpdateInterval returns the time update interval of audio transports.
func (c PlaybackConfig) TimeUpdateInterval() time.Duration {
	return time.Duration(c.TimeUpdateIntervalMs) * time.Millisecond
}

// ServerConfig represents HTTP API server configuration.
type ServerConfig struct {
	Addr           string      `yaml:"addr" default:":8080"`
	AllowedOrigins []string    `yaml:"allowed_origins"`
	Hooks          HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"stderr"`
}

// RuleOverride represents per-rule tajweed settings.
type RuleOverride struct {
	Enabled *bool  `mapstructure:"enabled"`
	Color   string `mapstructure:"color"`
}

// Default returns the configuration with every default applied.
func Default() (*Config, error) {
	var cfg Config
	cfg.overrideFromEnv()
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file. An empty path yields the
// defaults. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("QURAN_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("QURAN_AUDIO_BASE_URL"); v != "" {
		c.API.AudioBaseURL = v
	}
	if v := os.Getenv("QURAN_READER_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if _, err := c.RuleOverrides(); err != nil {
		return err
	}
	return nil
}

// RuleOverrides decodes the tajweed section. Keys must be known rule ids.
func (c *Config) RuleOverrides() (map[string]RuleOverride, error) {
	known := make(map[string]bool)
	for _, r := range tajweed.DefaultRules() {
		known[r.ID] = true
	}

	overrides := make(map[string]RuleOverride, len(c.Tajweed))
	for id, raw := range c.Tajweed {
		if !known[id] {
			return nil, errors.Newf("tajweed: unknown rule %q", id)
		}
		var o RuleOverride
		if err := mapstructure.Decode(raw, &o); err != nil {
			return nil, errors.Wrapf(err, "tajweed: failed to decode settings of %s", id)
		}
		overrides[id] = o
	}
	return overrides, nil
}

// TajweedSettings returns the rule catalogue with configured overrides applied.
func (c *Config) TajweedSettings() (*tajweed.Settings, error) {
	overrides, err := c.RuleOverrides()
	if err != nil {
		return nil, err
	}

	settings := tajweed.NewSettings(tajweed.DefaultRules())
	for id, o := range overrides {
		if o.Enabled != nil {
			settings.SetEnabled(id, *o.Enabled)
		}
		if o.Color != "" {
			settings.SetColor(id, o.Color)
		}
	}
	return settings, nil
}
