// Package config provides configuration loading from YAML files.
package config

import (
	"io/fs"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sparshik/automedia/internal/domain/track"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig               `yaml:"server"`
	Catalog    []TrackConfig              `yaml:"catalog" validate:"dive"`
	Playback   PlaybackConfig             `yaml:"playback"`
	Publishers map[string]PublisherConfig `yaml:"publishers"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8080"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// TrackConfig represents a single catalog entry.
type TrackConfig struct {
	ID         string `yaml:"id" validate:"required"`
	Title      string `yaml:"title" validate:"required"`
	Artist     string `yaml:"artist"`
	DurationMs int64  `yaml:"duration_ms" validate:"gte=0"`
}

// PlaybackConfig represents playback control configuration.
type PlaybackConfig struct {
	Rate float64 `yaml:"rate" default:"1.0" validate:"gt=0,lte=4"`
}

// PublisherConfig represents a session publisher's configuration.
type PublisherConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// defaultCatalog is the built-in two-track catalog used when the config
// file defines no catalog of its own.
var defaultCatalog = []TrackConfig{
	{
		ID:         "https://www.mcgill.ca/counselling/files/counselling/a_moment_to_reflect_1.mp3",
		Title:      "Music 1",
		Artist:     "Artist 1",
		DurationMs: 30000,
	},
	{
		ID:         "https://www.mcgill.ca/counselling/files/counselling/ocean_imagery.mp3",
		Title:      "Music 2",
		Artist:     "Artist 2",
		DurationMs: 30000,
	},
}

// Load loads configuration from a YAML file.
// A missing file is not an error; the built-in defaults apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case errors.Is(err, fs.ErrNotExist):
		// Run entirely on defaults
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if len(cfg.Catalog) == 0 {
		cfg.Catalog = defaultCatalog
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("AUTOMEDIA_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// BuildCatalog converts the configured entries into the domain catalog.
func (c *Config) BuildCatalog() (*track.Catalog, error) {
	tracks := make([]track.Track, 0, len(c.Catalog))
	for _, entry := range c.Catalog {
		tracks = append(tracks, track.Track{
			ID:       entry.ID,
			Title:    entry.Title,
			Artist:   entry.Artist,
			Duration: time.Duration(entry.DurationMs) * time.Millisecond,
		})
	}
	return track.NewCatalog(tracks)
}

// IsPublisherEnabled checks if a publisher is enabled.
func (c *Config) IsPublisherEnabled(name string) bool {
	if p, ok := c.Publishers[name]; ok {
		return p.Enabled
	}
	return false
}

// GetPublisherSettings returns the settings for a publisher.
func (c *Config) GetPublisherSettings(name string) map[string]any {
	if p, ok := c.Publishers[name]; ok {
		return p.Settings
	}
	return nil
}
