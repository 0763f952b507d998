package model

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the complete Art Explorer configuration.
// Keys map 1:1 onto config.yaml and ARTEXPLORER_* environment variables.
type Config struct {
	API         APIConfig         `yaml:"api" mapstructure:"api"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Viewer      ViewerConfig      `yaml:"viewer" mapstructure:"viewer"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	ImageSize   ImageSizeConfig   `yaml:"imagesize" mapstructure:"imagesize"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// APIConfig points at the backend serving painting and fact records
type APIConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"` // Per-host upstream limit
	Burst          int     `yaml:"burst" mapstructure:"burst"`
}

// HTTPConfig configures outbound HTTP clients
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// ServerConfig configures the page server
type ServerConfig struct {
	Addr           string        `yaml:"addr" mapstructure:"addr"`
	RequestsPerSec float64       `yaml:"requests_per_sec" mapstructure:"requests_per_sec"` // Per-client limit
	Burst          int           `yaml:"burst" mapstructure:"burst"`
	RenderTimeout  time.Duration `yaml:"render_timeout" mapstructure:"render_timeout"`
	Metrics        bool          `yaml:"metrics" mapstructure:"metrics"`
}

// ViewerConfig tunes the painting page
type ViewerConfig struct {
	LensZoom     float64 `yaml:"lens_zoom" mapstructure:"lens_zoom"`
	DisplayWidth float64 `yaml:"display_width" mapstructure:"display_width"` // Rendered image column width in px
	HomePainting string  `yaml:"home_painting" mapstructure:"home_painting"` // artist/painting linked from /
	SiteTitle    string  `yaml:"site_title" mapstructure:"site_title"`
}

// CacheConfig configures the in-memory caches (rendered markdown, image dimensions)
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// ImageSizeConfig configures image dimension measurement
type ImageSizeConfig struct {
	Enabled        bool  `yaml:"enabled" mapstructure:"enabled"`
	MaxHeaderBytes int64 `yaml:"max_header_bytes" mapstructure:"max_header_bytes"`
	RespectRobots  bool  `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ConcurrencyConfig bounds the catalogue checker
type ConcurrencyConfig struct {
	Workers           int `yaml:"workers" mapstructure:"workers"`
	ValidationWorkers int `yaml:"validation_workers" mapstructure:"validation_workers"`
}

// LoggingConfig configures zerolog output
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000/api/v1",
			RequestsPerSec: 20,
			Burst:          10,
		},
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "ArtExplorer/0.1 (+https://github.com/ppiankov/artexplorer)",
			MaxBodyBytes: 2_000_000,
		},
		Server: ServerConfig{
			Addr:           ":3000",
			RequestsPerSec: 10,
			Burst:          20,
			RenderTimeout:  15 * time.Second,
			Metrics:        true,
		},
		Viewer: ViewerConfig{
			LensZoom:     3,
			DisplayWidth: 768,
			HomePainting: "van-gogh/starry-night",
			SiteTitle:    "Art Explorer",
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		ImageSize: ImageSizeConfig{
			Enabled:        true,
			MaxHeaderBytes: 256 << 10,
			RespectRobots:  true,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			ValidationWorkers: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL: %q", c.API.BaseURL)
	}
	if c.Viewer.LensZoom <= 0 {
		return fmt.Errorf("viewer.lens_zoom must be positive")
	}
	if c.Viewer.DisplayWidth <= 0 {
		return fmt.Errorf("viewer.display_width must be positive")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("http.max_body_bytes must be positive")
	}
	return nil
}
