// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Auth      AuthConfig      `yaml:"auth"`
	Brush     BrushConfig     `yaml:"brush"`
	Overlay   OverlayConfig   `yaml:"overlay"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Server    ServerConfig    `yaml:"server"`
}

// ServiceConfig locates the inpainting service.
type ServiceConfig struct {
	Endpoint        string        `yaml:"endpoint"`         // http(s):// or ws(s)://
	Discover        bool          `yaml:"discover"`         // browse mDNS when no endpoint is set
	DiscoverTimeout time.Duration `yaml:"discover_timeout"` // how long to browse
	Timeout         time.Duration `yaml:"timeout"`          // per request
}

// AuthConfig selects the token source. URL wins over Token; Key is the
// credential presented to the token URL.
type AuthConfig struct {
	Token string `yaml:"token"`
	URL   string `yaml:"url"`
	Key   string `yaml:"key"`
}

type BrushConfig struct {
	Default float64 `yaml:"default"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

// OverlayConfig is the colour of the stroke being drawn.
type OverlayConfig struct {
	Color string  `yaml:"color"` // #rrggbb
	Alpha float64 `yaml:"alpha"` // 0..1
}

type AnalyticsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`    // optional HTTP sink
	Buffer  int    `yaml:"buffer"` // queued events before dropping
}

// ServerConfig configures the reference inpainting server.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	Path       string `yaml:"path"`
	Token      string `yaml:"token"`      // "generate" creates a random one
	IssuerKey  string `yaml:"issuer_key"` // enables /token; "generate" creates a random one
	Iterations int    `yaml:"iterations"`
	Advertise  bool   `yaml:"advertise"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			Discover:        true,
			DiscoverTimeout: 3 * time.Second,
			Timeout:         60 * time.Second,
		},
		Brush: BrushConfig{
			Default: 40,
			Min:     2,
			Max:     200,
		},
		Overlay: OverlayConfig{
			Color: "#ff3b30",
			Alpha: 0.5,
		},
		Analytics: AnalyticsConfig{
			Enabled: true,
			Buffer:  64,
		},
		Server: ServerConfig{
			Addr:       ":8765",
			Path:       "/inpaint",
			Iterations: 200,
			Advertise:  true,
		},
	}
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "inpaintboard", "config.yaml")
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, the defaults are returned.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Service.DiscoverTimeout == 0 {
		c.Service.DiscoverTimeout = defaults.Service.DiscoverTimeout
	}
	if c.Service.Timeout == 0 {
		c.Service.Timeout = defaults.Service.Timeout
	}
	if c.Brush.Default == 0 {
		c.Brush.Default = defaults.Brush.Default
	}
	if c.Brush.Min == 0 {
		c.Brush.Min = defaults.Brush.Min
	}
	if c.Brush.Max == 0 {
		c.Brush.Max = defaults.Brush.Max
	}
	if c.Overlay.Color == "" {
		c.Overlay.Color = defaults.Overlay.Color
	}
	if c.Analytics.Buffer == 0 {
		c.Analytics.Buffer = defaults.Analytics.Buffer
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.Path == "" {
		c.Server.Path = defaults.Server.Path
	}
	if c.Server.Iterations == 0 {
		c.Server.Iterations = defaults.Server.Iterations
	}
}

// OverlayColor returns the configured overlay as a colour. Validate must
// have passed.
func (c *Config) OverlayColor() color.NRGBA {
	rgb, _ := parseHexColor(c.Overlay.Color)
	rgb.A = uint8(c.Overlay.Alpha*255 + 0.5)
	return rgb
}

func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("expected #rrggbb, got %q", s)
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("expected #rrggbb: %w", err)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
