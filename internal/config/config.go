package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultServerURL      = "http://127.0.0.1:8420"
	DefaultListen         = "127.0.0.1:8420"
	DefaultTimeout        = 10 * time.Second
	DefaultExitTransition = 150 * time.Millisecond
)

type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	UI     UIConfig     `yaml:"ui" json:"ui"`
	Data   DataConfig   `yaml:"data" json:"data"`
	Listen string       `yaml:"listen" json:"listen"`
}

type ServerConfig struct {
	URL     string        `yaml:"url" json:"url"`
	Token   string        `yaml:"token" json:"token"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

type UIConfig struct {
	// ExitTransition delays the end of a dialog close cycle. Zero settles
	// synchronously.
	ExitTransition *time.Duration `yaml:"exit_transition" json:"exit_transition,omitempty"`
}

type DataConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// Transition returns the configured exit transition delay.
func (u UIConfig) Transition() time.Duration {
	if u.ExitTransition == nil {
		return DefaultExitTransition
	}
	return *u.ExitTransition
}

func (c *Config) ApplyDefaults() {
	if c.Server.URL == "" {
		c.Server.URL = DefaultServerURL
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = DefaultTimeout
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "."
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
}

// ApplyEnv overrides file values with EZDESK_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("EZDESK_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("EZDESK_TOKEN"); v != "" {
		c.Server.Token = v
	}
	if v := os.Getenv("EZDESK_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("EZDESK_LISTEN"); v != "" {
		c.Listen = v
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("server.url: host is required")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must not be negative")
	}
	if c.UI.Transition() < 0 {
		return fmt.Errorf("ui.exit_transition must not be negative")
	}
	return nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}

// Load reads path, applies defaults and environment overrides. An empty path
// or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	var r Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, &r); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	r.ApplyDefaults()
	r.ApplyEnv()
	return &r, nil
}
