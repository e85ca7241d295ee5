// Package config loads settings for the reference client: defaults, then an
// optional JSON file, then SIDHI_CLIENT_* environment variables. Command
// line flags are applied last by the CLI itself.
package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SIDHI_CLIENT_"

type Config struct {
	ServerURL    string        `env:"SERVER_URL"`
	KeystorePath string        `env:"KEYSTORE"`
	Timeout      time.Duration `env:"TIMEOUT"`
	Platform     string        `env:"PLATFORM"`
	AppID        string        `env:"APP_ID"`
	AppName      string        `env:"APP_NAME"`
	AppVersion   string        `env:"APP_VERSION"`
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.KeystorePath = "sidhi-client.db"
	c.Timeout = 15 * time.Second
	c.Platform = runtime.GOOS
	c.AppID = "id.sidhilynx.cli"
	c.AppName = "sidhi-client"
	c.AppVersion = "dev"
}

// Load builds a Config from defaults, the JSON file at jsonPath (if not
// empty) and environ. A nil environ reads the process environment.
func Load(jsonPath string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, jsonPath); err != nil {
		return nil, err
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
