package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays SIDHI_* variables onto config. Unset variables leave the
// field untouched. A nil environ reads the process environment.
func parseEnv(config *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(config, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
