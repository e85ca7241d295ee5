package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sidhilynx/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations use timex.Duration so
// both "30m" style strings and integer nanoseconds are accepted.
type JsonConfig struct {
	HTTPAddr                     string         `json:"http_addr"`
	GRPCAddr                     string         `json:"grpc_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AdminAPIKey                  string         `json:"admin_api_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	ReplayWindow                 timex.Duration `json:"replay_window"`
	DefaultScopes                []string       `json:"default_scopes"`
	RotateRefreshTokens          bool           `json:"rotate_refresh_tokens"`
	CORSOrigins                  []string       `json:"cors_origins"`
	RateLimitPerMinute           int            `json:"rate_limit_per_minute"`
	TrustProxy                   bool           `json:"trust_proxy"`
	OTLPEndpoint                 string         `json:"otlp_endpoint"`
	HandleDomain                 string         `json:"handle_domain"`
	LogLevel                     string         `json:"log_level"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		HTTPAddr:                     c.HTTPAddr,
		GRPCAddr:                     c.GRPCAddr,
		DatabaseDSN:                  c.DatabaseDSN,
		SecretKey:                    c.SecretKey,
		AdminAPIKey:                  c.AdminAPIKey,
		AccessTokenValidityDuration:  timex.Duration{Duration: c.AccessTokenValidityDuration},
		RefreshTokenValidityDuration: timex.Duration{Duration: c.RefreshTokenValidityDuration},
		ReplayWindow:                 timex.Duration{Duration: c.ReplayWindow},
		DefaultScopes:                c.DefaultScopes,
		RotateRefreshTokens:          c.RotateRefreshTokens,
		CORSOrigins:                  c.CORSOrigins,
		RateLimitPerMinute:           c.RateLimitPerMinute,
		TrustProxy:                   c.TrustProxy,
		OTLPEndpoint:                 c.OTLPEndpoint,
		HandleDomain:                 c.HandleDomain,
		LogLevel:                     c.LogLevel,
	}
}

// parseJson overlays the JSON file at path onto config. Keys missing from
// the file keep their current value. An empty path loads nothing.
func parseJson(config *Config, path string) error {
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	config.HTTPAddr = c.HTTPAddr
	config.GRPCAddr = c.GRPCAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AdminAPIKey = c.AdminAPIKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	config.ReplayWindow = c.ReplayWindow.Duration
	config.DefaultScopes = c.DefaultScopes
	config.RotateRefreshTokens = c.RotateRefreshTokens
	config.CORSOrigins = c.CORSOrigins
	config.RateLimitPerMinute = c.RateLimitPerMinute
	config.TrustProxy = c.TrustProxy
	config.OTLPEndpoint = c.OTLPEndpoint
	config.HandleDomain = c.HandleDomain
	config.LogLevel = c.LogLevel
	return nil
}
