package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Equal(t, 30*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 30*24*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 60*time.Second, c.ReplayWindow)
	assert.False(t, c.RotateRefreshTokens)
	assert.Equal(t, []string{"user"}, c.DefaultScopes)
	assert.NoError(t, c.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"database_dsn":  "memory://",
		"secret_key":    "from-json",
		"admin_api_key": "json-admin",
		"replay_window": "30s",
	})
	environ := map[string]string{
		"SIDHI_SECRET_KEY":            "from-env",
		"SIDHI_ROTATE_REFRESH_TOKENS": "true",
		"SIDHI_DEFAULT_SCOPES":        "user admin",
	}
	args := []string{"-s", "from-flag", "-c", path, "-t", "5"}

	cfg, err := load(path, environ, args)
	require.NoError(t, err)

	assert.Equal(t, "memory://", cfg.DatabaseDSN, "json overrides defaults")
	assert.Equal(t, "json-admin", cfg.AdminAPIKey)
	assert.Equal(t, 30*time.Second, cfg.ReplayWindow, "unset flag keeps json value")
	assert.True(t, cfg.RotateRefreshTokens, "env overrides defaults")
	assert.Equal(t, []string{"user", "admin"}, cfg.DefaultScopes)
	assert.Equal(t, "from-flag", cfg.SecretKey, "flags win")
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenValidityDuration)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		args    []string
	}{
		{name: "bad env duration", environ: map[string]string{"SIDHI_REPLAY_WINDOW": "soon"}},
		{name: "bad flag value", args: []string{"-t", "abc"}},
		{name: "empty secret", args: []string{"-s", ""}},
		{name: "zero window", args: []string{"-w", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			environ := tt.environ
			if environ == nil {
				environ = map[string]string{}
			}
			_, err := load("", environ, tt.args)
			assert.Error(t, err)
		})
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := parseFlags(cfg, []string{
		"-a", "127.0.0.1:9090", "-g", "", "-d", "db", "-s", "secret", "-k", "adm",
		"-t", "1", "-r", "3", "-w", "45", "-unknown", "x",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr)
	assert.Equal(t, "", cfg.GRPCAddr)
	assert.Equal(t, "db", cfg.DatabaseDSN)
	assert.Equal(t, "secret", cfg.SecretKey)
	assert.Equal(t, "adm", cfg.AdminAPIKey)
	assert.Equal(t, time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 3*time.Minute, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, 45*time.Second, cfg.ReplayWindow)
}
