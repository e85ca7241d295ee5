package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	t.Run("overlays present keys", func(t *testing.T) {
		path := writeTempJSON(t, "", "", map[string]any{"server_url": "http://x:1", "timeout": "10s"})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, path))

		assert.Equal(t, "http://x:1", cfg.ServerURL)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, "sidhi-client.db", cfg.KeystorePath)
	})

	t.Run("empty path is a no-op", func(t *testing.T) {
		cfg := &Config{ServerURL: "keep"}
		require.NoError(t, parseJson(cfg, ""))
		assert.Equal(t, "keep", cfg.ServerURL)
	})

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, parseJson(&Config{}, filepath.Join(t.TempDir(), "nope.json")))
	})

	t.Run("bad json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
		assert.Error(t, parseJson(&Config{}, path))
	})
}
