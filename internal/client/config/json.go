package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sidhilynx/internal/timex"
)

// JsonConfig is the on-disk shape of Config.
type JsonConfig struct {
	ServerURL    string         `json:"server_url"`
	KeystorePath string         `json:"keystore"`
	Timeout      timex.Duration `json:"timeout"`
	Platform     string         `json:"platform"`
	AppID        string         `json:"app_id"`
	AppName      string         `json:"app_name"`
	AppVersion   string         `json:"app_version"`
}

// parseJson overlays the file at path onto cfg; keys absent from the file
// keep their current value.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	jc := JsonConfig{
		ServerURL:    cfg.ServerURL,
		KeystorePath: cfg.KeystorePath,
		Timeout:      timex.Duration{Duration: cfg.Timeout},
		Platform:     cfg.Platform,
		AppID:        cfg.AppID,
		AppName:      cfg.AppName,
		AppVersion:   cfg.AppVersion,
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.KeystorePath = jc.KeystorePath
	cfg.Timeout = jc.Timeout.Duration
	cfg.Platform = jc.Platform
	cfg.AppID = jc.AppID
	cfg.AppName = jc.AppName
	cfg.AppVersion = jc.AppVersion
	return nil
}
