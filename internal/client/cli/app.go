// Package cli implements the reference device client: it keeps one Ed25519
// device key in a local keystore and drives the login, refresh, whoami and
// logout flows against the HTTP API.
package cli

import (
	"bufio"
	"context"
	"io"
	"net/http"

	"github.com/dmitrijs2005/sidhilynx/internal/client/api"
	"github.com/dmitrijs2005/sidhilynx/internal/client/config"
	"github.com/dmitrijs2005/sidhilynx/internal/client/keystore"
	"github.com/dmitrijs2005/sidhilynx/internal/client/proof"
)

// App holds what every command needs once flags and config are resolved.
type App struct {
	cfg        *config.Config
	out        io.Writer
	in         *bufio.Reader
	httpClient *http.Client
	environ    map[string]string
}

// session opens the keystore and an API client signing with its device key.
// The caller closes the keystore.
func (a *App) session(ctx context.Context) (*keystore.Keystore, *api.Client, error) {
	ks, err := keystore.Open(ctx, a.cfg.KeystorePath)
	if err != nil {
		return nil, nil, err
	}
	key, err := ks.DeviceKey(ctx)
	if err != nil {
		_ = ks.Close()
		return nil, nil, err
	}

	httpClient := a.httpClient
	if httpClient == nil {
		httpClient = api.NewHTTPClient(a.cfg.Timeout)
	}

	client := api.New(a.cfg.ServerURL, httpClient, proof.NewSigner(key, nil), api.AppInfo{
		Platform:   a.cfg.Platform,
		AppID:      a.cfg.AppID,
		AppName:    a.cfg.AppName,
		AppVersion: a.cfg.AppVersion,
	})
	return ks, client, nil
}
