// Package api is an HTTP client for the authentication API that signs
// every request with the device key.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/client/proof"
	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	loginPath   = "/api/v1/auth/login"
	refreshPath = "/api/v1/auth/refresh-token"
	logoutPath  = "/api/v1/auth/logout"
	mePath      = "/api/v1/auth/me"
)

// AppInfo is sent with login and stored by the server on enrollment.
type AppInfo struct {
	Platform   string
	AppID      string
	AppName    string
	AppVersion string
}

// Error is a non-2xx response. Reason is the server's machine code, e.g.
// "stale_request".
type Error struct {
	Status int
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Reason)
}

// Is matches the reason against the shared sentinel errors so callers can
// use errors.Is(err, common.ErrDeviceRevoked).
func (e *Error) Is(target error) bool {
	return e.Reason != "" && e.Reason != common.ReasonInternal && common.Reason(target) == e.Reason
}

type LoginResponse struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token"`
	TokenType      string `json:"token_type"`
	IdentityHandle string `json:"identity_handle"`
}

type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

type MeResponse struct {
	UserID   string   `json:"user_id"`
	ClientID string   `json:"client_id"`
	Scopes   []string `json:"scopes"`
}

type Client struct {
	baseURL string
	http    *http.Client
	signer  *proof.Signer
	app     AppInfo
}

const defaultTimeout = 15 * time.Second

// NewHTTPClient returns a traced HTTP client with the given timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// New returns a client for baseURL. A nil httpClient uses NewHTTPClient
// with the default timeout.
func New(baseURL string, httpClient *http.Client, signer *proof.Signer, app AppInfo) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(defaultTimeout)
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, signer: signer, app: app}
}

func (c *Client) Login(ctx context.Context, identityHandle, password string) (*LoginResponse, error) {
	body := map[string]string{"identity_handle": identityHandle, "password": password}
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, loginPath, body, &out, func(h http.Header) {
		c.signer.Sign(h, identityHandle)
		h.Set(common.HeaderPlatform, c.app.Platform)
		h.Set(common.HeaderAppID, c.app.AppID)
		h.Set(common.HeaderAppName, c.app.AppName)
		h.Set(common.HeaderAppVersion, c.app.AppVersion)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var out RefreshResponse
	err := c.do(ctx, http.MethodPost, refreshPath, map[string]string{"refresh_token": refreshToken}, &out, func(h http.Header) {
		c.signer.Sign(h, refreshToken)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, logoutPath, map[string]string{"refresh_token": refreshToken}, nil, func(h http.Header) {
		c.signer.Sign(h, refreshToken)
	})
}

// Me calls the client-bound endpoint; the proof is signed over its path.
func (c *Client) Me(ctx context.Context, accessToken string) (*MeResponse, error) {
	var out MeResponse
	err := c.do(ctx, http.MethodGet, mePath, nil, &out, func(h http.Header) {
		h.Set("Authorization", "Bearer "+accessToken)
		c.signer.Sign(h, mePath)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, decorate func(http.Header)) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	decorate(req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &Error{Status: resp.StatusCode, Reason: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
