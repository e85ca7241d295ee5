package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/client/keystore"
	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/logging"
	"github.com/dmitrijs2005/sidhilynx/internal/server/config"
	"github.com/dmitrijs2005/sidhilynx/internal/server/httpapi"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sidhilynx/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t        *testing.T
	srv      *httptest.Server
	store    repomanager.RepositoryManager
	keystore string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := repomanager.NewMemoryRepositoryManager()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	hash, err := services.HashPassword("s3cret")
	require.NoError(t, err)
	_, err = store.Repositories().Users.Create(context.Background(), &models.User{
		ID: "SIDHI_ALICE", IdentityHandle: "alice@sidhilynx.id", Email: "alice@example.com",
		PasswordHash: hash, IsActive: true, CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	auth := services.NewAuthenticator(store, cfg, logging.Nop{}, nil)
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.Options{Auth: auth, Registry: auth.Registry()}))
	t.Cleanup(srv.Close)

	return &harness{t: t, srv: srv, store: store, keystore: filepath.Join(t.TempDir(), "ks.db")}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(Options{
		Out:        &out,
		In:         strings.NewReader(stdin),
		HTTPClient: h.srv.Client(),
		Environ:    map[string]string{},
	})
	cmd.SetArgs(append([]string{"--server", h.srv.URL, "--keystore", h.keystore}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestClientCommands_Session(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("s3cret\n", "login", "--password-stdin", "alice@sidhilynx.id")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice@sidhilynx.id")

	clientID, err := h.run("", "device")
	require.NoError(t, err)
	clientID = strings.TrimSpace(clientID)

	enrolled, err := h.store.Repositories().Clients.Get(context.Background(), clientID)
	require.NoError(t, err)
	assert.Equal(t, "SIDHI_ALICE", enrolled.UserID)
	assert.Equal(t, "sidhi-client", enrolled.App.AppName)

	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "client_id: "+clientID)
	assert.Contains(t, out, "user_id:   SIDHI_ALICE")

	out, err = h.run("", "refresh")
	require.NoError(t, err)
	assert.Contains(t, out, "Access token refreshed")

	out, err = h.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = h.run("", "whoami")
	assert.ErrorIs(t, err, keystore.ErrNoSession)
}

func TestClientCommands_WrongPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("nope\n", "login", "--password-stdin", "alice@sidhilynx.id")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestClientCommands_RevokedDevice(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("s3cret\n", "login", "--password-stdin", "alice@sidhilynx.id")
	require.NoError(t, err)
	clientID, err := h.run("", "device")
	require.NoError(t, err)

	require.NoError(t, h.store.Repositories().Clients.SetStatus(context.Background(), strings.TrimSpace(clientID), models.ClientStatusRevoked))

	_, err = h.run("", "refresh")
	assert.ErrorIs(t, err, common.ErrDeviceRevoked)
	assert.Contains(t, err.Error(), "revoked by an administrator")
}

func TestClientCommands_LoginNeedsHandle(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("s3cret\n", "login", "--password-stdin")
	assert.Error(t, err)
}
