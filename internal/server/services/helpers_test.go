package services

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/cryptox"
	"github.com/dmitrijs2005/sidhilynx/internal/logging"
	"github.com/dmitrijs2005/sidhilynx/internal/server/config"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var epoch = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type device struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newDevice(t *testing.T) *device {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return &device{pub: pub, priv: priv}
}

func (d *device) clientID() string { return cryptox.DeriveClientID(d.pub) }

// sign builds a proof over subject with the given timestamp string.
func (d *device) sign(ts, subject string) ClientProof {
	sig := ed25519.Sign(d.priv, cryptox.Message(ts, subject))
	return ClientProof{
		PublicKey: hex.EncodeToString(d.pub),
		Signature: hex.EncodeToString(sig),
		Timestamp: ts,
	}
}

func (d *device) proofAt(at time.Time, subject string) ClientProof {
	return d.sign(strconv.FormatInt(at.Unix(), 10), subject)
}

type fixture struct {
	t     *testing.T
	cfg   *config.Config
	clock *fakeClock
	store *repomanager.MemoryRepositoryManager
	auth  *Authenticator
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	if mutate != nil {
		mutate(cfg)
	}
	clock := &fakeClock{t: epoch}
	store := repomanager.NewMemoryRepositoryManager()
	return &fixture{
		t:     t,
		cfg:   cfg,
		clock: clock,
		store: store,
		auth:  NewAuthenticator(store, cfg, logging.Nop{}, clock.Now),
	}
}

func (f *fixture) addUser(id, handle, password string, active bool) *models.User {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(f.t, err)
	u := &models.User{
		ID:             id,
		IdentityHandle: handle,
		UserName:       id,
		Email:          id + "@example.com",
		PasswordHash:   string(hash),
		IsActive:       active,
		CreatedAt:      epoch,
	}
	_, err = f.store.Repositories().Users.Create(context.Background(), u)
	require.NoError(f.t, err)
	return u
}

func (f *fixture) login(d *device, handle, password, ip string) (*LoginResult, error) {
	return f.auth.Login(context.Background(), LoginRequest{
		IdentityHandle: handle,
		Password:       password,
		Proof:          d.proofAt(f.clock.Now(), handle),
		App:            models.AppMetadata{Platform: "android", AppID: "id.sidhilynx", AppName: "Sidhi", AppVersion: "2.1.0"},
		IP:             ip,
	})
}

func (f *fixture) refresh(d *device, token, ip string) (*RefreshResult, error) {
	return f.auth.Refresh(context.Background(), RefreshRequest{
		RefreshToken: token,
		Proof:        d.proofAt(f.clock.Now(), token),
		IP:           ip,
	})
}
