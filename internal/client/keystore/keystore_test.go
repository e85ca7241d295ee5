package keystore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Keystore {
	t.Helper()
	ks, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ks.Close() })
	return ks
}

func TestDeviceKey_StableAcrossCalls(t *testing.T) {
	ks := openMemory(t)
	ctx := context.Background()

	k1, err := ks.DeviceKey(ctx)
	require.NoError(t, err)
	k2, err := ks.DeviceKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestDeviceKey_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "keystore.db")

	ks, err := Open(ctx, path)
	require.NoError(t, err)
	k1, err := ks.DeviceKey(ctx)
	require.NoError(t, err)
	require.NoError(t, ks.Close())

	ks, err = Open(ctx, path)
	require.NoError(t, err)
	defer ks.Close()
	k2, err := ks.DeviceKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestDeviceKey_CorruptSeed(t *testing.T) {
	ks := openMemory(t)
	ctx := context.Background()
	require.NoError(t, ks.meta.set(ctx, keyDeviceSeed, []byte{1, 2, 3}))

	_, err := ks.DeviceKey(ctx)
	assert.Error(t, err)
}

func TestSession_Lifecycle(t *testing.T) {
	ks := openMemory(t)
	ctx := context.Background()

	_, err := ks.Session(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, ks.SaveSession(ctx, Session{IdentityHandle: "alice@sidhilynx.id", AccessToken: "a1", RefreshToken: "r1"}))
	s, err := ks.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Session{IdentityHandle: "alice@sidhilynx.id", AccessToken: "a1", RefreshToken: "r1"}, s)

	// refresh without rotation keeps the refresh token and the handle
	require.NoError(t, ks.SaveSession(ctx, Session{AccessToken: "a2"}))
	s, err = ks.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Session{IdentityHandle: "alice@sidhilynx.id", AccessToken: "a2", RefreshToken: "r1"}, s)

	key, err := ks.DeviceKey(ctx)
	require.NoError(t, err)

	require.NoError(t, ks.ClearSession(ctx))
	_, err = ks.Session(ctx)
	require.ErrorIs(t, err, ErrNoSession)

	after, err := ks.DeviceKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, key, after, "logout keeps the device identity")
}
