package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashRefreshToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashRefreshToken("abc"))
	assert.NotEqual(t, HashRefreshToken("a"), HashRefreshToken("b"))
}

func TestTokenIssuer_IssueStoresHashOnly(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.DefaultScopes = []string{"user", "admin"} })
	issuer := f.auth.Tokens()

	pair, err := issuer.Issue(context.Background(), "SIDHI_U", "cid", []string{"user", "admin"})
	require.NoError(t, err)
	require.Len(t, pair.RefreshToken, 2*refreshTokenBytes)

	stored, err := f.store.Repositories().RefreshTokens.Find(context.Background(), HashRefreshToken(pair.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, "SIDHI_U", stored.UserID)
	assert.Equal(t, "cid", stored.ClientID)
	assert.Equal(t, []string{"user", "admin"}, stored.Scopes)
	assert.True(t, stored.CreatedAt.Equal(epoch))

	other, err := issuer.Issue(context.Background(), "SIDHI_U", "cid", nil)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, other.RefreshToken)
}

func TestTokenIssuer_RefreshUnknownDeviceIsRevoked(t *testing.T) {
	f := newFixture(t, nil)
	issuer := f.auth.Tokens()

	// token exists but the device record does not
	pair, err := issuer.Issue(context.Background(), "SIDHI_U", "cid-ghost", nil)
	require.NoError(t, err)

	_, _, err = issuer.Refresh(context.Background(), pair.RefreshToken, "cid-ghost", "10.0.0.1")
	assert.ErrorIs(t, err, common.ErrDeviceRevoked)
}

func TestTokenIssuer_ExpiryBoundary(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.RefreshTokenValidityDuration = time.Hour })
	issuer := f.auth.Tokens()

	pair, err := issuer.Issue(context.Background(), "SIDHI_U", "cid", nil)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, _, err = issuer.Refresh(context.Background(), pair.RefreshToken, "cid", "10.0.0.1")
	assert.ErrorIs(t, err, common.ErrInvalidRefreshToken, "expires_at itself is expired")
}

func TestTokenIssuer_RevokeAllForUser(t *testing.T) {
	f := newFixture(t, nil)
	issuer := f.auth.Tokens()
	ctx := context.Background()

	p1, _ := issuer.Issue(ctx, "SIDHI_U", "cid-1", nil)
	p2, _ := issuer.Issue(ctx, "SIDHI_U", "cid-2", nil)
	p3, _ := issuer.Issue(ctx, "SIDHI_V", "cid-3", nil)

	n, err := issuer.RevokeAllForUser(ctx, "SIDHI_U")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, raw := range []string{p1.RefreshToken, p2.RefreshToken} {
		_, err := f.store.Repositories().RefreshTokens.Find(ctx, HashRefreshToken(raw))
		assert.ErrorIs(t, err, common.ErrorNotFound)
	}
	_, err = f.store.Repositories().RefreshTokens.Find(ctx, HashRefreshToken(p3.RefreshToken))
	assert.NoError(t, err)
}
