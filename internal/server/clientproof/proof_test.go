package clientproof

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func TestCheckFreshness_Boundaries(t *testing.T) {
	t.Parallel()
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name     string
		issuedAt time.Time
		wantErr  bool
	}{
		{"same instant", now, false},
		{"exactly 60s old", now.Add(-60 * time.Second), false},
		{"exactly 60s ahead", now.Add(60 * time.Second), false},
		{"60.001s old", now.Add(-60*time.Second - time.Millisecond), true},
		{"60.001s ahead", now.Add(60*time.Second + time.Millisecond), true},
		{"one hour old", now.Add(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckFreshness(tt.issuedAt, now, DefaultWindow)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrStaleRequest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	got, err := ParseTimestamp("1700000000")
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1_700_000_000, 0), got)

	got, err = ParseTimestamp("1700000000.5")
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), got.Unix())
	assert.InDelta(t, 500*time.Millisecond, time.Duration(got.Nanosecond()), float64(time.Microsecond))

	for _, bad := range []string{"", "abc", "NaN", "Inf", "12:30"} {
		_, err := ParseTimestamp(bad)
		assert.ErrorIs(t, err, common.ErrMalformedInput, bad)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	pub, priv := newKey(t)
	pubHex := hex.EncodeToString(pub)
	sigHex := hex.EncodeToString(ed25519.Sign(priv, []byte("x")))

	p, err := Parse(pubHex, sigHex, "1700000000")
	require.NoError(t, err)
	assert.Equal(t, cryptox.DeriveClientID(pub), p.ClientID())
	assert.Equal(t, pubHex, p.PublicKeyHex())
	assert.Equal(t, "1700000000", p.Timestamp)

	tests := []struct {
		name, pub, sig, ts string
	}{
		{"missing key", "", sigHex, "1"},
		{"missing signature", pubHex, "", "1"},
		{"missing timestamp", pubHex, sigHex, ""},
		{"key not hex", "zz" + pubHex[2:], sigHex, "1"},
		{"short key", pubHex[:62], sigHex, "1"},
		{"signature not hex", pubHex, "xyz", "1"},
		{"bad timestamp", pubHex, sigHex, "yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.pub, tt.sig, tt.ts)
			assert.True(t, errors.Is(err, common.ErrMalformedInput), "got %v", err)
		})
	}
}
