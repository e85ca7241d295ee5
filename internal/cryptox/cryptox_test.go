package cryptox

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func TestDeriveClientID_DeterministicAndDistinct(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		pub, _ := newKey(t)
		id := DeriveClientID(pub)
		assert.Equal(t, id, DeriveClientID(pub), "derivation must be stable")
		assert.Len(t, id, 64)
		_, dup := seen[id]
		require.False(t, dup, "distinct keys produced the same client id")
		seen[id] = struct{}{}
	}
}

func TestDeriveClientID_KnownVector(t *testing.T) {
	t.Parallel()
	// sha256 of 32 zero bytes
	assert.Equal(t,
		"66687aadf862bd776c8fc18b8e9f8e20089714856ee233b3902a591d0d5f2925",
		DeriveClientID(make([]byte, 32)))
}

func TestVerify_ValidSignature(t *testing.T) {
	t.Parallel()
	pub, priv := newKey(t)
	msg := Message("1700000000", "alice@sidhilynx.id")
	assert.True(t, Verify(pub, msg, ed25519.Sign(priv, msg)))
}

func TestVerify_SingleBitMutations(t *testing.T) {
	t.Parallel()
	pub, priv := newKey(t)
	msg := Message("1700000000", "alice@sidhilynx.id")
	sig := ed25519.Sign(priv, msg)

	for i := 0; i < len(msg)*8; i++ {
		mutated := append([]byte(nil), msg...)
		mutated[i/8] ^= 1 << (i % 8)
		if Verify(pub, mutated, sig) {
			t.Fatalf("message with bit %d flipped still verifies", i)
		}
	}

	for i := 0; i < len(sig)*8; i++ {
		mutated := append([]byte(nil), sig...)
		mutated[i/8] ^= 1 << (i % 8)
		if Verify(pub, msg, mutated) {
			t.Fatalf("signature with bit %d flipped still verifies", i)
		}
	}
}

func TestVerify_MalformedInputsDoNotPanic(t *testing.T) {
	t.Parallel()
	pub, priv := newKey(t)
	msg := []byte("m")
	sig := ed25519.Sign(priv, msg)

	assert.False(t, Verify(pub[:31], msg, sig))
	assert.False(t, Verify(nil, msg, sig))
	assert.False(t, Verify(pub, msg, sig[:63]))
	assert.False(t, Verify(pub, msg, nil))
}

func TestVerify_WrongKey(t *testing.T) {
	t.Parallel()
	_, priv := newKey(t)
	other, _ := newKey(t)
	msg := []byte("1700000000:token")
	assert.False(t, Verify(other, msg, ed25519.Sign(priv, msg)))
}

func TestMessage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []byte("1700000000:alice@sidhilynx.id"), Message("1700000000", "alice@sidhilynx.id"))
	assert.Equal(t, []byte("0100:/api/v1/auth/me"), Message("0100", "/api/v1/auth/me"), "timestamp is framed verbatim")
}
