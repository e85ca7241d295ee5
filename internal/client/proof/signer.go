// Package proof signs outgoing requests with the device key.
package proof

import (
	"crypto/ed25519"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/cryptox"
)

type Signer struct {
	key ed25519.PrivateKey
	now func() time.Time
}

// NewSigner returns a Signer for key. A nil now uses time.Now.
func NewSigner(key ed25519.PrivateKey, now func() time.Time) *Signer {
	if now == nil {
		now = time.Now
	}
	return &Signer{key: key, now: now}
}

func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// ClientID is the identifier the server derives from the public key.
func (s *Signer) ClientID() string {
	return cryptox.DeriveClientID(s.PublicKey())
}

// Sign sets the three proof headers on h for subject, using the current
// time in whole seconds.
func (s *Signer) Sign(h http.Header, subject string) {
	ts := strconv.FormatInt(s.now().Unix(), 10)
	sig := ed25519.Sign(s.key, cryptox.Message(ts, subject))

	h.Set(common.HeaderClientPublicKey, hex.EncodeToString(s.PublicKey()))
	h.Set(common.HeaderClientSignature, hex.EncodeToString(sig))
	h.Set(common.HeaderClientTimestamp, ts)
}
