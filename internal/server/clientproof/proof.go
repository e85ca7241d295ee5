package clientproof

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/cryptox"
)

// DefaultWindow is the replay window shared by every endpoint.
const DefaultWindow = 60 * time.Second

// ParseTimestamp parses epoch seconds, optionally with a fractional part.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", common.ErrMalformedInput)
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", common.ErrMalformedInput, s)
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))), nil
}

// CheckFreshness accepts issuedAt when it lies within window of now in either
// direction. The bound is inclusive.
func CheckFreshness(issuedAt, now time.Time, window time.Duration) error {
	skew := now.Sub(issuedAt)
	if skew < 0 {
		skew = -skew
	}
	if skew > window {
		return common.ErrStaleRequest
	}
	return nil
}

// Proof is the decoded set of client proof headers.
type Proof struct {
	PublicKey []byte
	Signature []byte
	Timestamp string
	IssuedAt  time.Time
}

// Parse decodes the hex-encoded key and signature and the timestamp header.
// Missing values, bad hex, a key of the wrong size or an unparsable timestamp
// yield common.ErrMalformedInput. A signature of the wrong size is left for
// Verify to reject.
func Parse(publicKeyHex, signatureHex, timestamp string) (Proof, error) {
	if publicKeyHex == "" || signatureHex == "" || timestamp == "" {
		return Proof{}, fmt.Errorf("%w: missing client proof", common.ErrMalformedInput)
	}

	pub, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return Proof{}, fmt.Errorf("%w: public key is not hex", common.ErrMalformedInput)
	}
	if len(pub) != ed25519.PublicKeySize {
		return Proof{}, fmt.Errorf("%w: public key must be %d bytes", common.ErrMalformedInput, ed25519.PublicKeySize)
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return Proof{}, fmt.Errorf("%w: signature is not hex", common.ErrMalformedInput)
	}

	issuedAt, err := ParseTimestamp(timestamp)
	if err != nil {
		return Proof{}, err
	}

	return Proof{PublicKey: pub, Signature: sig, Timestamp: timestamp, IssuedAt: issuedAt}, nil
}

// ClientID derives the client identifier from the presented key.
func (p Proof) ClientID() string {
	return cryptox.DeriveClientID(p.PublicKey)
}

// PublicKeyHex returns the key in the form it is stored in the registry.
func (p Proof) PublicKeyHex() string {
	return hex.EncodeToString(p.PublicKey)
}
