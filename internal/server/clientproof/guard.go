package clientproof

import (
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/cryptox"
)

// Guard runs the replay check and then the signature check for one request.
type Guard struct {
	window time.Duration
	now    func() time.Time
}

// NewGuard returns a Guard with the given replay window. A nil clock means
// time.Now.
func NewGuard(window time.Duration, now func() time.Time) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Guard{window: window, now: now}
}

// Check validates p for subject and returns the derived client id.
func (g *Guard) Check(p Proof, subject string) (string, error) {
	if err := CheckFreshness(p.IssuedAt, g.now(), g.window); err != nil {
		return "", err
	}
	if !cryptox.Verify(p.PublicKey, cryptox.Message(p.Timestamp, subject), p.Signature) {
		return "", common.ErrInvalidSignature
	}
	return p.ClientID(), nil
}

// Window returns the configured replay window.
func (g *Guard) Window() time.Duration {
	return g.window
}
