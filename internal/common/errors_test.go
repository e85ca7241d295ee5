package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"stale", ErrStaleRequest, ReasonStaleRequest},
		{"signature", ErrInvalidSignature, ReasonInvalidSignature},
		{"credentials", ErrInvalidCredentials, ReasonInvalidCredentials},
		{"conflict", ErrDeviceConflict, ReasonDeviceConflict},
		{"revoked", ErrDeviceRevoked, ReasonDeviceRevoked},
		{"mismatch", ErrClientMismatch, ReasonClientMismatch},
		{"refresh", ErrInvalidRefreshToken, ReasonInvalidRefreshToken},
		{"malformed wrapped", fmt.Errorf("%w: bad hex", ErrMalformedInput), ReasonMalformedInput},
		{"expired access token", ErrTokenExpired, ReasonInvalidToken},
		{"store failure", errors.New("connection refused"), ReasonInternal},
		{"not found is not a rejection", ErrorNotFound, ReasonInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reason(tt.err))
		})
	}
}

func TestIsRejection(t *testing.T) {
	assert.True(t, IsRejection(ErrDeviceRevoked))
	assert.False(t, IsRejection(errors.New("db down")))
	assert.False(t, IsRejection(fmt.Errorf("error looking up client: %w", ErrorInternal)))
}
