package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Access token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrUnboundToken = errors.New("unbound token")

	// Client-bound authentication rejections. All of them are terminal and
	// never retried by the server.
	ErrStaleRequest        = errors.New("stale request")
	ErrInvalidSignature    = errors.New("invalid client signature")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDeviceConflict      = errors.New("this device is already linked to another account")
	ErrDeviceRevoked       = errors.New("this device has been revoked")
	ErrClientMismatch      = errors.New("client mismatch")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrMalformedInput      = errors.New("malformed input")
)

// Machine-readable rejection codes returned to callers.
const (
	ReasonStaleRequest        = "stale_request"
	ReasonInvalidSignature    = "invalid_signature"
	ReasonInvalidCredentials  = "invalid_credentials"
	ReasonDeviceConflict      = "device_conflict"
	ReasonDeviceRevoked       = "device_revoked"
	ReasonClientMismatch      = "client_mismatch"
	ReasonInvalidRefreshToken = "invalid_refresh_token"
	ReasonMalformedInput      = "malformed_input"
	ReasonInvalidToken        = "invalid_token"
	ReasonUnauthorized        = "unauthorized"
	ReasonInternal            = "internal_error"
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrStaleRequest, ReasonStaleRequest},
	{ErrInvalidSignature, ReasonInvalidSignature},
	{ErrInvalidCredentials, ReasonInvalidCredentials},
	{ErrDeviceConflict, ReasonDeviceConflict},
	{ErrDeviceRevoked, ReasonDeviceRevoked},
	{ErrClientMismatch, ReasonClientMismatch},
	{ErrInvalidRefreshToken, ReasonInvalidRefreshToken},
	{ErrMalformedInput, ReasonMalformedInput},
	{ErrInvalidToken, ReasonInvalidToken},
	{ErrTokenExpired, ReasonInvalidToken},
	{ErrUnboundToken, ReasonInvalidToken},
	{ErrorUnauthorized, ReasonUnauthorized},
}

// Reason returns the stable code for err. Anything outside the auth taxonomy,
// including store failures, is reported as ReasonInternal.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ReasonInternal
}

// IsRejection reports whether err is a user-facing authentication rejection
// rather than an infrastructure failure.
func IsRejection(err error) bool {
	return Reason(err) != ReasonInternal
}
