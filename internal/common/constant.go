// Package common contains shared constants and sentinel errors used across
// the server, the admin tooling and the reference client.
package common

// Client proof headers. The same keys are used as gRPC metadata keys, which
// are always lowercase on the wire.
const (
	HeaderClientPublicKey = "client-public-key"
	HeaderClientSignature = "client-signature"
	HeaderClientTimestamp = "client-timestamp"
)

// Opaque application metadata headers, persisted verbatim on enrollment.
const (
	HeaderPlatform   = "platform"
	HeaderAppID      = "app-id"
	HeaderAppName    = "app-name"
	HeaderAppVersion = "app-version"
)

// Underscore spellings of the app metadata headers. The hyphenated form wins
// when a client sends both.
const (
	HeaderAppIDAlias      = "app_id"
	HeaderAppNameAlias    = "app_name"
	HeaderAppVersionAlias = "app_version"
)

// HeaderAdminKey guards the administrative HTTP surface.
const HeaderAdminKey = "x-admin-key"

// AuthorizationHeaderName carries the bearer access token.
const AuthorizationHeaderName = "authorization"

// TokenTypeBearer is reported in every token response.
const TokenTypeBearer = "bearer"
