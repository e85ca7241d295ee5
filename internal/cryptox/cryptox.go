// Package cryptox holds the device key primitives shared by the server and
// the reference client.
package cryptox

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
)

// DeriveClientID returns the lowercase hex SHA-256 of the raw public key.
func DeriveClientID(publicKey []byte) string {
	sum := sha256.Sum256(publicKey)
	return hex.EncodeToString(sum[:])
}

// Message frames the signed payload. timestamp must be the header value
// exactly as the client sent it.
func Message(timestamp, subject string) []byte {
	return []byte(timestamp + ":" + subject)
}

// Verify reports whether signature is a valid Ed25519 signature of message
// under publicKey. Inputs of the wrong length simply fail.
func Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}
