// Package clientproof verifies that a request was produced by the holder of a
// client key pair.
//
// A client identifies itself with its raw Ed25519 public key and signs
// "{timestamp}:{subject}" with the matching private key, where subject is the
// identity handle on login, the refresh token on refresh and the request path
// on client-bound calls. The server never trusts a client-supplied
// identifier: the client id is always recomputed as the SHA-256 of the
// presented key.
package clientproof
