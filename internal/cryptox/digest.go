// Package cryptox implements the client-side cryptographic engine:
// content fingerprinting, symmetric file encryption and the
// password-derived text cipher backing the credential store.
//
// All randomness comes from crypto/rand; a fresh key and IV are generated
// for every file encryption and are never reused.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the SHA-256 digest of data as a 64-character lowercase
// hex string. It is used both as a plaintext content fingerprint and,
// separately, as a password-verification hash for access gates; callers
// must not confuse the two uses.
func Digest(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
