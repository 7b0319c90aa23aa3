// Package common defines shared constants and sentinel errors used across
// the Authenta client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Crypto errors.

	// ErrCryptoUnavailable means the host cryptographic provider failed;
	// fatal to the current operation, never retried automatically.
	ErrCryptoUnavailable = errors.New("cryptographic provider unavailable")

	// ErrCorruptOrWrongKey is returned for any AEAD authentication failure
	// during decryption. It is deliberately generic: callers must not learn
	// whether the key, the IV or the ciphertext was wrong.
	ErrCorruptOrWrongKey = errors.New("incorrect password or corrupted data")

	// Access-control errors.

	// ErrAuthenticationFailed means a presented credential did not satisfy
	// an artifact's access gate. Recoverable by re-prompting.
	ErrAuthenticationFailed = errors.New("incorrect credentials")

	// Store errors.

	ErrNotFound = errors.New("not found")

	// ErrPersistenceDenied means the document store rejected a write due to
	// its authorization rules.
	ErrPersistenceDenied = errors.New("permission denied by store")

	// ErrPayloadTooLarge means an encoded payload exceeds the store's
	// per-document embedding ceiling. Fatal per item, never per batch.
	ErrPayloadTooLarge = errors.New("payload too large for embedded storage")

	// Validation errors.

	ErrInvalidRecord = errors.New("invalid record")
	ErrInvalidToken  = errors.New("invalid token")
)
