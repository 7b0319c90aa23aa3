package models

import (
	"fmt"
	"time"

	"github.com/authenta/authenta/internal/common"
)

// VaultItem links an artifact to an encrypted short secret (typically the
// per-file access password). The encrypted payload is self-describing
// (embedded salt+IV+ciphertext) and decryptable only with the session
// master password, which is never persisted.
type VaultItem struct {
	ID         string
	OwnerID    string
	ArtifactID string

	// Cached for display without decryption.
	FileName    string
	Fingerprint string

	// Output of cryptox.EncryptText: salt ‖ iv ‖ ciphertext, hex.
	EncryptedPassword string

	CreatedAt time.Time
}

// Validate checks a vault record read from the external store.
func (v *VaultItem) Validate() error {
	if v.ID == "" || v.OwnerID == "" {
		return fmt.Errorf("%w: missing id or owner", common.ErrInvalidRecord)
	}
	if v.EncryptedPassword == "" {
		return fmt.Errorf("%w: missing encrypted payload", common.ErrInvalidRecord)
	}
	return nil
}
