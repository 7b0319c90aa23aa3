// Package models defines the artifact, version and vault-item records the
// client stores in the external document store, plus the transient types
// used during batch uploads.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/authenta/authenta/internal/common"
)

// GateKind tags how an artifact's access gate value is to be interpreted.
// The kind is set unambiguously at creation time; the resolver matches on
// it instead of guessing.
type GateKind string

const (
	// GateNone means the artifact is unlocked by default on first view.
	GateNone GateKind = "none"
	// GatePasswordHash means the gate value is sha256(owner password);
	// unlock requires presenting the password itself.
	GatePasswordHash GateKind = "password"
	// GateSelfHash means the gate value is the file's own plaintext
	// fingerprint; unlock requires presenting that literal hex string.
	GateSelfHash GateKind = "selfhash"
)

// Gate is the credential requirement guarding an artifact. Value is a
// 64-char lowercase hex digest for both gated kinds and empty for GateNone.
type Gate struct {
	Kind  GateKind
	Value string
}

// NoGate returns the open (unlocked-by-default) gate.
func NoGate() Gate { return Gate{Kind: GateNone} }

// PasswordGate builds a gate from a password digest.
func PasswordGate(passwordHash string) Gate {
	return Gate{Kind: GatePasswordHash, Value: passwordHash}
}

// SelfHashGate builds a gate from the artifact's own fingerprint.
func SelfHashGate(fingerprint string) Gate {
	return Gate{Kind: GateSelfHash, Value: fingerprint}
}

func (g Gate) validate() error {
	switch g.Kind {
	case GateNone:
		if g.Value != "" {
			return fmt.Errorf("%w: open gate carries a value", common.ErrInvalidRecord)
		}
	case GatePasswordHash, GateSelfHash:
		if !isHexDigest(g.Value) {
			return fmt.Errorf("%w: gate value is not a sha256 hex digest", common.ErrInvalidRecord)
		}
	default:
		return fmt.Errorf("%w: unknown gate kind %q", common.ErrInvalidRecord, g.Kind)
	}
	return nil
}

// Version is an immutable archived snapshot of a former artifact head.
// Created only at the moment a head is about to be overwritten or replaced;
// never mutated afterwards.
type Version struct {
	VersionID   int64     `json:"version_id"` // monotonic, UnixMilli at archival
	FileName    string    `json:"file_name"`
	PayloadRef  string    `json:"payload_ref"`
	Fingerprint string    `json:"fingerprint"`
	IV          string    `json:"iv"`
	ArchivedAt  time.Time `json:"archived_at"`
}

// Collaborator is a flat attribute entry on an artifact. The client only
// persists and displays these; collaboration logic lives elsewhere.
type Collaborator struct {
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	AddedAt time.Time `json:"added_at"`
}

// Artifact is one encrypted object plus its metadata: a single current
// head (FileName/PayloadRef/Fingerprint/IV) and an append-only list of
// archived versions.
//
// Fingerprint always equals the digest of the plaintext that PayloadRef
// decrypts to for the holder of the key; the triple is produced atomically
// at encryption time and never re-verified afterwards.
type Artifact struct {
	ID          string
	OwnerID     string
	Title       string
	Description string

	FileName    string
	FileSize    int64
	FileType    string
	PayloadRef  string // data URI, or s3:// key for offloaded payloads
	Fingerprint string // hex digest of the plaintext
	IV          string // hex, 12 bytes, paired with the current payload

	License  string
	Gate     Gate
	IsPublic bool
	Price    *float64

	CreatedAt time.Time
	UpdatedAt time.Time

	Versions      []Version
	Collaborators []Collaborator
}

// Locked reports whether viewing the artifact requires a credential.
func (a *Artifact) Locked() bool { return a.Gate.Kind != GateNone }

// Validate checks a record read from the external store against the shape
// the core relies on. Store documents are duck-typed on the wire, so this
// runs at the read boundary rather than trusting arbitrary fields.
func (a *Artifact) Validate() error {
	if a.ID == "" || a.OwnerID == "" {
		return fmt.Errorf("%w: missing id or owner", common.ErrInvalidRecord)
	}
	if a.FileName == "" || a.PayloadRef == "" {
		return fmt.Errorf("%w: missing head payload", common.ErrInvalidRecord)
	}
	// A stored file name is a bare name, never a path: it is later joined
	// into the download directory.
	if a.FileName == "." || a.FileName == ".." || strings.ContainsAny(a.FileName, `/\`) {
		return fmt.Errorf("%w: file name contains path elements", common.ErrInvalidRecord)
	}
	if !isHexDigest(a.Fingerprint) {
		return fmt.Errorf("%w: malformed fingerprint", common.ErrInvalidRecord)
	}
	if len(a.IV) != 24 || !isHex(a.IV) {
		return fmt.Errorf("%w: malformed IV", common.ErrInvalidRecord)
	}
	return a.Gate.validate()
}

func isHexDigest(s string) bool { return len(s) == 64 && isHex(s) }

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
