// Package store is the boundary with the external metadata/document store.
// Artifact and vault-item records are JSON-like documents with query-by-field
// access, single-document atomic field updates and an append-to-array
// primitive used for version archival. The head overwrite and the archival
// append always travel in one update so a former head is never discarded
// without being archived first.
package store

import (
	"context"

	"github.com/authenta/authenta/internal/client/models"
)

// Head is the set of fields overwritten on an artifact when a new version
// is promoted or an old one restored.
type Head struct {
	FileName    string
	FileSize    int64
	PayloadRef  string
	Fingerprint string
	IV          string
}

// FieldUpdate is a partial update of an artifact's mutable metadata.
// Nil fields are left untouched.
type FieldUpdate struct {
	Title       *string
	Description *string
	IsPublic    *bool
	Price       *float64
}

// Store describes the operations the client needs from the document store.
// All errors are mapped to the common sentinel taxonomy where possible
// (ErrNotFound, ErrPersistenceDenied, ErrPayloadTooLarge).
type Store interface {
	// Ping verifies connectivity and write authorization; used by the
	// connection diagnostic.
	Ping(ctx context.Context) error

	CreateArtifact(ctx context.Context, a *models.Artifact) (string, error)
	ArtifactByID(ctx context.Context, id string) (*models.Artifact, error)
	// ArtifactsByOwner returns the owner's artifacts, newest first.
	ArtifactsByOwner(ctx context.Context, ownerID string) ([]*models.Artifact, error)
	// PublicArtifacts returns publicly listed artifacts, newest first.
	PublicArtifacts(ctx context.Context) ([]*models.Artifact, error)
	UpdateFields(ctx context.Context, id string, upd FieldUpdate) error
	// ReplaceHead archives the given version and overwrites the head in a
	// single document update.
	ReplaceHead(ctx context.Context, id string, head Head, archived models.Version) error
	AddCollaborator(ctx context.Context, id string, c models.Collaborator) error
	DeleteArtifact(ctx context.Context, id string) error

	SaveVaultItem(ctx context.Context, v *models.VaultItem) (string, error)
	VaultItemsByOwner(ctx context.Context, ownerID string) ([]*models.VaultItem, error)
	DeleteVaultItem(ctx context.Context, id string) error
}
