package services

import (
	"context"

	"github.com/authenta/authenta/internal/client/models"
	"github.com/authenta/authenta/internal/client/store"
	"github.com/authenta/authenta/internal/common"
	"github.com/authenta/authenta/internal/cryptox"
	"github.com/authenta/authenta/internal/logging"
)

// VaultService stores per-file access passwords encrypted under the session
// master password. The master password itself never reaches the store; a
// wrong one at reveal time surfaces as ErrCorruptOrWrongKey.
type VaultService interface {
	// Save encrypts password under masterPassword and persists it linked to
	// the artifact. Returns the new vault item id.
	Save(ctx context.Context, ownerID string, a *models.Artifact, password, masterPassword string) (string, error)
	List(ctx context.Context, ownerID string) ([]*models.VaultItem, error)
	// Reveal decrypts one stored password with the supplied master password.
	Reveal(item *models.VaultItem, masterPassword string) (string, error)
	Delete(ctx context.Context, id string) error
}

type vaultService struct {
	store  store.Store
	logger logging.Logger
}

func NewVaultService(st store.Store, logger logging.Logger) VaultService {
	return &vaultService{store: st, logger: logger}
}

func (s *vaultService) Save(ctx context.Context, ownerID string, a *models.Artifact, password, masterPassword string) (string, error) {
	if masterPassword == "" {
		return "", common.ErrAuthenticationFailed
	}

	encrypted, err := cryptox.EncryptText(password, masterPassword)
	if err != nil {
		return "", err
	}

	id, err := s.store.SaveVaultItem(ctx, &models.VaultItem{
		OwnerID:           ownerID,
		ArtifactID:        a.ID,
		FileName:          a.FileName,
		Fingerprint:       a.Fingerprint,
		EncryptedPassword: encrypted,
	})
	if err != nil {
		return "", err
	}

	s.logger.Debug(ctx, "vault item saved", "artifact", a.ID)
	return id, nil
}

func (s *vaultService) List(ctx context.Context, ownerID string) ([]*models.VaultItem, error) {
	return s.store.VaultItemsByOwner(ctx, ownerID)
}

func (s *vaultService) Reveal(item *models.VaultItem, masterPassword string) (string, error) {
	return cryptox.DecryptText(item.EncryptedPassword, masterPassword)
}

func (s *vaultService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteVaultItem(ctx, id)
}
