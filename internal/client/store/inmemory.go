package store

import (
	"context"
	"sync"
	"time"

	"github.com/authenta/authenta/internal/client/models"
	"github.com/authenta/authenta/internal/common"
	"github.com/google/uuid"
)

// InMemoryStore is a Store kept entirely in process memory. It backs tests
// and offline experimentation; records are deep-copied on the way in and
// out so callers never alias internal state.
type InMemoryStore struct {
	mu        sync.Mutex
	artifacts map[string]*models.Artifact
	vault     map[string]*models.VaultItem
	seq       map[string]int
	nextSeq   int

	// CreateArtifactHook, if non-nil, runs before each CreateArtifact;
	// returning an error rejects the write. Tests use it to simulate
	// persistence failures.
	CreateArtifactHook func(a *models.Artifact) error
}

// NewInMemoryStore returns an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		artifacts: make(map[string]*models.Artifact),
		vault:     make(map[string]*models.VaultItem),
		seq:       make(map[string]int),
	}
}

func (s *InMemoryStore) Ping(ctx context.Context) error { return nil }

func copyArtifact(a *models.Artifact) *models.Artifact {
	out := *a
	out.Versions = append([]models.Version(nil), a.Versions...)
	out.Collaborators = append([]models.Collaborator(nil), a.Collaborators...)
	if a.Price != nil {
		p := *a.Price
		out.Price = &p
	}
	return &out
}

func (s *InMemoryStore) CreateArtifact(ctx context.Context, a *models.Artifact) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateArtifactHook != nil {
		if err := s.CreateArtifactHook(a); err != nil {
			return "", err
		}
	}

	stored := copyArtifact(a)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	stored.UpdatedAt = stored.CreatedAt

	s.artifacts[stored.ID] = stored
	s.nextSeq++
	s.seq[stored.ID] = s.nextSeq

	return stored.ID, nil
}

func (s *InMemoryStore) ArtifactByID(ctx context.Context, id string) (*models.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.artifacts[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return copyArtifact(a), nil
}

func (s *InMemoryStore) list(filter func(a *models.Artifact) bool) []*models.Artifact {
	var out []*models.Artifact
	for _, a := range s.artifacts {
		if filter(a) {
			out = append(out, copyArtifact(a))
		}
	}
	// Newest first; insertion order breaks same-timestamp ties.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if s.seq[out[j].ID] > s.seq[out[i].ID] {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

func (s *InMemoryStore) ArtifactsByOwner(ctx context.Context, ownerID string) ([]*models.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(a *models.Artifact) bool { return a.OwnerID == ownerID }), nil
}

func (s *InMemoryStore) PublicArtifacts(ctx context.Context) ([]*models.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(a *models.Artifact) bool { return a.IsPublic }), nil
}

func (s *InMemoryStore) UpdateFields(ctx context.Context, id string, upd FieldUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.artifacts[id]
	if !ok {
		return common.ErrNotFound
	}
	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Description != nil {
		a.Description = *upd.Description
	}
	if upd.IsPublic != nil {
		a.IsPublic = *upd.IsPublic
	}
	if upd.Price != nil {
		p := *upd.Price
		a.Price = &p
	}
	a.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) ReplaceHead(ctx context.Context, id string, head Head, archived models.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.artifacts[id]
	if !ok {
		return common.ErrNotFound
	}

	// Append and overwrite under one lock: the in-memory equivalent of the
	// single-statement document update.
	a.Versions = append(a.Versions, archived)
	a.FileName = head.FileName
	a.FileSize = head.FileSize
	a.PayloadRef = head.PayloadRef
	a.Fingerprint = head.Fingerprint
	a.IV = head.IV
	a.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) AddCollaborator(ctx context.Context, id string, c models.Collaborator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.artifacts[id]
	if !ok {
		return common.ErrNotFound
	}
	a.Collaborators = append(a.Collaborators, c)
	a.UpdatedAt = time.Now()
	return nil
}

func (s *InMemoryStore) DeleteArtifact(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.artifacts[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.artifacts, id)
	delete(s.seq, id)
	return nil
}

func (s *InMemoryStore) SaveVaultItem(ctx context.Context, v *models.VaultItem) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *v
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.vault[stored.ID] = &stored
	return stored.ID, nil
}

func (s *InMemoryStore) VaultItemsByOwner(ctx context.Context, ownerID string) ([]*models.VaultItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.VaultItem
	for _, v := range s.vault {
		if v.OwnerID == ownerID {
			item := *v
			out = append(out, &item)
		}
	}
	return out, nil
}

func (s *InMemoryStore) DeleteVaultItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vault[id]; !ok {
		return common.ErrNotFound
	}
	delete(s.vault, id)
	return nil
}
