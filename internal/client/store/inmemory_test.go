package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/authenta/authenta/internal/client/models"
	"github.com/authenta/authenta/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact(owner, name string) *models.Artifact {
	fp := strings.Repeat("ab", 32)
	return &models.Artifact{
		OwnerID:     owner,
		Title:       "t-" + name,
		FileName:    name,
		PayloadRef:  "data:application/octet-stream;base64,AA==",
		Fingerprint: fp,
		IV:          strings.Repeat("0f", 12),
		Gate:        models.SelfHashGate(fp),
	}
}

func TestInMemoryStore_CreateAndGet(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	id, err := s.CreateArtifact(ctx, testArtifact("u1", "a.txt"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.ArtifactByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got.FileName)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.ArtifactByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestInMemoryStore_CopiesDoNotAlias(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	id, err := s.CreateArtifact(ctx, testArtifact("u1", "a.txt"))
	require.NoError(t, err)

	got, err := s.ArtifactByID(ctx, id)
	require.NoError(t, err)
	got.Title = "mutated"
	got.Versions = append(got.Versions, models.Version{VersionID: 1})

	again, err := s.ArtifactByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "t-a.txt", again.Title)
	assert.Empty(t, again.Versions)
}

func TestInMemoryStore_ListNewestFirst(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	first, err := s.CreateArtifact(ctx, testArtifact("u1", "first.txt"))
	require.NoError(t, err)
	second, err := s.CreateArtifact(ctx, testArtifact("u1", "second.txt"))
	require.NoError(t, err)
	_, err = s.CreateArtifact(ctx, testArtifact("other", "x.txt"))
	require.NoError(t, err)

	list, err := s.ArtifactsByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID)
	assert.Equal(t, first, list[1].ID)
}

func TestInMemoryStore_PublicArtifacts(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	pub := testArtifact("u1", "pub.txt")
	pub.IsPublic = true
	pubID, err := s.CreateArtifact(ctx, pub)
	require.NoError(t, err)
	_, err = s.CreateArtifact(ctx, testArtifact("u1", "priv.txt"))
	require.NoError(t, err)

	list, err := s.PublicArtifacts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pubID, list[0].ID)
}

func TestInMemoryStore_UpdateFields(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	id, err := s.CreateArtifact(ctx, testArtifact("u1", "a.txt"))
	require.NoError(t, err)

	public := true
	price := 9.99
	require.NoError(t, s.UpdateFields(ctx, id, FieldUpdate{IsPublic: &public, Price: &price}))

	got, err := s.ArtifactByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsPublic)
	require.NotNil(t, got.Price)
	assert.Equal(t, 9.99, *got.Price)
	assert.Equal(t, "t-a.txt", got.Title, "untouched fields stay")

	assert.ErrorIs(t, s.UpdateFields(ctx, "missing", FieldUpdate{}), common.ErrNotFound)
}

func TestInMemoryStore_ReplaceHead_ArchivesAndOverwrites(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	a := testArtifact("u1", "v1.txt")
	id, err := s.CreateArtifact(ctx, a)
	require.NoError(t, err)

	newFP := strings.Repeat("cd", 32)
	archived := models.Version{
		VersionID:   time.Now().UnixMilli(),
		FileName:    a.FileName,
		PayloadRef:  a.PayloadRef,
		Fingerprint: a.Fingerprint,
		IV:          a.IV,
		ArchivedAt:  time.Now(),
	}
	head := Head{
		FileName:    "v2.txt",
		FileSize:    10,
		PayloadRef:  "data:application/octet-stream;base64,AQ==",
		Fingerprint: newFP,
		IV:          strings.Repeat("1e", 12),
	}

	require.NoError(t, s.ReplaceHead(ctx, id, head, archived))

	got, err := s.ArtifactByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v2.txt", got.FileName)
	assert.Equal(t, newFP, got.Fingerprint)
	require.Len(t, got.Versions, 1)
	assert.Equal(t, a.Fingerprint, got.Versions[0].Fingerprint)

	assert.ErrorIs(t, s.ReplaceHead(ctx, "missing", head, archived), common.ErrNotFound)
}

func TestInMemoryStore_CreateArtifactHook(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	boom := errors.New("store down")
	s.CreateArtifactHook = func(a *models.Artifact) error { return boom }

	_, err := s.CreateArtifact(ctx, testArtifact("u1", "a.txt"))
	assert.ErrorIs(t, err, boom)

	list, err := s.ArtifactsByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list, "rejected write must not persist")
}

func TestInMemoryStore_VaultItems(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	id, err := s.SaveVaultItem(ctx, &models.VaultItem{
		OwnerID:           "u1",
		ArtifactID:        "a1",
		FileName:          "a.txt",
		EncryptedPassword: "deadbeef",
	})
	require.NoError(t, err)

	items, err := s.VaultItemsByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)

	require.NoError(t, s.DeleteVaultItem(ctx, id))
	assert.ErrorIs(t, s.DeleteVaultItem(ctx, id), common.ErrNotFound)
}
