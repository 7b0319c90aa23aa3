package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authenta/authenta/internal/client/blobstore"
	"github.com/authenta/authenta/internal/client/config"
	"github.com/authenta/authenta/internal/client/models"
	"github.com/authenta/authenta/internal/client/store"
	"github.com/authenta/authenta/internal/common"
	"github.com/authenta/authenta/internal/cryptox"
	"github.com/authenta/authenta/internal/logging"
)

const testOwner = "owner-1"

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testService(blobs blobstore.Client) (*store.InMemoryStore, *config.Config, ArtifactService) {
	st := store.NewInMemoryStore()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	if blobs != nil {
		cfg.S3Bucket = "test"
	}
	return st, cfg, NewArtifactService(st, blobs, cfg, testLogger())
}

func queueItem(name string, data []byte) *models.UploadQueueItem {
	return &models.UploadQueueItem{
		ID:       name,
		FileName: name,
		FileType: "text/plain",
		Data:     data,
		Status:   models.UploadIdle,
	}
}

type fakeBlobs struct {
	m map[string][]byte
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{m: make(map[string][]byte)} }

func (f *fakeBlobs) Put(ctx context.Context, data []byte) (string, error) {
	ref := fmt.Sprintf("s3://test/payloads/%d", len(f.m))
	f.m[ref] = append([]byte(nil), data...)
	return ref, nil
}

func (f *fakeBlobs) Get(ctx context.Context, ref string) ([]byte, error) {
	data, ok := f.m[ref]
	if !ok {
		return nil, common.ErrNotFound
	}
	return data, nil
}

func TestProcessBatch_WithPassword_TwoCopies(t *testing.T) {
	ctx := context.Background()
	st, _, svc := testService(nil)

	item := queueItem("design.pdf", []byte("blueprint content"))
	svc.ProcessBatch(ctx, testOwner, []*models.UploadQueueItem{item}, BatchOptions{
		Title:         "Engine Design",
		OwnerPassword: "hunter2",
	})

	require.Equal(t, models.UploadSuccess, item.Status)
	assert.Equal(t, float64(100), item.Progress)
	assert.Len(t, item.ResultKey, 64)
	assert.Len(t, item.ResultFingerprint, 64)
	assert.Nil(t, item.Data, "plaintext wiped on success")

	arts, err := st.ArtifactsByOwner(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, arts, 2)

	byTitle := map[string]*models.Artifact{}
	for _, a := range arts {
		byTitle[a.Title] = a
	}

	private := byTitle["Engine Design (Private Master)"]
	require.NotNil(t, private)
	assert.Equal(t, models.GatePasswordHash, private.Gate.Kind)
	assert.Equal(t, cryptox.Digest([]byte("hunter2")), private.Gate.Value)
	assert.False(t, private.IsPublic)

	shared := byTitle["Engine Design (Shared Copy)"]
	require.NotNil(t, shared)
	assert.Equal(t, models.GateSelfHash, shared.Gate.Kind)
	assert.Equal(t, item.ResultFingerprint, shared.Gate.Value)

	// Both copies carry the same head triple.
	assert.Equal(t, private.Fingerprint, shared.Fingerprint)
	assert.Equal(t, private.PayloadRef, shared.PayloadRef)
	assert.Equal(t, private.IV, shared.IV)
	assert.Equal(t, common.DefaultLicense, private.License)
}

func TestProcessBatch_NoPassword_IntegrityMaster(t *testing.T) {
	ctx := context.Background()
	st, _, svc := testService(nil)

	item := queueItem("notes.txt", []byte("lab notes"))
	svc.ProcessBatch(ctx, testOwner, []*models.UploadQueueItem{item}, BatchOptions{
		Title:      "Lab Notes",
		MakePublic: true,
	})

	require.Equal(t, models.UploadSuccess, item.Status)

	arts, err := st.ArtifactsByOwner(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, "Lab Notes (Integrity Master)", arts[0].Title)
	assert.Equal(t, models.GateSelfHash, arts[0].Gate.Kind)
	assert.True(t, arts[0].IsPublic)
}

func TestProcessBatch_MultiFileTitles(t *testing.T) {
	ctx := context.Background()
	st, _, svc := testService(nil)

	items := []*models.UploadQueueItem{
		queueItem("a.txt", []byte("aaa")),
		queueItem("b.txt", []byte("bbb")),
	}
	svc.ProcessBatch(ctx, testOwner, items, BatchOptions{Title: "Set"})

	arts, err := st.ArtifactsByOwner(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, arts, 2)

	var titles []string
	for _, a := range arts {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Set - a.txt (Integrity Master)")
	assert.Contains(t, titles, "Set - b.txt (Integrity Master)")
}

func TestProcessBatch_FailedItemDoesNotAbortBatch(t *testing.T) {
	ctx := context.Background()
	st, _, svc := testService(nil)

	st.CreateArtifactHook = func(a *models.Artifact) error {
		if strings.HasPrefix(a.FileName, "poison") {
			return common.ErrPersistenceDenied
		}
		return nil
	}

	items := []*models.UploadQueueItem{
		queueItem("first.txt", []byte("one")),
		queueItem("poison.txt", []byte("two")),
		queueItem("third.txt", []byte("three")),
	}
	svc.ProcessBatch(ctx, testOwner, items, BatchOptions{Title: "Batch"})

	assert.Equal(t, models.UploadSuccess, items[0].Status)
	assert.Equal(t, models.UploadError, items[1].Status)
	assert.Contains(t, items[1].ErrMsg, "Permission denied")
	assert.Equal(t, models.UploadSuccess, items[2].Status)

	arts, err := st.ArtifactsByOwner(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, arts, 2)

	// Retry runs only the failed item.
	st.CreateArtifactHook = nil
	svc.ProcessBatch(ctx, testOwner, items, BatchOptions{Title: "Batch"})

	assert.Equal(t, models.UploadSuccess, items[1].Status)
	arts, err = st.ArtifactsByOwner(ctx, testOwner)
	require.NoError(t, err)
	assert.Len(t, arts, 3, "successful items are not re-persisted")
}

func TestProcessBatch_PayloadTooLarge(t *testing.T) {
	ctx := context.Background()
	_, cfg, svc := testService(nil)
	cfg.EmbedLimitBytes = 64

	item := queueItem("big.bin", []byte(strings.Repeat("x", 1024)))
	svc.ProcessBatch(ctx, testOwner, []*models.UploadQueueItem{item}, BatchOptions{Title: "Big"})

	assert.Equal(t, models.UploadError, item.Status)
	assert.Contains(t, item.ErrMsg, "File too large")
}

func TestProcessBatch_OffloadsOverCeilingPayload(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobs()
	st, cfg, svc := testService(blobs)
	cfg.EmbedLimitBytes = 64

	item := queueItem("big.bin", []byte(strings.Repeat("x", 1024)))
	svc.ProcessBatch(ctx, testOwner, []*models.UploadQueueItem{item}, BatchOptions{Title: "Big"})

	require.Equal(t, models.UploadSuccess, item.Status)

	arts, err := st.ArtifactsByOwner(ctx, testOwner)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.True(t, blobstore.IsRef(arts[0].PayloadRef))
	assert.Len(t, blobs.m, 1)
}

func TestProcessBatch_ReportsProgress(t *testing.T) {
	ctx := context.Background()
	_, _, svc := testService(nil)

	var seen []float64
	item := queueItem("p.txt", []byte("payload"))
	svc.ProcessBatch(ctx, testOwner, []*models.UploadQueueItem{item}, BatchOptions{
		Title:      "P",
		OnProgress: func(i *models.UploadQueueItem) { seen = append(seen, i.Progress) },
	})

	require.NotEmpty(t, seen)
	assert.Equal(t, float64(10), seen[0])
	assert.Equal(t, float64(100), seen[len(seen)-1])
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1], "progress never moves backwards")
	}
}

func uploadOne(t *testing.T, svc ArtifactService, st *store.InMemoryStore, name string, content []byte) (*models.Artifact, string) {
	t.Helper()
	// The pipeline wipes the plaintext buffer on success; keep the caller's copy.
	item := queueItem(name, append([]byte(nil), content...))
	svc.ProcessBatch(context.Background(), testOwner, []*models.UploadQueueItem{item}, BatchOptions{Title: name})
	require.Equal(t, models.UploadSuccess, item.Status)

	arts, err := st.ArtifactsByOwner(context.Background(), testOwner)
	require.NoError(t, err)
	for _, a := range arts {
		if a.FileName == name {
			return a, item.ResultKey
		}
	}
	t.Fatalf("artifact for %s not found", name)
	return nil, ""
}

func TestPromoteNewVersion_ArchivesFormerHead(t *testing.T) {
	ctx := context.Background()
	st, _, svc := testService(nil)

	a, _ := uploadOne(t, svc, st, "v1.txt", []byte("version one"))
	oldFingerprint := a.Fingerprint
	oldPayload := a.PayloadRef

	enc, err := svc.PromoteNewVersion(ctx, a.ID, "v2.txt", []byte("version two"))
	require.NoError(t, err)
	assert.Len(t, enc.Key, 64)

	got, err := st.ArtifactByID(ctx, a.ID)
	require.NoError(t, err)

	assert.Equal(t, "v2.txt", got.FileName)
	assert.Equal(t, enc.Fingerprint, got.Fingerprint)
	assert.NotEqual(t, oldFingerprint, got.Fingerprint)

	require.Len(t, got.Versions, 1)
	archived := got.Versions[0]
	assert.Equal(t, oldFingerprint, archived.Fingerprint)
	assert.Equal(t, oldPayload, archived.PayloadRef)
	assert.Equal(t, "v1.txt", archived.FileName)
	assert.Positive(t, archived.VersionID)
}

func TestRevertToVersion_RestoresArchivedHead(t *testing.T) {
	ctx := context.Background()
	st, _, svc := testService(nil)

	a, _ := uploadOne(t, svc, st, "v1.txt", []byte("version one"))
	v1Fingerprint := a.Fingerprint

	_, err := svc.PromoteNewVersion(ctx, a.ID, "v2.txt", []byte("version two"))
	require.NoError(t, err)

	got, err := st.ArtifactByID(ctx, a.ID)
	require.NoError(t, err)
	v2Fingerprint := got.Fingerprint
	require.Len(t, got.Versions, 1)

	require.NoError(t, svc.RevertToVersion(ctx, a.ID, got.Versions[0].VersionID))

	got, err = st.ArtifactByID(ctx, a.ID)
	require.NoError(t, err)

	// Head is the old version again; the replaced head was archived, so the
	// history grew by exactly one and nothing was lost.
	assert.Equal(t, v1Fingerprint, got.Fingerprint)
	assert.Equal(t, "v1.txt", got.FileName)
	require.Len(t, got.Versions, 2)
	assert.Equal(t, v2Fingerprint, got.Versions[1].Fingerprint)
}

func TestRevertToVersion_UnknownVersion(t *testing.T) {
	ctx := context.Background()
	st, _, svc := testService(nil)

	a, _ := uploadOne(t, svc, st, "v1.txt", []byte("version one"))

	err := svc.RevertToVersion(ctx, a.ID, 12345)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDownload_RoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())

	ctx := context.Background()
	st, cfg, svc := testService(nil)

	content := []byte("the original plaintext")
	a, key := uploadOne(t, svc, st, "secret.txt", content)

	path, err := svc.Download(ctx, a, key)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(path), "secret.txt")
	assert.Contains(t, path, cfg.DownloadDir)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDownload_WrongKey(t *testing.T) {
	t.Chdir(t.TempDir())

	ctx := context.Background()
	st, _, svc := testService(nil)

	a, _ := uploadOne(t, svc, st, "secret.txt", []byte("content"))

	_, err := svc.Download(ctx, a, strings.Repeat("00", 32))
	assert.ErrorIs(t, err, common.ErrCorruptOrWrongKey)
}

func TestDownload_StoreFileNameCannotEscapeDownloadDir(t *testing.T) {
	t.Chdir(t.TempDir())

	ctx := context.Background()
	st, cfg, svc := testService(nil)

	a, key := uploadOne(t, svc, st, "secret.txt", []byte("content"))
	a.FileName = "../../escaped.txt"

	path, err := svc.Download(ctx, a, key)
	require.NoError(t, err)

	dir, err := filepath.Abs(cfg.DownloadDir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, "escaped.txt", filepath.Base(path))

	_, err = os.Stat(filepath.Join(dir, "..", "..", "escaped.txt"))
	assert.True(t, os.IsNotExist(err), "nothing may be written outside the download directory")
}

func TestDownload_UnusableFileName(t *testing.T) {
	t.Chdir(t.TempDir())

	ctx := context.Background()
	st, _, svc := testService(nil)

	a, key := uploadOne(t, svc, st, "secret.txt", []byte("content"))
	a.FileName = "../.."

	_, err := svc.Download(ctx, a, key)
	assert.ErrorIs(t, err, common.ErrInvalidRecord)
}

func TestDownload_OffloadedPayload(t *testing.T) {
	t.Chdir(t.TempDir())

	ctx := context.Background()
	blobs := newFakeBlobs()
	st, cfg, svc := testService(blobs)
	cfg.EmbedLimitBytes = 64

	content := []byte(strings.Repeat("big payload ", 100))
	a, key := uploadOne(t, svc, st, "big.bin", content)
	require.True(t, blobstore.IsRef(a.PayloadRef))

	path, err := svc.Download(ctx, a, key)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestSaveHashCertificate(t *testing.T) {
	t.Chdir(t.TempDir())

	st, _, svc := testService(nil)
	a, _ := uploadOne(t, svc, st, "idea.txt", []byte("idea"))

	path, err := svc.SaveHashCertificate(a)
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(got)
	assert.Contains(t, text, "Filename: idea.txt")
	assert.Contains(t, text, "SHA-256 Fingerprint: "+a.Fingerprint)
	assert.Contains(t, text, "Date: ")
}

func TestAddCollaborator_RequiresEmail(t *testing.T) {
	ctx := context.Background()
	st, _, svc := testService(nil)
	a, _ := uploadOne(t, svc, st, "x.txt", []byte("x"))

	assert.ErrorIs(t, svc.AddCollaborator(ctx, a.ID, "", "viewer"), common.ErrInvalidRecord)

	require.NoError(t, svc.AddCollaborator(ctx, a.ID, "bob@example.com", "viewer"))
	got, err := st.ArtifactByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Collaborators, 1)
	assert.Equal(t, "bob@example.com", got.Collaborators[0].Email)
}
