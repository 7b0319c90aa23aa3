// Package services implements the client-side use cases: batch encrypt-and
// -persist uploads, version promotion and restore, downloads, and the
// password vault. Services depend on the store and blob interfaces only, so
// tests run against the in-memory store.
package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/authenta/authenta/internal/client/blobstore"
	"github.com/authenta/authenta/internal/client/config"
	"github.com/authenta/authenta/internal/client/models"
	"github.com/authenta/authenta/internal/client/progress"
	"github.com/authenta/authenta/internal/client/store"
	"github.com/authenta/authenta/internal/common"
	"github.com/authenta/authenta/internal/cryptox"
	"github.com/authenta/authenta/internal/datauri"
	"github.com/authenta/authenta/internal/filex"
	"github.com/authenta/authenta/internal/logging"
)

// Test seams.
var (
	timeNow   = time.Now
	readFile  = os.ReadFile
	writeFile = os.WriteFile
)

// Copy-title suffixes. The private master is the owner's password-gated
// record; the shared copy (or, when no password is set, the integrity
// master) is gated by the file's own fingerprint.
const (
	suffixPrivateMaster   = " (Private Master)"
	suffixSharedCopy      = " (Shared Copy)"
	suffixIntegrityMaster = " (Integrity Master)"
)

// BatchOptions carries the metadata shared by every item of one upload
// batch. OwnerPassword, when non-empty, additionally produces a
// password-gated private master per item.
type BatchOptions struct {
	Title       string
	Description string
	License     string
	Price       *float64
	MakePublic  bool

	OwnerPassword string

	// OnProgress, if non-nil, is invoked after every item state change.
	OnProgress func(item *models.UploadQueueItem)
}

// ArtifactService is the artifact use-case surface consumed by the CLI.
type ArtifactService interface {
	// ProcessBatch runs the upload pipeline over items sequentially.
	// Items already marked successful are skipped, so re-running a batch
	// retries only its failures. A failing item never aborts the batch.
	ProcessBatch(ctx context.Context, ownerID string, items []*models.UploadQueueItem, opts BatchOptions)

	List(ctx context.Context, ownerID string) ([]*models.Artifact, error)
	Public(ctx context.Context) ([]*models.Artifact, error)
	Get(ctx context.Context, id string) (*models.Artifact, error)

	// PromoteNewVersion archives the current head and installs freshly
	// encrypted content in its place. The returned result carries the new
	// one-time key for display.
	PromoteNewVersion(ctx context.Context, id, fileName string, plaintext []byte) (*cryptox.EncryptedFileResult, error)
	// RevertToVersion archives the current head and restores the fields of
	// an archived version as the new head.
	RevertToVersion(ctx context.Context, id string, versionID int64) error

	// Download fetches the artifact payload, decrypts it with the supplied
	// hex key and writes the plaintext into the configured download
	// directory, returning the written path.
	Download(ctx context.Context, a *models.Artifact, keyHex string) (string, error)
	// SaveHashCertificate writes a plain-text fingerprint certificate for
	// the artifact into the download directory.
	SaveHashCertificate(a *models.Artifact) (string, error)

	UpdateFields(ctx context.Context, id string, upd store.FieldUpdate) error
	AddCollaborator(ctx context.Context, id string, email, role string) error
	Delete(ctx context.Context, id string) error

	// Diagnose verifies store connectivity and write authorization.
	Diagnose(ctx context.Context) error
}

type artifactService struct {
	store  store.Store
	blobs  blobstore.Client
	cfg    *config.Config
	logger logging.Logger
}

// NewArtifactService wires an ArtifactService. blobs may be nil when payload
// offload is not configured; over-ceiling payloads then fail with
// ErrPayloadTooLarge.
func NewArtifactService(st store.Store, blobs blobstore.Client, cfg *config.Config, logger logging.Logger) ArtifactService {
	return &artifactService{store: st, blobs: blobs, cfg: cfg, logger: logger}
}

func (s *artifactService) ProcessBatch(ctx context.Context, ownerID string, items []*models.UploadQueueItem, opts BatchOptions) {
	multi := len(items) > 1

	for _, item := range items {
		if item.Status == models.UploadSuccess {
			continue
		}
		if err := s.processItem(ctx, ownerID, item, opts, multi); err != nil {
			item.Status = models.UploadError
			item.ErrMsg = failureMessage(err)
			s.logger.Error(ctx, "upload failed", "file", item.FileName, "error", err)
			notify(opts.OnProgress, item)
		}
	}
}

func (s *artifactService) processItem(ctx context.Context, ownerID string, item *models.UploadQueueItem, opts BatchOptions, multi bool) error {
	item.Status = models.UploadEncrypting
	item.Progress = 10
	item.ErrMsg = ""
	notify(opts.OnProgress, item)

	data := item.Data
	if data == nil {
		var err error
		data, err = readFile(item.Path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", item.Path, err)
		}
		// Re-readable on retry, so the buffer never outlives this item.
		defer common.WipeByteArray(data)
	}
	item.Size = int64(len(data))

	enc, err := cryptox.EncryptFile(item.FileName, data)
	if err != nil {
		return err
	}
	item.Progress = 20
	notify(opts.OnProgress, item)

	payloadRef, err := s.encodePayload(ctx, enc.Ciphertext, item.FileType)
	if err != nil {
		return err
	}

	baseTitle := opts.Title
	if multi {
		baseTitle = opts.Title + " - " + item.FileName
	}

	license := opts.License
	if license == "" {
		license = common.DefaultLicense
	}

	base := models.Artifact{
		OwnerID:     ownerID,
		Description: opts.Description,
		FileName:    enc.FileName,
		FileSize:    enc.OriginalSize,
		FileType:    item.FileType,
		PayloadRef:  payloadRef,
		Fingerprint: enc.Fingerprint,
		IV:          enc.IV,
		License:     license,
		Price:       opts.Price,
	}

	est := progress.NewEstimator(item.Size)
	item.Status = models.UploadUploading

	persist := func(a models.Artifact, lo, hi float64) error {
		item.Progress = progress.Band(0, lo, hi)
		notify(opts.OnProgress, item)

		if _, err := s.store.CreateArtifact(ctx, &a); err != nil {
			return err
		}

		item.SpeedMBps, item.ETASeconds = est.Sample(item.Size)
		item.Progress = progress.Band(1, lo, hi)
		notify(opts.OnProgress, item)
		return nil
	}

	if opts.OwnerPassword != "" {
		private := base
		private.Title = baseTitle + suffixPrivateMaster
		private.Gate = models.PasswordGate(cryptox.Digest([]byte(opts.OwnerPassword)))
		if err := persist(private, 20, 60); err != nil {
			return err
		}

		shared := base
		shared.Title = baseTitle + suffixSharedCopy
		shared.Gate = models.SelfHashGate(enc.Fingerprint)
		shared.IsPublic = opts.MakePublic
		if err := persist(shared, 60, 100); err != nil {
			return err
		}
	} else {
		integrity := base
		integrity.Title = baseTitle + suffixIntegrityMaster
		integrity.Gate = models.SelfHashGate(enc.Fingerprint)
		integrity.IsPublic = opts.MakePublic
		if err := persist(integrity, 20, 100); err != nil {
			return err
		}
	}

	item.Status = models.UploadSuccess
	item.Progress = 100
	item.ResultKey = enc.Key
	item.ResultFingerprint = enc.Fingerprint

	// Caller-supplied buffers are kept across failures for retry; once the
	// item succeeds the plaintext is wiped.
	if item.Data != nil {
		common.WipeByteArray(item.Data)
		item.Data = nil
	}

	notify(opts.OnProgress, item)
	return nil
}

// encodePayload embeds the ciphertext as a data URI, or offloads it to blob
// storage when it exceeds the embedding ceiling and offload is configured.
func (s *artifactService) encodePayload(ctx context.Context, ciphertext []byte, mime string) (string, error) {
	uri := datauri.Encode(ciphertext, mime)
	if int64(len(uri)) <= s.cfg.EmbedLimitBytes {
		return uri, nil
	}

	if s.blobs == nil || !s.cfg.OffloadEnabled() {
		return "", fmt.Errorf("%w: %d bytes encoded, limit %d",
			common.ErrPayloadTooLarge, len(uri), s.cfg.EmbedLimitBytes)
	}

	ref, err := s.blobs.Put(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("offloading payload: %w", err)
	}
	s.logger.Debug(ctx, "payload offloaded", "ref", ref, "size", len(ciphertext))
	return ref, nil
}

func (s *artifactService) List(ctx context.Context, ownerID string) ([]*models.Artifact, error) {
	return s.store.ArtifactsByOwner(ctx, ownerID)
}

func (s *artifactService) Public(ctx context.Context) ([]*models.Artifact, error) {
	return s.store.PublicArtifacts(ctx)
}

func (s *artifactService) Get(ctx context.Context, id string) (*models.Artifact, error) {
	return s.store.ArtifactByID(ctx, id)
}

// archiveHead snapshots the artifact's current head as an immutable version.
func archiveHead(a *models.Artifact) models.Version {
	now := timeNow()
	return models.Version{
		VersionID:   now.UnixMilli(),
		FileName:    a.FileName,
		PayloadRef:  a.PayloadRef,
		Fingerprint: a.Fingerprint,
		IV:          a.IV,
		ArchivedAt:  now,
	}
}

func (s *artifactService) PromoteNewVersion(ctx context.Context, id, fileName string, plaintext []byte) (*cryptox.EncryptedFileResult, error) {
	a, err := s.store.ArtifactByID(ctx, id)
	if err != nil {
		return nil, err
	}

	enc, err := cryptox.EncryptFile(fileName, plaintext)
	if err != nil {
		return nil, err
	}

	payloadRef, err := s.encodePayload(ctx, enc.Ciphertext, a.FileType)
	if err != nil {
		return nil, err
	}

	head := store.Head{
		FileName:    fileName,
		FileSize:    enc.OriginalSize,
		PayloadRef:  payloadRef,
		Fingerprint: enc.Fingerprint,
		IV:          enc.IV,
	}

	if err := s.store.ReplaceHead(ctx, id, head, archiveHead(a)); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "version promoted", "artifact", id, "file", fileName)
	return enc, nil
}

func (s *artifactService) RevertToVersion(ctx context.Context, id string, versionID int64) error {
	a, err := s.store.ArtifactByID(ctx, id)
	if err != nil {
		return err
	}

	var target *models.Version
	for i := range a.Versions {
		if a.Versions[i].VersionID == versionID {
			target = &a.Versions[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("version %d: %w", versionID, common.ErrNotFound)
	}

	head := store.Head{
		FileName:    target.FileName,
		FileSize:    a.FileSize,
		PayloadRef:  target.PayloadRef,
		Fingerprint: target.Fingerprint,
		IV:          target.IV,
	}

	if err := s.store.ReplaceHead(ctx, id, head, archiveHead(a)); err != nil {
		return err
	}

	s.logger.Info(ctx, "version restored", "artifact", id, "version", versionID)
	return nil
}

func (s *artifactService) fetchPayload(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case datauri.IsDataURI(ref):
		data, _, err := datauri.Decode(ref)
		return data, err
	case blobstore.IsRef(ref):
		if s.blobs == nil {
			return nil, errors.New("payload is offloaded but blob storage is not configured")
		}
		return s.blobs.Get(ctx, ref)
	default:
		return nil, fmt.Errorf("%w: unrecognized payload reference", common.ErrInvalidRecord)
	}
}

func (s *artifactService) Download(ctx context.Context, a *models.Artifact, keyHex string) (string, error) {
	ciphertext, err := s.fetchPayload(ctx, a.PayloadRef)
	if err != nil {
		return "", err
	}

	plaintext, err := cryptox.DecryptFile(ciphertext, keyHex, a.IV)
	if err != nil {
		return "", err
	}
	if cryptox.Digest(plaintext) != a.Fingerprint {
		return "", common.ErrCorruptOrWrongKey
	}

	name, err := safeFileName(a.FileName)
	if err != nil {
		return "", err
	}

	dir, err := filex.EnsureSubDir(s.cfg.DownloadDir)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := writeFile(path, plaintext, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// safeFileName flattens a stored file name to a bare base name. Artifact
// documents are validated at the read boundary, but callers can also hand
// in records built elsewhere, so the write site never trusts the name to
// stay inside the download directory on its own.
func safeFileName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, `\`, `/`))
	if base == "." || base == ".." || base == "/" || base == "" {
		return "", fmt.Errorf("%w: unusable file name %q", common.ErrInvalidRecord, name)
	}
	return base, nil
}

func (s *artifactService) SaveHashCertificate(a *models.Artifact) (string, error) {
	name, err := safeFileName(a.FileName)
	if err != nil {
		return "", err
	}

	dir, err := filex.EnsureSubDir(s.cfg.DownloadDir)
	if err != nil {
		return "", err
	}

	cert := fmt.Sprintf("Filename: %s\nSHA-256 Fingerprint: %s\nDate: %s\n",
		name, a.Fingerprint, timeNow().Format(time.RFC3339))

	path := filepath.Join(dir, name+".sha256.txt")
	if err := writeFile(path, []byte(cert), 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func (s *artifactService) UpdateFields(ctx context.Context, id string, upd store.FieldUpdate) error {
	return s.store.UpdateFields(ctx, id, upd)
}

func (s *artifactService) AddCollaborator(ctx context.Context, id string, email, role string) error {
	if email == "" {
		return fmt.Errorf("%w: collaborator email required", common.ErrInvalidRecord)
	}
	return s.store.AddCollaborator(ctx, id, models.Collaborator{
		Email:   email,
		Role:    role,
		AddedAt: timeNow(),
	})
}

func (s *artifactService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteArtifact(ctx, id)
}

func (s *artifactService) Diagnose(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func notify(fn func(*models.UploadQueueItem), item *models.UploadQueueItem) {
	if fn != nil {
		fn(item)
	}
}

// failureMessage maps pipeline errors onto the short operator-facing
// categories shown in the upload table.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrPersistenceDenied):
		return "Permission denied: the store rejected the write. Check your access rights."
	case errors.Is(err, common.ErrPayloadTooLarge):
		return "File too large: the encrypted payload exceeds the storage ceiling."
	case errors.Is(err, common.ErrCryptoUnavailable):
		return "Encryption is unavailable on this host."
	default:
		return "Upload failed: " + err.Error()
	}
}
