package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/authenta/authenta/internal/client/models"
	"github.com/authenta/authenta/internal/client/store/migrations"
	"github.com/authenta/authenta/internal/common"
	"github.com/authenta/authenta/internal/dbx"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresStore implements Store over a dbx.DBTX (*sql.DB or *sql.Tx).
// Version archival uses a JSONB append in the same UPDATE that overwrites
// the head, so archive-then-overwrite is one atomic document update.
type PostgresStore struct {
	db dbx.DBTX
}

// NewPostgresStore constructs a store bound to the given DBTX.
func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// Open connects to the DSN, applies the embedded migrations and returns a
// ready store.
func Open(ctx context.Context, dsn string) (*PostgresStore, *sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrating store: %w", err)
	}
	return NewPostgresStore(db), db, nil
}

// gooseUpContext is a seam for testing RunMigrations.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// mapPgError converts store-level failures into the sentinel taxonomy.
// Authorization rejections and size-limit rejections get their own
// categories; everything else passes through wrapped.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42501": // insufficient_privilege
			return fmt.Errorf("%w: %s (check the store's authorization rules)", common.ErrPersistenceDenied, pgErr.Message)
		case "54000", "53100", "22001": // limits / disk full / value too long
			return fmt.Errorf("%w: %s", common.ErrPayloadTooLarge, pgErr.Message)
		}
	}
	return err
}

// Ping checks both halves of the connection diagnostic: reachability and
// write authorization. The write check inserts a marker row and deletes it
// again inside one transaction, so a healthy store is left unchanged and an
// authorization rejection surfaces as ErrPersistenceDenied with a hint.
func (s *PostgresStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("store unreachable: %w", mapPgError(err))
	}

	db, ok := s.db.(*sql.DB)
	if !ok {
		// Already transactional; the caller's own writes verify authorization.
		return nil
	}

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		id := "diag-" + uuid.NewString()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO vault_items (id, owner_id, artifact_id, encrypted_password)
			VALUES ($1, $1, '', 'connection-check')
		`, id)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM vault_items WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("store write check failed: %w", mapPgError(err))
	}
	return nil
}

const artifactColumns = `id, owner_id, title, description, file_name, file_size, file_type,
		payload_ref, fingerprint, iv, license, gate_kind, gate_value,
		is_public, price, created_at, updated_at, versions, collaborators`

func (s *PostgresStore) CreateArtifact(ctx context.Context, a *models.Artifact) (string, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	a.UpdatedAt = a.CreatedAt

	versions, err := json.Marshal(emptyIfNilVersions(a.Versions))
	if err != nil {
		return "", fmt.Errorf("encoding versions: %w", err)
	}
	collaborators, err := json.Marshal(emptyIfNilCollaborators(a.Collaborators))
	if err != nil {
		return "", fmt.Errorf("encoding collaborators: %w", err)
	}

	query := `
		INSERT INTO artifacts (` + artifactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = s.db.ExecContext(ctx, query,
		a.ID, a.OwnerID, a.Title, a.Description, a.FileName, a.FileSize, a.FileType,
		a.PayloadRef, a.Fingerprint, a.IV, a.License, string(a.Gate.Kind), a.Gate.Value,
		a.IsPublic, a.Price, a.CreatedAt, a.UpdatedAt, versions, collaborators,
	)
	if err != nil {
		return "", fmt.Errorf("creating artifact: %w", mapPgError(err))
	}

	return a.ID, nil
}

func scanArtifact(scan func(dest ...any) error) (*models.Artifact, error) {
	var (
		a             models.Artifact
		gateKind      string
		price         sql.NullFloat64
		versions      []byte
		collaborators []byte
	)

	err := scan(
		&a.ID, &a.OwnerID, &a.Title, &a.Description, &a.FileName, &a.FileSize, &a.FileType,
		&a.PayloadRef, &a.Fingerprint, &a.IV, &a.License, &gateKind, &a.Gate.Value,
		&a.IsPublic, &price, &a.CreatedAt, &a.UpdatedAt, &versions, &collaborators,
	)
	if err != nil {
		return nil, err
	}

	a.Gate.Kind = models.GateKind(gateKind)
	if price.Valid {
		a.Price = &price.Float64
	}
	if err := json.Unmarshal(versions, &a.Versions); err != nil {
		return nil, fmt.Errorf("decoding versions: %w", err)
	}
	if err := json.Unmarshal(collaborators, &a.Collaborators); err != nil {
		return nil, fmt.Errorf("decoding collaborators: %w", err)
	}

	// Validate at the read boundary: store documents are not trusted.
	if err := a.Validate(); err != nil {
		return nil, err
	}

	return &a, nil
}

func (s *PostgresStore) ArtifactByID(ctx context.Context, id string) (*models.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifacts WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, id)

	a, err := scanArtifact(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading artifact: %w", mapPgError(err))
	}
	return a, nil
}

func (s *PostgresStore) queryArtifacts(ctx context.Context, query string, args ...any) ([]*models.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", mapPgError(err))
	}
	defer rows.Close()

	var result []*models.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) ArtifactsByOwner(ctx context.Context, ownerID string) ([]*models.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifacts WHERE owner_id = $1 ORDER BY created_at DESC`
	return s.queryArtifacts(ctx, query, ownerID)
}

func (s *PostgresStore) PublicArtifacts(ctx context.Context) ([]*models.Artifact, error) {
	query := `SELECT ` + artifactColumns + ` FROM artifacts WHERE is_public ORDER BY created_at DESC`
	return s.queryArtifacts(ctx, query)
}

func (s *PostgresStore) UpdateFields(ctx context.Context, id string, upd FieldUpdate) error {
	query := `
		UPDATE artifacts SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			is_public   = COALESCE($4, is_public),
			price       = COALESCE($5, price),
			updated_at  = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, upd.Title, upd.Description, upd.IsPublic, upd.Price)
	if err != nil {
		return fmt.Errorf("updating artifact: %w", mapPgError(err))
	}
	return requireOneRow(res)
}

// ReplaceHead overwrites the head fields and appends the archived version
// to the versions array in one UPDATE, so the old head is never lost even
// if a concurrent writer races on the same document (last writer wins per
// document, but archive and overwrite cannot be torn apart).
func (s *PostgresStore) ReplaceHead(ctx context.Context, id string, head Head, archived models.Version) error {
	encoded, err := json.Marshal(archived)
	if err != nil {
		return fmt.Errorf("encoding archived version: %w", err)
	}

	query := `
		UPDATE artifacts SET
			file_name   = $2,
			file_size   = $3,
			payload_ref = $4,
			fingerprint = $5,
			iv          = $6,
			versions    = versions || $7::jsonb,
			updated_at  = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		id, head.FileName, head.FileSize, head.PayloadRef, head.Fingerprint, head.IV, encoded)
	if err != nil {
		return fmt.Errorf("replacing head: %w", mapPgError(err))
	}
	return requireOneRow(res)
}

func (s *PostgresStore) AddCollaborator(ctx context.Context, id string, c models.Collaborator) error {
	encoded, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding collaborator: %w", err)
	}

	query := `
		UPDATE artifacts SET
			collaborators = collaborators || $2::jsonb,
			updated_at    = now()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, encoded)
	if err != nil {
		return fmt.Errorf("adding collaborator: %w", mapPgError(err))
	}
	return requireOneRow(res)
}

func (s *PostgresStore) DeleteArtifact(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM artifacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting artifact: %w", mapPgError(err))
	}
	return requireOneRow(res)
}

func (s *PostgresStore) SaveVaultItem(ctx context.Context, v *models.VaultItem) (string, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO vault_items (id, owner_id, artifact_id, file_name, fingerprint, encrypted_password, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.OwnerID, v.ArtifactID, v.FileName, v.Fingerprint, v.EncryptedPassword, v.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("saving vault item: %w", mapPgError(err))
	}
	return v.ID, nil
}

func (s *PostgresStore) VaultItemsByOwner(ctx context.Context, ownerID string) ([]*models.VaultItem, error) {
	query := `
		SELECT id, owner_id, artifact_id, file_name, fingerprint, encrypted_password, created_at
		FROM vault_items WHERE owner_id = $1 ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying vault items: %w", mapPgError(err))
	}
	defer rows.Close()

	var result []*models.VaultItem
	for rows.Next() {
		var v models.VaultItem
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.ArtifactID, &v.FileName, &v.Fingerprint,
			&v.EncryptedPassword, &v.CreatedAt); err != nil {
			return nil, err
		}
		if err := v.Validate(); err != nil {
			return nil, err
		}
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) DeleteVaultItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vault_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting vault item: %w", mapPgError(err))
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func emptyIfNilVersions(v []models.Version) []models.Version {
	if v == nil {
		return []models.Version{}
	}
	return v
}

func emptyIfNilCollaborators(c []models.Collaborator) []models.Collaborator {
	if c == nil {
		return []models.Collaborator{}
	}
	return c
}
