package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/authenta/authenta/internal/client/blobstore"
	"github.com/authenta/authenta/internal/client/config"
	"github.com/authenta/authenta/internal/client/services"
	"github.com/authenta/authenta/internal/client/session"
	"github.com/authenta/authenta/internal/client/store"
	"github.com/authenta/authenta/internal/logging"
)

// openStore is a test seam; tests swap it for an in-memory store.
var openStore = func(ctx context.Context, dsn string) (store.Store, *sql.DB, error) {
	st, db, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return st, db, nil
}

// App wires the interactive client: config, services and the per-sign-in
// session state.
type App struct {
	config   *config.Config
	artifact services.ArtifactService
	vault    services.VaultService
	sess     *session.Session
	logger   logging.Logger
	reader   *bufio.Reader
	db       *sql.DB
}

// NewApp connects to the document store, applies migrations and wires the
// services. Blob offload is enabled only when an S3 bucket is configured.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	st, db, err := openStore(ctx, cfg.StoreDSN)
	if err != nil {
		return nil, err
	}

	var blobs blobstore.Client
	if cfg.OffloadEnabled() {
		blobs = blobstore.NewS3Client(cfg)
	}

	return &App{
		config:   cfg,
		artifact: services.NewArtifactService(st, blobs, cfg, logger),
		vault:    services.NewVaultService(st, logger),
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		db:       db,
	}, nil
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.sess != nil {
			a.sess.End()
		}
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	a.Root(ctx)
}

func (a *App) isSignedIn() bool {
	return a.sess != nil
}

func (a *App) ownerID() string {
	if a.sess == nil {
		return ""
	}
	return a.sess.User().UID
}
