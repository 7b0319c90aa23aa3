package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/authenta/authenta/internal/client/models"
	"github.com/authenta/authenta/internal/client/store"
	"github.com/authenta/authenta/internal/common"
)

// List prints the signed-in user's artifacts, newest first.
func (a *App) List(ctx context.Context) error {
	arts, err := a.artifact.List(ctx, a.ownerID())
	if err != nil {
		return err
	}
	printArtifactTable(arts)
	return nil
}

// Public prints the publicly listed artifacts of all users.
func (a *App) Public(ctx context.Context) error {
	arts, err := a.artifact.Public(ctx)
	if err != nil {
		return err
	}
	printArtifactTable(arts)
	return nil
}

func printArtifactTable(arts []*models.Artifact) {
	if len(arts) == 0 {
		printlnFn("No artifacts.")
		return
	}
	for _, art := range arts {
		state := "unlocked"
		if art.Locked() {
			state = "locked"
		}
		printlnFn(fmt.Sprintf("%s  %-30s %-20s %8d B  %s  versions:%d",
			art.ID, art.Title, art.FileName, art.FileSize, state, len(art.Versions)))
	}
}

// Show fetches one artifact and, if it is gated and not yet unlocked this
// session, prompts for the credential first.
func (a *App) Show(ctx context.Context) error {
	art, err := a.promptArtifact(ctx)
	if err != nil {
		return err
	}

	if art.Locked() && !a.sess.Unlocked(art.ID) {
		if err := a.unlock(ctx, art); err != nil {
			return err
		}
	}

	printlnFn("Title:       " + art.Title)
	printlnFn("Description: " + art.Description)
	printlnFn("File:        " + art.FileName)
	printlnFn("Type:        " + art.FileType)
	printlnFn("License:     " + art.License)
	printlnFn("Fingerprint: " + art.Fingerprint)
	printlnFn(fmt.Sprintf("Public:      %v", art.IsPublic))
	printlnFn(fmt.Sprintf("Versions:    %d", len(art.Versions)))
	for _, c := range art.Collaborators {
		printlnFn(fmt.Sprintf("Collaborator: %s (%s)", c.Email, c.Role))
	}
	return nil
}

func (a *App) unlock(ctx context.Context, art *models.Artifact) error {
	switch art.Gate.Kind {
	case models.GatePasswordHash:
		pw, err := getPassword("Access password", os.Stdout)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)
		if err := a.sess.ResolveUnlock(art, string(pw)); err != nil {
			return err
		}

	case models.GateSelfHash:
		cred, err := getSimpleText(a.reader, "Enter the file's SHA-256 fingerprint", os.Stdout)
		if err != nil {
			return err
		}
		if err := a.sess.ResolveUnlock(art, cred); err != nil {
			return err
		}
	}

	printlnFn("Unlocked.")
	return nil
}

// Lock re-locks one artifact for this session and forgets any secret
// revealed for it.
func (a *App) Lock(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Artifact id", os.Stdout)
	if err != nil {
		return err
	}
	a.sess.Lock(id)
	printlnFn("Locked.")
	return nil
}

// Download decrypts an artifact's payload with a user-supplied key and
// writes the plaintext into the download directory.
func (a *App) Download(ctx context.Context) error {
	art, err := a.promptArtifact(ctx)
	if err != nil {
		return err
	}

	key, err := getPassword("Decryption key (hex)", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	path, err := a.artifact.Download(ctx, art, strings.TrimSpace(string(key)))
	if err != nil {
		return err
	}
	printlnFn("Saved to", path)
	return nil
}

// Certificate writes a plain-text fingerprint certificate for an artifact.
func (a *App) Certificate(ctx context.Context) error {
	art, err := a.promptArtifact(ctx)
	if err != nil {
		return err
	}
	path, err := a.artifact.SaveHashCertificate(art)
	if err != nil {
		return err
	}
	printlnFn("Saved to", path)
	return nil
}

// Delete removes an artifact record. The encrypted payload embedded in it
// is gone with the record; offloaded blobs are left for garbage collection.
func (a *App) Delete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Artifact id", os.Stdout)
	if err != nil {
		return err
	}
	confirm, err := getSimpleText(a.reader, "Delete "+id+"? (y/N)", os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "y") {
		printlnFn("Cancelled.")
		return nil
	}
	if err := a.artifact.Delete(ctx, id); err != nil {
		return err
	}
	printlnFn("Deleted.")
	return nil
}

// Publish toggles the public listing flag of an artifact.
func (a *App) Publish(ctx context.Context) error {
	art, err := a.promptArtifact(ctx)
	if err != nil {
		return err
	}

	public := !art.IsPublic
	if err := a.artifact.UpdateFields(ctx, art.ID, store.FieldUpdate{IsPublic: &public}); err != nil {
		return err
	}
	if public {
		printlnFn("Now public.")
	} else {
		printlnFn("Now private.")
	}
	return nil
}

// AddCollaborator appends a collaborator entry to an artifact.
func (a *App) AddCollaborator(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Artifact id", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Collaborator email", os.Stdout)
	if err != nil {
		return err
	}
	role, err := getSimpleText(a.reader, "Role (viewer/editor)", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.artifact.AddCollaborator(ctx, id, email, role); err != nil {
		return err
	}
	printlnFn("Added.")
	return nil
}

// Diagnose checks store connectivity and write authorization.
func (a *App) Diagnose(ctx context.Context) error {
	if err := a.artifact.Diagnose(ctx); err != nil {
		return fmt.Errorf("store check failed: %w", err)
	}
	printlnFn("Store connection OK.")
	return nil
}

func (a *App) promptArtifact(ctx context.Context) (*models.Artifact, error) {
	id, err := getSimpleText(a.reader, "Artifact id", os.Stdout)
	if err != nil {
		return nil, err
	}
	return a.artifact.Get(ctx, id)
}
