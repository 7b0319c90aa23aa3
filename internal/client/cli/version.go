package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var readFile = os.ReadFile

// Versions lists the archived versions of an artifact, oldest first.
func (a *App) Versions(ctx context.Context) error {
	art, err := a.promptArtifact(ctx)
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("head:  %-20s %s", art.FileName, art.Fingerprint))
	if len(art.Versions) == 0 {
		printlnFn("No archived versions.")
		return nil
	}
	for _, v := range art.Versions {
		printlnFn(fmt.Sprintf("%d  %-20s %s  archived %s",
			v.VersionID, v.FileName, v.Fingerprint, v.ArchivedAt.Format(time.RFC3339)))
	}
	return nil
}

// Promote encrypts a new file and installs it as the artifact's head; the
// former head is archived as a version in the same update.
func (a *App) Promote(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Artifact id", os.Stdout)
	if err != nil {
		return err
	}
	path, err := getSimpleText(a.reader, "Path of the new file", os.Stdout)
	if err != nil {
		return err
	}

	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	enc, err := a.artifact.PromoteNewVersion(ctx, id, filepath.Base(path), data)
	if err != nil {
		return err
	}

	printlnFn("New version installed.")
	printlnFn("  one-time key: " + enc.Key)
	printlnFn("  fingerprint:  " + enc.Fingerprint)
	return nil
}

// Revert restores an archived version as the head; the replaced head is
// archived in turn, so nothing is lost.
func (a *App) Revert(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Artifact id", os.Stdout)
	if err != nil {
		return err
	}
	raw, err := getSimpleText(a.reader, "Version id", os.Stdout)
	if err != nil {
		return err
	}
	versionID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("bad version id %q", raw)
	}

	if err := a.artifact.RevertToVersion(ctx, id, versionID); err != nil {
		return err
	}
	printlnFn("Reverted.")
	return nil
}
