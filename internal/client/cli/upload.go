package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/authenta/authenta/internal/client/models"
	"github.com/authenta/authenta/internal/client/services"
	"github.com/authenta/authenta/internal/common"
	"github.com/authenta/authenta/internal/datauri"
	"github.com/google/uuid"
)

const generatedPasswordLen = 16

// Upload prompts for batch metadata and file paths, then runs the encrypt-
// and-persist pipeline. Each file is fingerprinted, sealed with its own
// one-time key and stored as a password-gated private master plus a
// fingerprint-gated shared copy (or a single integrity master when no
// password is set). The one-time keys are printed exactly once.
func (a *App) Upload(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	if title == "" {
		return fmt.Errorf("title is required")
	}

	description, err := getSimpleText(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		return err
	}

	paths, err := getLines(a.reader, "File paths, one per line", os.Stdout)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files given")
	}

	answer, err := getSimpleText(a.reader, "Access password ('g' to generate, empty for none)", os.Stdout)
	if err != nil {
		return err
	}
	ownerPassword := answer
	if answer == "g" {
		ownerPassword, err = common.GenerateRandomPassword(generatedPasswordLen)
		if err != nil {
			return err
		}
		printlnFn("Generated access password:", ownerPassword)
	}

	public, err := getSimpleText(a.reader, "Make the shared copy public? (y/N)", os.Stdout)
	if err != nil {
		return err
	}

	var items []*models.UploadQueueItem
	for _, p := range paths {
		items = append(items, &models.UploadQueueItem{
			ID:       uuid.NewString(),
			FileName: filepath.Base(p),
			FileType: fileType(p),
			Path:     p,
			Status:   models.UploadIdle,
		})
	}

	a.artifact.ProcessBatch(ctx, a.ownerID(), items, services.BatchOptions{
		Title:         title,
		Description:   description,
		OwnerPassword: ownerPassword,
		MakePublic:    strings.EqualFold(public, "y"),
		OnProgress:    printItemProgress,
	})

	for _, item := range items {
		switch item.Status {
		case models.UploadSuccess:
			printlnFn(fmt.Sprintf("%s: ok", item.FileName))
			printlnFn("  one-time key: " + item.ResultKey)
			printlnFn("  fingerprint:  " + item.ResultFingerprint)
		case models.UploadError:
			printlnFn(fmt.Sprintf("%s: %s", item.FileName, item.ErrMsg))
		}
	}
	printlnFn("Keys are shown once and never stored. Keep them safe (see 'vsave').")
	return nil
}

func printItemProgress(item *models.UploadQueueItem) {
	line := fmt.Sprintf("[%-10s] %s %3.0f%%", item.Status, item.FileName, item.Progress)
	if item.SpeedMBps > 0 {
		line += fmt.Sprintf(" %.2f MB/s, ~%ds left", item.SpeedMBps, item.ETASeconds)
	}
	printlnFn(line)
}

func fileType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return datauri.DefaultMIME
}
