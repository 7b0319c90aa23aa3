package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/authenta/authenta/internal/client/models"
	"github.com/authenta/authenta/internal/common"
)

// SetMaster prompts for the vault master password and keeps it for the
// session only. It is never persisted or sent anywhere.
func (a *App) SetMaster(ctx context.Context) error {
	pw, err := getPassword("Master password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if len(pw) == 0 {
		return fmt.Errorf("master password must not be empty")
	}

	a.sess.SetMasterPassword(pw)
	printlnFn("Vault unlocked for this session.")
	return nil
}

// VaultSave encrypts an artifact's access password under the session master
// password and stores it.
func (a *App) VaultSave(ctx context.Context) error {
	master, ok := a.sess.MasterPassword()
	if !ok {
		return fmt.Errorf("set the master password first (see 'master')")
	}

	art, err := a.promptArtifact(ctx)
	if err != nil {
		return err
	}

	pw, err := getPassword("Access password to store", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	id, err := a.vault.Save(ctx, a.ownerID(), art, string(pw), master)
	if err != nil {
		return err
	}
	printlnFn("Stored as", id)
	return nil
}

// VaultList prints the stored vault items without decrypting anything.
func (a *App) VaultList(ctx context.Context) error {
	items, err := a.vault.List(ctx, a.ownerID())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		printlnFn("Vault is empty.")
		return nil
	}
	for _, item := range items {
		printlnFn(fmt.Sprintf("%s  %-20s %s", item.ID, item.FileName, item.Fingerprint))
	}
	return nil
}

// VaultReveal decrypts one stored password with the session master password.
// Once revealed, the secret is cached in the session for re-display until
// the item is locked or the session ends.
func (a *App) VaultReveal(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Vault item id", os.Stdout)
	if err != nil {
		return err
	}

	if secret, ok := a.sess.RevealedSecret(id); ok {
		printlnFn("Password:", secret)
		return nil
	}

	master, ok := a.sess.MasterPassword()
	if !ok {
		return fmt.Errorf("set the master password first (see 'master')")
	}

	item, err := a.findVaultItem(ctx, id)
	if err != nil {
		return err
	}

	secret, err := a.vault.Reveal(item, master)
	if err != nil {
		return err
	}

	a.sess.RevealSecret(id, secret)
	printlnFn("Password:", secret)
	return nil
}

// VaultDelete removes one vault item.
func (a *App) VaultDelete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Vault item id", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.vault.Delete(ctx, id); err != nil {
		return err
	}
	a.sess.Lock(id)
	printlnFn("Deleted.")
	return nil
}

func (a *App) findVaultItem(ctx context.Context, id string) (*models.VaultItem, error) {
	items, err := a.vault.List(ctx, a.ownerID())
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("vault item %s: %w", id, common.ErrNotFound)
}
