package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/authenta/authenta/internal/client/session"
	"github.com/authenta/authenta/internal/identity"
)

// getSimpleText, getPassword and getLines are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getLines      = GetLines
)

// SignIn prompts for an identity-provider token, verifies it and opens a
// fresh, fully locked session for the embedded user.
func (a *App) SignIn(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Paste identity token", os.Stdout)
	if err != nil {
		return err
	}

	user, err := identity.ParseToken(token, []byte(a.config.TokenSecret))
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	if a.sess != nil {
		a.sess.End()
	}
	a.sess = session.New(*user)

	printlnFn("Signed in as", user.Email)
	return nil
}

// SignOut wipes the session: master password, unlocked artifacts and
// revealed secrets are all forgotten.
func (a *App) SignOut(ctx context.Context) error {
	if a.sess != nil {
		a.sess.End()
		a.sess = nil
	}
	printlnFn("Signed out")
	return nil
}
