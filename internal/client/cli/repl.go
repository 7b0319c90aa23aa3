package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isSignedIn() bool
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error

	Upload(ctx context.Context) error
	List(ctx context.Context) error
	Public(ctx context.Context) error
	Show(ctx context.Context) error
	Lock(ctx context.Context) error
	Download(ctx context.Context) error
	Certificate(ctx context.Context) error
	Delete(ctx context.Context) error
	Publish(ctx context.Context) error
	AddCollaborator(ctx context.Context) error

	Versions(ctx context.Context) error
	Promote(ctx context.Context) error
	Revert(ctx context.Context) error

	SetMaster(ctx context.Context) error
	VaultSave(ctx context.Context) error
	VaultList(ctx context.Context) error
	VaultReveal(ctx context.Context) error
	VaultDelete(ctx context.Context) error

	Diagnose(ctx context.Context) error
}

const helpSignedIn = "Available commands: upload, (l)ist, public, show, lock, download, cert, " +
	"versions, promote, revert, publish, collab, delete, master, vsave, vault, reveal, vdel, diag, signout, exit"

const helpSignedOut = "Available commands: signin, diag, exit"

// runREPL reads a line from the provided scanner, parses the first token as
// the command, and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on scanner EOF or when the user
// types "exit" or "quit".
//
// Errors returned by command handlers are printed and swallowed so a failed
// command never terminates the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("authenta %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if cmd == "help" {
			if a.isSignedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}
			continue
		}

		if err := dispatch(ctx, a, cmd); err != nil {
			printlnFn(err.Error())
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string) error {
	if !a.isSignedIn() {
		switch cmd {
		case "signin":
			return a.SignIn(ctx)
		case "diag":
			return a.Diagnose(ctx)
		default:
			return fmt.Errorf("unknown command (or sign in first): %s", cmd)
		}
	}

	switch cmd {
	case "signin":
		return a.SignIn(ctx)
	case "signout":
		return a.SignOut(ctx)
	case "upload":
		return a.Upload(ctx)
	case "l", "list":
		return a.List(ctx)
	case "public":
		return a.Public(ctx)
	case "show":
		return a.Show(ctx)
	case "lock":
		return a.Lock(ctx)
	case "download":
		return a.Download(ctx)
	case "cert":
		return a.Certificate(ctx)
	case "delete":
		return a.Delete(ctx)
	case "publish":
		return a.Publish(ctx)
	case "collab":
		return a.AddCollaborator(ctx)
	case "versions":
		return a.Versions(ctx)
	case "promote":
		return a.Promote(ctx)
	case "revert":
		return a.Revert(ctx)
	case "master":
		return a.SetMaster(ctx)
	case "vsave":
		return a.VaultSave(ctx)
	case "vault":
		return a.VaultList(ctx)
	case "reveal":
		return a.VaultReveal(ctx)
	case "vdel":
		return a.VaultDelete(ctx)
	case "diag":
		return a.Diagnose(ctx)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}
