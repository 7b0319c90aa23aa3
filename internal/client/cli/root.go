package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	if a.sess == nil {
		return "(signed out)"
	}
	return fmt.Sprintf("(%s)", a.sess.User().Email)
}

// Root starts the interactive loop on stdin.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to the Authenta CLI (type 'help' for commands)")

	if err := a.SignIn(ctx); err != nil {
		printlnFn(err.Error())
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
