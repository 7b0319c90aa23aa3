// Package cli implements the interactive Authenta client: a small REPL over
// the artifact and vault services. All prompts go through swappable input
// seams so command handlers are testable without a terminal.
package cli
