package config

import (
	"flag"
	"os"

	"github.com/authenta/authenta/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   store DSN (default from Config)
//	-o string   download directory
//	-s string   token secret
//	-b string   S3 bucket for blob offload (empty disables offload)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-o", "-s", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StoreDSN, "d", cfg.StoreDSN, "metadata store DSN")
	fs.StringVar(&cfg.DownloadDir, "o", cfg.DownloadDir, "directory for decrypted downloads")
	fs.StringVar(&cfg.TokenSecret, "s", cfg.TokenSecret, "identity token secret")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for blob offload")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
