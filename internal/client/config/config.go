// Package config loads runtime settings for the Authenta CLI.
// Sources are applied in order: defaults, then a JSON file (if provided
// via -c/-config), then command-line flags. Later sources win.
package config

import (
	"time"

	"github.com/authenta/authenta/internal/common"
)

// Config holds runtime settings for the Authenta CLI.
//
// Fields:
//   - StoreDSN: PostgreSQL DSN (pgx) of the metadata/document store.
//   - DownloadDir: subdirectory for decrypted downloads.
//   - EmbedLimitBytes: soft per-document ceiling for embedded payloads.
//   - TokenSecret: HMAC secret for verifying identity-provider tokens.
//   - RequestTimeout: per-operation timeout for store calls.
//   - S3Bucket/S3Region/S3BaseEndpoint/S3AccessKey/S3SecretKey: optional
//     blob-offload target for payloads above EmbedLimitBytes. Offload is
//     enabled when S3Bucket is non-empty.
type Config struct {
	StoreDSN        string
	DownloadDir     string
	EmbedLimitBytes int64
	TokenSecret     string
	RequestTimeout  time.Duration

	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StoreDSN = "postgres://localhost:5432/authenta"
	c.DownloadDir = "downloads"
	c.EmbedLimitBytes = common.DefaultEmbedLimitBytes
	c.RequestTimeout = 30 * time.Second
}

// OffloadEnabled reports whether over-ceiling payloads may be written to
// the S3 target instead of failing with ErrPayloadTooLarge.
func (c *Config) OffloadEnabled() bool { return c.S3Bucket != "" }

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
