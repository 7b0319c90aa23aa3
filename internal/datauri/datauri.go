// Package datauri implements the blob encoding boundary with the document
// store: ciphertext payloads travel as self-contained data-URI text
// (MIME-tagged base64) embedded in the artifact record.
package datauri

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultMIME is used when the caller has no better content type for the
// encrypted payload.
const DefaultMIME = "application/octet-stream"

// Encode wraps raw bytes as "data:<mime>;base64,<payload>".
func Encode(data []byte, mime string) string {
	if mime == "" {
		mime = DefaultMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode strips the metadata prefix and base64-decodes the payload,
// returning the raw bytes and the embedded MIME type. A payload without a
// recognizable prefix is rejected.
func Decode(uri string) ([]byte, string, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, "", fmt.Errorf("not a data URI")
	}

	meta, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI: missing payload separator")
	}

	mime := strings.TrimPrefix(meta, "data:")
	mime = strings.TrimSuffix(mime, ";base64")
	if mime == "" {
		mime = DefaultMIME
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding payload: %w", err)
	}

	return data, mime, nil
}

// IsDataURI reports whether ref is an embedded data-URI payload (as opposed
// to an external blob reference such as an s3:// key).
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}
