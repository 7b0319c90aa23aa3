package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/authenta/authenta/internal/common"
)

const (
	fileKeySize = 32 // AES-256
	ivSize      = 12 // 96-bit GCM nonce
)

// EncryptedFileResult is the transient output of EncryptFile. It is consumed
// immediately by the upload orchestrator and never persisted as-is: the raw
// key is shown to the user once, only the IV and fingerprint travel with the
// artifact metadata.
type EncryptedFileResult struct {
	FileName     string
	OriginalSize int64
	Ciphertext   []byte
	Key          string // hex, 64 chars
	IV           string // hex, 24 chars
	Fingerprint  string // hex SHA-256 of the plaintext
	Timestamp    time.Time
}

// EncryptFile fingerprints plaintext, generates a fresh random 256-bit key
// and 96-bit IV and seals the content with AES-256-GCM. The fingerprint is
// always computed over the plaintext that the returned ciphertext decrypts
// to; the two are produced from the same buffer in one call and must never
// be recombined from separate reads.
func EncryptFile(fileName string, plaintext []byte) (*EncryptedFileResult, error) {
	fingerprint := Digest(plaintext)

	key := common.GenerateRandByteArray(fileKeySize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCryptoUnavailable, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCryptoUnavailable, err)
	}

	iv := common.GenerateRandByteArray(aesgcm.NonceSize())

	ciphertext := aesgcm.Seal(nil, iv, plaintext, nil)

	return &EncryptedFileResult{
		FileName:     fileName,
		OriginalSize: int64(len(plaintext)),
		Ciphertext:   ciphertext,
		Key:          hex.EncodeToString(key),
		IV:           hex.EncodeToString(iv),
		Fingerprint:  fingerprint,
		Timestamp:    time.Now(),
	}, nil
}

// DecryptFile reverses EncryptFile given the hex key and IV the owner kept.
// It fails closed: any malformed input or authentication-tag mismatch is
// reported as the single generic ErrCorruptOrWrongKey, and no partially
// decrypted output is ever returned.
func DecryptFile(ciphertext []byte, keyHex, ivHex string) ([]byte, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil || len(key) != fileKeySize {
		return nil, common.ErrCorruptOrWrongKey
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != ivSize {
		return nil, common.ErrCorruptOrWrongKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCryptoUnavailable, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCryptoUnavailable, err)
	}

	plaintext, err := aesgcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, common.ErrCorruptOrWrongKey
	}

	return plaintext, nil
}
