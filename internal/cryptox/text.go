package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/authenta/authenta/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16      // 128-bit salt
	kdfIters   = 100_000 // PBKDF2-HMAC-SHA256 iterations
	derivedLen = 32      // 256-bit derived key

	saltHexLen = saltSize * 2 // 32
	ivHexLen   = ivSize * 2   // 24
)

func deriveTextKey(masterPassword string, salt []byte) []byte {
	return pbkdf2.Key([]byte(masterPassword), salt, kdfIters, derivedLen, sha256.New)
}

// EncryptText encrypts a short text payload under a key derived from
// masterPassword with PBKDF2-HMAC-SHA256 and a fresh random salt and IV.
//
// The returned string is self-describing:
//
//	salt (32 hex chars) ‖ iv (24 hex chars) ‖ ciphertext (hex)
//
// so decryption later needs only the master password. The master password
// itself is never persisted anywhere.
func EncryptText(plaintext, masterPassword string) (string, error) {
	salt := common.GenerateRandByteArray(saltSize)
	iv := common.GenerateRandByteArray(ivSize)

	key := deriveTextKey(masterPassword, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrCryptoUnavailable, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrCryptoUnavailable, err)
	}

	ciphertext := aesgcm.Seal(nil, iv, []byte(plaintext), nil)

	return hex.EncodeToString(salt) + hex.EncodeToString(iv) + hex.EncodeToString(ciphertext), nil
}

// DecryptText reverses EncryptText: it splits the payload at the fixed salt
// and IV offsets, re-derives the key from the supplied password and the
// embedded salt and opens the AEAD ciphertext.
//
// Any failure — input too short, bad hex, authentication-tag mismatch — is
// reported as the single generic ErrCorruptOrWrongKey so no information
// about which part failed is revealed.
func DecryptText(encryptedHex, masterPassword string) (string, error) {
	if len(encryptedHex) <= saltHexLen+ivHexLen {
		return "", common.ErrCorruptOrWrongKey
	}

	salt, err := hex.DecodeString(encryptedHex[:saltHexLen])
	if err != nil {
		return "", common.ErrCorruptOrWrongKey
	}
	iv, err := hex.DecodeString(encryptedHex[saltHexLen : saltHexLen+ivHexLen])
	if err != nil {
		return "", common.ErrCorruptOrWrongKey
	}
	ciphertext, err := hex.DecodeString(encryptedHex[saltHexLen+ivHexLen:])
	if err != nil {
		return "", common.ErrCorruptOrWrongKey
	}

	key := deriveTextKey(masterPassword, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrCryptoUnavailable, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrCryptoUnavailable, err)
	}

	plaintext, err := aesgcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return "", common.ErrCorruptOrWrongKey
	}

	return string(plaintext), nil
}
