package common

import (
	"crypto/rand"
	"math/big"
)

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the host random source fails, which callers treat as
// ErrCryptoUnavailable territory.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// GenerateRandomPassword returns a random password of length n drawn from
// PasswordCharset, suitable for per-file access gates.
func GenerateRandomPassword(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(PasswordCharset)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = PasswordCharset[idx.Int64()]
	}
	return string(out), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Useful for removing master passwords and raw keys from memory
// after use. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
