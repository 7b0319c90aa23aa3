package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest_StableAndWellFormed(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"short text", []byte("hello")},
		{"binary", []byte{0x00, 0xff, 0x10, 0x80}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d1 := Digest(tc.in)
			d2 := Digest(tc.in)

			assert.Equal(t, d1, d2, "digest must be deterministic")
			assert.Len(t, d1, 64)
			assert.Equal(t, strings.ToLower(d1), d1, "digest must be lowercase hex")
		})
	}
}

func TestDigest_KnownVector(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	assert.Equal(t, want, Digest([]byte("abc")))
}

func TestDigest_SingleBitDifference(t *testing.T) {
	a := []byte{0b0000_0000}
	b := []byte{0b0000_0001}
	assert.NotEqual(t, Digest(a), Digest(b))
}
