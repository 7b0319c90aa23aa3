package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPassword("Enter password", &out)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Unix newlines, stop on empty line",
			input:    "a.txt\nb.txt\n\n",
			expected: []string{"a.txt", "b.txt"},
		},
		{
			name:     "Windows CRLF, stop on empty line",
			input:    "a.txt\r\nb.txt\r\n\r\n",
			expected: []string{"a.txt", "b.txt"},
		},
		{
			name:     "Immediate blank line gives no entries",
			input:    "\n",
			expected: nil,
		},
		{
			name:     "EOF without trailing blank line",
			input:    "a.txt\nb.txt",
			expected: []string{"a.txt", "b.txt"},
		},
		{
			name:     "Surrounding whitespace is trimmed",
			input:    "  a.txt  \n\n",
			expected: []string{"a.txt"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetLines(rdr(tc.input), "Paths", &out)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}
