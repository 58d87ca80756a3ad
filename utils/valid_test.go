package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9876543210", "9876543210", true},
		{"+91 98765 43210", "9876543210", true},
		{"919876543210", "9876543210", true},
		{"09876543210", "9876543210", true},
		{"(987) 654-3210", "9876543210", true},
		{"98765", "", false},
		{"12345678901", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got, tc.in)
		} else {
			assert.ErrorIs(t, err, ErrInvalidPhone, tc.in)
		}
	}
}

func TestSanitizeEmail(t *testing.T) {
	email, err := SanitizeEmail("  Vendor@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "vendor@example.com", email)

	_, err = SanitizeEmail("not-an-email")
	assert.Error(t, err)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  hello<script>alert(1)</script> "))
	assert.Equal(t, "a &lt;b&gt;", SanitizeInput("a <b>"))
	assert.Equal(t, "line1\nline2", SanitizeInput("line1\nline2\x00"))
	assert.Equal(t, []string{"hindi", "english"}, SanitizeStringArray([]string{"hindi", " ", "english"}))
}

func TestCleanFilename(t *testing.T) {
	assert.Equal(t, "passwd", CleanFilename("../../etc/passwd"))
	assert.Equal(t, "mypan.pdf", CleanFilename("my pan.pdf"))
	assert.Equal(t, "evil.pdf", CleanFilename(`C:\temp\evil.pdf`))
	assert.Equal(t, "file", CleanFilename("..."))
}

func TestContentMatchesExtension(t *testing.T) {
	pdf := DetectMimeType([]byte("%PDF-1.7\n%binary"))
	assert.Equal(t, "application/pdf", pdf)
	assert.True(t, ContentMatchesExtension("doc.PDF", pdf))
	assert.False(t, ContentMatchesExtension("doc.png", pdf))
	assert.True(t, ContentMatchesExtension("doc.txt", "text/plain"))
}

func TestSaveAndRemoveFile(t *testing.T) {
	dir := t.TempDir()

	rel, err := SaveFileToPath(dir, "abc123", "../pan.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, "abc123/pan.pdf", rel)

	data, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	require.NoError(t, RemoveFileFromPath(dir, rel))
	_, err = os.Stat(filepath.Join(dir, rel))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, RemoveFileFromPath(dir, rel), "removing twice is not an error")
}
