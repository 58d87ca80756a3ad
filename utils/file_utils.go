package utils

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// CleanFilename removes any potentially dangerous characters from the filename
func CleanFilename(filename string) string {
	// Remove any path components
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	cleaned := unsafeFilenameChars.ReplaceAllString(filename, "")
	cleaned = strings.TrimLeft(cleaned, ".")
	if cleaned == "" {
		return "file"
	}
	return cleaned
}

// DetectMimeType sniffs the content type from the first bytes of data
func DetectMimeType(data []byte) string {
	mimeType := http.DetectContentType(data)
	if idx := strings.Index(mimeType, ";"); idx > 0 {
		mimeType = mimeType[:idx]
	}
	return mimeType
}

var extensionMimeTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
}

// ContentMatchesExtension reports whether sniffed content agrees with the file extension.
// Extensions without a known signature are accepted.
func ContentMatchesExtension(filename, mimeType string) bool {
	expected, ok := extensionMimeTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return true
	}
	for _, m := range expected {
		if m == mimeType {
			return true
		}
	}
	return false
}

// SaveFileToPath writes data below baseDir/subDir and returns the path relative to baseDir
func SaveFileToPath(baseDir, subDir, filename string, data []byte) (string, error) {
	rel := filepath.Join(CleanFilename(subDir), CleanFilename(filename))
	fullPath := filepath.Join(baseDir, rel)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %v", filepath.Dir(fullPath), err)
	}

	// Write the file with restricted permissions
	if err := os.WriteFile(fullPath, data, 0640); err != nil {
		return "", fmt.Errorf("failed to write file %s: %v", fullPath, err)
	}
	return filepath.ToSlash(rel), nil
}

// RemoveFileFromPath deletes a file previously saved with SaveFileToPath
func RemoveFileFromPath(baseDir, rel string) error {
	clean := filepath.Clean("/" + rel)
	if err := os.Remove(filepath.Join(baseDir, clean)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file %s: %v", rel, err)
	}
	return nil
}
