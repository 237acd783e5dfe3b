package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// allowedFormats is the closed set of accepted file extensions.
var allowedFormats = []string{"pdf", "jpg", "jpeg", "png", "doc", "docx"}

func formatAllowed(ext string) bool {
	for _, f := range allowedFormats {
		if f == ext {
			return true
		}
	}
	return false
}

// ValidateFile accepts or rejects an upload candidate by size and format
// before any storage mutation. It reads only file metadata and has no side
// effects; a nil return means the candidate is acceptable.
func ValidateFile(path string, maxSizeBytes int64) error {
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ValidationError{Message: "file does not exist"}
	}
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	if st.Size() == 0 {
		return &ValidationError{Message: "file is empty"}
	}
	if st.Size() > maxSizeBytes {
		return &ValidationError{Message: fmt.Sprintf(
			"file size (%.2fMB) exceeds limit (%.2fMB)", toMB(st.Size()), toMB(maxSizeBytes),
		)}
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !formatAllowed(ext) {
		return &ValidationError{Message: fmt.Sprintf(
			"file format .%s not allowed. Allowed: %s", ext, strings.Join(allowedFormats, ", "),
		)}
	}

	return nil
}
