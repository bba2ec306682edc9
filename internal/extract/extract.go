package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupported signals a file extension outside the supported set.
// Callers use it to distinguish "we don't handle this format" from
// "we handle it but got no text out of it".
var ErrUnsupported = errors.New("unsupported file extension")

// SupportedExtensions lists file extensions this service can ingest.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".docx": true,
}

// IsSupported checks if a file extension is supported.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Text converts raw document bytes into plain text based on the file
// extension. It returns ErrUnsupported for unknown extensions; for
// supported formats, a failed or empty extraction is reported as an
// error so the caller must handle it rather than receive silent "".
func Text(data []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return plainText(data), nil
	case ".md", ".markdown":
		return markdownText(data), nil
	case ".pdf":
		return pdfText(data)
	case ".docx":
		return docxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}
