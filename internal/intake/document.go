// Package intake reads denial letters, policies and batch manifests into
// the plain text the analysis works on.
package intake

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedFormat is returned for files whose text must be
	// extracted elsewhere, such as PDFs and scanned images.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrTooLarge is returned when a document exceeds the size limit.
	ErrTooLarge = errors.New("document exceeds size limit")
)

// DefaultMaxBytes is the document size limit when none is configured.
const DefaultMaxBytes = 10 << 20

// ReadDocument returns the text of a .txt, .md or .html file.
func ReadDocument(path string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if info.Size() > maxBytes {
		return "", fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrTooLarge, filepath.Base(path), info.Size(), maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf", ".png", ".jpg", ".jpeg", ".docx":
		return "", fmt.Errorf("%w: %s (extract the text first)", ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	switch ext {
	case ".html", ".htm":
		return HTMLText(bytes.NewReader(data))
	case ".txt", ".md", ".text", "":
		return PlainText(data)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// PlainText validates and normalizes text file content.
func PlainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: not UTF-8 text", ErrUnsupportedFormat)
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// ReadOptional reads a document if path is set and returns "" otherwise.
func ReadOptional(path string, maxBytes int64) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	return ReadDocument(path, maxBytes)
}
