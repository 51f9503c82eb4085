// Package extract pulls plain text out of uploaded resume documents.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// TruncationMarker is appended to text cut by Truncate.
const TruncationMarker = "\n\n[Truncated resume]"

// DocumentParseError reports an upload that could not be decoded.
type DocumentParseError struct {
	Format string
	Err    error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("could not read %s document: %v", e.Format, e.Err)
}

func (e *DocumentParseError) Unwrap() error {
	return e.Err
}

// Ext normalizes a file name or extension to a bare lower-case extension.
func Ext(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		ext = name
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Supported reports whether ext is a format Extract can read.
func Supported(ext string) bool {
	switch Ext(ext) {
	case FormatPDF, FormatDOCX:
		return true
	default:
		return false
	}
}

// Extract returns the plain text of a document. Unsupported extensions yield
// an empty string and no error.
func Extract(data []byte, ext string) (string, error) {
	switch format := Ext(ext); format {
	case FormatPDF:
		return guard(format, func() (string, error) { return pdfText(data) })
	case FormatDOCX:
		return guard(format, func() (string, error) { return docxText(data) })
	default:
		return "", nil
	}
}

// guard converts decoder failures, including panics, into DocumentParseError.
func guard(format string, fn func() (string, error)) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = &DocumentParseError{Format: format, Err: fmt.Errorf("decoder panic: %v", rec)}
		}
	}()

	text, err = fn()
	if err != nil {
		return "", &DocumentParseError{Format: format, Err: err}
	}
	return strings.TrimSpace(text), nil
}

// Truncate keeps the first limit characters of text and appends
// TruncationMarker when anything was cut. limit <= 0 disables truncation.
func Truncate(text string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}

	n := 0
	for i := range text {
		if n == limit {
			return text[:i] + TruncationMarker, true
		}
		n++
	}
	return text, false
}
