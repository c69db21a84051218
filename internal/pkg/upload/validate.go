package upload

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// SniffLen is how many leading bytes ValidateReportBySniff looks at.
const SniffLen = 512

const PDFContentType = "application/pdf"

var (
	ErrUnsupportedExtension = errors.New("only .pdf reports are supported")
	ErrScriptableContent    = errors.New("HTML or XML content is not allowed")
	ErrNotPDF               = errors.New("content is not a PDF document")
)

// ValidateReportBySniff checks the optional filename extension and the first
// bytes of a report upload. Returns the detected content type or an error.
func ValidateReportBySniff(filename string, head []byte) (string, error) {
	if err := ValidateReportName(filename); err != nil {
		return "", err
	}

	detected := http.DetectContentType(head)

	// Block scriptable types regardless of extension
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") ||
		strings.HasPrefix(detected, "text/xml") || strings.HasPrefix(detected, "application/xml") {
		return "", ErrScriptableContent
	}

	if detected != PDFContentType {
		return "", ErrNotPDF
	}
	return detected, nil
}

// ValidateReportName rejects non-PDF extensions. An empty name passes.
func ValidateReportName(filename string) error {
	if filename != "" && strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return ErrUnsupportedExtension
	}
	return nil
}
