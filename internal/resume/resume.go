// Package resume extracts candidate text from uploaded resume files.
package resume

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MinContentLength is the smallest extracted resume that still gives the
// content service enough to work with.
const MinContentLength = 50

var (
	// ErrUnsupportedFormat means the upload is neither PDF nor plain text.
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	// ErrEmptyDocument means no usable text could be extracted.
	ErrEmptyDocument = errors.New("resume has no extractable text")
)

// FromUpload extracts resume text from an uploaded file, dispatching on
// the file extension.
func FromUpload(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FromPDF(data)
	case ".txt", ".md":
		return fromText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// FromPDF extracts and normalizes the text content of a PDF resume.
func FromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var parts []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("Could not extract pdf page", "page", pageNum, "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	cleaned := cleanText(strings.Join(parts, "\n\n"))
	if len(cleaned) < MinContentLength {
		return "", ErrEmptyDocument
	}

	slog.Info("Extracted resume text", "chars", len(cleaned), "pages", reader.NumPage())
	return cleaned, nil
}

func fromText(data []byte) (string, error) {
	cleaned := cleanText(string(data))
	if len(cleaned) < MinContentLength {
		return "", ErrEmptyDocument
	}
	return cleaned, nil
}

var (
	whitespaceRe = regexp.MustCompile(`[ \t]+`)
	controlRe    = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	newlinesRe   = regexp.MustCompile(`\n{3,}`)
)

// cleanText normalizes extraction artifacts: control characters, runs of
// spaces, and excessive blank lines.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = controlRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = newlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
