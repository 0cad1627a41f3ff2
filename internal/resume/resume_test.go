package resume

import (
	"errors"
	"strings"
	"testing"
)

const sampleResume = `Jane Doe
Software Engineer | jane@example.com

EXPERIENCE

Backend Engineer - Acme Corp (2021-2024)
- Built a payments reconciliation pipeline in Go
- Cut p99 latency of the ledger API from 900ms to 120ms
`

func TestFromUploadText(t *testing.T) {
	got, err := FromUpload("resume.txt", []byte(sampleResume))
	if err != nil {
		t.Fatalf("FromUpload: %v", err)
	}
	if !strings.Contains(got, "payments reconciliation pipeline") {
		t.Errorf("extracted text missing content: %q", got)
	}
	if strings.HasPrefix(got, "\n") || strings.HasSuffix(got, "\n") {
		t.Error("extracted text is not trimmed")
	}
}

func TestFromUploadUnsupportedFormat(t *testing.T) {
	if _, err := FromUpload("resume.docx", []byte(sampleResume)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFromUploadTooShort(t *testing.T) {
	if _, err := FromUpload("resume.txt", []byte("Jane Doe")); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestFromPDFRejectsGarbage(t *testing.T) {
	if _, err := FromPDF([]byte("definitely not a pdf")); err == nil {
		t.Error("expected error for non-pdf bytes")
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses spaces", "a   b\t\tc", "a b c"},
		{"normalizes crlf", "a\r\nb\rc", "a\nb\nc"},
		{"caps blank lines", "a\n\n\n\n\nb", "a\n\nb"},
		{"strips control chars", "a\x00\x01b", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanText(tt.in); got != tt.want {
				t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
