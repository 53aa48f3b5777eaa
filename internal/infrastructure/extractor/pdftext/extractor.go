// Package pdftext turns stored report files into the plain text the
// analysis pipeline consumes. PDF files go through a real PDF text
// extraction; plain-text uploads pass through as-is.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

// Extract returns the trimmed text of the report, or "" when the file
// holds no extractable text at all.
func (e *Extractor) Extract(ctx context.Context, report *domain.Report) (string, error) {
	reader, err := e.storage.Open(ctx, report.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open stored report: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read stored report: %w", err)
	}

	if isPDF(report.MimeType, raw) {
		return extractPDF(raw, report.Filename)
	}

	if !utf8.Valid(raw) {
		return "", fmt.Errorf("unsupported binary format: %s", report.Filename)
	}
	return strings.TrimSpace(string(raw)), nil
}

func isPDF(mimeType string, raw []byte) bool {
	if strings.EqualFold(strings.TrimSpace(mimeType), "application/pdf") {
		return true
	}
	return bytes.HasPrefix(raw, []byte("%PDF-"))
}

func extractPDF(raw []byte, filename string) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("parse pdf %s: %w", filename, err)
	}

	textReader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", filename, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", filename, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
