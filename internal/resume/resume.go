// Package resume extracts plain text from resume documents.
package resume

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// MinPrimaryLength is the amount of text below which a PDF is considered scanned.
const MinPrimaryLength = 50

var (
	ErrNoText            = errors.New("no text could be extracted from the resume")
	ErrUnsupportedFormat = errors.New("unsupported resume format")
)

// PDFReader reads the embedded text layer of a PDF file.
type PDFReader interface {
	ReadPDF(ctx context.Context, path string) (string, error)
}

// OCRReader recognizes text in a document image.
type OCRReader interface {
	ExtractDocumentText(ctx context.Context, data []byte, mimeType string) (string, error)
}

type Extractor struct {
	pdf    PDFReader
	ocr    OCRReader
	logger *zap.Logger
}

// New builds an Extractor. Either reader may be nil.
func New(pdf PDFReader, ocr OCRReader, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{pdf: pdf, ocr: ocr, logger: logger}
}

// Extract returns the resume text as trimmed non-empty lines.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		text, err = e.readPDF(ctx, path)
	case ".docx":
		text, err = readDOCX(path)
	case ".html", ".htm":
		text, err = readHTML(path)
	case ".txt", ".md", ".text":
		text, err = readPlain(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", fmt.Errorf("read resume %s: %w", filepath.Base(path), err)
	}

	text = normalize(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, filepath.Base(path))
	}

	e.logger.Info("resume text extracted",
		zap.String("file", filepath.Base(path)),
		zap.Int("characters", utf8.RuneCountInString(text)),
	)

	return text, nil
}

func (e *Extractor) readPDF(ctx context.Context, path string) (string, error) {
	var primary string
	if e.pdf != nil {
		text, err := e.pdf.ReadPDF(ctx, path)
		if err != nil {
			e.logger.Warn("pdf text layer could not be read", zap.Error(err))
		}
		primary = strings.TrimSpace(text)
	}

	if utf8.RuneCountInString(primary) >= MinPrimaryLength || e.ocr == nil {
		return primary, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	e.logger.Info("pdf text layer is too short, trying ocr", zap.Int("characters", utf8.RuneCountInString(primary)))

	ocr, err := e.ocr.ExtractDocumentText(ctx, data, "application/pdf")
	if err != nil {
		e.logger.Warn("ocr failed", zap.Error(err))
		return primary, nil
	}

	ocr = strings.TrimSpace(ocr)
	if utf8.RuneCountInString(ocr) > utf8.RuneCountInString(primary) {
		return ocr, nil
	}

	return primary, nil
}

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func normalize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
