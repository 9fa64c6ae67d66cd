// Package pdf turns declaration PDFs into layout documents. Text comes
// either from the pdftotext CLI, from the native ledongthuc/pdf glyph
// stream, or from an hOCR sidecar produced by an OCR engine.
package pdf

import (
	"context"
	"errors"
	"fmt"

	"github.com/a3tai/ead-extract/internal/layout"
)

// Provider obtains the text of one PDF file. A file without any text yields
// a document with empty pages, not an error.
type Provider interface {
	Extract(ctx context.Context, path string) (*layout.Document, error)
	Type() ProviderType
}

// ProviderType names a text provider.
type ProviderType string

const (
	ProviderAuto      ProviderType = "auto" // pdftotext when available, native otherwise
	ProviderPdftotext ProviderType = "pdftotext"
	ProviderNative    ProviderType = "native"
	ProviderHOCR      ProviderType = "hocr"
)

// ProviderTypes lists the accepted provider names.
func ProviderTypes() []ProviderType {
	return []ProviderType{ProviderAuto, ProviderPdftotext, ProviderNative, ProviderHOCR}
}

// ProviderError reports a failed provider operation.
type ProviderError struct {
	Provider ProviderType `json:"provider"`
	Op       string       `json:"operation"`
	Err      error        `json:"error"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

var (
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrNoBinary            = errors.New("pdftotext binary not found")
)
