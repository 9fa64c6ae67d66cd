package batch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/ead-extract/internal/ead"
	"github.com/a3tai/ead-extract/internal/layout"
	"github.com/a3tai/ead-extract/internal/pdf"
)

// textProvider serves canned page text per file name.
type textProvider struct {
	pages map[string][]string
}

func (p textProvider) Type() pdf.ProviderType { return pdf.ProviderPdftotext }

func (p textProvider) Extract(_ context.Context, path string) (*layout.Document, error) {
	pages, ok := p.pages[filepath.Base(path)]
	if !ok {
		return nil, &pdf.ProviderError{Provider: pdf.ProviderPdftotext, Op: "extract", Err: errors.New("exit status 1: Syntax Error")}
	}
	return layout.FromText(path, pages), nil
}

var quiet = slog.New(slog.DiscardHandler)

func TestExtractor_Extract(t *testing.T) {
	provider := textProvider{pages: map[string][]string{
		"ok.pdf": {"MRN 25RO1234567890123456\nData acceptarii [15 09] 02.09.2025\nDocumentul de transport [12 05] N740 123\nDocumentul precedent [12 01]"},
	}}
	ex := NewExtractor(provider, nil, ead.DefaultOptions(), quiet)

	rec := ex.Extract(context.Background(), "/in/ok.pdf")
	assert.False(t, rec.Failed())
	assert.Equal(t, "ok.pdf", rec.File)
	assert.Equal(t, "02-09", rec.DataDeclaratie)
	assert.Equal(t, "890123456", rec.NrMrn)
	assert.Equal(t, ead.TransportAWB, rec.Identificare)

	rec = ex.Extract(context.Background(), "/in/broken.pdf")
	assert.True(t, rec.Failed())
	assert.Equal(t, "broken.pdf", rec.File)
	assert.Contains(t, rec.Error, "Syntax Error")
	assert.Zero(t, rec.Fields())
}

func TestExtractor_ValidationFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	provider := textProvider{pages: map[string][]string{"empty.pdf": {"MRN 25RO1234567890123456"}}}
	ex := NewExtractor(provider, pdf.NewValidator(1<<20), ead.DefaultOptions(), quiet)

	rec := ex.Extract(context.Background(), path)
	assert.True(t, rec.Failed())
	assert.Contains(t, rec.Error, "empty")
	assert.Empty(t, rec.NrMrn)
}
