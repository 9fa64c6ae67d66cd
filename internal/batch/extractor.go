// Package batch turns PDF paths into register records, one document at a
// time or a whole directory with a bounded worker pool.
package batch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/a3tai/ead-extract/internal/ead"
	"github.com/a3tai/ead-extract/internal/pdf"
)

// DocumentExtractor produces the record of one PDF. It never fails: problems
// are reported inside the record.
type DocumentExtractor interface {
	Extract(ctx context.Context, path string) ead.Record
}

// Extractor validates a file, obtains its text from a provider and
// assembles the record.
type Extractor struct {
	provider  pdf.Provider
	validator *pdf.Validator
	opts      ead.Options
	logger    *slog.Logger
}

// NewExtractor wires a provider to the record assembler. A nil validator
// skips validation.
func NewExtractor(provider pdf.Provider, validator *pdf.Validator, opts ead.Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &Extractor{
		provider:  provider,
		validator: validator,
		opts:      opts,
		logger:    logger.With("component", "extractor", "provider", string(provider.Type())),
	}
}

func (e *Extractor) Extract(ctx context.Context, path string) ead.Record {
	name := filepath.Base(path)
	start := time.Now()

	if e.validator != nil {
		if err := e.validator.Validate(path); err != nil {
			e.logger.Warn("invalid document", "file", name, "error", err)
			return ead.ErrorRecord(name, err)
		}
	}

	doc, err := e.provider.Extract(ctx, path)
	if err != nil {
		e.logger.Warn("text extraction failed", "file", name, "error", err)
		return ead.ErrorRecord(name, err)
	}
	doc.Name = name

	rec := ead.Assemble(doc, e.opts)
	e.logger.Debug("document processed",
		"file", name,
		"pages", len(doc.Pages),
		"fields", rec.Fields(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec
}
