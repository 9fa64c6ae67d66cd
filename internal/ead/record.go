package ead

import (
	"fmt"
	"log/slog"

	"github.com/a3tai/ead-extract/internal/layout"
)

// Record is the register entry of one declaration. Fields that could not be
// extracted are left out of the JSON form.
type Record struct {
	DataDeclaratie       string `json:"dataDeclaratie,omitempty"`
	NrMrn                string `json:"nrMrn,omitempty"`
	Identificare         string `json:"identificare,omitempty"`
	NumeExportator       string `json:"numeExportator,omitempty"`
	Buc                  *int   `json:"buc,omitempty"`
	Greutate             *int   `json:"greutate,omitempty"`
	DescriereaMarfurilor string `json:"descriereaMarfurilor,omitempty"`
	File                 string `json:"file"`
	Error                string `json:"error,omitempty"`
}

// Failed reports whether the record describes a document that could not be
// read.
func (r Record) Failed() bool {
	return r.Error != ""
}

// Fields returns the number of extracted fields.
func (r Record) Fields() int {
	n := 0
	for _, set := range []bool{
		r.DataDeclaratie != "",
		r.NrMrn != "",
		r.Identificare != "",
		r.NumeExportator != "",
		r.Buc != nil,
		r.Greutate != nil,
		r.DescriereaMarfurilor != "",
	} {
		if set {
			n++
		}
	}
	return n
}

// ErrorRecord builds the record of a document whose text could not be
// obtained.
func ErrorRecord(file string, err error) Record {
	return Record{File: file, Error: err.Error()}
}

// Options tune the extraction heuristics.
type Options struct {
	// MaxPieces is the largest accepted piece count.
	MaxPieces int
	// Logger receives extractor failures at debug level. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{MaxPieces: DefaultMaxPieces}
}

// Assemble runs every field extractor over doc. A failing extractor only
// drops its own field.
func Assemble(doc *layout.Document, opts Options) Record {
	rec := Record{File: doc.Name}
	c := newCorpus(doc)
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("file", doc.Name)

	run := func(field string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				logger.Debug("field extractor failed", "field", field, "error", fmt.Sprint(r))
			}
		}()
		fn()
	}

	run("dataDeclaratie", func() {
		if v, ok := c.date(); ok {
			rec.DataDeclaratie = v
		}
	})
	run("nrMrn", func() {
		if v, ok := c.mrn(); ok {
			rec.NrMrn = v
		}
	})
	run("identificare", func() {
		if v, ok := c.transport(); ok {
			rec.Identificare = v
		}
	})
	run("numeExportator", func() {
		if v, ok := c.exporter(); ok {
			rec.NumeExportator = v
		}
	})
	run("buc", func() {
		if v, ok := c.pieces(opts.MaxPieces); ok {
			rec.Buc = &v
		}
	})
	run("greutate", func() {
		if v, ok := c.weight(); ok {
			rec.Greutate = &v
		}
	})
	run("descriereaMarfurilor", func() {
		if v, ok := c.description(); ok {
			rec.DescriereaMarfurilor = v
		}
	})
	return rec
}
