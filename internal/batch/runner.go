package batch

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/a3tai/ead-extract/internal/ead"
)

// DefaultTimeout bounds the processing of a single document.
const DefaultTimeout = 60 * time.Second

// Runner processes many documents concurrently. Results keep the order of
// the input paths.
type Runner struct {
	extractor DocumentExtractor
	logger    *slog.Logger
	workers   int
	timeout   time.Duration
}

type Option func(*Runner)

// WithWorkers sets the number of documents processed at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithTimeout sets the per-document deadline. Zero or less disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRunner(extractor DocumentExtractor, opts ...Option) *Runner {
	r := &Runner{
		extractor: extractor,
		logger:    slog.Default(),
		workers:   runtime.NumCPU(),
		timeout:   DefaultTimeout,
	}
	for _, o := range opts {
		o(r)
	}
	r.logger = r.logger.With("component", "batch")
	return r
}

// Run extracts every path. Once ctx is done no new document is started and
// the remaining ones are reported as error records.
func (r *Runner) Run(ctx context.Context, paths []string) []ead.Record {
	records := make([]ead.Record, len(paths))
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			records[i] = ead.ErrorRecord(filepath.Base(path), err)
			continue
		}
		g.Go(func() error {
			records[i] = r.one(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, rec := range records {
		if rec.Failed() {
			failed++
		}
	}
	r.logger.Info("batch complete",
		"files", len(paths),
		"failed", failed,
		"workers", r.workers,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return records
}

// Extract processes a single document under the runner's timeout. The
// result is abandoned when the deadline passes before the extractor returns,
// so an extractor that ignores ctx cannot hold the caller past the deadline.
func (r *Runner) Extract(ctx context.Context, path string) ead.Record {
	return r.one(ctx, path)
}

func (r *Runner) one(ctx context.Context, path string) ead.Record {
	name := filepath.Base(path)
	if err := ctx.Err(); err != nil {
		return ead.ErrorRecord(name, err)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	done := make(chan ead.Record, 1)
	go func() {
		done <- r.extractor.Extract(ctx, path)
	}()

	select {
	case rec := <-done:
		return rec
	case <-ctx.Done():
		r.logger.Warn("document abandoned", "file", name, "error", ctx.Err())
		return ead.ErrorRecord(name, ctx.Err())
	}
}
