package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/a3tai/ead-extract/internal/layout"
)

// stderrLimit caps the stderr excerpt kept in errors and logs.
const stderrLimit = 8 << 10

// Runner lets tests stub external commands.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec, bound to ctx.
type ExecRunner struct {
	Logger *slog.Logger
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)
	if err != nil {
		logger.Debug("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), stderrLimit),
		)
	} else {
		logger.Debug("exec ok",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
		)
	}
	return out.Bytes(), errb.Bytes(), err
}

// PdftotextProvider renders pages with `pdftotext -layout`.
type PdftotextProvider struct {
	bin    string
	runner Runner
}

// NewPdftotextProvider creates a provider running bin through runner.
func NewPdftotextProvider(bin string, runner Runner) *PdftotextProvider {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PdftotextProvider{bin: bin, runner: runner}
}

func (p *PdftotextProvider) Type() ProviderType {
	return ProviderPdftotext
}

// Extract runs pdftotext -enc UTF-8 -eol unix -layout <path> - and splits
// the output into pages on form feeds.
func (p *PdftotextProvider) Extract(ctx context.Context, path string) (*layout.Document, error) {
	out, errb, err := p.runner.Run(ctx, p.bin, "-enc", "UTF-8", "-eol", "unix", "-layout", path, "-")
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		msg := strings.TrimSpace(truncate(string(errb), stderrLimit))
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, &ProviderError{Provider: ProviderPdftotext, Op: "extract", Err: err}
	}
	return layout.FromText(filepath.Base(path), SplitPages(string(out))), nil
}

// SplitPages splits pdftotext output on form feeds. The feed closing the
// last page does not open a new one.
func SplitPages(text string) []string {
	text = strings.TrimSuffix(text, "\f")
	return strings.Split(text, "\f")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
