package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpulog "github.com/pdfcpu/pdfcpu/pkg/log"

	"github.com/a3tai/ead-extract/internal/batch"
	"github.com/a3tai/ead-extract/internal/config"
	"github.com/a3tai/ead-extract/internal/ead"
	"github.com/a3tai/ead-extract/internal/mcp"
	"github.com/a3tai/ead-extract/internal/pdf"
	"github.com/a3tai/ead-extract/internal/register"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// setupLogging sends structured logs to stderr; stdout only carries results.
func setupLogging(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// pdfcpu keeps its own loggers and writes a config dir on first use.
	pdfcpulog.DisableLoggers()
	api.DisableConfigDir()
	return logger
}

func main() {
	cfg, err := config.LoadFromFlags()
	switch {
	case errors.Is(err, config.ErrVersionRequested):
		printVersion(os.Stdout)
		return
	case errors.Is(err, config.ErrHelpRequested):
		return
	case err != nil:
		fmt.Fprintf(os.Stderr, "ead-extract: %v\n", err)
		fmt.Fprintf(os.Stderr, "Run 'ead-extract --help' for usage.\n")
		os.Exit(exitUsage)
	}

	if version != "dev" {
		cfg.Version = version
	}
	logger := setupLogging(cfg, os.Stderr)
	if cfg.IsDebug() {
		logger.Debug("starting", "config", cfg.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsMCPMode() {
		err = runMCP(ctx, cfg, logger)
	} else {
		err = runCLI(ctx, cfg, os.Stdout, logger)
	}
	if err != nil {
		logger.Error("ead-extract failed", "error", err)
		os.Exit(exitError)
	}
	os.Exit(exitOK)
}

func newExtractor(cfg *config.Config, logger *slog.Logger) (*batch.Extractor, error) {
	factory := pdf.NewProviderFactory(pdf.FactoryConfig{
		Pdftotext: cfg.Pdftotext,
		Logger:    logger.With("component", "provider"),
	})
	provider, err := factory.Create(pdf.ProviderType(cfg.Provider))
	if err != nil {
		return nil, err
	}
	logger.Debug("text provider selected", "provider", string(provider.Type()))

	opts := ead.DefaultOptions()
	opts.MaxPieces = cfg.MaxPieces
	return batch.NewExtractor(provider, pdf.NewValidator(cfg.MaxFileSize), opts, logger), nil
}

// runCLI extracts cfg.Path and writes the records to out as one JSON array.
func runCLI(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		return err
	}

	paths, err := pdf.NewSearch().Discover(cfg.Path)
	if err != nil {
		return err
	}
	logger.Info("processing", "path", cfg.Path, "files", len(paths))

	records := batch.NewRunner(extractor,
		batch.WithWorkers(cfg.Workers),
		batch.WithTimeout(cfg.Timeout),
		batch.WithLogger(logger),
	).Run(ctx, paths)
	if records == nil {
		records = []ead.Record{}
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if cfg.XLSX != "" {
		if _, err := register.NewWriter(cfg.XLSX, logger).Append(records, cfg.StartIndex); err != nil {
			return fmt.Errorf("update register: %w", err)
		}
	}
	return nil
}

func runMCP(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		return err
	}
	service, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory)
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(cfg, service, extractor, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Run(ctx)
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "ead-extract\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
