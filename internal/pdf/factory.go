package pdf

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// FactoryConfig configures provider creation.
type FactoryConfig struct {
	// Pdftotext is the pdftotext binary. Empty means PDFTOTEXT_BIN, then a
	// PATH lookup.
	Pdftotext string

	// Runner executes pdftotext. Nil uses ExecRunner.
	Runner Runner

	// LookPath resolves binaries. Nil uses exec.LookPath.
	LookPath func(file string) (string, error)

	Logger *slog.Logger
}

// ProviderFactory creates text providers by name.
type ProviderFactory struct {
	config FactoryConfig
}

// NewProviderFactory creates a factory with the given configuration.
func NewProviderFactory(config FactoryConfig) *ProviderFactory {
	if config.LookPath == nil {
		config.LookPath = exec.LookPath
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Runner == nil {
		config.Runner = ExecRunner{Logger: config.Logger}
	}
	return &ProviderFactory{config: config}
}

// Create instantiates the provider of the given type.
func (f *ProviderFactory) Create(t ProviderType) (Provider, error) {
	switch t {
	case ProviderPdftotext:
		bin, err := f.ResolvePdftotext()
		if err != nil {
			return nil, &ProviderError{Provider: t, Op: "create", Err: err}
		}
		return NewPdftotextProvider(bin, f.config.Runner), nil
	case ProviderNative:
		return NewNativeProvider(), nil
	case ProviderHOCR:
		return NewHOCRProvider(), nil
	case ProviderAuto, "":
		return f.createAuto(), nil
	default:
		return nil, &ProviderError{
			Provider: t,
			Op:       "create",
			Err:      fmt.Errorf("%w: %q", ErrUnsupportedProvider, t),
		}
	}
}

// createAuto prefers pdftotext, whose layout mode keeps columns apart, and
// falls back to the native reader when no binary is installed.
func (f *ProviderFactory) createAuto() Provider {
	bin, err := f.ResolvePdftotext()
	if err != nil {
		f.config.Logger.Info("pdftotext not available, using native provider", "error", err)
		return NewNativeProvider()
	}
	return NewPdftotextProvider(bin, f.config.Runner)
}

// ResolvePdftotext finds the pdftotext binary: the configured value, then
// PDFTOTEXT_BIN if it exists, then PATH.
func (f *ProviderFactory) ResolvePdftotext() (string, error) {
	if f.config.Pdftotext != "" {
		bin, err := f.config.LookPath(f.config.Pdftotext)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrNoBinary, err)
		}
		return bin, nil
	}
	if bin := os.Getenv("PDFTOTEXT_BIN"); bin != "" {
		if _, err := os.Stat(bin); err == nil {
			return bin, nil
		}
	}
	bin, err := f.config.LookPath("pdftotext")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoBinary, err)
	}
	return bin, nil
}
