package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeCLI = "cli"
	ModeMCP = "mcp"

	// Default values
	DefaultProvider    = "auto"
	DefaultTimeout     = 60 * time.Second
	DefaultMaxPieces   = 1_000_000
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultStartIndex  = 1

	// EnvPrefix prefixes every environment variable, EAD_TIMEOUT and so on.
	EnvPrefix = "EAD"
)

var (
	// ErrVersionRequested is returned by Load when --version is given.
	ErrVersionRequested = errors.New("version requested")
	// ErrHelpRequested is returned by Load when --help is given.
	ErrHelpRequested = errors.New("help requested")

	validProviders = []string{"auto", "pdftotext", "native", "hocr"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Config holds all configuration of the extractor
type Config struct {
	// Mode selects a one-shot run over Path or the stdio MCP server.
	Mode string
	// Path is the file or directory given on the command line.
	Path string

	// Extraction configuration
	Provider    string
	Pdftotext   string
	Timeout     time.Duration
	Workers     int
	MaxPieces   int
	MaxFileSize int64 // Maximum PDF file size in bytes

	// Register export; disabled when XLSX is empty.
	XLSX       string
	StartIndex int

	// PDFDirectory confines the paths accepted by the MCP tools.
	PDFDirectory string
	ConfigFile   string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeCLI,
		Provider:     DefaultProvider,
		Timeout:      DefaultTimeout,
		Workers:      runtime.NumCPU(),
		MaxPieces:    DefaultMaxPieces,
		MaxFileSize:  DefaultMaxFileSize,
		StartIndex:   DefaultStartIndex,
		PDFDirectory: currentDir,
		Version:      "1.0.0",
		ServerName:   "ead-extract",
		LogLevel:     DefaultLogLevel,
	}
}

// LoadFromFlags parses the process arguments and returns a configuration
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[1:], os.Stderr)
}

// Load builds the configuration from defaults, an optional config file,
// EAD_* environment variables and args, in increasing precedence. Usage
// text goes to usage.
func Load(args []string, usage io.Writer) (*Config, error) {
	if checkVersionFlag(args) {
		return nil, ErrVersionRequested
	}

	cfg := DefaultConfig()
	v := viper.New()
	fs := pflag.NewFlagSet("ead-extract", pflag.ContinueOnError)
	fs.SetOutput(usage)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(fs, cfg)
	bindFlagsToViper(v, fs)
	setupUsageMessage(fs, usage)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", file, err)
		}
	}

	populateConfigFromViper(v, cfg)
	if fs.NArg() > 0 {
		cfg.Path = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected a single path argument, got %d", fs.NArg())
	}

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("provider", cfg.Provider)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("max-pieces", cfg.MaxPieces)
	v.SetDefault("maxfilesize", cfg.MaxFileSize)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("start-index", cfg.StartIndex)
	v.SetDefault("dir", cfg.PDFDirectory)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("mode", cfg.Mode, "Run mode: 'cli' to extract <path>, 'mcp' for an MCP stdio server")
	fs.String("provider", cfg.Provider, "Text provider: auto, pdftotext, native, hocr")
	fs.String("pdftotext", "", "pdftotext binary (default: $PDFTOTEXT_BIN, then PATH)")
	fs.Duration("timeout", cfg.Timeout, "Per-document timeout")
	fs.Int("workers", cfg.Workers, "Documents processed concurrently")
	fs.Int("max-pieces", cfg.MaxPieces, "Largest accepted piece count")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.String("xlsx", "", "Append successful records to this register workbook")
	fs.Int("start-index", cfg.StartIndex, "First 'Nr. crt.' written to the register")
	fs.String("dir", cfg.PDFDirectory, "Directory the MCP tools may read (mcp mode)")
	fs.String("config", "", "Optional config file (yaml, json or toml)")
	fs.Bool("version", false, "Print version information and exit")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "version" {
			return
		}
		_ = v.BindPFlag(f.Name, f)
	})
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage(fs *pflag.FlagSet, w io.Writer) {
	fs.Usage = func() {
		fmt.Fprintf(w, "Usage: ead-extract [flags] <file.pdf|directory>\n")
		fmt.Fprintf(w, "\nExtracts register fields from customs export declarations (EAD) as JSON.\n\n")
		fmt.Fprintf(w, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  ead-extract declaratie.pdf                      # one file\n")
		fmt.Fprintf(w, "  ead-extract --workers=4 ./declaratii            # whole directory tree\n")
		fmt.Fprintf(w, "  ead-extract --xlsx=registru.xlsx ./declaratii   # also append to the register\n")
		fmt.Fprintf(w, "  ead-extract --mode=mcp --dir=./declaratii       # MCP stdio server\n")
		fmt.Fprintf(w, "\nEnvironment Variables:\n")
		fmt.Fprintf(w, "  EAD_PROVIDER, EAD_PDFTOTEXT, EAD_TIMEOUT, EAD_WORKERS, EAD_MAX_PIECES,\n")
		fmt.Fprintf(w, "  EAD_MAXFILESIZE, EAD_LOGLEVEL, EAD_XLSX, EAD_START_INDEX, EAD_MODE, EAD_DIR\n")
		fmt.Fprintf(w, "  PDFTOTEXT_BIN       pdftotext binary when --pdftotext is not set\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Provider = v.GetString("provider")
	cfg.Pdftotext = v.GetString("pdftotext")
	cfg.Timeout = v.GetDuration("timeout")
	cfg.Workers = v.GetInt("workers")
	cfg.MaxPieces = v.GetInt("max-pieces")
	cfg.MaxFileSize = v.GetInt64("maxfilesize")
	cfg.LogLevel = strings.ToLower(v.GetString("loglevel"))
	cfg.XLSX = v.GetString("xlsx")
	cfg.StartIndex = v.GetInt("start-index")
	cfg.PDFDirectory = v.GetString("dir")
	cfg.ConfigFile = v.GetString("config")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeCLI:
		if c.Path == "" {
			return errors.New("path argument is required")
		}
		if _, err := os.Stat(c.Path); err != nil {
			return fmt.Errorf("cannot access %s: %w", c.Path, err)
		}
	case ModeMCP:
		if c.PDFDirectory == "" {
			return errors.New("PDF directory cannot be empty")
		}
		info, err := os.Stat(c.PDFDirectory)
		if err != nil {
			return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("PDF directory %s is not a directory", c.PDFDirectory)
		}
	default:
		return errors.New("mode must be either 'cli' or 'mcp'")
	}

	if !slices.Contains(validProviders, c.Provider) {
		return fmt.Errorf("invalid provider: %s (must be one of: %s)", c.Provider, strings.Join(validProviders, ", "))
	}
	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.MaxPieces < 1 {
		return errors.New("max-pieces must be at least 1")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.StartIndex < 1 {
		return errors.New("start-index must be at least 1")
	}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsMCPMode returns true if the MCP stdio server is requested
func (c *Config) IsMCPMode() bool {
	return c.Mode == ModeMCP
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Path: %s, Provider: %s, Timeout: %s, Workers: %d, MaxPieces: %d, MaxFileSize: %d, XLSX: %s, PDFDirectory: %s, LogLevel: %s}",
		c.Mode, c.Path, c.Provider, c.Timeout, c.Workers, c.MaxPieces, c.MaxFileSize, c.XLSX, c.PDFDirectory, c.LogLevel)
}
