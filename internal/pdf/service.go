package pdf

import (
	"fmt"

	"github.com/a3tai/ead-extract/internal/pdf/security"
)

// Service exposes file level PDF operations confined to a configured
// directory: validation and discovery.
type Service struct {
	maxFileSize int64
	validator   *Validator
	search      *Search
	sandbox     *security.Sandbox
}

// NewService creates a new PDF service rooted at configuredDirectory
func NewService(maxFileSize int64, configuredDirectory string) (*Service, error) {
	sandbox, err := security.NewSandbox(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path sandbox: %w", err)
	}

	return &Service{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
		search:      NewSearch(),
		sandbox:     sandbox,
	}, nil
}

// ResolvePath confines path to the configured directory.
func (s *Service) ResolvePath(path string) (string, error) {
	abs, err := s.sandbox.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return abs, nil
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	abs, err := s.ResolvePath(req.Path)
	if err != nil {
		return nil, err
	}
	req.Path = abs
	return s.validator.ValidateFile(req)
}

// PDFSearchDirectory searches for PDF files in a directory
func (s *Service) PDFSearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	dir, err := s.sandbox.ResolveDir(req.Directory)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Directory = dir
	return s.search.SearchDirectory(req)
}

// DiscoverPDFs resolves path inside the configured directory and returns the
// PDF files it names, sorted.
func (s *Service) DiscoverPDFs(path string) ([]string, error) {
	dir, err := s.sandbox.ResolveDir(path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.search.Discover(dir)
}

// Validator returns the validator used by the service.
func (s *Service) Validator() *Validator {
	return s.validator
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// ConfiguredDirectory returns the sandbox root.
func (s *Service) ConfiguredDirectory() string {
	return s.sandbox.Root()
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.maxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be greater than 0")
	}

	if s.maxFileSize > 1024*1024*1024 { // 1GB limit
		return fmt.Errorf("maxFileSize cannot exceed 1GB")
	}

	return nil
}
