package pdf

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookPath(found ...string) func(string) (string, error) {
	return func(file string) (string, error) {
		for _, f := range found {
			if f == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestProviderFactory_Create(t *testing.T) {
	t.Setenv("PDFTOTEXT_BIN", "")

	tests := []struct {
		name     string
		config   FactoryConfig
		provider ProviderType
		want     ProviderType
		wantErr  error
	}{
		{name: "auto with binary", config: FactoryConfig{LookPath: lookPath("pdftotext")}, provider: ProviderAuto, want: ProviderPdftotext},
		{name: "empty means auto", config: FactoryConfig{LookPath: lookPath("pdftotext")}, provider: "", want: ProviderPdftotext},
		{name: "auto without binary", config: FactoryConfig{LookPath: lookPath()}, provider: ProviderAuto, want: ProviderNative},
		{name: "native", config: FactoryConfig{LookPath: lookPath()}, provider: ProviderNative, want: ProviderNative},
		{name: "hocr", config: FactoryConfig{LookPath: lookPath()}, provider: ProviderHOCR, want: ProviderHOCR},
		{name: "configured binary", config: FactoryConfig{Pdftotext: "pdftotext-22", LookPath: lookPath("pdftotext-22")}, provider: ProviderPdftotext, want: ProviderPdftotext},
		{name: "pdftotext missing", config: FactoryConfig{LookPath: lookPath()}, provider: ProviderPdftotext, wantErr: ErrNoBinary},
		{name: "configured binary missing", config: FactoryConfig{Pdftotext: "nope", LookPath: lookPath("pdftotext")}, provider: ProviderPdftotext, wantErr: ErrNoBinary},
		{name: "unsupported", config: FactoryConfig{LookPath: lookPath()}, provider: "tesseract", wantErr: ErrUnsupportedProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProviderFactory(tt.config).Create(tt.provider)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Type())
		})
	}
}

func TestProviderFactory_ResolvePdftotextFromEnv(t *testing.T) {
	dir := t.TempDir()
	bin := writeFile(t, dir, "pdftotext", []byte("#!/bin/sh\n"))
	t.Setenv("PDFTOTEXT_BIN", bin)

	got, err := NewProviderFactory(FactoryConfig{LookPath: lookPath()}).ResolvePdftotext()
	require.NoError(t, err)
	assert.Equal(t, bin, got)
}

func TestProviderError(t *testing.T) {
	inner := errors.New("boom")
	err := &ProviderError{Provider: ProviderNative, Op: "open", Err: inner}
	assert.Equal(t, "native open: boom", err.Error())
	assert.ErrorIs(t, err, inner)
}
