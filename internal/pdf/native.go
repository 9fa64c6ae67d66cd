package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/ead-extract/internal/layout"
)

// Glyph merge thresholds, as fractions of the font size.
const (
	baselineTolerance = 0.5
	wordGapFactor     = 0.3
)

const (
	// defaultPageHeight is used when a page carries no usable MediaBox (A4).
	defaultPageHeight = 842.0
	maxTreeDepth      = 32
)

// Glyph is one positioned text run of a content stream. Y is the baseline,
// measured from the bottom of the page.
type Glyph struct {
	S        string
	X, Y     float64
	W        float64
	FontSize float64
}

// NativeProvider reads the glyph stream with ledongthuc/pdf and rebuilds
// words from it.
type NativeProvider struct{}

// NewNativeProvider creates a native provider.
func NewNativeProvider() *NativeProvider {
	return &NativeProvider{}
}

func (p *NativeProvider) Type() ProviderType {
	return ProviderNative
}

// Extract opens path and converts every page into positioned words. Parser
// panics on malformed streams are reported as errors.
func (p *NativeProvider) Extract(ctx context.Context, path string) (doc *layout.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &ProviderError{Provider: ProviderNative, Op: "extract", Err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderNative, Op: "open", Err: err}
	}
	defer f.Close()

	var words []layout.Word
	for n := 1; n <= reader.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, &ProviderError{Provider: ProviderNative, Op: "extract", Err: err}
		}
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		var glyphs []Glyph
		for _, t := range page.Content().Text {
			glyphs = append(glyphs, Glyph{S: t.S, X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize})
		}
		words = append(words, MergeGlyphs(glyphs, n, pageHeight(page))...)
	}
	return layout.FromWords(filepath.Base(path), words), nil
}

// MergeGlyphs joins consecutive glyphs into words. A glyph continues the
// current word while it sits on the same baseline and the gap before it is
// smaller than a fraction of the font size. Whitespace glyphs end a word.
// Coordinates are turned into top-down page space using height.
func MergeGlyphs(glyphs []Glyph, page int, height float64) []layout.Word {
	var words []layout.Word
	var cur *layout.Word
	var last Glyph

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			words = append(words, *cur)
		}
		cur = nil
	}

	for _, g := range glyphs {
		if strings.TrimFunc(g.S, unicode.IsSpace) == "" {
			flush()
			continue
		}
		size := g.FontSize
		if size <= 0 {
			size = 1
		}
		if cur != nil {
			sameLine := abs(g.Y-last.Y) <= baselineTolerance*size
			gap := g.X - (last.X + last.W)
			if !sameLine || gap > wordGapFactor*size || gap < -size {
				flush()
			}
		}
		if cur == nil {
			cur = &layout.Word{
				X0:     g.X,
				Top:    height - g.Y - size,
				Bottom: height - g.Y,
				Page:   page,
			}
		}
		cur.Text += g.S
		cur.X1 = g.X + g.W
		if top := height - g.Y - size; top < cur.Top {
			cur.Top = top
		}
		last = g
	}
	flush()
	return words
}

// pageHeight reads the MediaBox of page, walking up inherited attributes.
func pageHeight(page pdf.Page) float64 {
	v := page.V
	for depth := 0; depth < maxTreeDepth && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.IsNull() || box.Len() < 4 {
			v = v.Key("Parent")
			continue
		}
		if h := box.Index(3).Float64() - box.Index(1).Float64(); h > 0 {
			return h
		}
		v = v.Key("Parent")
	}
	return defaultPageHeight
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
