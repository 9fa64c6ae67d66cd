package pdf

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/ead-extract/internal/layout"
)

const sampleHOCR = `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><meta http-equiv="Content-Type" content="text/html; charset=utf-8" /></head>
<body>
 <div class="ocr_page" id="page_1" title="image decl.png; bbox 0 0 1190 1684; ppageno 0">
  <span class="ocr_line" title="bbox 100 200 700 240">
   <span class="ocrx_word" title="bbox 100 200 300 240; x_wconf 95">Exportator</span>
   <span class="ocrx_word" title="bbox 320 200 500 240; x_wconf 91"><strong>Ţară</strong></span>
  </span>
  <span class="ocr_line" title="bbox 100 300 400 340">
   <span class="ocrx_word" title="bbox 100 300 400 340; x_wconf 90">SC ALFA</span>
  </span>
 </div>
 <div class="ocr_page" id="page_2" title="bbox 0 0 1190 1684"></div>
</body>
</html>`

func TestParseHOCR(t *testing.T) {
	doc, err := ParseHOCR("decl.pdf", strings.NewReader(sampleHOCR))
	require.NoError(t, err)

	assert.Equal(t, "decl.pdf", doc.Name)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, layout.KindPositioned, doc.Pages[0].Kind)
	assert.Equal(t, 2, doc.Pages[1].Number)
	assert.Empty(t, doc.Pages[1].Lines)

	words := doc.Pages[0].Words
	require.Len(t, words, 3)
	assert.Equal(t, "Exportator", words[0].Text)
	assert.Equal(t, "Ţară", words[1].Text)

	// 1684 px high pages are scaled to 842 units.
	assert.InDelta(t, 50, words[0].X0, 1e-9)
	assert.InDelta(t, 100, words[0].Top, 1e-9)
	assert.InDelta(t, 150, words[0].X1, 1e-9)
	assert.InDelta(t, 120, words[0].Bottom, 1e-9)

	lines := doc.Pages[0].Lines
	require.NotEmpty(t, lines)
	assert.Equal(t, "Exportator Ţară", lines[0].Text)
	assert.Equal(t, "SC ALFA", lines[len(lines)-1].Text)
}

func TestParseHOCR_NoPages(t *testing.T) {
	_, err := ParseHOCR("x.pdf", strings.NewReader("<html><body><p>hello</p></body></html>"))
	require.Error(t, err)
}

func TestHOCRProvider_Sidecar(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "scan.pdf")
	assert.Equal(t, filepath.Join(dir, "scan.hocr"), SidecarPath(pdfPath))

	p := NewHOCRProvider()
	_, err := p.Extract(context.Background(), pdfPath)
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "open", perr.Op)

	writeFile(t, dir, "scan.hocr", []byte(sampleHOCR))
	doc, err := p.Extract(context.Background(), pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "scan.pdf", doc.Name)
	assert.Len(t, doc.Pages, 2)
}
