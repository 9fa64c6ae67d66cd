package pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/a3tai/ead-extract/internal/layout"
)

// hocrPageHeight is the height, in page units, every hOCR page is scaled
// to so that pixel boxes share the tolerances of PDF points (A4).
const hocrPageHeight = 842.0

// HOCRProvider reads word boxes from the hOCR sidecar written next to a
// scanned PDF by an OCR engine such as Tesseract (<name>.hocr).
type HOCRProvider struct{}

// NewHOCRProvider creates an hOCR sidecar provider.
func NewHOCRProvider() *HOCRProvider {
	return &HOCRProvider{}
}

func (p *HOCRProvider) Type() ProviderType {
	return ProviderHOCR
}

// SidecarPath returns the hOCR file expected for a PDF.
func SidecarPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".hocr"
}

func (p *HOCRProvider) Extract(ctx context.Context, path string) (*layout.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ProviderError{Provider: ProviderHOCR, Op: "extract", Err: err}
	}
	f, err := os.Open(SidecarPath(path))
	if err != nil {
		return nil, &ProviderError{Provider: ProviderHOCR, Op: "open", Err: err}
	}
	defer f.Close()

	doc, err := ParseHOCR(filepath.Base(path), f)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderHOCR, Op: "parse", Err: err}
	}
	return doc, nil
}

// ParseHOCR converts hOCR markup into a positioned document. Pages are the
// ocr_page elements in order, words the ocrx_word elements inside them.
func ParseHOCR(name string, r io.Reader) (*layout.Document, error) {
	utf8Reader, err := charset.NewReader(r, "")
	if err != nil {
		return nil, fmt.Errorf("failed to detect encoding: %w", err)
	}
	root, err := html.Parse(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	var words []layout.Word
	pages := 0
	var walk func(n *html.Node, scale float64)
	walk = func(n *html.Node, scale float64) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "ocr_page"):
				pages++
				scale = 1
				if box, ok := titleBBox(n); ok && box[3]-box[1] > 0 {
					scale = hocrPageHeight / (box[3] - box[1])
				}
			case hasClass(n, "ocrx_word"):
				text := strings.TrimSpace(nodeText(n))
				box, ok := titleBBox(n)
				if ok && text != "" && pages > 0 {
					words = append(words, layout.Word{
						Text:   text,
						X0:     box[0] * scale,
						Top:    box[1] * scale,
						X1:     box[2] * scale,
						Bottom: box[3] * scale,
						Page:   pages,
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, scale)
		}
	}
	walk(root, 1)

	if pages == 0 {
		return nil, fmt.Errorf("no ocr_page elements found")
	}
	doc := layout.FromWords(name, words)
	// Pages without words still count.
	for n := 1; n <= pages; n++ {
		if _, ok := doc.Page(n); !ok {
			doc.Pages = append(doc.Pages, layout.Page{Number: n, Kind: layout.KindPositioned})
		}
	}
	sort.SliceStable(doc.Pages, func(i, j int) bool { return doc.Pages[i].Number < doc.Pages[j].Number })
	return doc, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

// titleBBox reads "bbox x0 y0 x1 y1" from an hOCR title attribute.
func titleBBox(n *html.Node) ([4]float64, bool) {
	var box [4]float64
	for _, a := range n.Attr {
		if a.Key != "title" {
			continue
		}
		for _, part := range strings.Split(a.Val, ";") {
			fields := strings.Fields(part)
			if len(fields) < 5 || fields[0] != "bbox" {
				continue
			}
			for i := 0; i < 4; i++ {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return box, false
				}
				box[i] = v
			}
			return box, true
		}
	}
	return box, false
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}
