// Package layout models a PDF page either as rendered text lines or as
// positioned word tokens, and exposes both through the same Line view.
package layout

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// LineTolerance is the vertical distance, in page units, within which two
// word tops (or bottoms) are considered part of the same line band.
const LineTolerance = 2.5

// Kind tells how a page was obtained.
type Kind int

const (
	// KindText pages come from rendered text. Word coordinates are
	// character columns and line indexes.
	KindText Kind = iota
	// KindPositioned pages come from word bounding boxes in page space.
	KindPositioned
)

func (k Kind) String() string {
	if k == KindPositioned {
		return "positioned"
	}
	return "text"
}

// Word is a single token with its bounding box.
type Word struct {
	Text   string  `json:"text"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Page   int     `json:"page"`
}

// Line is a band of words that share a vertical position.
type Line struct {
	Page   int
	Top    float64
	Bottom float64
	// Text is the line as rendered. For text pages it is the original line
	// including layout spacing, for positioned pages the words joined by a
	// single space.
	Text  string
	Words []Word
	// Offsets[i] is the byte offset of Words[i] inside Text.
	Offsets []int
}

// IsBlank reports whether the line carries no text.
func (l Line) IsBlank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// WordAt returns the index of the word that covers byte offset off in Text,
// or the first word starting after it. It returns len(Words) when no word
// starts at or after off.
func (l Line) WordAt(off int) int {
	for i, start := range l.Offsets {
		end := start + len(l.Words[i].Text)
		if off < end {
			return i
		}
	}
	return len(l.Words)
}

// Page is one page of a document.
type Page struct {
	Number int
	Kind   Kind
	Lines  []Line
	Words  []Word
}

// Document is the extraction input for one PDF file.
type Document struct {
	Name  string
	Pages []Page
}

// Lines returns the lines of every page in page order.
func (d *Document) Lines() []Line {
	var out []Line
	for _, p := range d.Pages {
		out = append(out, p.Lines...)
	}
	return out
}

// Positioned reports whether any page carries real word coordinates.
func (d *Document) Positioned() bool {
	for _, p := range d.Pages {
		if p.Kind == KindPositioned {
			return true
		}
	}
	return false
}

// Page returns the page with the given 1-based number.
func (d *Document) Page(number int) (*Page, bool) {
	for i := range d.Pages {
		if d.Pages[i].Number == number {
			return &d.Pages[i], true
		}
	}
	return nil, false
}

// FromText builds a document from per-page rendered text. Every
// whitespace-separated token becomes a word whose X0 is its rune column and
// whose Top is its line index on the page.
func FromText(name string, pages []string) *Document {
	doc := &Document{Name: name}
	for i, text := range pages {
		number := i + 1
		text = strings.ReplaceAll(text, "\r\n", "\n")
		rows := strings.Split(text, "\n")

		page := Page{Number: number, Kind: KindText}
		for row, raw := range rows {
			raw = strings.TrimRight(raw, "\r")
			line := textLine(raw, row, number)
			page.Lines = append(page.Lines, line)
			page.Words = append(page.Words, line.Words...)
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

func textLine(raw string, row, page int) Line {
	line := Line{
		Page:   page,
		Top:    float64(row),
		Bottom: float64(row + 1),
		Text:   raw,
	}

	col := 0
	start := -1
	startCol := 0
	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := raw[start:end]
		line.Words = append(line.Words, Word{
			Text:   tok,
			Top:    line.Top,
			Bottom: line.Bottom,
			X0:     float64(startCol),
			X1:     float64(startCol + utf8.RuneCountInString(tok)),
			Page:   page,
		})
		line.Offsets = append(line.Offsets, start)
		start = -1
	}

	for off, r := range raw {
		if r == ' ' || r == '\t' || r == '\f' || r == '\v' {
			flush(off)
		} else if start < 0 {
			start = off
			startCol = col
		}
		col++
	}
	flush(len(raw))
	return line
}

// FromWords builds a document from positioned word tokens. Words are grouped
// per page and then into line bands.
func FromWords(name string, words []Word) *Document {
	byPage := make(map[int][]Word)
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		byPage[w.Page] = append(byPage[w.Page], w)
	}

	numbers := make([]int, 0, len(byPage))
	for n := range byPage {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	doc := &Document{Name: name}
	for _, n := range numbers {
		pw := byPage[n]
		doc.Pages = append(doc.Pages, Page{
			Number: n,
			Kind:   KindPositioned,
			Lines:  withBlankGaps(GroupLines(pw, LineTolerance)),
			Words:  pw,
		})
	}
	return doc
}

// GroupLines bands words whose top or bottom lie within tol of the band's
// first word, orders bands top to bottom and words left to right.
func GroupLines(words []Word, tol float64) []Line {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X0 < sorted[j].X0
	})

	type band struct {
		top, bottom float64
		words       []Word
	}
	var bands []band
	for _, w := range sorted {
		placed := false
		for i := len(bands) - 1; i >= 0; i-- {
			b := &bands[i]
			if abs(w.Top-b.top) <= tol || abs(w.Bottom-b.bottom) <= tol {
				b.words = append(b.words, w)
				placed = true
				break
			}
		}
		if !placed {
			bands = append(bands, band{top: w.Top, bottom: w.Bottom, words: []Word{w}})
		}
	}

	lines := make([]Line, 0, len(bands))
	for _, b := range bands {
		sort.SliceStable(b.words, func(i, j int) bool { return b.words[i].X0 < b.words[j].X0 })
		lines = append(lines, joinWords(b.words))
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Top < lines[j].Top })
	return lines
}

func joinWords(words []Word) Line {
	line := Line{Page: words[0].Page, Top: words[0].Top, Bottom: words[0].Bottom}
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		line.Offsets = append(line.Offsets, b.Len())
		b.WriteString(w.Text)
		if w.Top < line.Top {
			line.Top = w.Top
		}
		if w.Bottom > line.Bottom {
			line.Bottom = w.Bottom
		}
	}
	line.Text = b.String()
	line.Words = words
	return line
}

// withBlankGaps inserts an empty line wherever the gap to the next band is
// larger than the height of the previous one, so that positioned pages
// terminate multi-line values the same way blank text lines do.
func withBlankGaps(lines []Line) []Line {
	if len(lines) < 2 {
		return lines
	}
	out := make([]Line, 0, len(lines))
	for i, l := range lines {
		if i > 0 {
			prev := lines[i-1]
			height := prev.Bottom - prev.Top
			if height <= 0 {
				height = 1
			}
			if l.Top-prev.Bottom > height {
				out = append(out, Line{Page: l.Page, Top: prev.Bottom, Bottom: l.Top})
			}
		}
		out = append(out, l)
	}
	return out
}

// WordsBelow returns the words whose top lies below ref and no further than
// maxDy under its bottom, ordered top to bottom then left to right.
func (p *Page) WordsBelow(ref Word, maxDy float64) []Word {
	var out []Word
	for _, w := range p.Words {
		if w.Top >= ref.Bottom-0.5 && w.Top <= ref.Bottom+maxDy && !same(w, ref) {
			out = append(out, w)
		}
	}
	return readingOrder(out)
}

// WordsInBox returns the words below ref whose left edge lies within
// [ref.X0-left, ref.X0+right] and whose top is at most below units under
// ref's bottom.
func (p *Page) WordsInBox(ref Word, left, right, below float64) []Word {
	var out []Word
	for _, w := range p.WordsBelow(ref, below) {
		if w.X0 >= ref.X0-left && w.X0 <= ref.X0+right {
			out = append(out, w)
		}
	}
	return out
}

func readingOrder(words []Word) []Word {
	var out []Word
	for _, l := range GroupLines(words, LineTolerance) {
		out = append(out, l.Words...)
	}
	return out
}

func same(a, b Word) bool {
	return a.Text == b.Text && a.Top == b.Top && a.X0 == b.X0 && a.Page == b.Page
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
