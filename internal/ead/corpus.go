// Package ead extracts the register fields of a Romanian export declaration
// (EAD) from a layout.Document. Every extractor anchors on a printed form
// label or field code, bounds the region that belongs to it and pulls a typed
// value out of that region. A missing or malformed value is never an error:
// the extractor simply reports absence.
package ead

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/a3tai/ead-extract/internal/layout"
	"github.com/a3tai/ead-extract/internal/textnorm"
)

// Horizontal slack applied to the left edge of a header column.
const (
	textSlack       = 2
	positionedSlack = 20
)

// corpus is the matching view of one document: every line folded (no
// diacritics, lower case) and joined by "\n", with a way back to the
// original lines and their words.
type corpus struct {
	doc    *layout.Document
	lines  []layout.Line
	folded []textnorm.Folded
	kinds  []layout.Kind
	text   string
	starts []int
}

func newCorpus(doc *layout.Document) *corpus {
	c := &corpus{doc: doc}
	var b strings.Builder
	for _, p := range doc.Pages {
		for _, l := range p.Lines {
			if len(c.lines) > 0 {
				b.WriteByte('\n')
			}
			f := textnorm.Fold(l.Text)
			c.lines = append(c.lines, l)
			c.folded = append(c.folded, f)
			c.kinds = append(c.kinds, p.Kind)
			c.starts = append(c.starts, b.Len())
			b.WriteString(f.Text)
		}
	}
	c.text = b.String()
	return c
}

// lineAt returns the index of the line holding byte offset off of c.text.
// Offsets at or past the end of the text map to len(c.lines).
func (c *corpus) lineAt(off int) int {
	if off >= len(c.text) {
		return len(c.lines)
	}
	return sort.Search(len(c.starts), func(i int) bool { return c.starts[i] > off }) - 1
}

func (c *corpus) fold(i int) string {
	return c.folded[i].Text
}

func (c *corpus) blank(i int) bool {
	return c.lines[i].IsBlank()
}

func (c *corpus) positioned(i int) bool {
	return c.kinds[i] == layout.KindPositioned
}

// find returns the first line, starting at from, whose folded text matches
// re, together with the match location inside that line.
func (c *corpus) find(re *regexp.Regexp, from int) (int, []int) {
	for i := from; i < len(c.lines); i++ {
		if loc := re.FindStringIndex(c.folded[i].Text); loc != nil {
			return i, loc
		}
	}
	return -1, nil
}

// wordIndex maps a folded byte offset of line i to the index of the word
// covering it.
func (c *corpus) wordIndex(i, off int) int {
	return c.lines[i].WordAt(c.folded[i].OriginalOffset(off))
}

// word returns the word at folded byte offset off of line i.
func (c *corpus) word(i, off int) (layout.Word, bool) {
	l := c.lines[i]
	wi := c.wordIndex(i, off)
	if wi >= len(l.Words) {
		return layout.Word{}, false
	}
	return l.Words[wi], true
}

// column is a horizontal band of a page; a word belongs to it when its left
// edge lies in [left, right).
type column struct {
	left, right float64
}

var fullWidth = column{left: math.Inf(-1), right: math.Inf(1)}

func (col column) contains(w layout.Word) bool {
	return w.X0 >= col.left && w.X0 < col.right
}

// headerColumn derives the column of a header found at [start, end) of line
// i. The right edge is the nearest neighbouring header to its right on the
// same line. A left edge is only set when the header does not open the line,
// or the page carries real coordinates.
func (c *corpus) headerColumn(i, start, end int, neighbours *regexp.Regexp) column {
	col := fullWidth
	ref, ok := c.word(i, start)
	if !ok {
		return col
	}

	if neighbours != nil {
		for _, loc := range neighbours.FindAllStringIndex(c.fold(i), -1) {
			if loc[0] < end {
				continue
			}
			if w, ok := c.word(i, loc[0]); ok && w.X0 > ref.X0 && w.X0 < col.right {
				col.right = w.X0
			}
		}
	}

	if c.positioned(i) {
		col.left = ref.X0 - positionedSlack
	} else if c.wordIndex(i, start) > 0 {
		col.left = ref.X0 - textSlack
	}
	return col
}

// cell joins the words of line i that start at or after the folded offset
// from and fall inside col. The result keeps the original spelling.
func (c *corpus) cell(i, from int, col column) string {
	l := c.lines[i]
	orig := c.folded[i].OriginalOffset(from)
	var parts []string
	for k, w := range l.Words {
		if l.Offsets[k] < orig || !col.contains(w) {
			continue
		}
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

var fieldCode = regexp.MustCompile(`\[\s*\d{1,2}\s*\d{2}\s*\]`)

// stripFieldCodes drops standalone "[dd dd]" tokens.
func stripFieldCodes(s string) string {
	return textnorm.CollapseSpaces(fieldCode.ReplaceAllString(s, " "))
}
