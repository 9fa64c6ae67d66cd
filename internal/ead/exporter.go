package ead

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/a3tai/ead-extract/internal/layout"
	"github.com/a3tai/ead-extract/internal/textnorm"
)

// exporterLookahead is the number of non-blank lines read under the label.
const exporterLookahead = 3

var (
	exporterLabel      = regexp.MustCompile(`\bexportator\b(?:\s*\[\s*13\s*01\s*\])?`)
	exporterNeighbours = regexp.MustCompile(`\b(?:destinatar|declarant|reprezentant|expeditor)\b`)
	vatLine            = regexp.MustCompile(`^nr\b`)
)

// Exporter returns the exporter name printed under (or next to) the
// "Exportator [13 01]" label.
func Exporter(doc *layout.Document) (string, bool) {
	return newCorpus(doc).exporter()
}

func (c *corpus) exporter() (string, bool) {
	i, loc := c.find(exporterLabel, 0)
	if i < 0 {
		return "", false
	}
	col := c.headerColumn(i, loc[0], loc[1], exporterNeighbours)

	if name := cleanName(c.cell(i, loc[1], col)); name != "" {
		return name, true
	}

	seen := 0
	for j := i + 1; j < len(c.lines) && seen < exporterLookahead; j++ {
		if c.blank(j) {
			continue
		}
		seen++
		raw := c.cell(j, 0, col)
		if vatLine.MatchString(textnorm.Normalize(raw)) {
			continue
		}
		if name := cleanName(raw); name != "" {
			return name, true
		}
	}
	return "", false
}

// cleanName removes checkbox glyphs and field codes from a name cell.
func cleanName(s string) string {
	s = stripFieldCodes(s)
	if first, rest, ok := strings.Cut(s, " "); ok && isGlyph(first) {
		s = rest
	} else if isGlyph(s) {
		s = ""
	}
	return strings.TrimSpace(s)
}

func isGlyph(tok string) bool {
	if utf8.RuneCountInString(tok) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(tok)
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
