package ead

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/a3tai/ead-extract/internal/layout"
	"github.com/a3tai/ead-extract/internal/section"
	"github.com/a3tai/ead-extract/internal/textnorm"
)

// DefaultMaxPieces is the largest piece count accepted unless configured
// otherwise.
const DefaultMaxPieces = 1_000_000

// pieceLines caps the lines read after the packages header.
const pieceLines = 6

var (
	piecesStarts = []*regexp.Regexp{
		section.MustCompile(`(?:tipul si nr\.? de colete\s*)?\[\s*18\s*06\s*\]`),
		section.MustCompile(`tipul si nr\.? de colete`),
	}
	piecesEnds = []*regexp.Regexp{
		section.MustCompile(`(?m)^[ \t]*(?:descrierea marfurilor|cod(?:ul)? (?:de )?nomenclatura|cod marfa|valoare|masa bruta|masa neta|regim|cod cus|cod onu|tara)`),
	}
	piecesNeighbours = section.MustCompile(`descrierea marfurilor|marci si numere|cod cus|cod onu|\[\s*18\s*0[578]\s*\]`)

	pieceUnit = regexp.MustCompile(`\b(?:pc|px|pce|pcs|coli|ct|ctn|bx|pal|palet|paleti|pk|buc|bg|cs)(?:\s*/\s*|\s+)(\d+)\b`)
	digits    = regexp.MustCompile(`^\d+$`)
)

// Pieces returns the number of packages declared in box [18 06]. Counts
// outside 1..maxPieces are ignored; a non-positive maxPieces selects
// DefaultMaxPieces.
func Pieces(doc *layout.Document, maxPieces int) (int, bool) {
	return newCorpus(doc).pieces(maxPieces)
}

func (c *corpus) pieces(maxPieces int) (int, bool) {
	if maxPieces <= 0 {
		maxPieces = DefaultMaxPieces
	}

	for _, start := range piecesStarts {
		span, ok := section.Locate(c.text, start, piecesEnds...)
		if !ok {
			continue
		}
		hdr := c.lineAt(span.Start)
		if hdr >= len(c.lines) {
			hdr = len(c.lines) - 1
		}
		loc := start.FindStringIndex(c.fold(hdr))
		col := fullWidth
		if loc != nil {
			col = c.headerColumn(hdr, loc[0], loc[1], piecesNeighbours)
		}

		end := min(c.lineAt(span.End), hdr+1+pieceLines)
		for i := hdr; i < end; i++ {
			from := 0
			if i == hdr {
				from = span.Start - c.starts[hdr]
			}
			if n, ok := pieceCount(c.cell(i, from, col), maxPieces); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// pieceCount reads "<unit> / <n>" or "<unit> <n>" from a packages cell,
// falling back to the penultimate group of a slash separated line.
func pieceCount(cell string, maxPieces int) (int, bool) {
	s := textnorm.Normalize(cell)
	if s == "" {
		return 0, false
	}
	for _, m := range pieceUnit.FindAllStringSubmatch(s, -1) {
		if n, ok := inRange(m[1], maxPieces); ok {
			return n, true
		}
	}

	var parts []string
	for _, p := range strings.Split(s, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) >= 3 && digits.MatchString(parts[len(parts)-2]) {
		return inRange(parts[len(parts)-2], maxPieces)
	}
	return 0, false
}

func inRange(s string, maxPieces int) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxPieces {
		return 0, false
	}
	return n, true
}
