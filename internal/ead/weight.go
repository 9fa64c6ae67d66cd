package ead

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/a3tai/ead-extract/internal/layout"
	"github.com/a3tai/ead-extract/internal/section"
)

// Search box around the "Masa" word on positioned pages.
const (
	weightBoxLeft  = 20
	weightBoxRight = 140
	weightBoxBelow = 24
)

// weightLines is the number of non-blank lines read under the header.
const weightLines = 3

var (
	weightHeader     = section.MustCompile(`masa\s+brut`)
	weightNeighbours = section.MustCompile(`masa\s+neta|unitati suplim|valoare|regim|cod (?:de )?nomenclatura|\[\s*18\s*0[1-3]\s*\]`)
	weightNumber     = regexp.MustCompile(`^\d+(?:[.,]\d+)*$`)
	dropSeparators   = strings.NewReplacer(".", "", ",", "")
)

// Weight returns the integer part of the gross mass in box [18 04].
func Weight(doc *layout.Document) (int, bool) {
	return newCorpus(doc).weight()
}

func (c *corpus) weight() (int, bool) {
	i, loc := c.find(weightHeader, 0)
	if i < 0 {
		return 0, false
	}

	if c.positioned(i) {
		if ref, ok := c.word(i, loc[0]); ok {
			if page, ok := c.doc.Page(ref.Page); ok {
				for _, w := range page.WordsInBox(ref, weightBoxLeft, weightBoxRight, weightBoxBelow) {
					if n, ok := weightToken(w.Text); ok {
						return n, true
					}
				}
			}
		}
	}

	col := c.headerColumn(i, loc[0], loc[1], weightNeighbours)
	seen := 0
	for j := i + 1; j < len(c.lines) && seen < weightLines; j++ {
		if c.blank(j) {
			continue
		}
		seen++
		cell := c.cell(j, 0, col)
		if strings.Contains(cell, "[") {
			continue
		}
		for _, tok := range strings.Fields(cell) {
			if n, ok := weightToken(tok); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// weightToken parses a standalone number and returns its integer part. A
// token glued to letters is rejected.
func weightToken(tok string) (int, bool) {
	tok = strings.Trim(tok, "():;")
	if !weightNumber.MatchString(tok) {
		return 0, false
	}
	n, err := strconv.Atoi(integerPart(tok))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// integerPart drops the decimals of a number written with '.' or ','. A
// single separator is decimal, a repeated one groups thousands, and with
// both present the last one is decimal.
func integerPart(tok string) string {
	dots := strings.Count(tok, ".")
	commas := strings.Count(tok, ",")
	switch {
	case dots == 0 && commas == 0:
		return tok
	case dots > 0 && commas > 0:
		return dropSeparators.Replace(tok[:strings.LastIndexAny(tok, ".,")])
	case dots+commas == 1:
		return tok[:strings.IndexAny(tok, ".,")]
	default:
		return dropSeparators.Replace(tok)
	}
}
