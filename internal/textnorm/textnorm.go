// Package textnorm folds Romanian form text into a matching-friendly form.
//
// Folding removes diacritics (ă, â, î, ș, ț and their cedilla variants),
// lowercases and optionally collapses whitespace. Folded text is only used to
// decide where something is; values are always cut from the original text so
// that names and descriptions keep their diacritics.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics, lowercases, collapses whitespace runs into a
// single space and trims. It is idempotent and leaves digits and punctuation
// untouched.
func Normalize(s string) string {
	return CollapseSpaces(strings.ToLower(StripDiacritics(s)))
}

// StripDiacritics decomposes s and drops every combining mark.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CollapseSpaces replaces every whitespace run with one space and trims.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Folded is a lowercased, diacritic-free copy of a string that remembers
// where each of its bytes came from. Whitespace is kept as is so offsets
// found by regular expressions on Text map back onto the original.
type Folded struct {
	Text string

	orig string
	// idx[i] is the byte offset in orig of the rune that produced Text[i].
	// len(idx) == len(Text)+1, the last entry is len(orig).
	idx []int
}

// Fold builds the offset-preserving folded form of s.
func Fold(s string) Folded {
	var b strings.Builder
	b.Grow(len(s))
	idx := make([]int, 0, len(s)+1)

	for off, r := range s {
		if r < utf8.RuneSelf {
			b.WriteByte(byte(unicode.ToLower(r)))
			idx = append(idx, off)
			continue
		}
		for _, dr := range norm.NFD.String(string(r)) {
			if unicode.Is(unicode.Mn, dr) {
				continue
			}
			n, _ := b.WriteRune(unicode.ToLower(dr))
			for i := 0; i < n; i++ {
				idx = append(idx, off)
			}
		}
	}
	idx = append(idx, len(s))

	return Folded{Text: b.String(), orig: s, idx: idx}
}

// Original returns the slice of the original string that produced
// Text[start:end].
func (f Folded) Original(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(f.Text) {
		end = len(f.Text)
	}
	if start >= end {
		return ""
	}
	return f.orig[f.idx[start]:f.idx[end]]
}

// OriginalOffset maps a byte offset in Text to the byte offset in the
// original string.
func (f Folded) OriginalOffset(i int) int {
	switch {
	case i <= 0:
		return 0
	case i >= len(f.idx):
		return len(f.orig)
	}
	return f.idx[i]
}

// Source returns the original string.
func (f Folded) Source() string {
	return f.orig
}
