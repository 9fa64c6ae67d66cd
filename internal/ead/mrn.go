package ead

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/a3tai/ead-extract/internal/layout"
)

// MRNPrefixLen is the length of the MRN head (year, country and office
// segment) dropped from the register value.
const MRNPrefixLen = 11

// Lines searched around the MRN label.
const (
	mrnBefore = 3
	mrnAfter  = 8
)

var (
	mrnLabel = regexp.MustCompile(`\bmrn\b`)
	mrnToken = regexp.MustCompile(`(?i)\b(2[56]RO[A-Z0-9]{14,})\b`)
	nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// MRN returns the movement reference number without its fixed prefix.
func MRN(doc *layout.Document) (string, bool) {
	return newCorpus(doc).mrn()
}

func (c *corpus) mrn() (string, bool) {
	var lines []string
	label := -1
	for i, l := range c.lines {
		if c.blank(i) {
			continue
		}
		if label < 0 && mrnLabel.MatchString(c.fold(i)) {
			label = len(lines)
		}
		lines = append(lines, strings.TrimSpace(l.Text))
	}

	if label >= 0 {
		window := lines[max(0, label-mrnBefore):min(len(lines), label+mrnAfter)]
		for _, l := range window {
			if v, ok := mrnIn(l); ok {
				return v, true
			}
		}
		if v, ok := mrnIn(strings.Join(window, " ")); ok {
			return v, true
		}
	}

	if v, ok := mrnIn(strings.Join(lines, " ")); ok {
		return v, true
	}

	name := strings.TrimSuffix(c.doc.Name, filepath.Ext(c.doc.Name))
	return mrnIn(nonAlnum.ReplaceAllString(name, " "))
}

func mrnIn(s string) (string, bool) {
	m := mrnToken.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1])[MRNPrefixLen:], true
}
