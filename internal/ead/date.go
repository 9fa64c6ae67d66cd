package ead

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/a3tai/ead-extract/internal/layout"
)

var (
	acceptanceCode = regexp.MustCompile(`\[\s*15\s*09\s*\]`)
	dateLabel      = regexp.MustCompile(`\bdata\b`)
	dateToken      = regexp.MustCompile(`(?:^|[^0-9])(\d{1,2})[./-](\d{1,2})(?:[./-](\d{4}))?(?:[^0-9]|$)`)
)

// Date returns the acceptance date of the declaration as "dd-mm".
func Date(doc *layout.Document) (string, bool) {
	return newCorpus(doc).date()
}

func (c *corpus) date() (string, bool) {
	for _, anchor := range []*regexp.Regexp{acceptanceCode, dateLabel} {
		for i := range c.lines {
			if !anchor.MatchString(c.fold(i)) {
				continue
			}
			if d, ok := dateIn(c.lines[i].Text); ok {
				return d, true
			}
		}
	}
	return "", false
}

// dateIn returns the first plausible day-month token of s.
func dateIn(s string) (string, bool) {
	for _, m := range dateToken.FindAllStringSubmatch(s, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if day < 1 || day > 31 || month < 1 || month > 12 {
			continue
		}
		return fmt.Sprintf("%02d-%02d", day, month), true
	}
	return "", false
}
