// Package section bounds a labelled region of text: it starts where a start
// label ends and stops right before the nearest following end label.
package section

import (
	"regexp"
	"strings"
)

// Span is a half-open byte range [Start, End) of the searched content.
type Span struct {
	Start int
	End   int
}

// Text returns the spanned part of content.
func (s Span) Text(content string) string {
	if s.Start < 0 || s.End > len(content) || s.Start > s.End {
		return ""
	}
	return content[s.Start:s.End]
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// MustCompile compiles a case-insensitive pattern.
func MustCompile(pattern string) *regexp.Regexp {
	if !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}
	return regexp.MustCompile(pattern)
}

// Locate finds the first match of start and bounds it by the earliest end
// match beginning strictly after the start match ends. If no end label
// follows, the span runs to the end of content.
func Locate(content string, start *regexp.Regexp, ends ...*regexp.Regexp) (Span, bool) {
	loc := start.FindStringIndex(content)
	if loc == nil {
		return Span{}, false
	}
	return bound(content, loc[1], ends), true
}

// LocateAll bounds every match of start independently, in document order.
func LocateAll(content string, start *regexp.Regexp, ends ...*regexp.Regexp) []Span {
	var spans []Span
	for _, loc := range start.FindAllStringIndex(content, -1) {
		spans = append(spans, bound(content, loc[1], ends))
	}
	return spans
}

// LocateFirst walks the start matches in document order and returns the
// first bounded span whose body satisfies accept.
func LocateFirst(content string, start *regexp.Regexp, ends []*regexp.Regexp, accept func(body string) bool) (Span, bool) {
	for _, span := range LocateAll(content, start, ends...) {
		if accept(span.Text(content)) {
			return span, true
		}
	}
	return Span{}, false
}

func bound(content string, from int, ends []*regexp.Regexp) Span {
	end := len(content)
	for _, re := range ends {
		if e := firstAfter(content, re, from); e >= 0 && e < end {
			end = e
		}
	}
	return Span{Start: from, End: end}
}

// firstAfter returns the start offset of the first match of re that begins
// strictly after from, or -1. Matching restarts at the beginning of the line
// holding from+1, so a match running over earlier lines cannot hide it while
// line anchors and word boundaries keep their meaning.
func firstAfter(content string, re *regexp.Regexp, from int) int {
	if from+1 > len(content) {
		return -1
	}
	base := strings.LastIndexByte(content[:from+1], '\n') + 1
	for _, loc := range re.FindAllStringIndex(content[base:], -1) {
		if base+loc[0] > from {
			return base + loc[0]
		}
	}
	return -1
}
