package ead

import (
	"regexp"

	"github.com/a3tai/ead-extract/internal/layout"
	"github.com/a3tai/ead-extract/internal/section"
)

// Transport document kinds.
const (
	TransportAWB      = "AWB"
	TransportCMR      = "CMR"
	TransportBorderou = "Borderou"
)

var (
	transportStart = section.MustCompile(`documentul de transport\s*\[\s*12\s*05\s*\]`)
	transportEnds  = []*regexp.Regexp{
		section.MustCompile(`documentul precedent\s*\[\s*12\s*01\s*\]`),
	}

	// Checked in order; the first code present decides.
	transportCodes = []struct {
		re   *regexp.Regexp
		kind string
	}{
		{section.MustCompile(`\bn\s*74[01]\b`), TransportAWB},
		{section.MustCompile(`\bn\s*730\b`), TransportCMR},
		{section.MustCompile(`\bn\s*787\b`), TransportBorderou},
	}
)

// Transport classifies the transport document of the declaration.
func Transport(doc *layout.Document) (string, bool) {
	return newCorpus(doc).transport()
}

func (c *corpus) transport() (string, bool) {
	span, ok := section.LocateFirst(c.text, transportStart, transportEnds, func(body string) bool {
		_, ok := TransportKind(body)
		return ok
	})
	if !ok {
		return "", false
	}
	return TransportKind(span.Text(c.text))
}

// TransportKind maps the document codes found in a transport block to a
// kind. AWB codes win over CMR, CMR over Borderou.
func TransportKind(body string) (string, bool) {
	for _, code := range transportCodes {
		if code.re.MatchString(body) {
			return code.kind, true
		}
	}
	return "", false
}
