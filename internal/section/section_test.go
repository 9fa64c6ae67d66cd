package section

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate_EarliestEndAfterStart(t *testing.T) {
	// START occupies [10, 15); end labels sit at E+3, E+50 and E-1.
	content := strings.Repeat(".", 10) + "START" + strings.Repeat(".", 60)
	e := 15
	b := []byte(content)
	b[e-1] = 'x' // inside the start label, before its end
	b[e+3] = 'x'
	b[e+50] = 'x'
	content = string(b)

	start := regexp.MustCompile(`STAR[Tx]`)
	end := regexp.MustCompile(`x`)

	span, ok := Locate(content, start, end)

	require.True(t, ok)
	assert.Equal(t, e, span.Start)
	assert.Equal(t, e+3, span.End)
}

func TestLocate(t *testing.T) {
	content := "Documentul de transport [12 05] N740 AWB Documentul precedent [12 01] rest"
	start := MustCompile(`documentul de transport\s*\[\s*12\s*05\s*\]`)
	end := MustCompile(`documentul precedent\s*\[\s*12\s*01\s*\]`)

	tests := []struct {
		name     string
		content  string
		ends     []*regexp.Regexp
		wantOK   bool
		wantBody string
	}{
		{"bounded", content, []*regexp.Regexp{end}, true, " N740 AWB "},
		{"no_end_runs_to_eof", "DOCUMENTUL DE TRANSPORT [12 05] N730", []*regexp.Regexp{end}, true, " N730"},
		{"no_ends_given", content[:36], nil, true, " N740"},
		{"missing_start", "nothing here", []*regexp.Regexp{end}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, ok := Locate(tt.content, start, tt.ends...)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantBody, span.Text(tt.content))
			}
		})
	}
}

func TestLocate_MinimumAcrossEndPatterns(t *testing.T) {
	content := "HEAD value one\nSTOP-B\nSTOP-A\n"
	span, ok := Locate(content, MustCompile(`head`), MustCompile(`stop-a`), MustCompile(`stop-b`))

	require.True(t, ok)
	assert.Equal(t, " value one\n", span.Text(content))
}

func TestLocate_LineAnchoredEnds(t *testing.T) {
	content := "Descrierea [18 05] Tipul si nr. [18 06]\n1 Electronice\nTipul si nr. de colete\n"
	end := MustCompile(`(?m)^\s*tipul si nr\.`)

	span, ok := Locate(content, MustCompile(`descrierea\s*\[18 05\]`), end)

	require.True(t, ok)
	assert.Equal(t, " Tipul si nr. [18 06]\n1 Electronice\n", span.Text(content))
}

func TestLocate_EndMatchFromEarlierLineDoesNotHideLaterEnd(t *testing.T) {
	// The first alternative matches from line one through "stop", which would
	// swallow the plain "stop" bounding the body.
	content := "aaa\nstart\nstop"
	end := MustCompile(`(?s)aaa.*?stop|stop`)

	span, ok := Locate(content, MustCompile(`start`), end)

	require.True(t, ok)
	assert.Equal(t, Span{Start: 9, End: 10}, span)
	assert.Equal(t, "\n", span.Text(content))
}

func TestLocateAll_EachStartBoundIndependently(t *testing.T) {
	content := "T> a E> T> b T> c E>"
	spans := LocateAll(content, MustCompile(`T>`), MustCompile(`E>`))

	require.Len(t, spans, 3)
	assert.Equal(t, " a ", spans[0].Text(content))
	assert.Equal(t, " b T> c ", spans[1].Text(content))
	assert.Equal(t, " c ", spans[2].Text(content))
}

func TestLocateFirst(t *testing.T) {
	content := "T> nothing E> T> N730 E> T> N740 E>"
	start := MustCompile(`T>`)
	ends := []*regexp.Regexp{MustCompile(`E>`)}
	hasCode := func(body string) bool { return strings.Contains(body, "N7") }

	span, ok := LocateFirst(content, start, ends, hasCode)
	require.True(t, ok)
	assert.Equal(t, " N730 ", span.Text(content))

	_, ok = LocateFirst(content, start, ends, func(string) bool { return false })
	assert.False(t, ok)
}

func TestSpan_TextOutOfRange(t *testing.T) {
	assert.Equal(t, "", Span{Start: 3, End: 99}.Text("abc"))
	assert.Equal(t, "", Span{Start: 2, End: 1}.Text("abc"))
	assert.Equal(t, 2, Span{Start: 1, End: 3}.Len())
}
