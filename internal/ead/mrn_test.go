package ead

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/a3tai/ead-extract/internal/layout"
)

func TestMRN(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		lines  []string
		want   string
		wantOK bool
	}{
		{
			name:   "shortest token keeps seven chars",
			lines:  []string{"MRN 25RO12345678901234"},
			want:   "8901234",
			wantOK: true,
		},
		{
			name:   "longer token",
			lines:  []string{"MRN:", "", "26RO40010024AB1234567"},
			want:   "4AB1234567",
			wantOK: true,
		},
		{
			name:   "lower case upper-cased",
			lines:  []string{"mrn 25ro12345678901234"},
			want:   "8901234",
			wantOK: true,
		},
		{
			name:   "token before the label",
			lines:  []string{"25RO12345678901234", "x", "MRN"},
			want:   "8901234",
			wantOK: true,
		},
		{
			name:   "label without token scans the document",
			lines:  []string{"MRN", "a", "b", "c", "d", "e", "f", "g", "h", "25RO99999999999999"},
			want:   "9999999",
			wantOK: true,
		},
		{
			name:   "no label",
			lines:  []string{"Declaratie 25ROAAAAAAAAAAAAAABB"},
			want:   "AAAAAAABB",
			wantOK: true,
		},
		{
			name:   "file name fallback",
			file:   "25RO12345678901234_scan.pdf",
			lines:  []string{"nothing"},
			want:   "8901234",
			wantOK: true,
		},
		{
			name:   "too short",
			lines:  []string{"MRN 25RO1234567890123"},
			wantOK: false,
		},
		{
			name:   "wrong prefix",
			lines:  []string{"MRN 24RO12345678901234"},
			wantOK: false,
		},
		{
			name:   "absent everywhere",
			file:   "declaratie.pdf",
			lines:  []string{"Exportator [13 01]"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := textDoc(tt.lines...)
			if tt.file != "" {
				doc.Name = tt.file
			}
			got, ok := MRN(doc)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMRN_PositionedWords(t *testing.T) {
	doc := layout.FromWords("p.pdf", []layout.Word{
		{Text: "MRN", Top: 10, Bottom: 18, X0: 10, X1: 30, Page: 1},
		{Text: "25RO12345678901234", Top: 10, Bottom: 18, X0: 40, X1: 140, Page: 1},
	})

	got, ok := MRN(doc)

	assert.True(t, ok)
	assert.Equal(t, "8901234", got)
	assert.Len(t, "25RO12345678901234"[MRNPrefixLen:], 7)
}
