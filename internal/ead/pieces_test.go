package ead

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPieces(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		max    int
		want   int
		wantOK bool
	}{
		{"unit with slashes", []string{"Tipul si nr. de colete [18 06]", "PC / 92 / FARA MARCA"}, 0, 92, true},
		{"unit without slashes", []string{"[18 06]", "PX 5"}, 0, 5, true},
		{"pallets", []string{"Tipul și nr. de colete [18 06]", "", "PALETI 3"}, 0, 3, true},
		{"value on header line", []string{"[18 06] CT/12/FARA MARCA"}, 0, 12, true},
		{"slash group fallback", []string{"[18 06]", "FOO / 12 / BAR"}, 0, 12, true},
		{"label without code", []string{"Tipul si nr. de colete", "BX 4"}, 0, 4, true},
		{"out of range", []string{"[18 06]", "PC / 2000000 /"}, 0, 0, false},
		{"range limit", []string{"[18 06]", "PC / 1000000 /"}, 0, 1000000, true},
		{"past range limit", []string{"[18 06]", "PC / 1000001 /"}, 0, 0, false},
		{"configured limit", []string{"[18 06]", "PC / 1001 /"}, 1000, 0, false},
		{"rejected candidate then next", []string{"[18 06]", "PC / 0 /", "PX 7"}, 0, 7, true},
		{"stopped by header", []string{"[18 06]", "Cod de nomenclatura 123", "PC / 7 /"}, 0, 0, false},
		{"absent header", []string{"PC / 92 / FARA MARCA"}, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Pieces(textDoc(tt.lines...), tt.max)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPieces_LineCap(t *testing.T) {
	lines := []string{"[18 06]", "a", "b", "c", "d", "e"}

	got, ok := Pieces(textDoc(append(lines, "PC / 3 /")...), 0)
	assert.True(t, ok)
	assert.Equal(t, 3, got)

	_, ok = Pieces(textDoc(append(lines, "f", "PC / 3 /")...), 0)
	assert.False(t, ok)
}

func TestPieces_SharedHeaderLine(t *testing.T) {
	doc := textDoc(
		fmt.Sprintf("%-40s%s", "Descrierea mărfurilor [18 05]", "Tipul și nr. de colete [18 06]"),
		fmt.Sprintf("%-40s%s", "1 Cutii buc 7", "PC / 92 / FARA MARCA"),
	)

	got, ok := Pieces(doc, 0)
	assert.True(t, ok)
	assert.Equal(t, 92, got)

	desc, ok := Description(doc)
	assert.True(t, ok)
	assert.Equal(t, "Cutii buc 7", desc)
}

func TestPieces_PositionedColumn(t *testing.T) {
	doc := posDoc(
		posLine(200, 100, "Tipul", "si", "nr.", "de", "colete", "[18", "06]"),
		posLine(200, 300, "Descrierea", "marfurilor", "[18", "05]"),
		posLine(212, 20, "PAL", "5"),
		posLine(212, 105, "CT", "/", "12"),
		posLine(212, 300, "PIESE", "AUTO"),
	)

	got, ok := Pieces(doc, 0)

	assert.True(t, ok)
	assert.Equal(t, 12, got)
}

func TestPieces_LabelAfterEmptyCodeBox(t *testing.T) {
	doc := textDoc(
		"Colete [18 06]",
		"fara",
		"Descrierea marfurilor",
		"Piese",
		"Tipul si nr. de colete",
		"CT / 12",
	)

	got, ok := Pieces(doc, 0)

	assert.True(t, ok)
	assert.Equal(t, 12, got)
}
