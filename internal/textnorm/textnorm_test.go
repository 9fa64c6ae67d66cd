package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"romanian_diacritics", "Descrierea mărfurilor", "descrierea marfurilor"},
		{"comma_below", "Țara exportatoare ȘI", "tara exportatoare si"},
		{"cedilla_variants", "Ţara şi", "tara si"},
		{"spacing", "  Masa   brută \t [18 04]  ", "masa bruta [18 04]"},
		{"digits_and_punctuation", "230.000 KG / 92 /", "230.000 kg / 92 /"},
		{"decomposed_input", "ma\u0306rfuri", "marfuri"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Documentul de transport [12 05]",
		"  Exportator  [13 01]  S.C. ÎNTREPRINDERE ȘTEFAN S.R.L. ",
		"Masa brută [18 04]\n230.000",
		"ß İ ǅ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestFold_OriginalRoundTrip(t *testing.T) {
	src := "1 Mărfuri   ȘTEFAN [18 05]"
	f := Fold(src)

	assert.Equal(t, "1 marfuri   stefan [18 05]", f.Text)
	assert.Len(t, f.Text, len([]rune(f.Text)))

	start := len("1 ")
	end := start + len("marfuri")
	assert.Equal(t, "Mărfuri", f.Original(start, end))
	assert.Equal(t, src, f.Original(0, len(f.Text)))
	assert.Equal(t, "", f.Original(5, 5))
}

func TestFold_DecomposedMarksStayWithBase(t *testing.T) {
	src := "ma\u0306rfa"
	f := Fold(src)

	assert.Equal(t, "marfa", f.Text)
	assert.Equal(t, "ma\u0306", f.Original(0, 2))
	assert.Equal(t, len(src), f.OriginalOffset(len(f.Text)))
}
