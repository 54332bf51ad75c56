package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"lowercases", "SRAG em SP", "srag em sp"},
		{"strips accents", "São Paulo é ótimo", "sao paulo e otimo"},
		{"collapses whitespace", "  taxa   de \t letalidade \n", "taxa de letalidade"},
		{"mixed", "  Qual a TENDÊNCIA em Rondônia?  ", "qual a tendencia em rondonia?"},
		{"keeps digits and punctuation", "últimos 30 dias, certo?", "ultimos 30 dias, certo?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"São Paulo",
		"  CFR   nos últimos 7 dias  ",
		"notícias de hoje",
		"",
		"já normalizado",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", in)
	}
}

func TestNormalizeNoCombiningMarks(t *testing.T) {
	out := Normalize("ação águia àèìòù ÃÕ ç")
	for _, r := range out {
		assert.NotContains(t, []rune{'̀', '́', '̃', '̧'}, r)
	}
	assert.Equal(t, "acao aguia aeiou ao c", out)
}
