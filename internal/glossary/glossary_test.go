package glossary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupAlias(t *testing.T) {
	out := Lookup("letalidade")
	assert.Contains(t, out, "CFR (30 dias")
}

func TestLookupCanonical(t *testing.T) {
	out := Lookup("growth_7d")
	assert.Contains(t, out, "Taxa de aumento de casos")
}

func TestLookupNormalizesDiacritics(t *testing.T) {
	out := Lookup("Internação em UTI")
	assert.Contains(t, out, "UTI (30 dias)")
}

func TestLookupFuzzy(t *testing.T) {
	out := Lookup("letalidadi")
	assert.Contains(t, out, "CFR (30 dias")
	assert.Contains(t, out, "interpretei como")
}

func TestLookupUnknownTerm(t *testing.T) {
	out := Lookup("xyznada")
	assert.Contains(t, out, "não encontrado")
}

func TestLookupEmpty(t *testing.T) {
	out := Lookup("   ")
	assert.Contains(t, out, "Informe o termo")
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("uti", "uti"), 1e-9)
	assert.Greater(t, similarity("letalidade", "letalidadi"), 0.8)
	assert.Less(t, similarity("uti", "vacinacao"), 0.3)
}
