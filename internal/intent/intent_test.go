package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalRegionImpliesRegionalScope(t *testing.T) {
	it := Intent{Kind: KindReport, Scope: ScopeNational, Region: "SP"}.Canonical()
	assert.Equal(t, ScopeRegional, it.Scope)
	assert.Equal(t, "SP", it.Region)
}

func TestCanonicalRegionalWithoutRegionDegrades(t *testing.T) {
	it := Intent{Kind: KindReport, Scope: ScopeRegional}.Canonical()
	assert.Equal(t, ScopeNational, it.Scope)
}

func TestCanonicalDefaultsWindow(t *testing.T) {
	it := Intent{Kind: KindNews}.Canonical()
	assert.Equal(t, DefaultDaysBack, it.DaysBack)
	assert.Equal(t, ScopeNational, it.Scope)
}

func TestUnknownSentinel(t *testing.T) {
	it := Unknown()
	assert.Equal(t, KindUnknown, it.Kind)
	assert.Equal(t, 0.0, it.Confidence)
	assert.False(t, it.IsDataFetching())
}

func TestIsDataFetching(t *testing.T) {
	fetching := []Kind{KindNews, KindReport, KindDataQuery, KindAdHocQuery, KindTrend, KindCompare}
	for _, k := range fetching {
		assert.True(t, Intent{Kind: k}.IsDataFetching(), string(k))
	}
	local := []Kind{KindGreet, KindExplain, KindChitchat, KindUnknown}
	for _, k := range local {
		assert.False(t, Intent{Kind: k}.IsDataFetching(), string(k))
	}
}

func TestValidKindRejectsOutOfSet(t *testing.T) {
	assert.True(t, ValidKind(KindTrend))
	assert.False(t, ValidKind(Kind("sql_injection")))
	assert.False(t, ValidKind(Kind("")))
}
