package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleClassifyGreeting(t *testing.T) {
	rc := NewRuleClassifier()
	it := rc.Classify("Olá, bom dia!")
	assert.Equal(t, KindGreet, it.Kind)
	assert.Equal(t, ScopeNational, it.Scope)
	assert.Greater(t, it.Confidence, 0.0)
}

func TestRuleClassifyNews(t *testing.T) {
	rc := NewRuleClassifier()
	it := rc.Classify("tem novidades? quais as últimas notícias de SRAG?")
	assert.Equal(t, KindNews, it.Kind)
}

func TestRuleClassifyReportWithRegion(t *testing.T) {
	rc := NewRuleClassifier()
	it := rc.Classify("gere o relatório padrão para RJ")
	assert.Equal(t, KindReport, it.Kind)
	assert.Equal(t, ScopeRegional, it.Scope)
	assert.Equal(t, "RJ", it.Region)
}

func TestRuleClassifyExplain(t *testing.T) {
	rc := NewRuleClassifier()
	it := rc.Classify("o que é CFR?")
	assert.Equal(t, KindExplain, it.Kind)
	assert.Equal(t, "cfr_30d_closed", it.Metric)
}

func TestRuleClassifyTrend(t *testing.T) {
	rc := NewRuleClassifier()
	it := rc.Classify("qual a tendência da curva de casos?")
	assert.Equal(t, KindTrend, it.Kind)
}

func TestRuleClassifyCompare(t *testing.T) {
	rc := NewRuleClassifier()
	it := rc.Classify("ranking das UFs com maiores números")
	assert.Equal(t, KindCompare, it.Kind)
}

func TestRuleClassifyNothingMatches(t *testing.T) {
	rc := NewRuleClassifier()
	it := rc.Classify("xyzzy plugh")
	assert.Equal(t, KindUnknown, it.Kind)
	assert.Equal(t, 0.0, it.Confidence)
	assert.Equal(t, DefaultDaysBack, it.DaysBack)
}

func TestRuleConfidenceSplitsOnAmbiguity(t *testing.T) {
	rc := NewRuleClassifier()
	// One news hit and one report hit: the winner takes half the mass.
	it := rc.Classify("resumo das notícias")
	assert.Less(t, it.Confidence, 1.0)
	assert.Greater(t, it.Confidence, 0.0)
}

func TestRulePriorityBreaksTies(t *testing.T) {
	scores := map[Kind]int{KindNews: 1, KindReport: 1}
	top := KindUnknown
	topScore := 0
	for _, k := range rulePriority {
		if scores[k] > topScore {
			top, topScore = k, scores[k]
		}
	}
	assert.Equal(t, KindNews, top)
}

func TestRuleClassifyWindowExtraction(t *testing.T) {
	rc := NewRuleClassifier()
	it := rc.Classify("tendência dos últimos 30 dias")
	assert.Equal(t, KindTrend, it.Kind)
	assert.Equal(t, 30, it.DaysBack)
}
