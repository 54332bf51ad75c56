package intent

import (
	"regexp"

	"github.com/Ziolli/Case-Indicium/internal/textnorm"
)

// rulePriority breaks ties between kinds with equal hit counts. This
// ordering is user-visible behavior, not an implementation detail.
var rulePriority = []Kind{KindGreet, KindNews, KindReport, KindExplain, KindTrend, KindCompare}

// rulePatterns holds the per-kind pattern lists, authored against
// normalized text. Hit count is the number of distinct patterns that
// match, not the number of occurrences.
var rulePatterns = map[Kind][]*regexp.Regexp{
	KindGreet: compileAll(
		`\b(oi|ola)\b`,
		`\b(bom dia|boa tarde|boa noite)\b`,
		`\b(eai|e ai)\b`,
		`\b(alo)\b`,
		`\b(tudo bem|tudo bom)\b`,
		`\b(quem (e|eh) voce\b|o que voce faz\b|como voce funciona\b)`,
		`\b(ajuda|help)\b`,
	),
	KindNews: compileAll(
		`\bnoticia[s]?\b`,
		`\bultimas? noticia[s]?\b`,
		`\bnovidade[s]?\b`,
		`\batualizac(ao|oes)\b`,
		`\bnews\b`,
		`\bcontexto\b`,
		`\b(o que saiu|que saiu)\b`,
		`\btem novidades?\b`,
	),
	KindReport: compileAll(
		`\brelatorio(s)?\b`,
		`\brelatorio padrao\b`,
		`\breport\b`,
		`\bsumario\b`,
		`\bresumo\b`,
		`\banalise\b`,
		`\bger(ar|e)\b`,
	),
	KindExplain: compileAll(
		`\bexplicar\b`,
		`\bexplica\b`,
		`\bo que (e|eh)\b`,
		`\bdefinicao\b`,
		`\b(glossario|glossary)\b`,
		`\bsignifica\b`,
		`\bmeaning\b`,
	),
	KindTrend: compileAll(
		`\btendencia[s]?\b`,
		`\bevolucao\b`,
		`\bultimos? (7|30|12) (dias|mes(es)?)\b`,
		`\bcurva\b`,
		`\bserie(s)? temporal(is)?\b`,
		`\btrend\b`,
	),
	KindCompare: compileAll(
		`\bcompar(ar|e)\b`,
		`\branking\b`,
		`\b(maiores|menores|piores|melhores|top)\b`,
	),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// RuleClassifier scores normalized text against the static pattern
// tables. Stateless; safe to share.
type RuleClassifier struct{}

// NewRuleClassifier returns the shared rule-based classifier.
func NewRuleClassifier() *RuleClassifier {
	return &RuleClassifier{}
}

// Score returns the per-kind count of distinct matching patterns.
func (rc *RuleClassifier) Score(norm string) map[Kind]int {
	scores := make(map[Kind]int, len(rulePatterns))
	for kind, patterns := range rulePatterns {
		for _, p := range patterns {
			if p.MatchString(norm) {
				scores[kind]++
			}
		}
	}
	return scores
}

// Classify resolves kind, scope, region, metric and window from the raw
// text using only the static rule tables. Confidence is the heuristic
// winning_hits/total_hits, zero when nothing matched; it is not a
// calibrated probability.
func (rc *RuleClassifier) Classify(raw string) Intent {
	norm := textnorm.Normalize(raw)
	scope, region := ExtractRegion(raw)
	scores := rc.Score(norm)

	topKind := KindUnknown
	topScore := 0
	totalHits := 0
	for _, k := range rulePriority {
		totalHits += scores[k]
		if scores[k] > topScore {
			topKind, topScore = k, scores[k]
		}
	}

	confidence := 0.0
	if totalHits > 0 {
		confidence = float64(topScore) / float64(totalHits)
	}

	return Intent{
		Kind:       topKind,
		Metric:     ExtractMetric(norm),
		Scope:      scope,
		Region:     region,
		Confidence: confidence,
		DaysBack:   ParseDaysBack(raw),
	}.Canonical()
}
