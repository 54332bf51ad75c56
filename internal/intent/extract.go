package intent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Ziolli/Case-Indicium/internal/textnorm"
)

// regionByName maps normalized UF full names to their two-letter codes.
// Authored against normalized text (no accents).
var regionByName = map[string]string{
	"acre": "AC", "alagoas": "AL", "amapa": "AP", "amazonas": "AM", "bahia": "BA",
	"ceara": "CE", "distrito federal": "DF", "espirito santo": "ES", "goias": "GO",
	"maranhao": "MA", "mato grosso": "MT", "mato grosso do sul": "MS", "minas gerais": "MG",
	"para": "PA", "paraiba": "PB", "parana": "PR", "pernambuco": "PE", "piaui": "PI",
	"rio de janeiro": "RJ", "rio grande do norte": "RN", "rio grande do sul": "RS",
	"rondonia": "RO", "roraima": "RR", "santa catarina": "SC", "sao paulo": "SP",
	"sergipe": "SE", "tocantins": "TO",
}

var regionCodes = func() map[string]bool {
	codes := make(map[string]bool, len(regionByName))
	for _, c := range regionByName {
		codes[c] = true
	}
	return codes
}()

var (
	siglaRe      = regexp.MustCompile(`\b([A-Z]{2})\b`)
	regionNameRe map[string]*regexp.Regexp
	// names checked longest-first so "mato grosso do sul" beats "mato grosso"
	regionNameOrder []string
)

func init() {
	regionNameRe = make(map[string]*regexp.Regexp, len(regionByName))
	for name := range regionByName {
		regionNameRe[name] = regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
		regionNameOrder = append(regionNameOrder, name)
	}
	sort.Slice(regionNameOrder, func(i, j int) bool {
		if len(regionNameOrder[i]) != len(regionNameOrder[j]) {
			return len(regionNameOrder[i]) > len(regionNameOrder[j])
		}
		return regionNameOrder[i] < regionNameOrder[j]
	})
}

// ExtractRegion scans the raw text for a two-letter uppercase sigla
// first (exact match on the original casing avoids false positives from
// lowercase prose), then falls back to whole-word full-name matches on
// the normalized text.
func ExtractRegion(raw string) (Scope, string) {
	if m := siglaRe.FindStringSubmatch(raw); m != nil && regionCodes[m[1]] {
		return ScopeRegional, m[1]
	}
	norm := textnorm.Normalize(raw)
	for _, name := range regionNameOrder {
		if regionNameRe[name].MatchString(norm) {
			return ScopeRegional, regionByName[name]
		}
	}
	return ScopeNational, ""
}

// ValidRegion reports whether code is a member of the closed UF set.
func ValidRegion(code string) bool {
	return regionCodes[code]
}

// metricAliases maps normalized synonym phrases to canonical metric ids
// from the catalog.
var metricAliases = map[string]string{
	// growth
	"taxa de aumento": "growth_7d",
	"crescimento 7d":  "growth_7d",
	"aumento 7 dias":  "growth_7d",
	"growth":          "growth_7d",
	// case fatality
	"cfr":                          "cfr_30d_closed",
	"crf":                          "cfr_30d_closed",
	"case fatality rate":           "cfr_30d_closed",
	"taxa de letalidade":           "cfr_30d_closed",
	"letalidade":                   "cfr_30d_closed",
	"taxa de mortalidade de casos": "cfr_30d_closed",
	// icu
	"uti":                         "icu_rate_30d",
	"taxa de uti":                 "icu_rate_30d",
	"icu rate":                    "icu_rate_30d",
	"percentual de casos com uti": "icu_rate_30d",
	"internacao em uti":           "icu_rate_30d",
	"admissao em uti":             "icu_rate_30d",
	// vaccinated
	"taxa de vacinacao":       "vaccinated_rate_30d",
	"taxa de vacinados":       "vaccinated_rate_30d",
	"percentual de vacinados": "vaccinated_rate_30d",
	"vaccinated rate":         "vaccinated_rate_30d",
}

// aliasOrder lists aliases longest-first so multi-word phrases win over
// substrings ("taxa de letalidade" resolves before "letalidade").
var aliasOrder = func() []string {
	keys := make([]string, 0, len(metricAliases))
	for k := range metricAliases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// ExtractMetric maps normalized text to a canonical metric id, or ""
// when no synonym matches. Substring match, longest alias first, with a
// narrow token fallback for the cfr/crf abbreviations. No fuzzy
// matching here; that belongs to the glossary.
func ExtractMetric(norm string) string {
	for _, alias := range aliasOrder {
		if strings.Contains(norm, alias) {
			return metricAliases[alias]
		}
	}
	for _, tok := range strings.Fields(norm) {
		if tok == "cfr" || tok == "crf" {
			return "cfr_30d_closed"
		}
	}
	return ""
}

var (
	days7Re  = regexp.MustCompile(`\b(7|sete)\b.*\bdias\b`)
	days30Re = regexp.MustCompile(`\b(30|trinta)\b.*\bdias\b`)
	days90Re = regexp.MustCompile(`\b(90|noventa)\b.*\bdias\b`)
)

// ParseDaysBack maps temporal cues in the text to one of the canonical
// windows {1,2,7,14,30,90}, defaulting to 14. The check order is a
// contract: first match wins.
func ParseDaysBack(raw string) int {
	t := textnorm.Normalize(raw)
	if strings.Contains(t, "hoje") || strings.Contains(t, "agora") {
		return 1
	}
	if strings.Contains(t, "ontem") {
		return 2
	}
	if days7Re.MatchString(t) || strings.Contains(t, "semana") {
		return 7
	}
	if days30Re.MatchString(t) || strings.Contains(t, "mes") {
		return 30
	}
	if days90Re.MatchString(t) || strings.Contains(t, "trimestre") {
		return 90
	}
	return DefaultDaysBack
}
