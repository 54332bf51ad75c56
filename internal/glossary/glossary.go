// Package glossary explains dataset terms in PT-BR, with alias and
// fuzzy fallback so near-miss spellings still resolve.
package glossary

import (
	"fmt"
	"sort"

	"github.com/Ziolli/Case-Indicium/internal/textnorm"
)

var entries = map[string]string{
	"growth_7d": "Taxa de aumento de casos (7 dias): variação percentual dos últimos 7 dias " +
		"em relação aos 7 dias anteriores, ancorada na data de corte (as_of). " +
		"Se o período anterior tiver 0 casos, o crescimento é 'indisponível'.",
	"cfr_30d_closed": "CFR (30 dias, casos encerrados): óbitos divididos por casos encerrados nos " +
		"últimos 30 dias, em %. Não é taxa de mortalidade populacional.",
	"icu_rate_30d": "% de casos com UTI (30 dias): percentual de casos que tiveram passagem por UTI " +
		"nos últimos 30 dias. Não representa ocupação de leitos hospitalares.",
	"vaccinated_rate_30d": "% de casos vacinados (30 dias): percentual de casos com vacinação registrada " +
		"nos últimos 30 dias. Não é cobertura vacinal da população.",

	"dt_notific":     "Data de notificação do caso (DATE).",
	"dt_sin_pri":     "Data de início dos sintomas (DATE).",
	"dt_evoluca":     "Data do desfecho (alta ou óbito), pode ser nula (DATE).",
	"dt_encerra":     "Data de encerramento do caso no sistema (DATE).",
	"sem_not":        "Semana epidemiológica da notificação (INTEGER).",
	"evolucao_code":  "Código do desfecho {1=CURA, 2=ÓBITO, 3=ÓBITO OUTRAS, 9=IGNORADO}.",
	"evolucao_label": "Rótulo do desfecho a partir de 'evolucao_code'.",
	"classi_fin":     "Classificação final (etiologia) do caso.",
	"uti_bool":       "Indicador de passagem por UTI (BOOLEAN).",
	"vacinado_bool":  "Indicador de vacinação registrada no caso (BOOLEAN).",
	"idade":          "Idade em anos (INTEGER).",
	"faixa_etaria":   "Faixa etária derivada da idade (0-4, 5-17, 18-39, 40-59, 60+).",
	"sexo":           "Sexo (M/F/...).",
	"uf":             "UF de notificação (sigla de 2 letras).",
	"is_obito":       "Flag para óbito (evolucao_code = 2).",
	"pendente_60d":   "Provável pendência após 60 dias sem desfecho/encerramento (BOOLEAN).",
}

var aliases = map[string]string{
	"cfr":                          "cfr_30d_closed",
	"crf":                          "cfr_30d_closed",
	"case fatality rate":           "cfr_30d_closed",
	"taxa de letalidade":           "cfr_30d_closed",
	"letalidade":                   "cfr_30d_closed",
	"taxa de mortalidade de casos": "cfr_30d_closed",

	"icu":                           "icu_rate_30d",
	"icu rate":                      "icu_rate_30d",
	"taxa de uti":                   "icu_rate_30d",
	"percentual de casos com uti":   "icu_rate_30d",
	"uti":                           "icu_rate_30d",
	"internacao em uti":             "icu_rate_30d",
	"admissao em uti":               "icu_rate_30d",

	"taxa de vacinacao":       "vaccinated_rate_30d",
	"taxa de vacinados":       "vaccinated_rate_30d",
	"percentual de vacinados": "vaccinated_rate_30d",
	"vaccinated rate":         "vaccinated_rate_30d",

	"taxa de aumento": "growth_7d",
	"crescimento 7d":  "growth_7d",
	"aumento 7 dias":  "growth_7d",
}

const fuzzyCutoff = 0.66

// Lookup returns the PT-BR description for a data term, trying alias
// exact match, canonical exact match, then fuzzy matching over both.
func Lookup(term string) string {
	t := textnorm.Normalize(term)
	if t == "" {
		return "Informe o termo que deseja explicar."
	}

	if key, ok := aliases[t]; ok {
		if desc, ok := entries[key]; ok {
			return desc
		}
		return fmt.Sprintf("Termo mapeado para '%s', mas sem descrição.", key)
	}

	if desc, ok := entries[t]; ok {
		return desc
	}

	if match, key := closestMatch(t); key != "" {
		if desc, ok := entries[key]; ok {
			return fmt.Sprintf("%s *(interpretei como '%s')*", desc, match)
		}
	}
	return "Termo não encontrado no glossário do projeto."
}

// closestMatch runs the fuzzy scan over canonical keys and aliases,
// returning the best candidate above the cutoff. Candidates are
// visited in sorted order so ties resolve deterministically.
func closestMatch(t string) (match, key string) {
	candidates := make([]string, 0, len(entries)+len(aliases))
	for k := range entries {
		candidates = append(candidates, k)
	}
	for k := range aliases {
		candidates = append(candidates, k)
	}
	sort.Strings(candidates)

	best := fuzzyCutoff
	for _, c := range candidates {
		if s := similarity(t, c); s > best {
			best = s
			match = c
		}
	}
	if match == "" {
		return "", ""
	}
	if mapped, ok := aliases[match]; ok {
		return match, mapped
	}
	return match, match
}

// similarity is 1 minus the normalized Levenshtein distance.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 || lb == 0 {
		return 0
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	return 1 - float64(prev[lb])/float64(maxLen)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
