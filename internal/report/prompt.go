package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Ziolli/Case-Indicium/internal/news"
	"github.com/Ziolli/Case-Indicium/internal/store"
)

const systemPrompt = `Você é um analista epidemiológico escrevendo relatórios sobre Síndrome Respiratória Aguda Grave (SRAG).
Objetivo: produzir um relatório claro, objetivo, auditável e com contexto de notícias recentes.

Regras gerais:
- NÃO invente números. Use apenas os valores fornecidos no payload estruturado.
- Cite sempre a janela temporal utilizada (ex.: "últimos 7 dias vs. 7 anteriores", "últimos 30 dias")
  e a data de corte (as_of) quando for mencionada.
- Seja explícito sobre limitações dos dados e definições operacionais.
- Escreva em português do Brasil, formal, conciso e com subtítulos.
- Estrutura recomendada (nesta ordem):
  1) Sumário Executivo
  2) Métricas (KPIs)
  3) Comentários/Contexto (incluindo notícias com fonte e data)
  4) Referências e Observações de Metodologia

Instruções de métricas:
- Taxa de aumento: variação percentual dos últimos 7 dias vs. 7 dias anteriores, ancorada no as_of.
- Taxa de mortalidade: usar CFR de casos encerrados em 30 dias; NÃO é taxa populacional.
- Taxa de UTI: % de casos com passagem por UTI; NÃO é ocupação de leitos.
- Taxa de vacinação: % de casos com vacinação registrada; NÃO é cobertura populacional.
- Quando um denominador for zero, diga "indisponível" ao invés de forçar 0% ou 100%.
- Nunca promediar percentuais de UFs para estimar Brasil.`

type promptPayload struct {
	Scope            string              `json:"scope"`
	UF               string              `json:"uf,omitempty"`
	AsOfDay          string              `json:"as_of_day,omitempty"`
	KPIs             store.KPIs          `json:"kpis"`
	DailySeries30d   []seriesPoint       `json:"daily_series_30d"`
	MonthlySeries12m []seriesPoint       `json:"monthly_series_12m"`
	News             []news.Article      `json:"news"`
	Notes            []string            `json:"notes"`
}

type seriesPoint struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

func toPoints(series []store.SeriesPoint) []seriesPoint {
	out := make([]seriesPoint, 0, len(series))
	for _, p := range series {
		out = append(out, seriesPoint{X: p.Date.Format("2006-01-02"), Y: p.Cases})
	}
	return out
}

// buildUserPrompt serializes the structured inputs into the payload
// the model narrates from.
func buildUserPrompt(scope, uf string, asOf *time.Time, kpis store.KPIs, daily, monthly []store.SeriesPoint, articles []news.Article) string {
	payload := promptPayload{
		Scope:            scope,
		UF:               uf,
		KPIs:             kpis,
		DailySeries30d:   toPoints(daily),
		MonthlySeries12m: toPoints(monthly),
		News:             articles,
		Notes: []string{
			"ICU rate representa % de casos com passagem por UTI (NÃO é ocupação de leitos).",
			"Vaccinated rate é % entre casos notificados (NÃO é cobertura populacional).",
		},
	}
	if asOf != nil {
		payload.AsOfDay = asOf.Format("2006-01-02")
	}
	if payload.News == nil {
		payload.News = []news.Article{}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		data = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString("Dados estruturados do relatório (não invente números; use apenas o payload abaixo):\n")
	sb.Write(data)
	sb.WriteString("\n\nProduza o relatório em Markdown seguindo a estrutura recomendada.")
	return sb.String()
}

// fallbackBody is the deterministic narrative used when the model is
// unavailable. The structured numbers still reach the reader.
func fallbackBody(kpis store.KPIs, asOf *time.Time) string {
	var sb strings.Builder
	sb.WriteString("## Relatório SRAG (modo simplificado)\n\n")
	sb.WriteString("_A narrativa automática não está disponível; os indicadores abaixo permanecem válidos._\n\n")
	if asOf != nil {
		sb.WriteString(fmt.Sprintf("Data de corte (as_of): %s\n\n", asOf.Format("2006-01-02")))
	}
	sb.WriteString("### Métricas (KPIs)\n")
	sb.WriteString(fmt.Sprintf("- Casos últimos 7 dias: %.0f (7 anteriores: %.0f)\n", kpis.Cases7d, kpis.CasesPrev7d))
	sb.WriteString(fmt.Sprintf("- Taxa de aumento (7d): %s\n", fmtPct(kpis.Growth7dPct)))
	sb.WriteString(fmt.Sprintf("- Casos últimos 30 dias: %.0f\n", kpis.Cases30d))
	sb.WriteString(fmt.Sprintf("- CFR 30d (casos encerrados): %s\n", fmtPct(kpis.CFRClosed30dPct)))
	sb.WriteString(fmt.Sprintf("- %% casos com UTI (30d): %s\n", fmtPct(kpis.ICURate30dPct)))
	sb.WriteString(fmt.Sprintf("- %% casos vacinados (30d): %s\n", fmtPct(kpis.VaccinatedRate30dPct)))
	return sb.String()
}

// fmtPct renders a percentage with one decimal, or "indisponível" when
// the denominator was zero.
func fmtPct(v *float64) string {
	if v == nil {
		return "indisponível"
	}
	return fmt.Sprintf("%.1f%%", *v)
}
