package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Ziolli/Case-Indicium/internal/llm"
	"github.com/Ziolli/Case-Indicium/internal/observability"
)

// ModelClassifier resolves a turn using the text-generation service.
// It is the only component that receives the previous turn, so it alone
// can resolve conversational follow-ups ("e em SP?").
type ModelClassifier interface {
	Classify(ctx context.Context, text string, previous *Intent) Intent
}

// LLMClassifier implements ModelClassifier over a llm.Generator. Any
// failure (provider error, malformed payload, out-of-enum value)
// degrades to the unknown sentinel; nothing raises past this boundary.
type LLMClassifier struct {
	gen    llm.Generator
	logger *observability.Logger
}

// NewLLMClassifier builds the model-assisted classifier.
func NewLLMClassifier(gen llm.Generator) *LLMClassifier {
	return &LLMClassifier{
		gen:    gen,
		logger: observability.NewLogger("intent-model"),
	}
}

const classifierSystemPrompt = `Você classifica mensagens de usuários de um assistente de vigilância de SRAG.
Responda SOMENTE com um objeto JSON, sem texto adicional, no formato:
{"kind": "...", "metric": "...", "scope": "...", "region": "...", "days_back": 14, "confidence": 0.0}

Campos:
- kind: um de [greet, news, report, explain, data_question, ad_hoc_query, trend, compare, chitchat, unknown]
- metric: um de [growth_7d, cfr_30d_closed, icu_rate_30d, vaccinated_rate_30d] ou "" quando não se aplica
- scope: "br" (nacional) ou "uf" (estadual)
- region: sigla da UF (ex.: "SP") quando scope="uf", senão ""
- days_back: um de [1, 2, 7, 14, 30, 90]
- confidence: número entre 0 e 1

Se a mensagem for uma continuação ("e em SP?", "e no RJ?"), herde kind/metric do turno anterior e troque apenas o alvo.`

// payload is the strict wire schema the model must return.
type payload struct {
	Kind       string   `json:"kind"`
	Metric     string   `json:"metric"`
	Scope      string   `json:"scope"`
	Region     string   `json:"region"`
	DaysBack   *int     `json:"days_back"`
	Confidence *float64 `json:"confidence"`
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// Classify builds the request, invokes the service, and strictly parses
// the structured payload against the Intent schema.
func (c *LLMClassifier) Classify(ctx context.Context, text string, previous *Intent) Intent {
	req := llm.Request{
		System:      classifierSystemPrompt,
		User:        buildClassifierPrompt(text, previous),
		Temperature: 0.0,
		MaxTokens:   200,
	}

	raw, err := c.gen.Generate(ctx, req)
	if err != nil {
		c.logger.Warn(ctx, "Model classification call failed", map[string]interface{}{
			"error": err.Error(),
		})
		return Unknown()
	}

	it, err := parsePayload(raw)
	if err != nil {
		c.logger.Warn(ctx, "Model returned an out-of-schema payload", map[string]interface{}{
			"error": err.Error(),
		})
		return Unknown()
	}
	return it
}

func buildClassifierPrompt(text string, previous *Intent) string {
	var b strings.Builder
	b.WriteString("Mensagem do usuário: ")
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\nTurno anterior: ")
	if previous == nil {
		b.WriteString("nenhum")
	} else {
		prev, _ := json.Marshal(previous)
		b.Write(prev)
	}
	return b.String()
}

// parsePayload validates every field against the closed sets. A single
// violation rejects the whole payload.
func parsePayload(raw string) (Intent, error) {
	match := jsonObjectRe.FindString(raw)
	if match == "" {
		return Intent{}, fmt.Errorf("no JSON object in model output")
	}

	var p payload
	if err := json.Unmarshal([]byte(match), &p); err != nil {
		return Intent{}, fmt.Errorf("malformed payload: %w", err)
	}

	kind := Kind(p.Kind)
	if !ValidKind(kind) {
		return Intent{}, fmt.Errorf("kind %q outside the closed set", p.Kind)
	}
	if p.Confidence == nil || *p.Confidence < 0 || *p.Confidence > 1 {
		return Intent{}, fmt.Errorf("confidence missing or outside [0,1]")
	}
	if p.Metric != "" && !validMetricID(p.Metric) {
		return Intent{}, fmt.Errorf("metric %q not in catalog", p.Metric)
	}
	if p.Region != "" && !ValidRegion(strings.ToUpper(p.Region)) {
		return Intent{}, fmt.Errorf("region %q not a known UF", p.Region)
	}
	scope := Scope(p.Scope)
	if scope != "" && scope != ScopeNational && scope != ScopeRegional {
		return Intent{}, fmt.Errorf("scope %q outside {br, uf}", p.Scope)
	}

	daysBack := DefaultDaysBack
	if p.DaysBack != nil {
		if *p.DaysBack <= 0 {
			return Intent{}, fmt.Errorf("days_back must be positive")
		}
		daysBack = canonicalWindow(*p.DaysBack)
	}

	return Intent{
		Kind:       kind,
		Metric:     p.Metric,
		Scope:      scope,
		Region:     strings.ToUpper(p.Region),
		Confidence: *p.Confidence,
		DaysBack:   daysBack,
	}.Canonical(), nil
}

func validMetricID(id string) bool {
	switch id {
	case "growth_7d", "cfr_30d_closed", "icu_rate_30d", "vaccinated_rate_30d":
		return true
	}
	return false
}

// canonicalWindow snaps an arbitrary positive day count to the nearest
// canonical window, rounding up.
func canonicalWindow(days int) int {
	for _, w := range []int{1, 2, 7, 14, 30, 90} {
		if days <= w {
			return w
		}
	}
	return 90
}
