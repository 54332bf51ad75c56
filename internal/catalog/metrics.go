// Package catalog holds the static registry of published metrics and
// tables. Everything here is process-wide, read-only after init, and
// safe to share across goroutines.
package catalog

// Unit classifies how a metric value reads.
type Unit string

const (
	UnitPercent Unit = "pct"
	UnitCount   Unit = "count"
)

// Metric describes one supported metric: what it is, which scopes it
// applies to, and the value range considered plausible. Bounds feed a
// sanity warning only, never correction of the value.
type Metric struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	QueryID     string   `json:"query_id"`
	Scopes      []string `json:"scopes"`
	Window      string   `json:"window"`
	Unit        Unit     `json:"unit"`
	Notes       string   `json:"notes,omitempty"`
	MinVal      *float64 `json:"min_val,omitempty"`
	MaxVal      *float64 `json:"max_val,omitempty"`
}

func f(v float64) *float64 { return &v }

var metrics = map[string]Metric{
	"growth_7d": {
		ID:    "growth_7d",
		Label: "Taxa de aumento (7 dias)",
		Description: "Variação percentual dos últimos 7 dias em relação aos 7 dias anteriores, " +
			"ancorada no último dia disponível (as_of).",
		QueryID: "growth_7d",
		Scopes:  []string{"br", "uf"},
		Window:  "7d",
		Unit:    UnitPercent,
		Notes:   "Se o período anterior tiver 0 casos, o crescimento é 'indisponível'.",
		MinVal:  f(-100.0),
		MaxVal:  f(1000.0),
	},
	"cfr_30d_closed": {
		ID:    "cfr_30d_closed",
		Label: "CFR (30 dias, casos encerrados)",
		Description: "Óbitos divididos por casos encerrados nos últimos 30 dias, em %. " +
			"Não é taxa de mortalidade populacional.",
		QueryID: "kpis_30d",
		Scopes:  []string{"br", "uf"},
		Window:  "30d",
		Unit:    UnitPercent,
		Notes:   "Usa apenas casos encerrados em até 30 dias.",
		MinVal:  f(0.0),
		MaxVal:  f(100.0),
	},
	"icu_rate_30d": {
		ID:    "icu_rate_30d",
		Label: "% casos com UTI (30 dias)",
		Description: "Percentual de casos com passagem por UTI nos últimos 30 dias. " +
			"Não representa ocupação de leitos hospitalares.",
		QueryID: "kpis_30d",
		Scopes:  []string{"br", "uf"},
		Window:  "30d",
		Unit:    UnitPercent,
		Notes:   "Substituto operacional por ausência de denominador de leitos.",
		MinVal:  f(0.0),
		MaxVal:  f(100.0),
	},
	"vaccinated_rate_30d": {
		ID:    "vaccinated_rate_30d",
		Label: "% casos vacinados (30 dias)",
		Description: "Percentual de casos com vacinação registrada nos últimos 30 dias. " +
			"Não é cobertura vacinal da população.",
		QueryID: "kpis_30d",
		Scopes:  []string{"br", "uf"},
		Window:  "30d",
		Unit:    UnitPercent,
		Notes:   "Não confundir com cobertura populacional.",
		MinVal:  f(0.0),
		MaxVal:  f(100.0),
	},
}

// MetricByID looks up a metric definition.
func MetricByID(id string) (Metric, bool) {
	m, ok := metrics[id]
	return m, ok
}

// MetricIDs returns the catalog identifiers in stable order.
func MetricIDs() []string {
	return []string{"growth_7d", "cfr_30d_closed", "icu_rate_30d", "vaccinated_rate_30d"}
}

// WithinBounds reports whether a computed value falls inside the
// metric's plausible range. Out-of-bounds values are surfaced with a
// warning but never altered.
func WithinBounds(id string, value float64) bool {
	m, ok := metrics[id]
	if !ok {
		return true
	}
	if m.MinVal != nil && value < *m.MinVal {
		return false
	}
	if m.MaxVal != nil && value > *m.MaxVal {
		return false
	}
	return true
}
