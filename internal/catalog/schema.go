package catalog

import (
	"fmt"
	"strings"
)

// Column is one column of a published table.
type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Table is one published table with its purpose and ordered columns.
type Table struct {
	Name    string   `json:"name"`
	Purpose string   `json:"purpose"`
	Columns []Column `json:"columns"`
}

// Snapshot is the static description of everything a generated query
// may touch. Built once at startup and never mutated afterwards.
type Snapshot struct {
	Tables    []Table  `json:"tables"`
	Metrics   []Metric `json:"metrics"`
	Allowlist []string `json:"allowlist"`
}

// AllowedTable reports whether name is a published table.
func (s *Snapshot) AllowedTable(name string) bool {
	for _, t := range s.Allowlist {
		if t == name {
			return true
		}
	}
	return false
}

// BuildSnapshot assembles the static snapshot from the catalog. Pure
// and deterministic.
func BuildSnapshot() *Snapshot {
	tables := []Table{
		{
			Name:    "gold_fct_daily_uf",
			Purpose: "Casos diários de SRAG por UF com agregados de desfecho em janela móvel de 30 dias.",
			Columns: []Column{
				{Name: "day", Type: "DATE", Description: "Dia de notificação."},
				{Name: "uf", Type: "VARCHAR(2)", Description: "UF de notificação (sigla de 2 letras)."},
				{Name: "cases", Type: "BIGINT", Description: "Casos notificados no dia."},
				{Name: "icu_cases", Type: "BIGINT", Description: "Casos do dia com passagem por UTI."},
				{Name: "vaccinated_cases", Type: "BIGINT", Description: "Casos do dia com vacinação registrada."},
				{Name: "closed_cases_30d", Type: "BIGINT", Description: "Casos encerrados na janela móvel de 30 dias. Janela pré-agregada, ler isolada, nunca somar entre dias."},
				{Name: "deaths_30d", Type: "BIGINT", Description: "Óbitos na janela móvel de 30 dias. Janela pré-agregada, ler isolada, nunca somar entre dias."},
			},
		},
		{
			Name:    "gold_fct_monthly_uf",
			Purpose: "Casos mensais de SRAG por UF.",
			Columns: []Column{
				{Name: "month", Type: "DATE", Description: "Primeiro dia do mês."},
				{Name: "uf", Type: "VARCHAR(2)", Description: "UF de notificação."},
				{Name: "cases", Type: "BIGINT", Description: "Casos notificados no mês."},
			},
		},
	}

	m := make([]Metric, 0, len(metrics))
	for _, id := range MetricIDs() {
		m = append(m, metrics[id])
	}

	allowlist := make([]string, 0, len(tables))
	for _, t := range tables {
		allowlist = append(allowlist, t.Name)
	}

	return &Snapshot{Tables: tables, Metrics: m, Allowlist: allowlist}
}

// RenderForPrompt flattens the snapshot into a compact text block for
// grounding a generation request. Rendering stops after maxColumns
// columns in total; truncation is flagged in the output, never silent.
func RenderForPrompt(s *Snapshot, maxColumns int) string {
	var sb strings.Builder

	rendered := 0
	truncated := false

	sb.WriteString("Tabelas permitidas:\n")
	for _, t := range s.Tables {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", t.Name, t.Purpose))
		for _, c := range t.Columns {
			if maxColumns > 0 && rendered >= maxColumns {
				truncated = true
				break
			}
			sb.WriteString(fmt.Sprintf("  - %s %s: %s\n", c.Name, c.Type, c.Description))
			rendered++
		}
		if truncated {
			break
		}
	}
	if truncated {
		sb.WriteString("  (truncated)\n")
	}

	sb.WriteString("\nMétricas do catálogo:\n")
	for _, m := range s.Metrics {
		sb.WriteString(fmt.Sprintf("- %s (%s, janela %s): %s\n", m.ID, m.Unit, m.Window, m.Description))
	}

	return sb.String()
}
