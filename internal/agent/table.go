package agent

import (
	"fmt"
	"strings"
	"time"
)

const maxRenderedRows = 50

// renderTable turns a materialized result set into a markdown table.
// Long results are truncated with a note; cell values are formatted
// for readability (dates without the zero time, floats trimmed).
func renderTable(cols []string, rows [][]interface{}) string {
	var sb strings.Builder

	sb.WriteString("| ")
	sb.WriteString(strings.Join(cols, " | "))
	sb.WriteString(" |\n|")
	for range cols {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	shown := rows
	truncated := false
	if len(shown) > maxRenderedRows {
		shown = shown[:maxRenderedRows]
		truncated = true
	}

	for _, row := range shown {
		sb.WriteString("| ")
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteString(" |\n")
	}

	if truncated {
		sb.WriteString(fmt.Sprintf("\n*(mostrando %d de %d linhas)*\n", maxRenderedRows, len(rows)))
	}
	return sb.String()
}

func formatCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%.0f", t)
		}
		return fmt.Sprintf("%.2f", t)
	case float32:
		return formatCell(float64(t))
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
