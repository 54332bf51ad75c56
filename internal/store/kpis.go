package store

import (
	"context"
	"time"
)

// KPIs aggregates the 30 day window plus the 7 day growth comparison.
// Ratio fields are nil when the denominator is zero; callers must
// render those as "indisponível", never as 0% or 100%.
type KPIs struct {
	Cases7d              float64  `json:"cases_7d"`
	CasesPrev7d          float64  `json:"cases_prev_7d"`
	Growth7dPct          *float64 `json:"growth_7d_pct"`
	Cases30d             float64  `json:"cases_30d"`
	ICUCases30d          float64  `json:"icu_cases_30d"`
	VaccinatedCases30d   float64  `json:"vaccinated_cases_30d"`
	ClosedCases30d       float64  `json:"closed_cases_30d"`
	Deaths30d            float64  `json:"deaths_30d"`
	CFRClosed30dPct      *float64 `json:"cfr_closed_30d_pct"`
	ICURate30dPct        *float64 `json:"icu_rate_30d_pct"`
	VaccinatedRate30dPct *float64 `json:"vaccinated_rate_30d_pct"`
}

// SeriesPoint is one point of a daily or monthly case series.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Cases float64   `json:"cases"`
}

// AsOf holds the anchor dates of the dataset.
type AsOf struct {
	Day   *time.Time `json:"as_of_day"`
	Month *time.Time `json:"as_of_month"`
}

// GetAsOf returns the last available day and month in the gold tables.
func (e *Engine) GetAsOf(ctx context.Context) (AsOf, error) {
	var out AsOf
	rows, err := e.RunNamed(ctx, "as_of_dates")
	if err != nil {
		return out, err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&out.Day, &out.Month); err != nil {
			return out, err
		}
	}
	return out, rows.Err()
}

// GetKPIs returns growth plus the 30 day KPI block for Brazil or one
// UF. National numbers re-aggregate numerators and denominators; UF
// percentages are never averaged.
func (e *Engine) GetKPIs(ctx context.Context, scope string, uf string) (KPIs, error) {
	var k KPIs

	growthName, kpiName := "growth_7d_br", "kpis_30d_br"
	var params []interface{}
	if scope == "uf" {
		growthName, kpiName = "growth_7d_uf", "kpis_30d_uf"
		params = []interface{}{uf}
	}

	rows, err := e.RunNamed(ctx, growthName, params...)
	if err != nil {
		return k, err
	}
	if rows.Next() {
		if err := rows.Scan(&k.Cases7d, &k.CasesPrev7d, &k.Growth7dPct); err != nil {
			rows.Close()
			return k, err
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return k, err
	}
	rows.Close()

	rows, err = e.RunNamed(ctx, kpiName, params...)
	if err != nil {
		return k, err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(
			&k.Cases30d, &k.ICUCases30d, &k.VaccinatedCases30d,
			&k.ClosedCases30d, &k.Deaths30d,
			&k.CFRClosed30dPct, &k.ICURate30dPct, &k.VaccinatedRate30dPct,
		); err != nil {
			return k, err
		}
	}
	return k, rows.Err()
}

// GetDailySeries returns the last 30 days of cases.
func (e *Engine) GetDailySeries(ctx context.Context, scope string, uf string) ([]SeriesPoint, error) {
	name := "daily_30d_br"
	var params []interface{}
	if scope == "uf" {
		name = "daily_30d_uf"
		params = []interface{}{uf}
	}
	return e.scanSeries(ctx, name, params...)
}

// GetMonthlySeries returns the last 12 months of cases.
func (e *Engine) GetMonthlySeries(ctx context.Context, scope string, uf string) ([]SeriesPoint, error) {
	name := "monthly_12m_br"
	var params []interface{}
	if scope == "uf" {
		name = "monthly_12m_uf"
		params = []interface{}{uf}
	}
	return e.scanSeries(ctx, name, params...)
}

func (e *Engine) scanSeries(ctx context.Context, name string, params ...interface{}) ([]SeriesPoint, error) {
	rows, err := e.RunNamed(ctx, name, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []SeriesPoint
	for rows.Next() {
		var p SeriesPoint
		if err := rows.Scan(&p.Date, &p.Cases); err != nil {
			return nil, err
		}
		series = append(series, p)
	}
	return series, rows.Err()
}

// UFRanking is one row of the 30 day case ranking.
type UFRanking struct {
	UF    string  `json:"uf"`
	Cases float64 `json:"cases_30d"`
}

// GetTopUFs returns UFs ranked by cases in the last 30 days.
func (e *Engine) GetTopUFs(ctx context.Context, limit int) ([]UFRanking, error) {
	rows, err := e.RunNamed(ctx, "top_uf_cases_30d")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UFRanking
	for rows.Next() {
		var r UFRanking
		if err := rows.Scan(&r.UF, &r.Cases); err != nil {
			return nil, err
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, rows.Err()
}
