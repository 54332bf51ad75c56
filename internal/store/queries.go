package store

import (
	"context"
	"database/sql"
	"time"

	apperrors "github.com/Ziolli/Case-Indicium/internal/errors"
	"github.com/Ziolli/Case-Indicium/internal/observability"
)

// NamedQuery is one whitelisted statement, runnable by symbolic name.
// All rolling windows anchor on the last available date (as_of), never
// on the wall clock, so stale data stays internally consistent.
type NamedQuery struct {
	Name        string
	Description string
	SQL         string
	ParamNames  []string
}

const sqlAsOfDates = `
WITH last_day AS (
  SELECT MAX(day) AS max_day FROM gold_fct_daily_uf
),
last_month AS (
  SELECT DATE_TRUNC('month', MAX(month)) AS max_month FROM gold_fct_monthly_uf
)
SELECT
  (SELECT max_day   FROM last_day)   AS as_of_day,
  (SELECT max_month FROM last_month) AS as_of_month`

const sqlGrowth7dBR = `
WITH as_of AS (
  SELECT COALESCE(MAX(day), CURRENT_DATE) AS d
  FROM gold_fct_daily_uf
),
d AS (
  SELECT day, SUM(cases) AS cases
  FROM gold_fct_daily_uf
  GROUP BY day
),
w AS (
  SELECT
    COALESCE(SUM(CASE WHEN d.day > a.d - INTERVAL '7 days'
                      AND d.day <= a.d THEN d.cases END), 0) AS cases_7d,
    COALESCE(SUM(CASE WHEN d.day > a.d - INTERVAL '14 days'
                      AND d.day <= a.d - INTERVAL '7 days' THEN d.cases END), 0) AS cases_prev_7d
  FROM d
  CROSS JOIN as_of a
)
SELECT
  cases_7d,
  cases_prev_7d,
  CASE WHEN cases_prev_7d > 0
       THEN 100.0 * (cases_7d - cases_prev_7d) / cases_prev_7d
       ELSE NULL
  END AS growth_7d_pct
FROM w`

const sqlGrowth7dUF = `
WITH as_of AS (
  SELECT COALESCE(MAX(day), CURRENT_DATE) AS d
  FROM gold_fct_daily_uf
),
d AS (
  SELECT day, SUM(cases) AS cases
  FROM gold_fct_daily_uf
  WHERE uf = $1
  GROUP BY day
),
w AS (
  SELECT
    COALESCE(SUM(CASE WHEN d.day > a.d - INTERVAL '7 days'
                      AND d.day <= a.d THEN d.cases END), 0) AS cases_7d,
    COALESCE(SUM(CASE WHEN d.day > a.d - INTERVAL '14 days'
                      AND d.day <= a.d - INTERVAL '7 days' THEN d.cases END), 0) AS cases_prev_7d
  FROM d
  CROSS JOIN as_of a
)
SELECT
  cases_7d,
  cases_prev_7d,
  CASE WHEN cases_prev_7d > 0
       THEN 100.0 * (cases_7d - cases_prev_7d) / cases_prev_7d
       ELSE NULL
  END AS growth_7d_pct
FROM w`

const sqlKPIs30dBR = `
WITH as_of AS (
  SELECT COALESCE(MAX(day), CURRENT_DATE) AS d
  FROM gold_fct_daily_uf
),
agg AS (
  SELECT
    COALESCE(SUM(closed_cases_30d), 0)  AS closed_cases_30d,
    COALESCE(SUM(deaths_30d), 0)        AS deaths_30d,
    COALESCE(SUM(cases), 0)             AS cases_30d,
    COALESCE(SUM(icu_cases), 0)         AS icu_cases_30d,
    COALESCE(SUM(vaccinated_cases), 0)  AS vaccinated_cases_30d
  FROM gold_fct_daily_uf t
  CROSS JOIN as_of a
  WHERE t.day > a.d - INTERVAL '30 days' AND t.day <= a.d
)
SELECT
  agg.cases_30d,
  agg.icu_cases_30d,
  agg.vaccinated_cases_30d,
  agg.closed_cases_30d,
  agg.deaths_30d,
  CASE WHEN agg.closed_cases_30d > 0
       THEN 100.0 * agg.deaths_30d / agg.closed_cases_30d
       ELSE NULL END AS cfr_closed_30d_pct,
  CASE WHEN agg.cases_30d > 0
       THEN 100.0 * agg.icu_cases_30d / agg.cases_30d
       ELSE NULL END AS icu_rate_30d_pct,
  CASE WHEN agg.cases_30d > 0
       THEN 100.0 * agg.vaccinated_cases_30d / agg.cases_30d
       ELSE NULL END AS vaccinated_rate_30d_pct
FROM agg`

const sqlKPIs30dUF = `
WITH as_of AS (
  SELECT COALESCE(MAX(day), CURRENT_DATE) AS d
  FROM gold_fct_daily_uf
),
agg AS (
  SELECT
    COALESCE(SUM(closed_cases_30d), 0)  AS closed_cases_30d,
    COALESCE(SUM(deaths_30d), 0)        AS deaths_30d,
    COALESCE(SUM(cases), 0)             AS cases_30d,
    COALESCE(SUM(icu_cases), 0)         AS icu_cases_30d,
    COALESCE(SUM(vaccinated_cases), 0)  AS vaccinated_cases_30d
  FROM gold_fct_daily_uf t
  CROSS JOIN as_of a
  WHERE t.uf = $1
    AND t.day > a.d - INTERVAL '30 days' AND t.day <= a.d
)
SELECT
  agg.cases_30d,
  agg.icu_cases_30d,
  agg.vaccinated_cases_30d,
  agg.closed_cases_30d,
  agg.deaths_30d,
  CASE WHEN agg.closed_cases_30d > 0
       THEN 100.0 * agg.deaths_30d / agg.closed_cases_30d
       ELSE NULL END AS cfr_closed_30d_pct,
  CASE WHEN agg.cases_30d > 0
       THEN 100.0 * agg.icu_cases_30d / agg.cases_30d
       ELSE NULL END AS icu_rate_30d_pct,
  CASE WHEN agg.cases_30d > 0
       THEN 100.0 * agg.vaccinated_cases_30d / agg.cases_30d
       ELSE NULL END AS vaccinated_rate_30d_pct
FROM agg`

const sqlDaily30dBR = `
WITH as_of AS (
  SELECT COALESCE(MAX(day), CURRENT_DATE) AS d
  FROM gold_fct_daily_uf
)
SELECT t.day, SUM(t.cases) AS cases
FROM gold_fct_daily_uf t
CROSS JOIN as_of a
WHERE t.day > a.d - INTERVAL '30 days' AND t.day <= a.d
GROUP BY t.day
ORDER BY t.day`

const sqlDaily30dUF = `
WITH as_of AS (
  SELECT COALESCE(MAX(day), CURRENT_DATE) AS d
  FROM gold_fct_daily_uf
)
SELECT t.day, SUM(t.cases) AS cases
FROM gold_fct_daily_uf t
CROSS JOIN as_of a
WHERE t.uf = $1
  AND t.day > a.d - INTERVAL '30 days' AND t.day <= a.d
GROUP BY t.day
ORDER BY t.day`

const sqlMonthly12mBR = `
WITH as_of AS (
  SELECT COALESCE(DATE_TRUNC('month', MAX(month)), DATE_TRUNC('month', CURRENT_DATE)) AS m
  FROM gold_fct_monthly_uf
)
SELECT t.month, SUM(t.cases) AS cases
FROM gold_fct_monthly_uf t
CROSS JOIN as_of a
WHERE t.month >= a.m - INTERVAL '11 months'
  AND t.month <= a.m
GROUP BY t.month
ORDER BY t.month`

const sqlMonthly12mUF = `
WITH as_of AS (
  SELECT COALESCE(DATE_TRUNC('month', MAX(month)), DATE_TRUNC('month', CURRENT_DATE)) AS m
  FROM gold_fct_monthly_uf
)
SELECT t.month, SUM(t.cases) AS cases
FROM gold_fct_monthly_uf t
CROSS JOIN as_of a
WHERE t.uf = $1
  AND t.month >= a.m - INTERVAL '11 months'
  AND t.month <= a.m
GROUP BY t.month
ORDER BY t.month`

const sqlTopUFCases30d = `
WITH as_of AS (
  SELECT COALESCE(MAX(day), CURRENT_DATE) AS d FROM gold_fct_daily_uf
)
SELECT t.uf, SUM(t.cases) AS cases_30d
FROM gold_fct_daily_uf t
CROSS JOIN as_of a
WHERE t.day > a.d - INTERVAL '30 days' AND t.day <= a.d
GROUP BY t.uf
ORDER BY cases_30d DESC`

const sqlCFRByUF90d = `
WITH as_of AS (
  SELECT COALESCE(MAX(day), CURRENT_DATE) AS d FROM gold_fct_daily_uf
),
agg AS (
  SELECT t.uf,
         COALESCE(SUM(t.closed_cases_30d), 0) AS closed_cases_30d,
         COALESCE(SUM(t.deaths_30d), 0)       AS deaths_30d
  FROM gold_fct_daily_uf t
  CROSS JOIN as_of a
  WHERE t.day > a.d - INTERVAL '90 days' AND t.day <= a.d
  GROUP BY t.uf
)
SELECT uf,
       CASE WHEN closed_cases_30d > 0
            THEN 100.0 * deaths_30d / closed_cases_30d
            ELSE NULL END AS cfr_closed_30d_pct
FROM agg
ORDER BY cfr_closed_30d_pct DESC NULLS LAST`

var namedQueries = map[string]NamedQuery{
	"as_of_dates": {
		Name:        "as_of_dates",
		Description: "Último dia e mês disponíveis nas tabelas gold.",
		SQL:         sqlAsOfDates,
	},
	"growth_7d_br": {
		Name:        "growth_7d_br",
		Description: "Crescimento de casos 7d vs 7d anteriores, Brasil.",
		SQL:         sqlGrowth7dBR,
	},
	"growth_7d_uf": {
		Name:        "growth_7d_uf",
		Description: "Crescimento de casos 7d vs 7d anteriores, por UF.",
		SQL:         sqlGrowth7dUF,
		ParamNames:  []string{"uf"},
	},
	"kpis_30d_br": {
		Name:        "kpis_30d_br",
		Description: "KPIs de 30 dias (CFR, UTI, vacinados), Brasil.",
		SQL:         sqlKPIs30dBR,
	},
	"kpis_30d_uf": {
		Name:        "kpis_30d_uf",
		Description: "KPIs de 30 dias (CFR, UTI, vacinados), por UF.",
		SQL:         sqlKPIs30dUF,
		ParamNames:  []string{"uf"},
	},
	"daily_30d_br": {
		Name:        "daily_30d_br",
		Description: "Série diária de casos dos últimos 30 dias, Brasil.",
		SQL:         sqlDaily30dBR,
	},
	"daily_30d_uf": {
		Name:        "daily_30d_uf",
		Description: "Série diária de casos dos últimos 30 dias, por UF.",
		SQL:         sqlDaily30dUF,
		ParamNames:  []string{"uf"},
	},
	"monthly_12m_br": {
		Name:        "monthly_12m_br",
		Description: "Série mensal de casos dos últimos 12 meses, Brasil.",
		SQL:         sqlMonthly12mBR,
	},
	"monthly_12m_uf": {
		Name:        "monthly_12m_uf",
		Description: "Série mensal de casos dos últimos 12 meses, por UF.",
		SQL:         sqlMonthly12mUF,
		ParamNames:  []string{"uf"},
	},
	"top_uf_cases_30d": {
		Name:        "top_uf_cases_30d",
		Description: "Ranking de UFs por casos nos últimos 30 dias.",
		SQL:         sqlTopUFCases30d,
	},
	"cfr_uf_90d": {
		Name:        "cfr_uf_90d",
		Description: "CFR por UF na janela de 90 dias.",
		SQL:         sqlCFRByUF90d,
	},
}

// NamedQueries lists the whitelisted queries.
func NamedQueries() []NamedQuery {
	out := make([]NamedQuery, 0, len(namedQueries))
	for _, name := range []string{
		"as_of_dates", "growth_7d_br", "growth_7d_uf", "kpis_30d_br",
		"kpis_30d_uf", "daily_30d_br", "daily_30d_uf", "monthly_12m_br",
		"monthly_12m_uf", "top_uf_cases_30d", "cfr_uf_90d",
	} {
		out = append(out, namedQueries[name])
	}
	return out
}

// RunNamed executes a whitelisted query by symbolic name.
func (e *Engine) RunNamed(ctx context.Context, name string, params ...interface{}) (*sql.Rows, error) {
	q, ok := namedQueries[name]
	if !ok {
		return nil, apperrors.NewUnknownQueryError(name)
	}
	if len(params) != len(q.ParamNames) {
		return nil, apperrors.NewInvalidInputError("params",
			"wrong number of parameters for query "+name)
	}

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, q.SQL, params...)
	observability.RecordDBMetrics(name, time.Since(start), err)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryError(err, name)
	}
	return rows, nil
}
