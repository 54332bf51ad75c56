package store

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockEngine(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEngineFromDB(db), mock
}

func TestExecuteMaterializesRows(t *testing.T) {
	e, mock := newMockEngine(t)

	mock.ExpectQuery("SELECT uf, cases FROM gold_fct_daily_uf").
		WillReturnRows(sqlmock.NewRows([]string{"uf", "cases"}).
			AddRow("SP", 120).
			AddRow("RJ", 80))

	cols, rows, err := e.Execute(context.Background(), "SELECT uf, cases FROM gold_fct_daily_uf LIMIT 200")
	require.NoError(t, err)
	assert.Equal(t, []string{"uf", "cases"}, cols)
	require.Len(t, rows, 2)
	assert.Equal(t, "SP", rows[0][0])
}

func TestExecuteConvertsBytesToString(t *testing.T) {
	e, mock := newMockEngine(t)

	mock.ExpectQuery("SELECT uf").
		WillReturnRows(sqlmock.NewRows([]string{"uf"}).AddRow([]byte("MG")))

	_, rows, err := e.Execute(context.Background(), "SELECT uf FROM gold_fct_daily_uf LIMIT 1")
	require.NoError(t, err)
	assert.Equal(t, "MG", rows[0][0])
}

func TestRunNamedUnknownQuery(t *testing.T) {
	e, _ := newMockEngine(t)

	_, err := e.RunNamed(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN_NAMED_QUERY")
}

func TestRunNamedParamMismatch(t *testing.T) {
	e, _ := newMockEngine(t)

	_, err := e.RunNamed(context.Background(), "growth_7d_uf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_INPUT")
}

func TestGetKPIsNational(t *testing.T) {
	e, mock := newMockEngine(t)

	mock.ExpectQuery("growth_7d_pct").
		WillReturnRows(sqlmock.NewRows([]string{"cases_7d", "cases_prev_7d", "growth_7d_pct"}).
			AddRow(140.0, 100.0, 40.0))
	mock.ExpectQuery("cfr_closed_30d_pct").
		WillReturnRows(sqlmock.NewRows([]string{
			"cases_30d", "icu_cases_30d", "vaccinated_cases_30d",
			"closed_cases_30d", "deaths_30d",
			"cfr_closed_30d_pct", "icu_rate_30d_pct", "vaccinated_rate_30d_pct",
		}).AddRow(500.0, 50.0, 200.0, 300.0, 9.0, 3.0, 10.0, 40.0))

	k, err := e.GetKPIs(context.Background(), "br", "")
	require.NoError(t, err)
	assert.Equal(t, 140.0, k.Cases7d)
	require.NotNil(t, k.Growth7dPct)
	assert.InDelta(t, 40.0, *k.Growth7dPct, 1e-9)
	require.NotNil(t, k.CFRClosed30dPct)
	assert.InDelta(t, 3.0, *k.CFRClosed30dPct, 1e-9)
}

func TestGetKPIsZeroDenominatorStaysNil(t *testing.T) {
	e, mock := newMockEngine(t)

	mock.ExpectQuery("growth_7d_pct").
		WillReturnRows(sqlmock.NewRows([]string{"cases_7d", "cases_prev_7d", "growth_7d_pct"}).
			AddRow(10.0, 0.0, nil))
	mock.ExpectQuery("cfr_closed_30d_pct").
		WillReturnRows(sqlmock.NewRows([]string{
			"cases_30d", "icu_cases_30d", "vaccinated_cases_30d",
			"closed_cases_30d", "deaths_30d",
			"cfr_closed_30d_pct", "icu_rate_30d_pct", "vaccinated_rate_30d_pct",
		}).AddRow(0.0, 0.0, 0.0, 0.0, 0.0, nil, nil, nil))

	k, err := e.GetKPIs(context.Background(), "uf", "AC")
	require.NoError(t, err)
	assert.Nil(t, k.Growth7dPct)
	assert.Nil(t, k.CFRClosed30dPct)
	assert.Nil(t, k.ICURate30dPct)
}

func TestGetDailySeries(t *testing.T) {
	e, mock := newMockEngine(t)

	day := time.Date(2025, 8, 30, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("GROUP BY t.day").
		WillReturnRows(sqlmock.NewRows([]string{"day", "cases"}).
			AddRow(day, 42.0).
			AddRow(day.AddDate(0, 0, 1), 45.0))

	series, err := e.GetDailySeries(context.Background(), "br", "")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 42.0, series[0].Cases)
	assert.Equal(t, day, series[0].Date)
}

func TestGetTopUFsHonorsLimit(t *testing.T) {
	e, mock := newMockEngine(t)

	mock.ExpectQuery("cases_30d DESC").
		WillReturnRows(sqlmock.NewRows([]string{"uf", "cases_30d"}).
			AddRow("SP", 900.0).
			AddRow("RJ", 500.0).
			AddRow("MG", 400.0))

	out, err := e.GetTopUFs(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "SP", out[0].UF)
}

func TestNamedQueriesStableOrder(t *testing.T) {
	qs := NamedQueries()
	require.NotEmpty(t, qs)
	assert.Equal(t, "as_of_dates", qs[0].Name)
	for _, q := range qs {
		assert.NotEmpty(t, q.SQL)
		assert.NotEmpty(t, q.Description)
	}
}
