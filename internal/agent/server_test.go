package agent

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Ziolli/Case-Indicium/internal/errors"
	"github.com/Ziolli/Case-Indicium/internal/intent"
)

func newTestServerRouter(t *testing.T) (*gin.Engine, *stubReports) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	classifier := fixedIntent(intent.KindGreet)
	a, _, _, _, reports, _, _ := newTestAgent(classifier)
	srv := NewServer(a, reports, nil)
	return srv.SetupRoutes(), reports
}

func TestAskEndpoint(t *testing.T) {
	router, _ := newTestServerRouter(t)

	body := `{"question": "olá"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp AskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Answer)
	assert.Equal(t, intent.KindGreet, resp.Intent.Kind)
}

func TestAskEndpointRequiresQuestion(t *testing.T) {
	router, _ := newTestServerRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
}

func TestReportEndpoint(t *testing.T) {
	router, reports := newTestServerRouter(t)
	reports.md = "# Relatório"

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Relatório")
	assert.Contains(t, w.Body.String(), `"scope":"br"`)
}

func TestReportEndpointRegional(t *testing.T) {
	router, reports := newTestServerRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report?scope=uf&uf=SP", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SP", reports.uf)
}

func TestReportEndpointRejectsBadScope(t *testing.T) {
	router, _ := newTestServerRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report?scope=city", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportEndpointRejectsBadUF(t *testing.T) {
	router, _ := newTestServerRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report?scope=uf&uf=XX", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REGION")
}

func TestReportEndpointDatabaseFailure(t *testing.T) {
	router, reports := newTestServerRouter(t)
	reports.md = ""
	reports.err = apperrors.NewDatabaseQueryError(assertErr("down"), "report")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "DATABASE_QUERY_FAILED")
}

func TestQueriesEndpointListsCatalog(t *testing.T) {
	router, _ := newTestServerRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queries", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "as_of_dates")
	assert.Contains(t, w.Body.String(), "kpis_30d_br")
}

func TestGlossaryEndpoint(t *testing.T) {
	router, _ := newTestServerRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/glossary/cfr", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "casos encerrados")
}

func TestHealthEndpointWithoutChecker(t *testing.T) {
	router, _ := newTestServerRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "srag-agent")
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestServerRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "metrics")
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
