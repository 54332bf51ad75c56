package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Ziolli/Case-Indicium/internal/errors"
	"github.com/Ziolli/Case-Indicium/internal/intent"
	"github.com/Ziolli/Case-Indicium/internal/news"
	"github.com/Ziolli/Case-Indicium/internal/sqlguard"
	"github.com/Ziolli/Case-Indicium/internal/store"
)

type stubClassifier struct {
	result       intent.Intent
	lastText     string
	lastPrevious *intent.Intent
}

func (s *stubClassifier) Classify(ctx context.Context, text string, previous *intent.Intent) intent.Intent {
	s.lastText = text
	s.lastPrevious = previous
	return s.result
}

type stubKPIs struct {
	kpis    store.KPIs
	ranking []store.UFRanking
	err     error
}

func (s *stubKPIs) GetKPIs(ctx context.Context, scope, uf string) (store.KPIs, error) {
	return s.kpis, s.err
}

func (s *stubKPIs) GetTopUFs(ctx context.Context, limit int) ([]store.UFRanking, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.ranking) {
		return s.ranking[:limit], nil
	}
	return s.ranking, nil
}

type stubSQLGen struct {
	sql string
	err error
}

func (s *stubSQLGen) GenerateSQL(ctx context.Context, question string) (string, error) {
	return s.sql, s.err
}

type stubGuard struct {
	query sqlguard.GuardedQuery
	cols  []string
	rows  [][]interface{}
	err   error
}

func (s *stubGuard) ExecuteSafe(ctx context.Context, input string) (sqlguard.GuardedQuery, []string, [][]interface{}, error) {
	return s.query, s.cols, s.rows, s.err
}

type stubReports struct {
	md  string
	err error
	uf  string
}

func (s *stubReports) Build(ctx context.Context, scope, uf string) (string, error) {
	s.uf = uf
	return s.md, s.err
}

type stubSearcher struct {
	articles []news.Article
	err      error
	daysBack int
}

func (s *stubSearcher) Search(ctx context.Context, query string, daysBack int) ([]news.Article, error) {
	s.daysBack = daysBack
	return s.articles, s.err
}

type stubSummarizer struct{ out string }

func (s *stubSummarizer) Summarize(ctx context.Context, articles []news.Article) string {
	return s.out
}

func newTestAgent(classifier Classifier) (*Agent, *stubKPIs, *stubSQLGen, *stubGuard, *stubReports, *stubSearcher, *stubSummarizer) {
	kpis := &stubKPIs{}
	gen := &stubSQLGen{}
	guard := &stubGuard{}
	reports := &stubReports{md: "# Relatório"}
	searcher := &stubSearcher{}
	summarizer := &stubSummarizer{out: "## Notícias"}
	a := New(classifier, kpis, gen, guard, reports, searcher, summarizer)
	return a, kpis, gen, guard, reports, searcher, summarizer
}

func fixedIntent(kind intent.Kind) *stubClassifier {
	return &stubClassifier{result: intent.Intent{Kind: kind, Scope: intent.ScopeNational, Confidence: 1.0, DaysBack: 14}}
}

func TestHandleGreet(t *testing.T) {
	a, _, _, _, _, _, _ := newTestAgent(fixedIntent(intent.KindGreet))

	reply, resolved := a.Handle(context.Background(), "oi", nil)

	assert.Contains(t, reply, "relatório padrão")
	assert.Equal(t, intent.KindGreet, resolved.Kind)
}

func TestHandleChitchatRedirects(t *testing.T) {
	a, _, _, _, _, _, _ := newTestAgent(fixedIntent(intent.KindChitchat))

	reply, _ := a.Handle(context.Background(), "gosta de futebol?", nil)
	assert.Contains(t, reply, "SRAG")
}

func TestHandleUnknownGivesHints(t *testing.T) {
	a, _, _, _, _, _, _ := newTestAgent(fixedIntent(intent.KindUnknown))

	reply, resolved := a.Handle(context.Background(), "xyzzy", nil)
	assert.Contains(t, reply, "relatório")
	assert.Equal(t, intent.KindUnknown, resolved.Kind)
}

func TestHandleExplainLooksUpGlossary(t *testing.T) {
	a, _, _, _, _, _, _ := newTestAgent(fixedIntent(intent.KindExplain))

	reply, _ := a.Handle(context.Background(), "o que é CFR?", nil)
	assert.Contains(t, reply, "casos encerrados")
}

func TestHandleExplainWithoutTerm(t *testing.T) {
	a, _, _, _, _, _, _ := newTestAgent(fixedIntent(intent.KindExplain))

	reply, _ := a.Handle(context.Background(), "explique", nil)
	assert.Contains(t, reply, "Qual termo")
}

func TestHandleNews(t *testing.T) {
	a, _, _, _, _, searcher, _ := newTestAgent(&stubClassifier{
		result: intent.Intent{Kind: intent.KindNews, Scope: intent.ScopeNational, Confidence: 1.0, DaysBack: 7},
	})
	searcher.articles = []news.Article{{Title: "t", URL: "http://x"}}

	reply, _ := a.Handle(context.Background(), "notícias da semana", nil)

	assert.Equal(t, "## Notícias", reply)
	assert.Equal(t, 7, searcher.daysBack)
}

func TestHandleNewsProviderFailureDegrades(t *testing.T) {
	a, _, _, _, _, searcher, _ := newTestAgent(fixedIntent(intent.KindNews))
	searcher.err = apperrors.NewNewsFetchError(errors.New("502"))

	reply, resolved := a.Handle(context.Background(), "notícias", nil)

	assert.Contains(t, reply, "Não consegui buscar notícias")
	assert.Equal(t, intent.KindNews, resolved.Kind)
}

func TestHandleReport(t *testing.T) {
	a, _, _, _, reports, _, _ := newTestAgent(fixedIntent(intent.KindReport))
	reports.md = "# Relatório SRAG"

	reply, _ := a.Handle(context.Background(), "gere o relatório", nil)
	assert.Equal(t, "# Relatório SRAG", reply)
}

func TestHandleReportRegionalPassesUF(t *testing.T) {
	a, _, _, _, reports, _, _ := newTestAgent(&stubClassifier{
		result: intent.Intent{Kind: intent.KindReport, Scope: intent.ScopeRegional, Region: "SP", Confidence: 1.0, DaysBack: 14},
	})

	a.Handle(context.Background(), "relatório de SP", nil)
	assert.Equal(t, "SP", reports.uf)
}

func TestHandleReportDatabaseFailure(t *testing.T) {
	a, _, _, _, reports, _, _ := newTestAgent(fixedIntent(intent.KindReport))
	reports.err = apperrors.NewDatabaseQueryError(errors.New("conn refused"), "report")

	reply, resolved := a.Handle(context.Background(), "gere o relatório", nil)

	assert.Contains(t, reply, "Não consegui gerar o relatório")
	assert.Equal(t, intent.KindReport, resolved.Kind)
}

func TestHandleTrend(t *testing.T) {
	growth := 12.5
	a, kpis, _, _, _, _, _ := newTestAgent(fixedIntent(intent.KindTrend))
	kpis.kpis = store.KPIs{Cases7d: 90, CasesPrev7d: 80, Growth7dPct: &growth}

	reply, _ := a.Handle(context.Background(), "qual a tendência?", nil)

	assert.Contains(t, reply, "90")
	assert.Contains(t, reply, "80")
	assert.Contains(t, reply, "12.5%")
	assert.Contains(t, reply, "no Brasil")
}

func TestHandleTrendNilGrowth(t *testing.T) {
	a, kpis, _, _, _, _, _ := newTestAgent(fixedIntent(intent.KindTrend))
	kpis.kpis = store.KPIs{Cases7d: 5, CasesPrev7d: 0}

	reply, _ := a.Handle(context.Background(), "tendência", nil)
	assert.Contains(t, reply, "indisponível")
}

func TestHandleCompareRendersRanking(t *testing.T) {
	a, kpis, _, _, _, _, _ := newTestAgent(fixedIntent(intent.KindCompare))
	kpis.ranking = []store.UFRanking{{UF: "SP", Cases: 120}, {UF: "RJ", Cases: 80}}

	reply, _ := a.Handle(context.Background(), "ranking de UFs", nil)

	assert.Contains(t, reply, "| 1 | SP | 120 |")
	assert.Contains(t, reply, "| 2 | RJ | 80 |")
}

func TestHandleCompareEmpty(t *testing.T) {
	a, _, _, _, _, _, _ := newTestAgent(fixedIntent(intent.KindCompare))

	reply, _ := a.Handle(context.Background(), "ranking", nil)
	assert.Contains(t, reply, "Sem dados")
}

func TestHandleDataQueryEndToEnd(t *testing.T) {
	classifier := &stubClassifier{
		result: intent.Intent{Kind: intent.KindAdHocQuery, Scope: intent.ScopeRegional, Region: "SP", Confidence: 0.9, DaysBack: 30},
	}
	a, _, gen, guard, _, _, _ := newTestAgent(classifier)
	gen.sql = "SELECT SUM(cases) FROM gold_fct_daily_uf WHERE uf = 'SP' LIMIT 200"
	guard.query = sqlguard.GuardedQuery{Accepted: true, SQL: gen.sql}
	guard.cols = []string{"sum"}
	guard.rows = [][]interface{}{{int64(1234)}}

	reply, resolved := a.Handle(context.Background(), "quantos casos em SP nos últimos 30 dias?", nil)

	assert.Contains(t, reply, "| sum |")
	assert.Contains(t, reply, "| 1234 |")
	assert.Equal(t, intent.KindAdHocQuery, resolved.Kind)
	assert.Equal(t, "SP", resolved.Region)
	assert.Equal(t, 30, resolved.DaysBack)
}

func TestHandleDataQueryGuardRejection(t *testing.T) {
	a, _, gen, guard, _, _, _ := newTestAgent(fixedIntent(intent.KindDataQuery))
	gen.sql = "DROP TABLE gold_fct_daily_uf"
	guard.query = sqlguard.GuardedQuery{Accepted: false, Reason: "statement must start with SELECT"}
	guard.err = apperrors.NewNotSelectError()

	reply, _ := a.Handle(context.Background(), "apague tudo", nil)

	assert.Contains(t, reply, "rejeitada pela validação de segurança")
	assert.Contains(t, reply, "statement must start with SELECT")
	assert.NotContains(t, reply, "| ")
}

func TestHandleDataQueryGenerationFailure(t *testing.T) {
	a, _, gen, _, _, _, _ := newTestAgent(fixedIntent(intent.KindDataQuery))
	gen.err = apperrors.NewSQLGenerationError(errors.New("provider down"))

	reply, _ := a.Handle(context.Background(), "quantos casos?", nil)
	assert.Contains(t, reply, "Não consegui transformar a pergunta")
}

func TestHandleDataQueryEmptyResult(t *testing.T) {
	a, _, gen, guard, _, _, _ := newTestAgent(fixedIntent(intent.KindDataQuery))
	gen.sql = "SELECT day FROM gold_fct_daily_uf WHERE uf = 'AC' LIMIT 200"
	guard.query = sqlguard.GuardedQuery{Accepted: true}
	guard.cols = []string{"day"}
	guard.rows = nil

	reply, _ := a.Handle(context.Background(), "casos no acre em 1990", nil)
	assert.Contains(t, reply, "não retornou resultados")
}

func TestHandleDataQueryExecutionFailure(t *testing.T) {
	a, _, gen, guard, _, _, _ := newTestAgent(fixedIntent(intent.KindDataQuery))
	gen.sql = "SELECT day FROM gold_fct_daily_uf LIMIT 200"
	guard.query = sqlguard.GuardedQuery{Accepted: true}
	guard.err = apperrors.NewDatabaseQueryError(errors.New("conn reset"), "execute")

	reply, _ := a.Handle(context.Background(), "casos por dia", nil)
	assert.Contains(t, reply, "falhou ao executar")
}

func TestHandlePassesPreviousIntent(t *testing.T) {
	classifier := fixedIntent(intent.KindGreet)
	a, _, _, _, _, _, _ := newTestAgent(classifier)
	previous := &intent.Intent{Kind: intent.KindReport, Scope: intent.ScopeNational}

	a.Handle(context.Background(), "e em SP?", previous)

	require.NotNil(t, classifier.lastPrevious)
	assert.Equal(t, intent.KindReport, classifier.lastPrevious.Kind)
}

func TestHandleNilCollaborators(t *testing.T) {
	a := New(fixedIntent(intent.KindDataQuery), nil, nil, nil, nil, nil, nil)

	reply, _ := a.Handle(context.Background(), "quantos casos?", nil)
	assert.Contains(t, reply, "não está configurada")
}

func TestRenderTableTruncates(t *testing.T) {
	rows := make([][]interface{}, maxRenderedRows+10)
	for i := range rows {
		rows[i] = []interface{}{i}
	}

	out := renderTable([]string{"n"}, rows)
	assert.Contains(t, out, "mostrando 50 de 60 linhas")
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "abc", formatCell([]byte("abc")))
	assert.Equal(t, "42", formatCell(float64(42)))
	assert.Equal(t, "3.14", formatCell(3.14159))
	assert.Equal(t, "7", formatCell(int64(7)))
}
