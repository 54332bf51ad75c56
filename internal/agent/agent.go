// Package agent is the orchestration layer: it resolves the intent of
// one user turn and dispatches it to the matching handler, always
// returning a markdown reply plus the resolved intent.
package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Ziolli/Case-Indicium/internal/glossary"
	"github.com/Ziolli/Case-Indicium/internal/intent"
	"github.com/Ziolli/Case-Indicium/internal/news"
	"github.com/Ziolli/Case-Indicium/internal/observability"
	"github.com/Ziolli/Case-Indicium/internal/sqlguard"
	"github.com/Ziolli/Case-Indicium/internal/store"
)

// Classifier resolves one turn into an Intent.
type Classifier interface {
	Classify(ctx context.Context, text string, previous *intent.Intent) intent.Intent
}

// SQLGenerator produces a candidate statement for a question.
type SQLGenerator interface {
	GenerateSQL(ctx context.Context, question string) (string, error)
}

// QueryGuard validates and executes candidate statements.
type QueryGuard interface {
	ExecuteSafe(ctx context.Context, input string) (sqlguard.GuardedQuery, []string, [][]interface{}, error)
}

// ReportBuilder assembles the standard report.
type ReportBuilder interface {
	Build(ctx context.Context, scope, uf string) (string, error)
}

// NewsSummarizer renders articles into markdown.
type NewsSummarizer interface {
	Summarize(ctx context.Context, articles []news.Article) string
}

// KPIReader is the slice of the store the trend and compare handlers
// need.
type KPIReader interface {
	GetKPIs(ctx context.Context, scope, uf string) (store.KPIs, error)
	GetTopUFs(ctx context.Context, limit int) ([]store.UFRanking, error)
}

// Agent answers user turns. One instance serves all sessions; the
// per-session previous intent travels with each call.
type Agent struct {
	classifier Classifier
	kpis       KPIReader
	sqlgen     SQLGenerator
	guard      QueryGuard
	reports    ReportBuilder
	searcher   news.Searcher
	summarizer NewsSummarizer
	logger     *observability.Logger
}

// New wires the agent. Optional collaborators may be nil; the matching
// handlers then answer with a configuration message.
func New(classifier Classifier, kpis KPIReader, gen SQLGenerator, guard QueryGuard, reports ReportBuilder, searcher news.Searcher, summarizer NewsSummarizer) *Agent {
	return &Agent{
		classifier: classifier,
		kpis:       kpis,
		sqlgen:     gen,
		guard:      guard,
		reports:    reports,
		searcher:   searcher,
		summarizer: summarizer,
		logger:     observability.NewLogger("agent"),
	}
}

// Handle is the single entry point. It never returns an error:
// provider failures, guard rejections and empty results all become
// user-facing markdown, and the resolved intent is always returned so
// conversational context survives.
func (a *Agent) Handle(ctx context.Context, text string, previous *intent.Intent) (string, intent.Intent) {
	ctx = observability.EnsureCorrelationID(ctx)
	start := time.Now()

	it := a.classifier.Classify(ctx, text, previous).Canonical()

	a.logger.Info(ctx, "turn classified", map[string]interface{}{
		"kind":       string(it.Kind),
		"scope":      string(it.Scope),
		"region":     it.Region,
		"metric":     it.Metric,
		"confidence": it.Confidence,
	})

	var reply string
	switch it.Kind {
	case intent.KindGreet:
		reply = a.handleGreet()
	case intent.KindChitchat:
		reply = a.handleChitchat()
	case intent.KindExplain:
		reply = a.handleExplain(text)
	case intent.KindNews:
		reply = a.handleNews(ctx, it)
	case intent.KindReport:
		reply = a.handleReport(ctx, it)
	case intent.KindTrend:
		reply = a.handleTrend(ctx, it)
	case intent.KindCompare:
		reply = a.handleCompare(ctx)
	case intent.KindDataQuery, intent.KindAdHocQuery:
		reply = a.handleDataQuery(ctx, text)
	default:
		reply = a.handleUnknown()
	}

	observability.RecordQuestionMetrics(string(it.Kind), time.Since(start), true)
	return reply, it
}

func (a *Agent) handleGreet() string {
	return "Olá! Sou o assistente de vigilância de SRAG. Posso:\n" +
		"- gerar o **relatório padrão** (Brasil ou por UF);\n" +
		"- responder **perguntas sobre os dados** (casos, UTI, óbitos, vacinação);\n" +
		"- mostrar a **tendência** de casos (7 dias vs. 7 anteriores);\n" +
		"- **comparar UFs** por casos recentes;\n" +
		"- buscar **notícias** recentes sobre SRAG;\n" +
		"- **explicar termos** do glossário (ex.: CFR, growth_7d).\n\n" +
		"Como posso ajudar?"
}

func (a *Agent) handleChitchat() string {
	return "Posso ajudar melhor com dados de SRAG: relatórios, tendências, comparações entre UFs, " +
		"notícias recentes ou explicação de termos. O que você gostaria de ver?"
}

func (a *Agent) handleUnknown() string {
	return "Não consegui entender o pedido. Tente algo como:\n" +
		"- \"Gere o relatório padrão\"\n" +
		"- \"Quantos casos em SP nos últimos 30 dias?\"\n" +
		"- \"Qual a tendência de casos?\"\n" +
		"- \"O que é CFR?\""
}

var explainLeadRe = regexp.MustCompile(`(?i)^(o que (e|é|significa)|explique|defina|me explique|definicao de|definição de)\s*`)

func (a *Agent) handleExplain(text string) string {
	term := strings.TrimSpace(explainLeadRe.ReplaceAllString(strings.TrimSpace(text), ""))
	term = strings.Trim(term, "?!. ")
	if term == "" {
		return "Qual termo você gostaria que eu explicasse? Ex.: CFR, growth_7d, UTI."
	}
	return glossary.Lookup(term)
}

func (a *Agent) handleNews(ctx context.Context, it intent.Intent) string {
	if a.searcher == nil || a.summarizer == nil {
		return "A busca de notícias não está configurada (defina TAVILY_API_KEY)."
	}
	query := ""
	if it.Scope == intent.ScopeRegional {
		query = it.Region
	}
	articles, err := a.searcher.Search(ctx, query, it.DaysBack)
	if err != nil {
		a.logger.Error(ctx, "news search failed", err, nil)
		return "Não consegui buscar notícias agora. Verifique a configuração do provedor (TAVILY_API_KEY) e tente novamente."
	}
	return a.summarizer.Summarize(ctx, articles)
}

func (a *Agent) handleReport(ctx context.Context, it intent.Intent) string {
	if a.reports == nil {
		return "A geração de relatórios não está configurada."
	}
	md, err := a.reports.Build(ctx, string(it.Scope), it.Region)
	if err != nil {
		a.logger.Error(ctx, "report build failed", err, nil)
		return "Não consegui gerar o relatório agora (falha ao consultar a base de dados). Tente novamente em instantes."
	}
	return md
}

func (a *Agent) handleTrend(ctx context.Context, it intent.Intent) string {
	if a.kpis == nil {
		return "O acesso aos dados não está configurado."
	}
	k, err := a.kpis.GetKPIs(ctx, string(it.Scope), it.Region)
	if err != nil {
		a.logger.Error(ctx, "trend query failed", err, nil)
		return "Não consegui consultar a tendência agora. Tente novamente em instantes."
	}

	where := "no Brasil"
	if it.Scope == intent.ScopeRegional {
		where = "em " + it.Region
	}

	growth := "indisponível (período anterior sem casos)"
	if k.Growth7dPct != nil {
		growth = fmt.Sprintf("%.1f%%", *k.Growth7dPct)
	}
	return fmt.Sprintf(
		"**Tendência de casos %s** (últimos 7 dias vs. 7 anteriores, ancorada no último dia com dados):\n\n"+
			"- Casos últimos 7 dias: %.0f\n"+
			"- Casos 7 dias anteriores: %.0f\n"+
			"- Variação: %s\n",
		where, k.Cases7d, k.CasesPrev7d, growth)
}

func (a *Agent) handleCompare(ctx context.Context) string {
	if a.kpis == nil {
		return "O acesso aos dados não está configurado."
	}
	ranking, err := a.kpis.GetTopUFs(ctx, 10)
	if err != nil {
		a.logger.Error(ctx, "ranking query failed", err, nil)
		return "Não consegui consultar o ranking agora. Tente novamente em instantes."
	}
	if len(ranking) == 0 {
		return "Sem dados de casos nos últimos 30 dias para comparar UFs."
	}

	var sb strings.Builder
	sb.WriteString("**UFs com mais casos nos últimos 30 dias:**\n\n")
	sb.WriteString("| # | UF | Casos (30d) |\n|---|----|-------------|\n")
	for i, r := range ranking {
		sb.WriteString(fmt.Sprintf("| %d | %s | %.0f |\n", i+1, r.UF, r.Cases))
	}
	return sb.String()
}

func (a *Agent) handleDataQuery(ctx context.Context, text string) string {
	if a.sqlgen == nil || a.guard == nil {
		return "A consulta em linguagem natural não está configurada (defina uma chave de LLM)."
	}

	sql, err := a.sqlgen.GenerateSQL(ctx, text)
	if err != nil {
		a.logger.Error(ctx, "sql generation failed", err, nil)
		return "Não consegui transformar a pergunta em consulta agora. Verifique a configuração do provedor de LLM ou reformule a pergunta."
	}

	q, cols, rows, err := a.guard.ExecuteSafe(ctx, sql)
	if err != nil {
		if !q.Accepted {
			return "A consulta gerada foi rejeitada pela validação de segurança:\n\n> " + q.Reason +
				"\n\nReformule a pergunta usando apenas os dados publicados."
		}
		a.logger.Error(ctx, "guarded execution failed", err, nil)
		return "A consulta falhou ao executar na base de dados. Tente novamente em instantes."
	}
	if len(rows) == 0 {
		return "A consulta executou com sucesso, mas não retornou resultados para esse filtro."
	}
	return renderTable(cols, rows)
}
