// Package report assembles the standard SRAG report: KPIs, series,
// recent news and a model-written narrative.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Ziolli/Case-Indicium/internal/catalog"
	"github.com/Ziolli/Case-Indicium/internal/llm"
	"github.com/Ziolli/Case-Indicium/internal/news"
	"github.com/Ziolli/Case-Indicium/internal/observability"
	"github.com/Ziolli/Case-Indicium/internal/store"
)

// DataSource is the slice of the store the builder needs.
type DataSource interface {
	GetAsOf(ctx context.Context) (store.AsOf, error)
	GetKPIs(ctx context.Context, scope, uf string) (store.KPIs, error)
	GetDailySeries(ctx context.Context, scope, uf string) ([]store.SeriesPoint, error)
	GetMonthlySeries(ctx context.Context, scope, uf string) ([]store.SeriesPoint, error)
}

// Builder produces the standard report markdown.
type Builder struct {
	data     DataSource
	searcher news.Searcher
	gen      llm.Generator
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *observability.Logger
}

// NewBuilder wires the report builder. cache may be nil.
func NewBuilder(data DataSource, searcher news.Searcher, gen llm.Generator, cache *redis.Client, cacheTTL time.Duration) *Builder {
	return &Builder{
		data:     data,
		searcher: searcher,
		gen:      gen,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   observability.NewLogger("report"),
	}
}

func reportCacheKey(scope, uf string) string {
	return fmt.Sprintf("report:%s:%s", scope, uf)
}

// Build assembles the report for Brazil or one UF. News failures
// degrade to an empty context section; model failures degrade to the
// deterministic body. Database failures are the only fatal path.
func (b *Builder) Build(ctx context.Context, scope, uf string) (string, error) {
	metrics := observability.GetGlobalMetrics()

	if b.cache != nil {
		if cached, err := b.cache.Get(ctx, reportCacheKey(scope, uf)).Result(); err == nil {
			metrics.Inc(observability.MetricCacheHits, map[string]string{"cache": "report"})
			return cached, nil
		}
		metrics.Inc(observability.MetricCacheMisses, map[string]string{"cache": "report"})
	}

	asOf, err := b.data.GetAsOf(ctx)
	if err != nil {
		return "", err
	}
	kpis, err := b.data.GetKPIs(ctx, scope, uf)
	if err != nil {
		return "", err
	}
	daily, err := b.data.GetDailySeries(ctx, scope, uf)
	if err != nil {
		return "", err
	}
	monthly, err := b.data.GetMonthlySeries(ctx, scope, uf)
	if err != nil {
		return "", err
	}

	var articles []news.Article
	if b.searcher != nil {
		query := ""
		if scope == "uf" {
			query = uf
		}
		articles, err = b.searcher.Search(ctx, query, 7)
		if err != nil {
			b.logger.Warn(ctx, "news fetch failed, continuing without context", map[string]interface{}{
				"error": err.Error(),
			})
			articles = nil
		}
	}

	body := ""
	if b.gen != nil {
		out, genErr := b.gen.Generate(ctx, llm.Request{
			System:      systemPrompt,
			User:        buildUserPrompt(scope, uf, asOf.Day, kpis, daily, monthly, articles),
			Temperature: 0.2,
			MaxTokens:   1200,
		})
		if genErr != nil {
			b.logger.Error(ctx, "narrative generation failed", genErr, nil)
		} else {
			body = strings.TrimSpace(out)
		}
	}
	if body == "" {
		body = fallbackBody(kpis, asOf.Day)
	}

	if warnings := boundWarnings(kpis); warnings != "" {
		body += warnings
	}

	if b.cache != nil {
		if err := b.cache.Set(ctx, reportCacheKey(scope, uf), body, b.cacheTTL).Err(); err != nil {
			b.logger.Warn(ctx, "failed to cache report", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return body, nil
}

// boundWarnings flags metric values outside their plausible range.
// Values are reported as-is, never altered.
func boundWarnings(kpis store.KPIs) string {
	var notes []string
	check := func(id string, v *float64, label string) {
		if v != nil && !catalog.WithinBounds(id, *v) {
			notes = append(notes, fmt.Sprintf("- %s (%.1f%%) fora da faixa plausível; verifique a carga de dados.", label, *v))
		}
	}
	check("growth_7d", kpis.Growth7dPct, "Taxa de aumento 7d")
	check("cfr_30d_closed", kpis.CFRClosed30dPct, "CFR 30d")
	check("icu_rate_30d", kpis.ICURate30dPct, "% UTI 30d")
	check("vaccinated_rate_30d", kpis.VaccinatedRate30dPct, "% vacinados 30d")

	if len(notes) == 0 {
		return ""
	}
	return "\n\n### Avisos de sanidade\n" + strings.Join(notes, "\n") + "\n"
}
