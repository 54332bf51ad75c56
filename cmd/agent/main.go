package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/Ziolli/Case-Indicium/internal/agent"
	"github.com/Ziolli/Case-Indicium/internal/catalog"
	"github.com/Ziolli/Case-Indicium/internal/config"
	"github.com/Ziolli/Case-Indicium/internal/intent"
	"github.com/Ziolli/Case-Indicium/internal/llm"
	"github.com/Ziolli/Case-Indicium/internal/news"
	"github.com/Ziolli/Case-Indicium/internal/observability"
	"github.com/Ziolli/Case-Indicium/internal/report"
	"github.com/Ziolli/Case-Indicium/internal/sqlgen"
	"github.com/Ziolli/Case-Indicium/internal/sqlguard"
	"github.com/Ziolli/Case-Indicium/internal/store"
)

func main() {
	// Local development convenience; in containers the environment is
	// already populated.
	_ = godotenv.Load()

	ctx := context.Background()
	logger := observability.NewLogger("main")

	cfg := config.NewDefaultLoader().MustLoad(ctx)
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	engine, err := store.NewEngine(cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer engine.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	router, err := llm.NewRouter(
		llm.ProviderConfig{
			Name:    "primary",
			BaseURL: cfg.LLM.PrimaryBaseURL,
			APIKey:  cfg.LLM.PrimaryAPIKey,
			Model:   cfg.LLM.PrimaryModel,
			Timeout: cfg.LLM.Timeout,
		},
		llm.ProviderConfig{
			Name:    "fallback",
			BaseURL: cfg.LLM.FallbackBaseURL,
			APIKey:  cfg.LLM.FallbackAPIKey,
			Model:   cfg.LLM.FallbackModel,
			Timeout: cfg.LLM.Timeout,
		},
	)
	var generator llm.Generator
	if err != nil {
		logger.Warn(ctx, "no text generation provider configured, model-dependent features degraded", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		generator = llm.NewCircuitBreakerGenerator(router, "llm", llm.DefaultCircuitBreakerConfig)
	}

	// Intent resolution: rules first, model only when rules are unsure.
	rules := intent.NewRuleClassifier()
	var model intent.ModelClassifier
	if generator != nil {
		model = intent.NewLLMClassifier(generator)
	}
	arbiter := intent.NewArbiter(rules, model,
		intent.WithThreshold(cfg.Query.RuleConfidenceThreshold),
		intent.WithAlwaysModel(cfg.Query.AlwaysModel),
	)

	snapshot := catalog.BuildSnapshot()
	guard := sqlguard.NewGuard(snapshot.Allowlist, cfg.Query.RowLimit, engine)

	var sqlGen agent.SQLGenerator
	if generator != nil {
		sqlGen = sqlgen.NewGenerator(generator, snapshot, cfg.Query.RowLimit)
	}

	var searcher news.Searcher
	var summarizer agent.NewsSummarizer
	newsClient := news.NewClient(cfg.News.BaseURL, cfg.News.APIKey, cfg.News.MaxResults)
	if newsClient.Configured() {
		searcher = news.NewCachedSearcher(newsClient, rdb, cfg.News.CacheTTL)
		if generator != nil {
			summarizer = news.NewSummarizer(generator)
		}
	}

	reports := report.NewBuilder(engine, searcher, generator, rdb, cfg.Report.CacheTTL)

	healthChecker := observability.NewHealthChecker()
	healthChecker.Register("database", observability.DatabaseHealthCheck(func(ctx context.Context) error {
		return engine.Ping(ctx)
	}))
	healthChecker.Register("redis", observability.RedisHealthCheck(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}))
	if generator != nil {
		healthChecker.Register("llm", observability.LLMHealthCheck(func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			_, err := generator.Generate(ctx, llm.Request{
				System:    "Responda apenas 'ok'.",
				User:      "ok",
				MaxTokens: 4,
			})
			return err
		}))
	}

	ag := agent.New(arbiter, engine, sqlGen, guard, reports, searcher, summarizer)
	server := agent.NewServer(ag, reports, healthChecker)

	gin.SetMode(cfg.Server.GinMode)
	httpRouter := server.SetupRoutes()

	logger.Info(ctx, "srag-agent starting", map[string]interface{}{
		"port": cfg.Server.Port,
	})
	if err := httpRouter.Run(":" + cfg.Server.Port); err != nil {
		logger.Error(ctx, "server exited", err, nil)
		log.Fatal("Failed to start server: ", err)
	}
}
