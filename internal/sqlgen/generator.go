// Package sqlgen turns a natural language question into a candidate
// SQL statement grounded on the schema snapshot. It only shapes the
// request and applies the LIMIT backstop; semantic validation is the
// guard's job.
package sqlgen

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Ziolli/Case-Indicium/internal/catalog"
	apperrors "github.com/Ziolli/Case-Indicium/internal/errors"
	"github.com/Ziolli/Case-Indicium/internal/llm"
	"github.com/Ziolli/Case-Indicium/internal/observability"
)

// MaxPromptColumns caps how many schema columns are rendered into the
// grounding block.
const MaxPromptColumns = 40

const systemPrompt = `Você gera SQL para responder perguntas sobre dados de SRAG no Brasil.

Regras obrigatórias:
- Responda APENAS com a instrução SQL, sem explicações e sem cercas de código.
- A instrução deve começar com SELECT.
- Use apenas as tabelas e colunas listadas abaixo.
- Inclua sempre uma cláusula LIMIT.
- Colunas de janela pré-agregada (sufixo _30d) devem ser lidas isoladas,
  nunca somadas entre linhas que cobrem a mesma janela móvel.
- Datas: a coluna day é DATE; use intervalos como day >= CURRENT_DATE - INTERVAL '30 days'.

%s`

var codeFenceRe = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)\\s*```")

// Generator builds SQL candidates through the model router.
type Generator struct {
	gen      llm.Generator
	snapshot *catalog.Snapshot
	rowLimit int
	logger   *observability.Logger
}

// NewGenerator creates a generator grounded on the given snapshot.
func NewGenerator(gen llm.Generator, snapshot *catalog.Snapshot, rowLimit int) *Generator {
	return &Generator{
		gen:      gen,
		snapshot: snapshot,
		rowLimit: rowLimit,
		logger:   observability.NewLogger("sqlgen"),
	}
}

// GenerateSQL asks the model for a SELECT statement answering the
// question. The returned text is cleaned of code fences and gets a
// default LIMIT appended when the model omitted one.
func (g *Generator) GenerateSQL(ctx context.Context, question string) (string, error) {
	schema := catalog.RenderForPrompt(g.snapshot, MaxPromptColumns)

	resp, err := g.gen.Generate(ctx, llm.Request{
		System:      fmt.Sprintf(systemPrompt, schema),
		User:        question,
		Temperature: 0.2,
		MaxTokens:   512,
	})
	if err != nil {
		return "", apperrors.NewSQLGenerationError(err)
	}

	sql := cleanResponse(resp)
	if sql == "" {
		return "", apperrors.NewSQLGenerationError(fmt.Errorf("empty statement from model"))
	}

	if !limitRe.MatchString(sql) {
		sql = strings.TrimRight(sql, "; \n\t") + fmt.Sprintf(" LIMIT %d", g.rowLimit)
	}

	g.logger.Debug(ctx, "generated statement", map[string]interface{}{
		"sql": sql,
	})
	return sql, nil
}

var limitRe = regexp.MustCompile(`(?i)\blimit\s+\d+\b`)

// cleanResponse strips markdown code fences and surrounding noise.
func cleanResponse(resp string) string {
	if m := codeFenceRe.FindStringSubmatch(resp); m != nil {
		resp = m[1]
	}
	return strings.TrimSpace(resp)
}
