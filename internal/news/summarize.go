package news

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ziolli/Case-Indicium/internal/llm"
)

const summarySystemPrompt = "Você é um analista epidemiológico. Escreva em português do Brasil, " +
	"claro e objetivo. Resuma as notícias sem inventar informações. " +
	"Use citações numéricas entre colchetes [n] que correspondem ao id do item."

// Summarizer turns a small article list into PT-BR markdown with
// inline [n] citations and a closing sources section.
type Summarizer struct {
	gen      llm.Generator
	maxItems int
}

// NewSummarizer creates a summarizer over the model router.
func NewSummarizer(gen llm.Generator) *Summarizer {
	return &Summarizer{gen: gen, maxItems: 8}
}

// Summarize builds the markdown summary. When the model fails, a
// deterministic bullet list of titles is returned instead, so the turn
// never aborts on a provider error.
func (s *Summarizer) Summarize(ctx context.Context, articles []Article) string {
	if len(articles) == 0 {
		return "Não encontrei notícias relevantes no período selecionado."
	}
	sel := articles
	if len(sel) > s.maxItems {
		sel = sel[:s.maxItems]
	}

	var items strings.Builder
	for i, a := range sel {
		summary := a.Summary
		if len(summary) > 400 {
			summary = summary[:400]
		}
		items.WriteString(fmt.Sprintf("- id=%d | %s | %s | %s | %s\n",
			i+1, a.Title, a.Source, a.PublishedAt, summary))
	}

	user := "Resuma as principais novidades de SRAG para gestores de saúde. " +
		"Use no máximo 6 bullets e, se fizer sentido, uma frase inicial de contexto. " +
		"Mantenha números e datas existentes. " +
		"Itens (cada um tem um id para citação):\n" + items.String() + "\n" +
		"Regras:\n" +
		"- Não invente dados que não estejam nos itens.\n" +
		"- Sempre use citações [n] para cada afirmação derivada de um item.\n" +
		"- Foque em implicações para vigilância/assistência (tendências, alertas, campanhas, leitos etc.)."

	body, err := s.gen.Generate(ctx, llm.Request{
		System:      summarySystemPrompt,
		User:        user,
		Temperature: 0.2,
		MaxTokens:   900,
	})
	if err != nil || strings.TrimSpace(body) == "" {
		var bullets strings.Builder
		for i, a := range sel {
			bullets.WriteString(fmt.Sprintf("- [%d] %s\n", i+1, a.Title))
		}
		body = "### Principais pontos (resumo simples)\n" + bullets.String() + "\n" +
			"_Obs.: resumo simplificado porque o serviço de LLM não estava disponível._"
	} else {
		body = strings.TrimSpace(body)
	}

	var sources strings.Builder
	sources.WriteString("\n\n**Fontes**\n")
	for i, a := range sel {
		date := a.PublishedAt
		if len(date) > 10 {
			date = date[:10]
		}
		sources.WriteString(fmt.Sprintf("- [%d] %s — *%s, %s*. %s\n", i+1, a.Title, a.Source, date, a.URL))
	}
	return body + sources.String()
}
