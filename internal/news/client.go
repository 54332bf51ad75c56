// Package news fetches and summarizes recent SRAG coverage through a
// Tavily-compatible search provider.
package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Ziolli/Case-Indicium/internal/errors"
	"github.com/Ziolli/Case-Indicium/internal/observability"
)

// Article is one news result.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	Summary     string `json:"summary,omitempty"`
}

// Searcher fetches recent articles for a query within a day window.
type Searcher interface {
	Search(ctx context.Context, query string, daysBack int) ([]Article, error)
}

// Client talks to the provider's search endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	maxResults int
	httpClient *http.Client
	logger     *observability.Logger
}

// NewClient creates a provider client. An empty API key is allowed;
// searches then fail with a configuration error at call time, which
// handlers degrade gracefully.
func NewClient(baseURL, apiKey string, maxResults int) *Client {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     observability.NewLogger("news"),
	}
}

// Configured reports whether the client has an API key.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// timeRange maps a day window onto the provider's recency enum.
func timeRange(daysBack int) string {
	switch {
	case daysBack <= 1:
		return "day"
	case daysBack <= 7:
		return "week"
	case daysBack <= 30:
		return "month"
	default:
		return "year"
	}
}

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	TimeRange     string `json:"time_range"`
	Country       string `json:"country"`
	Topic         string `json:"topic"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type searchResponse struct {
	Results []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		Source        string `json:"source"`
		Content       string `json:"content"`
		PublishedDate string `json:"published_date"`
	} `json:"results"`
}

// Search fetches recent Brazil-focused articles. Extra query text is
// appended to the base SRAG query.
func (c *Client) Search(ctx context.Context, query string, daysBack int) ([]Article, error) {
	if c.apiKey == "" {
		return nil, apperrors.New(apperrors.ErrCodeNewsFetch, "news provider API key not configured")
	}

	q := "Novidades sobre SRAG no Brasil"
	if query != "" {
		q = q + " " + query
	}

	body, err := json.Marshal(searchRequest{
		APIKey:        c.apiKey,
		Query:         q,
		TimeRange:     timeRange(daysBack),
		Country:       "brazil",
		Topic:         "general",
		SearchDepth:   "basic",
		MaxResults:    c.maxResults,
		IncludeAnswer: false,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.GetGlobalMetrics().Inc(observability.MetricNewsErrors, nil)
		return nil, apperrors.NewNewsFetchError(err)
	}
	defer resp.Body.Close()

	observability.GetGlobalMetrics().Inc(observability.MetricNewsFetches, nil)
	c.logger.Debug(ctx, "news search completed", map[string]interface{}{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		observability.GetGlobalMetrics().Inc(observability.MetricNewsErrors, nil)
		return nil, apperrors.NewNewsFetchError(
			fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(raw)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewNewsFetchError(err)
	}

	articles := make([]Article, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			continue
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "(sem título)"
		}
		source := strings.TrimSpace(r.Source)
		if source == "" {
			source = hostOf(url)
		}
		published := r.PublishedDate
		if published == "" {
			published = time.Now().UTC().Format(time.RFC3339)
		}
		articles = append(articles, Article{
			Title:       title,
			URL:         url,
			Source:      source,
			PublishedAt: published,
			Summary:     strings.TrimSpace(r.Content),
		})
		if len(articles) >= c.maxResults {
			break
		}
	}
	return articles, nil
}

func hostOf(url string) string {
	parts := strings.SplitN(url, "/", 4)
	if len(parts) >= 3 && parts[2] != "" {
		return parts[2]
	}
	return "desconhecido"
}
