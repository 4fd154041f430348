// Package newsapi provides NewsSource implementations backed by the NewsAPI
// /v2/everything endpoint or a local fixture file.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
	"github.com/ersonp/diagnostics-tracker/internal/domain/ports"
	"github.com/ersonp/diagnostics-tracker/internal/infrastructure/config"
)

// DefaultBaseURL is the public NewsAPI endpoint.
const DefaultBaseURL = "https://newsapi.org"

// queryTopics are appended to the quoted startup name, one request each.
var queryTopics = []string{
	"funding",
	"raises",
	"Series",
	"valuation",
	"acquisition",
	"users members",
}

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

var _ ports.NewsSource = (*Client)(nil)

// Client searches NewsAPI for recent articles about a startup.
type Client struct {
	http     *retryablehttp.Client
	baseURL  string
	apiKey   string
	pageSize int
	limiter  *rate.Limiter
	logger   *zap.SugaredLogger
}

// NewClient creates a NewsAPI client.
func NewClient(cfg config.NewsConfig, logger *zap.SugaredLogger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, entities.Validationf("NewsAPI key is required (set NEWS_API_KEY)")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	hc := retryablehttp.NewClient()
	hc.RetryMax = cfg.MaxRetries
	hc.Logger = retryLogger{logger}
	if cfg.Timeout > 0 {
		hc.HTTPClient.Timeout = cfg.Timeout
	}

	limit := rate.Inf
	if cfg.QueryPause > 0 {
		limit = rate.Every(cfg.QueryPause)
	}

	return &Client{
		http:     hc,
		baseURL:  baseURL,
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}, nil
}

// Search runs one query per topic and merges the articles, de-duplicated by URL.
// A failing query is logged and skipped. The search fails only when every query failed.
func (c *Client) Search(ctx context.Context, startup entities.Startup, daysBack int) ([]entities.EvidenceItem, error) {
	from := timeNow().UTC().AddDate(0, 0, -daysBack).Format(time.DateOnly)

	var (
		items    []entities.EvidenceItem
		seen     = make(map[string]bool)
		failures int
		lastErr  error
	)

	for _, topic := range queryTopics {
		if err := c.limiter.Wait(ctx); err != nil {
			return items, err
		}

		query := fmt.Sprintf("%q %s", startup.Name, topic)
		articles, err := c.everything(ctx, query, from)
		if err != nil {
			if ctx.Err() != nil {
				return items, ctx.Err()
			}
			failures++
			lastErr = err
			c.logger.Warnw("news query failed", "startup_id", startup.ID, "query", query, "error", err)
			continue
		}

		for _, a := range articles {
			if a.URL == "" || seen[a.URL] || a.Title == removedMarker {
				continue
			}
			seen[a.URL] = true
			items = append(items, a.toEvidence())
		}
	}

	if failures == len(queryTopics) {
		return nil, entities.CollaboratorError(lastErr, "searching news for "+startup.Name)
	}

	c.logger.Debugw("news search finished", "startup_id", startup.ID, "count", len(items))
	return items, nil
}

// everything calls /v2/everything for one query.
func (c *Client) everything(ctx context.Context, query, from string) ([]article, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("from", from)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(c.pageSize))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting news: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || parsed.Status != "ok" {
		return nil, fmt.Errorf("newsapi %s (status %d): %s", parsed.Code, resp.StatusCode, parsed.Message)
	}

	return parsed.Articles, nil
}

// removedMarker is the title NewsAPI uses for articles pulled by the publisher.
const removedMarker = "[Removed]"

type response struct {
	Status   string    `json:"status"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Articles []article `json:"articles"`
}

type article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

func (a article) toEvidence() entities.EvidenceItem {
	return entities.EvidenceItem{
		SourceURL:   a.URL,
		SourceName:  a.Source.Name,
		PublishedAt: a.PublishedAt,
		Title:       a.Title,
		Snippet:     a.Description,
	}
}

// retryLogger adapts a zap logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	l *zap.SugaredLogger
}

func (r retryLogger) Error(msg string, keysAndValues ...interface{}) {
	r.l.Errorw(msg, keysAndValues...)
}

func (r retryLogger) Info(msg string, keysAndValues ...interface{}) {
	r.l.Debugw(msg, keysAndValues...)
}

func (r retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	r.l.Debugw(msg, keysAndValues...)
}

func (r retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	r.l.Warnw(msg, keysAndValues...)
}
