// Package feed supplies fresh articles for pipeline runs, from NewsAPI.org
// or a canned static source when no API key is configured.
package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/aithena-cloud/aithena/internal/domain/article"
	"github.com/aithena-cloud/aithena/internal/logger"
)

const defaultBaseURL = "https://newsapi.org"

// NewsAPIClient fetches recent articles per topic from the NewsAPI.org
// /v2/everything endpoint.
type NewsAPIClient struct {
	baseURL  string
	apiKey   string
	pageSize int
	client   *http.Client
}

// NewsAPIConfig configures the NewsAPI client.
type NewsAPIConfig struct {
	// BaseURL overrides the API host, mainly for tests.
	BaseURL string
	APIKey  string
	// PageSize is articles requested per topic (default 5).
	PageSize int
	Timeout  time.Duration
}

func NewNewsAPIClient(cfg NewsAPIConfig) *NewsAPIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &NewsAPIClient{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		pageSize: cfg.PageSize,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// FetchFresh queries one page of recent articles per topic, newest first.
// A failing topic is logged and skipped; FetchFresh fails only when every
// topic fails.
func (c *NewsAPIClient) FetchFresh(ctx context.Context, topics []string) ([]article.Article, error) {
	log := logger.FromContext(ctx)

	var out []article.Article
	failed := 0
	for _, topic := range topics {
		arts, err := c.fetchTopic(ctx, topic)
		if err != nil {
			log.Warn("fetching topic failed", zap.String("topic", topic), zap.Error(err))
			failed++
			continue
		}
		out = append(out, arts...)
	}
	if failed > 0 && failed == len(topics) {
		return nil, fmt.Errorf("all %d topics failed to fetch", failed)
	}
	return out, nil
}

func (c *NewsAPIClient) fetchTopic(ctx context.Context, topic string) ([]article.Article, error) {
	q := url.Values{}
	q.Set("q", topic)
	q.Set("apiKey", c.apiKey)
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	q.Set("sortBy", "publishedAt")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/everything?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var body newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make([]article.Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		text := a.Description
		if text == "" {
			text = a.Content
		}
		if text == "" {
			continue
		}
		publishedAt, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			publishedAt = time.Now()
		}
		source := a.Source.Name
		if source == "" {
			source = "Unknown"
		}
		art, err := article.New(ArticleID(a.URL, a.Title), a.Title, text, source, a.URL, publishedAt, []string{topic})
		if err != nil {
			continue
		}
		out = append(out, art)
	}
	return out, nil
}

// ArticleID derives a stable article ID from the article URL (or title when
// the URL is missing), so re-fetching the same article always deduplicates.
func ArticleID(articleURL, title string) string {
	key := articleURL
	if key == "" {
		key = title
	}
	sum := sha256.Sum256([]byte(key))
	return "news_" + hex.EncodeToString(sum[:])[:16]
}
