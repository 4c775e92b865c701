package article

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxTextSize is the maximum article body size in bytes.
const MaxTextSize = 163840 // 160KB

// Article is the article aggregate (immutable value object).
// ID is the deduplication key: the store holds exactly one article per ID,
// and re-ingesting an existing ID is a no-op.
type Article struct {
	id          string
	title       string
	text        string
	source      string
	url         string
	topics      []string
	publishedAt time.Time
	vector      []float32
}

// New validates and creates an Article.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Text: non-empty, max 160KB.
// Title, source, url, topics and publishedAt are optional metadata,
// opaque to the engine's algorithms.
func New(
	id, title, text, source, url string,
	publishedAt time.Time, topics []string,
) (Article, error) {
	if id == "" {
		return Article{}, fmt.Errorf("article ID is required")
	}
	if len(id) > 256 {
		return Article{}, fmt.Errorf("article ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Article{}, fmt.Errorf("article ID must be alphanumeric with underscores and hyphens")
	}
	if strings.TrimSpace(text) == "" {
		return Article{}, fmt.Errorf("article text is required")
	}
	if len(text) > MaxTextSize {
		return Article{}, fmt.Errorf("article text too large (max %d bytes)", MaxTextSize)
	}

	return Article{
		id:          id,
		title:       title,
		text:        text,
		source:      source,
		url:         url,
		topics:      cloneStrings(topics),
		publishedAt: publishedAt,
	}, nil
}

// Reconstruct creates an Article without validation (storage hydration).
func Reconstruct(
	id, title, text, source, url string,
	publishedAt time.Time, topics []string, vector []float32,
) Article {
	return Article{
		id: id, title: title, text: text, source: source, url: url,
		publishedAt: publishedAt, topics: topics, vector: vector,
	}
}

// ID returns the article identifier.
func (a *Article) ID() string { return a.id }

// Title returns the article title.
func (a *Article) Title() string { return a.title }

// Text returns the article body.
func (a *Article) Text() string { return a.text }

// Source returns the publisher name.
func (a *Article) Source() string { return a.source }

// URL returns the article link.
func (a *Article) URL() string { return a.url }

// Topics returns the topic labels attached by the acquisition source.
func (a *Article) Topics() []string { return a.topics }

// PublishedAt returns the publication timestamp (zero when unknown).
func (a *Article) PublishedAt() time.Time { return a.publishedAt }

// Vector returns the embedding vector (nil before vectorization).
func (a *Article) Vector() []float32 { return a.vector }

// EmbeddingText returns the text used for vectorization and lexical scoring:
// title and body combined, matching what the semantic index stores.
func (a *Article) EmbeddingText() string {
	if a.title == "" {
		return a.text
	}
	return a.title + " " + a.text
}

// SetVector sets the embedding vector in place (mutation).
func (a *Article) SetVector(v []float32) { a.vector = v }

// WithVector returns a copy with the given vector set.
func (a *Article) WithVector(v []float32) Article {
	c := *a
	c.vector = v
	return c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
