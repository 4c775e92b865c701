package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStore signals a similarity query against a store with zero articles.
	// Callers recover locally by treating it as "no results".
	ErrEmptyStore = errors.New("article store is empty")
	// ErrInvalidPreference signals a preference with neither a name nor keywords.
	ErrInvalidPreference = errors.New("invalid preference")
	// ErrEmbedding signals that a single text could not be embedded.
	ErrEmbedding = errors.New("embedding failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrDimensionMismatch signals a vector dimension inconsistent with the store.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrStoreUnavailable signals infrastructure-level store unavailability.
	// This is the only error a pipeline run propagates as fatal.
	ErrStoreUnavailable = errors.New("article store unavailable")
	// ErrSummaryProviderError signals a summarization provider failure.
	ErrSummaryProviderError = errors.New("summary provider error")
)

// EmbeddingError wraps ErrEmbedding with the article that failed to vectorize.
type EmbeddingError struct {
	ArticleID string
	Err       error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("%s: article %s: %v", ErrEmbedding.Error(), e.ArticleID, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return ErrEmbedding }

// NewEmbeddingError creates an embedding error for a single article.
func NewEmbeddingError(articleID string, err error) error {
	return &EmbeddingError{ArticleID: articleID, Err: err}
}
