package index

import (
	"context"

	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/article"
)

// Repository defines the storage contract for the article store.
// Both the Redis-backed repository and the in-memory store implement it.
type Repository interface {
	// EnsureReady prepares the backing index for vectors of the given dimension.
	EnsureReady(ctx context.Context, dim int) error
	// Exists reports whether an article with the given ID is stored.
	Exists(ctx context.Context, id string) (bool, error)
	// Insert persists an article together with its vector, atomically.
	Insert(ctx context.Context, art *article.Article) error
	// Count returns the number of stored articles.
	Count(ctx context.Context) (int, error)
	// SearchKNN returns the topK most similar articles, best first, with
	// deterministic tie-breaking (published_at desc, insertion order, ID).
	SearchKNN(ctx context.Context, vector []float32, topK int) ([]domain.Candidate, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
