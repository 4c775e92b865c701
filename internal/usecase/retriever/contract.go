package retriever

import (
	"context"

	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/article"
)

// Index is the article store the retriever reads from and writes to.
type Index interface {
	Upsert(ctx context.Context, articles []article.Article) (domain.UpsertReport, error)
	Query(ctx context.Context, text string, topK int) ([]domain.Candidate, error)
}
