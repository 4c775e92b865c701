// Package index implements the deduplicated, vector-indexed article store.
// It owns the embed-then-insert flow and the nearest-neighbor query surface.
package index

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/article"
	"github.com/aithena-cloud/aithena/internal/logger"
)

// Service coordinates embedding and storage for articles.
//
// The vector dimension is pinned on the first successful embedding (or from
// configuration) and every later insert must match it. A Service is intended
// to be driven by a single pipeline run at a time; it does not guard its
// dimension tracking with a mutex.
type Service struct {
	repo     Repository
	embedder Embedder

	dim   int
	ready bool
}

// New creates an index service. dim may be zero, in which case the dimension
// is learned from the first embedding produced.
func New(repo Repository, embedder Embedder, dim int) *Service {
	return &Service{repo: repo, embedder: embedder, dim: dim}
}

func (s *Service) ensureReady(ctx context.Context, dim int) error {
	if s.ready {
		if dim != s.dim {
			return fmt.Errorf("vector has dimension %d, index expects %d: %w", dim, s.dim, domain.ErrDimensionMismatch)
		}
		return nil
	}
	if s.dim != 0 && dim != s.dim {
		return fmt.Errorf("vector has dimension %d, configured dimension is %d: %w", dim, s.dim, domain.ErrDimensionMismatch)
	}
	if err := s.repo.EnsureReady(ctx, dim); err != nil {
		return fmt.Errorf("prepare index: %w", err)
	}
	s.dim = dim
	s.ready = true
	return nil
}

// Upsert stores each article that is not already present. Duplicates are
// skipped without re-embedding. Articles whose embedding fails are skipped
// and counted; storage failures abort the whole batch.
func (s *Service) Upsert(ctx context.Context, articles []article.Article) (domain.UpsertReport, error) {
	log := logger.FromContext(ctx)

	var report domain.UpsertReport
	for i := range articles {
		art := articles[i]

		exists, err := s.repo.Exists(ctx, art.ID())
		if err != nil {
			return report, fmt.Errorf("check article %q: %w", art.ID(), errors.Join(domain.ErrStoreUnavailable, err))
		}
		if exists {
			report.Duplicates++
			continue
		}

		res, err := s.embedder.Embed(ctx, art.EmbeddingText())
		if err != nil {
			log.Warn("skipping article, embedding failed",
				zap.Error(domain.NewEmbeddingError(art.ID(), err)))
			report.Skipped++
			continue
		}

		if err := s.ensureReady(ctx, len(res.Embedding)); err != nil {
			if errors.Is(err, domain.ErrDimensionMismatch) {
				log.Warn("skipping article, vector dimension mismatch",
					zap.String("article_id", art.ID()),
					zap.Int("dimension", len(res.Embedding)),
					zap.Error(err))
				report.Skipped++
				continue
			}
			return report, err
		}

		art.SetVector(res.Embedding)
		if err := s.repo.Insert(ctx, &art); err != nil {
			return report, fmt.Errorf("insert article %q: %w", art.ID(), errors.Join(domain.ErrStoreUnavailable, err))
		}
		report.Added++
	}
	return report, nil
}

// Query embeds the query text and returns the topK nearest stored articles,
// best first. It returns domain.ErrEmptyStore when nothing has been stored
// yet, and an empty result when topK is not positive.
func (s *Service) Query(ctx context.Context, text string, topK int) ([]domain.Candidate, error) {
	if topK <= 0 {
		return nil, nil
	}

	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", errors.Join(domain.ErrStoreUnavailable, err))
	}
	if n == 0 {
		return nil, domain.ErrEmptyStore
	}

	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if err := s.ensureReady(ctx, len(res.Embedding)); err != nil {
		return nil, err
	}

	candidates, err := s.repo.SearchKNN(ctx, res.Embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", errors.Join(domain.ErrStoreUnavailable, err))
	}
	return candidates, nil
}

// Count reports how many articles are stored.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
