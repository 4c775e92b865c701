// Package retriever maps user preferences onto nearest-neighbor queries
// against the article store.
package retriever

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/article"
	"github.com/aithena-cloud/aithena/internal/domain/preference"
	"github.com/aithena-cloud/aithena/internal/logger"
)

// Service retrieves candidate articles per preference.
type Service struct {
	index Index
}

func New(index Index) *Service {
	return &Service{index: index}
}

// Ingest stores a batch of articles, deduplicating against what is
// already indexed.
func (s *Service) Ingest(ctx context.Context, articles []article.Article) (domain.UpsertReport, error) {
	return s.index.Upsert(ctx, articles)
}

// Retrieve runs one nearest-neighbor query per preference and returns the
// candidate lists in preference order, plus the number of preferences whose
// query failed. An empty store yields empty lists rather than an error, and
// a query failure (such as an embedding failure for one preference's query
// text) leaves only that preference's list empty; the whole call fails only
// when the store itself is unavailable. Each list is independent and lists
// for different preferences may overlap.
func (s *Service) Retrieve(ctx context.Context, prefs []preference.Preference, k int) ([][]domain.Candidate, int, error) {
	log := logger.FromContext(ctx)

	failed := 0
	results := make([][]domain.Candidate, len(prefs))
	for i := range prefs {
		candidates, err := s.index.Query(ctx, prefs[i].Query(), k)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrEmptyStore):
				log.Warn("article store is empty, nothing to retrieve",
					zap.String("preference", prefs[i].Name()))
				return results, failed, nil
			case errors.Is(err, domain.ErrStoreUnavailable):
				return nil, failed, fmt.Errorf("retrieve for preference %q: %w", prefs[i].Name(), err)
			default:
				log.Warn("retrieval failed, leaving this preference empty",
					zap.String("preference", prefs[i].Name()),
					zap.Error(err))
				failed++
				continue
			}
		}
		results[i] = candidates
	}
	return results, failed, nil
}
