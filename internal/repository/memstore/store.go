package memstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/article"
)

// Store is a brute-force in-memory article store using cosine similarity.
// It implements the same contract as the Redis-backed repository and is the
// default driver when no database is configured.
type Store struct {
	mu   sync.RWMutex
	dim  int
	byID map[string]int
	recs []record
}

type record struct {
	article article.Article
	seq     int
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{byID: make(map[string]int)}
}

// EnsureReady fixes the vector dimension for the store lifetime.
func (s *Store) EnsureReady(_ context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid dimension %d", dim)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dim != 0 && s.dim != dim {
		return fmt.Errorf("dimension %d does not match store dimension %d: %w",
			dim, s.dim, domain.ErrDimensionMismatch)
	}
	s.dim = dim
	return nil
}

// Exists reports whether an article with the given ID is already stored.
func (s *Store) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok, nil
}

// Insert stores an article with its vector. The article and vector are kept
// together in one record, so neither is visible without the other.
func (s *Store) Insert(_ context.Context, art *article.Article) error {
	vec := art.Vector()
	if len(vec) == 0 {
		return fmt.Errorf("article %s has no vector", art.ID())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dim == 0 {
		s.dim = len(vec)
	}
	if len(vec) != s.dim {
		return fmt.Errorf("article %s: vector dim %d, store dim %d: %w",
			art.ID(), len(vec), s.dim, domain.ErrDimensionMismatch)
	}
	if _, ok := s.byID[art.ID()]; ok {
		return nil // idempotent: first write wins
	}

	s.byID[art.ID()] = len(s.recs)
	s.recs = append(s.recs, record{article: *art, seq: len(s.recs)})
	return nil
}

// Count returns the number of stored articles.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs), nil
}

// SearchKNN scores every stored vector against the query and returns the
// topK most similar articles in descending similarity order. Ties are broken
// by most recent published_at, then insertion order, then ID.
func (s *Store) SearchKNN(_ context.Context, vector []float32, topK int) ([]domain.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 || len(s.recs) == 0 {
		return nil, nil
	}

	type scored struct {
		rec   *record
		score float64
	}
	all := make([]scored, len(s.recs))
	for i := range s.recs {
		all[i] = scored{
			rec:   &s.recs[i],
			score: cosine(vector, s.recs[i].article.Vector()),
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		pi, pj := all[i].rec.article.PublishedAt(), all[j].rec.article.PublishedAt()
		if !pi.Equal(pj) {
			return pi.After(pj)
		}
		if all[i].rec.seq != all[j].rec.seq {
			return all[i].rec.seq < all[j].rec.seq
		}
		return all[i].rec.article.ID() < all[j].rec.article.ID()
	})

	if topK > len(all) {
		topK = len(all)
	}

	out := make([]domain.Candidate, 0, topK)
	for i := 0; i < topK; i++ {
		art := all[i].rec.article.WithVector(nil) // vectors are not exposed to callers
		out = append(out, domain.Candidate{Article: art, SemanticScore: all[i].score})
	}
	return out, nil
}

// cosine computes cosine similarity without assuming normalized vectors.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
