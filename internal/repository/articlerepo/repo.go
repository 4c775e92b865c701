package articlerepo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aithena-cloud/aithena/internal/db"
	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/article"
)

// store is the consumer interface for the article repository (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// HNSWConfig holds HNSW index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo stores articles and their embedding vectors as Redis hashes behind
// an FT vector index. Implements usecase/index.Repository.
type Repo struct {
	store     store
	keyPrefix string
	hnsw      HNSWConfig
}

// New creates an article repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// WithHNSW configures HNSW index build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureReady creates the FT vector index if it does not exist yet.
// dim fixes the vector dimension for the index lifetime.
func (r *Repo) EnsureReady(ctx context.Context, dim int) error {
	idxName := r.indexName()

	exists, err := r.store.IndexExists(ctx, idxName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", idxName, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(idxName).
		Prefix(r.keyPrefix + "article:").
		Numeric(fieldPublishedAt).
		Numeric(fieldInsertedAt).
		Tag(fieldTopics).
		VectorHNSW(fieldVector, dim, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", idxName, err)
	}
	return nil
}

// Exists reports whether an article with the given ID is already stored.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, r.articleKey(id))
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", id, err)
	}
	return ok, nil
}

// Insert persists an article together with its embedding vector in a single
// HSET: the article is never visible without its vector.
func (r *Repo) Insert(ctx context.Context, art *article.Article) error {
	if len(art.Vector()) == 0 {
		return fmt.Errorf("article %s has no vector", art.ID())
	}
	if err := r.store.HSet(ctx, r.articleKey(art.ID()), buildHashFields(art)); err != nil {
		return fmt.Errorf("hset %s: %w", art.ID(), err)
	}
	return nil
}

// Count returns the number of stored articles.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.indexName(), "*")
	if err != nil {
		return 0, fmt.Errorf("search count: %w", err)
	}
	return n, nil
}

// SearchKNN returns the topK most similar stored articles for the query
// vector, in descending similarity order. Ties are broken by most recent
// published_at, then insertion order, so results are deterministic even
// when the backend returns equal-score hits in arbitrary order.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, topK int) ([]domain.Candidate, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		Vector:       vector,
		K:            topK,
		ReturnFields: returnFields(),
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	if res == nil || len(res.Entries) == 0 {
		return nil, nil
	}

	hits := make([]hit, 0, len(res.Entries))
	for _, entry := range res.Entries {
		id := r.extractID(entry.Key)
		hits = append(hits, parseHit(id, entry.Score, entry.Fields))
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].less(&hits[j]) })

	out := make([]domain.Candidate, 0, len(hits))
	for i := range hits {
		out = append(out, domain.Candidate{
			Article:       hits[i].article,
			SemanticScore: hits[i].score,
		})
	}
	return out, nil
}

func (r *Repo) articleKey(id string) string {
	return r.keyPrefix + "article:" + id
}

func (r *Repo) indexName() string {
	return r.keyPrefix + "articles:idx"
}

func (r *Repo) extractID(key string) string {
	prefix := r.keyPrefix + "article:"
	if len(key) > len(prefix) && key[:len(prefix)] == prefix {
		return key[len(prefix):]
	}
	return key
}
