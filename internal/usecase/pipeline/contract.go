package pipeline

import (
	"context"

	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/article"
	"github.com/aithena-cloud/aithena/internal/domain/preference"
)

// Retriever ingests fresh articles and retrieves candidates per preference.
// Retrieve also reports how many preferences failed their query; those keep
// an empty candidate list.
type Retriever interface {
	Ingest(ctx context.Context, articles []article.Article) (domain.UpsertReport, error)
	Retrieve(ctx context.Context, prefs []preference.Preference, k int) ([][]domain.Candidate, int, error)
}

// Ranker re-orders candidates lexically and applies per-preference quotas.
type Ranker interface {
	Rank(ctx context.Context, prefs []preference.Preference, candidatesByPref [][]domain.Candidate) [][]domain.RankedArticle
	Distribute(ranked [][]domain.RankedArticle, quota int) [][]domain.RankedArticle
}

// Summarizer condenses article text for the digest.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}

// Source supplies fresh articles for the run's topics. Optional; a run
// without a source works purely from what is already stored.
type Source interface {
	FetchFresh(ctx context.Context, topics []string) ([]article.Article, error)
}
