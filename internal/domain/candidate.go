package domain

import "github.com/aithena-cloud/aithena/internal/domain/article"

// Candidate is a single semantic-search hit for one preference, pre-ranking.
// Ephemeral: produced by one nearest-neighbor query, never persisted.
type Candidate struct {
	Article       article.Article
	SemanticScore float64
}

// RankedArticle is a candidate after lexical re-scoring by the ranker.
type RankedArticle struct {
	Article       article.Article
	SemanticScore float64
	LexicalScore  float64
}
