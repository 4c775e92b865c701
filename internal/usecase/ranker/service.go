// Package ranker re-orders retrieved candidates by lexical relevance to
// each preference's keyword profile, using a TF-IDF vector space fitted
// on the current run's candidates.
package ranker

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/preference"
	"github.com/aithena-cloud/aithena/internal/logger"
)

// Service scores and distributes candidate articles.
type Service struct{}

func New() *Service {
	return &Service{}
}

// Rank scores every candidate list against its preference's keyword profile
// and returns the lists re-ordered, parallel to prefs. The TF-IDF space is
// fitted on the union of all candidates in the run (deduplicated by article
// ID), so an article shared by two preferences gets one vector. A profile
// with no vocabulary overlap scores exactly 0 and sorts last; it is never
// dropped. When no candidate text can be tokenized the lexical scores are
// all zero and the semantic order stands.
func (s *Service) Rank(ctx context.Context, prefs []preference.Preference, candidatesByPref [][]domain.Candidate) [][]domain.RankedArticle {
	log := logger.FromContext(ctx)

	// Corpus: candidate union by ID, in first-seen order.
	seen := make(map[string]int)
	var corpus []string
	var vectors [][]float64
	for _, list := range candidatesByPref {
		for i := range list {
			id := list[i].Article.ID()
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = len(corpus)
			corpus = append(corpus, list[i].Article.EmbeddingText())
		}
	}

	vec := newVectorizer()
	fitted := false
	if len(corpus) > 0 {
		if err := vec.fit(corpus); err != nil {
			log.Warn("lexical ranking disabled, falling back to semantic order", zap.Error(err))
		} else {
			fitted = true
			vectors = make([][]float64, len(corpus))
			for idx := range corpus {
				v, err := vec.vectorize(corpus[idx])
				if err != nil {
					log.Warn("vectorize candidate failed", zap.Error(err))
					v = make([]float64, vec.dimension)
				}
				vectors[idx] = v
			}
		}
	}

	ranked := make([][]domain.RankedArticle, len(candidatesByPref))
	for p, list := range candidatesByPref {
		var profile []float64
		if fitted && p < len(prefs) {
			v, err := vec.vectorize(prefs[p].Profile())
			if err == nil {
				profile = v
			}
		}

		out := make([]domain.RankedArticle, len(list))
		for i := range list {
			lexical := 0.0
			if profile != nil {
				lexical = cosine(vectors[seen[list[i].Article.ID()]], profile)
			}
			out[i] = domain.RankedArticle{
				Article:       list[i].Article,
				SemanticScore: list[i].SemanticScore,
				LexicalScore:  lexical,
			}
		}
		sort.SliceStable(out, func(a, b int) bool {
			if out[a].LexicalScore != out[b].LexicalScore {
				return out[a].LexicalScore > out[b].LexicalScore
			}
			if out[a].SemanticScore != out[b].SemanticScore {
				return out[a].SemanticScore > out[b].SemanticScore
			}
			return out[a].Article.ID() < out[b].Article.ID()
		})
		ranked[p] = out
	}
	return ranked
}

// Distribute truncates each ranked list to at most quota articles. Lists are
// independent; a shorter list is returned as-is, and the same article may
// appear under several preferences.
func (s *Service) Distribute(ranked [][]domain.RankedArticle, quota int) [][]domain.RankedArticle {
	if quota < 0 {
		quota = 0
	}
	out := make([][]domain.RankedArticle, len(ranked))
	for i, list := range ranked {
		if len(list) > quota {
			list = list[:quota]
		}
		out[i] = list
	}
	return out
}
