package ranker

import (
	"context"
	"testing"
	"time"

	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/article"
	"github.com/aithena-cloud/aithena/internal/domain/preference"
)

func makePref(t *testing.T, name string, keywords ...string) preference.Preference {
	t.Helper()
	p, err := preference.New(name, keywords)
	if err != nil {
		t.Fatalf("preference.New: %v", err)
	}
	return p
}

func makeCandidate(t *testing.T, id, title, text string, semantic float64) domain.Candidate {
	t.Helper()
	art, err := article.New(id, title, text, "src", "", time.Unix(1700000000, 0), nil)
	if err != nil {
		t.Fatalf("article.New: %v", err)
	}
	return domain.Candidate{Article: art, SemanticScore: semantic}
}

func ids(list []domain.RankedArticle) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].Article.ID()
	}
	return out
}

func TestRank_LexicalOverlapWins(t *testing.T) {
	prefs := []preference.Preference{makePref(t, "finance", "markets", "stocks")}
	candidates := [][]domain.Candidate{{
		makeCandidate(t, "a-sports", "Cup final", "the team won the cup final in extra time", 0.95),
		makeCandidate(t, "a-markets", "Stocks rally", "stocks climbed as markets rallied on earnings", 0.40),
	}}

	ranked := New().Rank(context.Background(), prefs, candidates)
	if len(ranked) != 1 || len(ranked[0]) != 2 {
		t.Fatalf("unexpected shape: %+v", ranked)
	}
	if ranked[0][0].Article.ID() != "a-markets" {
		t.Errorf("expected lexical match first, got %v", ids(ranked[0]))
	}
	if ranked[0][0].LexicalScore <= ranked[0][1].LexicalScore {
		t.Errorf("expected strictly higher lexical score first: %v vs %v",
			ranked[0][0].LexicalScore, ranked[0][1].LexicalScore)
	}
}

func TestRank_ZeroOverlapScoresZeroAndRanksLast(t *testing.T) {
	prefs := []preference.Preference{makePref(t, "aerospace", "rockets")}
	candidates := [][]domain.Candidate{{
		makeCandidate(t, "a-1", "Rocket launch", "rockets lifted off from the coastal pad", 0.2),
		makeCandidate(t, "a-2", "Recipe corner", "butter flour sugar eggs whisk gently", 0.9),
	}}

	ranked := New().Rank(context.Background(), prefs, candidates)
	list := ranked[0]
	if list[len(list)-1].Article.ID() != "a-2" {
		t.Errorf("expected zero-overlap article last, got %v", ids(list))
	}
	if list[len(list)-1].LexicalScore != 0 {
		t.Errorf("expected exact zero lexical score, got %v", list[len(list)-1].LexicalScore)
	}
	if len(list) != 2 {
		t.Error("zero-overlap articles must not be excluded")
	}
}

func TestRank_TiesFallBackToSemanticThenID(t *testing.T) {
	// Profile shares no vocabulary with any candidate, so every lexical
	// score is 0 and ties resolve by semantic score, then ID.
	prefs := []preference.Preference{makePref(t, "zzz", "xylophone")}
	candidates := [][]domain.Candidate{{
		makeCandidate(t, "a-b", "t", "alpha beta gamma", 0.5),
		makeCandidate(t, "a-a", "t", "delta epsilon zeta", 0.5),
		makeCandidate(t, "a-c", "t", "eta theta iota", 0.8),
	}}

	ranked := New().Rank(context.Background(), prefs, candidates)
	got := ids(ranked[0])
	want := []string{"a-c", "a-a", "a-b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestRank_SharedCorpusAcrossPreferences(t *testing.T) {
	// The same article retrieved under two preferences must carry the same
	// vector: lexical scores against the same profile are identical.
	shared := makeCandidate(t, "a-shared", "Budget vote", "parliament passed the national budget", 0.5)
	prefs := []preference.Preference{
		makePref(t, "politics", "parliament"),
		makePref(t, "politics", "parliament"),
	}
	candidates := [][]domain.Candidate{{shared}, {shared}}

	ranked := New().Rank(context.Background(), prefs, candidates)
	if ranked[0][0].LexicalScore != ranked[1][0].LexicalScore {
		t.Errorf("expected identical lexical scores, got %v and %v",
			ranked[0][0].LexicalScore, ranked[1][0].LexicalScore)
	}
}

func TestRank_EmptyCandidates(t *testing.T) {
	prefs := []preference.Preference{makePref(t, "tech")}
	ranked := New().Rank(context.Background(), prefs, [][]domain.Candidate{nil})
	if len(ranked) != 1 || len(ranked[0]) != 0 {
		t.Errorf("expected one empty list, got %+v", ranked)
	}
}

func TestRank_Deterministic(t *testing.T) {
	prefs := []preference.Preference{makePref(t, "finance", "markets", "rates")}
	candidates := [][]domain.Candidate{{
		makeCandidate(t, "a-1", "Rates up", "central bank raised rates amid markets turmoil", 0.7),
		makeCandidate(t, "a-2", "Earnings", "quarterly earnings beat markets expectations", 0.6),
		makeCandidate(t, "a-3", "Storm", "heavy rain flooded coastal towns overnight", 0.9),
	}}

	svc := New()
	first := ids(svc.Rank(context.Background(), prefs, candidates)[0])
	for run := 0; run < 5; run++ {
		got := ids(svc.Rank(context.Background(), prefs, candidates)[0])
		for i := range first {
			if got[i] != first[i] {
				t.Fatalf("run %d: order changed from %v to %v", run, first, got)
			}
		}
	}
}

func TestDistribute_Truncates(t *testing.T) {
	ranked := [][]domain.RankedArticle{
		{
			{Article: makeCandidate(t, "a-1", "t", "x", 0).Article},
			{Article: makeCandidate(t, "a-2", "t", "x", 0).Article},
			{Article: makeCandidate(t, "a-3", "t", "x", 0).Article},
		},
		{
			{Article: makeCandidate(t, "a-4", "t", "x", 0).Article},
		},
	}

	out := New().Distribute(ranked, 2)
	if len(out[0]) != 2 {
		t.Errorf("expected first list truncated to 2, got %d", len(out[0]))
	}
	if len(out[1]) != 1 {
		t.Errorf("short lists must pass through, got %d", len(out[1]))
	}
	if out[0][0].Article.ID() != "a-1" || out[0][1].Article.ID() != "a-2" {
		t.Errorf("truncation must keep the best-ranked prefix, got %v", ids(out[0]))
	}
}

func TestDistribute_ZeroQuota(t *testing.T) {
	ranked := [][]domain.RankedArticle{{
		{Article: makeCandidate(t, "a-1", "t", "x", 0).Article},
	}}
	out := New().Distribute(ranked, 0)
	if len(out[0]) != 0 {
		t.Errorf("expected empty list for zero quota, got %d", len(out[0]))
	}
}
