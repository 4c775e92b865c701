package retriever

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/article"
	"github.com/aithena-cloud/aithena/internal/domain/preference"
)

type mockIndex struct {
	upsertReport domain.UpsertReport
	upsertErr    error

	queries   []string
	topKs     []int
	responses map[string][]domain.Candidate
	queryErr  error
	errFor    map[string]error // per-query errors, keyed by query text
}

func (m *mockIndex) Upsert(_ context.Context, _ []article.Article) (domain.UpsertReport, error) {
	return m.upsertReport, m.upsertErr
}

func (m *mockIndex) Query(_ context.Context, text string, topK int) ([]domain.Candidate, error) {
	m.queries = append(m.queries, text)
	m.topKs = append(m.topKs, topK)
	if err, ok := m.errFor[text]; ok {
		return nil, err
	}
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.responses[text], nil
}

func makePref(t *testing.T, name string, keywords ...string) preference.Preference {
	t.Helper()
	p, err := preference.New(name, keywords)
	if err != nil {
		t.Fatalf("preference.New: %v", err)
	}
	return p
}

func makeCandidate(t *testing.T, id string, score float64) domain.Candidate {
	t.Helper()
	art, err := article.New(id, "t", "body", "src", "", time.Unix(1700000000, 0), nil)
	if err != nil {
		t.Fatalf("article.New: %v", err)
	}
	return domain.Candidate{Article: art, SemanticScore: score}
}

func TestRetrieve_QueryPerPreference(t *testing.T) {
	idx := &mockIndex{responses: map[string][]domain.Candidate{
		"news about tech":    {makeCandidate(t, "a-1", 0.9)},
		"news about finance": {makeCandidate(t, "a-2", 0.8), makeCandidate(t, "a-3", 0.7)},
	}}
	svc := New(idx)

	prefs := []preference.Preference{makePref(t, "tech"), makePref(t, "finance")}
	got, failed, err := svc.Retrieve(context.Background(), prefs, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed != 0 {
		t.Errorf("expected no failed preferences, got %d", failed)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidate lists, got %d", len(got))
	}
	if len(got[0]) != 1 || got[0][0].Article.ID() != "a-1" {
		t.Errorf("unexpected tech candidates: %+v", got[0])
	}
	if len(got[1]) != 2 {
		t.Errorf("expected 2 finance candidates, got %d", len(got[1]))
	}
	if idx.topKs[0] != 25 || idx.topKs[1] != 25 {
		t.Errorf("expected topK=25 for every query, got %v", idx.topKs)
	}
}

func TestRetrieve_EmptyStoreYieldsEmptyLists(t *testing.T) {
	idx := &mockIndex{queryErr: domain.ErrEmptyStore}
	svc := New(idx)

	prefs := []preference.Preference{makePref(t, "tech"), makePref(t, "finance")}
	got, failed, err := svc.Retrieve(context.Background(), prefs, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed != 0 {
		t.Errorf("empty store is not a failure, got %d", failed)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(got))
	}
	for i, list := range got {
		if len(list) != 0 {
			t.Errorf("list %d: expected empty, got %+v", i, list)
		}
	}
}

func TestRetrieve_StoreUnavailableIsFatal(t *testing.T) {
	idx := &mockIndex{queryErr: fmt.Errorf("count articles: %w",
		errors.Join(domain.ErrStoreUnavailable, errors.New("connection refused")))}
	svc := New(idx)

	_, _, err := svc.Retrieve(context.Background(), []preference.Preference{makePref(t, "tech")}, 5)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestRetrieve_QueryFailureIsolatedPerPreference(t *testing.T) {
	// An embedding failure for one preference's query text must not cost
	// the other preferences their candidates.
	idx := &mockIndex{
		responses: map[string][]domain.Candidate{
			"news about finance": {makeCandidate(t, "a-2", 0.8)},
		},
		errFor: map[string]error{
			"news about politics": errors.New("embed query: provider error"),
		},
	}
	svc := New(idx)

	prefs := []preference.Preference{makePref(t, "politics"), makePref(t, "finance")}
	got, failed, err := svc.Retrieve(context.Background(), prefs, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed != 1 {
		t.Errorf("expected 1 failed preference, got %d", failed)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 lists, got %d", len(got))
	}
	if len(got[0]) != 0 {
		t.Errorf("failed preference must stay empty, got %+v", got[0])
	}
	if len(got[1]) != 1 || got[1][0].Article.ID() != "a-2" {
		t.Errorf("surviving preference lost its candidates: %+v", got[1])
	}
	if len(idx.queries) != 2 {
		t.Errorf("both preferences must be queried, got %v", idx.queries)
	}
}

func TestRetrieve_NoPreferences(t *testing.T) {
	idx := &mockIndex{}
	svc := New(idx)

	got, failed, err := svc.Retrieve(context.Background(), nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed != 0 {
		t.Errorf("expected no failures, got %d", failed)
	}
	if len(got) != 0 {
		t.Errorf("expected no lists, got %d", len(got))
	}
	if len(idx.queries) != 0 {
		t.Error("no queries expected")
	}
}

func TestIngest_Delegates(t *testing.T) {
	idx := &mockIndex{upsertReport: domain.UpsertReport{Added: 2, Duplicates: 1}}
	svc := New(idx)

	report, err := svc.Ingest(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Added != 2 || report.Duplicates != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}
