package index

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aithena-cloud/aithena/internal/domain"
	"github.com/aithena-cloud/aithena/internal/domain/article"
)

// --- Mocks ---

type mockRepo struct {
	readyErr   error
	readyDim   int
	readyCalls int

	existing map[string]bool
	existErr error

	inserted  []article.Article
	insertErr error

	count    int
	countErr error

	knnResult []domain.Candidate
	knnErr    error
	knnVector []float32
	knnTopK   int
}

func (m *mockRepo) EnsureReady(_ context.Context, dim int) error {
	m.readyCalls++
	m.readyDim = dim
	return m.readyErr
}

func (m *mockRepo) Exists(_ context.Context, id string) (bool, error) {
	if m.existErr != nil {
		return false, m.existErr
	}
	return m.existing[id], nil
}

func (m *mockRepo) Insert(_ context.Context, art *article.Article) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, *art)
	return nil
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.count, nil
}

func (m *mockRepo) SearchKNN(_ context.Context, vector []float32, topK int) ([]domain.Candidate, error) {
	m.knnVector = vector
	m.knnTopK = topK
	return m.knnResult, m.knnErr
}

type mockEmbedder struct {
	vectors map[string][]float32
	dim     int
	errFor  map[string]error
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if err, ok := m.errFor[text]; ok {
		return domain.EmbeddingResult{}, err
	}
	if v, ok := m.vectors[text]; ok {
		return domain.EmbeddingResult{Embedding: v}, nil
	}
	dim := m.dim
	if dim == 0 {
		dim = 3
	}
	return domain.EmbeddingResult{Embedding: make([]float32, dim)}, nil
}

func makeArticle(t *testing.T, id, title, text string) article.Article {
	t.Helper()
	art, err := article.New(id, title, text, "src", "https://example.com/"+id, time.Unix(1700000000, 0), nil)
	if err != nil {
		t.Fatalf("article.New: %v", err)
	}
	return art
}

// --- Upsert tests ---

func TestUpsert_AddsNewArticles(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{dim: 3}
	svc := New(repo, embed, 0)

	arts := []article.Article{
		makeArticle(t, "a-1", "One", "first body"),
		makeArticle(t, "a-2", "Two", "second body"),
	}

	report, err := svc.Upsert(context.Background(), arts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Added != 2 || report.Duplicates != 0 || report.Skipped != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(repo.inserted) != 2 {
		t.Fatalf("expected 2 inserts, got %d", len(repo.inserted))
	}
	if repo.inserted[0].Vector() == nil {
		t.Error("inserted article has no vector")
	}
	if repo.readyDim != 3 {
		t.Errorf("expected index prepared for dim 3, got %d", repo.readyDim)
	}
}

func TestUpsert_SkipsDuplicatesWithoutEmbedding(t *testing.T) {
	repo := &mockRepo{existing: map[string]bool{"a-1": true}}
	embed := &mockEmbedder{dim: 3}
	svc := New(repo, embed, 0)

	arts := []article.Article{
		makeArticle(t, "a-1", "One", "first body"),
		makeArticle(t, "a-2", "Two", "second body"),
	}

	report, err := svc.Upsert(context.Background(), arts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Added != 1 || report.Duplicates != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	// Duplicates must not cost an embedding call.
	if embed.calls != 1 {
		t.Errorf("expected 1 embed call, got %d", embed.calls)
	}
}

func TestUpsert_EmbedFailureSkipsArticle(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{
		dim:    3,
		errFor: map[string]error{"One first body": domain.NewEmbeddingError("a-1", errors.New("boom"))},
	}
	svc := New(repo, embed, 0)

	arts := []article.Article{
		makeArticle(t, "a-1", "One", "first body"),
		makeArticle(t, "a-2", "Two", "second body"),
	}

	report, err := svc.Upsert(context.Background(), arts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Added != 1 || report.Skipped != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].ID() != "a-2" {
		t.Errorf("expected only a-2 inserted, got %+v", repo.inserted)
	}
}

func TestUpsert_DimensionMismatchSkipsArticle(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{vectors: map[string][]float32{
		"One first body":  {0.1, 0.2, 0.3},
		"Two second body": {0.1, 0.2},
	}}
	svc := New(repo, embed, 0)

	arts := []article.Article{
		makeArticle(t, "a-1", "One", "first body"),
		makeArticle(t, "a-2", "Two", "second body"),
	}

	report, err := svc.Upsert(context.Background(), arts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Added != 1 || report.Skipped != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestUpsert_ConfiguredDimensionRejectsMismatch(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{dim: 3}
	svc := New(repo, embed, 4)

	report, err := svc.Upsert(context.Background(), []article.Article{makeArticle(t, "a-1", "One", "body")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Skipped != 1 || report.Added != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if repo.readyCalls != 0 {
		t.Error("index must not be prepared for a mismatched dimension")
	}
}

func TestUpsert_InsertErrorIsFatal(t *testing.T) {
	repo := &mockRepo{insertErr: errors.New("connection refused")}
	embed := &mockEmbedder{dim: 3}
	svc := New(repo, embed, 0)

	_, err := svc.Upsert(context.Background(), []article.Article{makeArticle(t, "a-1", "One", "body")})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestUpsert_ExistsErrorIsFatal(t *testing.T) {
	repo := &mockRepo{existErr: errors.New("connection refused")}
	embed := &mockEmbedder{dim: 3}
	svc := New(repo, embed, 0)

	_, err := svc.Upsert(context.Background(), []article.Article{makeArticle(t, "a-1", "One", "body")})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestUpsert_Empty(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo, &mockEmbedder{dim: 3}, 0)

	report, err := svc.Upsert(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report != (domain.UpsertReport{}) {
		t.Errorf("expected zero report, got %+v", report)
	}
}

// --- Query tests ---

func TestQuery_ReturnsCandidates(t *testing.T) {
	want := []domain.Candidate{
		{Article: makeArticle(t, "a-1", "One", "body"), SemanticScore: 0.9},
	}
	repo := &mockRepo{count: 1, knnResult: want}
	embed := &mockEmbedder{vectors: map[string][]float32{"news about tech": {0.1, 0.2, 0.3}}}
	svc := New(repo, embed, 0)

	got, err := svc.Query(context.Background(), "news about tech", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Article.ID() != "a-1" {
		t.Errorf("unexpected candidates: %+v", got)
	}
	if repo.knnTopK != 5 {
		t.Errorf("expected topK=5, got %d", repo.knnTopK)
	}
}

func TestQuery_EmptyStore(t *testing.T) {
	repo := &mockRepo{count: 0}
	svc := New(repo, &mockEmbedder{dim: 3}, 0)

	_, err := svc.Query(context.Background(), "anything", 5)
	if !errors.Is(err, domain.ErrEmptyStore) {
		t.Errorf("expected ErrEmptyStore, got %v", err)
	}
}

func TestQuery_NonPositiveTopK(t *testing.T) {
	repo := &mockRepo{count: 10}
	embed := &mockEmbedder{dim: 3}
	svc := New(repo, embed, 0)

	got, err := svc.Query(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil result, got %+v", got)
	}
	if embed.calls != 0 {
		t.Error("embedder must not be called for topK=0")
	}
}

func TestQuery_EmbedError(t *testing.T) {
	repo := &mockRepo{count: 3}
	embed := &mockEmbedder{errFor: map[string]error{"q": errors.New("rate limited")}}
	svc := New(repo, embed, 0)

	_, err := svc.Query(context.Background(), "q", 5)
	if err == nil {
		t.Fatal("expected error")
	}
}
