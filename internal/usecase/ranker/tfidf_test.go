package ranker

import (
	"math"
	"testing"
)

func TestVectorizer_FitEmptyCorpus(t *testing.T) {
	v := newVectorizer()
	if err := v.fit(nil); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestVectorizer_FitStopwordsOnly(t *testing.T) {
	v := newVectorizer()
	if err := v.fit([]string{"the and or", "is was been"}); err == nil {
		t.Fatal("expected error when corpus has no usable tokens")
	}
}

func TestVectorizer_VectorsAreNormalized(t *testing.T) {
	v := newVectorizer()
	corpus := []string{
		"central bank raises interest rates",
		"football team wins championship final",
	}
	if err := v.fit(corpus); err != nil {
		t.Fatalf("fit: %v", err)
	}
	vec, err := v.vectorize(corpus[0])
	if err != nil {
		t.Fatalf("vectorize: %v", err)
	}
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("expected unit norm, got %v", math.Sqrt(norm))
	}
}

func TestVectorizer_OutOfVocabularyYieldsZeroVector(t *testing.T) {
	v := newVectorizer()
	if err := v.fit([]string{"stocks bonds markets"}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	vec, err := v.vectorize("quantum entanglement research")
	if err != nil {
		t.Fatalf("vectorize: %v", err)
	}
	for i, x := range vec {
		if x != 0 {
			t.Fatalf("component %d: expected 0, got %v", i, x)
		}
	}
}

func TestVectorizer_VectorizeBeforeFit(t *testing.T) {
	v := newVectorizer()
	if _, err := v.vectorize("anything"); err == nil {
		t.Fatal("expected error before fit")
	}
}

func TestVectorizer_Deterministic(t *testing.T) {
	corpus := []string{
		"election results announced today",
		"market rally continues strong",
		"election coverage market reaction",
	}
	a := newVectorizer()
	b := newVectorizer()
	if err := a.fit(corpus); err != nil {
		t.Fatalf("fit a: %v", err)
	}
	if err := b.fit(corpus); err != nil {
		t.Fatalf("fit b: %v", err)
	}
	va, _ := a.vectorize(corpus[2])
	vb, _ := b.vectorize(corpus[2])
	if len(va) != len(vb) {
		t.Fatalf("dimension mismatch: %d vs %d", len(va), len(vb))
	}
	for i := range va {
		if va[i] != vb[i] {
			t.Fatalf("component %d differs: %v vs %v", i, va[i], vb[i])
		}
	}
}

func TestCosine_Zero(t *testing.T) {
	if got := cosine([]float64{0, 0}, []float64{1, 0}); got != 0 {
		t.Errorf("expected 0 for zero vector, got %v", got)
	}
}

func TestCosine_Identical(t *testing.T) {
	v := []float64{0.6, 0.8}
	if got := cosine(v, v); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("expected 1.0, got %v", got)
	}
}
