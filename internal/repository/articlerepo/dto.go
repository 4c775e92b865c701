package articlerepo

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aithena-cloud/aithena/internal/domain/article"
)

// Hash field names. All fields are engine-owned; there are no user fields.
const (
	fieldTitle       = "title"
	fieldText        = "text"
	fieldSource      = "source"
	fieldURL         = "url"
	fieldTopics      = "topics"
	fieldPublishedAt = "published_at" // unix seconds, 0 when unknown
	fieldInsertedAt  = "inserted_at"  // unix nanos, insertion-order tie-break
	fieldVector      = "vector"
)

func returnFields() []string {
	return []string{
		fieldTitle, fieldText, fieldSource, fieldURL,
		fieldTopics, fieldPublishedAt, fieldInsertedAt,
		"__vector_score",
	}
}

// buildHashFields converts an article into a flat map[string]string for HSET.
func buildHashFields(art *article.Article) map[string]string {
	var published int64
	if !art.PublishedAt().IsZero() {
		published = art.PublishedAt().Unix()
	}

	return map[string]string{
		fieldTitle:       art.Title(),
		fieldText:        art.Text(),
		fieldSource:      art.Source(),
		fieldURL:         art.URL(),
		fieldTopics:      strings.Join(art.Topics(), ","),
		fieldPublishedAt: strconv.FormatInt(published, 10),
		fieldInsertedAt:  strconv.FormatInt(time.Now().UnixNano(), 10),
		fieldVector:      vectorToBytes(art.Vector()),
	}
}

// hit is a search entry hydrated for deterministic ordering.
type hit struct {
	article    article.Article
	score      float64
	insertedAt int64
}

// less orders hits by score desc, then published_at desc, then insertion
// order, then ID for full determinism.
func (h *hit) less(other *hit) bool {
	if h.score != other.score {
		return h.score > other.score
	}
	hp, op := h.article.PublishedAt(), other.article.PublishedAt()
	if !hp.Equal(op) {
		return hp.After(op)
	}
	if h.insertedAt != other.insertedAt {
		return h.insertedAt < other.insertedAt
	}
	return h.article.ID() < other.article.ID()
}

// parseHit converts a flat hash map back into an article hit.
func parseHit(id string, score float64, m map[string]string) hit {
	var published time.Time
	if sec, err := strconv.ParseInt(m[fieldPublishedAt], 10, 64); err == nil && sec > 0 {
		published = time.Unix(sec, 0).UTC()
	}

	var topics []string
	if m[fieldTopics] != "" {
		topics = strings.Split(m[fieldTopics], ",")
	}

	insertedAt, _ := strconv.ParseInt(m[fieldInsertedAt], 10, 64)

	return hit{
		article: article.Reconstruct(
			id, m[fieldTitle], m[fieldText], m[fieldSource], m[fieldURL],
			published, topics, nil,
		),
		score:      score,
		insertedAt: insertedAt,
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
