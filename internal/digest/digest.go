// Package digest assembles ranked, summarized articles into a deliverable
// digest and ships it over the configured channels.
package digest

import (
	"context"
	"time"
)

// Item is one article entry in a digest section.
type Item struct {
	ID            string
	Title         string
	Summary       string
	Source        string
	URL           string
	SemanticScore float64
	LexicalScore  float64
}

// Section groups the items selected for one preference.
type Section struct {
	Preference string
	Items      []Item
}

// Digest is the assembled result of a pipeline run.
type Digest struct {
	UserName    string
	GeneratedAt time.Time
	Sections    []Section
}

// Empty reports whether the digest contains no items at all.
func (d Digest) Empty() bool {
	for _, s := range d.Sections {
		if len(s.Items) > 0 {
			return false
		}
	}
	return true
}

// ItemCount returns the total number of items across all sections.
func (d Digest) ItemCount() int {
	n := 0
	for _, s := range d.Sections {
		n += len(s.Items)
	}
	return n
}

// Deliverer ships a rendered digest over one channel (file, email).
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, d Digest) error
}
