package preference

import (
	"strings"

	"github.com/aithena-cloud/aithena/internal/domain"
)

// Preference is a named user interest category with a keyword profile.
// Preferences are independent of each other; an article may match several.
type Preference struct {
	name     string
	keywords []string
}

// New validates and creates a Preference. Name and keywords are trimmed;
// blank keywords are dropped. A preference with neither a name nor any
// keyword fails with domain.ErrInvalidPreference; that preference's result
// entry stays empty, other preferences are unaffected.
func New(name string, keywords []string) (Preference, error) {
	name = strings.TrimSpace(name)

	kept := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			kept = append(kept, kw)
		}
	}

	if name == "" && len(kept) == 0 {
		return Preference{}, domain.ErrInvalidPreference
	}

	return Preference{name: name, keywords: kept}, nil
}

// Name returns the category name.
func (p *Preference) Name() string { return p.name }

// Keywords returns the keyword profile.
func (p *Preference) Keywords() []string { return p.keywords }

// Query builds the retrieval query string for the semantic index.
func (p *Preference) Query() string {
	return strings.TrimSpace("news about " + p.Profile())
}

// Profile returns the keyword profile as a pseudo-document for lexical scoring.
func (p *Preference) Profile() string {
	parts := make([]string, 0, 1+len(p.keywords))
	if p.name != "" {
		parts = append(parts, p.name)
	}
	parts = append(parts, p.keywords...)
	return strings.Join(parts, " ")
}
