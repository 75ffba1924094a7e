// Package profession holds the static table of canonical professions and the
// matcher that assigns a vacancy title to one of them.
package profession

import (
	"strings"

	"github.com/project-tktt/vacancy-hub/internal/domain"
)

type CanonicalProfession struct {
	Name           string
	Category       string
	Synonyms       []string
	SourceMappings map[domain.Source][]string
}

// TitlesFor returns the titles a source uses for this profession.
// Sources without a mapping fall back to the canonical name.
func (p *CanonicalProfession) TitlesFor(source domain.Source) []string {
	if titles := p.SourceMappings[source]; len(titles) > 0 {
		return titles
	}
	return []string{p.Name}
}

// All returns the table. Callers must not modify it.
func All() []CanonicalProfession {
	return canonical
}

// Names returns every canonical name in table order
func Names() []string {
	names := make([]string, len(canonical))
	for i := range canonical {
		names[i] = canonical[i].Name
	}
	return names
}

// DetermineCategory maps a title to a canonical profession name, "" when nothing matches.
func DetermineCategory(title string, source domain.Source) string {
	if p := Resolve(title, source); p != nil {
		return p.Name
	}
	return ""
}

// Resolve finds the canonical profession for a title or query.
// Tiers, first hit wins: exact name, exact synonym, exact source-mapped
// title, canonical name contained in the title.
func Resolve(title string, source domain.Source) *CanonicalProfession {
	t := Fold(title)
	if t == "" {
		return nil
	}
	if p := exact(t, source); p != nil {
		return p
	}
	for i := range canonical {
		if strings.Contains(t, Fold(canonical[i].Name)) {
			return &canonical[i]
		}
	}
	return nil
}

// Anchor resolves a query with the exact tiers only, checking the mapped
// titles of every source.
func Anchor(query string) *CanonicalProfession {
	t := Fold(query)
	if t == "" {
		return nil
	}
	return exact(t, "")
}

// exact runs the first three tiers; an empty source matches any source mapping
func exact(t string, source domain.Source) *CanonicalProfession {
	for i := range canonical {
		if Fold(canonical[i].Name) == t {
			return &canonical[i]
		}
	}
	for i := range canonical {
		for _, syn := range canonical[i].Synonyms {
			if Fold(syn) == t {
				return &canonical[i]
			}
		}
	}
	for i := range canonical {
		for _, src := range domain.AllSources() {
			if source != "" && src != source {
				continue
			}
			for _, mapped := range canonical[i].SourceMappings[src] {
				if Fold(mapped) == t {
					return &canonical[i]
				}
			}
		}
	}
	return nil
}

// Find returns the profession with the given canonical name
func Find(name string) *CanonicalProfession {
	n := Fold(name)
	for i := range canonical {
		if Fold(canonical[i].Name) == n {
			return &canonical[i]
		}
	}
	return nil
}

// Fold lower-cases, trims and collapses whitespace for comparisons
func Fold(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.ReplaceAll(s, "ё", "е")
}
