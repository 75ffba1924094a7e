package domain

import (
	"sort"
	"strings"
	"time"
)

// Filters is the search vocabulary understood by every record store.
//
// Keywords OR-match title/category, Locations OR-match location by substring,
// SalaryMin matches salary_min >= X OR salary_max >= X, Experience/Schedule/
// Employment are OR lists, Skills must all be present.
type Filters struct {
	Keywords       []string     `json:"keywords,omitempty"`
	Locations      []string     `json:"locations,omitempty"`
	SalaryMin      *int         `json:"salary_min,omitempty"`
	Experience     []Experience `json:"experience,omitempty"`
	Schedule       []Schedule   `json:"schedule,omitempty"`
	Employment     []Employment `json:"employment,omitempty"`
	Skills         []string     `json:"skills,omitempty"`
	Sources        []Source     `json:"sources,omitempty"`
	Category       string       `json:"category,omitempty"`
	LocationType   LocationType `json:"location_type,omitempty"`
	PublishedSince *time.Time   `json:"published_since,omitempty"`
	// First seen by the aggregator, whatever the site says
	CreatedSince   *time.Time   `json:"created_since,omitempty"`
}

// Normalized returns a copy with trimmed, lower-cased and sorted list values,
// so that equal searches produce equal cache keys.
func (f Filters) Normalized() Filters {
	out := f
	out.Keywords = normStrings(f.Keywords)
	out.Locations = normStrings(f.Locations)
	out.Skills = normStrings(f.Skills)
	out.Category = strings.TrimSpace(f.Category)

	out.Experience = sortedCopy(f.Experience)
	out.Schedule = sortedCopy(f.Schedule)
	out.Employment = sortedCopy(f.Employment)
	out.Sources = sortedCopy(f.Sources)
	return out
}

// Query returns the free-text search query the filters represent
func (f Filters) Query() string {
	return strings.TrimSpace(strings.Join(f.Keywords, " "))
}

func normStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func sortedCopy[T ~string](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	out := append([]T(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
