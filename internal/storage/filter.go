package storage

import (
	"slices"
	"sort"
	"strings"

	"github.com/project-tktt/vacancy-hub/internal/domain"
)

// Matches reports whether v satisfies every filter that is set.
// It is the reference semantics the SQL backend mirrors.
func Matches(v *domain.Vacancy, f domain.Filters) bool {
	if len(f.Keywords) > 0 {
		title := strings.ToLower(v.Title)
		category := strings.ToLower(v.Category)
		if !anyContained(f.Keywords, title, category) {
			return false
		}
	}
	if len(f.Locations) > 0 && !anyContained(f.Locations, strings.ToLower(v.Location)) {
		return false
	}
	if f.SalaryMin != nil {
		floor := *f.SalaryMin
		if !(v.SalaryMin != nil && *v.SalaryMin >= floor) && !(v.SalaryMax != nil && *v.SalaryMax >= floor) {
			return false
		}
	}
	if len(f.Experience) > 0 && !slices.Contains(f.Experience, v.Experience) {
		return false
	}
	if len(f.Schedule) > 0 && !slices.Contains(f.Schedule, v.Schedule) {
		return false
	}
	if len(f.Employment) > 0 && !slices.Contains(f.Employment, v.Employment) {
		return false
	}
	if len(f.Skills) > 0 {
		have := make(map[string]bool, len(v.Skills))
		for _, s := range v.Skills {
			have[strings.ToLower(s)] = true
		}
		for _, s := range f.Skills {
			if !have[strings.ToLower(strings.TrimSpace(s))] {
				return false
			}
		}
	}
	if len(f.Sources) > 0 && !slices.Contains(f.Sources, v.Source) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(f.Category, v.Category) {
		return false
	}
	if f.LocationType != "" && f.LocationType != v.WorkLocationType {
		return false
	}
	if f.PublishedSince != nil && v.PublishedAt.Before(*f.PublishedSince) {
		return false
	}
	if f.CreatedSince != nil && v.CreatedAt.Before(*f.CreatedSince) {
		return false
	}
	return true
}

// SortByPublished orders newest first, ties broken by id descending
func SortByPublished(list []*domain.Vacancy) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].PublishedAt.Equal(list[j].PublishedAt) {
			return list[i].PublishedAt.After(list[j].PublishedAt)
		}
		return list[i].ID > list[j].ID
	})
}

// anyContained treats a list of blank needles as no constraint
func anyContained(needles []string, haystacks ...string) bool {
	constrained := false
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		constrained = true
		for _, h := range haystacks {
			if strings.Contains(h, n) {
				return true
			}
		}
	}
	return !constrained
}
