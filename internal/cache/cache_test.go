package cache_test

import (
	"strings"
	"testing"

	"github.com/project-tktt/vacancy-hub/internal/cache"
	"github.com/project-tktt/vacancy-hub/internal/domain"
)

func TestKey_StableAcrossEquivalentFilters(t *testing.T) {
	a := domain.Filters{
		Keywords:   []string{"Повар", " бармен "},
		Experience: []domain.Experience{domain.ExperienceThreeSix, domain.ExperienceNone},
	}
	b := domain.Filters{
		Keywords:   []string{"бармен", "повар"},
		Experience: []domain.Experience{domain.ExperienceNone, domain.ExperienceThreeSix},
	}
	if cache.Key("42", a) != cache.Key("42", b) {
		t.Errorf("equivalent filters hash differently:\n%s\n%s", cache.Key("42", a), cache.Key("42", b))
	}
	if cache.Key("42", a) == cache.Key("43", a) {
		t.Error("different users must not share a key")
	}
	if cache.Key("42", a) == cache.Key("42", domain.Filters{Keywords: []string{"повар"}}) {
		t.Error("different filters must not share a key")
	}
}

func TestKey_Format(t *testing.T) {
	key := cache.Key("", domain.Filters{})
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[0] != "vacancies" || parts[1] != "anonymous" || len(parts[2]) != 16 {
		t.Errorf("key = %q", key)
	}
}

func TestSlice(t *testing.T) {
	records := make([]*domain.Vacancy, 25)
	for i := range records {
		records[i] = &domain.Vacancy{ID: int64(i + 1)}
	}
	cases := []struct {
		limit, offset int
		first, n      int
	}{
		{10, 0, 1, 10},
		{10, 20, 21, 5},
		{10, 30, 0, 0},
		{0, 5, 6, 20},
	}
	for _, c := range cases {
		got := cache.Slice(records, c.limit, c.offset)
		if len(got) != c.n {
			t.Errorf("Slice(%d, %d) len = %d, want %d", c.limit, c.offset, len(got), c.n)
			continue
		}
		if c.n > 0 && got[0].ID != int64(c.first) {
			t.Errorf("Slice(%d, %d) first = %d, want %d", c.limit, c.offset, got[0].ID, c.first)
		}
	}
}
