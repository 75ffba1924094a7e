package manager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/project-tktt/vacancy-hub/internal/domain"
)

const (
	ReasonConfirmedEmpty = "Последний парсинг не нашёл вакансий"
	ReasonFromStore      = "Данные актуальны"
	ReasonNoMatches      = "Сохранённые данные не соответствуют фильтрам"
	ReasonNeverParsed    = "Источник никогда не парсился"
	ReasonStale          = "Данные устарели (более 12 часов)"
)

// Decision is recomputed on every search and never persisted
type Decision struct {
	ShouldParse bool
	Reason      string
	// Sources without a successful parse inside the staleness window
	StaleSources []domain.Source
	// Newest successful parse among the requested sources
	LastUpdate *time.Time
}

// ShouldParse decides whether the sources have to be scraped for query
func (m *Manager) ShouldParse(ctx context.Context, sources []domain.Source, query string, filters domain.Filters) (*Decision, error) {
	queries := make(map[domain.Source]string, len(sources))
	for _, src := range sources {
		queries[src] = query
	}
	return m.decide(ctx, sources, queries, filters)
}

// decide looks the parse logs up with a per-source query, since category and
// semantic searches scrape each source under its own title
func (m *Manager) decide(ctx context.Context, sources []domain.Source, queries map[domain.Source]string, filters domain.Filters) (*Decision, error) {
	since := m.now().Add(-m.config.StaleAfter)
	d := &Decision{}

	allEmpty := true
	for _, src := range sources {
		entry, err := m.parseLogs.LatestSuccess(ctx, src, queries[src], since)
		if err != nil {
			return nil, fmt.Errorf("latest parse of %s: %w", src, err)
		}
		if entry == nil {
			d.StaleSources = append(d.StaleSources, src)
			continue
		}
		if d.LastUpdate == nil || entry.CreatedAt.After(*d.LastUpdate) {
			at := entry.CreatedAt
			d.LastUpdate = &at
		}
		if entry.VacanciesFound > 0 {
			allEmpty = false
		}
	}

	if len(d.StaleSources) == 0 {
		if allEmpty {
			d.Reason = ReasonConfirmedEmpty
			return d, nil
		}
		n, err := m.vacancies.Count(ctx, filters)
		if err != nil {
			return nil, fmt.Errorf("count stored vacancies: %w", err)
		}
		if n > 0 {
			d.Reason = ReasonFromStore
			return d, nil
		}
		d.ShouldParse = true
		d.Reason = ReasonNoMatches
		return d, nil
	}

	d.ShouldParse = true
	var never []string
	for _, src := range d.StaleSources {
		entry, err := m.parseLogs.LatestSuccess(ctx, src, queries[src], time.Time{})
		if err != nil {
			return nil, fmt.Errorf("latest parse of %s: %w", src, err)
		}
		if entry == nil {
			never = append(never, string(src))
		}
	}
	if len(never) > 0 {
		d.Reason = ReasonNeverParsed + ": " + strings.Join(never, ", ")
	} else {
		d.Reason = ReasonStale
	}
	return d, nil
}
