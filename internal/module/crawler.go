package module

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
)

// ParseConfig drives one scrape of a source
type ParseConfig struct {
	BaseURL     string
	SearchQuery string
	MaxPages    int
	// Base pause between pages, a random 0-2s is added on top
	Delay time.Duration
}

// ParseResult holds the raw records of one scrape
type ParseResult struct {
	Records []*domain.RawVacancy
	// TotalFound is what the site reports, or len(Records) when it reports nothing
	TotalFound int
}

// Parser is the common interface for all source scrapers
type Parser interface {
	// Source returns the source identifier
	Source() domain.Source
	// Parse fetches listing pages in order until a termination threshold is hit.
	// An error wrapping ErrInterrupted comes with the pages fetched before it.
	Parse(ctx context.Context, cfg ParseConfig) (*ParseResult, error)
}

// DetailParser is implemented by parsers that can load a single vacancy page
type DetailParser interface {
	ParseVacancyDetails(ctx context.Context, url string) (map[string]any, error)
}

const DefaultMaxPages = 5

// ErrInterrupted marks a scrape whose context ended after the first page
var ErrInterrupted = errors.New("paging interrupted")

// Interrupted wraps the context error that stopped paging before page
func Interrupted(page int, err error) error {
	return fmt.Errorf("%w before page %d: %w", ErrInterrupted, page, err)
}

// WithDefaults fills the zero fields
func (c ParseConfig) WithDefaults(baseURL string) ParseConfig {
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	return c
}

// PageTracker decides when a paged listing has run dry.
// In the default mode a page counts as idle when it brings no id seen before;
// in empty-only mode only pages without any records count.
type PageTracker struct {
	limit     int
	emptyOnly bool
	idle      int
	seen      map[string]struct{}
}

// NewPageTracker stops after limit consecutive pages without new ids
func NewPageTracker(limit int) *PageTracker {
	if limit <= 0 {
		limit = 1
	}
	return &PageTracker{limit: limit, seen: make(map[string]struct{})}
}

// NewEmptyPageTracker stops after limit consecutive empty pages
func NewEmptyPageTracker(limit int) *PageTracker {
	t := NewPageTracker(limit)
	t.emptyOnly = true
	return t
}

// Observe records the ids of one page and returns how many of them are new
// and whether paging should stop
func (t *PageTracker) Observe(ids []string) (fresh int, stop bool) {
	for _, id := range ids {
		if _, ok := t.seen[id]; ok {
			continue
		}
		t.seen[id] = struct{}{}
		fresh++
	}

	idle := fresh == 0
	if t.emptyOnly {
		idle = len(ids) == 0
	}
	if idle {
		t.idle++
	} else {
		t.idle = 0
	}
	return fresh, t.idle >= t.limit
}

// Seen reports whether id was observed on an earlier page
func (t *PageTracker) Seen(id string) bool {
	_, ok := t.seen[id]
	return ok
}

// Pause sleeps for base plus a random 0-2s, returning early when ctx ends.
// A negative base skips the pause.
func Pause(ctx context.Context, base time.Duration) error {
	if base < 0 {
		return ctx.Err()
	}
	delay := base + time.Duration(rand.Intn(2000))*time.Millisecond
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PageFunc fetches and parses one 1-based listing page
type PageFunc func(ctx context.Context, page int) ([]*domain.RawVacancy, error)

// Collect walks pages in order, keeping records whose id was not seen
// before, until the tracker stops it or MaxPages is reached.
// A failure on the first page is returned alone. A later page failure ends
// paging with what was collected so far; when the context ended, the records
// come with an ErrInterrupted error.
func Collect(ctx context.Context, cfg ParseConfig, tracker *PageTracker, fetch PageFunc, logger *zap.Logger) ([]*domain.RawVacancy, error) {
	var records []*domain.RawVacancy
	for page := 1; page <= cfg.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			if page == 1 {
				return nil, err
			}
			return records, Interrupted(page, err)
		}

		logger.Debug("fetching page", zap.Int("page", page), zap.Int("max_pages", cfg.MaxPages))

		listed, err := fetch(ctx, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			if ctx.Err() != nil {
				return records, Interrupted(page, ctx.Err())
			}
			logger.Warn("page failed, keeping earlier pages", zap.Int("page", page), zap.Error(err))
			break
		}

		ids := make([]string, 0, len(listed))
		onPage := make(map[string]struct{}, len(listed))
		for _, r := range listed {
			if _, dup := onPage[r.ID]; dup {
				continue
			}
			onPage[r.ID] = struct{}{}
			if !tracker.Seen(r.ID) {
				records = append(records, r)
			}
			ids = append(ids, r.ID)
		}

		fresh, stop := tracker.Observe(ids)
		logger.Debug("page parsed", zap.Int("page", page), zap.Int("listed", len(listed)), zap.Int("new", fresh))
		if stop {
			break
		}

		if page < cfg.MaxPages {
			if err := Pause(ctx, cfg.Delay); err != nil {
				return records, Interrupted(page+1, err)
			}
		}
	}
	return records, nil
}
