package manager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/cache"
	"github.com/project-tktt/vacancy-hub/internal/dictionary"
	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/profession"
	"github.com/project-tktt/vacancy-hub/internal/queue"
)

type Mode string

const (
	ModeRegular  Mode = "regular"
	ModeCategory Mode = "category"
	ModeSemantic Mode = "semantic"
)

// Where the served page came from
const (
	FromCache = "cache"
	FromStore = "database"
	FromParse = "fresh"
)

type SearchRequest struct {
	Filters domain.Filters
	// Free-text query, the joined keywords when empty
	Query  string
	Mode   Mode
	UserID string
	// 1-based
	Page  int
	Limit int
}

type Meta struct {
	Total       int                  `json:"total"`
	TotalPages  int                  `json:"totalPages"`
	CurrentPage int                  `json:"currentPage"`
	Limit       int                  `json:"limit"`
	Source      string               `json:"source"`
	LastUpdate  *time.Time           `json:"lastUpdate,omitempty"`
	Updating    bool                 `json:"updating"`
	Category    string               `json:"category,omitempty"`
	ParseReason string               `json:"parseReason,omitempty"`
	Mappings    []dictionary.Mapping `json:"mappings,omitempty"`
	Failed      []domain.Source      `json:"failedSources,omitempty"`
}

type SearchResponse struct {
	Success bool              `json:"success"`
	Data    []*domain.Vacancy `json:"data"`
	Meta    Meta              `json:"meta"`
}

// plan is what a search reads and, if needed, scrapes
type plan struct {
	sources []domain.Source
	read    domain.Filters
	// Titles each source is scraped with; the first one keys the parse log
	titles   map[domain.Source][]string
	category string
	mappings []dictionary.Mapping
}

func (p *plan) logQueries() map[domain.Source]string {
	out := make(map[domain.Source]string, len(p.titles))
	for src, titles := range p.titles {
		if len(titles) > 0 {
			out[src] = titles[0]
		}
	}
	return out
}

// Search serves one page of vacancies, scraping first or in the background
// when the stored data is not fresh. Only store failures are returned.
func (m *Manager) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	ctx, span := tracer.Start(ctx, "manager.Search")
	defer span.End()

	req = m.defaults(req)
	span.SetAttributes(attribute.String("mode", string(req.Mode)), attribute.String("query", req.Query))

	p := m.plan(ctx, req)
	meta := Meta{CurrentPage: req.Page, Limit: req.Limit, Category: p.category, Mappings: p.mappings}
	key := cache.Key(req.UserID, p.read)

	if m.cache != nil {
		page, hit, err := m.cache.GetPage(ctx, key, req.Limit, (req.Page-1)*req.Limit)
		if err != nil {
			m.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			meta.Source = FromCache
			meta.Total = page.Total
			meta.TotalPages = TotalPages(page.Total, req.Limit)
			at := page.CachedAt
			meta.LastUpdate = &at
			return &SearchResponse{Success: true, Data: page.Records, Meta: meta}, nil
		}
	}

	decision, err := m.decide(ctx, p.sources, p.logQueries(), p.read)
	if err != nil {
		return nil, err
	}
	meta.ParseReason = decision.Reason
	meta.LastUpdate = decision.LastUpdate
	meta.Source = FromStore

	if decision.ShouldParse {
		stored, err := m.vacancies.Count(ctx, p.read)
		if err != nil {
			return nil, fmt.Errorf("count stored vacancies: %w", err)
		}
		if stored > 0 && len(decision.StaleSources) > 0 {
			meta.Updating = m.enqueueRefresh(ctx, req.UserID, decision.StaleSources, p)
		} else {
			tasks := make([]parseTask, 0, len(p.sources))
			for _, src := range p.sources {
				tasks = append(tasks, parseTask{source: src, queries: p.titles[src]})
			}
			for _, out := range m.parseAll(context.WithoutCancel(ctx), tasks, 0) {
				if out.Error != "" {
					meta.Failed = append(meta.Failed, out.Source)
				}
			}
			meta.Source = FromParse
			now := m.now()
			meta.LastUpdate = &now
		}
	}

	records, err := m.vacancies.FindMany(ctx, p.read)
	if err != nil {
		return nil, fmt.Errorf("find vacancies: %w", err)
	}
	m.store(ctx, key, records, p.read)

	data, pages := Paginate(records, req.Page, req.Limit)
	meta.Total = len(records)
	meta.TotalPages = pages
	span.SetAttributes(attribute.String("served_from", meta.Source), attribute.Int("total", meta.Total))
	return &SearchResponse{Success: true, Data: data, Meta: meta}, nil
}

// CacheKey is the result cache key Search reads and writes for req
func (m *Manager) CacheKey(ctx context.Context, req SearchRequest) string {
	req = m.defaults(req)
	return cache.Key(req.UserID, m.plan(ctx, req).read)
}

func (m *Manager) defaults(req SearchRequest) SearchRequest {
	if req.Mode == "" {
		req.Mode = ModeRegular
	}
	if req.Limit <= 0 {
		req.Limit = m.config.DefaultLimit
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if strings.TrimSpace(req.Query) == "" {
		req.Query = req.Filters.Query()
	}
	return req
}

// plan resolves the mode into read filters and per-source scrape titles.
// Category and semantic searches fall back to a regular one when nothing
// matches the query.
func (m *Manager) plan(ctx context.Context, req SearchRequest) *plan {
	p := &plan{sources: SourcesFor(req.Filters), read: req.Filters}
	p.read.Sources = p.sources
	// a bare free-text query filters the read and so the cache key
	if len(p.read.Keywords) == 0 && req.Query != "" {
		p.read.Keywords = []string{req.Query}
	}
	p.titles = make(map[domain.Source][]string, len(p.sources))
	for _, src := range p.sources {
		p.titles[src] = []string{req.Query}
	}

	switch req.Mode {
	case ModeCategory:
		prof := profession.Resolve(req.Query, "")
		if prof == nil {
			m.logger.Debug("no canonical profession, regular search", zap.String("query", req.Query))
			return p
		}
		p.category = prof.Name
		p.read.Keywords = nil
		p.read.Category = prof.Name
		for _, src := range p.sources {
			p.titles[src] = prof.TitlesFor(src)
		}

	case ModeSemantic:
		if m.dictionary == nil || req.Query == "" {
			return p
		}
		res, err := m.dictionary.FindProfessionMappings(ctx, req.Query, p.sources)
		if err != nil {
			m.logger.Warn("profession mappings failed, regular search", zap.Error(err))
			return p
		}
		p.mappings = res.Mappings
		for src, title := range res.BestTitles() {
			p.titles[src] = []string{title}
		}
	}
	return p
}

// enqueueRefresh schedules one refresh per stale source and reports whether
// any refresh is pending
func (m *Manager) enqueueRefresh(ctx context.Context, userID string, stale []domain.Source, p *plan) bool {
	if m.queue == nil {
		return false
	}
	pending := false
	for _, src := range stale {
		query := ""
		if titles := p.titles[src]; len(titles) > 0 {
			query = titles[0]
		}
		job := queue.BackgroundJob{Source: src, SearchQuery: query, MaxPages: m.config.MaxPages, UserID: userID}
		_, err := m.queue.Enqueue(ctx, queue.JobRefreshSource, job, queue.EnqueueOptions{
			Priority:  queue.PriorityNormal,
			DedupeKey: queue.DedupeKey(queue.JobRefreshSource, src, query),
		})
		if err != nil {
			m.logger.Warn("enqueue refresh failed", zap.String("source", string(src)), zap.Error(err))
			continue
		}
		// A deduplicated job is already on its way
		pending = true
	}
	return pending
}

func (m *Manager) store(ctx context.Context, key string, records []*domain.Vacancy, f domain.Filters) {
	if m.cache == nil {
		return
	}
	entry := &cache.Entry{Records: records, Total: len(records), Filters: f, CachedAt: m.now()}
	if err := m.cache.Set(ctx, key, entry, m.config.CacheTTL); err != nil {
		m.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Paginate returns the 1-based page of records and the page count
func Paginate(records []*domain.Vacancy, page, limit int) ([]*domain.Vacancy, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return cache.Slice(records, limit, (page-1)*limit), TotalPages(len(records), limit)
}

func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
