// Package manager decides per search whether to serve stored vacancies,
// scrape synchronously or refresh in the background, and runs the scrapes.
package manager

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/adapter"
	"github.com/project-tktt/vacancy-hub/internal/cache"
	"github.com/project-tktt/vacancy-hub/internal/common/indexer"
	"github.com/project-tktt/vacancy-hub/internal/dictionary"
	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/module"
	"github.com/project-tktt/vacancy-hub/internal/queue"
	"github.com/project-tktt/vacancy-hub/internal/storage"
	"github.com/project-tktt/vacancy-hub/internal/telemetry"
)

var tracer = telemetry.Tracer("github.com/project-tktt/vacancy-hub/internal/manager")

// Cache is the result cache the manager reads through
type Cache interface {
	Set(ctx context.Context, key string, entry *cache.Entry, ttl time.Duration) error
	GetPage(ctx context.Context, key string, limit, offset int) (*cache.Page, bool, error)
	Clear(ctx context.Context, userID string) (int, error)
}

// Enqueuer schedules background jobs
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload queue.BackgroundJob, opts queue.EnqueueOptions) (bool, error)
}

// Config holds tuning knobs
type Config struct {
	// Parse logs older than this no longer count as fresh
	StaleAfter   time.Duration
	DefaultLimit int
	MaxPages     int
	// Base pause between listing pages
	Delay    time.Duration
	CacheTTL time.Duration
	BaseURLs map[domain.Source]string
	Timeouts map[domain.Source]time.Duration
}

const (
	DefaultStaleAfter = 12 * time.Hour
	DefaultLimit      = 10
)

// DefaultTimeouts bound one scrape of each source
var DefaultTimeouts = map[domain.Source]time.Duration{
	domain.SourceRabotaMD: 30 * time.Second,
	domain.Source999MD:    60 * time.Second,
	domain.SourceMaklerMD: 30 * time.Second,
	domain.SourceHHRU:     15 * time.Second,
}

func (c Config) withDefaults() Config {
	if c.StaleAfter <= 0 {
		c.StaleAfter = DefaultStaleAfter
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = DefaultLimit
	}
	if c.MaxPages <= 0 {
		c.MaxPages = module.DefaultMaxPages
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = cache.DefaultTTL
	}
	timeouts := make(map[domain.Source]time.Duration, len(DefaultTimeouts))
	for src, d := range DefaultTimeouts {
		timeouts[src] = d
	}
	for src, d := range c.Timeouts {
		if d > 0 {
			timeouts[src] = d
		}
	}
	c.Timeouts = timeouts
	return c
}

// Deps are the collaborators of the manager. Cache, Queue, Dictionary and
// Indexer are optional.
type Deps struct {
	Vacancies  storage.VacancyStore
	ParseLogs  storage.ParseLogStore
	Parsers    []module.Parser
	Adapters   *adapter.Registry
	Dictionary *dictionary.Service
	Cache      Cache
	Queue      Enqueuer
	Indexer    indexer.Indexer
	Logger     *zap.Logger
	Clock      func() time.Time
}

// Manager is the vacancy manager
type Manager struct {
	vacancies  storage.VacancyStore
	parseLogs  storage.ParseLogStore
	parsers    map[domain.Source]module.Parser
	adapters   *adapter.Registry
	dictionary *dictionary.Service
	cache      Cache
	queue      Enqueuer
	indexer    indexer.Indexer
	logger     *zap.Logger
	now        func() time.Time
	config     Config
}

func New(deps Deps, cfg Config) *Manager {
	parsers := make(map[domain.Source]module.Parser, len(deps.Parsers))
	for _, p := range deps.Parsers {
		parsers[p.Source()] = p
	}
	if deps.Indexer == nil {
		deps.Indexer = indexer.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Adapters == nil {
		deps.Adapters = adapter.NewRegistry(adapter.NewToolkit(nil))
	}
	return &Manager{
		vacancies:  deps.Vacancies,
		parseLogs:  deps.ParseLogs,
		parsers:    parsers,
		adapters:   deps.Adapters,
		dictionary: deps.Dictionary,
		cache:      deps.Cache,
		queue:      deps.Queue,
		indexer:    deps.Indexer,
		logger:     deps.Logger,
		now:        deps.Clock,
		config:     cfg.withDefaults(),
	}
}

// SourcesFor picks the sources to query. Explicit sources win; otherwise the
// location type decides: postings abroad come from hh.ru and the abroad
// section of rabota.md, domestic ones from the Moldovan boards.
func SourcesFor(f domain.Filters) []domain.Source {
	if len(f.Sources) > 0 {
		return f.Sources
	}
	switch f.LocationType {
	case domain.LocationAbroad:
		return []domain.Source{domain.SourceRabotaMD, domain.SourceHHRU}
	case domain.LocationDomestic:
		return []domain.Source{domain.SourceRabotaMD, domain.Source999MD, domain.SourceMaklerMD}
	}
	return domain.AllSources()
}

// Cleanup deletes vacancies published more than maxAge ago
func (m *Manager) Cleanup(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := m.now().Add(-maxAge)
	deleted, err := m.vacancies.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if _, err := m.indexer.DeletePublishedBefore(ctx, cutoff); err != nil {
		m.logger.Warn("index cleanup failed", zap.Error(err))
	}
	m.logger.Info("retention cleanup", zap.Int("deleted", deleted), zap.Time("cutoff", cutoff))
	return deleted, nil
}
