// Package memory implements the storage contracts in process memory.
// It backs development mode and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/storage"
)

// Clock returns the current time; tests inject a fake one
type Clock func() time.Time

// New returns a full set of in-memory stores sharing one clock
func New(clock Clock) *storage.Stores {
	if clock == nil {
		clock = time.Now
	}
	return &storage.Stores{
		Vacancies:     NewVacancyStore(clock),
		ParseLogs:     NewParseLogStore(clock),
		Dictionaries:  NewDictionaryStore(clock),
		Subscriptions: NewSubscriptionStore(clock),
		Close:         func() error { return nil },
	}
}

// ── Vacancies ────────────────────────────────────────────────────────────────

type VacancyStore struct {
	mu     sync.RWMutex
	clock  Clock
	nextID int64
	byKey  map[string]*domain.Vacancy
}

func NewVacancyStore(clock Clock) *VacancyStore {
	return &VacancyStore{clock: clock, byKey: make(map[string]*domain.Vacancy)}
}

func (s *VacancyStore) Upsert(_ context.Context, v *domain.Vacancy) (*domain.Vacancy, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	key := v.NaturalKey()
	stored := cloneVacancy(v)

	if existing, ok := s.byKey[key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
		stored.UpdatedAt = now
		s.byKey[key] = stored
		return cloneVacancy(stored), false, nil
	}

	s.nextID++
	stored.ID = s.nextID
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.byKey[key] = stored
	return cloneVacancy(stored), true, nil
}

func (s *VacancyStore) FindMany(_ context.Context, f domain.Filters) ([]*domain.Vacancy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Vacancy
	for _, v := range s.byKey {
		if storage.Matches(v, f) {
			out = append(out, cloneVacancy(v))
		}
	}
	storage.SortByPublished(out)
	return out, nil
}

func (s *VacancyStore) Count(_ context.Context, f domain.Filters) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, v := range s.byKey {
		if storage.Matches(v, f) {
			n++
		}
	}
	return n, nil
}

func (s *VacancyStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, v := range s.byKey {
		if v.PublishedAt.Before(cutoff) {
			delete(s.byKey, key)
			n++
		}
	}
	return n, nil
}

func cloneVacancy(v *domain.Vacancy) *domain.Vacancy {
	c := *v
	c.Skills = append([]string(nil), v.Skills...)
	if v.SalaryMin != nil {
		n := *v.SalaryMin
		c.SalaryMin = &n
	}
	if v.SalaryMax != nil {
		n := *v.SalaryMax
		c.SalaryMax = &n
	}
	if v.RawData != nil {
		c.RawData = make(domain.RawData, len(v.RawData))
		for k, val := range v.RawData {
			c.RawData[k] = val
		}
	}
	return &c
}

// ── Parse logs ───────────────────────────────────────────────────────────────

type ParseLogStore struct {
	mu      sync.RWMutex
	clock   Clock
	entries []*domain.ParseLog
}

func NewParseLogStore(clock Clock) *ParseLogStore {
	return &ParseLogStore{clock: clock}
}

func (s *ParseLogStore) Append(_ context.Context, entry *domain.ParseLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *entry
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock()
	}
	entry.ID, entry.CreatedAt = e.ID, e.CreatedAt
	s.entries = append(s.entries, &e)
	return nil
}

func (s *ParseLogStore) LatestSuccess(_ context.Context, source domain.Source, query string, since time.Time) (*domain.ParseLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.ParseLog
	for _, e := range s.entries {
		if e.Source != source || e.Status != domain.ParseSuccess || !strings.EqualFold(e.SearchQuery, query) {
			continue
		}
		if e.CreatedAt.Before(since) {
			continue
		}
		if latest == nil || !e.CreatedAt.Before(latest.CreatedAt) {
			latest = e
		}
	}
	if latest == nil {
		return nil, nil
	}
	c := *latest
	return &c, nil
}

func (s *ParseLogStore) Recent(_ context.Context, source domain.Source, limit int) ([]*domain.ParseLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.ParseLog
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if source != "" && e.Source != source {
			continue
		}
		c := *e
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ── Dictionaries ─────────────────────────────────────────────────────────────

type DictionaryStore struct {
	mu      sync.RWMutex
	clock   Clock
	nextID  int64
	entries map[domain.Source]map[string]*domain.DictionaryEntry
}

func NewDictionaryStore(clock Clock) *DictionaryStore {
	return &DictionaryStore{clock: clock, entries: make(map[domain.Source]map[string]*domain.DictionaryEntry)}
}

func (s *DictionaryStore) Upsert(_ context.Context, e *domain.DictionaryEntry) (*domain.DictionaryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	bySource := s.entries[e.Source]
	if bySource == nil {
		bySource = make(map[string]*domain.DictionaryEntry)
		s.entries[e.Source] = bySource
	}

	stored := *e
	stored.Synonyms = append([]string(nil), e.Synonyms...)
	if existing, ok := bySource[e.Profession]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		s.nextID++
		stored.ID = s.nextID
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	bySource[e.Profession] = &stored

	c := stored
	return &c, nil
}

func (s *DictionaryStore) ListBySource(_ context.Context, source domain.Source) ([]*domain.DictionaryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.DictionaryEntry, 0, len(s.entries[source]))
	for _, e := range s.entries[source] {
		c := *e
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profession < out[j].Profession })
	return out, nil
}

func (s *DictionaryStore) ClearSource(_ context.Context, source domain.Source) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries[source])
	delete(s.entries, source)
	return n, nil
}

func (s *DictionaryStore) Sources(_ context.Context) (map[domain.Source]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.Source]int, len(s.entries))
	for src, entries := range s.entries {
		if len(entries) > 0 {
			out[src] = len(entries)
		}
	}
	return out, nil
}

// ── Subscriptions ────────────────────────────────────────────────────────────

type SubscriptionStore struct {
	mu    sync.RWMutex
	clock Clock
	byID  map[string]*domain.Subscription
}

func NewSubscriptionStore(clock Clock) *SubscriptionStore {
	return &SubscriptionStore{clock: clock, byID: make(map[string]*domain.Subscription)}
}

func (s *SubscriptionStore) Create(_ context.Context, sub *domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := s.clock()
	sub.CreatedAt, sub.UpdatedAt = now, now
	c := *sub
	s.byID[sub.ID] = &c
	return nil
}

func (s *SubscriptionStore) Get(_ context.Context, id string) (*domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *sub
	return &c, nil
}

func (s *SubscriptionStore) ListByUser(_ context.Context, userID string) ([]*domain.Subscription, error) {
	return s.list(func(sub *domain.Subscription) bool { return sub.UserID == userID }), nil
}

func (s *SubscriptionStore) ListActive(_ context.Context) ([]*domain.Subscription, error) {
	return s.list(func(sub *domain.Subscription) bool { return sub.IsActive }), nil
}

func (s *SubscriptionStore) list(keep func(*domain.Subscription) bool) []*domain.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Subscription
	for _, sub := range s.byID {
		if keep(sub) {
			c := *sub
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *SubscriptionStore) Update(_ context.Context, sub *domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[sub.ID]
	if !ok {
		return storage.ErrNotFound
	}
	sub.CreatedAt = existing.CreatedAt
	sub.UpdatedAt = s.clock()
	c := *sub
	s.byID[sub.ID] = &c
	return nil
}

func (s *SubscriptionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *SubscriptionStore) MarkNotified(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.byID[id]
	if !ok {
		return storage.ErrNotFound
	}
	sub.LastNotified = &at
	sub.UpdatedAt = s.clock()
	return nil
}
