// Package storage defines the persistence contracts shared by the
// in-memory and PostgreSQL backends.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/project-tktt/vacancy-hub/internal/domain"
)

var ErrNotFound = errors.New("not found")

// VacancyStore persists canonical vacancies keyed by (source, sourceId)
type VacancyStore interface {
	// Upsert inserts or updates by natural key and reports whether a row was created
	Upsert(ctx context.Context, v *domain.Vacancy) (*domain.Vacancy, bool, error)
	// FindMany returns every match ordered by publishedAt descending
	FindMany(ctx context.Context, f domain.Filters) ([]*domain.Vacancy, error)
	Count(ctx context.Context, f domain.Filters) (int, error)
	// DeleteOlderThan removes vacancies published before the cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// ParseLogStore is the append-only scrape audit trail
type ParseLogStore interface {
	Append(ctx context.Context, entry *domain.ParseLog) error
	// LatestSuccess returns the newest successful entry created at or after since, nil when none
	LatestSuccess(ctx context.Context, source domain.Source, query string, since time.Time) (*domain.ParseLog, error)
	// Recent lists newest entries first; an empty source means all sources
	Recent(ctx context.Context, source domain.Source, limit int) ([]*domain.ParseLog, error)
}

// DictionaryStore keeps per-source profession dictionaries, unique by (source, profession)
type DictionaryStore interface {
	Upsert(ctx context.Context, e *domain.DictionaryEntry) (*domain.DictionaryEntry, error)
	ListBySource(ctx context.Context, source domain.Source) ([]*domain.DictionaryEntry, error)
	ClearSource(ctx context.Context, source domain.Source) (int, error)
	// Sources returns the number of entries per source
	Sources(ctx context.Context) (map[domain.Source]int, error)
}

type SubscriptionStore interface {
	Create(ctx context.Context, s *domain.Subscription) error
	Get(ctx context.Context, id string) (*domain.Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Subscription, error)
	ListActive(ctx context.Context) ([]*domain.Subscription, error)
	Update(ctx context.Context, s *domain.Subscription) error
	Delete(ctx context.Context, id string) error
	MarkNotified(ctx context.Context, id string, at time.Time) error
}

// Stores groups the backends the application is wired with
type Stores struct {
	Vacancies     VacancyStore
	ParseLogs     ParseLogStore
	Dictionaries  DictionaryStore
	Subscriptions SubscriptionStore
	Close         func() error
}
