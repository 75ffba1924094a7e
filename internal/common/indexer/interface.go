package indexer

import (
	"context"
	"time"

	"github.com/project-tktt/vacancy-hub/internal/domain"
)

// Indexer mirrors stored vacancies into a full-text backend
type Indexer interface {
	// BulkIndex indexes multiple vacancies at once, keyed by natural key
	BulkIndex(ctx context.Context, vacancies []*domain.Vacancy) error
	// DeletePublishedBefore drops documents past retention
	DeletePublishedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Nop is used when no full-text backend is configured
type Nop struct{}

func (Nop) BulkIndex(context.Context, []*domain.Vacancy) error { return nil }

func (Nop) DeletePublishedBefore(context.Context, time.Time) (int, error) { return 0, nil }
