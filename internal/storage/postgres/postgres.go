// Package postgres implements the storage contracts on PostgreSQL via lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/storage"
)

// DB wraps the shared connection pool used by every table store
type DB struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open connects, pings and makes sure all tables exist
func Open(ctx context.Context, connStr string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &DB{db: db, logger: logger}
	if err := p.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return p, nil
}

// Stores returns the table stores backed by this pool
func (p *DB) Stores() *storage.Stores {
	return &storage.Stores{
		Vacancies:     &VacancyStore{db: p.db, logger: p.logger},
		ParseLogs:     &ParseLogStore{db: p.db},
		Dictionaries:  &DictionaryStore{db: p.db},
		Subscriptions: &SubscriptionStore{db: p.db},
		Close:         p.Close,
	}
}

func (p *DB) Close() error {
	return p.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS vacancies (
		id BIGSERIAL PRIMARY KEY,
		source TEXT NOT NULL,
		source_id TEXT NOT NULL,
		title TEXT NOT NULL,
		company TEXT,
		description TEXT,
		location TEXT,
		category TEXT,
		salary_min INTEGER,
		salary_max INTEGER,
		salary_currency TEXT NOT NULL DEFAULT 'MDL',
		experience TEXT,
		employment TEXT,
		schedule TEXT,
		skills TEXT[] NOT NULL DEFAULT '{}',
		work_location_type TEXT NOT NULL,
		source_url TEXT NOT NULL,
		published_at TIMESTAMP WITH TIME ZONE NOT NULL,
		raw_data JSONB,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE (source, source_id)
	)`,
	`CREATE INDEX IF NOT EXISTS vacancies_published_at_idx ON vacancies (published_at DESC)`,
	`CREATE INDEX IF NOT EXISTS vacancies_category_idx ON vacancies (category)`,
	`CREATE TABLE IF NOT EXISTS parse_logs (
		id UUID PRIMARY KEY,
		source TEXT NOT NULL,
		search_query TEXT NOT NULL,
		status TEXT NOT NULL,
		vacancies_found INTEGER NOT NULL DEFAULT 0,
		vacancies_new INTEGER NOT NULL DEFAULT 0,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS parse_logs_lookup_idx ON parse_logs (source, lower(search_query), created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS profession_dictionaries (
		id BIGSERIAL PRIMARY KEY,
		source TEXT NOT NULL,
		profession TEXT NOT NULL,
		profession_id TEXT,
		category TEXT,
		synonyms TEXT[] NOT NULL DEFAULT '{}',
		vacancy_count INTEGER,
		last_checked_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		UNIQUE (source, profession)
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL,
		filters JSONB NOT NULL,
		sources TEXT[] NOT NULL DEFAULT '{}',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_notified TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS subscriptions_user_idx ON subscriptions (user_id)`,
}

func (p *DB) ensureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
