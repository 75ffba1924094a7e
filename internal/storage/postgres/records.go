package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/storage"
)

// ── Parse logs ───────────────────────────────────────────────────────────────

type ParseLogStore struct {
	db *sql.DB
}

func (s *ParseLogStore) Append(ctx context.Context, e *domain.ParseLog) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO parse_logs (id, source, search_query, status, vacancies_found, vacancies_new, duration_ms, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING created_at`,
		e.ID, e.Source, e.SearchQuery, e.Status, e.VacanciesFound, e.VacanciesNew, e.Duration.Milliseconds(), e.Error,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert parse log: %w", err)
	}
	return nil
}

const parseLogColumns = `id, source, search_query, status, vacancies_found, vacancies_new, duration_ms, COALESCE(error, ''), created_at`

func (s *ParseLogStore) LatestSuccess(ctx context.Context, source domain.Source, query string, since time.Time) (*domain.ParseLog, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+parseLogColumns+` FROM parse_logs
		WHERE source = $1 AND lower(search_query) = lower($2) AND status = $3 AND created_at >= $4
		ORDER BY created_at DESC
		LIMIT 1`,
		source, query, domain.ParseSuccess, since)

	e, err := scanParseLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest parse log: %w", err)
	}
	return e, nil
}

func (s *ParseLogStore) Recent(ctx context.Context, source domain.Source, limit int) ([]*domain.ParseLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+parseLogColumns+` FROM parse_logs
		WHERE $1 = '' OR source = $1
		ORDER BY created_at DESC
		LIMIT $2`, string(source), limit)
	if err != nil {
		return nil, fmt.Errorf("query parse logs: %w", err)
	}
	defer rows.Close()

	var out []*domain.ParseLog
	for rows.Next() {
		e, err := scanParseLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan parse log: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanParseLog(row scanner) (*domain.ParseLog, error) {
	var (
		e          domain.ParseLog
		src        string
		status     string
		durationMs int64
	)
	if err := row.Scan(&e.ID, &src, &e.SearchQuery, &status, &e.VacanciesFound, &e.VacanciesNew, &durationMs, &e.Error, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Source = domain.Source(src)
	e.Status = domain.ParseStatus(status)
	e.Duration = time.Duration(durationMs) * time.Millisecond
	return &e, nil
}

// ── Dictionaries ─────────────────────────────────────────────────────────────

type DictionaryStore struct {
	db *sql.DB
}

const dictionaryColumns = `id, source, profession, COALESCE(profession_id, ''), COALESCE(category, ''), synonyms,
	COALESCE(vacancy_count, 0), last_checked_at, created_at, updated_at`

func (s *DictionaryStore) Upsert(ctx context.Context, e *domain.DictionaryEntry) (*domain.DictionaryEntry, error) {
	synonyms := e.Synonyms
	if synonyms == nil {
		synonyms = []string{}
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO profession_dictionaries (source, profession, profession_id, category, synonyms, vacancy_count, last_checked_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
		ON CONFLICT (source, profession) DO UPDATE SET
			profession_id = EXCLUDED.profession_id,
			category = EXCLUDED.category,
			synonyms = EXCLUDED.synonyms,
			vacancy_count = EXCLUDED.vacancy_count,
			last_checked_at = EXCLUDED.last_checked_at,
			updated_at = clock_timestamp()
		RETURNING `+dictionaryColumns,
		e.Source, e.Profession, e.ProfessionID, e.Category, pq.Array(synonyms), e.VacancyCount, e.LastCheckedAt)

	out, err := scanDictionaryEntry(row)
	if err != nil {
		return nil, fmt.Errorf("upsert dictionary entry %s/%s: %w", e.Source, e.Profession, err)
	}
	return out, nil
}

func (s *DictionaryStore) ListBySource(ctx context.Context, source domain.Source) ([]*domain.DictionaryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+dictionaryColumns+` FROM profession_dictionaries
		WHERE source = $1
		ORDER BY profession`, source)
	if err != nil {
		return nil, fmt.Errorf("query dictionary: %w", err)
	}
	defer rows.Close()

	out := []*domain.DictionaryEntry{}
	for rows.Next() {
		e, err := scanDictionaryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dictionary entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *DictionaryStore) ClearSource(ctx context.Context, source domain.Source) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profession_dictionaries WHERE source = $1`, source)
	if err != nil {
		return 0, fmt.Errorf("clear dictionary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func (s *DictionaryStore) Sources(ctx context.Context) (map[domain.Source]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM profession_dictionaries GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("query dictionary sources: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Source]int)
	for rows.Next() {
		var (
			src string
			n   int
		)
		if err := rows.Scan(&src, &n); err != nil {
			return nil, fmt.Errorf("scan dictionary source: %w", err)
		}
		out[domain.Source(src)] = n
	}
	return out, rows.Err()
}

func scanDictionaryEntry(row scanner) (*domain.DictionaryEntry, error) {
	var (
		e        domain.DictionaryEntry
		src      string
		synonyms pq.StringArray
		checked  sql.NullTime
	)
	err := row.Scan(&e.ID, &src, &e.Profession, &e.ProfessionID, &e.Category, &synonyms,
		&e.VacancyCount, &checked, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Source = domain.Source(src)
	e.Synonyms = []string(synonyms)
	if checked.Valid {
		e.LastCheckedAt = &checked.Time
	}
	return &e, nil
}

// ── Subscriptions ────────────────────────────────────────────────────────────

type SubscriptionStore struct {
	db *sql.DB
}

const subscriptionColumns = `id, user_id, filters, sources, is_active, last_notified, created_at, updated_at`

func (s *SubscriptionStore) Create(ctx context.Context, sub *domain.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	filters, err := json.Marshal(sub.Filters)
	if err != nil {
		return fmt.Errorf("marshal filters: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO subscriptions (id, user_id, filters, sources, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		sub.ID, sub.UserID, filters, pq.Array(strs(sub.Sources)), sub.IsActive,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) Get(ctx context.Context, id string) (*domain.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (s *SubscriptionStore) ListByUser(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	return s.list(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (s *SubscriptionStore) ListActive(ctx context.Context) ([]*domain.Subscription, error) {
	return s.list(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE is_active ORDER BY created_at`)
}

func (s *SubscriptionStore) list(ctx context.Context, query string, args ...any) ([]*domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SubscriptionStore) Update(ctx context.Context, sub *domain.Subscription) error {
	filters, err := json.Marshal(sub.Filters)
	if err != nil {
		return fmt.Errorf("marshal filters: %w", err)
	}
	err = s.db.QueryRowContext(ctx, `
		UPDATE subscriptions SET filters = $2, sources = $3, is_active = $4, updated_at = clock_timestamp()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		sub.ID, filters, pq.Array(strs(sub.Sources)), sub.IsActive,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}

func (s *SubscriptionStore) Delete(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
}

func (s *SubscriptionStore) MarkNotified(ctx context.Context, id string, at time.Time) error {
	return s.execOne(ctx, `UPDATE subscriptions SET last_notified = $2, updated_at = clock_timestamp() WHERE id = $1`, id, at)
}

func (s *SubscriptionStore) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanSubscription(row scanner) (*domain.Subscription, error) {
	var (
		sub      domain.Subscription
		filters  []byte
		sources  pq.StringArray
		notified sql.NullTime
	)
	if err := row.Scan(&sub.ID, &sub.UserID, &filters, &sources, &sub.IsActive, &notified, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(filters, &sub.Filters); err != nil {
		return nil, fmt.Errorf("unmarshal filters: %w", err)
	}
	for _, src := range sources {
		sub.Sources = append(sub.Sources, domain.Source(src))
	}
	if notified.Valid {
		sub.LastNotified = &notified.Time
	}
	return &sub, nil
}
