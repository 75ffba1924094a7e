package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
)

// VacancyStore persists vacancies in the vacancies table
type VacancyStore struct {
	db     *sql.DB
	logger *zap.Logger
}

const vacancyColumns = `id, source, source_id, title, COALESCE(company, ''), COALESCE(description, ''),
	COALESCE(location, ''), COALESCE(category, ''), salary_min, salary_max, salary_currency,
	COALESCE(experience, ''), COALESCE(employment, ''), COALESCE(schedule, ''), skills,
	work_location_type, source_url, published_at, raw_data, created_at, updated_at`

const upsertVacancy = `
	INSERT INTO vacancies (
		source, source_id, title, company, description, location, category,
		salary_min, salary_max, salary_currency, experience, employment, schedule, skills,
		work_location_type, source_url, published_at, raw_data
	) VALUES (
		$1, $2, $3, $4, $5, $6, NULLIF($7, ''),
		$8, $9, $10, NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''), $14,
		$15, $16, $17, $18
	)
	ON CONFLICT (source, source_id) DO UPDATE SET
		title = EXCLUDED.title,
		company = EXCLUDED.company,
		description = EXCLUDED.description,
		location = EXCLUDED.location,
		category = EXCLUDED.category,
		salary_min = EXCLUDED.salary_min,
		salary_max = EXCLUDED.salary_max,
		salary_currency = EXCLUDED.salary_currency,
		experience = EXCLUDED.experience,
		employment = EXCLUDED.employment,
		schedule = EXCLUDED.schedule,
		skills = EXCLUDED.skills,
		work_location_type = EXCLUDED.work_location_type,
		source_url = EXCLUDED.source_url,
		published_at = EXCLUDED.published_at,
		raw_data = EXCLUDED.raw_data,
		updated_at = clock_timestamp()
	RETURNING id, created_at, updated_at, (xmax = 0)`

func (s *VacancyStore) Upsert(ctx context.Context, v *domain.Vacancy) (*domain.Vacancy, bool, error) {
	raw, err := marshalRaw(v.RawData)
	if err != nil {
		return nil, false, fmt.Errorf("marshal raw data: %w", err)
	}

	skills := v.Skills
	if skills == nil {
		skills = []string{}
	}

	out := *v
	var created bool
	err = s.db.QueryRowContext(ctx, upsertVacancy,
		v.Source, v.SourceID, v.Title, v.Company, v.Description, v.Location, v.Category,
		nullInt(v.SalaryMin), nullInt(v.SalaryMax), v.SalaryCurrency,
		v.Experience, v.Employment, v.Schedule, pq.Array(skills),
		v.WorkLocationType, v.SourceURL, v.PublishedAt, raw,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt, &created)
	if err != nil {
		return nil, false, fmt.Errorf("upsert vacancy %s: %w", v.NaturalKey(), err)
	}
	return &out, created, nil
}

func (s *VacancyStore) FindMany(ctx context.Context, f domain.Filters) ([]*domain.Vacancy, error) {
	where, args := buildWhere(f)
	query := "SELECT " + vacancyColumns + " FROM vacancies" + where + " ORDER BY published_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vacancies: %w", err)
	}
	defer rows.Close()

	var out []*domain.Vacancy
	for rows.Next() {
		v, err := scanVacancy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vacancy: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *VacancyStore) Count(ctx context.Context, f domain.Filters) (int, error) {
	where, args := buildWhere(f)
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vacancies"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count vacancies: %w", err)
	}
	return n, nil
}

func (s *VacancyStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vacancies WHERE published_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete vacancies: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	s.logger.Info("deleted old vacancies", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVacancy(row scanner) (*domain.Vacancy, error) {
	var (
		v        domain.Vacancy
		lo, hi   sql.NullInt64
		skills   pq.StringArray
		raw      []byte
		src      string
		exp      string
		emp      string
		sched    string
		locType  string
		currency string
	)
	err := row.Scan(&v.ID, &src, &v.SourceID, &v.Title, &v.Company, &v.Description,
		&v.Location, &v.Category, &lo, &hi, &currency,
		&exp, &emp, &sched, &skills,
		&locType, &v.SourceURL, &v.PublishedAt, &raw, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}

	v.Source = domain.Source(src)
	v.SalaryCurrency = currency
	v.Experience = domain.Experience(exp)
	v.Employment = domain.Employment(emp)
	v.Schedule = domain.Schedule(sched)
	v.WorkLocationType = domain.LocationType(locType)
	v.Skills = []string(skills)
	if v.Skills == nil {
		v.Skills = []string{}
	}
	if lo.Valid {
		n := int(lo.Int64)
		v.SalaryMin = &n
	}
	if hi.Valid {
		n := int(hi.Int64)
		v.SalaryMax = &n
	}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &v.RawData); err != nil {
			return nil, fmt.Errorf("unmarshal raw data: %w", err)
		}
	}
	return &v, nil
}

// buildWhere translates the filter vocabulary into a WHERE clause with
// positional arguments, mirroring storage.Matches
func buildWhere(f domain.Filters) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if ors := likeAny(f.Keywords, arg, "lower(title)", "lower(COALESCE(category, ''))"); ors != "" {
		conds = append(conds, ors)
	}
	if ors := likeAny(f.Locations, arg, "lower(COALESCE(location, ''))"); ors != "" {
		conds = append(conds, ors)
	}
	if f.SalaryMin != nil {
		p := arg(*f.SalaryMin)
		conds = append(conds, fmt.Sprintf("(salary_min >= %s OR salary_max >= %s)", p, p))
	}
	if len(f.Experience) > 0 {
		conds = append(conds, "experience = ANY("+arg(pq.Array(strs(f.Experience)))+")")
	}
	if len(f.Schedule) > 0 {
		conds = append(conds, "schedule = ANY("+arg(pq.Array(strs(f.Schedule)))+")")
	}
	if len(f.Employment) > 0 {
		conds = append(conds, "employment = ANY("+arg(pq.Array(strs(f.Employment)))+")")
	}
	if len(f.Skills) > 0 {
		want := make([]string, 0, len(f.Skills))
		for _, s := range f.Skills {
			want = append(want, strings.ToLower(strings.TrimSpace(s)))
		}
		conds = append(conds, "(SELECT COALESCE(array_agg(lower(s)), '{}') FROM unnest(skills) s) @> "+arg(pq.Array(want))+"::text[]")
	}
	if len(f.Sources) > 0 {
		conds = append(conds, "source = ANY("+arg(pq.Array(strs(f.Sources)))+")")
	}
	if f.Category != "" {
		conds = append(conds, "lower(category) = lower("+arg(f.Category)+")")
	}
	if f.LocationType != "" {
		conds = append(conds, "work_location_type = "+arg(string(f.LocationType)))
	}
	if f.PublishedSince != nil {
		conds = append(conds, "published_at >= "+arg(*f.PublishedSince))
	}
	if f.CreatedSince != nil {
		conds = append(conds, "created_at >= "+arg(*f.CreatedSince))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// likeAny ORs a case-insensitive substring match of every needle against every column
func likeAny(needles []string, arg func(any) string, columns ...string) string {
	var ors []string
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		p := arg("%" + escapeLike(n) + "%")
		for _, col := range columns {
			ors = append(ors, col+" LIKE "+p)
		}
	}
	if len(ors) == 0 {
		return ""
	}
	return "(" + strings.Join(ors, " OR ") + ")"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func strs[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func marshalRaw(raw domain.RawData) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	return json.Marshal(raw)
}
