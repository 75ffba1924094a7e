package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
	"github.com/project-tktt/vacancy-hub/internal/module"
	"github.com/project-tktt/vacancy-hub/internal/queue"
)

// Outcome summarizes the scrape of one source
type Outcome struct {
	Source  domain.Source `json:"source"`
	Found   int           `json:"found"`
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Skipped int           `json:"skipped"`
	Error   string        `json:"error,omitempty"`
}

// Saved is the number of records that reached the store
func (o Outcome) Saved() int {
	return o.Created + o.Updated
}

type parseTask struct {
	source  domain.Source
	queries []string
}

// ForceParse scrapes the sources for query regardless of freshness
func (m *Manager) ForceParse(ctx context.Context, sources []domain.Source, query string, maxPages int) []Outcome {
	if len(sources) == 0 {
		sources = domain.AllSources()
	}
	tasks := make([]parseTask, 0, len(sources))
	for _, src := range sources {
		tasks = append(tasks, parseTask{source: src, queries: []string{query}})
	}
	return m.parseAll(context.WithoutCancel(ctx), tasks, maxPages)
}

// RefreshSource runs one background refresh job and drops the requesting
// user's cached results, anonymous ones included, so the next search sees
// the new records
func (m *Manager) RefreshSource(ctx context.Context, job queue.BackgroundJob) (Outcome, error) {
	out := m.parseSource(ctx, parseTask{source: job.Source, queries: []string{job.SearchQuery}}, job.MaxPages)

	// an empty user id clears the anonymous searches
	if m.cache != nil {
		if _, err := m.cache.Clear(ctx, job.UserID); err != nil {
			m.logger.Warn("cache clear failed", zap.String("user_id", job.UserID), zap.Error(err))
		}
	}
	if out.Error != "" {
		return out, apperrors.Scrape(fmt.Sprintf("refresh %s", job.Source), fmt.Errorf("%s", out.Error))
	}
	return out, nil
}

// parseAll fans the tasks out; a failing source never cancels its siblings
func (m *Manager) parseAll(ctx context.Context, tasks []parseTask, maxPages int) []Outcome {
	outcomes := make([]Outcome, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task parseTask) {
			defer wg.Done()
			outcomes[i] = m.parseSource(ctx, task, maxPages)
		}(i, task)
	}
	wg.Wait()
	return outcomes
}

// parseSource scrapes every query of the task in turn and persists the
// results. Each query leaves one parse log row.
func (m *Manager) parseSource(ctx context.Context, task parseTask, maxPages int) Outcome {
	ctx, span := tracer.Start(ctx, "manager.parseSource")
	defer span.End()
	span.SetAttributes(attribute.String("source", string(task.source)))

	out := Outcome{Source: task.source}
	logger := m.logger.With(zap.String("source", string(task.source)))

	parser, ok := m.parsers[task.source]
	if !ok {
		out.Error = "no parser registered"
		for _, q := range task.queries {
			m.appendLog(ctx, task.source, q, 0, 0, 0, fmt.Errorf("%s", out.Error))
		}
		return out
	}
	if maxPages <= 0 {
		maxPages = m.config.MaxPages
	}

	var errs []error
	for _, q := range task.queries {
		start := m.now()
		pctx, cancel := context.WithTimeout(ctx, m.config.Timeouts[task.source])
		res, err := parser.Parse(pctx, module.ParseConfig{
			BaseURL:     m.config.BaseURLs[task.source],
			SearchQuery: q,
			MaxPages:    maxPages,
			Delay:       m.config.Delay,
		})
		cancel()
		if err != nil && (res == nil || !errors.Is(err, module.ErrInterrupted)) {
			logger.Warn("parse failed", zap.String("query", q), zap.Error(err))
			m.appendLog(ctx, task.source, q, 0, 0, m.now().Sub(start), err)
			errs = append(errs, err)
			continue
		}
		// an interrupted scrape keeps its pages but is logged as failed,
		// so the source is not taken as fresh
		parseErr := err

		created, updated, skipped, err := m.persist(ctx, task.source, res.Records)
		out.Found += len(res.Records)
		out.Created += created
		out.Updated += updated
		out.Skipped += skipped
		if err != nil {
			logger.Error("persist failed", zap.String("query", q), zap.Error(err))
			m.appendLog(ctx, task.source, q, len(res.Records), created, m.now().Sub(start), err)
			errs = append(errs, err)
			continue
		}
		m.appendLog(ctx, task.source, q, len(res.Records), created, m.now().Sub(start), parseErr)
		if parseErr != nil {
			logger.Warn("parse interrupted, partial results kept",
				zap.String("query", q),
				zap.Int("found", len(res.Records)),
				zap.Int("created", created),
				zap.Error(parseErr),
			)
			errs = append(errs, parseErr)
			continue
		}
		logger.Info("parsed",
			zap.String("query", q),
			zap.Int("found", len(res.Records)),
			zap.Int("created", created),
			zap.Int("updated", updated),
			zap.Int("skipped", skipped),
		)
	}

	if len(errs) > 0 {
		out.Error = errs[len(errs)-1].Error()
		span.SetStatus(codes.Error, out.Error)
	}
	span.SetAttributes(attribute.Int("found", out.Found), attribute.Int("saved", out.Saved()))
	return out
}

// persist adapts and upserts the records. Records failing validation are
// skipped; a store error stops the batch.
func (m *Manager) persist(ctx context.Context, source domain.Source, records []*domain.RawVacancy) (created, updated, skipped int, err error) {
	a, ok := m.adapters.Get(source)
	if !ok {
		return 0, 0, len(records), fmt.Errorf("no adapter for %s", source)
	}

	saved := make([]*domain.Vacancy, 0, len(records))
	for _, raw := range records {
		v, err := a.ToCanonical(raw)
		if err != nil {
			skipped++
			m.logger.Debug("record skipped",
				zap.String("source", string(source)),
				zap.String("id", raw.ID),
				zap.Error(err),
			)
			continue
		}
		stored, isNew, err := m.vacancies.Upsert(ctx, v)
		if err != nil {
			return created, updated, skipped, fmt.Errorf("upsert %s: %w", v.NaturalKey(), err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
		saved = append(saved, stored)
	}

	if err := m.indexer.BulkIndex(ctx, saved); err != nil {
		m.logger.Warn("index failed", zap.String("source", string(source)), zap.Error(err))
	}
	return created, updated, skipped, nil
}

func (m *Manager) appendLog(ctx context.Context, source domain.Source, query string, found, created int, took time.Duration, parseErr error) {
	entry := &domain.ParseLog{
		ID:             uuid.NewString(),
		Source:         source,
		SearchQuery:    query,
		Status:         domain.ParseSuccess,
		VacanciesFound: found,
		VacanciesNew:   created,
		Duration:       took,
		CreatedAt:      m.now(),
	}
	if parseErr != nil {
		entry.Status = domain.ParseError
		entry.Error = parseErr.Error()
	}
	if err := m.parseLogs.Append(ctx, entry); err != nil {
		m.logger.Warn("parse log append failed", zap.String("source", string(source)), zap.Error(err))
	}
}
