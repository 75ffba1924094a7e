package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/api"
	"github.com/project-tktt/vacancy-hub/internal/dictionary"
	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/manager"
	"github.com/project-tktt/vacancy-hub/internal/module"
	"github.com/project-tktt/vacancy-hub/internal/queue"
	"github.com/project-tktt/vacancy-hub/internal/storage"
	"github.com/project-tktt/vacancy-hub/internal/storage/memory"
	"github.com/project-tktt/vacancy-hub/internal/subscription"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type stubParser struct{}

func (stubParser) Source() domain.Source { return domain.SourceRabotaMD }

func (stubParser) Parse(context.Context, module.ParseConfig) (*module.ParseResult, error) {
	return &module.ParseResult{Records: []*domain.RawVacancy{{
		ID:     "900",
		Title:  "Повар-сушист",
		URL:    "https://www.rabota.md/ru/jobs/900",
		Source: domain.SourceRabotaMD,
		Data:   map[string]any{},
	}}, TotalFound: 1}, nil
}

func newApp(t *testing.T, opts ...func(*api.Deps)) (*fiber.App, *storage.Stores) {
	t.Helper()
	clock := func() time.Time { return now }
	stores := memory.New(clock)
	logger := zap.NewNop()

	dict := dictionary.NewService(stores.Dictionaries, logger)
	mgr := manager.New(manager.Deps{
		Vacancies:  stores.Vacancies,
		ParseLogs:  stores.ParseLogs,
		Parsers:    []module.Parser{stubParser{}},
		Dictionary: dict,
		Logger:     logger,
		Clock:      clock,
	}, manager.Config{Delay: -1})

	deps := api.Deps{
		Manager:       mgr,
		Dictionary:    dict,
		Refresher:     dictionary.NewRefresher(dict, nil, logger),
		Subscriptions: subscription.NewService(stores.Subscriptions, logger),
		ParseLogs:     stores.ParseLogs,
		Logger:        logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return api.NewApp(api.NewHandler(deps)), stores
}

type fakeCache struct {
	keys    map[string]bool
	cleared []string
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) { return c.keys[key], nil }

func (c *fakeCache) Clear(_ context.Context, userID string) (int, error) {
	c.cleared = append(c.cleared, userID)
	return len(c.keys), nil
}

func (c *fakeCache) ClearKey(_ context.Context, key string) error {
	delete(c.keys, key)
	return nil
}

type fakeQueue struct {
	pending int64
	err     error
}

func (q *fakeQueue) Enqueue(context.Context, string, queue.BackgroundJob, queue.EnqueueOptions) (bool, error) {
	q.pending++
	return true, nil
}

func (q *fakeQueue) QueueLength(context.Context) (int64, error) { return q.pending, q.err }

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, target, data, err)
		}
	}
	return resp.StatusCode, out
}

// ── Vacancies ──

func TestHealth(t *testing.T) {
	app, _ := newApp(t)
	status, body := do(t, app, http.MethodGet, "/health", "")
	if status != http.StatusOK || body["status"] != "ok" {
		t.Errorf("got %d %v", status, body)
	}
}

func TestHealth_QueueLength(t *testing.T) {
	q := &fakeQueue{pending: 3}
	app, _ := newApp(t, func(d *api.Deps) { d.Queue = q })

	status, body := do(t, app, http.MethodGet, "/health", "")
	if status != http.StatusOK || body["pendingJobs"].(float64) != 3 {
		t.Errorf("got %d %v", status, body)
	}

	q.err = errors.New("redis down")
	status, body = do(t, app, http.MethodGet, "/health", "")
	if status != http.StatusServiceUnavailable || body["status"] != "degraded" {
		t.Errorf("unreachable queue: got %d %v", status, body)
	}
}

func TestSearchVacancies_FromStore(t *testing.T) {
	app, stores := newApp(t)
	ctx := context.Background()
	for _, id := range []string{"1", "2", "3"} {
		v := &domain.Vacancy{Source: domain.SourceRabotaMD, SourceID: id, Title: "Повар " + id, PublishedAt: now}
		if _, _, err := stores.Vacancies.Upsert(ctx, v); err != nil {
			t.Fatal(err)
		}
	}
	err := stores.ParseLogs.Append(ctx, &domain.ParseLog{
		Source: domain.SourceRabotaMD, SearchQuery: "повар", Status: domain.ParseSuccess, VacanciesFound: 3, CreatedAt: now,
	})
	if err != nil {
		t.Fatal(err)
	}

	q := url.Values{"keywords": {"повар"}, "sources": {"rabota.md"}, "limit": {"2"}, "page": {"2"}}
	status, body := do(t, app, http.MethodGet, "/api/vacancies?"+q.Encode(), "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	meta := body["meta"].(map[string]any)
	if meta["total"].(float64) != 3 || meta["totalPages"].(float64) != 2 || meta["currentPage"].(float64) != 2 {
		t.Errorf("meta = %v", meta)
	}
	if meta["source"] != manager.FromStore {
		t.Errorf("meta.source = %v", meta["source"])
	}
	if data := body["data"].([]any); len(data) != 1 {
		t.Errorf("data = %d records, want 1", len(data))
	}
}

func TestSearchVacancies_BadQuery(t *testing.T) {
	app, _ := newApp(t)

	cases := []string{
		"salaryMin=lots",
		"sources=linkedin.com",
		"locationType=mars",
		"page=-1",
	}
	for _, q := range cases {
		status, body := do(t, app, http.MethodGet, "/api/vacancies?"+q, "")
		if status != http.StatusBadRequest || body["success"] != false {
			t.Errorf("%s: got %d %v", q, status, body)
		}
	}
}

func TestForceParse(t *testing.T) {
	app, stores := newApp(t)

	status, body := do(t, app, http.MethodPost, "/api/vacancies/force-parse", `{"query": "повар", "sources": ["rabota.md"]}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %v", status, body)
	}
	outcomes := body["data"].([]any)
	if len(outcomes) != 1 || outcomes[0].(map[string]any)["created"].(float64) != 1 {
		t.Errorf("outcomes = %v", outcomes)
	}
	if n, _ := stores.Vacancies.Count(context.Background(), domain.Filters{}); n != 1 {
		t.Errorf("stored = %d, want 1", n)
	}

	status, _ = do(t, app, http.MethodPost, "/api/vacancies/force-parse", `{"sources": ["rabota.md"]}`)
	if status != http.StatusBadRequest {
		t.Errorf("missing query: status = %d", status)
	}

	status, body = do(t, app, http.MethodGet, "/api/parse-logs?source=rabota.md", "")
	if status != http.StatusOK || len(body["data"].([]any)) != 1 {
		t.Errorf("parse logs: %d %v", status, body)
	}
}

func TestCache_NotConfigured(t *testing.T) {
	app, _ := newApp(t)
	status, _ := do(t, app, http.MethodDelete, "/api/cache/u1", "")
	if status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", status)
	}
}

func TestCache_SingleSearch(t *testing.T) {
	c := &fakeCache{keys: map[string]bool{}}
	app, _ := newApp(t, func(d *api.Deps) { d.Cache = c })

	q := url.Values{"query": {"повар"}, "sources": {"rabota.md"}}
	status, body := do(t, app, http.MethodGet, "/api/cache/u1/exists?"+q.Encode(), "")
	if status != http.StatusOK {
		t.Fatalf("exists: %d %v", status, body)
	}
	data := body["data"].(map[string]any)
	key := data["key"].(string)
	if data["exists"] != false || !strings.HasPrefix(key, "vacancies:u1:") {
		t.Fatalf("exists = %v", data)
	}
	c.keys[key] = true
	c.keys["vacancies:u1:other"] = true

	status, body = do(t, app, http.MethodDelete, "/api/cache/u1/search?"+q.Encode(), "")
	if status != http.StatusOK || body["data"].(map[string]any)["key"] != key {
		t.Fatalf("clear search: %d %v", status, body)
	}
	if c.keys[key] || !c.keys["vacancies:u1:other"] {
		t.Errorf("only the matching search should go, left %v", c.keys)
	}

	status, _ = do(t, app, http.MethodDelete, "/api/cache/u1/search?salaryMin=-5", "")
	if status != http.StatusBadRequest {
		t.Errorf("bad filters: status = %d, want 400", status)
	}
}

// ── Dictionaries ──

func TestDictionaries(t *testing.T) {
	app, _ := newApp(t)

	status, body := do(t, app, http.MethodPost, "/api/dictionaries/refresh", `{"source": "rabota.md"}`)
	if status != http.StatusOK {
		t.Fatalf("refresh: %d %v", status, body)
	}

	status, body = do(t, app, http.MethodGet, "/api/dictionaries/rabota.md", "")
	if status != http.StatusOK || len(body["data"].([]any)) == 0 {
		t.Fatalf("list: %d %v", status, body)
	}

	status, body = do(t, app, http.MethodPost, "/api/dictionaries/search", `{"query": "повар", "sources": ["rabota.md"]}`)
	if status != http.StatusOK {
		t.Fatalf("search: %d %v", status, body)
	}
	mappings := body["data"].(map[string]any)["mappings"].([]any)
	if len(mappings) == 0 || mappings[0].(map[string]any)["similarity"].(float64) != 1.0 {
		t.Errorf("mappings = %v", mappings)
	}

	status, _ = do(t, app, http.MethodGet, "/api/dictionaries/linkedin.com", "")
	if status != http.StatusBadRequest {
		t.Errorf("unknown source: status = %d", status)
	}

	status, body = do(t, app, http.MethodDelete, "/api/dictionaries/rabota.md", "")
	if status != http.StatusOK || body["data"].(map[string]any)["deleted"].(float64) == 0 {
		t.Errorf("clear: %d %v", status, body)
	}
}

// ── Subscriptions ──

func TestSubscriptions(t *testing.T) {
	app, _ := newApp(t)

	status, _ := do(t, app, http.MethodPost, "/api/subscriptions", `{"filters": {}}`)
	if status != http.StatusBadRequest {
		t.Errorf("missing userId: status = %d", status)
	}
	status, _ = do(t, app, http.MethodPost, "/api/subscriptions", `{"userId": "u1", "filters": {"schedule": ["sometimes"]}}`)
	if status != http.StatusBadRequest {
		t.Errorf("bad schedule: status = %d", status)
	}

	status, body := do(t, app, http.MethodPost, "/api/subscriptions",
		`{"userId": "u1", "filters": {"keywords": ["повар"], "location_type": "abroad"}, "sources": ["hh.ru"]}`)
	if status != http.StatusCreated {
		t.Fatalf("create: %d %v", status, body)
	}
	sub := body["data"].(map[string]any)
	id := sub["id"].(string)
	if sub["filters"].(map[string]any)["location_type"] != string(domain.LocationAbroad) {
		t.Errorf("location type not normalized: %v", sub["filters"])
	}

	status, body = do(t, app, http.MethodGet, "/api/subscriptions?userId=u1", "")
	if status != http.StatusOK || len(body["data"].([]any)) != 1 {
		t.Errorf("list: %d %v", status, body)
	}

	status, body = do(t, app, http.MethodPatch, "/api/subscriptions/"+id, `{"is_active": false}`)
	if status != http.StatusOK || body["data"].(map[string]any)["is_active"] != false {
		t.Errorf("patch: %d %v", status, body)
	}

	status, _ = do(t, app, http.MethodDelete, "/api/subscriptions/"+id, "")
	if status != http.StatusNoContent {
		t.Errorf("delete: status = %d", status)
	}
	status, _ = do(t, app, http.MethodGet, "/api/subscriptions/"+id, "")
	if status != http.StatusNotFound {
		t.Errorf("get after delete: status = %d", status)
	}
}
