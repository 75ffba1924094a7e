package module_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/module"
)

// ── PageTracker ──

func TestPageTracker_NoNewIDs(t *testing.T) {
	tr := module.NewPageTracker(2)

	pages := []struct {
		ids       []string
		wantFresh int
		wantStop  bool
	}{
		{[]string{"a", "b"}, 2, false},
		{[]string{"b", "c"}, 1, false},
		{[]string{"a", "c"}, 0, false},
		{[]string{"d"}, 1, false},
		{[]string{"d"}, 0, false},
		{nil, 0, true},
	}

	for i, p := range pages {
		fresh, stop := tr.Observe(p.ids)
		if fresh != p.wantFresh || stop != p.wantStop {
			t.Fatalf("page %d: got (%d, %v), want (%d, %v)", i+1, fresh, stop, p.wantFresh, p.wantStop)
		}
	}
	if !tr.Seen("c") || tr.Seen("z") {
		t.Error("Seen does not reflect observed ids")
	}
}

func TestPageTracker_EmptyOnly(t *testing.T) {
	tr := module.NewEmptyPageTracker(2)

	// repeated ids are fine, only empty pages count
	if _, stop := tr.Observe([]string{"a"}); stop {
		t.Fatal("stopped on first page")
	}
	if _, stop := tr.Observe([]string{"a"}); stop {
		t.Fatal("stopped on repeated but non-empty page")
	}
	if _, stop := tr.Observe(nil); stop {
		t.Fatal("stopped after one empty page")
	}
	if _, stop := tr.Observe([]string{"b"}); stop {
		t.Fatal("stopped on non-empty page")
	}
	if _, stop := tr.Observe(nil); stop {
		t.Fatal("idle counter not reset by non-empty page")
	}
	if _, stop := tr.Observe(nil); !stop {
		t.Fatal("expected stop after two consecutive empty pages")
	}
}

// ── Pause ──

func TestPause_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := module.Pause(ctx, time.Minute); err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > time.Second {
		t.Error("pause did not return early")
	}
}

func TestPause_NegativeSkips(t *testing.T) {
	start := time.Now()
	if err := module.Pause(context.Background(), -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("negative delay should not sleep")
	}
}

func TestParseConfig_WithDefaults(t *testing.T) {
	cfg := module.ParseConfig{SearchQuery: "повар"}.WithDefaults("https://example.md")
	if cfg.BaseURL != "https://example.md" || cfg.MaxPages != module.DefaultMaxPages {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	cfg = module.ParseConfig{BaseURL: "http://x", MaxPages: 2}.WithDefaults("https://example.md")
	if cfg.BaseURL != "http://x" || cfg.MaxPages != 2 {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

// ── Collect ──

func rawPage(ids ...string) []*domain.RawVacancy {
	out := make([]*domain.RawVacancy, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.RawVacancy{ID: id, Title: "t" + id, URL: "http://x/" + id})
	}
	return out
}

func TestCollect(t *testing.T) {
	errBoom := errors.New("boom")

	cases := []struct {
		name      string
		pages     map[int][]*domain.RawVacancy
		failAt    int
		maxPages  int
		wantIDs   []string
		wantCalls int
		wantErr   bool
	}{
		{
			name:      "stops after idle pages",
			pages:     map[int][]*domain.RawVacancy{1: rawPage("1", "2"), 2: rawPage("2"), 3: rawPage("1"), 4: rawPage("9")},
			maxPages:  10,
			wantIDs:   []string{"1", "2"},
			wantCalls: 3,
		},
		{
			name:      "respects max pages",
			pages:     map[int][]*domain.RawVacancy{1: rawPage("1"), 2: rawPage("2"), 3: rawPage("3")},
			maxPages:  2,
			wantIDs:   []string{"1", "2"},
			wantCalls: 2,
		},
		{
			name:      "id listed twice on one page",
			pages:     map[int][]*domain.RawVacancy{1: rawPage("1", "1", "2"), 2: rawPage("3", "2", "3")},
			maxPages:  2,
			wantIDs:   []string{"1", "2", "3"},
			wantCalls: 2,
		},
		{
			name:      "later failure keeps earlier pages",
			pages:     map[int][]*domain.RawVacancy{1: rawPage("1")},
			failAt:    2,
			maxPages:  5,
			wantIDs:   []string{"1"},
			wantCalls: 2,
		},
		{
			name:      "first page failure is returned",
			failAt:    1,
			maxPages:  5,
			wantCalls: 1,
			wantErr:   true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			fetch := func(_ context.Context, page int) ([]*domain.RawVacancy, error) {
				calls++
				if page == tc.failAt {
					return nil, errBoom
				}
				return tc.pages[page], nil
			}

			cfg := module.ParseConfig{MaxPages: tc.maxPages, Delay: -1}
			got, err := module.Collect(context.Background(), cfg, module.NewPageTracker(2), fetch, zap.NewNop())
			if tc.wantErr {
				if !errors.Is(err, errBoom) {
					t.Fatalf("expected boom, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if calls != tc.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tc.wantCalls)
			}
			if len(got) != len(tc.wantIDs) {
				t.Fatalf("got %d records, want %d", len(got), len(tc.wantIDs))
			}
			for i, id := range tc.wantIDs {
				if got[i].ID != id {
					t.Errorf("record %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestCollect_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetch := func(ctx context.Context, page int) ([]*domain.RawVacancy, error) {
		if page == 2 {
			cancel()
			return nil, ctx.Err()
		}
		return rawPage("1", "2"), nil
	}
	cfg := module.ParseConfig{MaxPages: 5, Delay: -1}
	got, err := module.Collect(ctx, cfg, module.NewPageTracker(2), fetch, zap.NewNop())
	if !errors.Is(err, module.ErrInterrupted) || !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want an interruption wrapping context.Canceled", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d records, want the first page", len(got))
	}
}

func TestCollect_CancelledBeforeFirstPage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetch := func(context.Context, int) ([]*domain.RawVacancy, error) {
		t.Fatal("no page should be fetched")
		return nil, nil
	}
	got, err := module.Collect(ctx, module.ParseConfig{MaxPages: 5, Delay: -1}, module.NewPageTracker(2), fetch, zap.NewNop())
	if !errors.Is(err, context.Canceled) || errors.Is(err, module.ErrInterrupted) || got != nil {
		t.Errorf("got %v, %v, want a plain cancellation", got, err)
	}
}

func TestIDFromURL(t *testing.T) {
	cases := []struct {
		link string
		want string
	}{
		{"https://www.rabota.md/ru/vacancies/100234/povar", "100234"},
		{"https://999.md/ru/87654321", "87654321"},
		{"/ru/companies/5555/rest", "5555"},
		{"https://makler.md/an/job/offer/view/1234567", "1234567"},
		{"https://example.md/jobs/chef", "jobs/chef"},
	}
	for _, tc := range cases {
		if got := module.IDFromURL(tc.link); got != tc.want {
			t.Errorf("IDFromURL(%q) = %q, want %q", tc.link, got, tc.want)
		}
	}
}

func TestAbsURL(t *testing.T) {
	if got := module.AbsURL("https://999.md/ru/list", "/ru/123"); got != "https://999.md/ru/123" {
		t.Errorf("relative: %q", got)
	}
	if got := module.AbsURL("https://999.md", "https://other.md/x"); got != "https://other.md/x" {
		t.Errorf("absolute: %q", got)
	}
	if got := module.AbsURL("https://999.md", "  "); got != "" {
		t.Errorf("blank: %q", got)
	}
}
