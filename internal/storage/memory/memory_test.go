package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/storage"
	"github.com/project-tktt/vacancy-hub/internal/storage/memory"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.October, 20, 9, 0, 0, 0, time.UTC)}
}

func intp(n int) *int { return &n }

// ── Vacancies ────────────────────────────────────────────────────────────────

func TestUpsert_IdempotentTimestamps(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := memory.NewVacancyStore(clock.Now)

	v := &domain.Vacancy{Source: domain.SourceRabotaMD, SourceID: "42", Title: "Повар", PublishedAt: clock.now}

	first, created, err := store.Upsert(ctx, v)
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}
	if !first.CreatedAt.Equal(first.UpdatedAt) {
		t.Errorf("first write: createdAt %v != updatedAt %v", first.CreatedAt, first.UpdatedAt)
	}

	clock.Advance(time.Minute)
	second, created, err := store.Upsert(ctx, v)
	if err != nil || created {
		t.Fatalf("second upsert: created=%v err=%v", created, err)
	}
	if second.ID != first.ID {
		t.Errorf("id changed: %d -> %d", first.ID, second.ID)
	}
	if !second.UpdatedAt.After(second.CreatedAt) {
		t.Errorf("second write: updatedAt %v should be after createdAt %v", second.UpdatedAt, second.CreatedAt)
	}

	n, _ := store.Count(ctx, domain.Filters{})
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestUpsert_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewVacancyStore(time.Now)

	got, _, _ := store.Upsert(ctx, &domain.Vacancy{Source: domain.SourceHHRU, SourceID: "1", Title: "Курьер", Skills: []string{"Go"}})
	got.Skills[0] = "mutated"

	list, _ := store.FindMany(ctx, domain.Filters{})
	if list[0].Skills[0] != "Go" {
		t.Errorf("store state leaked through returned pointer: %v", list[0].Skills)
	}
}

func TestFindMany_Filters(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := memory.NewVacancyStore(clock.Now)
	base := clock.now

	seed := []*domain.Vacancy{
		{Source: domain.SourceRabotaMD, SourceID: "1", Title: "Менеджер по продажам", Category: "Менеджер по продажам",
			Location: "Кишинёв", SalaryMin: intp(10000), Experience: domain.ExperienceOneThree,
			Schedule: domain.ScheduleOffice, Employment: domain.EmploymentFull, Skills: []string{"Sales", "English"},
			WorkLocationType: domain.LocationDomestic, PublishedAt: base.Add(-1 * time.Hour)},
		{Source: domain.Source999MD, SourceID: "2", Title: "Повар", Category: "Повар",
			Location: "Бельцы", SalaryMax: intp(9000), Experience: domain.ExperienceNone,
			Schedule: domain.ScheduleOffice, Employment: domain.EmploymentPart,
			WorkLocationType: domain.LocationDomestic, PublishedAt: base.Add(-2 * time.Hour)},
		{Source: domain.SourceHHRU, SourceID: "3", Title: "Go разработчик", Category: "Программист",
			Location: "Москва", SalaryMin: intp(40000), SalaryMax: intp(60000), Experience: domain.ExperienceThreeSix,
			Schedule: domain.ScheduleRemote, Employment: domain.EmploymentFull, Skills: []string{"Go", "PostgreSQL"},
			WorkLocationType: domain.LocationAbroad, PublishedAt: base.Add(-72 * time.Hour)},
	}
	for _, v := range seed {
		if _, _, err := store.Upsert(ctx, v); err != nil {
			t.Fatal(err)
		}
	}

	since := base.Add(-24 * time.Hour)
	later := base.Add(time.Minute)
	cases := []struct {
		name string
		f    domain.Filters
		want []string
	}{
		{"no filters, newest first", domain.Filters{}, []string{"1", "2", "3"}},
		{"keyword in title", domain.Filters{Keywords: []string{"повар"}}, []string{"2"}},
		{"keyword in category", domain.Filters{Keywords: []string{"программист"}}, []string{"3"}},
		{"keywords OR", domain.Filters{Keywords: []string{"повар", "продажам"}}, []string{"1", "2"}},
		{"location substring", domain.Filters{Locations: []string{"кишин"}}, []string{"1"}},
		{"salary floor hits min or max", domain.Filters{SalaryMin: intp(9000)}, []string{"1", "2", "3"}},
		{"salary floor", domain.Filters{SalaryMin: intp(20000)}, []string{"3"}},
		{"experience OR", domain.Filters{Experience: []domain.Experience{domain.ExperienceNone, domain.ExperienceThreeSix}}, []string{"2", "3"}},
		{"schedule", domain.Filters{Schedule: []domain.Schedule{domain.ScheduleRemote}}, []string{"3"}},
		{"employment", domain.Filters{Employment: []domain.Employment{domain.EmploymentPart}}, []string{"2"}},
		{"skills AND", domain.Filters{Skills: []string{"go", "postgresql"}}, []string{"3"}},
		{"skills AND miss", domain.Filters{Skills: []string{"go", "english"}}, nil},
		{"sources", domain.Filters{Sources: []domain.Source{domain.SourceRabotaMD, domain.SourceHHRU}}, []string{"1", "3"}},
		{"category exact", domain.Filters{Category: "повар"}, []string{"2"}},
		{"location type", domain.Filters{LocationType: domain.LocationAbroad}, []string{"3"}},
		{"published since", domain.Filters{PublishedSince: &since}, []string{"1", "2"}},
		{"created since, backdated publication", domain.Filters{CreatedSince: &base}, []string{"1", "2", "3"}},
		{"created since a later time", domain.Filters{CreatedSince: &later}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := store.FindMany(ctx, c.f)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(c.want) {
				t.Fatalf("got %d records, want %v", len(got), c.want)
			}
			for i, v := range got {
				if v.SourceID != c.want[i] {
					t.Errorf("[%d] = %s, want %s", i, v.SourceID, c.want[i])
				}
			}
			n, _ := store.Count(ctx, c.f)
			if n != len(c.want) {
				t.Errorf("Count = %d, want %d", n, len(c.want))
			}
		})
	}
}

func TestDeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := memory.NewVacancyStore(clock.Now)

	store.Upsert(ctx, &domain.Vacancy{Source: domain.SourceRabotaMD, SourceID: "old", Title: "a", PublishedAt: clock.now.AddDate(0, 0, -40)})
	store.Upsert(ctx, &domain.Vacancy{Source: domain.SourceRabotaMD, SourceID: "new", Title: "b", PublishedAt: clock.now})

	n, err := store.DeleteOlderThan(ctx, clock.now.AddDate(0, 0, -30))
	if err != nil || n != 1 {
		t.Fatalf("DeleteOlderThan = (%d, %v), want 1", n, err)
	}
	left, _ := store.FindMany(ctx, domain.Filters{})
	if len(left) != 1 || left[0].SourceID != "new" {
		t.Errorf("left = %v", left)
	}
}

// ── Parse logs ───────────────────────────────────────────────────────────────

func TestParseLogs_LatestSuccess(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	logs := memory.NewParseLogStore(clock.Now)

	logs.Append(ctx, &domain.ParseLog{Source: domain.SourceRabotaMD, SearchQuery: "повар", Status: domain.ParseSuccess, VacanciesFound: 3})
	clock.Advance(time.Hour)
	logs.Append(ctx, &domain.ParseLog{Source: domain.SourceRabotaMD, SearchQuery: "повар", Status: domain.ParseError, Error: "timeout"})
	clock.Advance(time.Hour)
	logs.Append(ctx, &domain.ParseLog{Source: domain.SourceRabotaMD, SearchQuery: "повар", Status: domain.ParseSuccess, VacanciesFound: 5})

	got, err := logs.LatestSuccess(ctx, domain.SourceRabotaMD, "Повар", clock.now.Add(-12*time.Hour))
	if err != nil || got == nil {
		t.Fatalf("LatestSuccess = (%v, %v)", got, err)
	}
	if got.VacanciesFound != 5 {
		t.Errorf("VacanciesFound = %d, want latest (5)", got.VacanciesFound)
	}

	got, _ = logs.LatestSuccess(ctx, domain.SourceRabotaMD, "повар", clock.now.Add(time.Minute))
	if got != nil {
		t.Errorf("nothing after since, got %+v", got)
	}
	got, _ = logs.LatestSuccess(ctx, domain.Source999MD, "повар", time.Time{})
	if got != nil {
		t.Errorf("other source should have no entries, got %+v", got)
	}

	recent, _ := logs.Recent(ctx, "", 2)
	if len(recent) != 2 || recent[0].VacanciesFound != 5 || recent[1].Status != domain.ParseError {
		t.Errorf("Recent = %+v", recent)
	}
}

// ── Dictionaries ─────────────────────────────────────────────────────────────

func TestDictionary_UpsertAndClear(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	dict := memory.NewDictionaryStore(clock.Now)

	first, _ := dict.Upsert(ctx, &domain.DictionaryEntry{Source: domain.SourceHHRU, Profession: "Курьер"})
	clock.Advance(time.Minute)
	second, _ := dict.Upsert(ctx, &domain.DictionaryEntry{Source: domain.SourceHHRU, Profession: "Курьер", Synonyms: []string{"доставщик"}})
	dict.Upsert(ctx, &domain.DictionaryEntry{Source: domain.Source999MD, Profession: "Curier"})

	if second.ID != first.ID || !second.CreatedAt.Equal(first.CreatedAt) || !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("upsert by (source, profession) broken: first=%+v second=%+v", first, second)
	}

	counts, _ := dict.Sources(ctx)
	if counts[domain.SourceHHRU] != 1 || counts[domain.Source999MD] != 1 {
		t.Errorf("Sources = %v", counts)
	}

	n, _ := dict.ClearSource(ctx, domain.SourceHHRU)
	if n != 1 {
		t.Errorf("ClearSource = %d", n)
	}
	list, _ := dict.ListBySource(ctx, domain.SourceHHRU)
	if len(list) != 0 {
		t.Errorf("entries left after clear: %v", list)
	}
}

// ── Subscriptions ────────────────────────────────────────────────────────────

func TestSubscriptions_CRUD(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	subs := memory.NewSubscriptionStore(clock.Now)

	sub := &domain.Subscription{UserID: "u1", IsActive: true, Filters: domain.Filters{Keywords: []string{"повар"}}}
	if err := subs.Create(ctx, sub); err != nil || sub.ID == "" {
		t.Fatalf("Create: id=%q err=%v", sub.ID, err)
	}
	subs.Create(ctx, &domain.Subscription{UserID: "u2", IsActive: false})

	active, _ := subs.ListActive(ctx)
	if len(active) != 1 || active[0].ID != sub.ID {
		t.Errorf("ListActive = %v", active)
	}

	at := clock.now.Add(time.Hour)
	if err := subs.MarkNotified(ctx, sub.ID, at); err != nil {
		t.Fatal(err)
	}
	got, _ := subs.Get(ctx, sub.ID)
	if got.LastNotified == nil || !got.LastNotified.Equal(at) {
		t.Errorf("LastNotified = %v", got.LastNotified)
	}

	if err := subs.Delete(ctx, sub.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := subs.Get(ctx, sub.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
	if err := subs.Update(ctx, &domain.Subscription{ID: "missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update missing: %v", err)
	}
}
