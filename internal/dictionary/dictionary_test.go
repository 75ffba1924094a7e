package dictionary_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/dictionary"
	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/profession"
	"github.com/project-tktt/vacancy-hub/internal/storage/memory"
)

func seed(t *testing.T, store *memory.DictionaryStore, source domain.Source, titles ...string) {
	t.Helper()
	for _, title := range titles {
		if _, err := store.Upsert(context.Background(), &domain.DictionaryEntry{Source: source, Profession: title}); err != nil {
			t.Fatal(err)
		}
	}
}

// ── FindProfessionMappings ───────────────────────────────────────────────────

func TestFindProfessionMappings_ExactBeforeSubstring(t *testing.T) {
	store := memory.NewDictionaryStore(time.Now)
	seed(t, store, domain.Source999MD, "Топ-менеджер", "Менеджер")
	svc := dictionary.NewService(store, zap.NewNop())

	res, err := svc.FindProfessionMappings(context.Background(), "менеджер", []domain.Source{domain.Source999MD})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Mappings) != 2 {
		t.Fatalf("mappings = %+v", res.Mappings)
	}
	if res.Mappings[0].Profession != "Менеджер" || res.Mappings[0].Similarity != 1.0 {
		t.Errorf("first = %+v, want exact match with 1.0", res.Mappings[0])
	}
	if res.Mappings[1].Profession != "Топ-менеджер" || res.Mappings[1].Similarity != 0.7 {
		t.Errorf("second = %+v, want substring match with 0.7", res.Mappings[1])
	}
	if res.SearchQuery != "менеджер" {
		t.Errorf("SearchQuery = %q", res.SearchQuery)
	}
}

func TestFindProfessionMappings_FullQueryTitle(t *testing.T) {
	store := memory.NewDictionaryStore(time.Now)
	seed(t, store, domain.SourceRabotaMD, "Старший менеджер по продажам", "Менеджер по продажам")
	svc := dictionary.NewService(store, zap.NewNop())

	res, _ := svc.FindProfessionMappings(context.Background(), "Менеджер по продажам", []domain.Source{domain.SourceRabotaMD})
	if len(res.Mappings) != 2 || res.Mappings[0].Similarity != 1.0 || res.Mappings[1].Similarity != 0.7 {
		t.Errorf("mappings = %+v", res.Mappings)
	}
}

func TestFindProfessionMappings_TopFourPerSource(t *testing.T) {
	store := memory.NewDictionaryStore(time.Now)
	seed(t, store, domain.SourceRabotaMD,
		"Менеджер", "Manager", "Менеджер по продажам", "Менеджер проекта", "Топ-менеджер", "Повар")
	seed(t, store, domain.Source999MD, "Бухгалтер")
	svc := dictionary.NewService(store, zap.NewNop())

	res, err := svc.FindProfessionMappings(context.Background(), "менеджер",
		[]domain.Source{domain.SourceRabotaMD, domain.Source999MD})
	if err != nil {
		t.Fatal(err)
	}

	want := []struct {
		title string
		score float64
	}{
		{"Менеджер", 1.0},
		{"Manager", 0.9},
		{"Менеджер по продажам", 0.7},
		{"Менеджер проекта", 0.7},
	}
	if len(res.Mappings) != len(want) {
		t.Fatalf("mappings = %+v", res.Mappings)
	}
	for i, w := range want {
		m := res.Mappings[i]
		if m.Source != domain.SourceRabotaMD || m.Profession != w.title || m.Similarity != w.score {
			t.Errorf("[%d] = %+v, want %s %.2f", i, m, w.title, w.score)
		}
	}

	best := res.BestTitles()
	if best[domain.SourceRabotaMD] != "Менеджер" {
		t.Errorf("BestTitles = %v", best)
	}
	if _, ok := best[domain.Source999MD]; ok {
		t.Error("source without matches must be omitted")
	}
}

// ── Score ────────────────────────────────────────────────────────────────────

func TestScore(t *testing.T) {
	anchor := profession.Anchor("программист")
	cases := []struct {
		name  string
		query string
		entry domain.DictionaryEntry
		want  float64
		ok    bool
	}{
		{"exact title ignoring case", "ПОВАР", domain.DictionaryEntry{Profession: "повар"}, dictionary.ScoreExactTitle, true},
		{"exact synonym", "developer", domain.DictionaryEntry{Profession: "Программист", Synonyms: []string{"Developer"}}, dictionary.ScoreExactSynonym, true},
		{"query inside title", "повар", domain.DictionaryEntry{Profession: "Повар-универсал"}, dictionary.ScoreSubstring, true},
		{"title inside query", "старший кассир", domain.DictionaryEntry{Profession: "Кассир"}, dictionary.ScoreSubstring, true},
		{"token overlap", "повар горячего цеха", domain.DictionaryEntry{Profession: "Повар-кондитер горячего цеха"}, 0.75, true},
		{"overlap at one half is not enough", "повар кондитер", domain.DictionaryEntry{Profession: "кондитер пекарь"}, 0, false},
		{"no relation", "водитель", domain.DictionaryEntry{Profession: "Бухгалтер"}, 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := dictionary.Score(c.query, &c.entry, nil)
			if ok != c.ok || got != c.want {
				t.Errorf("Score = (%v, %v), want (%v, %v)", got, ok, c.want, c.ok)
			}
		})
	}

	if anchor == nil {
		t.Fatal("programmer should anchor")
	}
	mapped := anchor.TitlesFor(domain.SourceRabotaMD)[0]
	entry := &domain.DictionaryEntry{Source: domain.SourceRabotaMD, Profession: mapped}
	if got, _ := dictionary.Score("программист", entry, anchor); got != dictionary.ScoreAnchorMapped && got != dictionary.ScoreExactTitle {
		t.Errorf("anchor-mapped title %q scored %v", mapped, got)
	}
}

// ── Save / Refresh ───────────────────────────────────────────────────────────

func TestSave_GeneratesSynonymsAndCategory(t *testing.T) {
	store := memory.NewDictionaryStore(time.Now)
	svc := dictionary.NewService(store, zap.NewNop())

	n, err := svc.Save(context.Background(), []*domain.DictionaryEntry{
		{Source: domain.Source999MD, Profession: " Курьер "},
		{Source: domain.Source999MD, Profession: ""},
	})
	if err != nil || n != 1 {
		t.Fatalf("Save = (%d, %v), want 1", n, err)
	}
	list, _ := svc.List(context.Background(), domain.Source999MD)
	if len(list) != 1 {
		t.Fatalf("list = %v", list)
	}
	e := list[0]
	if e.Profession != "Курьер" || e.Category != "Курьер" {
		t.Errorf("entry = %+v", e)
	}
	found := false
	for _, s := range e.Synonyms {
		if s == "доставщик" {
			found = true
		}
	}
	if !found {
		t.Errorf("synonyms not generated: %v", e.Synonyms)
	}
}

type fakeLister struct {
	entries []*domain.DictionaryEntry
	err     error
}

func (f *fakeLister) ListProfessions(context.Context) ([]*domain.DictionaryEntry, error) {
	return f.entries, f.err
}

func TestRefresher(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDictionaryStore(time.Now)
	svc := dictionary.NewService(store, zap.NewNop())

	lister := &fakeLister{entries: []*domain.DictionaryEntry{{Profession: "Оператор ПК", ProfessionID: "96"}}}
	r := dictionary.NewRefresher(svc, map[domain.Source]dictionary.ProfessionLister{domain.SourceHHRU: lister}, zap.NewNop())

	if _, err := r.Refresh(ctx, domain.SourceHHRU); err != nil {
		t.Fatal(err)
	}
	list, _ := svc.List(ctx, domain.SourceHHRU)
	var listed *domain.DictionaryEntry
	for _, e := range list {
		if e.Profession == "Оператор ПК" {
			listed = e
		}
	}
	if listed == nil || listed.ProfessionID != "96" || listed.Source != domain.SourceHHRU {
		t.Errorf("listed profession not saved: %+v", listed)
	}
	seeded := 0
	for _, e := range list {
		if e != listed && profession.Find(e.Category) != nil {
			seeded++
		}
	}
	if seeded == 0 {
		t.Errorf("canonical seed missing: %d entries", len(list))
	}

	// a failing listing still seeds the canonical titles
	lister.err = errors.New("api down")
	svc.Clear(ctx, domain.SourceHHRU)
	if _, err := r.Refresh(ctx, domain.SourceHHRU); err != nil {
		t.Fatal(err)
	}
	stats, _ := svc.Stats(ctx)
	if stats[domain.SourceHHRU] == 0 {
		t.Error("canonical seed not saved after lister failure")
	}
}
