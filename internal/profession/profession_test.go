package profession_test

import (
	"testing"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/profession"
)

// ── DetermineCategory ────────────────────────────────────────────────────────

func TestDetermineCategory_Tiers(t *testing.T) {
	cases := []struct {
		name   string
		title  string
		source domain.Source
		want   string
	}{
		{"exact name", "Менеджер по продажам", domain.Source999MD, "Менеджер по продажам"},
		{"exact name case", "  бухгалтер ", domain.SourceRabotaMD, "Бухгалтер"},
		{"synonym", "Продавец-консультант", domain.Source999MD, "Продавец"},
		{"synonym latin", "Sales Manager", domain.SourceHHRU, "Менеджер по продажам"},
		{"source mapping", "Programator", domain.SourceRabotaMD, "Программист"},
		{"mapping of other source", "Programator", domain.Source999MD, ""},
		{"substring", "Старший менеджер по продажам", domain.SourceMaklerMD, "Менеджер по продажам"},
		{"substring generic", "Топ-менеджер", domain.SourceRabotaMD, "Менеджер"},
		{"inflected", "Помощник повара", domain.Source999MD, "Повар"},
		{"miss", "Космонавт", domain.SourceHHRU, ""},
		{"empty", "   ", domain.SourceHHRU, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := profession.DetermineCategory(c.title, c.source); got != c.want {
				t.Errorf("DetermineCategory(%q, %s) = %q, want %q", c.title, c.source, got, c.want)
			}
		})
	}
}

func TestDetermineCategory_Deterministic(t *testing.T) {
	first := profession.DetermineCategory("Продавец-консультант", domain.Source999MD)
	if first == "" {
		t.Fatal("expected a category")
	}
	for i := 0; i < 100; i++ {
		if got := profession.DetermineCategory("Продавец-консультант", domain.Source999MD); got != first {
			t.Fatalf("run %d: got %q, first was %q", i, got, first)
		}
	}
}

func TestDetermineCategory_OnlyCanonicalNames(t *testing.T) {
	names := map[string]bool{}
	for _, n := range profession.Names() {
		names[n] = true
	}
	titles := []string{
		"Водитель категории C", "Курьер на авто", "QA", "Оператор колл-центра",
		"Менеджер по персоналу", "Главный бухгалтер", "Учитель / Преподаватель", "Официант, бармен, бариста",
	}
	for _, title := range titles {
		for _, src := range domain.AllSources() {
			got := profession.DetermineCategory(title, src)
			if got != "" && !names[got] {
				t.Errorf("DetermineCategory(%q, %s) = %q, not a canonical name", title, src, got)
			}
		}
	}
}

// ── Anchor ───────────────────────────────────────────────────────────────────

func TestAnchor_ExactTiersOnly(t *testing.T) {
	if p := profession.Anchor("рекрутер"); p == nil || p.Name != "HR-менеджер" {
		t.Errorf("Anchor(рекрутер) = %v", p)
	}
	if p := profession.Anchor("Старший повар"); p != nil {
		t.Errorf("substring should not anchor, got %q", p.Name)
	}
	// mapped title of any source
	if p := profession.Anchor("Programator"); p == nil || p.Name != "Программист" {
		t.Errorf("Anchor(Programator) = %v", p)
	}
}

func TestTitlesFor_Fallback(t *testing.T) {
	p := profession.Find("Тестировщик")
	if p == nil {
		t.Fatal("Тестировщик not in table")
	}
	if got := p.TitlesFor(domain.SourceMaklerMD); len(got) != 1 || got[0] != "Тестировщик" {
		t.Errorf("TitlesFor(makler.md) = %v, want canonical name", got)
	}
	if got := p.TitlesFor(domain.SourceHHRU); got[0] != "Тестировщик" {
		t.Errorf("TitlesFor(hh.ru) = %v", got)
	}
}
