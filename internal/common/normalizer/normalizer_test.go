package normalizer_test

import (
	"testing"
	"time"

	"github.com/project-tktt/vacancy-hub/internal/common/normalizer"
	"github.com/project-tktt/vacancy-hub/internal/domain"
)

// ── Normalize ────────────────────────────────────────────────────────────────

func TestNormalize_KnownPhrases(t *testing.T) {
	cases := []struct {
		raw   string
		field normalizer.Field
		want  string
	}{
		{"Без опыта", normalizer.FieldExperience, string(domain.ExperienceNone)},
		{"noExperience", normalizer.FieldExperience, string(domain.ExperienceNone)},
		{"От 1 года до 3 лет", normalizer.FieldExperience, string(domain.ExperienceOneThree)},
		{"опыт 4 года", normalizer.FieldExperience, string(domain.ExperienceThreeSix)},
		{"Более 6 лет", normalizer.FieldExperience, string(domain.ExperienceSixPlus)},
		{"Полная занятость", normalizer.FieldEmployment, string(domain.EmploymentFull)},
		{"Неполный рабочий день", normalizer.FieldEmployment, string(domain.EmploymentPart)},
		{"работа на постоянной основе", normalizer.FieldEmployment, string(domain.EmploymentFull)},
		{"Стажировка", normalizer.FieldEmployment, string(domain.EmploymentProbation)},
		{"Удалённая работа", normalizer.FieldSchedule, string(domain.ScheduleRemote)},
		{"работа удаленно из дома", normalizer.FieldSchedule, string(domain.ScheduleRemote)},
		{"Гибридный формат", normalizer.FieldSchedule, string(domain.ScheduleHybrid)},
		{"В офисе", normalizer.FieldSchedule, string(domain.ScheduleOffice)},
		{"la distanță", normalizer.FieldSchedule, string(domain.ScheduleRemote)},
		{"2500 лей", normalizer.FieldCurrency, normalizer.CurrencyMDL},
		{"1000 €", normalizer.FieldCurrency, normalizer.CurrencyEUR},
		{"RUR", normalizer.FieldCurrency, normalizer.CurrencyRUB},
		{"golang", normalizer.FieldSkills, "Go"},
	}
	for _, c := range cases {
		got, ok := normalizer.Normalize(c.raw, c.field)
		if !ok || got != c.want {
			t.Errorf("Normalize(%q, %s) = (%q, %v), want %q", c.raw, c.field, got, ok, c.want)
		}
	}
}

func TestNormalize_FuzzyTypo(t *testing.T) {
	// one typo in a long token
	got, ok := normalizer.Normalize("freelanse", normalizer.FieldEmployment)
	if !ok || got != string(domain.EmploymentProject) {
		t.Errorf("typo should fall back to fuzzy match, got (%q, %v)", got, ok)
	}
	if _, ok := normalizer.Normalize("xyzzy", normalizer.FieldSchedule); ok {
		t.Error("unrelated token should not match")
	}
}

func TestNormalize_WordBoundaries(t *testing.T) {
	cases := []struct {
		raw   string
		field normalizer.Field
		want  string
	}{
		{"Опыт работы от 10 лет", normalizer.FieldExperience, string(domain.ExperienceSixPlus)},
		{"опыт от 3 до 6 лет", normalizer.FieldExperience, string(domain.ExperienceThreeSix)},
		{"требуется опыт от 1 года", normalizer.FieldExperience, string(domain.ExperienceOneThree)},
		{"1-3 years of experience", normalizer.FieldExperience, string(domain.ExperienceOneThree)},
		{"опыт не требуется, возраст до 45 лет", normalizer.FieldExperience, string(domain.ExperienceNone)},
		{"Full time, sales department", normalizer.FieldEmployment, string(domain.EmploymentFull)},
		{"временная работа", normalizer.FieldEmployment, string(domain.EmploymentProject)},
		{"Стажёр-программист", normalizer.FieldEmployment, string(domain.EmploymentProbation)},
		{"part-time", normalizer.FieldEmployment, string(domain.EmploymentPart)},
	}
	for _, c := range cases {
		got, ok := normalizer.Normalize(c.raw, c.field)
		if !ok || got != c.want {
			t.Errorf("Normalize(%q, %s) = (%q, %v), want %q", c.raw, c.field, got, ok, c.want)
		}
	}

	misses := []struct {
		raw   string
		field normalizer.Field
	}{
		{"Зарплата от 15000 лей", normalizer.FieldExperience},
		{"Своевременная выплата зарплаты", normalizer.FieldEmployment},
		{"Work in an international company", normalizer.FieldEmployment},
		{"выполнение заказов", normalizer.FieldEmployment},
		{"хорошее образование", normalizer.FieldEmployment},
	}
	for _, c := range misses {
		if got, ok := normalizer.Normalize(c.raw, c.field); ok {
			t.Errorf("Normalize(%q, %s) = %q, want no match", c.raw, c.field, got)
		}
	}
}

func TestNormalize_Totality(t *testing.T) {
	allowed := map[normalizer.Field]map[string]bool{
		normalizer.FieldExperience: {
			string(domain.ExperienceNone): true, string(domain.ExperienceOneThree): true,
			string(domain.ExperienceThreeSix): true, string(domain.ExperienceSixPlus): true,
		},
		normalizer.FieldEmployment: {
			string(domain.EmploymentFull): true, string(domain.EmploymentPart): true,
			string(domain.EmploymentProject): true, string(domain.EmploymentProbation): true,
		},
		normalizer.FieldSchedule: {
			string(domain.ScheduleOffice): true, string(domain.ScheduleRemote): true,
			string(domain.ScheduleHybrid): true,
		},
	}
	inputs := []string{
		"", "   ", "???", "полный день", "part", "от 10 лет", "Fără experiență", "unknown value",
		"удаленка", "офис в центре", "смена 2/2", "🙂", "12345", "договор", "internship 3 months",
		"гибкий график", "Programator", "la birou", "\x00\xff",
	}
	for field, vocab := range allowed {
		for _, in := range inputs {
			got, ok := normalizer.Normalize(in, field)
			if ok && !vocab[got] {
				t.Errorf("Normalize(%q, %s) = %q, outside vocabulary", in, field, got)
			}
			if !ok && got != "" {
				t.Errorf("Normalize(%q, %s) miss returned %q", in, field, got)
			}
		}
	}
}

// ── Currency ─────────────────────────────────────────────────────────────────

func TestExtractCurrency_Fallback(t *testing.T) {
	cases := []struct {
		text     string
		fallback string
		want     string
	}{
		{"2500 лей", "RUB", "MDL"},
		{"no currency info", "MDL", "MDL"},
		{"no currency info", "rub", "RUB"},
		{"no currency info", "", "MDL"},
		{"от 500 $", "MDL", "USD"},
		{"frontend developer", "MDL", "MDL"},
	}
	for _, c := range cases {
		if got := normalizer.ExtractCurrency(c.text, c.fallback); got != c.want {
			t.Errorf("ExtractCurrency(%q, %q) = %q, want %q", c.text, c.fallback, got, c.want)
		}
	}
}

// ── Skills ───────────────────────────────────────────────────────────────────

func TestExtractSkills_Set(t *testing.T) {
	text := "Требования: Golang, PostgreSQL, docker; знание английского. GOLANG обязательно, Docker-compose."
	got := normalizer.ExtractSkills(text)

	seen := map[string]int{}
	for _, s := range got {
		seen[s]++
	}
	for _, want := range []string{"Go", "PostgreSQL", "Docker", "English"} {
		if seen[want] != 1 {
			t.Errorf("skill %q seen %d times in %v", want, seen[want], got)
		}
	}
	if seen["Java"] != 0 {
		t.Errorf("JavaScript/Java should not be found in %v", got)
	}
}

// ── Slug ─────────────────────────────────────────────────────────────────────

func TestSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Полный день", "полный_день"},
		{"  Shift / 2x2 ", "shift_2x2"},
		{"---", ""},
	}
	for _, c := range cases {
		if got := normalizer.Slug(c.in); got != c.want {
			t.Errorf("Slug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// ── Values ───────────────────────────────────────────────────────────────────

func TestNumbers(t *testing.T) {
	got := normalizer.Numbers("от 10 000 до 15 000 лей, бонус 5%")
	want := []int{10000, 15000, 5}
	if len(got) != len(want) {
		t.Fatalf("Numbers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Numbers[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestParseTime(t *testing.T) {
	now := time.Date(2025, time.October, 20, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		in   any
		want time.Time
	}{
		{"2025-10-01", time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)},
		{"15.09.2025", time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC)},
		{"сегодня, 10:15", time.Date(2025, time.October, 20, 0, 0, 0, 0, time.UTC)},
		{"вчера", time.Date(2025, time.October, 19, 0, 0, 0, 0, time.UTC)},
		{"3 окт. 2025", time.Date(2025, time.October, 3, 0, 0, 0, 0, time.UTC)},
		{"garbage", now},
	}
	for _, c := range cases {
		if got := normalizer.ParseTime(c.in, now); !got.Equal(c.want) {
			t.Errorf("ParseTime(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
