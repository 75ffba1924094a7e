package adapter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/project-tktt/vacancy-hub/internal/common/cleaner"
	"github.com/project-tktt/vacancy-hub/internal/common/normalizer"
	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
	"github.com/project-tktt/vacancy-hub/internal/profession"
)

// Raw data keys written by adapters
const (
	KeyOriginalCurrency  = "originalCurrency"
	KeyOriginalSalaryMin = "originalSalaryMin"
	KeyOriginalSalaryMax = "originalSalaryMax"
	KeySalaryText        = "salaryText"
	KeyNormalization     = "normalization"
)

// Toolkit bundles the helpers every source adapter shares
type Toolkit struct {
	Rates   RateProvider
	Cleaner *cleaner.Cleaner
	Now     func() time.Time
}

func NewToolkit(rates RateProvider) *Toolkit {
	if rates == nil {
		rates = DefaultRates()
	}
	return &Toolkit{
		Rates:   rates,
		Cleaner: cleaner.NewCleaner(),
		Now:     time.Now,
	}
}

// Base validates the mandatory raw fields and fills identity and provenance
func (t *Toolkit) Base(source domain.Source, raw *domain.RawVacancy) (*domain.Vacancy, error) {
	if raw == nil {
		return nil, apperrors.Validation(fmt.Sprintf("%s: nil record", source), nil)
	}
	var missing []string
	if strings.TrimSpace(raw.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(raw.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(raw.URL) == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return nil, apperrors.Validation(
			fmt.Sprintf("%s record %q missing %s", source, raw.ID, strings.Join(missing, ", ")), nil)
	}

	data := raw.Data
	if data == nil {
		data = map[string]any{}
	}

	fallback := raw.ExtractedAt
	if fallback.IsZero() {
		fallback = t.Now()
	}

	return &domain.Vacancy{
		Source:      source,
		SourceID:    strings.TrimSpace(raw.ID),
		Title:       t.Cleaner.Text(raw.Title),
		Company:     t.Cleaner.Text(normalizer.String(data, "company", "companyName", "employer")),
		Description: t.Cleaner.Text(normalizer.String(data, "description", "body")),
		SourceURL:   strings.TrimSpace(raw.URL),
		PublishedAt: normalizer.ParseTime(firstValue(data, "publishedAt", "published_at", "date"), fallback),
		Skills:      []string{},
		RawData:     domain.RawData{},
	}, nil
}

// Finish sets the derived fields once the source-specific mapping is done
func (t *Toolkit) Finish(v *domain.Vacancy) *domain.Vacancy {
	v.Category = profession.DetermineCategory(v.Title, v.Source)
	if v.SalaryCurrency == "" {
		v.SalaryCurrency = ReferenceCurrency
	}
	if v.WorkLocationType == "" {
		v.WorkLocationType = domain.LocationDomestic
	}
	if len(v.RawData) == 0 {
		v.RawData = nil
	}
	return v
}

// SalaryRange reads min and max from the first and last numbers of a salary string
func SalaryRange(text string) (lo, hi *int) {
	var nums []int
	for _, n := range normalizer.Numbers(text) {
		if n > 0 {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return nil, nil
	}
	first, last := nums[0], nums[len(nums)-1]
	if len(nums) == 1 {
		lower := strings.ToLower(strings.TrimSpace(text))
		switch {
		case hasAnyPrefix(lower, "до", "up to", "până la", "pana la"):
			return nil, &first
		case hasAnyPrefix(lower, "от", "from", "de la", "peste"):
			return &first, nil
		}
	}
	if first > last {
		first, last = last, first
	}
	return &first, &last
}

// SetSalary converts the amounts into the reference currency and keeps the
// originals in raw data. Without a rate the salary stays unset.
func (t *Toolkit) SetSalary(v *domain.Vacancy, lo, hi *int, currency, text string) {
	v.SalaryCurrency = ReferenceCurrency
	if text = strings.TrimSpace(text); text != "" {
		v.RawData[KeySalaryText] = text
	}
	if lo == nil && hi == nil {
		return
	}
	currency = strings.ToUpper(currency)
	v.RawData[KeyOriginalCurrency] = currency
	if lo != nil {
		v.RawData[KeyOriginalSalaryMin] = *lo
	}
	if hi != nil {
		v.RawData[KeyOriginalSalaryMax] = *hi
	}

	rate, ok := t.Rates.Rate(currency, ReferenceCurrency)
	if !ok {
		return
	}
	v.SalaryMin = convert(lo, rate)
	v.SalaryMax = convert(hi, rate)
}

func (t *Toolkit) SetExperience(v *domain.Vacancy, raw string) {
	v.Experience = domain.Experience(t.normalize(v, normalizer.FieldExperience, raw))
}

func (t *Toolkit) SetEmployment(v *domain.Vacancy, raw string) {
	v.Employment = domain.Employment(t.normalize(v, normalizer.FieldEmployment, raw))
}

func (t *Toolkit) SetSchedule(v *domain.Vacancy, raw string) {
	v.Schedule = domain.Schedule(t.normalize(v, normalizer.FieldSchedule, raw))
}

// SetSkills merges listed skills with the ones found in the description
func (t *Toolkit) SetSkills(v *domain.Vacancy, listed []string) {
	seen := make(map[string]bool)
	out := make([]string, 0, len(listed))
	add := func(s string) {
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}
	for _, s := range listed {
		s = strings.TrimSpace(s)
		if canon, ok := normalizer.Normalize(s, normalizer.FieldSkills); ok {
			s = canon
		}
		add(s)
	}
	for _, s := range normalizer.ExtractSkills(v.Title + "\n" + v.Description) {
		add(s)
	}
	v.Skills = out
}

// normalize returns the canonical value or records an opaque slug for diagnostics
func (t *Toolkit) normalize(v *domain.Vacancy, field normalizer.Field, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if val, ok := normalizer.Normalize(raw, field); ok {
		return val
	}
	diag, _ := v.RawData[KeyNormalization].(map[string]string)
	if diag == nil {
		diag = make(map[string]string)
		v.RawData[KeyNormalization] = diag
	}
	diag[string(field)] = normalizer.Slug(raw)
	return ""
}

func convert(amount *int, rate float64) *int {
	if amount == nil {
		return nil
	}
	n := int(math.Round(float64(*amount) * rate))
	return &n
}

func firstValue(data map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := data[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// containsFold is a case-insensitive Contains; sub must already be lower-case
func containsFold(s, sub string) bool {
	return strings.Contains(profession.Fold(s), sub)
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
