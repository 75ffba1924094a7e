package adapter

import (
	"sort"
	"strings"

	"github.com/project-tktt/vacancy-hub/internal/common/normalizer"
	"github.com/project-tktt/vacancy-hub/internal/domain"
)

// Salary markers on makler.md, in Russian, Romanian and English
var salaryKeywords = []string{
	"заработная плата", "зарплата", "з/п", "зп", "оплата", "доход",
	"salariu", "salariul", "salary", "wage",
}

const (
	// runes scanned after a salary keyword
	salaryWindow = 60
	// smaller numbers are hours, days or ages rather than amounts
	minSalaryAmount = 100
)

type MaklerMD struct {
	tk *Toolkit
}

func NewMaklerMD(tk *Toolkit) *MaklerMD {
	return &MaklerMD{tk: tk}
}

func (a *MaklerMD) Source() domain.Source { return domain.SourceMaklerMD }

// ToCanonical maps makler.md listings. Listing pages carry no salary field,
// so it is mined from the description text.
func (a *MaklerMD) ToCanonical(raw *domain.RawVacancy) (*domain.Vacancy, error) {
	v, err := a.tk.Base(a.Source(), raw)
	if err != nil {
		return nil, err
	}
	data := raw.Data

	v.Location = normalizer.String(data, "location", "city", "region")
	v.WorkLocationType = domain.LocationDomestic
	if containsFold(v.Location, abroadMarker) {
		v.WorkLocationType = domain.LocationAbroad
	}

	text := v.Title + "\n" + v.Description
	lo, hi, currency, snippet := MineSalary(text, normalizer.CurrencyMDL)
	a.tk.SetSalary(v, lo, hi, currency, snippet)

	// no dedicated fields either; the description is the only hint
	a.tk.SetExperience(v, findPhrase(v.Description, normalizer.FieldExperience, "опыт", "стаж", "experien"))
	a.tk.SetEmployment(v, findPhrase(v.Description, normalizer.FieldEmployment))
	a.tk.SetSchedule(v, findPhrase(v.Description, normalizer.FieldSchedule))
	a.tk.SetSkills(v, nil)

	if phone := normalizer.String(data, "phone"); phone != "" {
		v.RawData["phone"] = phone
	}
	return a.tk.Finish(v), nil
}

// MineSalary looks for a salary keyword and reads the amounts that follow it.
// The snippet is the text window the amounts were taken from.
func MineSalary(text, fallbackCurrency string) (salaryMin, salaryMax *int, currency, snippet string) {
	runes := []rune(text)
	lowerRunes := []rune(strings.ToLower(text))
	if len(runes) != len(lowerRunes) {
		runes = lowerRunes
	}

	var positions []int
	for _, kw := range salaryKeywords {
		kwRunes := []rune(kw)
		for i := 0; i+len(kwRunes) <= len(lowerRunes); i++ {
			if string(lowerRunes[i:i+len(kwRunes)]) == kw {
				positions = append(positions, i+len(kwRunes))
			}
		}
	}
	sort.Ints(positions)

	for _, start := range positions {
		end := min(start+salaryWindow, len(runes))
		window := string(runes[start:end])

		var amounts []int
		for _, n := range normalizer.Numbers(window) {
			if n >= minSalaryAmount {
				amounts = append(amounts, n)
			}
		}
		if len(amounts) == 0 {
			continue
		}
		lo, hi := amounts[0], amounts[len(amounts)-1]
		if lo > hi {
			lo, hi = hi, lo
		}
		snippet = strings.TrimSpace(window)
		return &lo, &hi, normalizer.ExtractCurrency(window, fallbackCurrency), snippet
	}
	return nil, nil, normalizer.ExtractCurrency("", fallbackCurrency), ""
}

// findPhrase returns the first description line that normalizes for field.
// With markers, only lines mentioning one of them are considered.
func findPhrase(description string, field normalizer.Field, markers ...string) string {
	for _, line := range strings.Split(description, "\n") {
		if len(markers) > 0 && !containsAnyFold(line, markers) {
			continue
		}
		if _, ok := normalizer.Normalize(line, field); ok {
			return line
		}
	}
	return ""
}

func containsAnyFold(s string, subs []string) bool {
	for _, sub := range subs {
		if containsFold(s, sub) {
			return true
		}
	}
	return false
}
