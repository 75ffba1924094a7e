package adapter

import (
	"github.com/project-tktt/vacancy-hub/internal/common/normalizer"
	"github.com/project-tktt/vacancy-hub/internal/domain"
)

type HHRU struct {
	tk *Toolkit
}

func NewHHRU(tk *Toolkit) *HHRU {
	return &HHRU{tk: tk}
}

func (a *HHRU) Source() domain.Source { return domain.SourceHHRU }

// ToCanonical maps an hh.ru API item. Every hh.ru posting is abroad from
// the point of view of a Moldovan job seeker, whatever its area says.
func (a *HHRU) ToCanonical(raw *domain.RawVacancy) (*domain.Vacancy, error) {
	v, err := a.tk.Base(a.Source(), raw)
	if err != nil {
		return nil, err
	}
	data := raw.Data

	v.WorkLocationType = domain.LocationAbroad
	if v.Company == "" {
		v.Company = normalizer.String(child(data, "employer"), "name")
	}
	v.Location = normalizer.String(child(data, "address"), "raw")
	if v.Location == "" {
		v.Location = normalizer.String(child(data, "area"), "name")
	}
	if v.Description == "" {
		snippet := child(data, "snippet")
		v.Description = a.tk.Cleaner.Text(normalizer.String(snippet, "requirement") + "\n" + normalizer.String(snippet, "responsibility"))
	}

	if salary := child(data, "salary"); salary != nil {
		var lo, hi *int
		if n, ok := normalizer.Int(salary, "from"); ok && n > 0 {
			lo = &n
		}
		if n, ok := normalizer.Int(salary, "to"); ok && n > 0 {
			hi = &n
		}
		currency := normalizer.ExtractCurrency(normalizer.String(salary, "currency"), normalizer.CurrencyRUB)
		a.tk.SetSalary(v, lo, hi, currency, "")
	}

	a.tk.SetExperience(v, idOrName(child(data, "experience"), normalizer.FieldExperience))
	a.tk.SetEmployment(v, idOrName(child(data, "employment"), normalizer.FieldEmployment))
	a.tk.SetSchedule(v, idOrName(child(data, "schedule"), normalizer.FieldSchedule))

	var listed []string
	if items, ok := data["key_skills"].([]any); ok {
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				listed = append(listed, normalizer.String(m, "name"))
			}
		}
	}
	a.tk.SetSkills(v, listed)

	if area := normalizer.String(child(data, "area"), "name"); area != "" {
		v.RawData["area"] = area
	}
	return a.tk.Finish(v), nil
}

func child(data map[string]any, key string) map[string]any {
	m, _ := data[key].(map[string]any)
	return m
}

// idOrName prefers the stable API id ("between1And3") over the localized name
func idOrName(m map[string]any, field normalizer.Field) string {
	if id := normalizer.String(m, "id"); id != "" {
		if _, ok := normalizer.Normalize(id, field); ok {
			return id
		}
	}
	return normalizer.String(m, "name")
}
