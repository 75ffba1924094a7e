package adapter

import (
	"github.com/project-tktt/vacancy-hub/internal/common/normalizer"
	"github.com/project-tktt/vacancy-hub/internal/domain"
)

// abroadMarker is what the Moldovan sites put in place of a city for postings abroad
const abroadMarker = "за границей"

type RabotaMD struct {
	tk *Toolkit
}

func NewRabotaMD(tk *Toolkit) *RabotaMD {
	return &RabotaMD{tk: tk}
}

func (a *RabotaMD) Source() domain.Source { return domain.SourceRabotaMD }

// ToCanonical maps rabota.md fields. The site has no abroad flag: the city
// field carries the sentinel and the real place is in workPlace.
func (a *RabotaMD) ToCanonical(raw *domain.RawVacancy) (*domain.Vacancy, error) {
	v, err := a.tk.Base(a.Source(), raw)
	if err != nil {
		return nil, err
	}
	data := raw.Data

	city := normalizer.String(data, "city")
	workPlace := normalizer.String(data, "workPlace", "mainOffice")

	v.WorkLocationType = domain.LocationDomestic
	v.Location = city
	if isAbroadCity(city) {
		v.WorkLocationType = domain.LocationAbroad
		v.Location = workPlace
		if v.Location == "" {
			v.Location = city
		}
		v.RawData["city"] = city
	} else if v.Location == "" {
		v.Location = workPlace
	}

	salaryText := normalizer.String(data, "salary")
	lo, hi := SalaryRange(salaryText)
	a.tk.SetSalary(v, lo, hi, normalizer.ExtractCurrency(salaryText, normalizer.CurrencyMDL), salaryText)

	a.tk.SetExperience(v, normalizer.String(data, "experience"))
	a.tk.SetEmployment(v, normalizer.String(data, "employment"))
	a.tk.SetSchedule(v, normalizer.String(data, "schedule"))
	a.tk.SetSkills(v, normalizer.StringList(data, "skills"))

	if id := normalizer.String(data, "companyId"); id != "" {
		v.RawData["companyId"] = id
	}
	return a.tk.Finish(v), nil
}

func isAbroadCity(city string) bool {
	return containsFold(city, abroadMarker)
}
