package adapter

import (
	"strings"

	"github.com/project-tktt/vacancy-hub/internal/common/normalizer"
	"github.com/project-tktt/vacancy-hub/internal/domain"
)

type MD999 struct {
	tk *Toolkit
}

func NewMD999(tk *Toolkit) *MD999 {
	return &MD999{tk: tk}
}

func (a *MD999) Source() domain.Source { return domain.Source999MD }

// ToCanonical maps 999.md ad attributes. The site's "workLocation" attribute
// holds the office/remote format and its "schedule" attribute holds the
// working time, so they are crossed over to Schedule and Employment.
func (a *MD999) ToCanonical(raw *domain.RawVacancy) (*domain.Vacancy, error) {
	v, err := a.tk.Base(a.Source(), raw)
	if err != nil {
		return nil, err
	}
	data := raw.Data

	v.Location = normalizer.String(data, "region", "location", "city")
	v.WorkLocationType = domain.LocationDomestic
	if containsFold(v.Location, abroadMarker) || containsFold(v.Location, "peste hotare") {
		v.WorkLocationType = domain.LocationAbroad
	}

	salaryText := normalizer.String(data, "salary", "price")
	currencyHint := normalizer.String(data, "currency")
	lo, hi := SalaryRange(salaryText)
	currency := normalizer.ExtractCurrency(strings.TrimSpace(currencyHint+" "+salaryText), normalizer.CurrencyMDL)
	a.tk.SetSalary(v, lo, hi, currency, salaryText)

	a.tk.SetExperience(v, normalizer.String(data, "experience"))
	a.tk.SetSchedule(v, normalizer.String(data, "workLocation"))
	a.tk.SetEmployment(v, normalizer.String(data, "schedule"))
	a.tk.SetSkills(v, normalizer.StringList(data, "skills"))

	for _, key := range []string{"phone", "views", "adType"} {
		if val := normalizer.String(data, key); val != "" {
			v.RawData[key] = val
		}
	}
	return a.tk.Finish(v), nil
}
