package adapter

import (
	"strings"

	"github.com/project-tktt/vacancy-hub/internal/common/normalizer"
)

// ReferenceCurrency is the currency every stored salary is expressed in
const ReferenceCurrency = normalizer.CurrencyMDL

// RateProvider returns how many units of to one unit of from is worth
type RateProvider interface {
	Rate(from, to string) (float64, bool)
}

// StaticRates holds the value of one unit of each currency in the reference currency
type StaticRates map[string]float64

// DefaultRates is a fixed table, good enough for ranking and filtering salaries
func DefaultRates() StaticRates {
	return StaticRates{
		normalizer.CurrencyMDL: 1,
		normalizer.CurrencyEUR: 19.5,
		normalizer.CurrencyUSD: 17.8,
		normalizer.CurrencyRUB: 0.2,
		normalizer.CurrencyRON: 3.9,
	}
}

func (r StaticRates) Rate(from, to string) (float64, bool) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return 1, true
	}
	fromRef, okFrom := r[from]
	toRef, okTo := r[to]
	switch {
	case okFrom && to == ReferenceCurrency:
		return fromRef, true
	case okTo && from == ReferenceCurrency && toRef != 0:
		return 1 / toRef, true
	case okFrom && okTo && toRef != 0:
		return fromRef / toRef, true
	}
	return 0, false
}
