// Package adapter turns source-specific raw records into canonical vacancies.
package adapter

import (
	"github.com/project-tktt/vacancy-hub/internal/domain"
)

// Adapter converts one source's raw records. Implementations have no side effects.
type Adapter interface {
	Source() domain.Source
	ToCanonical(raw *domain.RawVacancy) (*domain.Vacancy, error)
}

// Registry maps sources to their adapters
type Registry struct {
	adapters map[domain.Source]Adapter
}

// NewRegistry registers the adapters of every supported source
func NewRegistry(tk *Toolkit) *Registry {
	r := &Registry{adapters: make(map[domain.Source]Adapter)}
	r.Register(NewRabotaMD(tk))
	r.Register(NewMD999(tk))
	r.Register(NewMaklerMD(tk))
	r.Register(NewHHRU(tk))
	return r
}

func (r *Registry) Register(a Adapter) {
	r.adapters[a.Source()] = a
}

func (r *Registry) Get(source domain.Source) (Adapter, bool) {
	a, ok := r.adapters[source]
	return a, ok
}
