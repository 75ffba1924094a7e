package dictionary

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/profession"
)

// ProfessionLister is implemented by parsers that can enumerate the
// profession taxonomy of their site
type ProfessionLister interface {
	ListProfessions(ctx context.Context) ([]*domain.DictionaryEntry, error)
}

// Refresher rebuilds per-source dictionaries from the canonical table and,
// where available, from the site's own taxonomy
type Refresher struct {
	service *Service
	listers map[domain.Source]ProfessionLister
	logger  *zap.Logger
	now     func() time.Time
}

func NewRefresher(service *Service, listers map[domain.Source]ProfessionLister, logger *zap.Logger) *Refresher {
	if listers == nil {
		listers = make(map[domain.Source]ProfessionLister)
	}
	return &Refresher{service: service, listers: listers, logger: logger, now: time.Now}
}

// Refresh seeds one source and returns the number of entries saved.
// A failing site listing is logged; the canonical seed is still kept.
func (r *Refresher) Refresh(ctx context.Context, source domain.Source) (int, error) {
	checked := r.now()
	var entries []*domain.DictionaryEntry
	for _, p := range profession.All() {
		for _, title := range p.TitlesFor(source) {
			entries = append(entries, &domain.DictionaryEntry{
				Source:        source,
				Profession:    title,
				Category:      p.Name,
				LastCheckedAt: &checked,
			})
		}
	}

	if lister, ok := r.listers[source]; ok {
		listed, err := lister.ListProfessions(ctx)
		if err != nil {
			r.logger.Warn("list professions failed",
				zap.String("source", string(source)),
				zap.Error(err),
			)
		} else {
			for _, e := range listed {
				e.Source = source
				if e.LastCheckedAt == nil {
					e.LastCheckedAt = &checked
				}
			}
			entries = append(entries, listed...)
		}
	}

	n, err := r.service.Save(ctx, entries)
	if err != nil {
		return n, fmt.Errorf("refresh dictionary %s: %w", source, err)
	}
	r.logger.Info("dictionary refreshed", zap.String("source", string(source)), zap.Int("entries", n))
	return n, nil
}

// RefreshAll refreshes each source in turn and stops at the first store failure
func (r *Refresher) RefreshAll(ctx context.Context, sources []domain.Source) (int, error) {
	total := 0
	for _, src := range sources {
		n, err := r.Refresh(ctx, src)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
