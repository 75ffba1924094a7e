// Package dictionary persists per-source profession dictionaries and maps
// free-text queries onto each source's own titles.
package dictionary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/profession"
	"github.com/project-tktt/vacancy-hub/internal/storage"
)

const (
	ScoreExactTitle   = 1.0
	ScoreExactSynonym = 0.95
	ScoreAnchorMapped = 0.9
	ScoreSubstring    = 0.7
	// token overlap must be strictly above this
	overlapThreshold = 0.5

	topPerSource = 4
)

// Mapping is one source title ranked against a query
type Mapping struct {
	Source       domain.Source `json:"source"`
	Profession   string        `json:"profession"`
	ProfessionID string        `json:"profession_id,omitempty"`
	Similarity   float64       `json:"similarity"`
}

type Result struct {
	SearchQuery string    `json:"search_query"`
	Mappings    []Mapping `json:"mappings"`
}

// BestTitles returns the highest ranked title per source
func (r *Result) BestTitles() map[domain.Source]string {
	best := make(map[domain.Source]string)
	for _, m := range r.Mappings {
		if _, ok := best[m.Source]; !ok {
			best[m.Source] = m.Profession
		}
	}
	return best
}

// Service is the profession dictionary service
type Service struct {
	store  storage.DictionaryStore
	logger *zap.Logger
}

func NewService(store storage.DictionaryStore, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Save upserts entries by (source, profession), filling in synonyms and
// category when the caller left them empty. It returns the number saved.
func (s *Service) Save(ctx context.Context, entries []*domain.DictionaryEntry) (int, error) {
	saved := 0
	for _, e := range entries {
		e.Profession = strings.TrimSpace(e.Profession)
		if e.Profession == "" {
			continue
		}
		if len(e.Synonyms) == 0 {
			e.Synonyms = GenerateSynonyms(e.Profession)
		}
		if e.Category == "" {
			e.Category = profession.DetermineCategory(e.Profession, e.Source)
		}
		if _, err := s.store.Upsert(ctx, e); err != nil {
			return saved, fmt.Errorf("save %s/%s: %w", e.Source, e.Profession, err)
		}
		saved++
	}
	return saved, nil
}

func (s *Service) List(ctx context.Context, source domain.Source) ([]*domain.DictionaryEntry, error) {
	return s.store.ListBySource(ctx, source)
}

// Clear removes every entry of a source
func (s *Service) Clear(ctx context.Context, source domain.Source) (int, error) {
	n, err := s.store.ClearSource(ctx, source)
	if err != nil {
		return 0, err
	}
	s.logger.Info("dictionary cleared", zap.String("source", string(source)), zap.Int("entries", n))
	return n, nil
}

// Stats returns the entry count per source
func (s *Service) Stats(ctx context.Context) (map[domain.Source]int, error) {
	return s.store.Sources(ctx)
}

// FindProfessionMappings ranks every stored title of each source against the
// query and keeps the best four per source. Sources without a match are omitted.
func (s *Service) FindProfessionMappings(ctx context.Context, query string, sources []domain.Source) (*Result, error) {
	res := &Result{SearchQuery: query, Mappings: []Mapping{}}
	if strings.TrimSpace(query) == "" {
		return res, nil
	}
	anchor := profession.Anchor(query)

	for _, src := range sources {
		entries, err := s.store.ListBySource(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("list dictionary %s: %w", src, err)
		}

		var ranked []Mapping
		for _, e := range entries {
			score, ok := Score(query, e, anchor)
			if !ok {
				continue
			}
			ranked = append(ranked, Mapping{
				Source:       src,
				Profession:   e.Profession,
				ProfessionID: e.ProfessionID,
				Similarity:   score,
			})
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			if ranked[i].Similarity != ranked[j].Similarity {
				return ranked[i].Similarity > ranked[j].Similarity
			}
			return ranked[i].Profession < ranked[j].Profession
		})
		if len(ranked) > topPerSource {
			ranked = ranked[:topPerSource]
		}
		res.Mappings = append(res.Mappings, ranked...)
	}

	s.logger.Debug("profession mappings",
		zap.String("query", query),
		zap.Int("mappings", len(res.Mappings)),
		zap.Bool("anchored", anchor != nil),
	)
	return res, nil
}

// Score rates a dictionary entry against a query. Tiers, first hit wins:
// exact title, exact synonym, title listed in the anchor's mappings for the
// entry's source, substring either way, token overlap above one half.
func Score(query string, e *domain.DictionaryEntry, anchor *profession.CanonicalProfession) (float64, bool) {
	q := profession.Fold(query)
	title := profession.Fold(e.Profession)
	if q == "" || title == "" {
		return 0, false
	}

	if title == q {
		return ScoreExactTitle, true
	}
	for _, syn := range e.Synonyms {
		if profession.Fold(syn) == q {
			return ScoreExactSynonym, true
		}
	}
	if anchor != nil {
		for _, mapped := range anchor.SourceMappings[e.Source] {
			if profession.Fold(mapped) == title {
				return ScoreAnchorMapped, true
			}
		}
	}
	if strings.Contains(title, q) || strings.Contains(q, title) {
		return ScoreSubstring, true
	}
	if ratio := tokenOverlap(q, title); ratio > overlapThreshold {
		return ratio, true
	}
	return 0, false
}

// tokenOverlap is |common| / max(|a|, |b|) over distinct word tokens
func tokenOverlap(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	common := 0
	for t := range ta {
		if tb[t] {
			common++
		}
	}
	return float64(common) / float64(max(len(ta), len(tb)))
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, t := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		out[t] = true
	}
	return out
}
