package hhru

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/common/extractor"
	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/module"
	"github.com/project-tktt/vacancy-hub/internal/profession"
)

const (
	// Public API, no key needed for search
	DefaultBaseURL = "https://api.hh.ru"
	PerPage        = 50
)

// SearchResponse is the /vacancies response. Items stay untyped: the
// adapter reads them as a key-value bag.
type SearchResponse struct {
	Items   []map[string]any `json:"items"`
	Found   int              `json:"found"`
	Pages   int              `json:"pages"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// RolesResponse is the /professional_roles response
type RolesResponse struct {
	Categories []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Roles []Role `json:"roles"`
	} `json:"categories"`
}

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Config struct {
	// API root, DefaultBaseURL when empty
	BaseURL string
	// Area restricts the search, empty searches everywhere
	Area string
	// Load the full vacancy for description and key skills
	WithDetails       bool
	DetailConcurrency int
}

// Parser implements module.Parser over the hh.ru API
type Parser struct {
	api    *extractor.APIExtractor
	config Config
	logger *zap.Logger
}

func NewParser(api *extractor.APIExtractor, cfg Config, logger *zap.Logger) *Parser {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.DetailConcurrency <= 0 {
		cfg.DetailConcurrency = extractor.DefaultDetailConcurrency
	}
	return &Parser{
		api:    api,
		config: cfg,
		logger: logger.With(zap.String("source", string(domain.SourceHHRU))),
	}
}

func (p *Parser) Source() domain.Source {
	return domain.SourceHHRU
}

// Parse pages through the API until the reported page count or the first empty page
func (p *Parser) Parse(ctx context.Context, cfg module.ParseConfig) (*module.ParseResult, error) {
	cfg = cfg.WithDefaults(p.config.BaseURL)

	var (
		records []*domain.RawVacancy
		found   int
	)
	seen := make(map[string]bool)

	for page := 0; page < cfg.MaxPages; page++ {
		select {
		case <-ctx.Done():
			if page == 0 {
				return nil, ctx.Err()
			}
			return p.result(records, found), module.Interrupted(page+1, ctx.Err())
		default:
		}

		var resp SearchResponse
		if err := p.api.FetchJSON(ctx, p.searchURL(cfg, page), &resp); err != nil {
			if page == 0 {
				return nil, err
			}
			if ctx.Err() != nil {
				return p.result(records, found), module.Interrupted(page+1, ctx.Err())
			}
			p.logger.Warn("page failed, keeping earlier pages", zap.Int("page", page), zap.Error(err))
			break
		}
		found = resp.Found

		if len(resp.Items) == 0 {
			p.logger.Debug("no more vacancies", zap.Int("page", page))
			break
		}

		now := time.Now()
		for _, item := range resp.Items {
			r := toRaw(item, now)
			if r == nil || seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			records = append(records, r)
		}

		if resp.Pages > 0 && page >= resp.Pages-1 {
			break
		}
		if page < cfg.MaxPages-1 {
			if err := module.Pause(ctx, cfg.Delay); err != nil {
				return p.result(records, found), module.Interrupted(page+2, err)
			}
		}
	}

	if p.config.WithDetails && len(records) > 0 {
		p.enrich(ctx, cfg.BaseURL, records)
	}

	p.logger.Info("parsed", zap.Int("records", len(records)), zap.Int("found", found), zap.String("query", cfg.SearchQuery))
	return p.result(records, found), nil
}

func (p *Parser) result(records []*domain.RawVacancy, found int) *module.ParseResult {
	if found < len(records) {
		found = len(records)
	}
	return &module.ParseResult{Records: records, TotalFound: found}
}

// ParseVacancyDetails accepts either the site link or the API link of a vacancy
func (p *Parser) ParseVacancyDetails(ctx context.Context, link string) (map[string]any, error) {
	return p.details(ctx, p.config.BaseURL, link)
}

func (p *Parser) details(ctx context.Context, baseURL, link string) (map[string]any, error) {
	id := module.IDFromURL(link)
	var item map[string]any
	if err := p.api.FetchJSON(ctx, strings.TrimRight(baseURL, "/")+"/vacancies/"+url.PathEscape(id), &item); err != nil {
		return nil, err
	}

	out := map[string]any{}
	for _, key := range []string{"description", "key_skills", "experience", "employment", "schedule", "address"} {
		if v, ok := item[key]; ok && v != nil {
			out[key] = v
		}
	}
	return out, nil
}

// ListProfessions reads the professional roles taxonomy for the dictionary
func (p *Parser) ListProfessions(ctx context.Context) ([]*domain.DictionaryEntry, error) {
	var resp RolesResponse
	if err := p.api.FetchJSON(ctx, strings.TrimRight(p.config.BaseURL, "/")+"/professional_roles", &resp); err != nil {
		return nil, fmt.Errorf("list professional roles: %w", err)
	}
	return RolesToEntries(resp), nil
}

// RolesToEntries flattens the role tree; a role listed under several
// categories is kept once
func RolesToEntries(resp RolesResponse) []*domain.DictionaryEntry {
	var out []*domain.DictionaryEntry
	seen := make(map[string]bool)
	for _, cat := range resp.Categories {
		for _, role := range cat.Roles {
			name := strings.TrimSpace(role.Name)
			if name == "" || seen[role.ID] {
				continue
			}
			seen[role.ID] = true
			out = append(out, &domain.DictionaryEntry{
				Source:       domain.SourceHHRU,
				Profession:   name,
				ProfessionID: role.ID,
				Category:     profession.DetermineCategory(name, domain.SourceHHRU),
			})
		}
	}
	return out
}

func (p *Parser) searchURL(cfg module.ParseConfig, page int) string {
	params := url.Values{}
	if q := strings.TrimSpace(cfg.SearchQuery); q != "" {
		params.Set("text", q)
	}
	if p.config.Area != "" {
		params.Set("area", p.config.Area)
	}
	params.Set("page", fmt.Sprint(page))
	params.Set("per_page", fmt.Sprint(PerPage))
	return strings.TrimRight(cfg.BaseURL, "/") + "/vacancies?" + params.Encode()
}

func (p *Parser) enrich(ctx context.Context, baseURL string, records []*domain.RawVacancy) {
	urls := make([]string, 0, len(records))
	for _, r := range records {
		urls = append(urls, r.URL)
	}
	fetch := func(ctx context.Context, link string) (map[string]any, error) {
		return p.details(ctx, baseURL, link)
	}
	details := extractor.FetchDetails(ctx, urls, p.config.DetailConcurrency, fetch, p.logger)
	for _, r := range records {
		for k, v := range details[r.URL] {
			r.Data[k] = v
		}
	}
}

func toRaw(item map[string]any, now time.Time) *domain.RawVacancy {
	id := str(item["id"])
	title := str(item["name"])
	link := str(item["alternate_url"])
	if link == "" {
		link = str(item["url"])
	}
	if id == "" || title == "" || link == "" {
		return nil
	}
	return &domain.RawVacancy{
		ID:          id,
		Title:       title,
		URL:         link,
		Source:      domain.SourceHHRU,
		Data:        item,
		ExtractedAt: now,
	}
}

func str(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return fmt.Sprintf("%.0f", s)
	}
	return ""
}
