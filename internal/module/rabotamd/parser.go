package rabotamd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/common/extractor"
	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/module"
)

const (
	DefaultBaseURL = "https://www.rabota.md"
	// consecutive pages that bring nothing new before giving up
	idleLimit = 2
)

// Selectors locate fields on listing and vacancy pages
type Selectors struct {
	Card    string
	Title   string
	Link    string
	Company string
	City    string
	Salary  string
	Date    string

	Description string
	InfoRow     string
	InfoLabel   string
	InfoValue   string
	Skills      string
	CompanyLink string
}

var DefaultSelectors = Selectors{
	Card:    ".vacancyCardItem, .b_info10",
	Title:   ".vacancyShowPopup, .vacancy-title, h2",
	Link:    "a[href*='/vacancies/']",
	Company: ".company-title, .company-name",
	City:    ".location, .vacancy-location",
	Salary:  ".salary, .vacancy-salary",
	Date:    ".date, .vacancy-date",

	Description: ".vacancy-content, .vacancy-description",
	InfoRow:     ".vacancy-info li, .vacancy-details tr",
	InfoLabel:   ".label, th",
	InfoValue:   ".value, td",
	Skills:      ".skills .tag, .vacancy-skills li",
	CompanyLink: "a[href*='/companies/']",
}

// Config holds rabota.md-specific configuration
type Config struct {
	Selectors         Selectors
	DetailConcurrency int
	// Skip loading vacancy pages
	ListingOnly bool
}

// Parser implements module.Parser for rabota.md over static HTML
type Parser struct {
	extractor extractor.Extractor
	config    Config
	logger    *zap.Logger
}

// NewParser creates a rabota.md parser; zero selectors fall back to DefaultSelectors
func NewParser(ext extractor.Extractor, cfg Config, logger *zap.Logger) *Parser {
	if cfg.Selectors.Card == "" {
		cfg.Selectors = DefaultSelectors
	}
	if cfg.DetailConcurrency <= 0 {
		cfg.DetailConcurrency = extractor.DefaultDetailConcurrency
	}
	return &Parser{
		extractor: ext,
		config:    cfg,
		logger:    logger.With(zap.String("source", string(domain.SourceRabotaMD))),
	}
}

// Source returns the source identifier
func (p *Parser) Source() domain.Source {
	return domain.SourceRabotaMD
}

// Parse walks the search result pages until two in a row bring no new ids
func (p *Parser) Parse(ctx context.Context, cfg module.ParseConfig) (*module.ParseResult, error) {
	cfg = cfg.WithDefaults(DefaultBaseURL)
	fetch := func(ctx context.Context, page int) ([]*domain.RawVacancy, error) {
		doc, err := p.extractor.FetchDocument(ctx, PageURL(cfg.BaseURL, cfg.SearchQuery, page))
		if err != nil {
			return nil, err
		}
		return p.parseListing(doc, cfg.BaseURL), nil
	}

	records, err := module.Collect(ctx, cfg, module.NewPageTracker(idleLimit), fetch, p.logger)
	if errors.Is(err, module.ErrInterrupted) {
		// no time left for details
		return &module.ParseResult{Records: records, TotalFound: len(records)}, err
	}
	if err != nil {
		return nil, err
	}

	if !p.config.ListingOnly {
		p.enrich(ctx, records)
	}

	p.logger.Info("parsed", zap.Int("records", len(records)), zap.String("query", cfg.SearchQuery))
	return &module.ParseResult{Records: records, TotalFound: len(records)}, nil
}

// ParseVacancyDetails loads one vacancy page
func (p *Parser) ParseVacancyDetails(ctx context.Context, link string) (map[string]any, error) {
	doc, err := p.extractor.FetchDocument(ctx, link)
	if err != nil {
		return nil, err
	}
	return p.parseDetails(doc), nil
}

// PageURL builds the search url for a 1-based page
func PageURL(baseURL, query string, page int) string {
	base := strings.TrimRight(baseURL, "/")
	params := url.Values{}
	if q := strings.TrimSpace(query); q != "" {
		params.Set("query", q)
	}
	if page > 1 {
		params.Set("page", fmt.Sprint(page))
	}
	if len(params) == 0 {
		return base + "/ru/vacancies"
	}
	return base + "/ru/vacancies?" + params.Encode()
}

func (p *Parser) parseListing(doc *goquery.Document, baseURL string) []*domain.RawVacancy {
	sel := p.config.Selectors
	now := time.Now()

	var out []*domain.RawVacancy
	seen := make(map[string]bool)
	doc.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		href, _ := card.Find(sel.Link).First().Attr("href")
		link := module.AbsURL(baseURL, href)
		if link == "" {
			return
		}
		id := module.IDFromURL(link)
		title := module.Text(card, sel.Title)
		if title == "" {
			title = module.Squeeze(card.Find(sel.Link).First().Text())
		}
		if id == "" || title == "" || seen[id] {
			return
		}
		seen[id] = true

		data := map[string]any{}
		setText(data, "company", module.Text(card, sel.Company))
		setText(data, "city", module.Text(card, sel.City))
		setText(data, "salary", module.Text(card, sel.Salary))
		setText(data, "publishedAt", module.Text(card, sel.Date))

		out = append(out, &domain.RawVacancy{
			ID:          id,
			Title:       title,
			URL:         link,
			Source:      domain.SourceRabotaMD,
			Data:        data,
			ExtractedAt: now,
		})
	})
	return out
}

// detail labels as printed on the vacancy page
var detailLabels = map[string]string{
	"опыт работы":      "experience",
	"опыт":             "experience",
	"тип занятости":    "employment",
	"занятость":        "employment",
	"график работы":    "schedule",
	"график":           "schedule",
	"место работы":     "workPlace",
	"главный офис":     "workPlace",
	"заработная плата": "salary",
	"зарплата":         "salary",
	"город":            "city",
}

func (p *Parser) parseDetails(doc *goquery.Document) map[string]any {
	sel := p.config.Selectors
	root := doc.Selection
	data := map[string]any{}

	desc, _ := root.Find(sel.Description).First().Html()
	setText(data, "description", strings.TrimSpace(desc))

	for label, value := range module.Labeled(root, sel.InfoRow, sel.InfoLabel, sel.InfoValue) {
		if key, ok := detailLabels[label]; ok {
			setText(data, key, value)
		}
	}

	if skills := module.Texts(root, sel.Skills); len(skills) > 0 {
		data["skills"] = skills
	}
	if href, ok := root.Find(sel.CompanyLink).First().Attr("href"); ok {
		setText(data, "companyId", module.IDFromURL(href))
	}
	return data
}

// enrich merges vacancy page fields into the listing records
func (p *Parser) enrich(ctx context.Context, records []*domain.RawVacancy) {
	if len(records) == 0 {
		return
	}
	urls := make([]string, 0, len(records))
	for _, r := range records {
		urls = append(urls, r.URL)
	}

	details := extractor.FetchDetails(ctx, urls, p.config.DetailConcurrency, p.ParseVacancyDetails, p.logger)
	for _, r := range records {
		for k, v := range details[r.URL] {
			r.Data[k] = v
		}
	}
}

func setText(data map[string]any, key, value string) {
	if value != "" {
		data[key] = value
	}
}
