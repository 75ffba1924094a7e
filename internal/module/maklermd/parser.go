package maklermd

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
	DefaultBaseURL = "https://makler.md"
	ListingPath    = "/ru/job/vacancies"
	idleLimit      = 2
)

type Selectors struct {
	Card     string
	Title    string
	Link     string
	Location string
	Date     string
	Snippet  string

	Description string
	Phone       string
}

var DefaultSelectors = Selectors{
	Card:     ".ls-detail, .announcement-item",
	Title:    ".ls-detail_anUrl, .announcement-title",
	Link:     "a[href*='/an/']",
	Location: ".ls-detail_geo, .announcement-city",
	Date:     ".ls-detail_time, .announcement-date",
	Snippet:  ".ls-detail_text, .announcement-text",

	Description: "#anText, .announcement-body",
	Phone:       ".phone-number, a[href^='tel:']",
}

type Config struct {
	Selectors         Selectors
	DetailConcurrency int
}

// Parser implements module.Parser for makler.md. The board has no salary or
// schedule fields, so the full description is what matters.
type Parser struct {
	extractor extractor.Extractor
	config    Config
	logger    *zap.Logger
}

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
		logger:    logger.With(zap.String("source", string(domain.SourceMaklerMD))),
	}
}

func (p *Parser) Source() domain.Source {
	return domain.SourceMaklerMD
}

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

	p.logger.Info("parsed", zap.Int("records", len(records)), zap.String("query", cfg.SearchQuery))
	return &module.ParseResult{Records: records, TotalFound: len(records)}, nil
}

// ParseVacancyDetails loads the full ad text, which replaces the listing snippet
func (p *Parser) ParseVacancyDetails(ctx context.Context, link string) (map[string]any, error) {
	doc, err := p.extractor.FetchDocument(ctx, link)
	if err != nil {
		return nil, err
	}
	sel := p.config.Selectors

	data := map[string]any{}
	if text := descriptionText(doc.Find(sel.Description).First()); text != "" {
		data["description"] = text
	}
	if phone := module.Text(doc.Selection, sel.Phone); phone != "" {
		data["phone"] = phone
	}
	return data, nil
}

func PageURL(baseURL, query string, page int) string {
	params := url.Values{}
	if q := strings.TrimSpace(query); q != "" {
		params.Set("text", q)
	}
	if page > 1 {
		params.Set("page", fmt.Sprint(page))
	}
	u := strings.TrimRight(baseURL, "/") + ListingPath
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (p *Parser) parseListing(doc *goquery.Document, baseURL string) []*domain.RawVacancy {
	sel := p.config.Selectors
	now := time.Now()

	var out []*domain.RawVacancy
	seen := make(map[string]bool)
	doc.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		link := card.Find(sel.Link).First()
		href, _ := link.Attr("href")
		abs := module.AbsURL(baseURL, href)
		if abs == "" {
			return
		}
		id := module.IDFromURL(abs)
		title := module.Text(card, sel.Title)
		if title == "" {
			title = module.Squeeze(link.Text())
		}
		if id == "" || title == "" || seen[id] {
			return
		}
		seen[id] = true

		data := map[string]any{}
		if loc := module.Text(card, sel.Location); loc != "" {
			data["location"] = loc
		}
		if date := module.Text(card, sel.Date); date != "" {
			data["publishedAt"] = date
		}
		if snippet := module.Text(card, sel.Snippet); snippet != "" {
			data["description"] = snippet
		}

		out = append(out, &domain.RawVacancy{
			ID:          id,
			Title:       title,
			URL:         abs,
			Source:      domain.SourceMaklerMD,
			Data:        data,
			ExtractedAt: now,
		})
	})
	return out
}

// descriptionText keeps line structure; the salary and schedule miners work line by line
func descriptionText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	s.Find("br").ReplaceWithHtml("\n")
	s.Find("p, li, div").Each(func(_ int, block *goquery.Selection) {
		block.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(s.Text(), "\n") {
		if line = module.Squeeze(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
