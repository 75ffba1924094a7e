package md999

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
	DefaultBaseURL = "https://999.md"
	ListingPath    = "/ru/list/work/vacancies"
	// the listing is rendered client side and may come back blank once,
	// so only consecutive empty pages end the walk
	emptyLimit = 2
	// rendered listing waits for this element
	ListingReady = "#js-ads-container"
)

// Selectors locate fields on listing and ad pages
type Selectors struct {
	Card  string
	Title string
	Link  string
	Price string
	Date  string

	Description  string
	FeatureRow   string
	FeatureKey   string
	FeatureValue string
	Region       string
	Phone        string
	Views        string
}

var DefaultSelectors = Selectors{
	Card:  ".ads-list-photo-item, li[class*='AdPhotoItem']",
	Title: ".ads-list-photo-item-title, [class*='AdPhotoItem_title']",
	Link:  "a[href]",
	Price: ".ads-list-photo-item-price, [class*='AdPrice']",
	Date:  ".ads-list-photo-item-date, [class*='AdDate']",

	Description:  ".adPage__content__description, [itemprop='description']",
	FeatureRow:   ".adPage__content__features li, [class*='features'] li",
	FeatureKey:   ".adPage__content__features__key, [class*='key']",
	FeatureValue: ".adPage__content__features__value, [class*='value']",
	Region:       ".adPage__content__region, [itemprop='address']",
	Phone:        ".js-phone-number, a[href^='tel:']",
	Views:        ".adPage__aside__stats__views",
}

// Config holds 999.md-specific configuration
type Config struct {
	Selectors         Selectors
	DetailConcurrency int
}

// Parser implements module.Parser for 999.md. Listing pages go through a
// rendering extractor; ad pages are static and may use a cheaper one.
type Parser struct {
	listing extractor.Extractor
	detail  extractor.Extractor
	config  Config
	logger  *zap.Logger
}

// NewParser creates a 999.md parser. A nil detail extractor reuses listing.
func NewParser(listing, detail extractor.Extractor, cfg Config, logger *zap.Logger) *Parser {
	if cfg.Selectors.Card == "" {
		cfg.Selectors = DefaultSelectors
	}
	if cfg.DetailConcurrency <= 0 {
		cfg.DetailConcurrency = extractor.DefaultDetailConcurrency
	}
	if detail == nil {
		detail = listing
	}
	return &Parser{
		listing: listing,
		detail:  detail,
		config:  cfg,
		logger:  logger.With(zap.String("source", string(domain.Source999MD))),
	}
}

func (p *Parser) Source() domain.Source {
	return domain.Source999MD
}

// Parse walks listing pages until two consecutive pages come back empty
func (p *Parser) Parse(ctx context.Context, cfg module.ParseConfig) (*module.ParseResult, error) {
	cfg = cfg.WithDefaults(DefaultBaseURL)

	fetch := func(ctx context.Context, page int) ([]*domain.RawVacancy, error) {
		doc, err := p.listing.FetchDocument(ctx, PageURL(cfg.BaseURL, cfg.SearchQuery, page))
		if err != nil {
			return nil, err
		}
		return p.parseListing(doc, cfg.BaseURL), nil
	}

	records, err := module.Collect(ctx, cfg, module.NewEmptyPageTracker(emptyLimit), fetch, p.logger)
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

// ParseVacancyDetails reads the attribute list of one ad
func (p *Parser) ParseVacancyDetails(ctx context.Context, link string) (map[string]any, error) {
	doc, err := p.detail.FetchDocument(ctx, link)
	if err != nil {
		return nil, err
	}
	return p.parseDetails(doc), nil
}

// PageURL builds the listing url for a 1-based page
func PageURL(baseURL, query string, page int) string {
	params := url.Values{}
	if q := strings.TrimSpace(query); q != "" {
		params.Set("query", q)
	}
	params.Set("page", fmt.Sprint(max(page, 1)))
	return strings.TrimRight(baseURL, "/") + ListingPath + "?" + params.Encode()
}

func (p *Parser) parseListing(doc *goquery.Document, baseURL string) []*domain.RawVacancy {
	sel := p.config.Selectors
	now := time.Now()

	var out []*domain.RawVacancy
	seen := make(map[string]bool)
	doc.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		link := card.Find(sel.Title).Find(sel.Link).First()
		if link.Length() == 0 {
			link = card.Find(sel.Link).First()
		}
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
		if price := module.Text(card, sel.Price); price != "" {
			data["salary"] = price
		}
		if date := module.Text(card, sel.Date); date != "" {
			data["publishedAt"] = date
		}

		out = append(out, &domain.RawVacancy{
			ID:          id,
			Title:       title,
			URL:         abs,
			Source:      domain.Source999MD,
			Data:        data,
			ExtractedAt: now,
		})
	})
	return out
}

// ad attribute names, Russian and Romanian, mapped to raw keys
var featureKeys = map[string]string{
	"опыт работы":         "experience",
	"experienta de lucru": "experience",
	"experiență de lucru": "experience",
	"график работы":       "schedule",
	"program de lucru":    "schedule",
	"место работы":        "workLocation",
	"locul de muncă":      "workLocation",
	"locul de munca":      "workLocation",
	"заработная плата":    "salary",
	"salariu":             "salary",
	"валюта":              "currency",
	"valuta":              "currency",
	"компания":            "company",
	"companie":            "company",
	"тип объявления":      "adType",
	"tipul anunțului":     "adType",
	"образование":         "education",
	"studii":              "education",
}

func (p *Parser) parseDetails(doc *goquery.Document) map[string]any {
	sel := p.config.Selectors
	root := doc.Selection
	data := map[string]any{}

	if desc, err := root.Find(sel.Description).First().Html(); err == nil && strings.TrimSpace(desc) != "" {
		data["description"] = strings.TrimSpace(desc)
	}

	for label, value := range module.Labeled(root, sel.FeatureRow, sel.FeatureKey, sel.FeatureValue) {
		if key, ok := featureKeys[label]; ok {
			data[key] = value
		}
	}

	for key, selector := range map[string]string{"region": sel.Region, "phone": sel.Phone, "views": sel.Views} {
		if v := module.Text(root, selector); v != "" {
			data[key] = v
		}
	}
	return data
}
