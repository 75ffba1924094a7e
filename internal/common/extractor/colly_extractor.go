package extractor

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
)

// CollyExtractor implements Extractor using Colly for static HTML pages
type CollyExtractor struct {
	collector *colly.Collector
	config    Config
	source    domain.Source
}

// NewCollyExtractor creates a new Colly-based HTML scraper
func NewCollyExtractor(source domain.Source, config Config) *CollyExtractor {
	config = config.withDefaults()

	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(config.Timeout)

	// Configure rate limiting
	if config.RequestDelay > 0 {
		c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Delay:       config.RequestDelay,
			RandomDelay: config.RequestDelay / 2,
		})
	}

	return &CollyExtractor{
		collector: c,
		config:    config,
		source:    source,
	}
}

func (e *CollyExtractor) Name() string {
	return fmt.Sprintf("colly_%s", e.source)
}

// FetchDocument visits url and parses the response body
func (e *CollyExtractor) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Scrape(fmt.Sprintf("%s: fetch %s", e.source, url), err)
	}

	var (
		doc        *goquery.Document
		extractErr error
	)

	collector := e.collector.Clone()

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", e.config.AcceptLanguage)
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			extractErr = apperrors.Scrape(fmt.Sprintf("%s: parse %s", e.source, url), err)
			return
		}
		parsed.Url = r.Request.URL
		doc = parsed
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 && r.StatusCode != http.StatusOK {
			extractErr = StatusError(e.source, url, r.StatusCode)
			return
		}
		extractErr = apperrors.Scrape(fmt.Sprintf("%s: colly error", e.source), err)
	})

	if err := collector.Visit(url); err != nil {
		if extractErr != nil {
			return nil, extractErr
		}
		return nil, apperrors.Scrape(fmt.Sprintf("%s: visit %s", e.source, url), err)
	}

	if extractErr != nil {
		return nil, extractErr
	}

	if doc == nil {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Scrape(fmt.Sprintf("%s: fetch %s", e.source, url), err)
		}
		return nil, apperrors.Scrape(fmt.Sprintf("%s: no data extracted from %s", e.source, url), nil)
	}

	return doc, nil
}
