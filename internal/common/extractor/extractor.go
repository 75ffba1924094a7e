package extractor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
)

// Extractor fetches a page and hands it back as a parsed HTML document.
// CollyExtractor serves static pages, BrowserExtractor pages that need rendering.
type Extractor interface {
	FetchDocument(ctx context.Context, url string) (*goquery.Document, error)

	// Name returns the name of this extractor
	Name() string
}

// Config holds common configuration for extractors
type Config struct {
	UserAgent      string
	AcceptLanguage string
	RequestDelay   time.Duration
	Timeout        time.Duration
}

const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

func (c Config) withDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.AcceptLanguage == "" {
		c.AcceptLanguage = "ru-RU,ru;q=0.9,ro;q=0.8,en;q=0.7"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// StatusError classifies a non-OK response: 429 is a rate limit, anything
// else a scrape failure
func StatusError(source domain.Source, url string, status int) error {
	msg := fmt.Sprintf("%s: unexpected status %d for %s", source, status, url)
	if status == http.StatusTooManyRequests {
		return apperrors.RateLimit(msg, nil)
	}
	return apperrors.Scrape(msg, nil)
}
