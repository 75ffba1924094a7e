package extractor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
)

// BrowserExtractor renders pages in headless Chrome before parsing them.
// Listing pages built client-side come back empty to a plain HTTP fetch.
type BrowserExtractor struct {
	config       Config
	source       domain.Source
	execPath     string
	waitSelector string
}

// NewBrowserExtractor creates a renderer; an empty execPath looks Chrome up in PATH.
// waitSelector is the element that signals the page finished rendering.
func NewBrowserExtractor(source domain.Source, execPath, waitSelector string, config Config) *BrowserExtractor {
	if waitSelector == "" {
		waitSelector = "body"
	}
	return &BrowserExtractor{
		config:       config.withDefaults(),
		source:       source,
		execPath:     execPath,
		waitSelector: waitSelector,
	}
}

func (e *BrowserExtractor) Name() string {
	return fmt.Sprintf("chromedp_%s", e.source)
}

func (e *BrowserExtractor) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	html, err := e.Render(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, apperrors.Scrape(fmt.Sprintf("%s: parse %s", e.source, url), err)
	}
	return doc, nil
}

// Render navigates to url and returns the rendered outer HTML
func (e *BrowserExtractor) Render(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(e.config.UserAgent),
	)
	if e.execPath != "" {
		opts = append(opts, chromedp.ExecPath(e.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	cctx, cancelCtx := chromedp.NewContext(allocCtx)
	defer cancelCtx()

	runCtx, cancelRun := context.WithTimeout(cctx, e.config.Timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(e.waitSelector, chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", apperrors.Scrape(fmt.Sprintf("%s: render %s", e.source, url), err)
	}
	return html, nil
}
