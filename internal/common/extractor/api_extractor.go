package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
)

// APIExtractor fetches JSON from sources that expose a public API
type APIExtractor struct {
	client *http.Client
	config Config
	source domain.Source
}

// NewAPIExtractor creates a new API-based extractor
func NewAPIExtractor(source domain.Source, config Config) *APIExtractor {
	config = config.withDefaults()
	client := &http.Client{
		Timeout:   config.Timeout,
		Transport: &http.Transport{ResponseHeaderTimeout: config.Timeout},
	}
	return &APIExtractor{
		client: client,
		config: config,
		source: source,
	}
}

func (e *APIExtractor) Name() string {
	return fmt.Sprintf("api_%s", e.source)
}

// FetchJSON decodes the response of a GET request into out
func (e *APIExtractor) FetchJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	e.setHeaders(req)

	resp, err := e.client.Do(req)
	if err != nil {
		return apperrors.Scrape(fmt.Sprintf("%s: do request", e.source), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StatusError(e.source, url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Scrape(fmt.Sprintf("%s: read body", e.source), err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.Scrape(fmt.Sprintf("%s: parse json", e.source), err)
	}
	return nil
}

// WithTimeout returns a copy using a different client timeout
func (e *APIExtractor) WithTimeout(timeout time.Duration) *APIExtractor {
	cfg := e.config
	cfg.Timeout = timeout
	return NewAPIExtractor(e.source, cfg)
}

func (e *APIExtractor) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", e.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", e.config.AcceptLanguage)
}
