package extractor

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultDetailConcurrency = 3

// DetailFunc loads the extra fields of one vacancy page
type DetailFunc func(ctx context.Context, url string) (map[string]any, error)

// FetchDetails runs fetch for every url with at most limit requests in flight.
// A failed page is logged and left out; it never stops the others.
func FetchDetails(ctx context.Context, urls []string, limit int, fetch DetailFunc, logger *zap.Logger) map[string]map[string]any {
	if limit <= 0 {
		limit = DefaultDetailConcurrency
	}

	var (
		mu      sync.Mutex
		results = make(map[string]map[string]any, len(urls))
		g       errgroup.Group
	)
	g.SetLimit(limit)

	for _, url := range urls {
		url := url
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fields, err := fetch(ctx, url)
			if err != nil {
				logger.Warn("detail page failed", zap.String("url", url), zap.Error(err))
				return nil
			}
			if len(fields) == 0 {
				return nil
			}
			mu.Lock()
			results[url] = fields
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}
