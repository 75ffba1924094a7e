// Command crawler scrapes the given sources once for a query and stores the
// results, bypassing the freshness check.
//
//	crawler -query "повар" -sources rabota.md,999.md -pages 2
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/app"
	"github.com/project-tktt/vacancy-hub/internal/config"
	"github.com/project-tktt/vacancy-hub/internal/domain"
)

func main() {
	query := flag.String("query", "", "search query (required)")
	sourceList := flag.String("sources", "", "comma separated sources, all when empty")
	pages := flag.Int("pages", 0, "max pages per source, CRAWLER_MAX_PAGES when 0")
	flag.Parse()

	if strings.TrimSpace(*query) == "" {
		flag.Usage()
		os.Exit(2)
	}

	var sources []domain.Source
	for _, raw := range strings.Split(*sourceList, ",") {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		src, ok := domain.ParseSource(raw)
		if !ok {
			log.Fatalf("unknown source %q", raw)
		}
		sources = append(sources, src)
	}

	cfg := config.Load()
	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer c.Close()

	outcomes := c.Manager.ForceParse(ctx, sources, strings.TrimSpace(*query), *pages)

	failed := 0
	for _, o := range outcomes {
		if o.Error != "" {
			failed++
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcomes); err != nil {
		logger.Error("write outcomes", zap.Error(err))
	}
	if failed == len(outcomes) && failed > 0 {
		c.Close()
		os.Exit(1)
	}
}
