// Package app builds the aggregator's components from configuration. The
// server, the worker and the one-shot crawler all start from Build.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/adapter"
	"github.com/project-tktt/vacancy-hub/internal/cache"
	"github.com/project-tktt/vacancy-hub/internal/common/dedup"
	"github.com/project-tktt/vacancy-hub/internal/common/extractor"
	"github.com/project-tktt/vacancy-hub/internal/common/indexer"
	"github.com/project-tktt/vacancy-hub/internal/config"
	"github.com/project-tktt/vacancy-hub/internal/dictionary"
	"github.com/project-tktt/vacancy-hub/internal/domain"
	"github.com/project-tktt/vacancy-hub/internal/manager"
	"github.com/project-tktt/vacancy-hub/internal/module"
	"github.com/project-tktt/vacancy-hub/internal/module/hhru"
	"github.com/project-tktt/vacancy-hub/internal/module/maklermd"
	"github.com/project-tktt/vacancy-hub/internal/module/md999"
	"github.com/project-tktt/vacancy-hub/internal/module/rabotamd"
	"github.com/project-tktt/vacancy-hub/internal/queue"
	"github.com/project-tktt/vacancy-hub/internal/storage"
	"github.com/project-tktt/vacancy-hub/internal/storage/memory"
	"github.com/project-tktt/vacancy-hub/internal/storage/postgres"
	"github.com/project-tktt/vacancy-hub/internal/subscription"
)

// Components holds everything a binary may need. Redis, Cache, Publisher,
// Consumer and NATS are nil when their backend is not configured.
type Components struct {
	Config        *config.Config
	Logger        *zap.Logger
	Stores        *storage.Stores
	Redis         *redis.Client
	Cache         *cache.Cache
	Publisher     *queue.Publisher
	Consumer      *queue.Consumer
	Indexer       indexer.Indexer
	Parsers       []module.Parser
	Dictionary    *dictionary.Service
	Refresher     *dictionary.Refresher
	Manager       *manager.Manager
	Subscriptions *subscription.Service
	Notifier      *subscription.Notifier

	closers []func()
}

// NewLogger returns a development logger in development mode and a JSON
// production logger otherwise
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.App.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Build connects the configured backends and assembles the services on top.
// Call Close when done.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{Config: cfg, Logger: logger, Indexer: indexer.Nop{}}
	if err := c.build(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Components) build(ctx context.Context) error {
	cfg := c.Config

	if cfg.Postgres.ConnectionString != "" {
		db, err := postgres.Open(ctx, cfg.Postgres.ConnectionString, c.Logger)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		c.closers = append(c.closers, func() { _ = db.Close() })
		c.Stores = db.Stores()
		c.Logger.Info("postgres connected")
	} else {
		c.Stores = memory.New(time.Now)
		c.Logger.Warn("POSTGRES_URL not set, using in-memory stores")
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		c.Logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))

		dd := dedup.NewDeduplicator(rdb, "vacancies:dedup", cfg.Redis.DedupeTTL)
		c.Redis = rdb
		c.Cache = cache.New(rdb, cfg.Redis.CacheTTL, c.Logger)
		c.Publisher = queue.NewPublisher(rdb, cfg.Redis.HighQueue, cfg.Redis.NormalQueue, dd, cfg.Redis.DedupeTTL)
		c.Consumer = queue.NewConsumer(rdb, cfg.Redis.HighQueue, cfg.Redis.NormalQueue, cfg.Worker.PollTimeout, dd, c.Logger)
	}

	if cfg.Elasticsearch.Enabled {
		es, err := indexer.NewElasticsearchIndexer(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index, c.Logger)
		if err != nil {
			return fmt.Errorf("elasticsearch: %w", err)
		}
		if err := es.EnsureIndex(ctx); err != nil {
			c.Logger.Warn("failed to ensure index", zap.Error(err))
		}
		c.Indexer = es
		c.Logger.Info("elasticsearch connected", zap.String("index", cfg.Elasticsearch.Index))
	}

	hh := c.buildParsers()

	c.Dictionary = dictionary.NewService(c.Stores.Dictionaries, c.Logger)
	c.Refresher = dictionary.NewRefresher(c.Dictionary, map[domain.Source]dictionary.ProfessionLister{
		domain.SourceHHRU: hh,
	}, c.Logger)

	deps := manager.Deps{
		Vacancies:  c.Stores.Vacancies,
		ParseLogs:  c.Stores.ParseLogs,
		Parsers:    c.Parsers,
		Adapters:   adapter.NewRegistry(adapter.NewToolkit(nil)),
		Dictionary: c.Dictionary,
		Indexer:    c.Indexer,
		Logger:     c.Logger,
	}
	// A typed nil must not reach the interfaces
	if c.Cache != nil {
		deps.Cache = c.Cache
	}
	if c.Publisher != nil {
		deps.Queue = c.Publisher
	}
	c.Manager = manager.New(deps, manager.Config{
		StaleAfter:   cfg.App.StaleAfter,
		DefaultLimit: cfg.App.DefaultLimit,
		MaxPages:     cfg.Crawler.MaxPages,
		Delay:        cfg.Crawler.RequestDelay,
		CacheTTL:     cfg.Redis.CacheTTL,
		BaseURLs:     baseURLs(cfg.Crawler.BaseURLs),
	})

	c.Subscriptions = subscription.NewService(c.Stores.Subscriptions, c.Logger)
	if cfg.NATS.URL != "" {
		nc, err := subscription.Connect(cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		c.closers = append(c.closers, func() { drain(nc) })
		c.Notifier = subscription.NewNotifier(c.Stores.Subscriptions, c.Stores.Vacancies, nc, cfg.NATS.Subject, c.Logger)
		c.Logger.Info("nats connected", zap.String("subject", cfg.NATS.Subject))
	}
	return nil
}

// buildParsers creates one parser per source and returns the hh.ru one for
// the dictionary refresher
func (c *Components) buildParsers() *hhru.Parser {
	cfg := c.Config.Crawler
	ext := extractor.Config{
		UserAgent:    cfg.UserAgent,
		RequestDelay: cfg.RequestDelay,
	}

	rabota := rabotamd.NewParser(
		extractor.NewCollyExtractor(domain.SourceRabotaMD, ext),
		rabotamd.Config{DetailConcurrency: cfg.DetailConcurrency},
		c.Logger,
	)
	md := md999.NewParser(
		extractor.NewBrowserExtractor(domain.Source999MD, cfg.ChromePath, md999.ListingReady, ext),
		extractor.NewCollyExtractor(domain.Source999MD, ext),
		md999.Config{DetailConcurrency: cfg.DetailConcurrency},
		c.Logger,
	)
	makler := maklermd.NewParser(
		extractor.NewCollyExtractor(domain.SourceMaklerMD, ext),
		maklermd.Config{DetailConcurrency: cfg.DetailConcurrency},
		c.Logger,
	)
	hh := hhru.NewParser(
		extractor.NewAPIExtractor(domain.SourceHHRU, ext),
		hhru.Config{BaseURL: cfg.BaseURLs[string(domain.SourceHHRU)], DetailConcurrency: cfg.DetailConcurrency},
		c.Logger,
	)

	c.Parsers = []module.Parser{rabota, md, makler, hh}
	return hh
}

// Close releases connections in reverse order of creation
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func baseURLs(raw map[string]string) map[domain.Source]string {
	out := make(map[domain.Source]string, len(raw))
	for k, v := range raw {
		if src, ok := domain.ParseSource(k); ok {
			out[src] = v
		}
	}
	return out
}

func drain(nc *nats.Conn) {
	if err := nc.Drain(); err != nil {
		nc.Close()
	}
}
