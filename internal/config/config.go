package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the aggregator
type Config struct {
	App           AppConfig
	Redis         RedisConfig
	Postgres      PostgresConfig
	Elasticsearch ESConfig
	NATS          NATSConfig
	Crawler       CrawlerConfig
	Worker        WorkerConfig
	Scheduler     SchedulerConfig
	Telemetry     TelemetryConfig
}

type AppConfig struct {
	// development | production
	Mode string
	Port int
	// Freshness window for parse logs
	StaleAfter    time.Duration
	RetentionDays int
	DefaultLimit  int
}

func (a AppConfig) IsDevelopment() bool {
	return a.Mode == "development"
}

type RedisConfig struct {
	// Empty address disables cache and queue
	Addr     string
	Password string
	DB       int
	// Queue names
	HighQueue   string
	NormalQueue string
	DedupeTTL   time.Duration
	CacheTTL    time.Duration
}

type PostgresConfig struct {
	// Connection string, empty means in-memory stores
	ConnectionString string
}

type ESConfig struct {
	Enabled   bool
	Addresses []string
	Index     string
}

type NATSConfig struct {
	URL     string
	Subject string
}

type CrawlerConfig struct {
	// Rate limiting
	RequestDelay      time.Duration
	MaxPages          int
	DetailConcurrency int
	UserAgent         string
	// Chrome binary for sources that need rendering, empty uses PATH lookup
	ChromePath string
	BaseURLs   map[string]string
}

type WorkerConfig struct {
	// Number of concurrent workers
	Concurrency int
	PollTimeout time.Duration
}

type SchedulerConfig struct {
	DictionaryRefresh string
	Cleanup           string
	Notify            string
}

type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
}

// Load creates a Config from environment variables with defaults.
// A .env file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		App: AppConfig{
			Mode:          getEnv("APP_MODE", "production"),
			Port:          getEnvInt("PORT", 3000),
			StaleAfter:    getEnvDuration("STALE_AFTER", 12*time.Hour),
			RetentionDays: getEnvInt("RETENTION_DAYS", 30),
			DefaultLimit:  getEnvInt("DEFAULT_LIMIT", 10),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			HighQueue:   getEnv("REDIS_QUEUE_HIGH", "vacancies:jobs:high"),
			NormalQueue: getEnv("REDIS_QUEUE_NORMAL", "vacancies:jobs:normal"),
			DedupeTTL:   getEnvDuration("QUEUE_DEDUPE_TTL", 30*time.Minute),
			CacheTTL:    getEnvDuration("CACHE_TTL", 30*time.Minute),
		},
		Postgres: PostgresConfig{
			ConnectionString: getEnv("POSTGRES_URL", ""),
		},
		Elasticsearch: ESConfig{
			Enabled:   getEnvBool("ELASTICSEARCH_ENABLED", false),
			Addresses: getEnvList("ELASTICSEARCH_URL", []string{"http://localhost:9200"}),
			Index:     getEnv("ELASTICSEARCH_INDEX", "vacancies"),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", ""),
			Subject: getEnv("NATS_SUBJECT", "vacancies.notify"),
		},
		Crawler: CrawlerConfig{
			RequestDelay:      time.Duration(getEnvInt("CRAWLER_DELAY_MS", 1000)) * time.Millisecond,
			MaxPages:          getEnvInt("CRAWLER_MAX_PAGES", 5),
			DetailConcurrency: getEnvInt("CRAWLER_DETAIL_CONCURRENCY", 3),
			UserAgent:         getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
			ChromePath:        getEnv("CHROME_PATH", ""),
			BaseURLs: map[string]string{
				"rabota.md": getEnv("RABOTA_MD_URL", "https://www.rabota.md"),
				"999.md":    getEnv("MD999_URL", "https://999.md"),
				"makler.md": getEnv("MAKLER_MD_URL", "https://makler.md"),
				"hh.ru":     getEnv("HH_RU_URL", "https://api.hh.ru"),
			},
		},
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 2),
			PollTimeout: getEnvDuration("WORKER_POLL_TIMEOUT", 5*time.Second),
		},
		Scheduler: SchedulerConfig{
			DictionaryRefresh: getEnv("CRON_DICTIONARY_REFRESH", "@every 24h"),
			Cleanup:           getEnv("CRON_CLEANUP", "@daily"),
			Notify:            getEnv("CRON_NOTIFY", "@every 15m"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "vacancy-hub"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList splits a comma separated value
func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
