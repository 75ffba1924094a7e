// Package cache keeps full search result sets in Redis so that following
// pages are served without touching the record store.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/project-tktt/vacancy-hub/internal/domain"
	apperrors "github.com/project-tktt/vacancy-hub/internal/errors"
)

const (
	keyPrefix     = "vacancies"
	anonymousUser = "anonymous"
	DefaultTTL    = 30 * time.Minute
)

// Entry is a cached result set
type Entry struct {
	Records  []*domain.Vacancy `json:"records"`
	Total    int               `json:"total"`
	Filters  domain.Filters    `json:"filters"`
	CachedAt time.Time         `json:"cached_at"`
}

// Page is a slice of a cached entry
type Page struct {
	Records  []*domain.Vacancy
	Total    int
	CachedAt time.Time
}

// Key builds vacancies:<userID>:<hash of normalized filters>
func Key(userID string, f domain.Filters) string {
	data, _ := json.Marshal(f.Normalized())
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s:%s", keyPrefix, userSegment(userID), hex.EncodeToString(sum[:8]))
}

func userSegment(userID string) string {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return anonymousUser
	}
	return userID
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Set stores the whole result set; a zero ttl uses the default
func (c *Cache) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return apperrors.Cache("marshal entry", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return apperrors.Cache("redis set", err)
	}
	return nil
}

// GetPage returns records [offset, offset+limit) of a cached entry.
// The bool is false on a cache miss.
func (c *Cache) GetPage(ctx context.Context, key string, limit, offset int) (*Page, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, apperrors.Cache("redis get", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, apperrors.Cache("unmarshal entry", err)
	}
	return &Page{
		Records:  Slice(entry.Records, limit, offset),
		Total:    entry.Total,
		CachedAt: entry.CachedAt,
	}, true, nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, apperrors.Cache("redis exists", err)
	}
	return n > 0, nil
}

// Clear removes every cached search of a user
func (c *Cache) Clear(ctx context.Context, userID string) (int, error) {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, userSegment(userID))

	deleted := 0
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			n, err := c.client.Del(ctx, batch...).Result()
			if err != nil {
				return deleted, apperrors.Cache("redis del", err)
			}
			deleted += int(n)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, apperrors.Cache("redis scan", err)
	}
	if len(batch) > 0 {
		n, err := c.client.Del(ctx, batch...).Result()
		if err != nil {
			return deleted, apperrors.Cache("redis del", err)
		}
		deleted += int(n)
	}

	c.logger.Debug("cache cleared", zap.String("user_id", userID), zap.Int("keys", deleted))
	return deleted, nil
}

func (c *Cache) ClearKey(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return apperrors.Cache("redis del", err)
	}
	return nil
}

// Slice pages through records; out-of-range pages are empty
func Slice(records []*domain.Vacancy, limit, offset int) []*domain.Vacancy {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []*domain.Vacancy{}
	}
	end := len(records)
	if limit > 0 {
		end = min(offset+limit, len(records))
	}
	return records[offset:end]
}
