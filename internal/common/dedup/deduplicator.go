package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduplicator claims short-lived keys in Redis so that the same background
// job is not queued twice while an earlier copy is pending
type Deduplicator struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewDeduplicator creates a new Redis-based deduplicator
func NewDeduplicator(client *redis.Client, prefix string, defaultTTL time.Duration) *Deduplicator {
	if prefix == "" {
		prefix = "dedup"
	}
	if defaultTTL == 0 {
		defaultTTL = 30 * time.Minute
	}
	return &Deduplicator{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

// Claim sets the key if it is absent. It reports false when another caller
// already holds it.
func (d *Deduplicator) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = d.defaultTTL
	}
	ok, err := d.client.SetNX(ctx, d.makeKey(key), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Release drops a claim once its job has run
func (d *Deduplicator) Release(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, d.makeKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Keys longer than this are hashed
const maxRawKey = 64

func (d *Deduplicator) makeKey(key string) string {
	if len(key) > maxRawKey {
		key = "h:" + hashContent(key)
	}
	return fmt.Sprintf("%s:%s", d.prefix, key)
}

func hashContent(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:16]) // First 16 bytes (32 hex chars)
}
