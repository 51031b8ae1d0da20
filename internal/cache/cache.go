// Package cache is a content-addressed response store keyed by prompt hash.
// Entries never expire and are only overwritten by a fresh successful run.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"

	"github.com/roomai/agora/config"
)

// Cache stores serialized debate results. Get reports (value, found, err);
// backends treat unreadable entries as a miss, never a fatal error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Key derives the cache key for a prompt: hex SHA-256 of the raw string.
// Deliberately case-sensitive and unnormalized.
func Key(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// New builds a cache from config, preferring Postgres, then Redis, then the
// in-process map. A backend that fails to initialize logs and falls through
// rather than failing the service.
func New(ctx context.Context, cfg config.CacheConfig, logger *log.Logger) Cache {
	if cfg.PostgresURL != "" {
		pc, err := NewPostgresCache(ctx, cfg.PostgresURL)
		if err == nil {
			return pc
		}
		logger.Printf("postgres cache init failed: %v, falling back to redis", err)
	}
	if cfg.Redis.Host != "" {
		rc, err := NewRedisCache(ctx, cfg.Redis)
		if err == nil {
			return rc
		}
		logger.Printf("redis cache init failed: %v, falling back to memory", err)
	}
	return NewMemoryCache()
}
