// Package cache provides an optional redis-backed cache for
// interpretation results keyed by signal digest
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"time"

	"pedecg/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Cache stores and retrieves JSON values with a TTL
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Close() error
}

// Config holds redis connection settings
type Config struct {
	URL     string        // redis:// URL, empty disables caching
	Default time.Duration // default TTL when Set receives ttl <= 0
}

// Open returns a redis cache, or a no-op cache when cfg.URL is empty
func Open(cfg Config) (Cache, error) {
	if cfg.URL == "" {
		return Noop{}, nil
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Default <= 0 {
		cfg.Default = 15 * time.Minute
	}
	return &redisCache{rdb: redis.NewClient(opt), def: cfg.Default}, nil
}

type redisCache struct {
	rdb *redis.Client
	def time.Duration
}

func (c *redisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// stale or foreign payload, treat as a miss
		logger.Named("cache").Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false, nil
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.def
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }

// Noop satisfies Cache without storing anything
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Close() error                                          { return nil }

// SignalKey digests a signal plus its age and sampling rate into a
// stable cache key
func SignalKey(signal [][]float64, fs, ageDays int) string {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(fs))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(ageDays))
	h.Write(buf[:])
	for _, lead := range signal {
		for _, v := range lead {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
		// lead boundary marker so [1,2],[3] and [1],[2,3] differ
		h.Write([]byte{0xff})
	}
	return "pedecg:interp:" + hex.EncodeToString(h.Sum(nil)[:16])
}
