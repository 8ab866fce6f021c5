// Package cache keeps the latest raw option chain per symbol in redis.
//
// It is a fetch de-duplication layer with a short TTL, not history: a
// second dashboard on the same symbol reuses the chain fetched by the
// first. Every redis error is logged and treated as a miss.
package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lixenwraith/smiledash/status"
)

const keyPrefix = "smiledash:chain:"

// Options configures the redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis is a best-effort latest-value cache
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	available atomic.Bool

	hits   *atomic.Int64
	misses *atomic.Int64
	errs   *atomic.Int64
}

// NewRedis creates a cache client, the connection is checked by Init
func NewRedis(opts Options, reg *status.Registry, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		ttl:    opts.TTL,
		logger: logger.Named("cache").With(zap.String("addr", opts.Addr)),
		hits:   reg.Ints.Get(status.KeyCacheHits),
		misses: reg.Ints.Get(status.KeyCacheMisses),
		errs:   reg.Ints.Get(status.KeyCacheErrors),
	}
}

// Name implements service.Service
func (r *Redis) Name() string {
	return "cache"
}

// Dependencies implements service.Service
func (r *Redis) Dependencies() []string {
	return nil
}

// Init pings redis, an unreachable server leaves the cache bypassed
func (r *Redis) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		r.errs.Add(1)
		r.logger.Warn("redis unreachable, cache bypassed", zap.Error(err))
		return nil
	}
	r.available.Store(true)
	r.logger.Info("redis cache connected", zap.Duration("ttl", r.ttl))
	return nil
}

// Start implements service.Service
func (r *Redis) Start() error {
	return nil
}

// Stop closes the client
func (r *Redis) Stop() error {
	r.available.Store(false)
	if err := r.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}

// Available reports whether the last connection check succeeded
func (r *Redis) Available() bool {
	return r.available.Load()
}

// Get returns the cached value for key, false on miss or error
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	if !r.available.Load() {
		return nil, false
	}

	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		r.misses.Add(1)
		return nil, false
	case err != nil:
		r.errs.Add(1)
		r.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	r.hits.Add(1)
	return val, true
}

// Set stores val under key with the configured TTL
func (r *Redis) Set(ctx context.Context, key string, val []byte) {
	if !r.available.Load() {
		return
	}

	if err := r.client.Set(ctx, keyPrefix+key, val, r.ttl).Err(); err != nil {
		r.errs.Add(1)
		r.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}
