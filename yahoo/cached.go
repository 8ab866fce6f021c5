package yahoo

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"
)

// Fetcher retrieves one option chain
type Fetcher interface {
	FetchChain(ctx context.Context, symbol string, date int64) (Chain, error)
}

// Cache is a best-effort byte store, misses and failures both read as false
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
}

// CachedFetcher reads chains through a Cache before calling the wrapped Fetcher
type CachedFetcher struct {
	next   Fetcher
	cache  Cache
	logger *zap.Logger
}

// NewCachedFetcher wraps next with cache
func NewCachedFetcher(next Fetcher, cache Cache, logger *zap.Logger) *CachedFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{next: next, cache: cache, logger: logger.Named("yahoo.cache")}
}

// FetchChain implements Fetcher
func (f *CachedFetcher) FetchChain(ctx context.Context, symbol string, date int64) (Chain, error) {
	key := symbol + ":" + strconv.FormatInt(date, 10)

	if raw, ok := f.cache.Get(ctx, key); ok {
		var chain Chain
		err := json.Unmarshal(raw, &chain)
		if err == nil {
			return chain, nil
		}
		f.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
	}

	chain, err := f.next.FetchChain(ctx, symbol, date)
	if err != nil {
		return Chain{}, err
	}

	if raw, err := json.Marshal(chain); err == nil {
		f.cache.Set(ctx, key, raw)
	}
	return chain, nil
}
