package repository

import (
	"context"
	"time"

	"crypto-gate-service/cache"
	"crypto-gate-service/domain"
)

type ResponseCache struct {
	cache *cache.Cache
	ttl   domain.CacheTtl
}

func NewResponseCache(cache *cache.Cache, ttl domain.CacheTtl) ResponseCache {
	return ResponseCache{
		cache: cache,
		ttl:   ttl,
	}
}

func (r ResponseCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := r.cache.Get(key)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return data, nil
}

func (r ResponseCache) Set(ctx context.Context, category domain.CacheCategory, key string, data []byte) {
	r.cache.Set(key, data, r.Ttl(category))
}

func (r ResponseCache) Ttl(category domain.CacheCategory) time.Duration {
	ttl, ok := r.ttl[category]
	if ok {
		return ttl
	}
	return domain.DefaultCacheTtl()[category]
}

func (r ResponseCache) Stats() domain.CacheStats {
	return r.cache.Stats()
}
