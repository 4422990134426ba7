package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedProvider wraps a Provider with a redis cache. When redis is
// unavailable every call falls through to the inner provider.
type CachedProvider struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
}

var _ Provider = &CachedProvider{}

func NewCachedProvider(inner Provider, client *redis.Client, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedProvider{inner: inner, client: client, ttl: ttl}
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "websearch:" + hex.EncodeToString(sum[:])
}

func (p *CachedProvider) Search(ctx context.Context, query string) ([]Result, error) {
	key := cacheKey(query)

	if p.client != nil {
		if raw, err := p.client.Get(ctx, key).Bytes(); err == nil {
			var cached []Result
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	results, err := p.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if p.client != nil {
		if raw, err := json.Marshal(results); err == nil {
			p.client.Set(ctx, key, raw, p.ttl)
		}
	}
	return results, nil
}
