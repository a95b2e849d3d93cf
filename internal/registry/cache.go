package registry

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	id "custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "custodia_registry_cache_lookups_total",
	Help: "Registry category lookups served by the Redis cache, by outcome",
}, []string{"outcome"})

// Redis key prefix for cached participant categories.
const categoryKeyPrefix = "registry:category:"

// RedisCache is a read-through category cache in front of another Registry.
// Entries expire after the configured TTL so category changes in the
// upstream registry propagate within one cache window.
//
// A cache read failure falls through to the upstream registry rather than
// failing the lookup; a stale answer is worse than a slow one here.
type RedisCache struct {
	client   *redis.Client
	upstream Registry
	ttl      time.Duration
}

// NewRedisCache wraps upstream with a Redis-backed cache.
func NewRedisCache(client *redis.Client, upstream Registry, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, upstream: upstream, ttl: ttl}
}

func (c *RedisCache) CategoryOf(ctx context.Context, party id.PartyID) (id.Category, error) {
	key := categoryKeyPrefix + party.String()

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if category, parseErr := id.ParseCategory(cached); parseErr == nil {
			cacheLookups.WithLabelValues("hit").Inc()
			return category, nil
		}
		// Unparseable entry: treat as a miss and let the write below heal it.
	case !errors.Is(err, redis.Nil):
		cacheLookups.WithLabelValues("error").Inc()
	}

	category, err := c.upstream.CategoryOf(ctx, party)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnknownCategory) {
			return "", err
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
	}
	cacheLookups.WithLabelValues("miss").Inc()

	// Best effort: losing the cache write only costs the next lookup.
	_ = c.client.Set(ctx, key, category.String(), c.ttl).Err()
	return category, nil
}
