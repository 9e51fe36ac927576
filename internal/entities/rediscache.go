package entities

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"dealsense/internal/common/logger"
)

const cacheKey = "dealsense:entities:companies"

// CachedSource decorates a Source with a Redis read-through cache so the
// refresher does not hammer the backing store across worker replicas.
type CachedSource struct {
	inner  Source
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(inner Source, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "entities.cache"}),
	}
}

func (s *CachedSource) LookupCompanies(ctx context.Context) ([]Company, error) {
	cached, err := s.client.Get(ctx, cacheKey).Result()
	if err == nil {
		var companies []Company
		if err := json.Unmarshal([]byte(cached), &companies); err == nil {
			return companies, nil
		}
		// Corrupt cache entry: fall through to the source and overwrite.
		s.logger.Warn("cache entry unreadable, reloading from source", map[string]interface{}{
			"key": cacheKey,
		})
	} else if err != redis.Nil {
		// Cache unavailable is not fatal; the source still works.
		s.logger.Warn("cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	companies, err := s.inner.LookupCompanies(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(companies); err == nil {
		if err := s.client.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
			s.logger.Warn("cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return companies, nil
}
