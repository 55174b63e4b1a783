package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusCache caches donation statuses for the polling endpoint. Clients
// poll at roughly two-second intervals while waiting on the gateway, so a
// short TTL absorbs most of that read load without delaying the terminal
// answer by more than one poll cycle.
type StatusCache struct {
	client *redis.Client
}

// NewStatusCache creates a new StatusCache.
func NewStatusCache(client *redis.Client) *StatusCache {
	return &StatusCache{client: client}
}

// StatusCacheTTL bounds staleness to a single poll interval.
const StatusCacheTTL = 2 * time.Second

const statusCachePrefix = "cache:donation:status:"

// GetStatus retrieves a cached status. Returns "" on cache miss.
func (s *StatusCache) GetStatus(ctx context.Context, orderID string) (string, error) {
	status, err := s.client.Get(ctx, statusCachePrefix+orderID).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // Cache miss
		}
		return "", err
	}
	return status, nil
}

// SetStatus stores a status in cache.
func (s *StatusCache) SetStatus(ctx context.Context, orderID, status string) error {
	return s.client.Set(ctx, statusCachePrefix+orderID, status, StatusCacheTTL).Err()
}

// InvalidateStatus removes a cached status after a reconciliation write so
// the next poll observes the new state immediately.
func (s *StatusCache) InvalidateStatus(ctx context.Context, orderID string) error {
	return s.client.Del(ctx, statusCachePrefix+orderID).Err()
}
