package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireOrderLock attempts to acquire the reconciliation lock for an order.
// Returns true if the lock was acquired, false if already held by a
// concurrent notification delivery.
func (s *LockStore) AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:order:%s", orderID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseOrderLock releases the reconciliation lock for an order.
func (s *LockStore) ReleaseOrderLock(ctx context.Context, orderID string) error {
	key := fmt.Sprintf("lock:order:%s", orderID)

	return s.client.Del(ctx, key).Err()
}
