package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for per-order distributed locking.
type LockStoreInterface interface {
	AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	ReleaseOrderLock(ctx context.Context, orderID string) error
}

// StatusCacheInterface defines the interface for donation status caching.
type StatusCacheInterface interface {
	GetStatus(ctx context.Context, orderID string) (string, error)
	SetStatus(ctx context.Context, orderID, status string) error
	InvalidateStatus(ctx context.Context, orderID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface   = (*LockStore)(nil)
	_ StatusCacheInterface = (*StatusCache)(nil)
)
