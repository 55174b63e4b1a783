package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"donate/internal/domain"
	"donate/internal/redis"
	"donate/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK DONATION REPOSITORY
// ──────────────────────────────────────────────

// MockDonationRepository is a mock implementation of DonationRepository.
type MockDonationRepository struct {
	mu        sync.RWMutex
	donations map[string]*domain.Donation

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32
	AppliedCount    int32

	// Error injection
	CreateError error
	GetError    error
	UpdateError error
}

// NewMockDonationRepository creates a new mock donation repository.
func NewMockDonationRepository() *MockDonationRepository {
	return &MockDonationRepository{
		donations: make(map[string]*domain.Donation),
	}
}

// AddDonation adds a donation to the mock repository.
func (m *MockDonationRepository) AddDonation(donation *domain.Donation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.donations[donation.ID] = donation
}

func (m *MockDonationRepository) Create(ctx context.Context, donation *domain.Donation) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.donations[donation.ID] = donation
	return nil
}

func (m *MockDonationRepository) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	donation, ok := m.donations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *donation
	return &copy, nil
}

func (m *MockDonationRepository) ListByPayer(ctx context.Context, payerRef string) ([]*domain.Donation, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Donation
	for _, d := range m.donations {
		if d.PayerRef == payerRef {
			copy := *d
			result = append(result, &copy)
		}
	}
	return result, nil
}

// UpdateStatusUnlessSuccess mirrors the SQL compare-and-set: the check and
// the write happen under one lock, so concurrent callers see the same
// one-way SUCCESS gate as the real store.
func (m *MockDonationRepository) UpdateStatusUnlessSuccess(ctx context.Context, id string, status domain.DonationStatus) (bool, error) {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return false, m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	donation, ok := m.donations[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if donation.Status.IsTerminal() {
		return false, nil
	}
	donation.Status = status
	donation.UpdatedAt = time.Now().UTC()
	atomic.AddInt32(&m.AppliedCount, 1)
	return true, nil
}

// GetDonation returns a donation for test assertions.
func (m *MockDonationRepository) GetDonation(id string) *domain.Donation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.donations[id]
}

// CountDonations returns the number of stored donations.
func (m *MockDonationRepository) CountDonations() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.donations)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func (m *MockLockStore) AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[orderID] {
		return false, nil
	}
	m.locks[orderID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseOrderLock(ctx context.Context, orderID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, orderID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK STATUS CACHE
// ──────────────────────────────────────────────

// MockStatusCache is a mock implementation of StatusCacheInterface.
type MockStatusCache struct {
	mu       sync.RWMutex
	statuses map[string]string

	SetCallCount        int32
	InvalidateCallCount int32
}

// NewMockStatusCache creates a new mock status cache.
func NewMockStatusCache() *MockStatusCache {
	return &MockStatusCache{statuses: make(map[string]string)}
}

func (m *MockStatusCache) GetStatus(ctx context.Context, orderID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statuses[orderID], nil
}

func (m *MockStatusCache) SetStatus(ctx context.Context, orderID, status string) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[orderID] = status
	return nil
}

func (m *MockStatusCache) InvalidateStatus(ctx context.Context, orderID string) error {
	atomic.AddInt32(&m.InvalidateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.statuses, orderID)
	return nil
}

// Ensure mocks satisfy the interfaces they stand in for.
var (
	_ repository.DonationRepository = (*MockDonationRepository)(nil)
	_ redis.LockStoreInterface      = (*MockLockStore)(nil)
	_ redis.StatusCacheInterface    = (*MockStatusCache)(nil)
)
