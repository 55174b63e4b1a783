package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"donate/internal/config"
	"donate/internal/domain"
	"donate/internal/gateway"
	"donate/internal/repository"
	"donate/internal/service"
)

func newTestSigner() *gateway.Signer {
	return gateway.NewSigner(config.GatewayConfig{
		MerchantID:     "1210000",
		MerchantSecret: "test-merchant-secret",
		Currency:       "LKR",
	})
}

// signedNotification builds a notification the verifier will accept.
func signedNotification(t *testing.T, signer *gateway.Signer, orderID, amount, statusCode string) gateway.Notification {
	t.Helper()

	sig, err := signer.SignNotification("1210000", orderID, amount, "LKR", statusCode)
	if err != nil {
		t.Fatalf("failed to sign notification: %v", err)
	}

	return gateway.Notification{
		MerchantID: "1210000",
		OrderID:    orderID,
		Amount:     amount,
		Currency:   "LKR",
		StatusCode: statusCode,
		Signature:  sig,
	}
}

func pendingDonation(id string) *domain.Donation {
	now := time.Now().UTC()
	return &domain.Donation{
		ID:        id,
		PayerRef:  "payer-1",
		Amount:    "100.00",
		Status:    domain.DonationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestReconcile_StatusCodeMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code string
		want domain.DonationStatus
	}{
		{"2", domain.DonationStatusSuccess},
		{"0", domain.DonationStatusPending},
		{"-1", domain.DonationStatusCanceled},
		{"-2", domain.DonationStatusFailed},
		{"-3", domain.DonationStatusFailed},
		// Unknown codes fail closed.
		{"5", domain.DonationStatusFailed},
		{"", domain.DonationStatusFailed},
		{"success", domain.DonationStatusFailed},
	}

	for _, tc := range cases {
		if got := service.MapStatusCode(tc.code); got != tc.want {
			t.Errorf("MapStatusCode(%q) = %s, want %s", tc.code, got, tc.want)
		}
	}
}

func TestReconcile_AppliesVerifiedNotification(t *testing.T) {
	t.Parallel()

	repo := NewMockDonationRepository()
	repo.AddDonation(pendingDonation("order-1"))
	signer := newTestSigner()
	svc := service.NewReconcileService(repo, signer, NewMockLockStore(), NewMockStatusCache())

	status, applied, err := svc.HandleNotification(context.Background(), signedNotification(t, signer, "order-1", "100.00", "2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !applied {
		t.Error("expected the notification to apply")
	}
	if status != domain.DonationStatusSuccess {
		t.Errorf("expected SUCCESS, got %s", status)
	}
	if got := repo.GetDonation("order-1").Status; got != domain.DonationStatusSuccess {
		t.Errorf("persisted status = %s, want SUCCESS", got)
	}
}

func TestReconcile_IdempotentSuccess(t *testing.T) {
	t.Parallel()

	repo := NewMockDonationRepository()
	repo.AddDonation(pendingDonation("order-1"))
	signer := newTestSigner()
	cache := NewMockStatusCache()
	svc := service.NewReconcileService(repo, signer, NewMockLockStore(), cache)

	n := signedNotification(t, signer, "order-1", "100.00", "2")

	for i := 0; i < 2; i++ {
		status, _, err := svc.HandleNotification(context.Background(), n)
		if err != nil {
			t.Fatalf("delivery %d: unexpected error: %v", i+1, err)
		}
		if status != domain.DonationStatusSuccess {
			t.Errorf("delivery %d: expected SUCCESS, got %s", i+1, status)
		}
	}

	// Exactly one write took effect; the duplicate was a no-op.
	if repo.AppliedCount != 1 {
		t.Errorf("expected exactly 1 effective write, got %d", repo.AppliedCount)
	}
}

func TestReconcile_TerminalMonotonicity(t *testing.T) {
	t.Parallel()

	repo := NewMockDonationRepository()
	repo.AddDonation(pendingDonation("order-1"))
	signer := newTestSigner()
	svc := service.NewReconcileService(repo, signer, NewMockLockStore(), NewMockStatusCache())

	if _, _, err := svc.HandleNotification(context.Background(), signedNotification(t, signer, "order-1", "100.00", "2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Late retries with every other code must not regress SUCCESS.
	for _, code := range []string{"0", "-1", "-2", "-3", "7"} {
		status, applied, err := svc.HandleNotification(context.Background(), signedNotification(t, signer, "order-1", "100.00", code))
		if err != nil {
			t.Fatalf("code %s: unexpected error: %v", code, err)
		}
		if applied {
			t.Errorf("code %s: late delivery must not apply after SUCCESS", code)
		}
		if status != domain.DonationStatusSuccess {
			t.Errorf("code %s: expected SUCCESS, got %s", code, status)
		}
	}

	if got := repo.GetDonation("order-1").Status; got != domain.DonationStatusSuccess {
		t.Errorf("persisted status = %s, want SUCCESS", got)
	}
}

func TestReconcile_ConcurrentDuplicateDelivery(t *testing.T) {
	t.Parallel()

	repo := NewMockDonationRepository()
	repo.AddDonation(pendingDonation("order-1"))
	signer := newTestSigner()
	svc := service.NewReconcileService(repo, signer, NewMockLockStore(), NewMockStatusCache())

	success := signedNotification(t, signer, "order-1", "100.00", "2")
	pending := signedNotification(t, signer, "order-1", "100.00", "0")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		n := success
		if i%2 == 1 {
			n = pending
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = svc.HandleNotification(context.Background(), n)
		}()
	}
	wg.Wait()

	// Whatever the interleaving, a SUCCESS delivery landed and nothing
	// overwrote it afterwards.
	if got := repo.GetDonation("order-1").Status; got != domain.DonationStatusSuccess {
		t.Errorf("final status = %s, want SUCCESS", got)
	}
}

func TestReconcile_RejectsTamperedSignature(t *testing.T) {
	t.Parallel()

	repo := NewMockDonationRepository()
	repo.AddDonation(pendingDonation("order-1"))
	signer := newTestSigner()
	svc := service.NewReconcileService(repo, signer, NewMockLockStore(), NewMockStatusCache())

	n := signedNotification(t, signer, "order-1", "100.00", "2")
	n.Amount = "999.00" // tampered after signing

	_, _, err := svc.HandleNotification(context.Background(), n)
	if !errors.Is(err, gateway.ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}

	// The signature check runs before any state mutation.
	if repo.UpdateCallCount != 0 {
		t.Errorf("expected no ledger writes, got %d", repo.UpdateCallCount)
	}
	if got := repo.GetDonation("order-1").Status; got != domain.DonationStatusPending {
		t.Errorf("status = %s, want PENDING untouched", got)
	}
}

func TestReconcile_UnknownOrder(t *testing.T) {
	t.Parallel()

	repo := NewMockDonationRepository()
	signer := newTestSigner()
	svc := service.NewReconcileService(repo, signer, NewMockLockStore(), NewMockStatusCache())

	_, _, err := svc.HandleNotification(context.Background(), signedNotification(t, signer, "order-missing", "100.00", "2"))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReconcile_ManualUpdate(t *testing.T) {
	t.Parallel()

	repo := NewMockDonationRepository()
	repo.AddDonation(pendingDonation("order-1"))
	svc := service.NewReconcileService(repo, newTestSigner(), NewMockLockStore(), NewMockStatusCache())
	ctx := context.Background()

	// Only SUCCESS and FAILED are valid manual targets.
	if _, err := svc.ManualUpdate(ctx, "order-1", domain.DonationStatusPending); !errors.Is(err, service.ErrInvalidStatusUpdate) {
		t.Errorf("PENDING target: expected ErrInvalidStatusUpdate, got %v", err)
	}
	if _, err := svc.ManualUpdate(ctx, "order-1", domain.DonationStatusCanceled); !errors.Is(err, service.ErrInvalidStatusUpdate) {
		t.Errorf("CANCELED target: expected ErrInvalidStatusUpdate, got %v", err)
	}

	// Unknown order surfaces as an error on the manual path.
	if _, err := svc.ManualUpdate(ctx, "order-missing", domain.DonationStatusFailed); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown order: expected ErrNotFound, got %v", err)
	}

	status, err := svc.ManualUpdate(ctx, "order-1", domain.DonationStatusSuccess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != domain.DonationStatusSuccess {
		t.Errorf("expected SUCCESS, got %s", status)
	}

	// A completed donation is immutable on the manual path.
	if _, err := svc.ManualUpdate(ctx, "order-1", domain.DonationStatusFailed); !errors.Is(err, service.ErrDonationCompleted) {
		t.Errorf("expected ErrDonationCompleted, got %v", err)
	}
	if got := repo.GetDonation("order-1").Status; got != domain.DonationStatusSuccess {
		t.Errorf("status = %s, want SUCCESS", got)
	}
}

func TestReconcile_InvalidatesStatusCacheOnApply(t *testing.T) {
	t.Parallel()

	repo := NewMockDonationRepository()
	repo.AddDonation(pendingDonation("order-1"))
	signer := newTestSigner()
	cache := NewMockStatusCache()
	_ = cache.SetStatus(context.Background(), "order-1", "PENDING")
	svc := service.NewReconcileService(repo, signer, NewMockLockStore(), cache)

	if _, _, err := svc.HandleNotification(context.Background(), signedNotification(t, signer, "order-1", "100.00", "2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cached, _ := cache.GetStatus(context.Background(), "order-1")
	if cached != "" {
		t.Errorf("expected cache invalidated, still holds %q", cached)
	}
}
