package service

import (
	"context"
	"log"
	"time"

	"donate/internal/domain"
	"donate/internal/gateway"
	"donate/internal/redis"
	"donate/internal/repository"
)

// orderLockTTL bounds how long a crashed reconciliation can hold an order
// lock before duplicate deliveries proceed on the CAS guard alone.
const orderLockTTL = 5 * time.Second

// MapStatusCode maps a gateway status code to a ledger status. Unknown
// codes map to FAILED: an unrecognized outcome must never be recorded as
// money received.
func MapStatusCode(code string) domain.DonationStatus {
	switch code {
	case "2":
		return domain.DonationStatusSuccess
	case "0":
		return domain.DonationStatusPending
	case "-1":
		return domain.DonationStatusCanceled
	case "-2", "-3":
		return domain.DonationStatusFailed
	default:
		return domain.DonationStatusFailed
	}
}

// ReconcileService applies verified gateway notifications and manual
// operator updates to the donation ledger under the terminal-SUCCESS rule.
type ReconcileService struct {
	donationRepo repository.DonationRepository
	signer       *gateway.Signer
	lockStore    redis.LockStoreInterface
	statusCache  redis.StatusCacheInterface
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(donationRepo repository.DonationRepository, signer *gateway.Signer, lockStore redis.LockStoreInterface, statusCache redis.StatusCacheInterface) *ReconcileService {
	return &ReconcileService{
		donationRepo: donationRepo,
		signer:       signer,
		lockStore:    lockStore,
		statusCache:  statusCache,
	}
}

// HandleNotification verifies a gateway notification and applies its status
// to the ledger. The signature check runs before any state is touched; this
// is the trust boundary for the whole inbound channel. Returns the resulting
// status and whether this delivery changed the record: a duplicate delivery
// after SUCCESS is a no-op reported as (SUCCESS, false) with no error, so
// the gateway stops retrying.
func (s *ReconcileService) HandleNotification(ctx context.Context, n gateway.Notification) (domain.DonationStatus, bool, error) {
	if err := s.signer.Verify(n); err != nil {
		if err == gateway.ErrSignatureMismatch {
			log.Printf("rejected gateway notification with bad signature: order=%s", n.OrderID)
		}
		return "", false, err
	}

	return s.applyStatus(ctx, n.OrderID, MapStatusCode(n.StatusCode))
}

// ManualUpdate applies an operator-initiated status change. Only SUCCESS and
// FAILED are accepted, and a donation already in SUCCESS is immutable: the
// manual path surfaces that as an error rather than a silent no-op.
func (s *ReconcileService) ManualUpdate(ctx context.Context, orderID string, status domain.DonationStatus) (domain.DonationStatus, error) {
	if orderID == "" {
		return "", ErrInvalidDonationID
	}

	if status != domain.DonationStatusSuccess && status != domain.DonationStatusFailed {
		return "", ErrInvalidStatusUpdate
	}

	applied, err := s.conditionalUpdate(ctx, orderID, status)
	if err != nil {
		return "", err
	}

	if !applied {
		return "", ErrDonationCompleted
	}

	return status, nil
}

// applyStatus is the notification path: idempotent under duplicate delivery.
func (s *ReconcileService) applyStatus(ctx context.Context, orderID string, status domain.DonationStatus) (domain.DonationStatus, bool, error) {
	applied, err := s.conditionalUpdate(ctx, orderID, status)
	if err != nil {
		return "", false, err
	}

	if !applied {
		// Already SUCCESS. A late or duplicate delivery must not regress
		// the record, and must still be acknowledged as processed.
		return domain.DonationStatusSuccess, false, nil
	}

	log.Printf("payment status updated: order=%s status=%s", orderID, status)
	return status, true, nil
}

// conditionalUpdate performs the guarded read-modify-write for one order.
// The per-order lock narrows duplicate work under concurrent retries; the
// SQL compare-and-set is the actual correctness guard, so a failed lock
// acquisition does not reject the request.
func (s *ReconcileService) conditionalUpdate(ctx context.Context, orderID string, status domain.DonationStatus) (bool, error) {
	if s.lockStore != nil {
		locked, err := s.lockStore.AcquireOrderLock(ctx, orderID, orderLockTTL)
		if err == nil && locked {
			defer func() {
				_ = s.lockStore.ReleaseOrderLock(ctx, orderID)
			}()
		}
	}

	applied, err := s.donationRepo.UpdateStatusUnlessSuccess(ctx, orderID, status)
	if err != nil {
		return false, err
	}

	if applied && s.statusCache != nil {
		_ = s.statusCache.InvalidateStatus(ctx, orderID)
	}

	return applied, nil
}
