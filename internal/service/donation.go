package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"donate/internal/domain"
	"donate/internal/gateway"
	"donate/internal/redis"
	"donate/internal/repository"
)

// StatusNotFound is the sentinel returned by GetStatus for unknown order
// IDs. Polling clients branch on the status string only, never on errors.
const StatusNotFound = "NOT_FOUND"

// DonationService handles donation creation, checkout authorization and
// status queries.
type DonationService struct {
	donationRepo repository.DonationRepository
	signer       *gateway.Signer
	statusCache  redis.StatusCacheInterface
}

// NewDonationService creates a new DonationService.
func NewDonationService(donationRepo repository.DonationRepository, signer *gateway.Signer, statusCache redis.StatusCacheInterface) *DonationService {
	return &DonationService{
		donationRepo: donationRepo,
		signer:       signer,
		statusCache:  statusCache,
	}
}

// CreateDonation creates a PENDING donation attempt attributed to the payer.
func (s *DonationService) CreateDonation(ctx context.Context, payerRef string, amount float64) (*domain.Donation, error) {
	if payerRef == "" {
		return nil, ErrInvalidPayerRef
	}

	if amount <= 0 {
		return nil, ErrInvalidDonationAmount
	}

	normalized, err := gateway.NormalizeAmount(strconv.FormatFloat(amount, 'f', -1, 64))
	if err != nil {
		return nil, ErrInvalidDonationAmount
	}

	// Truncation can collapse a sub-cent amount to zero; the ledger never
	// holds a zero-amount attempt.
	if normalized == "0.00" {
		return nil, ErrInvalidDonationAmount
	}

	now := time.Now().UTC()
	donation := &domain.Donation{
		ID:        uuid.New().String(),
		PayerRef:  payerRef,
		Amount:    normalized,
		Status:    domain.DonationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, err
	}

	return donation, nil
}

// ListByPayer returns the payer's donation history, newest first.
func (s *DonationService) ListByPayer(ctx context.Context, payerRef string) ([]*domain.Donation, error) {
	if payerRef == "" {
		return nil, ErrInvalidPayerRef
	}

	return s.donationRepo.ListByPayer(ctx, payerRef)
}

// CheckoutAuthorization contains the values a client needs to initiate a
// gateway checkout for an existing donation attempt.
type CheckoutAuthorization struct {
	MerchantID string
	OrderID    string
	Amount     string
	Currency   string
	Hash       string
}

// AuthorizeCheckout issues the outbound authorization digest for an order.
// The amount is taken from the ledger record, not from the caller, so a
// client cannot sign a different amount than it committed to.
func (s *DonationService) AuthorizeCheckout(ctx context.Context, orderID, currency string) (*CheckoutAuthorization, error) {
	if orderID == "" {
		return nil, ErrInvalidDonationID
	}

	donation, err := s.donationRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if currency == "" {
		currency = s.signer.Currency()
	}

	hash, err := s.signer.Sign(donation.ID, donation.Amount, currency)
	if err != nil {
		return nil, err
	}

	return &CheckoutAuthorization{
		MerchantID: s.signer.MerchantID(),
		OrderID:    donation.ID,
		Amount:     donation.Amount,
		Currency:   currency,
		Hash:       hash,
	}, nil
}

// GetStatus returns the current status string for an order, or the
// StatusNotFound sentinel when the ID is unknown. Unknown IDs are not an
// error: the polling client treats every answer uniformly.
func (s *DonationService) GetStatus(ctx context.Context, orderID string) (string, error) {
	if orderID == "" {
		return "", ErrInvalidDonationID
	}

	// Cache first; a miss or a cache error falls through to the ledger.
	if s.statusCache != nil {
		if status, err := s.statusCache.GetStatus(ctx, orderID); err == nil && status != "" {
			return status, nil
		}
	}

	donation, err := s.donationRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return StatusNotFound, nil
		}
		return "", err
	}

	if s.statusCache != nil {
		_ = s.statusCache.SetStatus(ctx, orderID, string(donation.Status))
	}

	return string(donation.Status), nil
}
