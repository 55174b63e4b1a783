package repository

import (
	"context"

	"donate/internal/domain"
)

// DonationRepository defines the persistence operations for donation attempts.
type DonationRepository interface {
	// Create persists a new donation attempt.
	Create(ctx context.Context, donation *domain.Donation) error

	// GetByID retrieves a donation attempt by ID.
	GetByID(ctx context.Context, id string) (*domain.Donation, error)

	// ListByPayer retrieves all donation attempts for a payer, newest first.
	ListByPayer(ctx context.Context, payerRef string) ([]*domain.Donation, error)

	// UpdateStatusUnlessSuccess conditionally sets the status of a donation
	// in a single atomic statement, guarded so that a record already in
	// SUCCESS is never overwritten. Returns true if the update took effect,
	// false if the record exists but is already SUCCESS, and ErrNotFound if
	// no record exists for the ID.
	UpdateStatusUnlessSuccess(ctx context.Context, id string, status domain.DonationStatus) (bool, error)
}
