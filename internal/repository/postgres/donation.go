package postgres

import (
	"context"
	"database/sql"
	"errors"

	"donate/internal/domain"
	"donate/internal/repository"
)

// DonationRepository is a PostgreSQL implementation of repository.DonationRepository.
type DonationRepository struct {
	q Querier
}

// NewDonationRepository creates a new PostgreSQL donation repository.
func NewDonationRepository(db *sql.DB) *DonationRepository {
	return &DonationRepository{q: db}
}

// NewDonationRepositoryWithTx creates a donation repository using a transaction.
func NewDonationRepositoryWithTx(tx *sql.Tx) *DonationRepository {
	return &DonationRepository{q: tx}
}

// Create persists a new donation attempt.
func (r *DonationRepository) Create(ctx context.Context, donation *domain.Donation) error {
	query := `
		INSERT INTO donations (id, payer_ref, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		donation.ID,
		donation.PayerRef,
		donation.Amount,
		donation.Status,
		donation.CreatedAt,
		donation.UpdatedAt,
	)

	return err
}

// GetByID retrieves a donation attempt by ID.
func (r *DonationRepository) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	query := `
		SELECT id, payer_ref, amount, status, created_at, updated_at
		FROM donations WHERE id = $1
	`

	var donation domain.Donation
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&donation.ID,
		&donation.PayerRef,
		&donation.Amount,
		&donation.Status,
		&donation.CreatedAt,
		&donation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &donation, nil
}

// ListByPayer retrieves all donation attempts for a payer, newest first.
func (r *DonationRepository) ListByPayer(ctx context.Context, payerRef string) ([]*domain.Donation, error) {
	query := `
		SELECT id, payer_ref, amount, status, created_at, updated_at
		FROM donations WHERE payer_ref = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, payerRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []*domain.Donation
	for rows.Next() {
		var donation domain.Donation
		if err := rows.Scan(
			&donation.ID,
			&donation.PayerRef,
			&donation.Amount,
			&donation.Status,
			&donation.CreatedAt,
			&donation.UpdatedAt,
		); err != nil {
			return nil, err
		}
		donations = append(donations, &donation)
	}

	return donations, rows.Err()
}

// UpdateStatusUnlessSuccess conditionally sets the status in one atomic
// statement. The status predicate makes terminal SUCCESS a one-way gate even
// under concurrent duplicate notifications: two racing updates cannot both
// pass the WHERE clause once one of them lands SUCCESS.
func (r *DonationRepository) UpdateStatusUnlessSuccess(ctx context.Context, id string, status domain.DonationStatus) (bool, error) {
	query := `
		UPDATE donations SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status <> 'SUCCESS'
	`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if rowsAffected > 0 {
		return true, nil
	}

	// No row changed: either the record is already SUCCESS or it does not
	// exist. Distinguish the two for the caller.
	var current domain.DonationStatus
	err = r.q.QueryRowContext(ctx, `SELECT status FROM donations WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, repository.ErrNotFound
		}
		return false, err
	}

	return false, nil
}
