package domain

import "time"

// DonationStatus represents the current status of a donation attempt.
type DonationStatus string

const (
	DonationStatusPending  DonationStatus = "PENDING"
	DonationStatusSuccess  DonationStatus = "SUCCESS"
	DonationStatusFailed   DonationStatus = "FAILED"
	DonationStatusCanceled DonationStatus = "CANCELED"
)

// IsTerminal reports whether the status permits no further transitions.
// SUCCESS is a one-way gate: once reached, no later update may overwrite it.
func (s DonationStatus) IsTerminal() bool {
	return s == DonationStatusSuccess
}

// Donation represents a single intent-to-pay and its eventual outcome.
// The donation ID doubles as the gateway's order reference.
type Donation struct {
	ID        string
	PayerRef  string
	Amount    string // two-decimal string, e.g. "100.00"; fixed at creation
	Status    DonationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
