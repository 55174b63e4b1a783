package service

import "errors"

var (
	// ErrInvalidPayerRef is returned when the payer reference is empty.
	ErrInvalidPayerRef = errors.New("invalid payer reference")

	// ErrInvalidDonationID is returned when the donation/order ID is empty.
	ErrInvalidDonationID = errors.New("invalid donation id")

	// ErrInvalidDonationAmount is returned when the donation amount is not positive.
	ErrInvalidDonationAmount = errors.New("invalid donation amount")

	// ErrInvalidStatusUpdate is returned when a manual update targets a
	// status other than SUCCESS or FAILED.
	ErrInvalidStatusUpdate = errors.New("invalid status update requested")

	// ErrDonationCompleted is returned when a manual update targets a
	// donation that already reached terminal SUCCESS.
	ErrDonationCompleted = errors.New("cannot modify a completed donation")
)
