package billing

import "errors"

// Rejection errors returned by ledger commands. A rejected command leaves
// the ledger untouched, so callers can always distinguish "changed" from
// "refused" instead of diffing snapshots.
var (
	// ErrCapacityExceeded means the requested quantity would exceed the
	// batch's available stock ceiling.
	ErrCapacityExceeded = errors.New("billing: quantity exceeds available stock")

	// ErrInvalidQuantity means the requested quantity is below 1.
	ErrInvalidQuantity = errors.New("billing: quantity must be at least 1")

	// ErrUnknownBatch means no cart line exists for the given batch ID.
	ErrUnknownBatch = errors.New("billing: no cart line for batch")

	// ErrUnknownPaymentIndex means the payment index is out of range.
	ErrUnknownPaymentIndex = errors.New("billing: payment index out of range")

	// ErrInvalidAmount means the payment amount is zero or negative.
	ErrInvalidAmount = errors.New("billing: payment amount must be positive")

	// ErrOverpayment means the payment amount exceeds the current due amount.
	ErrOverpayment = errors.New("billing: payment amount exceeds due amount")
)
