package repository

import "errors"

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrQuoteNotFound  = errors.New("quote not found")
	ErrChargeNotFound = errors.New("custom charge not found")

	// Contention errors. Expected under normal concurrent operation and
	// recoverable by re-reading and retrying against a possibly-different
	// target.
	ErrStaleState     = errors.New("order state changed since read")
	ErrAlreadyClaimed = errors.New("order already claimed")

	// Precondition errors. Caller logic error or a genuinely expired window.
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrQuoteAlreadyAccepted = errors.New("provider already has an accepted quote on this order")
	ErrClaimExpired         = errors.New("claim deadline has passed")
	ErrNotEligible          = errors.New("caller not eligible for this operation")
	ErrAlreadyReviewed      = errors.New("rating already submitted")
)
