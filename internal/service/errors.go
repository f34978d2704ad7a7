package service

import (
	"errors"
	"fmt"
)

// Error taxonomy for callers: every specific error wraps one of the
// three category sentinels, so transports can map them with errors.Is.
var (
	// ErrValidation marks malformed or out-of-policy input.
	ErrValidation = errors.New("validation failed")

	// ErrReference marks input that points at a missing or unusable row.
	ErrReference = errors.New("invalid reference")

	// ErrCredentials is returned for any failed login. It deliberately
	// carries no detail about which part was wrong.
	ErrCredentials = errors.New("invalid credentials")
)

var (
	ErrMissingField      = fmt.Errorf("required field is empty: %w", ErrValidation)
	ErrPastDate          = fmt.Errorf("appointment date is in the past: %w", ErrValidation)
	ErrDateTooFar        = fmt.Errorf("appointment date is too far ahead: %w", ErrValidation)
	ErrInvalidSlot       = fmt.Errorf("slot is not a valid time bucket: %w", ErrValidation)
	ErrInvalidStatus     = fmt.Errorf("unknown appointment status: %w", ErrValidation)
	ErrInvalidTransition = fmt.Errorf("status transition not allowed: %w", ErrValidation)
	ErrInvalidYear       = fmt.Errorf("vehicle year is out of range: %w", ErrValidation)

	ErrUnknownService  = fmt.Errorf("service does not exist: %w", ErrReference)
	ErrInactiveService = fmt.Errorf("service is not bookable: %w", ErrReference)
	ErrUnknownItem     = fmt.Errorf("inventory item does not exist: %w", ErrReference)
	ErrStockTooLow     = fmt.Errorf("stock cannot go negative: %w", ErrValidation)
	ErrUnknownRecord   = fmt.Errorf("record does not exist: %w", ErrReference)
)
