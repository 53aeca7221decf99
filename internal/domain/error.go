package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context for query")

	// Payment lifecycle
	ErrMethodDisabled     = errors.New("payment method is disabled")
	ErrAmountOutOfBounds  = errors.New("payment amount out of configured bounds")
	ErrPaymentNotPending  = errors.New("payment is not pending")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// Discount codes
	ErrCodeNotFound    = errors.New("discount code not found")
	ErrCodeInactive    = errors.New("discount code is inactive")
	ErrCodeExpired     = errors.New("discount code has expired")
	ErrCodeExhausted   = errors.New("discount code usage cap reached")
	ErrCodeAlreadyUsed = errors.New("discount code already used by this user")
	ErrCodeMinAmount   = errors.New("amount below discount code minimum")
	ErrCodeNotForPlan  = errors.New("discount code not applicable to this plan")

	// Plans
	ErrPlanInactive = errors.New("plan is inactive")
	ErrPlanInUse    = errors.New("plan has payment history; deactivate instead of deleting")

	// Renewals & listings
	ErrRenewalNotPending  = errors.New("renewal is not pending")
	ErrListingNotOwned    = errors.New("listing does not belong to user")
	ErrListingNotEligible = errors.New("listing status does not allow renewal")
)

// Kind is the closed set of error categories the use-case layer reports.
// The HTTP layer and the orchestrator's translation logic switch on it
// exhaustively instead of inspecting provider-specific error shapes.
type Kind string

const (
	KindValidation Kind = "validation" // bad input; never retried
	KindConflict   Kind = "conflict"   // illegal state transition; never retried
	KindTransient  Kind = "transient"  // infrastructure; safe to retry
	KindNotFound   Kind = "not_found"
)

// Error wraps a sentinel (or any cause) with a Kind.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.cause) }
func (e *Error) Unwrap() error { return e.cause }

func Validation(cause error) error { return &Error{Kind: KindValidation, cause: cause} }
func Conflict(cause error) error   { return &Error{Kind: KindConflict, cause: cause} }
func Transient(cause error) error  { return &Error{Kind: KindTransient, cause: cause} }

// KindOf returns the Kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return ""
}
