package controllers

import "errors"

// Lifecycle errors. All of these are recoverable, caller-facing failures
// mapped to 4xx; a concurrent loser sees the same error a first-time caller
// would.
var (
	ErrTableUnavailable        = errors.New("table is not available for a new session")
	ErrNoActiveSession         = errors.New("no active session on this table")
	ErrSessionLockViolation    = errors.New("table session belongs to another waiter")
	ErrOrderNotServed          = errors.New("order is not ready for billing")
	ErrCannotModifyPaidInvoice = errors.New("invoice is already paid")
	ErrInvoiceAlreadyCancelled = errors.New("invoice is already cancelled")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrTableNotMergeable       = errors.New("table cannot be merged")
	ErrNoPermission            = errors.New("you do not have permission")
)
