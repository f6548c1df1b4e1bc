package domain

import "errors"

// Sentinel errors for business-rule violations. Handlers match these with
// errors.Is to map them onto user-facing responses; none of them indicate a
// transient failure, so callers must not retry automatically.
var (
	ErrInvalidParameters     = errors.New("invalid parameters")
	ErrAlreadyPaid           = errors.New("installment already paid")
	ErrAlreadySettled        = errors.New("plan already settled")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrEarlyExitNotPermitted = errors.New("early exit not permitted")
	ErrRotationNotReady      = errors.New("rotation not ready")
	ErrAmountMismatch        = errors.New("amount does not match schedule")
	ErrConfirmationRequired  = errors.New("explicit confirmation required")
	ErrGroupFull             = errors.New("group is full")

	ErrPlanNotFound  = errors.New("installment plan not found")
	ErrLockNotFound  = errors.New("lock plan not found")
	ErrGroupNotFound = errors.New("group not found")
)
