package service

import (
	"errors"
	"fmt"
)

// Error classes. Every service error wraps exactly one of them so the HTTP
// layer can map it with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInsufficientBalance = errors.New("insufficient cash box balance")
	ErrForbidden           = errors.New("forbidden")
)

var (
	ErrBranchNotFound       = fmt.Errorf("branch %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrDailySalesNotFound   = fmt.Errorf("daily sales %w", ErrNotFound)
	ErrConsolidatedNotFound = fmt.Errorf("consolidated sales %w", ErrNotFound)
	ErrCashBoxNotFound      = fmt.Errorf("cash box %w", ErrNotFound)
	ErrTransferNotFound     = fmt.Errorf("transfer %w", ErrNotFound)
	ErrTargetNotFound       = fmt.Errorf("monthly target %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
	ErrNoApprovedSales      = fmt.Errorf("approved daily sales for branch and date: %w", ErrNotFound)

	ErrInvalidTransition   = fmt.Errorf("%w: invalid status transition", ErrConflict)
	ErrConsolidationLocked = fmt.Errorf("%w: consolidated sales already closed", ErrConflict)
	ErrCashBoxExists       = fmt.Errorf("%w: cash box already exists", ErrConflict)
	ErrDuplicate           = fmt.Errorf("%w: duplicate record", ErrConflict)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func transition(entity, from, action string) error {
	return fmt.Errorf("%w: %s is %s, cannot %s", ErrInvalidTransition, entity, from, action)
}
