package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidQR           = errors.New("invalid QR format")
	ErrEventNotFound       = errors.New("event not found")
	ErrQRNotFoundOrExpired = errors.New("QR code not found or expired")
	ErrAlreadyParticipated = errors.New("already participated in this event")
	ErrInvalidPseudonym    = errors.New("invalid pseudonymous ID format")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrOperationFailed     = errors.New("operation failed")
	ErrReadDatabaseRow     = errors.New("failed to read database row")
	ErrInvalidExecContext  = errors.New("invalid execution context")
	ErrRateLimited         = errors.New("too many requests")
)

// ConflictError is returned when an identity scans the same event twice.
// It carries the original participation's summary so clients can render
// "you already did this" instead of a bare failure.
type ConflictError struct {
	EventTitle   string
	OccurredAt   time.Time
	RewardAmount float64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("already participated in %q on %s", e.EventTitle, e.OccurredAt.Format("2006-01-02"))
}

func (e *ConflictError) Is(target error) bool { return target == ErrAlreadyParticipated }

// LocationError is returned when the caller is farther from the event
// than the configured radius allows.
type LocationError struct {
	DistanceMeters float64
	MaxMeters      float64
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("too far from event location (%.0fm > %.0fm)", e.DistanceMeters, e.MaxMeters)
}

// DispatchError is returned when both the mint-to-pool path and the
// direct transfer fallback failed. The activity record is still
// persisted; the reward stays pending until reconciled.
type DispatchError struct {
	Primary  error
	Fallback error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("reward dispatch failed: mint: %v; transfer: %v", e.Primary, e.Fallback)
}
