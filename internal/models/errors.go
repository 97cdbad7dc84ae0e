package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotInitialized     = errors.New("store not initialized")
	ErrNotFound           = errors.New("not found")
	ErrTooEarly           = errors.New("deadline not reached")
	ErrIntegrityViolation = errors.New("integrity verification failed")
	ErrNotAParticipant    = errors.New("participant not part of this split")
	ErrAccessDenied       = errors.New("access denied: not a participant")
	ErrAlreadyCompleted   = errors.New("split already completed")
	ErrAlreadyContributed = errors.New("participant already contributed")
	ErrInvalidArgument    = errors.New("invalid argument")
)

// TooEarlyError is returned when a commitment is revealed before its deadline.
// It matches ErrTooEarly with errors.Is.
type TooEarlyError struct {
	ID       string
	Deadline int64 // Unix milliseconds
}

func (e *TooEarlyError) Error() string {
	return fmt.Sprintf("cannot reveal %s until deadline: %s",
		e.ID, time.UnixMilli(e.Deadline).UTC().Format(time.RFC3339))
}

func (e *TooEarlyError) Is(target error) bool {
	return target == ErrTooEarly
}

// IntegrityError reports a stored record whose fingerprint no longer matches
// its contents. It matches ErrIntegrityViolation with errors.Is.
type IntegrityError struct {
	// Kind is the record type, "commitment" or "contribution".
	Kind string
	ID   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, ErrIntegrityViolation)
}

func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrityViolation
}
