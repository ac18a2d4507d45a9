package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a booking, candidate, equipment or account is missing.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyConfirmed is the losing side of an accept race. Callers must not retry.
	ErrAlreadyConfirmed = errors.New("booking already confirmed")
	// ErrInvalidTransition is returned for illegal booking or candidate state changes.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrForbidden is returned when the caller does not own the resource it acts on.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation error")
)

var (
	ErrBookingNotFound   = fmt.Errorf("booking %w", ErrNotFound)
	ErrCandidateNotFound = fmt.Errorf("candidate %w", ErrNotFound)
	ErrEquipmentNotFound = fmt.Errorf("equipment %w", ErrNotFound)
	ErrAccountNotFound   = fmt.Errorf("account %w", ErrNotFound)

	// ErrInvalidCandidateState is returned when a terminal candidate is asked to respond again.
	ErrInvalidCandidateState = fmt.Errorf("%w: candidate already responded", ErrInvalidTransition)
)

// ValidationError describes a malformed booking request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// TransitionError reports a rejected booking state change.
type TransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: booking %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }
