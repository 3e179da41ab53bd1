package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIdentifier      = errors.New("invalid pnr")
	ErrRecordNotFound         = errors.New("train details not found for the provided pnr")
	ErrIdentifierNotInMessage = errors.New("no pnr found in message")
	ErrPermissionDenied       = errors.New("message access permission denied")
)

type ValidationError struct {
	Reason RejectReason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidIdentifier, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidIdentifier
}

// RejectionOf returns the reason carried by a validation error, or "" when err
// is not one.
func RejectionOf(err error) RejectReason {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return ""
}
