package utils

import (
	"errors"
	"fmt"
)

// ErrorKind groups failures by how the caller should react to them.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindConflict      ErrorKind = "conflict"
	KindAuthorization ErrorKind = "authorization"
	KindNotFound      ErrorKind = "not_found"
	KindInvariant     ErrorKind = "invariant"
)

// AppError is a typed, user-facing failure. Two AppErrors match under errors.Is when their codes match.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy carrying a more specific message but the same identity.
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidTimeFormat = &AppError{KindValidation, "InvalidTimeFormat", "time must be formatted as HH:MM"}
	ErrEmptyGrid         = &AppError{KindValidation, "EmptyGrid", "no slots fit in the given time window"}
	ErrMissingField      = &AppError{KindValidation, "MissingField", "a required field is missing"}

	ErrSlotAlreadyBooked     = &AppError{KindConflict, "SlotAlreadyBooked", "slot already booked"}
	ErrSlotLocked            = &AppError{KindConflict, "SlotLocked", "slot is currently being chosen by someone else"}
	ErrDuplicateAvailability = &AppError{KindConflict, "DuplicateAvailability", "availability already exists for this doctor on this date"}
	ErrAlreadyCancelled      = &AppError{KindConflict, "AlreadyCancelled", "appointment already cancelled"}
	ErrInvalidTransition     = &AppError{KindConflict, "InvalidTransition", "appointment cannot move to the requested state"}
	ErrPaymentNotConfirmed   = &AppError{KindConflict, "PaymentNotConfirmed", "payment has not been confirmed by the gateway"}

	ErrNotOwner      = &AppError{KindAuthorization, "NotOwner", "appointment does not belong to the caller"}
	ErrForbiddenRole = &AppError{KindAuthorization, "ForbiddenRole", "role not allowed for this operation"}

	ErrAppointmentNotFound  = &AppError{KindNotFound, "NotFound", "appointment not found"}
	ErrAvailabilityNotFound = &AppError{KindNotFound, "AvailabilityNotFound", "no availability found"}
	ErrDoctorNotFound       = &AppError{KindNotFound, "DoctorNotFound", "doctor not found"}

	ErrCannotRevertPaid = &AppError{KindInvariant, "CannotRevertPaid", "a paid appointment cannot be reverted"}
)

// AsAppError unwraps err to an *AppError if it carries one.
func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
