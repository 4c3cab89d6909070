package domain

import (
	"errors"
	"fmt"
)

// Code is a machine-readable failure kind callers can branch on.
type Code string

const (
	CodeUnknown              Code = "UNKNOWN"
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeInvalidTransition    Code = "INVALID_TRANSITION"
	CodeJobUnavailable       Code = "JOB_UNAVAILABLE"
	CodeDuplicateApplication Code = "DUPLICATE_APPLICATION"
	CodeCapacityViolation    Code = "CAPACITY_VIOLATION"
	CodeLastJobViolation     Code = "LAST_JOB_VIOLATION"
	CodeInsufficientCredit   Code = "INSUFFICIENT_CREDIT"
	CodeNotFound             Code = "NOT_FOUND"
	CodeInvalidTimeRange     Code = "INVALID_TIME_RANGE"
	CodeInvalidInput         Code = "INVALID_INPUT"
	CodeJobNameTaken         Code = "JOB_NAME_TAKEN"
	CodeLocationInUse        Code = "LOCATION_IN_USE"
)

// Error is a domain failure. Two errors match under errors.Is when their codes match.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a domain error with a code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a domain error with metadata for the API layer.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

var (
	ErrUnauthorized         = NewError(CodeUnauthorized, "actor is not allowed to perform this action")
	ErrInvalidTransition    = NewError(CodeInvalidTransition, "participation state transition is not allowed")
	ErrJobUnavailable       = NewError(CodeJobUnavailable, "job is deleted")
	ErrDuplicateApplication = NewError(CodeDuplicateApplication, "user already applied to this job")
	ErrCapacityViolation    = NewError(CodeCapacityViolation, "job capacity would be exceeded")
	ErrLastJobViolation     = NewError(CodeLastJobViolation, "an event must keep at least one job")
	ErrInsufficientCredit   = NewError(CodeInsufficientCredit, "not enough credit points")
	ErrNotFound             = NewError(CodeNotFound, "resource not found")
	ErrInvalidTimeRange     = NewError(CodeInvalidTimeRange, "event ends before it starts")
	ErrInvalidInput         = NewError(CodeInvalidInput, "invalid input")
	ErrJobNameTaken         = NewError(CodeJobNameTaken, "a job with this name already exists for the event")
	ErrLocationInUse        = NewError(CodeLocationInUse, "location already belongs to another event")
)

// NotFoundError names the missing entity.
func NotFoundError(entity string, id uint) *Error {
	return WithMetadata(CodeNotFound,
		fmt.Sprintf("%s %d not found", entity, id),
		map[string]string{"entity": entity, "id": fmt.Sprint(id)},
	)
}

// InvalidInputError reports a rejected field.
func InvalidInputError(field, reason string) *Error {
	return WithMetadata(CodeInvalidInput,
		fmt.Sprintf("invalid %s: %s", field, reason),
		map[string]string{"field": field},
	)
}

// CodeOf extracts the domain code from err, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
