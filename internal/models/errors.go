package models

import (
	"errors"
	"strings"
)

// Store facts. Repositories return these (possibly wrapped) when a row is missing.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPropertyNotFound   = errors.New("property not found")
	ErrKYCRecordNotFound  = errors.New("kyc record not found")
	ErrInvestmentNotFound = errors.New("investment not found")
)

// ErrorKind classifies an application error.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindValidation       ErrorKind = "validation_error"
	KindUnauthenticated  ErrorKind = "unauthenticated"
	KindAuthorization    ErrorKind = "authorization_error"
	KindCapacityExceeded ErrorKind = "capacity_exceeded"
	KindStateConflict    ErrorKind = "state_conflict"
	KindInternal         ErrorKind = "internal"
)

// ReasonCode identifies a single eligibility failure.
type ReasonCode string

const (
	ReasonPropertyNotLive      ReasonCode = "PropertyNotLive"
	ReasonFullyFunded          ReasonCode = "FullyFunded"
	ReasonKYCRequired          ReasonCode = "KycRequired"
	ReasonJurisdictionMismatch ReasonCode = "JurisdictionMismatch"
	ReasonAccountInactive      ReasonCode = "AccountInactive"
	ReasonCapacityExceeded     ReasonCode = "CapacityExceeded"
)

// Error is the error type returned by the application service.
type Error struct {
	Kind    ErrorKind
	Message string
	// Reasons and Codes are set for gate rejections, in decision order.
	Reasons []string
	Codes   []ReasonCode
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if len(e.Reasons) > 0 && msg != e.Reasons[0] {
		msg += ": " + strings.Join(e.Reasons, "; ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: KindNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Retryable is true for conflicts the caller may resubmit.
func (e *Error) Retryable() bool {
	return e.Kind == KindStateConflict
}

// Kind sentinels for errors.Is.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated}
	ErrAuthorization    = &Error{Kind: KindAuthorization}
	ErrCapacityExceeded = &Error{Kind: KindCapacityExceeded}
	ErrStateConflict    = &Error{Kind: KindStateConflict}
)

func NewNotFoundError(msg string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewUnauthenticatedError(msg string, err error) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg, Err: err}
}

func NewAuthorizationError(msg string, codes []ReasonCode, reasons []string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg, Codes: codes, Reasons: reasons}
}

func NewCapacityExceededError(msg string, codes []ReasonCode, reasons []string) *Error {
	return &Error{Kind: KindCapacityExceeded, Message: msg, Codes: codes, Reasons: reasons}
}

func NewStateConflictError(msg string, err error) *Error {
	return &Error{Kind: KindStateConflict, Message: msg, Err: err}
}

func NewInternalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err. Bare store sentinels classify as NotFound;
// anything unrecognised is Internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if IsNotFound(err) {
		return KindNotFound
	}
	return KindInternal
}

// IsNotFound reports whether err is any of the store not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrPropertyNotFound) ||
		errors.Is(err, ErrKYCRecordNotFound) ||
		errors.Is(err, ErrInvestmentNotFound)
}
