package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind sentinels. Match with errors.Is.
var (
	// ErrValidation is returned when the input fails domain validation.
	ErrValidation = errors.New("invalid input")
	// ErrPermission is returned when the caller's role may not perform the operation.
	ErrPermission = errors.New("permission denied")
	// ErrNotFound indicates that the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTransport indicates that the backend was unreachable or answered with a failure.
	ErrTransport = errors.New("backend unavailable")
)

// Metadata describes how a kind surfaces at the HTTP boundary.
type Metadata struct {
	HTTPStatus int
	Retryable  bool
}

var registry = map[error]Metadata{
	ErrValidation: {HTTPStatus: http.StatusBadRequest},
	ErrPermission: {HTTPStatus: http.StatusForbidden},
	ErrNotFound:   {HTTPStatus: http.StatusNotFound},
	ErrTransport:  {HTTPStatus: http.StatusBadGateway, Retryable: true},
}

// Error is a classified error with a user-facing message and an optional reason code.
type Error struct {
	kind   error
	msg    string
	reason string
	cause  error
}

func (e *Error) Error() string {
	switch {
	case e.cause != nil && e.msg != "":
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	case e.msg != "":
		return e.msg
	case e.cause != nil:
		return e.cause.Error()
	default:
		return e.kind.Error()
	}
}

// Is matches the kind sentinel.
func (e *Error) Is(target error) bool { return target == e.kind }

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.cause }

// Kind returns the kind sentinel.
func (e *Error) Kind() error { return e.kind }

// Message returns the user-facing message.
func (e *Error) Message() string {
	if e.msg == "" {
		return e.kind.Error()
	}
	return e.msg
}

// Reason returns the machine-readable reason code, if set.
func (e *Error) Reason() string { return e.reason }

// WithReason returns a copy carrying the reason code.
func (e *Error) WithReason(reason string) *Error {
	cp := *e
	cp.reason = reason
	return &cp
}

// Validation returns an ErrValidation-kind error.
func Validation(msg string) *Error { return &Error{kind: ErrValidation, msg: msg} }

// Permission returns an ErrPermission-kind error.
func Permission(msg string) *Error { return &Error{kind: ErrPermission, msg: msg} }

// NotFound returns an ErrNotFound-kind error.
func NotFound(msg string) *Error { return &Error{kind: ErrNotFound, msg: msg} }

// Transport wraps a backend failure.
func Transport(cause error, msg string) *Error {
	return &Error{kind: ErrTransport, msg: msg, cause: cause}
}

// As extracts *Error from the chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

var kinds = [...]error{ErrValidation, ErrPermission, ErrNotFound, ErrTransport}

// KindOf returns the kind sentinel of err, or nil when err is unclassified.
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// MetadataFor returns the boundary metadata for err; unclassified errors map to 500.
func MetadataFor(err error) Metadata {
	if kind := KindOf(err); kind != nil {
		return registry[kind]
	}
	return Metadata{HTTPStatus: http.StatusInternalServerError}
}

// PublicMessage returns a message safe to show to the caller.
func PublicMessage(err error) string {
	if ae, ok := As(err); ok {
		if errors.Is(ae.kind, ErrTransport) {
			return ErrTransport.Error()
		}
		return ae.Message()
	}
	if kind := KindOf(err); kind != nil {
		return kind.Error()
	}
	return "internal error"
}
