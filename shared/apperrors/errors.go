// Package apperrors defines the failure kinds raised by the account lifecycle.
// Every error carries a machine-readable code and a human message; the HTTP layer
// translates the kind into a status code.
package apperrors

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindResourceNotFound      Kind = "ResourceNotFound"
	KindResourceConflict      Kind = "ResourceConflict"
	KindAccountStatus         Kind = "AccountStatusException"
	KindInsufficientFunds     Kind = "InsufficientFunds"
	KindAccountClosing        Kind = "AccountClosingException"
	KindDependencyUnavailable Kind = "DependencyUnavailable"
	KindInvalidRequest        Kind = "InvalidRequest"
)

const (
	CodeNotFound           = "404"
	CodeConflict           = "409"
	CodeBadRequest         = "400"
	CodeServiceUnavailable = "503"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func ResourceNotFound(message string) *Error {
	return &Error{Kind: KindResourceNotFound, Code: CodeNotFound, Message: message}
}

func ResourceConflict(message string) *Error {
	return &Error{Kind: KindResourceConflict, Code: CodeConflict, Message: message}
}

func AccountStatus(message string) *Error {
	return &Error{Kind: KindAccountStatus, Code: CodeBadRequest, Message: message}
}

func InsufficientFunds(message string) *Error {
	return &Error{Kind: KindInsufficientFunds, Code: CodeBadRequest, Message: message}
}

func AccountClosing(message string) *Error {
	return &Error{Kind: KindAccountClosing, Code: CodeBadRequest, Message: message}
}

// DependencyUnavailable wraps a failure of the identity directory, the sequence
// generator or the account store.
func DependencyUnavailable(message string, err error) *Error {
	return &Error{Kind: KindDependencyUnavailable, Code: CodeServiceUnavailable, Message: message, Err: err}
}

func InvalidRequest(message string) *Error {
	return &Error{Kind: KindInvalidRequest, Code: CodeBadRequest, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindResourceNotFound:
		return http.StatusNotFound
	case KindResourceConflict:
		return http.StatusConflict
	case KindAccountStatus, KindInsufficientFunds, KindAccountClosing, KindInvalidRequest:
		return http.StatusBadRequest
	case KindDependencyUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
