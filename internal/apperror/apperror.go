// Package apperror defines the error taxonomy shared by the API client, the
// domain services and the state containers.
package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies an error by where it originated.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAPI        Kind = "api"
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindNotFound   Kind = "not_found"
	KindUnknown    Kind = "unknown"
)

// Error is the typed error returned by services. Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Message string
	Code    string
	Status  int
	Details json.RawMessage
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds a client-side validation error. These never reach the network.
func Validation(message string, err error) *Error {
	return &Error{Kind: KindValidation, Message: message, Err: err}
}

// Network builds an error for a request that never received a response.
func Network(message string, err error) *Error {
	if message == "" {
		message = "Network error"
	}
	return &Error{Kind: KindNetwork, Message: message, Err: err}
}

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// From converts any error into an *Error, wrapping foreign errors as KindUnknown.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindUnknown, Message: err.Error(), Err: err}
}

// KindOf reports the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message of err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	appErr := From(err)
	if appErr.Message == "" {
		return "Something went wrong"
	}
	return appErr.Message
}
