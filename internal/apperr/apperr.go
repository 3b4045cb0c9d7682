// Package apperr carries the failure taxonomy shared by services and
// handlers. Services wrap storage and crypto failures into a kind-tagged
// error; the HTTP layer maps kinds onto status codes without inspecting
// messages.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindNotFound covers absent rows and missing access alike, so callers
	// cannot probe for existence.
	KindNotFound Kind = iota
	KindForbidden
	KindUnauthorized
	// KindInvalid covers malformed input and integrity mismatches (CRC or
	// roster signature drift).
	KindInvalid
	KindUnavailable
	KindInternal
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Invalid(message string) *Error      { return New(KindInvalid, message) }
func Unavailable(message string) *Error  { return New(KindUnavailable, message) }

// KindOf extracts the kind of err, or KindInternal when err was never
// classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
