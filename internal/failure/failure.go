// Package failure categorizes pipeline errors so the transport layer can map
// them to status codes without inspecting messages.
package failure

import (
	"errors"
	"fmt"
)

// Kind is the category of a pipeline failure.
type Kind int

const (
	// KindUnexpected covers everything that was not categorized.
	KindUnexpected Kind = iota
	// KindInput is a malformed request: missing fields, non-PDF content, corrupt file.
	KindInput
	// KindAuth is an incorrect PDF password.
	KindAuth
	// KindExtraction is a readable PDF that does not yield the required data.
	KindExtraction
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindAuth:
		return "auth"
	case KindExtraction:
		return "extraction"
	default:
		return "unexpected"
	}
}

// Error is a categorized failure. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Input returns a KindInput error.
func Input(format string, args ...any) *Error {
	return &Error{Kind: KindInput, Message: fmt.Sprintf(format, args...)}
}

// Auth returns a KindAuth error.
func Auth(format string, args ...any) *Error {
	return &Error{Kind: KindAuth, Message: fmt.Sprintf(format, args...)}
}

// Extraction returns a KindExtraction error.
func Extraction(format string, args ...any) *Error {
	return &Error{Kind: KindExtraction, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to e and returns it.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnexpected
}

// Message returns the client-facing message of the first *Error in err's
// chain, or fallback when err is uncategorized.
func Message(err error, fallback string) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return fallback
}
