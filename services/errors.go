// Package services holds the business rules: order validation and the
// status state machine, and the support-query workflow. Handlers stay
// thin; everything here runs against injected stores.
package services

import "fmt"

// Kind classifies a service failure so the HTTP layer can pick a status
// code without inspecting message text.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindUnavailable
	KindPriceMismatch
	KindInvalidStatus
	KindAlreadyCancelled
	KindCannotCancel
	KindAccessDenied
	KindConflict
	KindStore
)

// Error is a classified service failure. The message is safe to return to
// clients; store internals are never embedded in it.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the underlying cause, if any, for errors.Is checks.
func (e *Error) Unwrap() error { return e.cause }

// E builds a classified error with a formatted message.
func E(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps an unclassified persistence failure. The generic message
// is what callers see; the cause stays server-side for logging.
func StoreError(cause error, message string) *Error {
	return &Error{Kind: KindStore, Message: message, cause: cause}
}

// KindOf returns the error's kind, defaulting to KindStore for
// unclassified errors.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindStore
}
