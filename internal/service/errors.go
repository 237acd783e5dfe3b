package service

import "errors"

var (
	// ErrNotFound is returned when a document (or its file) does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a mutation expected an active document but
	// the row has already reached a terminal status.
	ErrConflict = errors.New("document is no longer active")
	// ErrForbidden is returned when the caller may not act on the document.
	ErrForbidden = errors.New("operation not permitted for this user")
	// ErrRequestNotFound is returned when the referenced service request is
	// unknown to the registry.
	ErrRequestNotFound = errors.New("service request not found")
)

// ValidationError reports a rejected upload candidate. Its message is safe to
// surface to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
