package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or invalid input field. Details lists
// per-item problems when a batch is rejected as a whole.
type ValidationError struct {
	Field   string
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AuthError reports a missing session (Forbidden false) or an action on a
// resource the caller does not own (Forbidden true).
type AuthError struct {
	Forbidden bool
	Message   string
}

func (e *AuthError) Error() string {
	return e.Message
}

var (
	ErrUnauthenticated = &AuthError{Message: "인증되지 않은 사용자입니다."}
	ErrForbidden       = &AuthError{Forbidden: true, Message: "권한이 없습니다."}
)

// NotFoundError reports a referenced id that does not exist.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Resource, e.ID)
}

// StorageError wraps a file save, move or delete failure.
type StorageError struct {
	Op  string
	URL string
	Err error
}

func (e *StorageError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ImportError reports the first invalid spreadsheet row. Row is the
// spreadsheet row number (the header is row 1); zero means the whole file.
type ImportError struct {
	Row     int
	Message string
}

func (e *ImportError) Error() string {
	if e.Row == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d행: %s", e.Row, e.Message)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
