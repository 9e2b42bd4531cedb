package sage

import (
	"errors"
	"fmt"
)

// Common errors returned by the Sage engine and client.
var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidContentType is returned when a content type is not a VARK channel.
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrInvalidQuality is returned when a review quality is outside [0, 5].
	ErrInvalidQuality = errors.New("quality must be between 0 and 5")

	// ErrInvalidDifficulty is returned when a difficulty is outside [1, 10].
	ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 10")

	// ErrNegativeDuration is returned when a session duration is negative.
	ErrNegativeDuration = errors.New("duration cannot be negative")

	// ErrEmptyUserID is returned when a learner ID is missing.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrEmptyContentID is returned when a content ID is missing.
	ErrEmptyContentID = errors.New("content id cannot be empty")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrSessionRefNotFound is returned when a session reference cannot be resolved.
	ErrSessionRefNotFound = errors.New("session reference not found")
)

// ValidationError is returned when a caller violates an input contract.
// Extractable via errors.As(). Err optionally carries the sentinel the
// violation corresponds to, so errors.Is() matches it too.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ImportError is returned when an import operation fails with details.
// Extractable via errors.As(). Supports Unwrap().
type ImportError struct {
	Line int
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import: line %d: %v", e.Line, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
