package sage_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hyperengineering/sage"
)

func TestValidationError_Message(t *testing.T) {
	err := &sage.ValidationError{Field: "Quality", Message: "must be between 0 and 5"}
	want := "validation: Quality: must be between 0 and 5"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestValidationError_ExtractableThroughWrapping(t *testing.T) {
	inner := &sage.ValidationError{Field: "UserID", Message: "cannot be empty"}
	wrapped := fmt.Errorf("record session: %w", inner)

	var verr *sage.ValidationError
	if !errors.As(wrapped, &verr) {
		t.Fatal("errors.As failed through wrapping")
	}
	if verr.Field != "UserID" {
		t.Errorf("Field = %q, want UserID", verr.Field)
	}
}

func TestValidationError_CarriesSentinel(t *testing.T) {
	err := &sage.ValidationError{Field: "Quality", Message: "must be between 0 and 5", Err: sage.ErrInvalidQuality}

	if !errors.Is(err, sage.ErrInvalidQuality) {
		t.Error("errors.Is failed to match sentinel through ValidationError")
	}
	// The sentinel does not leak into the message.
	want := "validation: Quality: must be between 0 and 5"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	// No sentinel attached is still a well-behaved error.
	bare := &sage.ValidationError{Field: "UserID", Message: "cannot be empty"}
	if errors.Is(bare, sage.ErrInvalidQuality) {
		t.Error("bare ValidationError matched an unrelated sentinel")
	}
}

func TestImportError(t *testing.T) {
	cause := errors.New("malformed record")
	err := &sage.ImportError{Line: 42, Err: cause}

	want := "import: line 42: malformed record"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is failed to match the wrapped cause")
	}
}

func TestImportError_WrapsSentinel(t *testing.T) {
	err := &sage.ImportError{Line: 3, Err: sage.ErrInvalidContentType}
	if !errors.Is(err, sage.ErrInvalidContentType) {
		t.Error("errors.Is failed to match sentinel through ImportError")
	}
}
