package store_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/hyperengineering/sage/internal/store"
)

func TestValidateStoreID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		// Valid cases
		{"simple", "class-7b", false},
		{"with numbers", "cohort-123", false},
		{"single char", "a", false},
		{"two chars", "ab", false},
		{"multi-segment", "org/school/class", false},
		{"max segments (4)", "a/b/c/d", false},
		{"numeric only", "123", false},
		{"alphanumeric", "abc123def", false},
		{"hyphen middle", "my-class-name", false},
		{"long segment", "abcdefghijklmnopqrstuvwxyz0123456789abcdefghijklmnopqrstuvwxyz01", false}, // 64 chars

		// Invalid cases
		{"empty", "", true},
		{"uppercase", "My-Class", true},
		{"leading hyphen", "-class", true},
		{"trailing hyphen", "class-", true},
		{"consecutive hyphens", "my--class", true},
		{"underscore", "my_class", true},
		{"space", "my class", true},
		{"special chars", "my@class", true},
		{"too many segments (5)", "a/b/c/d/e", true},
		{"leading slash", "/class", true},
		{"trailing slash", "class/", true},
		{"empty segment", "org//school", true},
		{"segment leading hyphen", "org/-school", true},
		{"segment trailing hyphen", "org/school-", true},
		{"segment too long (65 chars)", "abcdefghijklmnopqrstuvwxyz0123456789abcdefghijklmnopqrstuvwxyz012", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.ValidateStoreID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStoreID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if tt.wantErr && err != nil {
				if !errors.Is(err, store.ErrInvalidStoreID) {
					t.Errorf("ValidateStoreID(%q) error = %v, want ErrInvalidStoreID", tt.id, err)
				}
			}
		})
	}
}

func TestValidateStoreID_MaxLength(t *testing.T) {
	seg63 := strings.Repeat("a", 63)
	seg64 := strings.Repeat("a", 64)

	// 4 segments of 63 chars + 3 slashes = 255 chars, within the 256 limit
	validID := strings.Join([]string{seg63, seg63, seg63, seg63}, "/")
	if err := store.ValidateStoreID(validID); err != nil {
		t.Errorf("ValidateStoreID(%d chars) unexpected error: %v", len(validID), err)
	}

	// 4 segments of 64 chars + 3 slashes = 259 chars, over the limit
	tooLongID := strings.Join([]string{seg64, seg64, seg64, seg64}, "/")
	if err := store.ValidateStoreID(tooLongID); err == nil {
		t.Errorf("ValidateStoreID(%d chars) expected error, got nil", len(tooLongID))
	}
}

func TestIsReservedStoreID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		reserved bool
	}{
		{"default is reserved", "default", true},
		{"_system is reserved", "_system", true},
		{"normal ID not reserved", "class-7b", false},
		{"empty not reserved", "", false},
		{"DEFAULT not reserved (case sensitive)", "DEFAULT", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.IsReservedStoreID(tt.id)
			if got != tt.reserved {
				t.Errorf("IsReservedStoreID(%q) = %v, want %v", tt.id, got, tt.reserved)
			}
		})
	}
}

func TestValidateStoreIDForCreation(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		wantErr   error
		wantNoErr bool
	}{
		{"valid ID", "class-7b", nil, true},
		{"default reserved", "default", store.ErrReservedStoreID, false},
		{"_system reserved", "_system", store.ErrReservedStoreID, false},
		{"invalid format", "My-Class", store.ErrInvalidStoreID, false},
		{"empty invalid", "", store.ErrInvalidStoreID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.ValidateStoreIDForCreation(tt.id)
			if tt.wantNoErr {
				if err != nil {
					t.Errorf("ValidateStoreIDForCreation(%q) unexpected error: %v", tt.id, err)
				}
				return
			}
			if err == nil {
				t.Errorf("ValidateStoreIDForCreation(%q) expected error, got nil", tt.id)
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateStoreIDForCreation(%q) error = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestErrInvalidStoreID_Message(t *testing.T) {
	if store.ErrInvalidStoreID.Error() == "" {
		t.Error("ErrInvalidStoreID should have a descriptive message")
	}
}

func TestErrReservedStoreID_Message(t *testing.T) {
	if store.ErrReservedStoreID.Error() == "" {
		t.Error("ErrReservedStoreID should have a descriptive message")
	}
}
