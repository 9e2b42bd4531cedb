package store_test

import (
	"errors"
	"testing"

	"github.com/hyperengineering/sage/internal/store"
)

func TestResolveStore_ExplicitParam(t *testing.T) {
	t.Setenv("SAGE_STORE", "")

	got, err := store.ResolveStore("class-7b")
	if err != nil {
		t.Fatalf("ResolveStore(explicit) unexpected error: %v", err)
	}
	if got != "class-7b" {
		t.Errorf("ResolveStore(explicit) = %q, want %q", got, "class-7b")
	}
}

func TestResolveStore_EnvVar(t *testing.T) {
	t.Setenv("SAGE_STORE", "env-cohort")

	got, err := store.ResolveStore("")
	if err != nil {
		t.Fatalf("ResolveStore(env) unexpected error: %v", err)
	}
	if got != "env-cohort" {
		t.Errorf("ResolveStore(env) = %q, want %q", got, "env-cohort")
	}
}

func TestResolveStore_DefaultFallback(t *testing.T) {
	t.Setenv("SAGE_STORE", "")

	got, err := store.ResolveStore("")
	if err != nil {
		t.Fatalf("ResolveStore(default) unexpected error: %v", err)
	}
	if got != "default" {
		t.Errorf("ResolveStore(default) = %q, want %q", got, "default")
	}
}

func TestResolveStore_ExplicitOverEnv(t *testing.T) {
	t.Setenv("SAGE_STORE", "env-cohort")

	got, err := store.ResolveStore("explicit-cohort")
	if err != nil {
		t.Fatalf("ResolveStore(explicit over env) unexpected error: %v", err)
	}
	if got != "explicit-cohort" {
		t.Errorf("ResolveStore(explicit over env) = %q, want %q", got, "explicit-cohort")
	}
}

func TestResolveStore_InvalidExplicit(t *testing.T) {
	_, err := store.ResolveStore("INVALID-Store")
	if err == nil {
		t.Error("ResolveStore(invalid explicit) expected error, got nil")
	}
	if !errors.Is(err, store.ErrInvalidStoreID) {
		t.Errorf("ResolveStore(invalid explicit) error = %v, want ErrInvalidStoreID", err)
	}
}

func TestResolveStore_InvalidEnv(t *testing.T) {
	t.Setenv("SAGE_STORE", "INVALID-Store")

	_, err := store.ResolveStore("")
	if err == nil {
		t.Error("ResolveStore(invalid env) expected error, got nil")
	}
	if !errors.Is(err, store.ErrInvalidStoreID) {
		t.Errorf("ResolveStore(invalid env) error = %v, want ErrInvalidStoreID", err)
	}
}

func TestResolveStore_ReservedAllowed(t *testing.T) {
	// Reserved IDs may still be targeted, just not created
	t.Setenv("SAGE_STORE", "")

	tests := []string{"default", "_system"}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			got, err := store.ResolveStore(id)
			if err != nil {
				t.Fatalf("ResolveStore(%q) unexpected error: %v", id, err)
			}
			if got != id {
				t.Errorf("ResolveStore(%q) = %q, want %q", id, got, id)
			}
		})
	}
}

func TestResolveStore_PathStyleID(t *testing.T) {
	t.Setenv("SAGE_STORE", "")

	got, err := store.ResolveStore("org/school/class")
	if err != nil {
		t.Fatalf("ResolveStore(path-style) unexpected error: %v", err)
	}
	if got != "org/school/class" {
		t.Errorf("ResolveStore(path-style) = %q, want %q", got, "org/school/class")
	}
}
