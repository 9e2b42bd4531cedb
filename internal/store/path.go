package store

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultStoreRoot returns the root directory for all stores.
// SAGE_HOME overrides the base directory; otherwise ~/.sage/stores,
// falling back to ./.sage/stores if the home dir is unavailable.
func DefaultStoreRoot() string {
	if sageHome := os.Getenv("SAGE_HOME"); sageHome != "" {
		return filepath.Join(sageHome, "stores")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		// Fallback to current working directory
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, ".sage", "stores")
	}
	return filepath.Join(home, ".sage", "stores")
}

// EncodeStorePath encodes a store ID for filesystem use.
// Replaces "/" with "__" for path-style store IDs.
func EncodeStorePath(storeID string) string {
	return strings.ReplaceAll(storeID, "/", "__")
}

// DecodeStorePath decodes an encoded store path back to store ID.
func DecodeStorePath(encoded string) string {
	return strings.ReplaceAll(encoded, "__", "/")
}

// StoreDBPath returns the full path to a store's database file.
// Example: StoreDBPath("school/class-7b") -> ~/.sage/stores/school__class-7b/sage.db
func StoreDBPath(storeID string) string {
	encoded := EncodeStorePath(storeID)
	return filepath.Join(DefaultStoreRoot(), encoded, "sage.db")
}
