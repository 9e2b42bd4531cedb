package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hyperengineering/sage"
	"github.com/hyperengineering/sage/internal/store"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage local learner stores",
	Long: `Manage local learner stores for isolating cohorts or projects.

Subcommands:
  list    List all local stores
  create  Create a new store
  delete  Delete an existing store
  info    Show store details and statistics

Example:
  sage store list
  sage store create class-7b --description "Class 7B cohort"
  sage store info class-7b`,
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local stores",
	RunE:  runStoreList,
}

var storeCreateCmd = &cobra.Command{
	Use:   "create <store-id>",
	Short: "Create a new store",
	Long: `Create a new local store.

Store ID format:
  - Lowercase alphanumeric characters and hyphens
  - 1 to 4 path segments separated by '/'
  - Each segment 1-64 characters
  - No leading/trailing hyphens, no consecutive hyphens

Example:
  sage store create class-7b
  sage store create school/class-7b --description "Class 7B cohort"`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreCreate,
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <store-id>",
	Short: "Delete a store",
	Long: `Delete a local store and all its learner data.

Requires --confirm flag for safety. Use --force to skip interactive prompt.
Cannot delete the 'default' store.

Example:
  sage store delete class-7b --confirm
  sage store delete class-7b --confirm --force`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreDelete,
}

var storeInfoCmd = &cobra.Command{
	Use:   "info [store-id]",
	Short: "Show store details",
	Long: `Display detailed information and statistics for a store.

If store-id is not provided, uses the resolved store from the environment.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStoreInfo,
}

var (
	storeDescription   string
	storeDeleteConfirm bool
	storeDeleteForce   bool
)

func init() {
	storeCreateCmd.Flags().StringVar(&storeDescription, "description", "", "Store description")
	storeDeleteCmd.Flags().BoolVar(&storeDeleteConfirm, "confirm", false, "Confirm deletion (required)")
	storeDeleteCmd.Flags().BoolVar(&storeDeleteForce, "force", false, "Skip interactive prompt")

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeCreateCmd)
	storeCmd.AddCommand(storeDeleteCmd)
	storeCmd.AddCommand(storeInfoCmd)
	rootCmd.AddCommand(storeCmd)
}

// StoreListEntry represents a store in list output.
type StoreListEntry struct {
	ID          string    `json:"id"`
	Description string    `json:"description,omitempty"`
	Profiles    int       `json:"profiles"`
	Sessions    int       `json:"sessions"`
	Cards       int       `json:"cards"`
	LastActive  time.Time `json:"last_active,omitempty"`
}

// StoreListResult for JSON output.
type StoreListResult struct {
	Stores []StoreListEntry `json:"stores"`
	Total  int              `json:"total"`
}

func runStoreList(cmd *cobra.Command, args []string) error {
	storeRoot := store.DefaultStoreRoot()

	if _, err := os.Stat(storeRoot); os.IsNotExist(err) {
		if outputJSON {
			return outputAsJSON(cmd, StoreListResult{Stores: []StoreListEntry{}, Total: 0})
		}
		out := cmd.OutOrStdout()
		printWarning(out, "No stores found.")
		printMuted(out, "Create one with: sage store create <store-id>")
		return nil
	}

	entries, err := os.ReadDir(storeRoot)
	if err != nil {
		return fmt.Errorf("read stores directory: %w", err)
	}

	var stores []StoreListEntry
	for _, dirEntry := range entries {
		if !dirEntry.IsDir() {
			continue
		}

		storeID := store.DecodeStorePath(dirEntry.Name())
		dbPath := filepath.Join(storeRoot, dirEntry.Name(), "sage.db")

		fi, err := os.Stat(dbPath)
		if os.IsNotExist(err) {
			continue
		}

		s, err := sage.NewStore(dbPath)
		if err != nil {
			// Skip stores that can't be opened
			continue
		}

		desc, _ := s.GetStoreDescription()
		stats, _ := s.Stats()
		_ = s.Close()

		listEntry := StoreListEntry{
			ID:          storeID,
			Description: desc,
		}
		if fi != nil {
			listEntry.LastActive = fi.ModTime()
		}
		if stats != nil {
			listEntry.Profiles = stats.Profiles
			listEntry.Sessions = stats.Sessions
			listEntry.Cards = stats.Cards
		}

		stores = append(stores, listEntry)
	}

	sort.Slice(stores, func(i, j int) bool {
		return stores[i].ID < stores[j].ID
	})

	if outputJSON {
		return outputAsJSON(cmd, StoreListResult{Stores: stores, Total: len(stores)})
	}

	out := cmd.OutOrStdout()

	if len(stores) == 0 {
		printWarning(out, "No stores found.")
		printMuted(out, "Create one with: sage store create <store-id>")
		return nil
	}

	printInfo(out, "Local Stores (%d):", len(stores))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-30s %-35s %9s %9s %6s %10s\n", "STORE ID", "DESCRIPTION", "LEARNERS", "SESSIONS", "CARDS", "ACTIVE")
	fmt.Fprintf(out, "%-30s %-35s %9s %9s %6s %10s\n", strings.Repeat("-", 30), strings.Repeat("-", 35), strings.Repeat("-", 9), strings.Repeat("-", 9), strings.Repeat("-", 6), strings.Repeat("-", 10))

	for _, s := range stores {
		desc := s.Description
		if len(desc) > 35 {
			desc = desc[:32] + "..."
		}
		fmt.Fprintf(out, "%-30s %-35s %9d %9d %6d %10s\n", s.ID, desc, s.Profiles, s.Sessions, s.Cards, formatRelativeTime(s.LastActive))
	}

	return nil
}

// StoreCreateResult for JSON output.
type StoreCreateResult struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location"`
}

func runStoreCreate(cmd *cobra.Command, args []string) error {
	storeID := args[0]

	if err := store.ValidateStoreIDForCreation(storeID); err != nil {
		return fmt.Errorf("invalid store ID %q: %w\n\nStore IDs must be lowercase alphanumeric with hyphens, 1-4 path segments separated by '/'.\nValid examples: class-7b, school/class-7b, org/school/class-7b", storeID, err)
	}

	dbPath := store.StoreDBPath(storeID)
	storeDir := filepath.Dir(dbPath)

	if _, err := os.Stat(dbPath); err == nil {
		return fmt.Errorf("store %q already exists at %s", storeID, storeDir)
	}

	if err := os.MkdirAll(storeDir, 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	s, err := sage.NewStore(dbPath)
	if err != nil {
		_ = os.RemoveAll(storeDir)
		return fmt.Errorf("initialize store: %w", err)
	}

	if storeDescription != "" {
		if err := s.SetStoreDescription(storeDescription); err != nil {
			_ = s.Close()
			_ = os.RemoveAll(storeDir)
			return fmt.Errorf("set description: %w", err)
		}
	}

	if err := s.Close(); err != nil {
		_ = os.RemoveAll(storeDir)
		return fmt.Errorf("close store: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, StoreCreateResult{
			ID:          storeID,
			Description: storeDescription,
			Location:    storeDir,
		})
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Store created: %s", storeID)
	if storeDescription != "" {
		fmt.Fprintf(out, "  Description: %s\n", storeDescription)
	}
	fmt.Fprintf(out, "  Location: %s\n", storeDir)

	return nil
}

// StoreDeleteResult for JSON output.
type StoreDeleteResult struct {
	ID       string `json:"id"`
	Sessions int    `json:"sessions_deleted"`
}

func runStoreDelete(cmd *cobra.Command, args []string) error {
	storeID := args[0]

	if err := store.ValidateStoreID(storeID); err != nil {
		return fmt.Errorf("invalid store ID %q: %w", storeID, err)
	}

	if !storeDeleteConfirm {
		return fmt.Errorf("--confirm flag is required for delete\n\nUsage: sage store delete <store-id> --confirm [--force]")
	}

	if storeID == "default" {
		return fmt.Errorf("cannot delete protected store 'default'")
	}

	dbPath := store.StoreDBPath(storeID)
	storeDir := filepath.Dir(dbPath)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("store %q not found", storeID)
	}

	var sessionCount int
	s, err := sage.NewStore(dbPath)
	if err == nil {
		stats, _ := s.Stats()
		if stats != nil {
			sessionCount = stats.Sessions
		}
		_ = s.Close()
	}

	out := cmd.OutOrStdout()

	if !storeDeleteForce {
		printWarning(out, "This will permanently delete store '%s' and all %d recorded session(s).", storeID, sessionCount)
		fmt.Fprintf(out, "Type '%s' to confirm: ", storeID)

		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
		response = strings.TrimSpace(response)
		if response != storeID {
			printMuted(out, "Aborted.")
			return nil
		}
	}

	if err := os.RemoveAll(storeDir); err != nil {
		return fmt.Errorf("delete store: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, StoreDeleteResult{
			ID:       storeID,
			Sessions: sessionCount,
		})
	}

	printSuccess(out, "Store deleted: %s", storeID)
	return nil
}

// StoreInfoResult for JSON output.
type StoreInfoResult struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location"`
	Stats       *sage.StoreStats `json:"stats,omitempty"`
	Resolved    bool   `json:"resolved,omitempty"`
}

func runStoreInfo(cmd *cobra.Command, args []string) error {
	var storeID string
	var resolved bool

	if len(args) > 0 {
		storeID = args[0]
	} else {
		var err error
		storeID, err = store.ResolveStore(cfgStore)
		if err != nil {
			return fmt.Errorf("resolve store: %w", err)
		}
		resolved = true
	}

	if err := store.ValidateStoreID(storeID); err != nil {
		return fmt.Errorf("invalid store ID %q: %w", storeID, err)
	}

	dbPath := store.StoreDBPath(storeID)
	storeDir := filepath.Dir(dbPath)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("store %q not found", storeID)
	}

	s, err := sage.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	desc, _ := s.GetStoreDescription()
	stats, err := s.Stats()
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, StoreInfoResult{
			ID:          storeID,
			Description: desc,
			Location:    storeDir,
			Stats:       stats,
			Resolved:    resolved,
		})
	}

	out := cmd.OutOrStdout()

	if resolved {
		printInfo(out, "Store: %s (resolved from environment)", storeID)
	} else {
		printInfo(out, "Store: %s", storeID)
	}

	if desc != "" {
		fmt.Fprintf(out, "  Description: %s\n", desc)
	}
	fmt.Fprintf(out, "  Location: %s\n", storeDir)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Statistics:")
	fmt.Fprintf(out, "  Learner Profiles: %d\n", stats.Profiles)
	fmt.Fprintf(out, "  Indicators:       %d\n", stats.Indicators)
	fmt.Fprintf(out, "  Sessions:         %d\n", stats.Sessions)
	fmt.Fprintf(out, "  Cards:            %d\n", stats.Cards)
	fmt.Fprintf(out, "  Reviews:          %d\n", stats.Reviews)
	fmt.Fprintf(out, "  Content Items:    %d\n", stats.ContentItems)
	fmt.Fprintf(out, "  Schema Version:   %s\n", stats.SchemaVersion)

	return nil
}

// formatRelativeTime formats a time as a relative string (e.g., "2h ago")
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}
