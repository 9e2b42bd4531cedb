package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export learner data",
	Long: `Export the learner's data as JSON Lines, or the whole database as a
SQLite snapshot with --sqlite.

With no file argument, JSONL goes to stdout.

Examples:
  sage export backup.jsonl
  sage export --sqlite backup.db`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var exportSQLite bool

func init() {
	exportCmd.Flags().BoolVar(&exportSQLite, "sqlite", false, "Export a SQLite database snapshot instead of JSONL")
}

func runExport(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if exportSQLite {
		if len(args) == 0 {
			return fmt.Errorf("sqlite export requires a destination file")
		}
		if err := client.Store().ExportSQLite(cmd.Context(), args[0]); err != nil {
			return err
		}
		if !outputJSON {
			printSuccess(cmd.OutOrStdout(), "Exported database to %s", args[0])
		}
		return nil
	}

	userID, err := resolveUser()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		if err := client.ExportJSONL(cmd.Context(), userID, f); err != nil {
			return err
		}
		if !outputJSON {
			printSuccess(out, "Exported learner data to %s", args[0])
		}
		return nil
	}
	return client.ExportJSONL(cmd.Context(), userID, out)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import learner data from a JSONL export",
	Long: `Import records from a 'sage export' JSONL file. Existing records
with matching IDs are replaced. Invalid lines are skipped and counted.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	result, err := client.ImportJSONL(cmd.Context(), f)
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Imported %d of %d record(s)", result.Imported, result.Total)
	if result.Skipped > 0 {
		printWarning(out, "Skipped %d record(s):", result.Skipped)
		for _, e := range result.Errors {
			printMuted(out, "  %s", e)
		}
	}
	return nil
}
