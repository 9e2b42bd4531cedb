package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE:  runStats,
}

var statsHealth bool

func init() {
	statsCmd.Flags().BoolVar(&statsHealth, "health", false, "Run a health check instead of printing counts")
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if statsHealth {
		status := client.HealthCheck(cmd.Context())
		if outputJSON {
			return outputAsJSON(cmd, status)
		}
		out := cmd.OutOrStdout()
		if status.Healthy {
			printSuccess(out, "Store healthy")
			return nil
		}
		printError(out, "Store unhealthy: %s", status.Error)
		return fmt.Errorf("health check failed")
	}

	stats, err := client.Stats()
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, stats)
	}

	out := cmd.OutOrStdout()
	printInfo(out, "Store statistics")
	fmt.Fprintf(out, "  Profiles:   %d\n", stats.Profiles)
	fmt.Fprintf(out, "  Indicators: %d\n", stats.Indicators)
	fmt.Fprintf(out, "  Sessions:   %d\n", stats.Sessions)
	fmt.Fprintf(out, "  Cards:      %d\n", stats.Cards)
	fmt.Fprintf(out, "  Reviews:    %d\n", stats.Reviews)
	fmt.Fprintf(out, "  Content:    %d\n", stats.ContentItems)
	fmt.Fprintf(out, "  Schema:     %s\n", stats.SchemaVersion)
	return nil
}
