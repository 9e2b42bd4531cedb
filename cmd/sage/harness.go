package main

import (
	"fmt"

	"github.com/hyperengineering/sage"
	"github.com/spf13/cobra"
)

var harnessCmd = &cobra.Command{
	Use:   "harness",
	Short: "Validate engine accuracy against synthetic data",
	Long: `Run every engine component against synthetic cases with known ground
truth and check per-component accuracy against the configured floors.

Exits non-zero when any component falls below its floor.`,
	RunE: runHarness,
}

var (
	harnessTrials int
	harnessSize   int
	harnessSeed   int64
)

func init() {
	defaults := sage.DefaultHarnessConfig()
	harnessCmd.Flags().IntVar(&harnessTrials, "trials", defaults.Trials, "Synthetic cases per component")
	harnessCmd.Flags().IntVar(&harnessSize, "size", defaults.Size, "Scale of each synthetic case")
	harnessCmd.Flags().Int64Var(&harnessSeed, "seed", defaults.Seed, "Random seed for reproducible runs")
}

func runHarness(cmd *cobra.Command, args []string) error {
	hcfg := sage.DefaultHarnessConfig()
	hcfg.Trials = harnessTrials
	hcfg.Size = harnessSize
	hcfg.Seed = harnessSeed

	var report sage.HarnessReport
	err := runWithSpinner(cmd.OutOrStdout(), "Running validation harness", func() error {
		report = sage.RunHarness(sage.DefaultEngineConfig(), hcfg)
		return nil
	})
	if err != nil {
		return err
	}

	if outputJSON {
		if err := outputAsJSON(cmd, report); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		for _, r := range report.Results {
			line := fmt.Sprintf("%-18s accuracy %.3f (floor %.2f, %d trials)", r.Component, r.Accuracy, r.Floor, r.Trials)
			if r.Passed {
				printSuccess(out, "%s", line)
			} else {
				printError(out, "%s", line)
			}
		}
	}

	if !report.Passed {
		return fmt.Errorf("one or more components below accuracy floor")
	}
	return nil
}
