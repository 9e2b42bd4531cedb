package main

import (
	"fmt"
	"os"

	"github.com/hyperengineering/sage"
	"github.com/spf13/cobra"
)

var (
	cfgDBPath  string
	cfgStore   string
	cfgUser    string
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "sage",
	Short: "Sage - Adaptive learning CLI",
	Long: `Sage is a CLI tool for adaptive learning decisions.

It tracks learner behavior and performance, detects learning styles,
schedules spaced repetition reviews, calibrates content difficulty,
and recommends what to study next.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db-path", "", "Path to local learner database (default: derived from store)")
	rootCmd.PersistentFlags().StringVar(&cfgStore, "store", "", "Store ID to operate against (default: SAGE_STORE or 'default')")
	rootCmd.PersistentFlags().StringVarP(&cfgUser, "user", "u", "", "Learner ID (default: SAGE_USER)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output in JSON format")

	rootCmd.AddCommand(learnerCmd)
	rootCmd.AddCommand(observeCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(retentionCmd)
	rootCmd.AddCommand(calibrateCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(harnessCmd)
}

func loadConfig() sage.Config {
	cfg := sage.ConfigFromEnv()

	// Flags override environment
	if cfgDBPath != "" {
		cfg.LocalPath = cfgDBPath
	}
	if cfgStore != "" {
		cfg.Store = cfgStore
	}

	return cfg
}

func loadAndValidateConfig() (sage.Config, error) {
	cfg := loadConfig().WithDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newClient() (*sage.Client, error) {
	cfg, err := loadAndValidateConfig()
	if err != nil {
		return nil, err
	}
	client, err := sage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize client: %w", err)
	}
	return client, nil
}

// resolveUser picks the learner ID: --user flag, then SAGE_USER.
func resolveUser() (string, error) {
	if cfgUser != "" {
		return cfgUser, nil
	}
	if v := os.Getenv("SAGE_USER"); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("learner ID required: pass --user or set SAGE_USER")
}
