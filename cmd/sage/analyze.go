package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze learner performance",
	Long: `Compute performance metrics, learning patterns, and anomalies
across the learner's recorded sessions.`,
	RunE: runAnalyze,
}

var analyzeSkipAnomalies bool

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeSkipAnomalies, "no-anomalies", false, "Skip anomaly detection")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	userID, err := resolveUser()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	metrics, err := client.Performance(cmd.Context(), userID)
	if err != nil {
		return err
	}
	patterns, err := client.Patterns(cmd.Context(), userID)
	if err != nil {
		return err
	}

	if analyzeSkipAnomalies {
		return outputAnalysis(cmd, metrics, patterns, nil)
	}
	detected, err := client.Anomalies(cmd.Context(), userID)
	if err != nil {
		return err
	}
	return outputAnalysis(cmd, metrics, patterns, detected)
}

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Report recall retention across reviews",
	Long: `Aggregate review outcomes across all cards, grouped by content
difficulty and by review interval.`,
	RunE: runRetention,
}

func runRetention(cmd *cobra.Command, args []string) error {
	userID, err := resolveUser()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	report, err := client.Retention(cmd.Context(), userID)
	if err != nil {
		return err
	}
	return outputRetention(cmd, report)
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate <content-id>",
	Short: "Calibrate content difficulty from session outcomes",
	Long: `Compare a content item's authored difficulty against how learners
actually perform on it and suggest a calibrated value.`,
	Args: cobra.ExactArgs(1),
	RunE: runCalibrate,
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	userID, err := resolveUser()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	contentID, ok := client.ResolveContentRef(args[0])
	if !ok {
		contentID = args[0]
	}

	content, err := client.Store().GetContent(contentID)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	result, err := client.Calibrate(cmd.Context(), userID, contentID)
	if err != nil {
		return err
	}
	return outputCalibration(cmd, contentID, content.Difficulty, result)
}
