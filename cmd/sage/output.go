package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperengineering/sage"
	"github.com/spf13/cobra"
)

// outputAsJSON writes any value as formatted JSON to the command's stdout.
func outputAsJSON(cmd *cobra.Command, v interface{}) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError prints an error to stderr.
func outputError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

// outputProfile prints a learner profile in the configured format.
func outputProfile(cmd *cobra.Command, profile *sage.LearningProfile) error {
	if outputJSON {
		return outputAsJSON(cmd, profile)
	}

	out := cmd.OutOrStdout()
	printInfo(out, "Profile: %s", profile.UserID)
	switch {
	case profile.IsMultimodal:
		fmt.Fprintln(out, "  Style: multimodal")
	case profile.DominantStyle != "":
		fmt.Fprintf(out, "  Style: %s\n", profile.DominantStyle)
	default:
		fmt.Fprintln(out, "  Style: not yet detected")
	}
	for _, score := range profile.Styles {
		fmt.Fprintf(out, "  %-12s score %5.1f  confidence %.2f\n", score.Type, score.Score, score.Confidence)
	}
	fmt.Fprintf(out, "  Adaptation level: %.0f\n", profile.AdaptationLevel)
	return nil
}

// outputCard prints a card's scheduling state after a review.
func outputCard(cmd *cobra.Command, card *sage.SpacedRepetitionCard) error {
	if outputJSON {
		return outputAsJSON(cmd, card)
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Reviewed %s", card.ContentID)
	fmt.Fprintf(out, "  Next review: %s (in %d day(s))\n", card.NextReviewDate.Format("2006-01-02"), card.Interval)
	fmt.Fprintf(out, "  Ease: %.2f  Repetitions: %d  Stage: %s\n", card.EaseFactor, card.Repetitions, card.Stage())
	return nil
}

// outputSchedule prints a study schedule.
func outputSchedule(cmd *cobra.Command, schedule *sage.StudySchedule) error {
	if outputJSON {
		return outputAsJSON(cmd, schedule)
	}

	out := cmd.OutOrStdout()
	if schedule.DueCount == 0 {
		fmt.Fprintln(out, "No cards due for review.")
		return nil
	}

	printInfo(out, "Study plan: %d of %d due card(s), ~%.0f of %.0f minutes",
		len(schedule.Cards), schedule.DueCount, schedule.EstimatedMinutes, schedule.MinutesAvailable)
	fmt.Fprintln(out)
	for i, entry := range schedule.Cards {
		fmt.Fprintf(out, "%2d. %s\n", i+1, entry.Card.ContentID)
		fmt.Fprintf(out, "    %.1f day(s) overdue, ~%.1f min, difficulty %.0f\n",
			entry.OverdueDays, entry.EstimatedMinutes, entry.Card.Difficulty)
	}
	return nil
}

// outputRecommendations prints recommendation results with session refs.
func outputRecommendations(cmd *cobra.Command, result *sage.RecommendationResult) error {
	if outputJSON {
		return outputAsJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	if len(result.Content) == 0 {
		fmt.Fprintln(out, "No matching content found.")
		return nil
	}

	idToRef := make(map[string]string)
	for ref, id := range result.SessionRefs {
		idToRef[id] = ref
	}

	printInfo(out, "Recommended %d item(s):", len(result.Content))
	fmt.Fprintln(out)
	for _, item := range result.Content {
		ref := idToRef[item.ID]
		if ref == "" {
			ref = item.ID
		}
		fmt.Fprintf(out, "[%s] %s\n", ref, item.Concept)
		if item.Topic != "" {
			fmt.Fprintf(out, "    Topic: %s\n", item.Topic)
		}
		fmt.Fprintf(out, "    Difficulty: %.0f  Duration: ~%.0f min\n", item.Difficulty, item.Metadata.EstimatedDuration)
		fmt.Fprintln(out)
	}
	printMuted(out, "Use 'sage review <ref>' after studying an item.")
	return nil
}

// analysisReport bundles the performance outputs for JSON mode.
type analysisReport struct {
	Metrics   *sage.PerformanceMetrics `json:"metrics"`
	Patterns  *sage.LearningPatterns   `json:"patterns"`
	Anomalies []sage.Anomaly           `json:"anomalies,omitempty"`
}

// outputAnalysis prints performance metrics, patterns, and anomalies.
func outputAnalysis(cmd *cobra.Command, metrics *sage.PerformanceMetrics, patterns *sage.LearningPatterns, anomalies []sage.Anomaly) error {
	if outputJSON {
		return outputAsJSON(cmd, analysisReport{Metrics: metrics, Patterns: patterns, Anomalies: anomalies})
	}

	out := cmd.OutOrStdout()
	printInfo(out, "Performance")
	fmt.Fprintf(out, "  Accuracy:    %5.1f\n", metrics.Accuracy)
	fmt.Fprintf(out, "  Speed:       %5.1f\n", metrics.Speed)
	fmt.Fprintf(out, "  Consistency: %5.1f\n", metrics.Consistency)
	fmt.Fprintf(out, "  Retention:   %5.1f\n", metrics.Retention)
	fmt.Fprintf(out, "  Engagement:  %5.1f\n", metrics.Engagement)
	fmt.Fprintf(out, "  Sessions analyzed: %d", metrics.SessionsUsed)
	if metrics.SessionsSkipped > 0 {
		fmt.Fprintf(out, " (%d skipped)", metrics.SessionsSkipped)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Trend: %s\n", patterns.Trend)
	if patterns.PreferredHour >= 0 {
		fmt.Fprintf(out, "Preferred study hour: %02d:00\n", patterns.PreferredHour)
	}
	if patterns.OptimalSessionMinutes != "" {
		fmt.Fprintf(out, "Best session length: %s minutes\n", patterns.OptimalSessionMinutes)
	}

	if len(anomalies) > 0 {
		fmt.Fprintln(out)
		printWarning(out, "Anomalies (%d):", len(anomalies))
		for _, a := range anomalies {
			fmt.Fprintf(out, "  - session %s: %s\n", a.SessionID, a.Reason)
		}
	}
	return nil
}

// outputRetention prints a retention report.
func outputRetention(cmd *cobra.Command, report *sage.RetentionReport) error {
	if outputJSON {
		return outputAsJSON(cmd, report)
	}

	out := cmd.OutOrStdout()
	if report.TotalReviews == 0 {
		fmt.Fprintln(out, "No reviews recorded yet.")
		return nil
	}

	printInfo(out, "Retention: %.0f%% over %d review(s)", report.RetentionRate*100, report.TotalReviews)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "By difficulty:")
	for _, key := range []string{"easy", "medium", "hard"} {
		if b, ok := report.ByDifficulty[key]; ok {
			fmt.Fprintf(out, "  %-7s %3.0f%% (%d reviews)\n", key, b.Rate*100, b.Reviews)
		}
	}
	fmt.Fprintln(out, "By interval:")
	for _, key := range []string{"1d", "2-7d", "8-30d", "31d+"} {
		if b, ok := report.ByInterval[key]; ok {
			fmt.Fprintf(out, "  %-7s %3.0f%% (%d reviews)\n", key, b.Rate*100, b.Reviews)
		}
	}
	return nil
}

// outputCalibration prints a calibration result.
func outputCalibration(cmd *cobra.Command, contentID string, authored float64, result *sage.CalibrationResult) error {
	if outputJSON {
		return outputAsJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	printInfo(out, "Calibration for %s", contentID)
	fmt.Fprintf(out, "  Authored difficulty:   %.1f\n", authored)
	fmt.Fprintf(out, "  Calibrated difficulty: %.1f\n", result.CalibratedDifficulty)
	fmt.Fprintf(out, "  Confidence: %.2f (%d session(s)", result.ConfidenceLevel, result.SessionsUsed)
	if result.SessionsSkipped > 0 {
		fmt.Fprintf(out, ", %d skipped", result.SessionsSkipped)
	}
	fmt.Fprintln(out, ")")
	if len(result.Factors) > 0 {
		fmt.Fprintln(out, "  Factors:")
		for _, f := range result.Factors {
			fmt.Fprintf(out, "    %-20s %+.2f (signal %.2f)\n", f.Name, f.Adjustment, f.Value)
		}
	}
	return nil
}
