package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hyperengineering/sage"
	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review <content-id|ref> <quality>",
	Short: "Grade a spaced repetition review",
	Long: `Record a review of a piece of content and schedule the next one.

Quality is the recall grade 0-5:
  5  perfect recall
  4  correct after hesitation
  3  correct with difficulty
  2  incorrect, but the answer felt close
  1  incorrect, answer remembered on seeing it
  0  total blackout

A card is created on first review. Accepts session refs (S1, S2, ...)
from a prior 'sage recommend'.`,
	Args: cobra.ExactArgs(2),
	RunE: runReview,
}

var reviewResponseTime float64

func init() {
	reviewCmd.Flags().Float64Var(&reviewResponseTime, "response-time", 0, "Response time in seconds")
}

func runReview(cmd *cobra.Command, args []string) error {
	userID, err := resolveUser()
	if err != nil {
		return err
	}
	quality, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("quality must be an integer 0-5, got %q", args[1])
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

	card, err := client.ReviewContent(cmd.Context(), userID, contentID, sage.ReviewInput{
		Quality:      quality,
		ResponseTime: reviewResponseTime,
		Now:          time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return outputCard(cmd, card)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Plan a study session from due cards",
	Long: `Build a study plan from cards due for review, fitted to the time
available. Cards are ordered by urgency and trimmed to the budget.`,
	RunE: runSchedule,
}

var scheduleMinutes float64

func init() {
	scheduleCmd.Flags().Float64Var(&scheduleMinutes, "minutes", 30, "Minutes available to study")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	userID, err := resolveUser()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	schedule, err := client.StudySchedule(cmd.Context(), userID, scheduleMinutes, time.Now().UTC())
	if err != nil {
		return err
	}
	return outputSchedule(cmd, schedule)
}
