package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hyperengineering/sage"
	"github.com/spf13/cobra"
)

var learnerCmd = &cobra.Command{
	Use:   "learner",
	Short: "Manage learner identities and profiles",
}

var learnerInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new learner identity",
	Long: `Generate a learner ID and initialize an empty profile for it.

The generated ID is printed so it can be exported as SAGE_USER:

  export SAGE_USER=$(sage learner init --quiet)`,
	RunE: runLearnerInit,
}

var learnerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the learner's detected style profile",
	RunE:  runLearnerShow,
}

var learnerQuiet bool

func init() {
	learnerInitCmd.Flags().BoolVar(&learnerQuiet, "quiet", false, "Print only the generated learner ID")
	learnerCmd.AddCommand(learnerInitCmd)
	learnerCmd.AddCommand(learnerShowCmd)
}

func runLearnerInit(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	userID := uuid.NewString()
	now := time.Now().UTC()
	profile := sage.LearningProfile{
		UserID:          userID,
		AdaptationLevel: 50,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := client.Store().UpsertProfile(profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	if learnerQuiet {
		fmt.Fprintln(cmd.OutOrStdout(), userID)
		return nil
	}
	if outputJSON {
		return outputAsJSON(cmd, map[string]string{"user_id": userID})
	}
	printSuccess(cmd.OutOrStdout(), "Created learner %s", userID)
	printMuted(cmd.OutOrStdout(), "export SAGE_USER=%s", userID)
	return nil
}

func runLearnerShow(cmd *cobra.Command, args []string) error {
	userID, err := resolveUser()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	profile, err := client.Profile(cmd.Context(), userID)
	if err != nil {
		return err
	}
	return outputProfile(cmd, profile)
}

var observeCmd = &cobra.Command{
	Use:   "observe <action>",
	Short: "Record a behavioral indicator",
	Long: `Record one observed learner behavior and refresh the style profile.

Examples:
  sage observe video_watched --content-type visual --engagement 80 --completion 95 --time-spent 300
  sage observe notes_taken --content-type reading --engagement 70 --completion 100 --time-spent 600`,
	Args: cobra.ExactArgs(1),
	RunE: runObserve,
}

var (
	observeContentType string
	observeEngagement  float64
	observeCompletion  float64
	observeTimeSpent   float64
)

func init() {
	observeCmd.Flags().StringVar(&observeContentType, "content-type", "", "Content modality: visual, auditory, reading, kinesthetic")
	observeCmd.Flags().Float64Var(&observeEngagement, "engagement", 50, "Engagement level 0-100")
	observeCmd.Flags().Float64Var(&observeCompletion, "completion", 100, "Completion rate 0-100")
	observeCmd.Flags().Float64Var(&observeTimeSpent, "time-spent", 0, "Time spent in seconds")
	observeCmd.MarkFlagRequired("content-type")
}

func runObserve(cmd *cobra.Command, args []string) error {
	userID, err := resolveUser()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	indicator := sage.BehavioralIndicator{
		Action:          args[0],
		ContentType:     sage.ContentType(strings.ToLower(observeContentType)),
		EngagementLevel: observeEngagement,
		CompletionRate:  observeCompletion,
		TimeSpent:       observeTimeSpent,
		Timestamp:       time.Now().UTC(),
	}

	profile, err := client.RecordIndicators(cmd.Context(), userID, []sage.BehavioralIndicator{indicator})
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, profile)
	}
	printSuccess(cmd.OutOrStdout(), "Recorded %s", indicator.Action)
	return outputProfile(cmd, profile)
}
