package main

import (
	"time"

	"github.com/hyperengineering/sage"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session <content-id>",
	Short: "Record a completed study session",
	Long: `Record the outcome of one study session against a piece of content.

The session feeds performance analytics and nudges the content's card
difficulty toward observed performance.

Example:
  sage session algebra-101 --minutes 25 --questions 10 --correct 8 --completed`,
	Args: cobra.ExactArgs(1),
	RunE: runSession,
}

var (
	sessionMinutes      float64
	sessionQuestions    int
	sessionCorrect      int
	sessionItems        int
	sessionCompleted    bool
	sessionDifficulty   float64
	sessionFocusSecs    float64
	sessionDistractions int
)

func init() {
	sessionCmd.Flags().Float64Var(&sessionMinutes, "minutes", 0, "Session duration in minutes")
	sessionCmd.Flags().IntVar(&sessionQuestions, "questions", 0, "Questions attempted")
	sessionCmd.Flags().IntVar(&sessionCorrect, "correct", 0, "Questions answered correctly")
	sessionCmd.Flags().IntVar(&sessionItems, "items", 0, "Items completed")
	sessionCmd.Flags().BoolVar(&sessionCompleted, "completed", false, "Session was completed rather than abandoned")
	sessionCmd.Flags().Float64Var(&sessionDifficulty, "difficulty", 0, "Difficulty level the session ran at (1-10)")
	sessionCmd.Flags().Float64Var(&sessionFocusSecs, "focus", 0, "Focused time in seconds")
	sessionCmd.Flags().IntVar(&sessionDistractions, "distractions", 0, "Distraction events observed")
	sessionCmd.MarkFlagRequired("minutes")
}

func runSession(cmd *cobra.Command, args []string) error {
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

	now := time.Now().UTC()
	session := sage.LearningSession{
		UserID:          userID,
		ContentID:       contentID,
		StartTime:       now.Add(-time.Duration(sessionMinutes * float64(time.Minute))),
		Duration:        sessionMinutes,
		Completed:       sessionCompleted,
		TotalQuestions:  sessionQuestions,
		CorrectAnswers:  sessionCorrect,
		ItemsCompleted:  sessionItems,
		DifficultyLevel: sessionDifficulty,
		EngagementMetrics: sage.EngagementMetrics{
			FocusTime:         sessionFocusSecs,
			DistractionEvents: sessionDistractions,
		},
	}

	stored, err := client.RecordSession(cmd.Context(), session)
	if err != nil {
		return err
	}
	if outputJSON {
		return outputAsJSON(cmd, stored)
	}
	out := cmd.OutOrStdout()
	printSuccess(out, "Recorded session %s", stored.ID)
	if stored.TotalQuestions > 0 {
		printMuted(out, "Accuracy: %.0f%% over %d question(s)", stored.Accuracy()*100, stored.TotalQuestions)
	}
	return nil
}
