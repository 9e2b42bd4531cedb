package main

import (
	"strings"

	"github.com/hyperengineering/sage"
	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend what to study next",
	Long: `Select content matched to the learner's style, level, and goals.

Each recommendation gets a session ref (S1, S2, ...) usable with
'sage review' and 'sage session' for the rest of the process.

Examples:
  sage recommend --max 5
  sage recommend --topics algebra,geometry --max-duration 20`,
	RunE: runRecommend,
}

var (
	recommendMax         int
	recommendMaxDuration float64
	recommendTopics      []string
	recommendTypes       []string
	recommendDifficulty  float64
	recommendExclude     []string
	recommendPrereqs     bool
)

func init() {
	recommendCmd.Flags().IntVar(&recommendMax, "max", 5, "Maximum number of recommendations")
	recommendCmd.Flags().Float64Var(&recommendMaxDuration, "max-duration", 0, "Maximum estimated duration per item, in minutes")
	recommendCmd.Flags().StringSliceVar(&recommendTopics, "topics", nil, "Preferred topics")
	recommendCmd.Flags().StringSliceVar(&recommendTypes, "types", nil, "Preferred content styles (visual, auditory, reading, kinesthetic)")
	recommendCmd.Flags().Float64Var(&recommendDifficulty, "difficulty", 0, "Preferred difficulty 1-10 (default: derived from profile)")
	recommendCmd.Flags().StringSliceVar(&recommendExclude, "exclude", nil, "Content IDs to exclude")
	recommendCmd.Flags().BoolVar(&recommendPrereqs, "require-prerequisites", false, "Only recommend content whose prerequisites are completed")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	userID, err := resolveUser()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	var types []sage.ContentType
	for _, t := range recommendTypes {
		types = append(types, sage.ContentType(strings.ToLower(t)))
	}

	rctx := sage.RecommendationContext{
		UserID: userID,
		Preferences: sage.RecommendationPreferences{
			ContentTypes:        types,
			MaxDuration:         recommendMaxDuration,
			PreferredDifficulty: recommendDifficulty,
			Topics:              recommendTopics,
		},
		Constraints: sage.RecommendationConstraints{
			MaxRecommendations:   recommendMax,
			ExcludeContentIDs:    recommendExclude,
			RequirePrerequisites: recommendPrereqs,
		},
	}

	result, err := client.Recommend(cmd.Context(), userID, rctx)
	if err != nil {
		return err
	}
	return outputRecommendations(cmd, result)
}
