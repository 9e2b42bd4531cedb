package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperengineering/sage"
	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage the content pool",
}

var contentAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add or update a content item",
	Long: `Register a piece of learnable content in the pool.

Variants declare per-style renditions as style:format:minutes triples.

Example:
  sage content add algebra-101 --concept "Linear equations" --topic algebra \
    --difficulty 4 --duration 15 --variants visual:video:12,reading:article:20`,
	Args: cobra.ExactArgs(1),
	RunE: runContentAdd,
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the content pool",
	RunE:  runContentList,
}

var contentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one content item in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentShow,
}

var (
	contentConcept    string
	contentTopic      string
	contentDifficulty float64
	contentDuration   float64
	contentLoad       float64
	contentPrereqs    []string
	contentTags       []string
	contentVariants   []string
)

func init() {
	contentAddCmd.Flags().StringVar(&contentConcept, "concept", "", "Concept the content teaches")
	contentAddCmd.Flags().StringVar(&contentTopic, "topic", "", "Topic grouping")
	contentAddCmd.Flags().Float64Var(&contentDifficulty, "difficulty", 5, "Authored difficulty 1-10")
	contentAddCmd.Flags().Float64Var(&contentDuration, "duration", 0, "Estimated duration in minutes")
	contentAddCmd.Flags().Float64Var(&contentLoad, "cognitive-load", 0, "Cognitive load estimate")
	contentAddCmd.Flags().StringSliceVar(&contentPrereqs, "prerequisites", nil, "Prerequisite content IDs")
	contentAddCmd.Flags().StringSliceVar(&contentTags, "tags", nil, "Freeform tags")
	contentAddCmd.Flags().StringSliceVar(&contentVariants, "variants", nil, "Style variants as style:format:minutes")
	contentAddCmd.MarkFlagRequired("concept")

	contentCmd.AddCommand(contentAddCmd)
	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentShowCmd)
}

func parseVariants(specs []string) ([]sage.ContentVariant, error) {
	var variants []sage.ContentVariant
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid variant %q: want style:format:minutes", spec)
		}
		var minutes float64
		if _, err := fmt.Sscanf(parts[2], "%f", &minutes); err != nil {
			return nil, fmt.Errorf("invalid variant duration %q", parts[2])
		}
		variants = append(variants, sage.ContentVariant{
			Style:    sage.ContentType(strings.ToLower(parts[0])),
			Format:   parts[1],
			Duration: minutes,
		})
	}
	return variants, nil
}

func runContentAdd(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	variants, err := parseVariants(contentVariants)
	if err != nil {
		return err
	}

	content := sage.AdaptiveContent{
		ID:            args[0],
		Difficulty:    contentDifficulty,
		Concept:       contentConcept,
		Topic:         contentTopic,
		Prerequisites: contentPrereqs,
		Variants:      variants,
		Metadata: sage.ContentMetadata{
			CognitiveLoad:     contentLoad,
			EstimatedDuration: contentDuration,
			Tags:              contentTags,
		},
	}
	if err := client.Store().UpsertContent(content); err != nil {
		return err
	}

	if outputJSON {
		return outputAsJSON(cmd, content)
	}
	printSuccess(cmd.OutOrStdout(), "Added %s (%s)", content.ID, content.Concept)
	return nil
}

func runContentList(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	pool, err := client.Store().ContentPool()
	if err != nil {
		return err
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	if outputJSON {
		return outputAsJSON(cmd, pool)
	}

	out := cmd.OutOrStdout()
	if len(pool) == 0 {
		fmt.Fprintln(out, "Content pool is empty. Add items with 'sage content add'.")
		return nil
	}
	printInfo(out, "%d content item(s):", len(pool))
	for _, item := range pool {
		fmt.Fprintf(out, "  %-20s %-30s difficulty %.0f", item.ID, item.Concept, item.Difficulty)
		if item.Topic != "" {
			fmt.Fprintf(out, "  [%s]", item.Topic)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func runContentShow(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	item, err := client.Store().GetContent(args[0])
	if err != nil {
		return err
	}

	if outputJSON {
		return outputAsJSON(cmd, item)
	}

	out := cmd.OutOrStdout()
	printInfo(out, "%s", item.ID)
	// Concepts authored with markdown render styled in a terminal.
	fmt.Fprintln(out, renderMarkdown(item.Concept))
	if item.Topic != "" {
		fmt.Fprintf(out, "Topic:      %s\n", item.Topic)
	}
	fmt.Fprintf(out, "Difficulty: %.1f\n", item.Difficulty)
	if item.Metadata.EstimatedDuration > 0 {
		fmt.Fprintf(out, "Duration:   ~%.0f min\n", item.Metadata.EstimatedDuration)
	}
	if len(item.Prerequisites) > 0 {
		fmt.Fprintf(out, "Requires:   %s\n", strings.Join(item.Prerequisites, ", "))
	}
	for _, v := range item.Variants {
		fmt.Fprintf(out, "Variant:    %-12s %s (~%.0f min)\n", v.Style, v.Format, v.Duration)
	}
	if len(item.Metadata.Tags) > 0 {
		fmt.Fprintf(out, "Tags:       %s\n", strings.Join(item.Metadata.Tags, ", "))
	}
	return nil
}
