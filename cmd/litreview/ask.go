// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview-study/internal/assist"
	"github.com/pdiddy/litreview-study/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask <paper-id> <question...>",
	Short: "Ask the AI assistant a question about one collection paper",
	Long: `Ask sends the question with the paper's title, authors, year and abstract
to the AI model. Available in AI mode only.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		answer, err := sess.Ask(cmd.Context(), types.PaperID(args[0]), strings.Join(args[1:], " "))
		if saveErr := saveSession(sess); saveErr != nil {
			return saveErr
		}
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Generate an AI summary across collection papers",
	Long: `Summarize asks the AI model for one of the summary kinds over the selected
papers (default: the first 10 in the collection):

  overview      Literature Overview
  gaps          Research Gaps
  methodology   Methodology Comparison
  findings      Key Findings

Available in AI mode only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("kind")
		kind, err := parseKindFlag(raw)
		if err != nil {
			return err
		}
		ids, _ := cmd.Flags().GetStringSlice("papers")

		sess, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		out, err := sess.Summarize(cmd.Context(), paperIDs(ids), kind)
		if saveErr := saveSession(sess); saveErr != nil {
			return saveErr
		}
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n%s\n", kind, out)
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights themes|citations",
	Short: "Research insights: a thematic map or citation suggestions",
	Long: `Insights asks the AI model for a thematic map of the selected papers or for
recommended citation strategies and related work. Available in AI mode only.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"themes", "citations"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, _ := cmd.Flags().GetStringSlice("papers")
		sess, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}

		var out string
		switch args[0] {
		case "themes":
			out, err = sess.Themes(cmd.Context(), paperIDs(ids))
		case "citations":
			out, err = sess.CitationSuggestions(cmd.Context(), paperIDs(ids))
		default:
			return fmt.Errorf("unknown insight %q: use themes or citations", args[0])
		}
		if saveErr := saveSession(sess); saveErr != nil {
			return saveErr
		}
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

// parseKindFlag accepts the short names shown in the help text as well as
// the full summary kind names.
func parseKindFlag(raw string) (assist.SummaryKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "overview":
		return assist.LiteratureOverview, nil
	case "gaps":
		return assist.ResearchGaps, nil
	case "methodology", "methods":
		return assist.MethodologyComparison, nil
	case "findings":
		return assist.KeyFindings, nil
	}
	return assist.ParseSummaryKind(raw)
}

func paperIDs(raw []string) []types.PaperID {
	var ids []types.PaperID
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			ids = append(ids, types.PaperID(s))
		}
	}
	return ids
}

func init() {
	summarizeCmd.Flags().String("kind", "overview", "summary kind: overview, gaps, methodology or findings")
	summarizeCmd.Flags().StringSlice("papers", nil, "collection paper IDs (default: first 10)")
	insightsCmd.Flags().StringSlice("papers", nil, "collection paper IDs (default: first 10)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(insightsCmd)
}
