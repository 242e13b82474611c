// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview-study/internal/discovery"
	"github.com/pdiddy/litreview-study/internal/search"
	"github.com/pdiddy/litreview-study/internal/study"
)

var deepResearchCmd = &cobra.Command{
	Use:   "deep-research <description...>",
	Short: "Find relevant papers from a natural-language research description",
	Long: `Deep Research extracts keyword sets from the description with the AI model,
searches the configured backend with each set, removes duplicate papers, and
asks the model to judge each remaining paper's relevance. Only relevant papers
are listed. Interrupting the run keeps the verdicts reached so far.

Available in AI mode only.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDeepResearch,
}

func runDeepResearch(cmd *cobra.Command, args []string) error {
	description := strings.Join(args, " ")
	workers, _ := cmd.Flags().GetInt("workers")
	reportDir, _ := cmd.Flags().GetString("report-dir")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	cslPath, _ := cmd.Flags().GetString("csl")
	open, err := rankFlag(cmd, "open")
	if err != nil {
		return err
	}
	verify, err := rankFlag(cmd, "verify")
	if err != nil {
		return err
	}
	add, err := rankFlag(cmd, "add")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(ctx, true)
	if err != nil {
		return err
	}
	if workers > 0 {
		sess.Config.Discovery.Workers = workers
	}
	if reportDir != "" {
		sess.Config.Discovery.ReportDir = reportDir
	}

	progress := make(chan discovery.Progress)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			fmt.Fprintln(os.Stderr, p.Message)
		}
	}()

	rep, runErr := sess.DeepResearch(ctx, description, discovery.ChannelSink{C: progress})
	close(progress)
	<-done

	if saveErr := saveSession(sess); saveErr != nil {
		return saveErr
	}
	if runErr != nil && rep == nil {
		return runErr
	}
	if rep.Extraction.IsFallback() {
		fmt.Fprintf(os.Stderr, "Note: keywords were taken from the description (%s).\n", rep.Extraction.Reason)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Interrupted after %d of %d evaluations.\n", rep.Evaluated, rep.Unique)
	}
	fmt.Fprintln(os.Stderr, rep.Summary())

	switch {
	case yamlOutput:
		if err := rep.WriteYAML(os.Stdout); err != nil {
			return err
		}
	case jsonOutput:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep.Results); err != nil {
			return err
		}
	case len(rep.Results) > 0:
		fmt.Printf("\nResults (%d relevant papers)\n\n", len(rep.Results))
		printPaperList(os.Stdout, rep.Results)
	}

	if err := actOnResults(sess, rep.Results, open, verify, add, study.SourceDeepResearch); err != nil {
		return err
	}
	if cslPath != "" {
		if err := writeOutput(cslPath, func(w io.Writer) error { return search.FormatCSL(rep.Results, w) }); err != nil {
			return err
		}
	}
	if err := saveSession(sess); err != nil {
		return err
	}
	return runErr
}

func init() {
	deepResearchCmd.Flags().Int("workers", 0, "concurrent relevance judgments (default: discovery.workers)")
	deepResearchCmd.Flags().String("report-dir", "", "directory for the YAML run report (default: discovery.report_dir)")
	deepResearchCmd.Flags().Bool("yaml", false, "print the full run report as YAML")
	addResultFlags(deepResearchCmd)

	rootCmd.AddCommand(deepResearchCmd)
}
