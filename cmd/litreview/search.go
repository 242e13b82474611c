// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview-study/internal/papers"
	"github.com/pdiddy/litreview-study/internal/search"
	"github.com/pdiddy/litreview-study/internal/study"
	"github.com/pdiddy/litreview-study/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search the academic search service for papers",
	Long: `Search queries the configured backend (Semantic Scholar or OpenAlex) and
lists the results. A query that differs from the previous one is recorded as
a keyword refinement.

Use --open to read result details, --verify to follow a result to its source,
and --add to commit results to your collection. Each takes 1-based ranks.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")
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

	sess, err := newSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	if limit > 0 {
		sess.Config.Search.PageSize = limit
	}

	results, err := sess.Search(cmd.Context(), query)
	if saveErr := saveSession(sess); saveErr != nil {
		return saveErr
	}
	if err != nil {
		if search.IsRateLimited(err) {
			fmt.Fprintln(os.Stderr, "The search service is rate limiting requests.")
		}
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		fmt.Printf("Found %d papers for '%s'.\n\n", len(results), query)
		printPaperList(os.Stdout, results)
	}

	if err := actOnResults(sess, results, open, verify, add, ""); err != nil {
		return err
	}
	if cslPath != "" {
		if err := writeOutput(cslPath, func(w io.Writer) error { return search.FormatCSL(results, w) }); err != nil {
			return err
		}
	}
	return saveSession(sess)
}

// actOnResults applies the --open, --verify and --add ranks to results.
// source marks Deep Research results.
func actOnResults(sess *study.Session, results []types.Paper, open, verify, add []int, source string) error {
	pick := func(rank int) (types.Paper, error) {
		if rank < 1 || rank > len(results) {
			return types.Paper{}, fmt.Errorf("rank %d out of range 1-%d", rank, len(results))
		}
		return results[rank-1], nil
	}

	for _, r := range open {
		p, err := pick(r)
		if err != nil {
			return err
		}
		if source == study.SourceDeepResearch {
			sess.OpenResult(p)
		} else {
			sess.OpenPaper(p, r)
		}
		fmt.Println()
		printPaperCard(os.Stdout, p)
	}
	for _, r := range verify {
		p, err := pick(r)
		if err != nil {
			return err
		}
		if p.URL == "" {
			fmt.Printf("[%d] has no source link.\n", r)
			continue
		}
		if source == study.SourceDeepResearch {
			sess.VerifyResult(p)
		} else {
			sess.VerifySource(p)
		}
		fmt.Printf("[%d] %s\n", r, p.URL)
	}
	for _, r := range add {
		p, err := pick(r)
		if err != nil {
			return err
		}
		added, err := sess.Commit(p, source)
		if errors.Is(err, papers.ErrDuplicate) {
			fmt.Printf("[%d] Already in Collection: %s\n", r, p.Title)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Printf("[%d] Added as #%s: %s\n", r, added.ID, added.Title)
	}
	return nil
}

func printPaperList(w io.Writer, ps []types.Paper) {
	for i, p := range ps {
		title := p.Title
		if title == "" {
			title = types.Untitled
		}
		year := "n.d."
		if p.Year > 0 {
			year = strconv.Itoa(p.Year)
		}
		fmt.Fprintf(w, "%3d. %s\n     %s (%s) %s\n", i+1, title, authorLine(p.Authors), year, p.Journal)
	}
}

func printPaperCard(w io.Writer, p types.Paper) {
	fmt.Fprintf(w, "%s\n", p.Title)
	fmt.Fprintf(w, "  Authors:  %s\n", authorLine(p.Authors))
	if p.Year > 0 {
		fmt.Fprintf(w, "  Year:     %d\n", p.Year)
	}
	if p.Journal != "" {
		fmt.Fprintf(w, "  Journal:  %s\n", p.Journal)
	}
	if p.DOI != "" {
		fmt.Fprintf(w, "  DOI:      %s\n", p.DOI)
	}
	if len(p.Keywords) > 0 {
		fmt.Fprintf(w, "  Keywords: %s\n", strings.Join(p.Keywords, ", "))
	}
	fmt.Fprintf(w, "  Abstract: %s\n", p.Abstract)
}

func authorLine(authors []string) string {
	switch {
	case len(authors) == 0:
		return "Unknown"
	case len(authors) > 3:
		return strings.Join(authors[:3], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}

// rankFlag parses a comma-separated list of 1-based ranks.
func rankFlag(cmd *cobra.Command, name string) ([]int, error) {
	raw, _ := cmd.Flags().GetString(name)
	var out []int
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("--%s: %q is not a rank", name, s)
		}
		out = append(out, n)
	}
	return out, nil
}

func addResultFlags(cmd *cobra.Command) {
	cmd.Flags().String("open", "", "ranks of results to open (e.g. 1,3)")
	cmd.Flags().String("verify", "", "ranks of results to follow to their source")
	cmd.Flags().String("add", "", "ranks of results to add to the collection")
	cmd.Flags().Bool("json", false, "output results as JSON")
	cmd.Flags().String("csl", "", "also write results as CSL YAML to this file")
}

func init() {
	searchCmd.Flags().Int("limit", 0, "results per query (default: search.page_size)")
	addResultFlags(searchCmd)

	rootCmd.AddCommand(searchCmd)
}
