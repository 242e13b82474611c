// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview-study/internal/papers"
	"github.com/pdiddy/litreview-study/internal/search"
	"github.com/pdiddy/litreview-study/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Browse and manage the paper collection (knowledge base)",
	Long: `Papers manages the curated collection stored in the papers file
({"references": [...]}). Every change rewrites the whole file.`,
}

// --- list subcommand ---

var papersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collection papers, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := criteriaFromFlags(cmd)
		jsonOutput, _ := cmd.Flags().GetBool("json")

		sess, err := newSession(cmd.Context(), false)
		if err != nil {
			return err
		}
		ps, err := sess.Collection(c)
		if err != nil {
			return err
		}
		if err := saveSession(sess); err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(ps)
		}
		if len(ps) == 0 {
			fmt.Println("No papers match.")
			return nil
		}
		for _, p := range ps {
			fmt.Printf("#%-4s %s\n      %s (%d) %s\n", p.ID, p.Title, authorLine(p.Authors), p.Year, p.Journal)
		}
		fmt.Printf("\n%d papers\n", len(ps))
		return nil
	},
}

// --- show subcommand ---

var papersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one collection paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := papers.New(cfg.Papers, logger).Get(types.PaperID(args[0]))
		if err != nil {
			return err
		}
		printPaperCard(os.Stdout, p)
		return nil
	},
}

// --- add subcommand ---

var papersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a paper to the collection by hand",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		if strings.TrimSpace(title) == "" {
			return fmt.Errorf("--title is required")
		}
		authors, _ := cmd.Flags().GetStringSlice("authors")
		keywords, _ := cmd.Flags().GetStringSlice("keywords")
		year, _ := cmd.Flags().GetInt("year")
		journal, _ := cmd.Flags().GetString("journal")
		abstract, _ := cmd.Flags().GetString("abstract")
		doi, _ := cmd.Flags().GetString("doi")

		added, err := papers.New(cfg.Papers, logger).Add(types.Paper{
			Title:    strings.TrimSpace(title),
			Authors:  authors,
			Year:     year,
			Journal:  journal,
			Abstract: abstract,
			DOI:      doi,
			Keywords: keywords,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added #%s: %s\n", added.ID, added.Title)
		return nil
	},
}

// --- remove subcommand ---

var papersRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a paper from the collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := papers.New(cfg.Papers, logger).Remove(types.PaperID(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("Removed #%s: %s\n", removed.ID, removed.Title)
		return nil
	},
}

// --- export subcommand ---

var papersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the collection as CSL YAML or JSON",
	Long: `Export writes the (optionally filtered) collection for reference
managers as CSL YAML, or as the JSON paper records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("output")

		all, err := papers.New(cfg.Papers, logger).Load()
		if err != nil {
			return err
		}
		ps := papers.Filter(all, criteriaFromFlags(cmd))
		return writeOutput(out, func(w io.Writer) error {
			switch format {
			case "csl", "":
				return search.FormatCSL(ps, w)
			case "json":
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(ps)
			default:
				return fmt.Errorf("unsupported format %q: use csl or json", format)
			}
		})
	},
}

// --- stats subcommand ---

var papersStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the collection: authors, journals, years and keywords",
	RunE: func(cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetInt("top")
		all, err := papers.New(cfg.Papers, logger).Load()
		if err != nil {
			return err
		}
		st := papers.Summarize(papers.Filter(all, criteriaFromFlags(cmd)), top)
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(st)
	},
}

func criteriaFromFlags(cmd *cobra.Command) papers.Criteria {
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	journal, _ := cmd.Flags().GetString("journal")
	author, _ := cmd.Flags().GetString("author")
	keywords, _ := cmd.Flags().GetStringSlice("keyword")
	text, _ := cmd.Flags().GetString("text")
	return papers.Criteria{
		YearFrom: yearFrom,
		YearTo:   yearTo,
		Journal:  journal,
		Author:   author,
		Keywords: keywords,
		Text:     text,
	}
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Int("year-from", 0, "earliest publication year")
	cmd.Flags().Int("year-to", 0, "latest publication year")
	cmd.Flags().String("journal", "", "journal name, ignoring case")
	cmd.Flags().String("author", "", "author name substring")
	cmd.Flags().StringSlice("keyword", nil, "keep papers with any of these keywords")
	cmd.Flags().String("text", "", "substring of title or abstract")
}

func init() {
	addFilterFlags(papersListCmd)
	papersListCmd.Flags().Bool("json", false, "output papers as JSON")

	papersAddCmd.Flags().String("title", "", "paper title (required)")
	papersAddCmd.Flags().StringSlice("authors", nil, "authors, comma-separated")
	papersAddCmd.Flags().Int("year", 0, "publication year")
	papersAddCmd.Flags().String("journal", "", "journal or venue")
	papersAddCmd.Flags().String("abstract", "", "abstract text")
	papersAddCmd.Flags().String("doi", "", "DOI without resolver prefix")
	papersAddCmd.Flags().StringSlice("keywords", nil, "keywords, comma-separated")

	addFilterFlags(papersExportCmd)
	papersExportCmd.Flags().String("format", "csl", "export format: csl or json")
	papersExportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	addFilterFlags(papersStatsCmd)
	papersStatsCmd.Flags().Int("top", 10, "number of top journals and keywords")

	papersCmd.AddCommand(papersListCmd)
	papersCmd.AddCommand(papersShowCmd)
	papersCmd.AddCommand(papersAddCmd)
	papersCmd.AddCommand(papersRemoveCmd)
	papersCmd.AddCommand(papersExportCmd)
	papersCmd.AddCommand(papersStatsCmd)

	rootCmd.AddCommand(papersCmd)
}
