// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview-study/internal/study"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List the study tasks and their sample topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		asYAML, _ := cmd.Flags().GetBool("yaml")
		if asYAML {
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(study.Tasks)
		}
		for _, t := range study.Tasks {
			fmt.Printf("%s\n  %s\n", t.Label(), t.Objective)
			for _, c := range t.Criteria {
				fmt.Printf("  - %s\n", c)
			}
			fmt.Printf("  %d sample topics\n\n", len(t.Samples))
		}
		return nil
	},
}

func init() {
	tasksCmd.Flags().Bool("yaml", false, "print the full catalogue as YAML")
	rootCmd.AddCommand(tasksCmd)
}
