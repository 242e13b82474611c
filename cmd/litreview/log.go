// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview-study/internal/eventlog"
	"github.com/pdiddy/litreview-study/internal/metrics"
	"github.com/pdiddy/litreview-study/internal/study"
	"github.com/pdiddy/litreview-study/pkg/types"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Append to, show or export a participant event log",
}

// --- append subcommand ---

var logAppendCmd = &cobra.Command{
	Use:   "append <event_type> [json_payload]",
	Short: "Append one event for the active session",
	Long: `Append records an event with the active session's context. The payload
is a JSON value; it defaults to {}. Unlike the implicit logging done by other
commands, a failure to store the event is reported.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var payload any
		if len(args) == 2 {
			if err := json.Unmarshal([]byte(args[1]), &payload); err != nil {
				return fmt.Errorf("payload: %w", err)
			}
		}
		section, _ := cmd.Flags().GetString("section")

		sess, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		sc := sess.Context()
		if section != "" {
			sc = sess.Enter(section)
		}
		log := eventlog.New(cfg.EventLog, eventlog.WithLogger(logger))
		ev, err := log.Write(sc, types.EventType(args[0]), payload)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s %s\n", ev.Timestamp.Format(time.RFC3339), ev.EventType, string(ev.EventValue))
		return saveSession(sess)
	},
}

// --- show subcommand ---

var logShowCmd = &cobra.Command{
	Use:   "show [participant_id]",
	Short: "Print a participant's events in log order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := participantArg(args)
		if err != nil {
			return err
		}
		events, err := eventlog.New(cfg.EventLog, eventlog.WithLogger(logger)).Read(id)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Printf("No events found for %s.\n", id)
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-14s  %-14s  %-26s  %s\n", "Timestamp", "Condition", "Section", "Event", "Value")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
		for _, ev := range events {
			fmt.Fprintf(os.Stdout, "%-20s  %-14s  %-14s  %-26s  %s\n",
				ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Condition, ev.Section, ev.EventType, truncate(string(ev.EventValue), 60))
		}
		fmt.Fprintf(os.Stdout, "\n%d events\n", len(events))
		return nil
	},
}

// --- export subcommand ---

var logExportCmd = &cobra.Command{
	Use:   "export [participant_id]",
	Short: "Export a participant's events as CSV or JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := participantArg(args)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("output")

		events, err := eventlog.New(cfg.EventLog, eventlog.WithLogger(logger)).Read(id)
		if err != nil {
			return err
		}
		return writeOutput(out, func(w io.Writer) error {
			switch format {
			case "csv", "":
				return eventlog.WriteCSV(w, events)
			case "json":
				return eventlog.WriteJSON(w, events)
			default:
				return fmt.Errorf("unsupported format %q: use csv or json", format)
			}
		})
	},
}

// --- list subcommand ---

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List participants that have an event log",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := eventlog.New(cfg.EventLog).Participants()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

// --- metrics command ---

var metricsCmd = &cobra.Command{
	Use:   "metrics [participant_id]",
	Short: "Compute the session report from a participant's event log",
	Long: `Metrics reads the participant's full event log and derives completion
time, interaction counts, time per mode and section, AI reliance, exploration
depth, verification rates and survey scores. Metrics that do not apply are
shown as N/A.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := participantArg(args)
		if err != nil {
			return err
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")

		events, err := eventlog.New(cfg.EventLog, eventlog.WithLogger(logger)).Read(id)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return fmt.Errorf("no events found for participant %s", id)
		}
		m := metrics.Compute(events)
		if jsonOutput {
			return metrics.FormatJSON(m, os.Stdout)
		}
		fmt.Printf("Session report for %s\n\n", id)
		metrics.FormatTable(m, os.Stdout)
		return nil
	},
}

// participantArg returns the explicit participant or the active session's.
func participantArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	st, err := study.LoadState(cfg.Session.StatePath)
	if err != nil {
		return "", fmt.Errorf("no participant given and %w", err)
	}
	return st.Context.ParticipantID, nil
}

// writeOutput runs write against path, or stdout when path is empty or "-".
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

func init() {
	logAppendCmd.Flags().String("section", "", "UI section to record (default: current)")
	logExportCmd.Flags().String("format", "csv", "export format: csv or json")
	logExportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	metricsCmd.Flags().Bool("json", false, "output the report as JSON")

	logCmd.AddCommand(logAppendCmd)
	logCmd.AddCommand(logShowCmd)
	logCmd.AddCommand(logExportCmd)
	logCmd.AddCommand(logListCmd)

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(metricsCmd)
}
