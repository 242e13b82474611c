// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview-study/internal/eventlog"
	"github.com/pdiddy/litreview-study/internal/study"
	"github.com/pdiddy/litreview-study/pkg/types"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start, inspect, switch mode, end or reset the study session",
	Long: `Session manages the participant's study session. The session state
(participant, task, active mode, last search) is kept in a small YAML file
between commands; API keys are never written there.`,
}

// --- start subcommand ---

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Establish the participant identity and record task_start",
	RunE:  runSessionStart,
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	name, _ := cmd.Flags().GetString("name")
	info, _ := cmd.Flags().GetString("info")
	taskID, _ := cmd.Flags().GetString("task")
	litExp, _ := cmd.Flags().GetInt("lit-exp")
	aiExp, _ := cmd.Flags().GetInt("ai-exp")
	ai, _ := cmd.Flags().GetBool("ai")

	if id == "" {
		id = eventlog.NewParticipantID()
	}
	task, err := study.LookupTask(taskID)
	if err != nil {
		return err
	}

	sess, err := newSession(cmd.Context(), false)
	if err != nil {
		return err
	}
	if sess.State != nil && !sess.State.Ended() {
		return fmt.Errorf("session for %s is still active: end or reset it first", sess.State.Context.ParticipantID)
	}
	if err := sess.Start(study.Setup{
		ParticipantID:       id,
		ParticipantName:     name,
		ParticipantInfo:     info,
		Task:                task,
		LitReviewExperience: litExp,
		AIExperience:        aiExp,
		AIMode:              ai,
	}); err != nil {
		return err
	}
	if err := saveSession(sess); err != nil {
		return err
	}

	fmt.Printf("Participant: %s\n\n", id)
	printBriefing(sess)
	return nil
}

func printBriefing(sess *study.Session) {
	task, err := sess.Task()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	fmt.Printf("%s\n", task.Name)
	fmt.Printf("Objective: %s\n\n", task.Objective)
	fmt.Printf("Your topic:\n  %s\n\n", sess.State.TaskSample)
	fmt.Println("Requirements:")
	for _, c := range task.Criteria {
		fmt.Printf("  - %s\n", c)
	}
	cond := sess.Context().Condition
	fmt.Printf("\nAvailable tools (%s mode):\n", cond.Short())
	for _, t := range study.Tutorial(cond) {
		fmt.Printf("  - %s\n", t)
	}
}

// --- status subcommand ---

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active session and task briefing",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		st := sess.State
		fmt.Printf("Participant: %s", st.Context.ParticipantID)
		if st.Context.ParticipantName != "" {
			fmt.Printf(" (%s)", st.Context.ParticipantName)
		}
		fmt.Printf("\nTask:        %s\n", st.Context.TaskID)
		fmt.Printf("Mode:        %s\n", sess.Context().Condition)
		fmt.Printf("Started:     %s\n", st.StartedAt.Local().Format(time.DateTime))
		if st.Ended() {
			fmt.Printf("Ended:       %s\n", st.EndedAt.Local().Format(time.DateTime))
		}
		fmt.Println()
		printBriefing(sess)
		return nil
	},
}

// --- mode subcommand ---

var sessionModeCmd = &cobra.Command{
	Use:   "mode manual|ai",
	Short: "Switch the active condition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cond, err := types.ParseCondition(args[0])
		if err != nil {
			return err
		}
		sess, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		if err := sess.SetMode(cond == types.ConditionAI); err != nil {
			return err
		}
		if cond == types.ConditionAI && sess.LLM == nil {
			fmt.Fprintln(os.Stderr, "Warning: no AI API key configured; AI tools will fail until one is set in .secrets/ or the environment.")
		}
		fmt.Printf("Mode: %s\n", cond)
		return saveSession(sess)
	},
}

// --- end subcommand ---

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "Record task_submit and move on to the surveys",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		d, err := sess.End()
		if err != nil {
			return err
		}
		if err := saveSession(sess); err != nil {
			return err
		}
		fmt.Printf("Session ended after %s.\n\n", d.Round(time.Second))
		fmt.Println("Please complete the surveys:")
		for _, in := range study.InstrumentsFor(sess.State.UsedAIMode) {
			fmt.Printf("  litreview survey %s  (%s, %d items, %d-%d)\n", in.Name, in.Title, len(in.Items), in.Min, in.Max)
		}
		return nil
	},
}

// --- reset subcommand ---

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the active session; the event log is kept",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := study.ClearState(cfg.Session.StatePath); err != nil {
			return err
		}
		fmt.Println("Session cleared. Event logs were not modified.")
		return nil
	},
}

// --- survey command ---

var surveyCmd = &cobra.Command{
	Use:   "survey <instrument> [item=rating...]",
	Short: "Record a post-session survey response",
	Long: `Survey records one instrument's responses as a survey_response event.
Items not given on the command line take the instrument's default rating.
Without ratings the items are listed.

  litreview survey SUS Q1=4 Q2=2 Q3=5
  litreview survey NASA_TLX "Mental Demand=5" Effort=4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSurvey,
}

func runSurvey(cmd *cobra.Command, args []string) error {
	in, err := study.LookupInstrument(args[0])
	if err != nil {
		return err
	}
	if len(args) == 1 {
		fmt.Printf("%s (%d = lowest, %d = highest; default %d)\n", in.Title, in.Min, in.Max, in.Default)
		for _, it := range in.Items {
			fmt.Printf("  %-16s %s\n", it.Key, it.Statement)
		}
		return nil
	}

	responses := in.Defaults()
	for _, kv := range args[1:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("rating %q: want item=value", kv)
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("rating %q: %w", kv, err)
		}
		responses[strings.TrimSpace(k)] = n
	}

	sess, err := newSession(cmd.Context(), true)
	if err != nil {
		return err
	}
	if err := sess.SubmitSurvey(in.Name, responses); err != nil {
		return err
	}
	keys := make([]string, 0, len(responses))
	for k := range responses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("Recorded %s:", in.Name)
	for _, k := range keys {
		fmt.Printf(" %s=%d", k, responses[k])
	}
	fmt.Println()
	return saveSession(sess)
}

// --- submit command ---

var submitCmd = &cobra.Command{
	Use:   "submit summary|gaps|keywords <text>",
	Short: "Submit the task outputs",
	Long: `Submit records the participant's final findings: a literature summary,
the research gaps identified, or a comma-separated keyword list.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession(cmd.Context(), true)
		if err != nil {
			return err
		}
		text := strings.Join(args[1:], " ")
		switch args[0] {
		case "summary":
			err = sess.SubmitSummary(text)
		case "gaps":
			err = sess.SubmitGaps(text)
		case "keywords":
			var kws []string
			kws, err = sess.SubmitKeywords(text)
			if err == nil {
				fmt.Printf("Submitted %d keywords.\n", len(kws))
			}
		default:
			return fmt.Errorf("unknown submission %q: use summary, gaps or keywords", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Println("Submitted and logged.")
		return saveSession(sess)
	},
}

func init() {
	sessionStartCmd.Flags().String("id", "", "participant ID (default: generated)")
	sessionStartCmd.Flags().String("name", "", "participant display name")
	sessionStartCmd.Flags().String("info", "", "background information")
	sessionStartCmd.Flags().String("task", "T1", "study task: T1 or T2")
	sessionStartCmd.Flags().Int("lit-exp", 0, "literature review experience, 1-5")
	sessionStartCmd.Flags().Int("ai-exp", 0, "AI tool experience, 1-5")
	sessionStartCmd.Flags().Bool("ai", false, "start in AI mode")

	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionStatusCmd)
	sessionCmd.AddCommand(sessionModeCmd)
	sessionCmd.AddCommand(sessionEndCmd)
	sessionCmd.AddCommand(sessionResetCmd)

	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(surveyCmd)
	rootCmd.AddCommand(submitCmd)
}
