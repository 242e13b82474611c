// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litreview CLI: the study session,
// its event log and report, paper search and collection, and the AI tools.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litreview-study/internal/eventlog"
	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/internal/papers"
	"github.com/pdiddy/litreview-study/internal/secrets"
	"github.com/pdiddy/litreview-study/internal/study"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Set in PersistentPreRunE.
var (
	cfg    types.StudyConfig
	logger *slog.Logger
	creds  secrets.Credentials
)

// rootCmd is the base command for the litreview CLI.
var rootCmd = &cobra.Command{
	Use:   "litreview",
	Short: "Literature review study dashboard",
	Long: `litreview runs one participant's literature review study session from the
command line. Every interaction is recorded to the participant's JSON Lines
event log, from which the session report is computed.

Start with 'litreview session start', switch between manual and AI mode with
'litreview session mode', and finish with 'litreview session end' followed by
the surveys and 'litreview metrics'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c
		logger = logging.New(os.Stderr, logging.FromStrings(cfg.LogLevel, cfg.LogFormat))

		creds, err = secrets.Resolve(cfg.Session.SecretsDir, nil, logger)
		return err
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: litreview.yaml in . or ~/.config/litreview)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litreview")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litreview"))
		}
	}

	viper.SetEnvPrefix("LITREVIEW")
	// search.backend is read from LITREVIEW_SEARCH_BACKEND.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.RegisterAlias("log_dir", "event_log.dir")
	viper.RegisterAlias("papers_file", "papers.path")
	setDefaults(types.DefaultStudyConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so environment overrides apply
// even when no config file sets them.
func setDefaults(d types.StudyConfig) {
	viper.SetDefault("event_log.dir", d.EventLog.Dir)
	viper.SetDefault("search.backend", d.Search.Backend)
	viper.SetDefault("search.page_size", d.Search.PageSize)
	viper.SetDefault("search.pacing_delay", d.Search.PacingDelay)
	viper.SetDefault("search.rate_limit_retries", d.Search.RateLimitRetries)
	viper.SetDefault("search.timeout", d.Search.Timeout)
	viper.SetDefault("search.user_agent", d.Search.UserAgent)
	viper.SetDefault("search.semantic_scholar_api_key", "")
	viper.SetDefault("search.openalex_email", "")
	viper.SetDefault("ai.provider", d.AI.Provider)
	viper.SetDefault("ai.model", d.AI.Model)
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.max_tokens", d.AI.MaxTokens)
	viper.SetDefault("ai.timeout", d.AI.Timeout)
	viper.SetDefault("discovery.workers", d.Discovery.Workers)
	viper.SetDefault("discovery.report_dir", d.Discovery.ReportDir)
	viper.SetDefault("papers.path", d.Papers.Path)
	viper.SetDefault("session.state_path", d.Session.StatePath)
	viper.SetDefault("session.secrets_dir", d.Session.SecretsDir)
	viper.SetDefault("log_level", d.LogLevel)
	viper.SetDefault("log_format", d.LogFormat)
}

func loadConfig() (types.StudyConfig, error) {
	c := types.DefaultStudyConfig()
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// newSession wires a session to the configured event log and paper store
// and connects its gateways. With requireState the persisted session is
// loaded and a missing one is an error.
func newSession(ctx context.Context, requireState bool) (*study.Session, error) {
	log := eventlog.New(cfg.EventLog, eventlog.WithLogger(logger))
	sess := study.New(cfg, log, papers.New(cfg.Papers, logger), logger)
	sess.Credentials = creds

	st, err := study.LoadState(cfg.Session.StatePath)
	switch {
	case err == nil:
		sess.State = st
	case errors.Is(err, study.ErrNoSession) && !requireState:
	default:
		return nil, err
	}

	if err := sess.Connect(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// saveSession persists the session state after a command changed it.
func saveSession(sess *study.Session) error {
	if sess.State == nil {
		return nil
	}
	return study.SaveState(cfg.Session.StatePath, sess.State)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
