package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Search backend identifiers.
const (
	BackendSemanticScholar = "semantic_scholar"
	BackendOpenAlex        = "openalex"
)

// SearchConfig holds settings for the academic search gateway.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the search service: semantic_scholar or openalex.
	Backend string `json:"backend" yaml:"backend"`

	// PageSize is the number of results requested per query (default 10).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// PacingDelay is the pause between consecutive queries (default 500ms).
	PacingDelay time.Duration `json:"pacing_delay" yaml:"pacing_delay" mapstructure:"pacing_delay"`

	// RateLimitRetries is the number of backoff retries on HTTP 429. Zero
	// surfaces the first 429 to the caller as a rate-limit condition.
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries" mapstructure:"rate_limit_retries"`

	// SemanticScholarAPIKey is an optional key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	// OpenAlexEmail is sent as mailto for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`
}

// AI provider identifiers.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// AIConfig holds settings for the LLM gateway.
type AIConfig struct {
	// Provider selects the LLM service: gemini or claude.
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gemini-2.0-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is held in memory only; never written back to config.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// MaxTokens caps completion length where the provider requires it.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout bounds one completion call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// EventLogConfig holds settings for the participant event log.
type EventLogConfig struct {
	// Dir is the directory holding one <participant_id>.jsonl file each.
	Dir string `json:"dir" yaml:"dir"`
}

// DiscoveryConfig holds settings for the Deep Research pipeline.
type DiscoveryConfig struct {
	// Workers bounds concurrent relevance judgments (default 1, sequential).
	Workers int `json:"workers" yaml:"workers"`

	// ReportDir, when set, receives one YAML run report per pipeline run.
	ReportDir string `json:"report_dir,omitempty" yaml:"report_dir,omitempty" mapstructure:"report_dir"`
}

// PaperStoreConfig holds settings for the curated paper collection.
type PaperStoreConfig struct {
	// Path is the JSON file holding {"references": [...]}.
	Path string `json:"path" yaml:"path"`
}

// SessionConfig holds settings for the persisted study session.
type SessionConfig struct {
	// StatePath is the YAML file carrying the session between commands.
	StatePath string `json:"state_path" yaml:"state_path" mapstructure:"state_path"`

	// SecretsDir holds one credential per file.
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`
}

// StudyConfig groups all component configurations.
type StudyConfig struct {
	EventLog  EventLogConfig   `json:"event_log" yaml:"event_log" mapstructure:"event_log"`
	Search    SearchConfig     `json:"search" yaml:"search"`
	AI        AIConfig         `json:"ai" yaml:"ai"`
	Discovery DiscoveryConfig  `json:"discovery" yaml:"discovery"`
	Papers    PaperStoreConfig `json:"papers" yaml:"papers"`
	Session   SessionConfig    `json:"session" yaml:"session"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`

	// LogFormat is text or json.
	LogFormat string `json:"log_format" yaml:"log_format" mapstructure:"log_format"`
}

// DefaultStudyConfig returns the configuration used when no file overrides it.
func DefaultStudyConfig() StudyConfig {
	return StudyConfig{
		EventLog: EventLogConfig{Dir: "logs"},
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   10 * time.Second,
				UserAgent: "LiteratureReviewDashboard/1.0",
			},
			Backend:     BackendSemanticScholar,
			PageSize:    10,
			PacingDelay: 500 * time.Millisecond,
		},
		AI: AIConfig{
			Provider:  ProviderGemini,
			Model:     "gemini-2.0-flash",
			MaxTokens: 1024,
			Timeout:   60 * time.Second,
		},
		Discovery: DiscoveryConfig{Workers: 1},
		Papers:    PaperStoreConfig{Path: "data/example-bib.json"},
		Session: SessionConfig{
			StatePath:  ".litreview/session.yaml",
			SecretsDir: ".secrets",
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}
