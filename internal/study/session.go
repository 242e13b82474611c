// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package study drives one participant's study session: task setup, mode
// switching, the manual and AI tools, task submission, surveys and the
// final report. Every interaction is recorded to the participant's event
// log with an explicit SessionContext.
package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/litreview-study/internal/assist"
	"github.com/pdiddy/litreview-study/internal/discovery"
	"github.com/pdiddy/litreview-study/internal/eventlog"
	"github.com/pdiddy/litreview-study/internal/llm"
	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/internal/metrics"
	"github.com/pdiddy/litreview-study/internal/papers"
	"github.com/pdiddy/litreview-study/internal/search"
	"github.com/pdiddy/litreview-study/internal/secrets"
	"github.com/pdiddy/litreview-study/pkg/types"
)

// UI locations stamped on events.
const (
	SectionHome    = types.DefaultSection
	SectionPapers  = "Papers"
	SectionSearch  = "Search Online"
	SectionAI      = "AI Assistant"
	SectionSummary = "Summary"
	SectionSurvey  = "Survey"
)

// Values of the source and source_type payload fields.
const (
	SourceDeepResearch     = "deep_research"
	SourceExternalLink     = "external_link"
	SourceDeepResearchLink = metrics.SourceDeepResearchExternal
)

// defaultSelection is the number of collection papers used by the
// multi-paper AI tools when none are named.
const defaultSelection = 10

var (
	ErrEmptyParticipant = errors.New("participant ID cannot be empty")
	ErrEmptySubmission  = errors.New("nothing to submit")
	ErrAlreadyEnded     = errors.New("session already ended")
	ErrNoSearch         = errors.New("no search backend configured")

	// ErrAIModeOff is returned by the AI tools while the session is in
	// manual mode.
	ErrAIModeOff = errors.New("AI features are available in AI mode only")
)

// EventStore is the event log as seen by a session.
type EventStore interface {
	eventlog.Recorder
	Read(participantID string) ([]types.Event, error)
}

// Setup is what the participant enters before the session starts.
type Setup struct {
	ParticipantID   string
	ParticipantName string
	ParticipantInfo string
	Task            Task

	// Sample is the assigned topic; empty picks one of the task's samples.
	Sample string

	// Self-rated experience on a 1-5 scale; zero means not given.
	LitReviewExperience int
	AIExperience        int

	AIMode bool
}

// Session binds a session State to the services it drives. Searcher and
// LLM may be nil; the operations that need them fail with a typed error.
type Session struct {
	State *State

	Events   EventStore
	Store    *papers.Store
	Searcher search.Gateway
	LLM      llm.Gateway

	// Credentials are held in memory for the lifetime of the process.
	Credentials secrets.Credentials

	Config types.StudyConfig
	Logger *slog.Logger
	Now    func() time.Time
}

// New returns a session without state. Call Start, or set State from
// LoadState.
func New(cfg types.StudyConfig, events EventStore, store *papers.Store, logger *slog.Logger) *Session {
	return &Session{Events: events, Store: store, Config: cfg, Logger: logger, Now: time.Now}
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Session) logger() *slog.Logger { return logging.OrDiscard(s.Logger) }

// Connect builds the search and LLM gateways from Config with Credentials
// applied. Without an AI key LLM stays nil and the AI tools fail with a
// configuration error.
func (s *Session) Connect(ctx context.Context) error {
	cfg := s.Config
	s.Credentials.Apply(&cfg)

	sg, err := search.New(cfg.Search, s.Logger)
	if err != nil {
		return err
	}
	s.Searcher = sg

	if cfg.AI.APIKey != "" {
		gw, err := llm.New(ctx, cfg.AI, s.Logger)
		if err != nil {
			return err
		}
		s.LLM = gw
	}
	s.Config = cfg
	return nil
}

// Start establishes the participant identity and records task_start.
func (s *Session) Start(setup Setup) error {
	id := strings.TrimSpace(setup.ParticipantID)
	if id == "" {
		return ErrEmptyParticipant
	}
	if err := eventlog.ValidateParticipantID(id); err != nil {
		return err
	}
	for _, v := range []int{setup.LitReviewExperience, setup.AIExperience} {
		if v < 0 || v > 5 {
			return fmt.Errorf("experience rating %d outside 1-5", v)
		}
	}
	if setup.Task.ID == "" {
		setup.Task = Tasks[0]
	}
	sample := setup.Sample
	if sample == "" {
		sample = setup.Task.PickSample()
	}

	s.State = &State{
		Context: types.SessionContext{
			ParticipantID:   id,
			ParticipantName: strings.TrimSpace(setup.ParticipantName),
			Condition:       types.ConditionFor(setup.AIMode),
			TaskID:          setup.Task.Label(),
			Section:         SectionHome,
		},
		ParticipantInfo:     strings.TrimSpace(setup.ParticipantInfo),
		LitReviewExperience: setup.LitReviewExperience,
		AIExperience:        setup.AIExperience,
		TaskSample:          sample,
		AIMode:              setup.AIMode,
		UsedAIMode:          setup.AIMode,
		StartedAt:           s.now(),
	}
	s.record(SectionHome, types.EventTaskStart, types.Payload{
		"task_name":             setup.Task.Label(),
		"lit_review_experience": setup.LitReviewExperience,
		"ai_experience":         setup.AIExperience,
	})
	s.logger().Info("session started",
		slog.String("participant_id", id),
		slog.String("task_id", setup.Task.Label()),
		slog.String("condition", string(s.State.Context.Condition)))
	return nil
}

// Context returns the SessionContext stamped on the next event.
func (s *Session) Context() types.SessionContext {
	if s.State == nil {
		return types.SessionContext{}
	}
	sc := s.State.Context
	sc.Condition = types.ConditionFor(s.State.AIMode)
	return sc
}

// Task returns the catalogue entry of the session's task.
func (s *Session) Task() (Task, error) {
	if s.State == nil {
		return Task{}, ErrNoSession
	}
	return LookupTask(s.State.Context.TaskID)
}

// SetMode switches between manual and AI mode. Later events carry the new
// condition.
func (s *Session) SetMode(ai bool) error {
	if s.State == nil {
		return ErrNoSession
	}
	s.State.AIMode = ai
	if ai {
		s.State.UsedAIMode = true
	}
	s.State.Context.Condition = types.ConditionFor(ai)
	s.State.Context.Section = SectionHome
	return nil
}

// Enter moves the participant to section without recording an event.
func (s *Session) Enter(section string) types.SessionContext {
	if s.State != nil {
		s.State.Context.Section = section
	}
	return s.Context()
}

func (s *Session) record(section string, et types.EventType, payload types.Payload) {
	sc := s.Enter(section)
	if s.Events != nil {
		s.Events.Append(sc, et, payload)
	}
}

// Search runs an ad-hoc query. A query that differs from the previous one
// is recorded as a keyword refinement before the search_query event.
func (s *Session) Search(ctx context.Context, query string) ([]types.Paper, error) {
	if s.State == nil {
		return nil, ErrNoSession
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, search.ErrEmptyQuery
	}
	if s.Searcher == nil {
		return nil, ErrNoSearch
	}

	if prev := s.State.LastQuery; prev != "" && prev != query {
		s.record(SectionSearch, types.EventKeywordRefine, types.Payload{
			"previous_query": prev,
			"new_query":      query,
		})
	}
	s.record(SectionSearch, types.EventSearchQuery, types.Payload{
		"query_text":   query,
		"query_length": len([]rune(query)),
	})
	s.State.LastQuery = query

	return s.Searcher.Search(ctx, query, s.Config.Search.PageSize)
}

// OpenPaper records that the participant expanded a search result at
// 1-based rank.
func (s *Session) OpenPaper(p types.Paper, rank int) {
	s.record(SectionSearch, types.EventPaperOpen, types.Payload{
		"paper_id":      p.ID.String(),
		"rank_position": rank,
	})
}

// VerifySource records a click through to a search result's landing page.
func (s *Session) VerifySource(p types.Paper) {
	s.record(SectionSearch, types.EventSourceVerificationClick, types.Payload{
		"paper_id":    p.ID.String(),
		"source_type": SourceExternalLink,
	})
}

// Commit adds p to the collection and records paper_select. source is
// empty for ad-hoc search results. A paper already in the collection is
// rejected with papers.ErrDuplicate and nothing is recorded.
func (s *Session) Commit(p types.Paper, source string) (types.Paper, error) {
	if s.State == nil {
		return types.Paper{}, ErrNoSession
	}
	current, err := s.Store.Load()
	if err != nil {
		return types.Paper{}, err
	}
	if papers.Contains(current, p.Title) {
		return types.Paper{}, fmt.Errorf("%q: %w", p.Title, papers.ErrDuplicate)
	}

	payload := types.Payload{"paper_id": p.ID.String()}
	section := SectionSearch
	if source != "" {
		payload["source"] = source
		section = SectionAI
	}
	s.record(section, types.EventPaperSelect, payload)
	return s.Store.Add(p)
}

// Collection returns the committed papers matching c.
func (s *Session) Collection(c papers.Criteria) ([]types.Paper, error) {
	s.Enter(SectionPapers)
	all, err := s.Store.Load()
	if err != nil {
		return nil, err
	}
	return papers.Filter(all, c), nil
}

func (s *Session) requireAI() error {
	if s.State == nil {
		return ErrNoSession
	}
	if !s.State.AIMode {
		return ErrAIModeOff
	}
	return nil
}

func (s *Session) assistant() *assist.Assistant {
	return assist.New(s.LLM, s.Events, s.Logger)
}

// selectPapers resolves ids against the collection. No ids selects the
// first defaultSelection papers.
func (s *Session) selectPapers(ids []types.PaperID) ([]types.Paper, error) {
	all, err := s.Store.Load()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return all[:min(len(all), defaultSelection)], nil
	}
	byID := make(map[types.PaperID]types.Paper, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}
	out := make([]types.Paper, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("id %s: %w", id, papers.ErrNotFound)
		}
		out = append(out, p)
	}
	return out, nil
}

// Ask answers a question about one committed paper.
func (s *Session) Ask(ctx context.Context, id types.PaperID, question string) (string, error) {
	if err := s.requireAI(); err != nil {
		return "", err
	}
	p, err := s.Store.Get(id)
	if err != nil {
		return "", err
	}
	return s.assistant().Ask(ctx, s.Enter(SectionAI), p, question)
}

// Summarize generates a summary of kind over the selected papers.
func (s *Session) Summarize(ctx context.Context, ids []types.PaperID, kind assist.SummaryKind) (string, error) {
	if err := s.requireAI(); err != nil {
		return "", err
	}
	ps, err := s.selectPapers(ids)
	if err != nil {
		return "", err
	}
	return s.assistant().Summarize(ctx, s.Enter(SectionAI), ps, kind)
}

// Themes runs the thematic analysis over the selected papers.
func (s *Session) Themes(ctx context.Context, ids []types.PaperID) (string, error) {
	if err := s.requireAI(); err != nil {
		return "", err
	}
	ps, err := s.selectPapers(ids)
	if err != nil {
		return "", err
	}
	return s.assistant().Themes(ctx, s.Enter(SectionAI), ps)
}

// CitationSuggestions suggests how the selected papers could be cited
// together.
func (s *Session) CitationSuggestions(ctx context.Context, ids []types.PaperID) (string, error) {
	if err := s.requireAI(); err != nil {
		return "", err
	}
	ps, err := s.selectPapers(ids)
	if err != nil {
		return "", err
	}
	return s.assistant().CitationSuggestions(ctx, s.Enter(SectionAI), ps)
}

// DeepResearch runs the discovery pipeline for description. When a report
// directory is configured the run report is saved there, including partial
// reports of cancelled runs.
func (s *Session) DeepResearch(ctx context.Context, description string, sink discovery.ProgressSink) (*discovery.RunReport, error) {
	if err := s.requireAI(); err != nil {
		return nil, err
	}
	if s.Searcher == nil {
		return nil, ErrNoSearch
	}
	p := discovery.New(s.LLM, s.Searcher, s.Events, s.Config, s.Logger)
	p.Now = s.Now
	rep, err := p.Run(ctx, s.Enter(SectionAI), description, sink)

	if rep != nil && s.Config.Discovery.ReportDir != "" {
		path, saveErr := rep.Save(s.Config.Discovery.ReportDir)
		if saveErr != nil {
			s.logger().Warn("saving run report failed", slog.Any("error", saveErr))
		} else {
			s.logger().Info("run report saved", slog.String("path", path))
		}
	}
	return rep, err
}

// OpenResult records that the participant expanded a Deep Research result.
func (s *Session) OpenResult(p types.Paper) {
	s.record(SectionAI, types.EventDeepResearchLinkClick, types.Payload{
		"paper_id": p.ID.String(),
	})
}

// VerifyResult records a click through to a Deep Research result's source.
func (s *Session) VerifyResult(p types.Paper) {
	s.record(SectionAI, types.EventSourceVerificationClick, types.Payload{
		"paper_id":    p.ID.String(),
		"source_type": SourceDeepResearchLink,
	})
}

// SubmitSummary records the participant's literature summary.
func (s *Session) SubmitSummary(text string) error {
	return s.submitText(types.EventSummarySubmit, text)
}

// SubmitGaps records the research gaps the participant identified.
func (s *Session) SubmitGaps(text string) error {
	return s.submitText(types.EventGapSubmit, text)
}

func (s *Session) submitText(et types.EventType, text string) error {
	if s.State == nil {
		return ErrNoSession
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptySubmission
	}
	s.record(SectionSummary, et, types.Payload{
		"word_count": len(strings.Fields(text)),
		"text":       text,
	})
	return nil
}

// SubmitKeywords records a comma-separated keyword list and returns the
// parsed keywords.
func (s *Session) SubmitKeywords(raw string) ([]string, error) {
	if s.State == nil {
		return nil, ErrNoSession
	}
	var kws []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, k)
		}
	}
	if len(kws) == 0 {
		return nil, ErrEmptySubmission
	}
	s.record(SectionSummary, types.EventKeywordsSubmit, types.Payload{"keywords": kws})
	return kws, nil
}

// End records task_submit with the time since Start.
func (s *Session) End() (time.Duration, error) {
	if s.State == nil {
		return 0, ErrNoSession
	}
	if s.State.Ended() {
		return 0, ErrAlreadyEnded
	}
	end := s.now()
	d := end.Sub(s.State.StartedAt)
	s.State.EndedAt = &end
	s.record(SectionSurvey, types.EventTaskSubmit, types.Payload{
		"task_name":        s.State.Context.TaskID,
		"duration_seconds": d.Seconds(),
	})
	return d, nil
}

// SubmitSurvey records responses to the named instrument.
func (s *Session) SubmitSurvey(name string, responses map[string]int) error {
	if s.State == nil {
		return ErrNoSession
	}
	in, err := LookupInstrument(name)
	if err != nil {
		return err
	}
	if in.AIOnly && !s.State.UsedAIMode {
		return fmt.Errorf("%s is offered only after AI mode was used", in.Name)
	}
	if err := in.Validate(responses); err != nil {
		return err
	}
	s.record(SectionSurvey, types.EventSurveyResponse, types.Payload{
		"instrument": in.Name,
		"responses":  responses,
	})
	return nil
}

// Report reads the participant's log and computes the derived metrics.
func (s *Session) Report() (types.DerivedMetrics, []types.Event, error) {
	if s.State == nil {
		return types.DerivedMetrics{}, nil, ErrNoSession
	}
	events, err := s.Events.Read(s.State.Context.ParticipantID)
	if err != nil {
		return types.DerivedMetrics{}, nil, err
	}
	return metrics.Compute(events), events, nil
}
