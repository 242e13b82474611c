// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eventlog records participant interaction events as JSON Lines,
// one file per participant, and reads them back in append order.
package eventlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/litreview-study/internal/logging"
	"github.com/pdiddy/litreview-study/pkg/types"
)

const logExt = ".jsonl"

// maxLineBytes bounds one serialized event when reading.
const maxLineBytes = 4 << 20

// ErrNoParticipant is returned by Write when the session has no participant
// identity yet. Append treats it as a silent no-op.
var ErrNoParticipant = errors.New("no participant identity established")

// ErrInvalidParticipant is returned for ids that cannot name a log file.
var ErrInvalidParticipant = errors.New("participant ID may not contain path separators, ':' or '..'")

// Recorder is the append side of Log, taken by components that emit events.
type Recorder interface {
	Append(sc types.SessionContext, eventType types.EventType, payload any)
}

// Log is an append-only, participant-scoped event store rooted at a
// directory. It is safe for concurrent use within one process.
type Log struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger

	mu sync.Mutex
}

// Option configures a Log.
type Option func(*Log)

// WithClock replaces the wall clock used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithLogger sets the logger that receives best-effort append failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) { l.logger = logging.OrDiscard(logger) }
}

// New returns a Log writing under cfg.Dir. The directory is created on
// first write, not here.
func New(cfg types.EventLogConfig, opts ...Option) *Log {
	dir := cfg.Dir
	if dir == "" {
		dir = "logs"
	}
	l := &Log{
		dir:    dir,
		now:    time.Now,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the directory holding the participant logs.
func (l *Log) Dir() string { return l.dir }

// Path returns the log file for participantID.
func (l *Log) Path(participantID string) string {
	return filepath.Join(l.dir, sanitizeID(participantID)+logExt)
}

// Append records one event for the session's participant. It never fails:
// a missing identity is skipped silently and storage errors are logged and
// dropped, so logging cannot block the caller.
func (l *Log) Append(sc types.SessionContext, eventType types.EventType, payload any) {
	if _, err := l.Write(sc, eventType, payload); err != nil {
		if errors.Is(err, ErrNoParticipant) {
			return
		}
		l.logger.Warn("event log append failed",
			slog.String("participant_id", sc.ParticipantID),
			slog.String("event_type", string(eventType)),
			slog.Any("error", err))
	}
}

// Write is the strict form of Append: it returns the stored event or the
// reason it could not be stored.
func (l *Log) Write(sc types.SessionContext, eventType types.EventType, payload any) (types.Event, error) {
	if !sc.Identified() {
		return types.Event{}, ErrNoParticipant
	}
	if err := ValidateParticipantID(sc.ParticipantID); err != nil {
		return types.Event{}, err
	}

	value, err := encodePayload(payload)
	if err != nil {
		return types.Event{}, fmt.Errorf("encoding %s payload: %w", eventType, err)
	}

	section := sc.Section
	if section == "" {
		section = types.DefaultSection
	}
	cond := sc.Condition
	if cond == "" {
		cond = types.ConditionManual
	}

	ev := types.Event{
		ParticipantID:   sc.ParticipantID,
		ParticipantName: sc.ParticipantName,
		Condition:       cond,
		TaskID:          sc.TaskID,
		Section:         section,
		EventType:       eventType,
		EventValue:      value,
		Timestamp:       l.now().UTC(),
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return types.Event{}, fmt.Errorf("marshaling event: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return types.Event{}, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(l.Path(sc.ParticipantID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return types.Event{}, fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	// One write call per line keeps appends atomic on O_APPEND files.
	if _, err := f.Write(line); err != nil {
		return types.Event{}, fmt.Errorf("writing log: %w", err)
	}
	return ev, nil
}

// Read returns the participant's full history in file order. A missing log
// yields an empty slice. Lines that fail to decode (for example a torn final
// write) are skipped with a warning.
func (l *Log) Read(participantID string) ([]types.Event, error) {
	f, err := os.Open(l.Path(participantID))
	if err != nil {
		if os.IsNotExist(err) {
			return []types.Event{}, nil
		}
		return nil, fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	events := []types.Event{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ev types.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			l.logger.Warn("skipping malformed event line",
				slog.String("participant_id", participantID),
				slog.Int("line", lineNo),
				slog.Any("error", err))
			continue
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return events, nil
}

// Participants lists the ids that have a log file, sorted.
func (l *Log) Participants() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading log directory %s: %w", l.dir, err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), logExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), logExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// encodePayload serializes an event_value. Nil becomes an empty object.
func encodePayload(payload any) (json.RawMessage, error) {
	switch v := payload.(type) {
	case nil:
		return json.RawMessage(`{}`), nil
	case json.RawMessage:
		if len(v) == 0 {
			return json.RawMessage(`{}`), nil
		}
		if !json.Valid(v) {
			return nil, fmt.Errorf("invalid raw JSON payload")
		}
		return v, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return json.RawMessage(`{}`), nil
	}
	return data, nil
}

// ValidateParticipantID rejects ids that Path would have to rewrite, so two
// participants never share a log file.
func ValidateParticipantID(id string) error {
	if sanitizeID(id) != id {
		return fmt.Errorf("%w: %q", ErrInvalidParticipant, id)
	}
	return nil
}

// sanitizeID keeps participant ids from escaping the log directory.
func sanitizeID(id string) string {
	id = strings.TrimSpace(id)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, strings.ReplaceAll(id, "..", "_"))
}
