// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eventlog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview-study/pkg/types"
)

// stepClock returns a clock that advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	t := start.Add(-step)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func testSession() types.SessionContext {
	return types.SessionContext{
		ParticipantID:   "p01",
		ParticipantName: "Ada",
		Condition:       types.ConditionAI,
		TaskID:          "T1 (Targeted Literature Search)",
		Section:         "Search Online",
	}
}

func TestAppendAndRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	log := New(types.EventLogConfig{Dir: dir}, WithClock(stepClock(start, time.Second)))

	sc := testSession()
	log.Append(sc, types.EventTaskStart, types.Payload{"task_name": "T1"})
	log.Append(sc, types.EventSearchQuery, types.Payload{"query_text": "vision transformers", "query_length": 19})
	log.Append(sc.WithSection(""), types.EventPaperOpen, nil)

	events, err := log.Read("p01")
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, types.EventTaskStart, events[0].EventType)
	assert.Equal(t, types.EventSearchQuery, events[1].EventType)
	assert.Equal(t, types.EventPaperOpen, events[2].EventType)

	assert.Equal(t, "p01", events[0].ParticipantID)
	assert.Equal(t, "Ada", events[0].ParticipantName)
	assert.Equal(t, types.ConditionAI, events[0].Condition)
	assert.Equal(t, "Search Online", events[0].Section)
	assert.Equal(t, types.DefaultSection, events[2].Section, "empty section defaults to Home")
	assert.JSONEq(t, `{}`, string(events[2].EventValue), "nil payload is stored as an empty object")

	q, ok := events[1].StringField("query_text")
	assert.True(t, ok)
	assert.Equal(t, "vision transformers", q)

	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp), "timestamps must be non-decreasing")
	}
	assert.Equal(t, start, events[0].Timestamp)
}

func TestAppendWithoutParticipantIsNoOp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	log := New(types.EventLogConfig{Dir: dir})

	log.Append(types.SessionContext{}, types.EventSearchQuery, types.Payload{"query_text": "x"})

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "no storage should be created without an identity")

	_, err = log.Write(types.SessionContext{ParticipantID: "  "}, types.EventSearchQuery, nil)
	assert.ErrorIs(t, err, ErrNoParticipant)
}

func TestAppendUnwritableStorageDoesNotPanic(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// The log directory path runs through a regular file, so MkdirAll fails.
	log := New(types.EventLogConfig{Dir: filepath.Join(blocker, "logs")})
	log.Append(testSession(), types.EventTaskStart, nil)

	_, err := log.Write(testSession(), types.EventTaskStart, nil)
	assert.Error(t, err)
}

func TestReadMissingLogIsEmpty(t *testing.T) {
	log := New(types.EventLogConfig{Dir: t.TempDir()})
	events, err := log.Read("nobody")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestReadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	log := New(types.EventLogConfig{Dir: dir})
	log.Append(testSession(), types.EventTaskStart, nil)

	f, err := os.OpenFile(log.Path("p01"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("\n{\"participant_id\": \"p01\", \"event_ty")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, err := log.Read("p01")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestLogFileIsJSONLines(t *testing.T) {
	dir := t.TempDir()
	log := New(types.EventLogConfig{Dir: dir})
	log.Append(testSession(), types.EventAICall, types.Payload{"feature": "qa"})
	log.Append(testSession(), types.EventAIOutputGenerated, types.Payload{"feature": "qa", "output_length": 120})

	data, err := os.ReadFile(filepath.Join(dir, "p01.jsonl"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var obj map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &obj))
		for _, key := range []string{"participant_id", "participant_name", "condition", "task_id", "section", "event_type", "event_value", "timestamp"} {
			assert.Contains(t, obj, key)
		}
	}
}

func TestPathSanitizesParticipantID(t *testing.T) {
	log := New(types.EventLogConfig{Dir: "logs"})
	p := log.Path("../../etc/passwd")
	assert.Equal(t, "logs", filepath.Dir(p))
}

func TestWriteRejectsIDsThatWouldShareALog(t *testing.T) {
	dir := t.TempDir()
	log := New(types.EventLogConfig{Dir: dir})

	for _, id := range []string{"a/b", `a\b`, "a:b", "..", "x..y"} {
		sc := testSession()
		sc.ParticipantID = id
		_, err := log.Write(sc, types.EventTaskStart, nil)
		assert.ErrorIs(t, err, ErrInvalidParticipant, id)
		log.Append(sc, types.EventTaskStart, nil)
	}

	sc := testSession()
	sc.ParticipantID = "a_b"
	_, err := log.Write(sc, types.EventTaskStart, nil)
	require.NoError(t, err)

	ids, err := log.Participants()
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b"}, ids)
	evs, err := log.Read("a_b")
	require.NoError(t, err)
	assert.Len(t, evs, 1)
}

func TestParticipants(t *testing.T) {
	dir := t.TempDir()
	log := New(types.EventLogConfig{Dir: dir})
	for _, id := range []string{"p02", "p01"} {
		sc := testSession()
		sc.ParticipantID = id
		log.Append(sc, types.EventTaskStart, nil)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	ids, err := log.Participants()
	require.NoError(t, err)
	assert.Equal(t, []string{"p01", "p02"}, ids)
}

func TestWriteCSV(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	events := []types.Event{
		{
			ParticipantID: "p01", ParticipantName: "Ada", Condition: types.ConditionManual,
			TaskID: "T1", EventType: types.EventSearchQuery,
			EventValue: json.RawMessage(`{"query_text":"a, b"}`), Timestamp: ts,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, events))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "A (Manual model)", rows[1][2])
	assert.JSONEq(t, `{"query_text":"a, b"}`, rows[1][5])
	assert.Equal(t, "2026-03-01T09:00:00Z", rows[1][6])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestNewParticipantID(t *testing.T) {
	a, b := NewParticipantID(), NewParticipantID()
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b)
}
