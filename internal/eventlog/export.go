// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eventlog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/litreview-study/pkg/types"
)

// csvHeader is the column order of the CSV export.
var csvHeader = []string{
	"participant_id", "participant_name", "condition", "task_id",
	"event_type", "event_value", "timestamp",
}

// WriteCSV writes events as CSV with event_value serialized as a JSON string.
// An empty event list writes nothing, not even the header.
func WriteCSV(w io.Writer, events []types.Event) error {
	if len(events) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, ev := range events {
		value := string(ev.EventValue)
		if value == "" {
			value = "{}"
		}
		row := []string{
			ev.ParticipantID,
			ev.ParticipantName,
			string(ev.Condition),
			ev.TaskID,
			string(ev.EventType),
			value,
			ev.Timestamp.UTC().Format(time.RFC3339Nano),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes events as an indented JSON array.
func WriteJSON(w io.Writer, events []types.Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}

// NewParticipantID returns a short, human-friendly random id (8 hex chars).
func NewParticipantID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
