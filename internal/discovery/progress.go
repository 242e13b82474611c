// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discovery

import (
	"fmt"
	"io"
	"sync"
)

// Stage numbers a pipeline step. StageDone marks the final summary.
type Stage int

const (
	StageExtract Stage = iota + 1
	StageCollect
	StageDeduplicate
	StageFilter
	StageDone
)

// stageCount is the number of working stages shown in "Step n/4" labels.
const stageCount = 4

// titleDisplayMax truncates titles in per-paper progress lines.
const titleDisplayMax = 80

// Progress is one observable pipeline step. Index and Total are set for
// per-paper relevance updates; Index counts completed evaluations from 0.
type Progress struct {
	Stage   Stage
	Message string

	Index   int
	Total   int
	Title   string
	Keep    bool
	Verdict string
}

// Fraction is the share of relevance evaluations completed, or 0 outside
// stage 4.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Index+1) / float64(p.Total)
}

// ProgressSink observes pipeline progress. Report is called from one
// goroutine at a time, in order.
type ProgressSink interface {
	Report(Progress)
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Progress)

// Report calls f.
func (f SinkFunc) Report(p Progress) { f(p) }

// NopSink discards progress.
type NopSink struct{}

// Report does nothing.
func (NopSink) Report(Progress) {}

// WriterSink prints each message as a line to W.
type WriterSink struct {
	W io.Writer
}

// Report writes the message line.
func (s WriterSink) Report(p Progress) {
	fmt.Fprintln(s.W, p.Message)
}

// ChannelSink forwards progress to a channel. The receiver must drain the
// channel until the run returns.
type ChannelSink struct {
	C chan<- Progress
}

// Report sends p on the channel.
func (s ChannelSink) Report(p Progress) { s.C <- p }

// MemorySink collects progress in memory. It is safe for concurrent use.
type MemorySink struct {
	mu     sync.Mutex
	events []Progress
}

// Report appends p.
func (r *MemorySink) Report(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
}

// Events returns a copy of the recorded progress.
func (r *MemorySink) Events() []Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Progress(nil), r.events...)
}

func stepLabel(s Stage, msg string) string {
	return fmt.Sprintf("Step %d/%d - %s", s, stageCount, msg)
}

func shortTitle(title string) string {
	r := []rune(title)
	if len(r) > titleDisplayMax {
		return string(r[:titleDisplayMax]) + "..."
	}
	return title
}
