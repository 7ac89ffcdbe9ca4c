// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report is the user-visible status channel of the pipeline steps.
// Steps never print directly; they report success, progress, warnings, and
// errors through a Reporter.
package report

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/pdiddy/graphrag-console/internal/api"
)

// Reporter receives user-facing status messages.
type Reporter interface {
	Success(msg string)
	Info(msg string)
	Warn(msg string)
	Error(err error)
}

// Message renders err as shown to the user. API failures use their status
// and body ("Error: 404", "Error: 500 boom"); anything else is
// "Error: <message>".
func Message(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return fmt.Sprintf("Error: %v", err)
}

// Terminal writes colored messages to a writer.
type Terminal struct {
	w       io.Writer
	success *color.Color
	info    *color.Color
	warn    *color.Color
	err     *color.Color
}

// NewTerminal returns a Terminal writing to w. Colors follow fatih/color's
// detection and can be forced off with noColor.
func NewTerminal(w io.Writer, noColor bool) *Terminal {
	t := &Terminal{
		w:       w,
		success: color.New(color.FgGreen),
		info:    color.New(color.FgCyan),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{t.success, t.info, t.warn, t.err} {
			c.DisableColor()
		}
	}
	return t
}

func (t *Terminal) Success(msg string) { t.success.Fprintln(t.w, msg) }
func (t *Terminal) Info(msg string)    { t.info.Fprintln(t.w, msg) }
func (t *Terminal) Warn(msg string)    { t.warn.Fprintln(t.w, "Warning: "+msg) }
func (t *Terminal) Error(err error)    { t.err.Fprintln(t.w, Message(err)) }

// Level tags a recorded message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
)

// Entry is one recorded message.
type Entry struct {
	Level Level
	Text  string
}

// Recorder keeps every message in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) add(l Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: l, Text: text})
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }
func (r *Recorder) Warn(msg string)    { r.add(LevelWarn, msg) }
func (r *Recorder) Error(err error)    { r.add(LevelError, Message(err)) }

// Entries returns a copy of the recorded messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns the text of every entry at level l.
func (r *Recorder) Messages(l Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == l {
			out = append(out, e.Text)
		}
	}
	return out
}
