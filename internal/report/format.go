// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/graphrag-console/pkg/types"
)

// FormatList writes names as a numbered table under heading. The empty
// placeholder option is skipped.
func FormatList(w io.Writer, heading string, names []string) {
	var rows []string
	for _, n := range names {
		if n != "" {
			rows = append(rows, n)
		}
	}
	if len(rows) == 0 {
		fmt.Fprintf(w, "No %s found.\n", strings.ToLower(heading))
		return
	}

	fmt.Fprintf(w, "%-4s  %s\n", "#", heading)
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for i, n := range rows {
		fmt.Fprintf(w, "%-4d  %s\n", i+1, n)
	}
}

// FormatJSON writes v as indented JSON.
func FormatJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatQuery writes the answer text followed by the context data, if any.
func FormatQuery(w io.Writer, resp *types.QueryResponse) error {
	fmt.Fprintln(w, resp.Result)
	if len(resp.ContextData) == 0 || string(resp.ContextData) == "null" {
		return nil
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Context data:")
	var v any
	if err := json.Unmarshal(resp.ContextData, &v); err != nil {
		return fmt.Errorf("decoding context data: %w", err)
	}
	return FormatJSON(w, v)
}

// SessionRow is one line of the session table.
type SessionRow struct {
	ID         string
	IndexName  string
	HasPrompts bool
	UpdatedAt  time.Time
}

// FormatSessions writes sessions as a table.
func FormatSessions(w io.Writer, rows []SessionRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No sessions.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-24s  %-7s  %s\n", "Session", "Index", "Prompts", "Updated")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, r := range rows {
		prompts := "no"
		if r.HasPrompts {
			prompts = "yes"
		}
		updated := ""
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%-36s  %-24s  %-7s  %s\n", truncate(r.ID, 36), truncate(r.IndexName, 24), prompts, updated)
	}
	fmt.Fprintf(w, "\n%d sessions\n", len(rows))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
