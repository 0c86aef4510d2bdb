// Package clipdiff compares animation clips, both as canonical YAML text
// (unified diff) and as the set of blend-shape weights they hold.
package clipdiff

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Hunk is one contiguous block of a unified diff.
type Hunk struct {
	OldStart int `json:"oldStart"`
	OldLines int `json:"oldLines"`
	NewStart int `json:"newStart"`
	NewLines int `json:"newLines"`
	// Body holds the hunk's lines including the "@@" header.
	Body string `json:"body"`
}

// DiffResult holds the result of a unified diff computation.
type DiffResult struct {
	Unified        string `json:"unified,omitempty"`
	HasDifferences bool   `json:"hasDifferences"`
	Hunks          []Hunk `json:"hunks,omitempty"`
	Insertions     int    `json:"insertions"`
	Deletions      int    `json:"deletions"`
	OldLabel       string `json:"oldLabel"`
	NewLabel       string `json:"newLabel"`
}

// DiffOptions configures diff computation.
type DiffOptions struct {
	OldLabel string
	NewLabel string
	Context  int
}

// DefaultDiffOptions returns the labels used when comparing two clips
// without file names, with three lines of context.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		OldLabel: "old",
		NewLabel: "new",
		Context:  3,
	}
}

// ComputeDiff computes a unified diff between two serialized clip documents.
func ComputeDiff(oldDoc, newDoc string, opts DiffOptions) (*DiffResult, error) {
	diff := difflib.UnifiedDiff{
		A:        splitLines(oldDoc),
		B:        splitLines(newDoc),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	}

	unified, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	result := &DiffResult{
		Unified:        unified,
		HasDifferences: unified != "",
		OldLabel:       opts.OldLabel,
		NewLabel:       opts.NewLabel,
	}

	if result.HasDifferences {
		result.Hunks = parseHunks(unified)
		result.Insertions, result.Deletions = countChanges(unified)
	}

	return result, nil
}

// parseHunks splits unified diff output at its "@@" headers. The file
// header lines before the first hunk are dropped.
func parseHunks(unified string) []Hunk {
	var (
		hunks []Hunk
		body  strings.Builder
		cur   *Hunk
	)

	flush := func() {
		if cur != nil {
			cur.Body = body.String()
			hunks = append(hunks, *cur)
		}

		body.Reset()
	}

	for _, line := range strings.Split(strings.TrimSuffix(unified, "\n"), "\n") {
		if strings.HasPrefix(line, "@@") {
			flush()

			h := parseHunkHeader(line)
			cur = &h
		}

		if cur != nil {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}

	flush()

	return hunks
}

// parseHunkHeader reads "@@ -a,b +c,d @@". A missing count means one line.
func parseHunkHeader(line string) Hunk {
	var h Hunk

	for _, field := range strings.Fields(line) {
		switch {
		case strings.HasPrefix(field, "-"):
			h.OldStart, h.OldLines = parseRange(field[1:])
		case strings.HasPrefix(field, "+"):
			h.NewStart, h.NewLines = parseRange(field[1:])
		}
	}

	return h
}

func parseRange(s string) (start, count int) {
	startStr, countStr, hasCount := strings.Cut(s, ",")

	start, _ = strconv.Atoi(startStr)
	count = 1

	if hasCount {
		count, _ = strconv.Atoi(countStr)
	}

	return start, count
}

// countChanges counts added and removed lines, ignoring the file headers.
func countChanges(unified string) (insertions, deletions int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			insertions++
		case strings.HasPrefix(line, "-"):
			deletions++
		}
	}

	return insertions, deletions
}

// WriteDiff writes a formatted diff with optional ANSI colors, followed by
// a one-line change summary.
func WriteDiff(w io.Writer, result *DiffResult, color bool) {
	if !result.HasDifferences {
		_, _ = fmt.Fprintln(w, "No differences found.")
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(result.Unified, "\n"), "\n") {
		if color {
			writeColorLine(w, line)
		} else {
			_, _ = fmt.Fprintln(w, line)
		}
	}

	_, _ = fmt.Fprintf(w, "%d hunk(s), %d insertion(s)(+), %d deletion(s)(-)\n",
		len(result.Hunks), result.Insertions, result.Deletions)
}

// writeColorLine writes a single diff line with ANSI color codes.
func writeColorLine(w io.Writer, line string) {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		cyan  = "\033[36m"
		bold  = "\033[1m"
		reset = "\033[0m"
	)

	var prefix string

	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		prefix = bold
	case strings.HasPrefix(line, "@@"):
		prefix = cyan
	case strings.HasPrefix(line, "-"):
		prefix = red
	case strings.HasPrefix(line, "+"):
		prefix = green
	default:
		_, _ = fmt.Fprintln(w, line)
		return
	}

	_, _ = fmt.Fprintf(w, "%s%s%s\n", prefix, line, reset)
}

// splitLines splits a document into lines that keep their trailing
// newline, as difflib expects.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}

	return strings.SplitAfter(s, "\n")
}
