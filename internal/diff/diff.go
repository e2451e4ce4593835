// Package diff compares two archives line by line and renders the result
// as a unified diff.
package diff

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/hupe1980/graphyaml/internal/yamlutil"
)

// Result holds the result of a unified diff computation.
type Result struct {
	Unified        string
	HasDifferences bool
	Hunks          []string
	OldLabel       string
	NewLabel       string
	OldDocuments   int
	NewDocuments   int
}

// Options configures diff computation.
type Options struct {
	OldLabel string
	NewLabel string
	Context  int
	// Sort orders documents by their text before comparing, so archives
	// that differ only in traversal order compare equal.
	Sort bool
}

// DefaultOptions returns the default diff options.
func DefaultOptions() Options {
	return Options{
		OldLabel: "old",
		NewLabel: "new",
		Context:  3,
	}
}

// Compute computes a unified diff between two archives. Both are normalized
// first: blank documents are dropped and every document is introduced by a
// single "---" line.
func Compute(oldArchive, newArchive []byte, opts Options) (*Result, error) {
	oldDocs := yamlutil.SplitDocuments(oldArchive)
	newDocs := yamlutil.SplitDocuments(newArchive)

	if opts.Sort {
		sortDocuments(oldDocs)
		sortDocuments(newDocs)
	}

	d := difflib.UnifiedDiff{
		A:        splitLines(string(yamlutil.JoinDocuments(oldDocs))),
		B:        splitLines(string(yamlutil.JoinDocuments(newDocs))),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	}

	unified, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	hasDiff := unified != ""

	var hunks []string
	if hasDiff {
		hunks = extractHunks(unified)
	}

	return &Result{
		Unified:        unified,
		HasDifferences: hasDiff,
		Hunks:          hunks,
		OldLabel:       opts.OldLabel,
		NewLabel:       opts.NewLabel,
		OldDocuments:   len(oldDocs),
		NewDocuments:   len(newDocs),
	}, nil
}

func sortDocuments(docs [][]byte) {
	sort.SliceStable(docs, func(i, j int) bool {
		return bytes.Compare(docs[i], docs[j]) < 0
	})
}

// extractHunks splits unified diff output into individual hunks. The file
// header lines are not part of any hunk.
func extractHunks(unified string) []string {
	var hunks []string

	var current strings.Builder

	for _, line := range strings.Split(strings.TrimSuffix(unified, "\n"), "\n") {
		if strings.HasPrefix(line, "@@") && current.Len() > 0 {
			hunks = append(hunks, current.String())
			current.Reset()
		}

		if current.Len() == 0 && !strings.HasPrefix(line, "@@") {
			continue
		}

		current.WriteString(line)
		current.WriteString("\n")
	}

	if current.Len() > 0 {
		hunks = append(hunks, current.String())
	}

	return hunks
}

// Write writes a formatted diff to w with optional ANSI colors.
func Write(w io.Writer, result *Result, color bool) error {
	if !result.HasDifferences {
		_, err := fmt.Fprintln(w, "No differences found.")
		return err
	}

	for _, line := range strings.Split(strings.TrimSuffix(result.Unified, "\n"), "\n") {
		if !color {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}

			continue
		}

		if err := writeColorLine(w, line); err != nil {
			return err
		}
	}

	return nil
}

// writeColorLine writes a single diff line with ANSI color codes.
func writeColorLine(w io.Writer, line string) error {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		cyan  = "\033[36m"
		bold  = "\033[1m"
		reset = "\033[0m"
	)

	var err error

	switch {
	case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "):
		_, err = fmt.Fprintf(w, "%s%s%s\n", bold, line, reset)
	case strings.HasPrefix(line, "@@"):
		_, err = fmt.Fprintf(w, "%s%s%s\n", cyan, line, reset)
	case strings.HasPrefix(line, "-"):
		_, err = fmt.Fprintf(w, "%s%s%s\n", red, line, reset)
	case strings.HasPrefix(line, "+"):
		_, err = fmt.Fprintf(w, "%s%s%s\n", green, line, reset)
	default:
		_, err = fmt.Fprintln(w, line)
	}

	return err
}

// splitLines splits s into lines, each keeping its trailing newline as
// difflib expects.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
