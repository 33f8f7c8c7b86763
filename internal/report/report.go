// Package report renders run results for the console. Both dry runs and
// real runs share the same layout; dry runs add a "DRY-RUN:" header and a
// trailing notes block.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/kkkkikiki/shiftsweep/internal/engine"
)

var notes = []string{
	"Notes:",
	"- 'Skipped' looks only at the 'expires' field (missing, empty, or 'Unknown').",
	"- 'Unparsable' means the 'expires' field could not be parsed as an ISO or common date format.",
}

// Header describes the run being reported.
type Header struct {
	RefISO    string
	RefPretty string
	DryRun    bool
}

func (h Header) lines() []string {
	var out []string
	if h.DryRun {
		out = append(out, "DRY-RUN:")
	}
	out = append(out, fmt.Sprintf("Date & Time (ISO): %s | %s", h.RefISO, h.RefPretty))
	return out
}

// separator sizes the divider to the longest line it will sit between.
func separator(lines []string) string {
	longest := 8
	for _, s := range lines {
		if len(s) > longest {
			longest = len(s)
		}
	}
	return strings.Repeat("-", longest)
}

func summaryLines(stats engine.Stats) []string {
	out := []string{
		fmt.Sprintf("Scanned: %d", stats.Scanned),
		fmt.Sprintf("Set expired: %d", stats.SetExpired),
		fmt.Sprintf("Set expires field: %d", stats.SetExpires),
		fmt.Sprintf("Skipped (expires missing/empty or 'Unknown'): %d", stats.SkippedUnknown),
		fmt.Sprintf("Unparsable (invalid 'expires' timestamp): %d", stats.Unparsable),
	}
	if stats.UpdatedExpiresOnly > 0 {
		out = append(out, fmt.Sprintf("Updated expires only: %d", stats.UpdatedExpiresOnly))
	}
	return out
}

func printBlocks(w io.Writer, perCode []string, sep string) {
	fmt.Fprintln(w, sep)
	if len(perCode) == 0 {
		return
	}
	for i := 0; i < len(perCode); i += 3 {
		end := i + 3
		if end > len(perCode) {
			end = len(perCode)
		}
		for _, line := range perCode[i:end] {
			fmt.Fprintln(w, line)
		}
		if end < len(perCode) {
			fmt.Fprintln(w, sep)
		}
	}
	fmt.Fprintln(w, sep)
}

// Bulk writes the whole-collection sweep report.
func Bulk(w io.Writer, hdr Header, details []engine.RecordReport, stats engine.Stats) {
	var perCode []string
	for _, d := range details {
		perCode = append(perCode,
			fmt.Sprintf("Code: %s", d.Code),
			fmt.Sprintf("Expires: %s", d.ExpiresDisplay),
			fmt.Sprintf("Will Set Expired: %s", d.WillSet))
	}

	summary := summaryLines(stats)
	basis := append(append(hdr.lines(), perCode...), summary...)
	if hdr.DryRun {
		basis = append(basis, notes...)
	}
	sep := separator(basis)

	for _, line := range hdr.lines() {
		fmt.Fprintln(w, line)
	}
	printBlocks(w, perCode, sep)
	for _, line := range summary {
		fmt.Fprintln(w, line)
	}
	if hdr.DryRun {
		fmt.Fprintln(w, sep)
		for _, line := range notes {
			fmt.Fprintln(w, line)
		}
	}
}

// Targeted writes the targeted-update report. With forcedExpires the new
// stamp supplied by the caller is shown; otherwise the reference instant
// being written is shown as an ISO | civil pair.
func Targeted(w io.Writer, hdr Header, details []engine.RecordReport, stats engine.Stats, forcedExpires bool, unmatched []string) {
	var perCode []string
	for _, d := range details {
		exp := d.NewExpiresDisplay
		if !forcedExpires {
			exp = fmt.Sprintf("%s | %s", hdr.RefISO, hdr.RefPretty)
		}
		perCode = append(perCode,
			fmt.Sprintf("Code: %s", d.Code),
			fmt.Sprintf("Expires: %s", exp),
			fmt.Sprintf("Will Set Expired: %s", d.WillSet))
	}

	var unmatchedLines []string
	for _, code := range unmatched {
		unmatchedLines = append(unmatchedLines, fmt.Sprintf("No matches found for %s", code))
	}

	summary := summaryLines(stats)
	basis := append(append(append(hdr.lines(), perCode...), summary...), unmatchedLines...)
	if hdr.DryRun {
		basis = append(basis, notes...)
	}
	sep := separator(basis)

	for _, line := range hdr.lines() {
		fmt.Fprintln(w, line)
	}
	printBlocks(w, perCode, sep)
	for _, line := range summary {
		fmt.Fprintln(w, line)
	}
	if hdr.DryRun {
		fmt.Fprintln(w, sep)
		for _, line := range notes {
			fmt.Fprintln(w, line)
		}
	}
	if len(unmatchedLines) > 0 {
		fmt.Fprintln(w, sep)
		for _, line := range unmatchedLines {
			fmt.Fprintln(w, line)
		}
	}
}
