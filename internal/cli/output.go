package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/bookclub-events/internal/clean"
	"github.com/pfrederiksen/bookclub-events/internal/source"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Summary is the result of one command
type Summary interface {
	writeText(w io.Writer, verbose bool) error
}

// CleanResult summarizes a clean run
type CleanResult struct {
	RunID          string       `json:"run_id"`
	FinishedAt     time.Time    `json:"finished_at"`
	Input          string       `json:"input"`
	Output         string       `json:"output"`
	Calendar       string       `json:"calendar,omitempty"`
	CalendarEvents int          `json:"calendar_events,omitempty"`
	Report         clean.Report `json:"report"`
}

// FetchResult summarizes a fetch run
type FetchResult struct {
	RunID      string    `json:"run_id"`
	FinishedAt time.Time `json:"finished_at"`
	Output     string    `json:"output"`
	Saved      int       `json:"saved"`
	source.Result
}

// ConvertResult summarizes a books or reviews conversion
type ConvertResult struct {
	RunID      string    `json:"run_id"`
	FinishedAt time.Time `json:"finished_at"`
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	Noun       string    `json:"kind"`
	Written    int       `json:"written"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result Summary, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return result.writeText(w, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func (r *CleanResult) writeText(w io.Writer, verbose bool) error {
	fmt.Fprintf(w, "Cleaned %d events -> %s\n", r.Report.RecordsOut, r.Output)
	if r.Calendar != "" {
		fmt.Fprintf(w, "Exported %d events with a start time -> %s\n", r.CalendarEvents, r.Calendar)
	}
	if !verbose {
		return nil
	}

	fmt.Fprintf(w, "\nRecords in: %d\n", r.Report.RecordsIn)
	writeCounts(w, "Dropped", r.Report.Dropped)
	writeCounts(w, "Unresolved", r.Report.Unresolved)
	writeCounts(w, "Book rules", r.Report.Rules)
	writeCounts(w, "Tags", r.Report.Tags)
	return nil
}

func (r *FetchResult) writeText(w io.Writer, verbose bool) error {
	fmt.Fprintf(w, "Saved %d book club events to %s\n", r.Saved, r.Output)
	fmt.Fprintf(w, "SerpAPI requests used: %d\n", r.Requests)
	if verbose {
		fmt.Fprintf(w, "\nEvents returned: %d\nDuplicate links: %d\n", r.Events, r.Duplicates)
	}
	return nil
}

func (r *ConvertResult) writeText(w io.Writer, verbose bool) error {
	fmt.Fprintf(w, "Wrote %d %s -> %s\n", r.Written, r.Noun, r.Output)
	return nil
}

// writeCounts prints a labelled breakdown, largest first
func writeCounts(w io.Writer, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", label)
	for _, c := range sortCounts(counts) {
		fmt.Fprintf(w, "  %-24s %d\n", c.Name, c.Count)
	}
}
