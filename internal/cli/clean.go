package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bookclub-events/internal/calendar"
	"github.com/pfrederiksen/bookclub-events/internal/clean"
	"github.com/pfrederiksen/bookclub-events/internal/logger"
)

// CalendarName is the X-WR-CALNAME of exported calendars
const CalendarName = "Book Club Events"

type cleanFlags struct {
	raw            string
	out            string
	ics            string
	bookExtraction bool
	tagging        bool
}

func (a *app) cleanCmd() *cobra.Command {
	var f cleanFlags
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean raw events into the processed table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("raw") {
				a.cfg.RawPath = f.raw
			}
			if cmd.Flags().Changed("out") {
				a.cfg.CleanPath = f.out
			}
			if cmd.Flags().Changed("book-extraction") {
				a.cfg.Stages.BookExtraction = f.bookExtraction
			}
			if cmd.Flags().Changed("tagging") {
				a.cfg.Stages.Tagging = f.tagging
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runClean(cmd.Context(), f.ics)
		},
	}

	cmd.Flags().StringVar(&f.raw, "raw", "", "Raw events location (overrides config)")
	cmd.Flags().StringVar(&f.out, "out", "", "Cleaned events location (overrides config)")
	cmd.Flags().StringVar(&f.ics, "ics", "", "Also write events with a resolved start to this iCalendar file")
	cmd.Flags().BoolVar(&f.bookExtraction, "book-extraction", true, "Add book_title and book_author columns")
	cmd.Flags().BoolVar(&f.tagging, "tagging", true, "Add the tags column")
	return cmd
}

func (a *app) runClean(ctx context.Context, icsPath string) error {
	cfg := a.cfg

	raw, err := a.store.LoadBatch(ctx, cfg.RawPath)
	if err != nil {
		return a.missingInput("Raw input", cfg.RawPath, err)
	}
	a.log.Info("Loaded raw events", logger.Fields{"path": cfg.RawPath, "records": raw.Len()})

	opts := clean.DefaultOptions()
	opts.BookExtraction = cfg.Stages.BookExtraction
	opts.Tagging = cfg.Stages.Tagging
	opts.Now = a.now
	opts.Metrics = a.metrics
	opts.Logger = a.log
	cleaned, report := clean.Run(raw, opts)

	if err := a.store.SaveBatch(ctx, cfg.CleanPath, cleaned); err != nil {
		return fmt.Errorf("saving cleaned events: %w", err)
	}
	a.log.Info("Cleaned events", logger.Fields{
		"path":        cfg.CleanPath,
		"records_in":  report.RecordsIn,
		"records_out": report.RecordsOut,
	})

	result := &CleanResult{
		RunID:      a.runID,
		FinishedAt: a.now().UTC(),
		Input:      cfg.RawPath,
		Output:     cfg.CleanPath,
		Report:     report,
	}

	if icsPath != "" {
		doc, n := calendar.GenerateBulkICS(cleaned.Records, CalendarName, a.now())
		if err := a.store.Write(ctx, icsPath, []byte(doc)); err != nil {
			return fmt.Errorf("writing calendar: %w", err)
		}
		a.log.Info("Wrote calendar", logger.Fields{"path": icsPath, "events": n})
		result.Calendar = icsPath
		result.CalendarEvents = n
	}

	if err := a.finish(); err != nil {
		return err
	}
	return WriteOutput(a.stdout, result, OutputFormat(a.format), a.verbose)
}
