package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bookclub-events/internal/logger"
	"github.com/pfrederiksen/bookclub-events/internal/source"
)

type fetchFlags struct {
	out         string
	queries     []string
	location    string
	maxRequests int
}

func (a *app) fetchCmd() *cobra.Command {
	var f fetchFlags
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch raw book club events from SerpAPI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("out") {
				a.cfg.RawPath = f.out
			}
			if cmd.Flags().Changed("query") {
				a.cfg.Fetch.Queries = f.queries
			}
			if cmd.Flags().Changed("location") {
				a.cfg.Fetch.Location = f.location
			}
			if cmd.Flags().Changed("max-requests") {
				a.cfg.Fetch.MaxRequests = f.maxRequests
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.runFetch(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&f.out, "out", "", "Raw events location (overrides config)")
	cmd.Flags().StringArrayVar(&f.queries, "query", nil, "Search query, repeatable (overrides config)")
	cmd.Flags().StringVar(&f.location, "location", "", "Search location (overrides config)")
	cmd.Flags().IntVar(&f.maxRequests, "max-requests", 0, "Cap on SerpAPI requests (overrides config)")
	return cmd
}

func (a *app) runFetch(ctx context.Context) error {
	cfg := a.cfg

	client, err := source.New(cfg.Fetch, source.WithMetrics(a.metrics), source.WithLogger(a.log))
	if errors.Is(err, source.ErrMissingAPIKey) {
		fmt.Fprintln(a.stderr, "Missing SerpAPI key. Set env var SERPAPI_API_KEY.")
		return errReported
	}
	if err != nil {
		return err
	}

	b, res, err := client.Fetch(ctx, cfg.Fetch.Queries)
	if err != nil {
		return fmt.Errorf("fetching events: %w", err)
	}
	if err := a.store.SaveBatch(ctx, cfg.RawPath, b); err != nil {
		return fmt.Errorf("saving raw events: %w", err)
	}
	a.log.Info("Fetched events", logger.Fields{
		"path":       cfg.RawPath,
		"events":     b.Len(),
		"requests":   res.Requests,
		"duplicates": res.Duplicates,
	})

	if err := a.finish(); err != nil {
		return err
	}
	return WriteOutput(a.stdout, &FetchResult{
		RunID:      a.runID,
		FinishedAt: a.now().UTC(),
		Output:     cfg.RawPath,
		Saved:      b.Len(),
		Result:     res,
	}, OutputFormat(a.format), a.verbose)
}
