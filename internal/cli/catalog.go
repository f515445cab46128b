package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bookclub-events/internal/catalog"
	"github.com/pfrederiksen/bookclub-events/internal/logger"
)

func (a *app) booksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "books INPUT.jsonl OUTPUT.csv",
		Short: "Convert book metadata JSON Lines to CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd.Context(), "books", args[0], args[1], catalog.ConvertBooks)
		},
	}
}

func (a *app) reviewsCmd() *cobra.Command {
	var minRating float64
	cmd := &cobra.Command{
		Use:   "reviews INPUT.jsonl OUTPUT.csv",
		Short: "Group well rated reviews by user into CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			convert := func(r io.Reader, w io.Writer) (int, error) {
				return catalog.ConvertReviews(r, w, minRating)
			}
			return a.runConvert(cmd.Context(), "users", args[0], args[1], convert)
		},
	}
	cmd.Flags().Float64Var(&minRating, "min-rating", catalog.DefaultMinRating, "Lowest rating a review needs to count")
	return cmd
}

// runConvert reads input, converts it and writes the result to output in one
// write
func (a *app) runConvert(ctx context.Context, noun, input, output string, convert func(io.Reader, io.Writer) (int, error)) error {
	data, err := a.store.Read(ctx, input)
	if err != nil {
		return a.missingInput("Input", input, err)
	}

	var buf bytes.Buffer
	n, err := convert(bytes.NewReader(data), &buf)
	if err != nil {
		return fmt.Errorf("converting %s: %w", input, err)
	}
	if err := a.store.Write(ctx, output, buf.Bytes()); err != nil {
		return err
	}
	a.log.Info("Converted catalog", logger.Fields{"input": input, "output": output, noun: n})

	if err := a.finish(); err != nil {
		return err
	}
	return WriteOutput(a.stdout, &ConvertResult{
		RunID:      a.runID,
		FinishedAt: a.now().UTC(),
		Input:      input,
		Output:     output,
		Noun:       noun,
		Written:    n,
	}, OutputFormat(a.format), a.verbose)
}
