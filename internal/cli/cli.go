package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/bookclub-events/internal/config"
	"github.com/pfrederiksen/bookclub-events/internal/logger"
	"github.com/pfrederiksen/bookclub-events/internal/metrics"
	"github.com/pfrederiksen/bookclub-events/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// errReported marks a failure whose message was already written for the user
var errReported = errors.New("reported")

// app holds the flags and collaborators shared by all commands of one
// invocation
type app struct {
	configPath string
	logLevel   string
	format     string
	verbose    bool

	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	cfg     config.Config
	runID   string
	log     *logger.Logger
	metrics *metrics.Recorder
	store   *storage.Storage
}

// NewRootCmd creates the root command writing to stdout and stderr
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, now: time.Now}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookclubs",
		Short: "Collect and clean book club events",
		Long: `A CLI tool to collect book club event listings and clean them into
a structured table with resolved dates, venues, books and genre tags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	cmd.PersistentFlags().StringVar(&a.format, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Include per-stage counts in text output")

	cmd.AddCommand(a.cleanCmd(), a.fetchCmd(), a.booksCmd(), a.reviewsCmd())
	return cmd
}

// setup loads configuration and builds the run logger, metrics and storage
func (a *app) setup(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(a.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", a.format)
	}
	a.format = string(format)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.runID = uuid.NewString()
	a.log = logger.New(level, a.stderr).With(logger.Fields{"run_id": a.runID})
	logger.SetDefault(a.log)
	a.metrics = metrics.New()
	a.store = storage.New()
	return nil
}

// finish writes the metrics textfile when one is configured
func (a *app) finish() error {
	if a.cfg.MetricsFile == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	a.log.Debug("Wrote metrics", logger.Fields{"path": a.cfg.MetricsFile})
	return nil
}

// missingInput reports a location that does not exist and returns
// errReported when err wraps storage.ErrMissingInput
func (a *app) missingInput(label, location string, err error) error {
	if !errors.Is(err, storage.ErrMissingInput) {
		return err
	}
	fmt.Fprintf(a.stderr, "%s not found: %s\n", label, location)
	return errReported
}

// Run executes the CLI with args and returns the process exit code
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, now: time.Now}
	return a.run(args)
}

func (a *app) run(args []string) int {
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		return ExitError
	}
	return ExitSuccess
}

// Execute runs the CLI
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
