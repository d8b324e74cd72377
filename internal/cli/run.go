package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/turtleshot"
	"github.com/aretw0/turtleshot/internal/config"
	"github.com/aretw0/turtleshot/internal/presentation/tui"
	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/metrics"
	"github.com/aretw0/turtleshot/pkg/ports"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Config config.Config

	// Stdout receives the status line and summary.
	Stdout io.Writer
	// Exit is called on a fatal double failure. Nil means os.Exit.
	Exit func(int)
	// Quiet suppresses the status line.
	Quiet bool
}

// Execute performs one run and returns the process exit status.
//
// The error is non-nil only when the run could not be set up at all
// (invalid settings, unusable ledger); run failures are reported through the
// status and the artifacts.
func Execute(ctx context.Context, opts RunOptions) (int, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return domain.ExitFailure, err
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}

	logger, err := createLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return domain.ExitFailure, err
	}

	ledger, closeLedger, err := OpenLedger(cfg, logger)
	if err != nil {
		return domain.ExitFailure, err
	}
	defer closeLedger()

	recorder := metrics.New()
	pipeline := turtleshot.New(
		turtleshot.WithLogger(logger),
		turtleshot.WithLedger(ledger),
		turtleshot.WithLifecycleHooks(domain.ChainHooks(recorder.Hooks(), createDebugHooks(logger))),
		turtleshot.WithExit(opts.Exit),
	)

	res, runErr := pipeline.Execute(ctx, cfg.Request())
	if res == nil {
		return domain.ExitFailure, runErr
	}
	if runErr != nil {
		logger.Error("run failed", "run_id", res.ID, "err", runErr)
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteFile(cfg.MetricsFile); err != nil {
			logger.Warn("metrics not written", "err", err)
		}
	}

	output := res.Output(cfg.Combined)
	if !opts.Quiet {
		tui.PrintStatus(opts.Stdout, res.Outcome, res.Details, output)
	}
	if cfg.Summary {
		printSummary(opts.Stdout, res.ID, res.Outcome, res.Details, output)
	}
	return res.Status, nil
}

// ShowRun prints the record of one run from the configured ledger.
func ShowRun(ctx context.Context, w io.Writer, cfg config.Config, id string) error {
	ledger, closeLedger, err := openRequiredLedger(cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	rec, err := ledger.Load(ctx, id)
	if errors.Is(err, domain.ErrRunNotFound) {
		return fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return err
	}
	printSummary(w, rec.ID, rec.Outcome, rec.Details, rec.Output)
	return nil
}

// ListRuns prints the IDs of recorded runs, optionally filtered by tag.
func ListRuns(ctx context.Context, w io.Writer, cfg config.Config, tag string) error {
	ledger, closeLedger, err := openRequiredLedger(cfg)
	if err != nil {
		return err
	}
	defer closeLedger()

	ids, err := ledger.List(ctx, tag)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}

func openRequiredLedger(cfg config.Config) (ports.RunLedger, func(), error) {
	if cfg.Ledger == "" {
		return nil, func() {}, errors.New("no ledger configured (use --ledger or the ledger config key)")
	}
	logger, err := createLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, func() {}, err
	}
	return OpenLedger(cfg, logger)
}
