package turtleshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/finalize"
	"github.com/aretw0/turtleshot/pkg/logo"
	"github.com/aretw0/turtleshot/pkg/ports"
	"github.com/aretw0/turtleshot/pkg/runner"
	"github.com/aretw0/turtleshot/pkg/transcript"
	"github.com/aretw0/turtleshot/pkg/turtle"
	"github.com/google/uuid"
)

// Request describes one run.
type Request struct {
	// Source is the program text. It is ignored when SourcePath is set.
	Source string
	// SourcePath names a file to read the program from.
	SourcePath string

	// OutputPrefix is the path all artifacts are derived from.
	OutputPrefix string
	Combined     bool

	Tag    string
	Width  int
	Height int
	Margin int

	// Ceilings enforced by the interpreter. Zero selects the default.
	MaxCycles int
	MaxStack  int
}

// Result is what Execute reports about a run.
type Result struct {
	ID      string
	Outcome domain.Outcome
	// Status is the process exit status the run maps to.
	Status  int
	Details *domain.ExecutionDetails
	Outputs domain.OutputSet
}

// Output returns the path a consumer should read: the bundle in combined
// mode, the prefix otherwise.
func (r *Result) Output(combined bool) string {
	if combined {
		return r.Outputs.Combined
	}
	return r.Outputs.Prefix
}

// Pipeline wires the interpreter, the harness, the finalizer and an optional
// ledger together. A Pipeline holds no per-run state and may be shared.
type Pipeline struct {
	logger *slog.Logger
	ledger ports.RunLedger
	hooks  domain.LifecycleHooks
	exit   func(int)
	newID  func() string
	now    func() time.Time
}

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithLedger records every run that does not end fatally.
func WithLedger(ledger ports.RunLedger) Option {
	return func(p *Pipeline) {
		p.ledger = ledger
	}
}

// WithLifecycleHooks registers observability hooks on every harness.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// WithExit sets the function invoked on a fatal double failure. By default
// Execute only reports domain.ExitFatal in the result.
func WithExit(exit func(int)) Option {
	return func(p *Pipeline) {
		p.exit = exit
	}
}

// WithIDGenerator overrides how run IDs are produced.
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) {
		p.newID = newID
	}
}

// New returns a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		exit:   func(int) {},
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (req *Request) normalize() {
	if req.Width <= 0 {
		req.Width = runner.DefaultWidth
	}
	if req.Height <= 0 {
		req.Height = runner.DefaultHeight
	}
	if req.Margin < 0 {
		req.Margin = 0
	}
	if req.OutputPrefix == "" {
		req.OutputPrefix = "out"
	}
	if req.MaxCycles <= 0 {
		req.MaxCycles = logo.DefaultMaxCycles
	}
	if req.MaxStack <= 0 {
		req.MaxStack = logo.DefaultMaxStack
	}
}

// Execute runs the program in req and persists its artifacts.
//
// The returned error is the first failure of the run, if any: a source read,
// interpretation or persistence error. Result.Status tells whether it was
// handled (domain.ExitFailure) or fatal (domain.ExitFatal). Result is nil
// only when the transcript file cannot even be created.
func (p *Pipeline) Execute(ctx context.Context, req Request) (*Result, error) {
	req.normalize()
	id := p.newID()
	logger := p.logger.With("run_id", id)

	outputs := domain.NewOutputSet(req.OutputPrefix)
	stream, err := transcript.Create(outputs.Text, logger)
	if err != nil {
		return nil, err
	}

	canvas := turtle.New(req.Width, req.Height)
	interpreter := logo.New(canvas, stream,
		logo.WithMaxCycles(req.MaxCycles),
		logo.WithMaxStack(req.MaxStack),
		logo.WithLogger(logger),
	)
	harness := runner.New(interpreter, canvas,
		runner.WithCanvas(req.Width, req.Height),
		runner.WithTag(req.Tag),
		runner.WithLogger(logger),
		runner.WithLifecycleHooks(p.hooks),
	)
	finalizer := finalize.New(outputs, stream,
		finalize.WithMargin(req.Margin),
		finalize.WithCombined(req.Combined),
		finalize.WithLogger(logger),
	)

	persist := func(runErr error) error {
		raster, err := canvas.Snapshot()
		if err != nil {
			return domain.PersistenceError(err)
		}
		return finalizer.Finalize(harness.Details(), raster, runErr)
	}

	res := &Result{
		ID:      id,
		Outcome: domain.OutcomeCompleted,
		Status:  domain.ExitOK,
		Details: harness.Details(),
		Outputs: outputs,
	}

	source, failure := p.readSource(req)
	if failure == nil {
		failure = harness.Run(ctx, source)
	}
	if failure == nil {
		failure = persist(nil)
	}
	if failure != nil {
		res.Outcome = domain.OutcomeFailed
		res.Status = finalize.NewGuard(p.exit, logger).Handle(failure, persist)
	}

	if res.Status != domain.ExitFatal {
		p.record(ctx, logger, res, req.Combined)
	}
	return res, failure
}

func (p *Pipeline) readSource(req Request) (string, error) {
	if req.SourcePath == "" {
		return req.Source, nil
	}
	data, err := os.ReadFile(req.SourcePath)
	if err != nil {
		return "", domain.SourceReadError(fmt.Errorf("read %s: %w", req.SourcePath, err))
	}
	return string(data), nil
}

// record saves the run in the ledger. Failure here never changes the run's
// status.
func (p *Pipeline) record(ctx context.Context, logger *slog.Logger, res *Result, combined bool) {
	if p.ledger == nil {
		return
	}
	rec := &domain.RunRecord{
		ID:         res.ID,
		Outcome:    res.Outcome,
		Output:     res.Output(combined),
		RecordedAt: p.now().UTC(),
		Details:    res.Details,
	}
	if err := p.ledger.Record(ctx, rec); err != nil {
		logger.Warn("could not record run", "err", err)
		return
	}
	logger.Debug("run recorded", "outcome", res.Outcome)
}
