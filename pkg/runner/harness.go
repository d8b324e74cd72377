package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/ports"
)

// State is the lifecycle position of a Harness.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Harness executes one program and records what it drew.
//
// The move sink runs synchronously on the interpreter's goroutine and mutates
// the viewport and counters without locking; exactly one run is ever active
// per Harness.
type Harness struct {
	interpreter ports.Interpreter
	turtle      ports.Turtle

	width, height int
	tag           string
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	now           func() time.Time

	viewport *domain.Viewport
	details  *domain.ExecutionDetails
	state    State
	err      error
	ctx      context.Context
}

// New builds a Harness around the given collaborators and registers its move
// sink on turtle. The viewport receives a seed update at the origin so a run
// that never draws still has a 1x1 extent.
func New(interpreter ports.Interpreter, turtle ports.Turtle, opts ...Option) *Harness {
	h := &Harness{
		interpreter: interpreter,
		turtle:      turtle,
		width:       DefaultWidth,
		height:      DefaultHeight,
		now:         time.Now,
		ctx:         context.Background(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h.viewport = domain.NewViewport(h.width, h.height, true)
	h.viewport.Update(0, 0)
	h.details = domain.NewExecutionDetails(h.tag, h.viewport)

	turtle.SetMoveSink(h.observeMove)
	return h
}

// Run executes source and blocks until the interpreter settles.
//
// On success the interpreter's cycle and stack counters are copied into the
// details. On failure they keep their previous values and the returned error
// wraps domain.ErrInterpretation. The elapsed time is recorded either way.
func (h *Harness) Run(ctx context.Context, source string) (err error) {
	if h.state != StateIdle {
		return fmt.Errorf("%w: state is %s", domain.ErrHarnessUsed, h.state)
	}
	h.state = StateRunning
	h.ctx = ctx

	start := h.now()
	h.details.StartTime = start
	h.logger.Debug("run started", "tag", h.tag)
	if h.hooks.OnRunStart != nil {
		h.hooks.OnRunStart(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: start, Type: domain.EventRunStart},
			Details:   h.details,
		})
	}

	defer func() {
		if r := recover(); r != nil {
			err = h.settle(ctx, start, fmt.Errorf("interpreter panic: %v", r))
		}
	}()

	return h.settle(ctx, start, h.interpreter.Run(ctx, source))
}

func (h *Harness) settle(ctx context.Context, start time.Time, runErr error) error {
	end := h.now()
	h.details.RunTime = end.Sub(start)

	outcome := domain.OutcomeCompleted
	if runErr != nil {
		h.state = StateFailed
		h.err = domain.InterpretationError(runErr)
		outcome = domain.OutcomeFailed
	} else {
		h.state = StateCompleted
		h.details.Cycles = h.interpreter.Cycles()
		h.details.StackPeak = h.interpreter.StackPeak()
	}

	h.logger.Info("run settled",
		"outcome", outcome,
		"run_time", h.details.RunTime,
		"cycles", h.details.Cycles,
		"moves", h.details.MoveCount,
		"err", runErr,
	)
	if h.hooks.OnRunSettle != nil {
		h.hooks.OnRunSettle(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{Timestamp: end, Type: domain.EventRunSettle},
			Details:   h.details,
			Outcome:   outcome,
			Err:       h.err,
		})
	}
	return h.err
}

// observeMove is the turtle's move sink. Every notification counts as a
// move, but only pen-down moves grow the viewport.
func (h *Harness) observeMove(x, y float64) {
	h.details.MoveCount++
	penDown := h.turtle.PenDown()
	if penDown {
		h.viewport.Update(x, y)
	}
	if h.hooks.OnMove != nil {
		h.hooks.OnMove(h.ctx, &domain.MoveEvent{
			EventBase: domain.EventBase{Timestamp: h.now(), Type: domain.EventMove},
			X:         x,
			Y:         y,
			PenDown:   penDown,
		})
	}
}

// State returns the current lifecycle state.
func (h *Harness) State() State { return h.state }

// Err returns the failure of a Failed run, or nil.
func (h *Harness) Err() error { return h.err }

// Outcome reports the settled outcome. It is only meaningful once Run has
// returned.
func (h *Harness) Outcome() domain.Outcome {
	if h.state == StateFailed {
		return domain.OutcomeFailed
	}
	return domain.OutcomeCompleted
}

// Details returns the run's ExecutionDetails.
func (h *Harness) Details() *domain.ExecutionDetails { return h.details }

// Viewport returns the live turtle-space viewport.
func (h *Harness) Viewport() *domain.Viewport { return h.viewport }
