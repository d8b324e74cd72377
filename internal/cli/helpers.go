package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/turtleshot/internal/logging"
	"github.com/aretw0/turtleshot/internal/presentation/tui"
	"github.com/aretw0/turtleshot/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger on Stderr so Stdout stays
// free for status output.
func createLogger(level, format string) (*slog.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(os.Stderr, lvl, logging.Format(format)), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// printSummary writes the markdown summary of a run, rendered through glamour
// when w is a terminal.
func printSummary(w io.Writer, id string, outcome domain.Outcome, details *domain.ExecutionDetails, output string) {
	if details == nil {
		printSystemMessage(w, "run %s (%s) has no details", id, outcome)
		return
	}
	md := tui.SummaryMarkdown(id, outcome, details, output)
	if f, ok := w.(*os.File); ok && tui.IsTerminal(f) {
		if rendered, err := tui.NewRenderer()(md); err == nil {
			md = rendered
		}
	}
	fmt.Fprint(w, md)
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.Debug("Run Start", "tag", e.Details.TagValue())
		},
		OnRunSettle: func(ctx context.Context, e *domain.RunEvent) {
			if e.Err != nil {
				logger.Debug("Run Settle (Error)", "outcome", e.Outcome, "err", e.Err)
			} else {
				logger.Debug("Run Settle", "outcome", e.Outcome, "cycles", e.Details.Cycles, "moves", e.Details.MoveCount)
			}
		},
		OnMove: func(ctx context.Context, e *domain.MoveEvent) {
			logger.Debug("Move", "x", e.X, "y", e.Y, "pen_down", e.PenDown)
		},
	}
}
