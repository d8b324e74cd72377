package finalize

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/turtleshot/pkg/domain"
)

// Guard is the single top-level error boundary of a run.
//
// The first failure is handed to a recovery function that still produces
// output. A failure while that recovery is running, or any later call to
// Handle, is fatal: the process exits with domain.ExitFatal and nothing is
// retried.
type Guard struct {
	exit     func(int)
	logger   *slog.Logger
	handling bool
}

// NewGuard returns a Guard that terminates through exit. A nil exit uses
// os.Exit.
func NewGuard(exit func(int), logger *slog.Logger) *Guard {
	if exit == nil {
		exit = os.Exit
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Guard{exit: exit, logger: logger}
}

// Handle responds to err by running recovery once. It returns
// domain.ExitFailure when recovery succeeded. If recovery fails or panics,
// or Handle was already called, the exit function is invoked with
// domain.ExitFatal and that status is returned.
func (g *Guard) Handle(err error, recovery func(error) error) (status int) {
	if g.handling {
		return g.fatal(err)
	}
	g.handling = true

	defer func() {
		if r := recover(); r != nil {
			status = g.fatal(fmt.Errorf("panic: %v", r))
		}
	}()

	if rerr := recovery(err); rerr != nil {
		return g.fatal(rerr)
	}
	g.logger.Error("run failed", "err", err)
	return domain.ExitFailure
}

func (g *Guard) fatal(err error) int {
	g.logger.Error("failure while handling a failure", "err", err)
	g.exit(domain.ExitFatal)
	return domain.ExitFatal
}
