/*
Package runner implements the execution harness for a single headless run.

A Harness wires the drawing collaborator's move notifications into the
run's Viewport, times the run, and collects the interpreter's post-run
counters into ExecutionDetails. It is single-shot: one Harness executes
exactly one program.

# State Machine

	Idle -> Running -> Completed
	                -> Failed

There is no transition back to Idle.

# Usage

	h := runner.New(interp, turtle,
		runner.WithCanvas(1000, 1000),
		runner.WithTag("batch-1"),
		runner.WithLogger(logger),
	)

	if err := h.Run(ctx, source); err != nil {
		// h.Details() still holds the partial viewport and counters.
	}
*/
package runner
