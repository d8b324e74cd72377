package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintStatus writes a one-line colored verdict for a run.
func PrintStatus(w io.Writer, outcome domain.Outcome, details *domain.ExecutionDetails, output string) {
	out := termenv.NewOutput(w)

	mark := out.String("✔ " + string(outcome)).Foreground(out.Color("#4ade80")).Bold()
	if outcome == domain.OutcomeFailed {
		mark = out.String("✘ " + string(outcome)).Foreground(out.Color("#f87171")).Bold()
	}

	size := "?"
	if box := details.BoundingBox; box != nil {
		size = fmt.Sprintf("%dx%d", box.Width, box.Height)
	}
	facts := out.String(fmt.Sprintf("%s in %s, %d cycles, %d moves", size, details.RunTime, details.Cycles, details.MoveCount)).Faint()

	fmt.Fprintf(w, "%s %s -> %s\n", mark, facts, output)
}
