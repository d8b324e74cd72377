package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SummaryMarkdown describes a run as a markdown table.
func SummaryMarkdown(id string, outcome domain.Outcome, details *domain.ExecutionDetails, output string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Run `%s`\n\n", id)
	b.WriteString("| Field | Value |\n|---|---|\n")
	row := func(k, v string) { fmt.Fprintf(&b, "| %s | %s |\n", k, v) }

	row("Outcome", string(outcome))
	if tag := details.TagValue(); tag != "" {
		row("Tag", tag)
	}
	row("Output", "`"+output+"`")
	row("Run time", details.RunTime.String())
	row("Cycles", fmt.Sprint(details.Cycles))
	row("Stack peak", fmt.Sprint(details.StackPeak))
	row("Moves", fmt.Sprint(details.MoveCount))
	if box := details.BoundingBox; box != nil {
		row("Crop", fmt.Sprintf("%dx%d at (%d, %d)", box.Width, box.Height, box.Min.X, box.Min.Y))
	}
	if details.Error != nil {
		fmt.Fprintf(&b, "\n```\n%s\n```\n", *details.Error)
	}
	return b.String()
}
