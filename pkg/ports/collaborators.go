package ports

import "context"

// Interpreter executes program source against a Turtle and a Transcript.
//
// Run blocks until the program settles. Cycles and StackPeak are only
// meaningful after Run returns.
type Interpreter interface {
	Run(ctx context.Context, source string) error
	Cycles() int
	StackPeak() int
}

// MoveSink receives one notification per plotted segment endpoint, in turtle
// space.
type MoveSink func(x, y float64)

// Turtle is the drawing collaborator.
type Turtle interface {
	// PenDown reports whether moves currently leave a mark.
	PenDown() bool

	// SetMoveSink registers the notification target. A nil sink disables
	// notifications.
	SetMoveSink(sink MoveSink)

	// Snapshot returns the full canvas encoded as PNG.
	Snapshot() ([]byte, error)
}

// Transcript is the text output of a running program.
type Transcript interface {
	Write(text string) error
	Clear()
}
