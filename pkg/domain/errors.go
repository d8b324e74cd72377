package domain

import "errors"

// ErrSourceRead is returned when the program source cannot be read.
var ErrSourceRead = errors.New("source read error")

// ErrInterpretation marks a failure surfaced by the interpretation collaborator.
var ErrInterpretation = errors.New("interpretation error")

// ErrPersistence marks a failure writing a raster, JSON document or file.
var ErrPersistence = errors.New("persistence error")

// ErrHarnessUsed is returned when a harness is asked to run a second time.
var ErrHarnessUsed = errors.New("harness already used")

// ErrRunNotFound is returned when a run ID cannot be found in a ledger.
var ErrRunNotFound = errors.New("run not found")

// ErrCycleLimit is returned when a program exceeds its cycle ceiling.
var ErrCycleLimit = errors.New("maximum cycles exceeded")

// ErrStackLimit is returned when a program exceeds its stack ceiling.
var ErrStackLimit = errors.New("maximum stack depth exceeded")

// Process exit statuses.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitFatal   = 2
)

// RunError attaches a taxonomy kind to an underlying error so callers can
// match with errors.Is against the sentinels above.
type RunError struct {
	Kind error
	Err  error
}

func (e *RunError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *RunError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// SourceReadError wraps err as an ErrSourceRead.
func SourceReadError(err error) error {
	return &RunError{Kind: ErrSourceRead, Err: err}
}

// InterpretationError wraps err as an ErrInterpretation.
func InterpretationError(err error) error {
	return &RunError{Kind: ErrInterpretation, Err: err}
}

// PersistenceError wraps err as an ErrPersistence.
func PersistenceError(err error) error {
	return &RunError{Kind: ErrPersistence, Err: err}
}
