// Package logo interprets a small Logo dialect against a turtle and a
// transcript.
//
// Every primitive or procedure invocation costs one cycle; user procedure
// calls push a stack frame. Both are bounded by configurable ceilings, which
// is the only thing that stops a runaway program.
package logo

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/ports"
)

// Default ceilings.
const (
	DefaultMaxCycles = 80000
	DefaultMaxStack  = 10000
)

var (
	// ErrSyntax is returned for malformed source.
	ErrSyntax = errors.New("syntax error")
	// ErrUnknownProcedure is returned when a name has no definition.
	ErrUnknownProcedure = errors.New("unknown procedure")
	// ErrBadInput is returned when a primitive receives an input it cannot use.
	ErrBadInput = errors.New("bad input")
)

var _ ports.Interpreter = (*Interpreter)(nil)

// Canvas is the drawing surface the interpreter drives.
type Canvas interface {
	Forward(distance float64)
	Back(distance float64)
	Left(degrees float64)
	Right(degrees float64)
	SetPosition(x, y float64)
	SetHeading(degrees float64)
	Home()
	Raise()
	Lower()
	SetPenWidth(width float64) error
	SetPenColor(c color.Color)
	Clear()
	Position() (x, y float64)
	Heading() float64
}

// Option defines a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithMaxCycles bounds the number of invocations. Zero disables the bound.
func WithMaxCycles(n int) Option {
	return func(in *Interpreter) {
		in.maxCycles = n
	}
}

// WithMaxStack bounds the depth of user procedure calls. Zero disables the
// bound.
func WithMaxStack(n int) Option {
	return func(in *Interpreter) {
		in.maxStack = n
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

// Interpreter runs Logo programs. It keeps procedures and global variables
// between runs but resets its counters at the start of each Run.
type Interpreter struct {
	canvas     Canvas
	transcript ports.Transcript
	logger     *slog.Logger

	maxCycles int
	maxStack  int

	cycles    int
	depth     int
	stackPeak int

	procs   map[string]*procedure
	globals map[string]Value
	frames  []map[string]Value
	repeats []int

	ctx context.Context
}

type procedure struct {
	name   string
	params []string
	body   []token
}

// stopSignal and outputSignal unwind a procedure body.
type stopSignal struct{}

func (stopSignal) Error() string { return "STOP used outside of a procedure" }

type outputSignal struct{ value Value }

func (outputSignal) Error() string { return "OUTPUT used outside of a procedure" }

// New returns an interpreter that draws on canvas and prints to transcript.
func New(canvas Canvas, transcript ports.Transcript, opts ...Option) *Interpreter {
	in := &Interpreter{
		canvas:     canvas,
		transcript: transcript,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxCycles:  DefaultMaxCycles,
		maxStack:   DefaultMaxStack,
		procs:      make(map[string]*procedure),
		globals:    make(map[string]Value),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Cycles implements ports.Interpreter.
func (in *Interpreter) Cycles() int { return in.cycles }

// StackPeak implements ports.Interpreter.
func (in *Interpreter) StackPeak() int { return in.stackPeak }

// Run implements ports.Interpreter. It returns when the program ends, fails,
// hits a ceiling, or ctx is done.
func (in *Interpreter) Run(ctx context.Context, source string) error {
	in.cycles, in.depth, in.stackPeak = 0, 0, 0
	in.frames, in.repeats = nil, nil
	in.ctx = ctx

	toks, err := lex(source)
	if err != nil {
		return err
	}
	in.logger.Debug("program lexed", "tokens", len(toks))

	err = in.runStatements(toks)
	var stop stopSignal
	if errors.As(err, &stop) {
		return nil
	}
	return err
}

// runStatements runs toks where every expression must be a command.
func (in *Interpreter) runStatements(toks []token) error {
	v, err := in.runList(toks)
	if err != nil {
		return err
	}
	if v != nil {
		return fmt.Errorf("%w: you don't say what to do with %s", ErrSyntax, format(v, true))
	}
	return nil
}

// runList evaluates toks in sequence. Only the final expression may produce
// a value, which is returned.
func (in *Interpreter) runList(toks []token) (Value, error) {
	p := &parser{in: in, toks: toks}
	var last Value
	for !p.done() {
		if last != nil {
			return nil, fmt.Errorf("%w: you don't say what to do with %s", ErrSyntax, format(last, true))
		}
		if p.peekName("to") {
			if err := p.define(); err != nil {
				return nil, err
			}
			continue
		}
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

// tick charges one cycle and checks for cancellation.
func (in *Interpreter) tick() error {
	if err := in.ctx.Err(); err != nil {
		return err
	}
	in.cycles++
	if in.maxCycles > 0 && in.cycles > in.maxCycles {
		return fmt.Errorf("%w (%d)", domain.ErrCycleLimit, in.maxCycles)
	}
	return nil
}

// call invokes a primitive or user procedure with evaluated inputs.
func (in *Interpreter) call(name string, args []Value) (Value, error) {
	if err := in.tick(); err != nil {
		return nil, err
	}
	key := strings.ToLower(name)
	if prim, ok := primitives[key]; ok {
		return prim.fn(in, args)
	}
	proc, ok := in.procs[key]
	if !ok {
		return nil, fmt.Errorf("%w: I don't know how to %s", ErrUnknownProcedure, name)
	}
	return in.invoke(proc, args)
}

func (in *Interpreter) invoke(proc *procedure, args []Value) (Value, error) {
	in.depth++
	defer func() { in.depth-- }()
	if in.maxStack > 0 && in.depth > in.maxStack {
		return nil, fmt.Errorf("%w (%d) in %s", domain.ErrStackLimit, in.maxStack, proc.name)
	}
	in.stackPeak = max(in.stackPeak, in.depth)

	frame := make(map[string]Value, len(proc.params))
	for i, param := range proc.params {
		frame[param] = args[i]
	}
	in.frames = append(in.frames, frame)
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()

	err := in.runStatements(proc.body)
	var stop stopSignal
	var out outputSignal
	switch {
	case errors.As(err, &stop):
		return nil, nil
	case errors.As(err, &out):
		return out.value, nil
	}
	return nil, err
}

// arity returns the number of inputs name takes.
func (in *Interpreter) arity(name string) (int, bool) {
	key := strings.ToLower(name)
	if prim, ok := primitives[key]; ok {
		return prim.arity, true
	}
	if proc, ok := in.procs[key]; ok {
		return len(proc.params), true
	}
	return 0, false
}

func (in *Interpreter) lookup(name string) (Value, error) {
	key := strings.ToLower(name)
	for i := len(in.frames) - 1; i >= 0; i-- {
		if v, ok := in.frames[i][key]; ok {
			return v, nil
		}
	}
	if v, ok := in.globals[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s has no value", ErrBadInput, name)
}

func (in *Interpreter) assign(name string, v Value) {
	key := strings.ToLower(name)
	for i := len(in.frames) - 1; i >= 0; i-- {
		if _, ok := in.frames[i][key]; ok {
			in.frames[i][key] = v
			return
		}
	}
	in.globals[key] = v
}
