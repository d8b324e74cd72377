package logo

import (
	"fmt"
	"image/color"
	"math"

	"github.com/aretw0/turtleshot/pkg/turtle"
)

type primitive struct {
	arity int
	fn    func(in *Interpreter, args []Value) (Value, error)
}

var primitives map[string]primitive

func init() {
	primitives = make(map[string]primitive)
	register := func(p primitive, names ...string) {
		for _, name := range names {
			primitives[name] = p
		}
	}

	// Motion.
	register(primitive{1, numeric(func(in *Interpreter, n float64) { in.canvas.Forward(n) })}, "forward", "fd")
	register(primitive{1, numeric(func(in *Interpreter, n float64) { in.canvas.Back(n) })}, "back", "bk")
	register(primitive{1, numeric(func(in *Interpreter, n float64) { in.canvas.Left(n) })}, "left", "lt")
	register(primitive{1, numeric(func(in *Interpreter, n float64) { in.canvas.Right(n) })}, "right", "rt")
	register(primitive{1, numeric(func(in *Interpreter, n float64) { in.canvas.SetHeading(n) })}, "setheading", "seth")
	register(primitive{2, setxy}, "setxy")
	register(primitive{0, command(func(in *Interpreter) { in.canvas.Home() })}, "home")
	register(primitive{0, command(func(in *Interpreter) { in.canvas.Clear() })}, "clearscreen", "cs")
	register(primitive{0, xcor}, "xcor")
	register(primitive{0, ycor}, "ycor")
	register(primitive{0, heading}, "heading")

	// Pen.
	register(primitive{0, command(func(in *Interpreter) { in.canvas.Raise() })}, "penup", "pu")
	register(primitive{0, command(func(in *Interpreter) { in.canvas.Lower() })}, "pendown", "pd")
	register(primitive{1, setPenSize}, "setpensize", "setwidth")
	register(primitive{1, setPenColor}, "setpencolor", "setpc")

	// Control.
	register(primitive{2, repeat}, "repeat")
	register(primitive{0, repcount}, "repcount")
	register(primitive{2, ifThen}, "if")
	register(primitive{3, ifElse}, "ifelse")
	register(primitive{0, stop}, "stop")
	register(primitive{1, output}, "output", "op")
	register(primitive{2, makeVar}, "make")

	// Text.
	register(primitive{1, printer(true, false)}, "print", "pr")
	register(primitive{1, printer(false, false)}, "type")
	register(primitive{1, printer(true, true)}, "show")
	register(primitive{0, command(func(in *Interpreter) { in.transcript.Clear() })}, "cleartext", "ct")

	// Arithmetic.
	register(primitive{2, binary(func(a, b float64) float64 { return a + b })}, "sum")
	register(primitive{2, binary(func(a, b float64) float64 { return a * b })}, "product")
	register(primitive{2, binary(math.Mod)}, "remainder")
	register(primitive{1, unary(math.Sqrt)}, "sqrt")
	register(primitive{1, unary(math.Round)}, "round")
	register(primitive{1, unary(func(d float64) float64 { return math.Sin(d * math.Pi / 180) })}, "sin")
	register(primitive{1, unary(func(d float64) float64 { return math.Cos(d * math.Pi / 180) })}, "cos")
}

func command(fn func(in *Interpreter)) func(*Interpreter, []Value) (Value, error) {
	return func(in *Interpreter, _ []Value) (Value, error) {
		fn(in)
		return nil, nil
	}
}

func numeric(fn func(in *Interpreter, n float64)) func(*Interpreter, []Value) (Value, error) {
	return func(in *Interpreter, args []Value) (Value, error) {
		n, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}
		fn(in, n)
		return nil, nil
	}
}

func unary(fn func(float64) float64) func(*Interpreter, []Value) (Value, error) {
	return func(_ *Interpreter, args []Value) (Value, error) {
		n, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}
		return fn(n), nil
	}
}

func binary(fn func(a, b float64) float64) func(*Interpreter, []Value) (Value, error) {
	return func(_ *Interpreter, args []Value) (Value, error) {
		a, err := toNumber(args[0])
		if err != nil {
			return nil, err
		}
		b, err := toNumber(args[1])
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}
}

func setxy(in *Interpreter, args []Value) (Value, error) {
	x, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	y, err := toNumber(args[1])
	if err != nil {
		return nil, err
	}
	in.canvas.SetPosition(x, y)
	return nil, nil
}

func xcor(in *Interpreter, _ []Value) (Value, error) {
	x, _ := in.canvas.Position()
	return x, nil
}

func ycor(in *Interpreter, _ []Value) (Value, error) {
	_, y := in.canvas.Position()
	return y, nil
}

func heading(in *Interpreter, _ []Value) (Value, error) {
	return in.canvas.Heading(), nil
}

func setPenSize(in *Interpreter, args []Value) (Value, error) {
	n, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	if err := in.canvas.SetPenWidth(n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	return nil, nil
}

// setPenColor accepts a palette index, a color name, or an [r g b] list with
// channels in 0..255.
func setPenColor(in *Interpreter, args []Value) (Value, error) {
	c, err := resolveColor(args[0])
	if err != nil {
		return nil, err
	}
	in.canvas.SetPenColor(c)
	return nil, nil
}

func resolveColor(v Value) (color.Color, error) {
	switch x := v.(type) {
	case float64:
		if c, ok := turtle.PaletteColor(int(x)); ok {
			return c, nil
		}
	case string:
		if c, ok := turtle.NamedColor(x); ok {
			return c, nil
		}
	case *List:
		items := x.Items()
		if len(items) == 3 {
			var rgb [3]float64
			for i, item := range items {
				n, err := toNumber(item)
				if err != nil {
					return nil, err
				}
				rgb[i] = n
			}
			return turtle.RGB(rgb[0], rgb[1], rgb[2]), nil
		}
	}
	return nil, fmt.Errorf("%w: %s is not a color", ErrBadInput, format(v, true))
}

func repeat(in *Interpreter, args []Value) (Value, error) {
	n, err := toNumber(args[0])
	if err != nil {
		return nil, err
	}
	body, err := toList(args[1])
	if err != nil {
		return nil, err
	}
	in.repeats = append(in.repeats, 0)
	defer func() { in.repeats = in.repeats[:len(in.repeats)-1] }()

	for i := 1; i <= int(n); i++ {
		in.repeats[len(in.repeats)-1] = i
		if err := in.runStatements(body.toks); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func repcount(in *Interpreter, _ []Value) (Value, error) {
	if len(in.repeats) == 0 {
		return float64(-1), nil
	}
	return float64(in.repeats[len(in.repeats)-1]), nil
}

func ifThen(in *Interpreter, args []Value) (Value, error) {
	cond, err := toBool(args[0])
	if err != nil {
		return nil, err
	}
	body, err := toList(args[1])
	if err != nil {
		return nil, err
	}
	if !cond {
		return nil, nil
	}
	return in.runList(body.toks)
}

func ifElse(in *Interpreter, args []Value) (Value, error) {
	cond, err := toBool(args[0])
	if err != nil {
		return nil, err
	}
	branch := args[2]
	if cond {
		branch = args[1]
	}
	body, err := toList(branch)
	if err != nil {
		return nil, err
	}
	return in.runList(body.toks)
}

func stop(*Interpreter, []Value) (Value, error) {
	return nil, stopSignal{}
}

func output(_ *Interpreter, args []Value) (Value, error) {
	return nil, outputSignal{value: args[0]}
}

func makeVar(in *Interpreter, args []Value) (Value, error) {
	name, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: MAKE needs a word, got %s", ErrBadInput, format(args[0], true))
	}
	in.assign(name, args[1])
	return nil, nil
}

func printer(newline, bracketed bool) func(*Interpreter, []Value) (Value, error) {
	return func(in *Interpreter, args []Value) (Value, error) {
		text := format(args[0], bracketed)
		if newline {
			text += "\n"
		}
		return nil, in.transcript.Write(text)
	}
}
