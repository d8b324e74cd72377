package logo_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/logo"
	"github.com/aretw0/turtleshot/pkg/turtle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTranscript struct {
	strings.Builder
	clears int
}

func (m *memTranscript) Write(text string) error {
	m.WriteString(text)
	return nil
}

func (m *memTranscript) Clear() { m.clears++ }

func newInterpreter(opts ...logo.Option) (*logo.Interpreter, *turtle.Turtle, *memTranscript) {
	tt := turtle.New(200, 200)
	out := &memTranscript{}
	return logo.New(tt, out, opts...), tt, out
}

func TestRun_Print(t *testing.T) {
	in, _, out := newInterpreter()
	err := in.Run(context.Background(), `
		print 1 + 2 * 3
		pr "hello
		type "a type "b
		print [a [b c] 4]
		show [a [b c]]
		print 7 / 2
		print -3 + 1
		print (2 + 3) * 2
	`)
	require.NoError(t, err)
	assert.Equal(t, "7\nhello\naba [b c] 4\n[a [b c]]\n3.5\n-2\n10\n", out.String())
}

func TestRun_TurtleMotion(t *testing.T) {
	in, tt, _ := newInterpreter()
	require.NoError(t, in.Run(context.Background(), "fd 50 rt 90 fd 20 bk 10 lt 90"))

	x, y := tt.Position()
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 50, y, 1e-9)
	assert.InDelta(t, 0, tt.Heading(), 1e-9)
}

func TestRun_PenAndPosition(t *testing.T) {
	in, tt, _ := newInterpreter()
	require.NoError(t, in.Run(context.Background(), "pu setxy 30 -40 pd seth 90 setpensize 4 setpencolor \"red"))

	x, y := tt.Position()
	assert.Equal(t, 30.0, x)
	assert.Equal(t, -40.0, y)
	assert.Equal(t, 90.0, tt.Heading())
	assert.True(t, tt.PenDown())
}

func TestRun_RepeatAndRepcount(t *testing.T) {
	in, _, out := newInterpreter()
	require.NoError(t, in.Run(context.Background(), "repeat 3 [type repcount] print repcount"))
	assert.Equal(t, "123-1\n", out.String())
}

func TestRun_NestedRepeatCounts(t *testing.T) {
	in, _, _ := newInterpreter()
	require.NoError(t, in.Run(context.Background(), "repeat 4 [repeat 3 [fd 1]]"))
	// 1 outer + 4 inner repeats + 12 forwards.
	assert.Equal(t, 17, in.Cycles())
}

func TestRun_Procedures(t *testing.T) {
	in, _, out := newInterpreter()
	err := in.Run(context.Background(), `
		to square :size
		  repeat 4 [fd :size rt 90]
		end
		to fact :n
		  if :n < 2 [output 1]
		  output :n * fact :n - 1
		end
		square 10
		print fact 5
	`)
	require.NoError(t, err)
	assert.Equal(t, "120\n", out.String())
	assert.Equal(t, 5, in.StackPeak())
}

func TestRun_StopLeavesProcedure(t *testing.T) {
	in, _, out := newInterpreter()
	err := in.Run(context.Background(), `
		to countdown :n
		  if :n = 0 [stop]
		  type :n
		  countdown :n - 1
		end
		countdown 3
	`)
	require.NoError(t, err)
	assert.Equal(t, "321", out.String())
}

func TestRun_IfElseOutputsValue(t *testing.T) {
	in, _, out := newInterpreter()
	require.NoError(t, in.Run(context.Background(), `make "x 5 print ifelse :x > 3 ["big] ["small]`))
	assert.Equal(t, "big\n", out.String())
}

func TestRun_MakeAndScope(t *testing.T) {
	in, _, out := newInterpreter()
	err := in.Run(context.Background(), `
		make "v 1
		to bump :v
		  make "v :v + 10
		  print :v
		end
		bump 5
		print :v
	`)
	require.NoError(t, err)
	assert.Equal(t, "15\n1\n", out.String())
}

func TestRun_ClearText(t *testing.T) {
	in, _, out := newInterpreter()
	require.NoError(t, in.Run(context.Background(), "ct cleartext"))
	assert.Equal(t, 2, out.clears)
}

func TestRun_ClearScreenHomes(t *testing.T) {
	in, tt, _ := newInterpreter()
	require.NoError(t, in.Run(context.Background(), "fd 30 rt 45 cs"))
	x, y := tt.Position()
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.Zero(t, tt.Heading())
}

func TestRun_CycleLimit(t *testing.T) {
	in, _, _ := newInterpreter(logo.WithMaxCycles(100))
	err := in.Run(context.Background(), "repeat 1000 [fd 1]")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCycleLimit)
	assert.Equal(t, 101, in.Cycles())
}

func TestRun_StackLimit(t *testing.T) {
	in, _, _ := newInterpreter(logo.WithMaxStack(50))
	err := in.Run(context.Background(), "to loop\n loop\nend\nloop")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStackLimit)
	assert.Equal(t, 50, in.StackPeak())
}

func TestRun_Cancelled(t *testing.T) {
	in, _, _ := newInterpreter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := in.Run(ctx, "fd 10")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"unknown procedure", "jump 10", logo.ErrUnknownProcedure},
		{"unused value", "1 + 2", logo.ErrSyntax},
		{"missing input", "fd", logo.ErrSyntax},
		{"not a number", `fd "far`, logo.ErrBadInput},
		{"unbound variable", "fd :nope", logo.ErrBadInput},
		{"unmatched bracket", "repeat 2 [fd 1", logo.ErrSyntax},
		{"missing end", "to x fd 1", logo.ErrSyntax},
		{"bad color", "setpencolor 99", logo.ErrBadInput},
		{"division by zero", "print 1 / 0", logo.ErrBadInput},
		{"redefine primitive", "to fd :x\nend", logo.ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _, _ := newInterpreter()
			err := in.Run(context.Background(), tt.source)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRun_OutputAtTopLevelFails(t *testing.T) {
	in, _, _ := newInterpreter()
	assert.Error(t, in.Run(context.Background(), "output 1"))
}

func TestRun_StopAtTopLevelEnds(t *testing.T) {
	in, _, out := newInterpreter()
	require.NoError(t, in.Run(context.Background(), "print 1 stop print 2"))
	assert.Equal(t, "1\n", out.String())
}

func TestRun_Comments(t *testing.T) {
	in, _, out := newInterpreter()
	require.NoError(t, in.Run(context.Background(), "; a comment\nprint 3 ; trailing\n"))
	assert.Equal(t, "3\n", out.String())
}
