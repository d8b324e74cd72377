package logo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex_Minus(t *testing.T) {
	tests := []struct {
		source string
		unary  bool
	}{
		{"fd -10", true},
		{"10 -5", true},
		{"10 - 5", false},
		{"10-5", false},
		{":x - 1", false},
		{"(-1)", true},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			toks, err := lex(tt.source)
			require.NoError(t, err)
			var found bool
			for _, tok := range toks {
				if tok.kind == tokOp && tok.text == "-" {
					found = true
					assert.Equal(t, tt.unary, tok.unary)
				}
			}
			assert.True(t, found)
		})
	}
}

func TestLex_Kinds(t *testing.T) {
	toks, err := lex("to sq :n\n repeat 4 [fd :n] <= <> \"word 1.5e2 ; note\nend")
	require.NoError(t, err)

	kinds := make([]tokenKind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.kind
	}
	assert.Equal(t, []tokenKind{
		tokName, tokName, tokVar,
		tokName, tokNumber, tokOpen, tokName, tokVar, tokClose,
		tokOp, tokOp, tokWord, tokNumber,
		tokName,
	}, kinds)
	assert.Equal(t, 150.0, toks[12].num)
	assert.Equal(t, 1, toks[2].line)
	assert.Equal(t, 3, toks[13].line)
}

func TestLex_BareColon(t *testing.T) {
	_, err := lex("fd : 3")
	assert.ErrorIs(t, err, ErrSyntax)
}
