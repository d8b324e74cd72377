package logo

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a Logo datum: a float64 number, a string word, or a *List.
type Value any

// List is a bracketed literal. It keeps its tokens so it can be run as
// instructions as well as read as data.
type List struct {
	toks []token
}

// Items returns the list contents as data: numbers, words and nested lists.
func (l *List) Items() []Value {
	var items []Value
	for i := 0; i < len(l.toks); i++ {
		t := l.toks[i]
		switch t.kind {
		case tokNumber:
			items = append(items, t.num)
		case tokOpen:
			end := matchBracket(l.toks, i)
			items = append(items, &List{toks: l.toks[i+1 : end]})
			i = end
		default:
			items = append(items, t.String())
		}
	}
	return items
}

func (l *List) String() string {
	parts := make([]string, 0, len(l.toks))
	for _, item := range l.Items() {
		parts = append(parts, format(item, true))
	}
	return strings.Join(parts, " ")
}

// matchBracket returns the index of the ']' closing the '[' at open, or
// len(toks) when it is unbalanced.
func matchBracket(toks []token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].kind {
		case tokOpen:
			depth++
		case tokClose:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(toks)
}

// format renders v the way PRINT does. Nested lists keep their brackets;
// the outermost list only keeps them when bracketed is set, as for SHOW.
func format(v Value, bracketed bool) string {
	switch x := v.(type) {
	case float64:
		return formatNumber(x)
	case string:
		return x
	case *List:
		if bracketed {
			return "[" + x.String() + "]"
		}
		return x.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func toNumber(v Value) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		n, err := strconv.ParseFloat(x, 64)
		if err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %s is not a number", ErrBadInput, format(v, true))
}

func toBool(v Value) (bool, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(s) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: %s is not true or false", ErrBadInput, format(v, true))
}

func toList(v Value) (*List, error) {
	if l, ok := v.(*List); ok {
		return l, nil
	}
	return nil, fmt.Errorf("%w: %s is not a list", ErrBadInput, format(v, true))
}

func boolWord(b bool) Value {
	if b {
		return "true"
	}
	return "false"
}

func equal(a, b Value) bool {
	an, aerr := toNumber(a)
	bn, berr := toNumber(b)
	if aerr == nil && berr == nil {
		return an == bn
	}
	return strings.EqualFold(format(a, true), format(b, true))
}
