package logo

import (
	"fmt"
	"strings"
)

// parser evaluates a token slice directly. Logo has no separate parse
// tree: how many inputs a name consumes depends on its arity at the moment
// it is reached.
type parser struct {
	in   *Interpreter
	toks []token
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() (token, bool) {
	if p.done() {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) peekName(name string) bool {
	t, ok := p.peek()
	return ok && t.kind == tokName && strings.EqualFold(t.text, name)
}

func (p *parser) peekOp(ops ...string) (string, bool) {
	t, ok := p.peek()
	if !ok || t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op && !(op == "-" && t.unary) {
			return op, true
		}
	}
	return "", false
}

// define consumes "TO name :a :b ... END". Inputs are the variables on the
// same line as TO.
func (p *parser) define() error {
	to := p.toks[p.pos]
	p.pos++
	name, ok := p.peek()
	if !ok || name.kind != tokName {
		return fmt.Errorf("%w: line %d: TO needs a procedure name", ErrSyntax, to.line)
	}
	p.pos++

	key := strings.ToLower(name.text)
	if _, prim := primitives[key]; prim {
		return fmt.Errorf("%w: %s is a primitive", ErrSyntax, name.text)
	}

	proc := &procedure{name: name.text}
	for !p.done() && p.toks[p.pos].kind == tokVar && p.toks[p.pos].line == to.line {
		proc.params = append(proc.params, strings.ToLower(p.toks[p.pos].text))
		p.pos++
	}

	start := p.pos
	for !p.done() {
		if p.peekName("end") {
			proc.body = p.toks[start:p.pos]
			p.pos++
			p.in.procs[key] = proc
			p.in.logger.Debug("procedure defined", "name", proc.name, "inputs", len(proc.params))
			return nil
		}
		if p.peekName("to") {
			break
		}
		p.pos++
	}
	return fmt.Errorf("%w: line %d: TO %s without END", ErrSyntax, to.line, name.text)
}

// expr parses a full expression including comparisons.
func (p *parser) expr() (Value, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp("=", "<", ">", "<=", ">=", "<>")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left, err = compare(op, left, right)
		if err != nil {
			return nil, err
		}
	}
}

func compare(op string, a, b Value) (Value, error) {
	switch op {
	case "=":
		return boolWord(equal(a, b)), nil
	case "<>":
		return boolWord(!equal(a, b)), nil
	}
	x, err := toNumber(a)
	if err != nil {
		return nil, err
	}
	y, err := toNumber(b)
	if err != nil {
		return nil, err
	}
	switch op {
	case "<":
		return boolWord(x < y), nil
	case ">":
		return boolWord(x > y), nil
	case "<=":
		return boolWord(x <= y), nil
	default:
		return boolWord(x >= y), nil
	}
}

func (p *parser) additive() (Value, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp("+", "-")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left, err = arith(op, left, right)
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) multiplicative() (Value, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.peekOp("*", "/")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left, err = arith(op, left, right)
		if err != nil {
			return nil, err
		}
	}
}

func arith(op string, a, b Value) (Value, error) {
	x, err := toNumber(a)
	if err != nil {
		return nil, err
	}
	y, err := toNumber(b)
	if err != nil {
		return nil, err
	}
	switch op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	default:
		if y == 0 {
			return nil, fmt.Errorf("%w: division by zero", ErrBadInput)
		}
		return x / y, nil
	}
}

func (p *parser) unary() (Value, error) {
	if t, ok := p.peek(); ok && t.kind == tokOp && t.text == "-" {
		p.pos++
		v, err := p.unary()
		if err != nil {
			return nil, err
		}
		n, err := toNumber(v)
		if err != nil {
			return nil, err
		}
		return -n, nil
	}
	return p.primary()
}

func (p *parser) primary() (Value, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of input", ErrSyntax)
	}
	p.pos++

	switch t.kind {
	case tokNumber:
		return t.num, nil
	case tokWord:
		return t.text, nil
	case tokVar:
		return p.in.lookup(t.text)
	case tokOpen:
		end := matchBracket(p.toks, p.pos-1)
		if end == len(p.toks) {
			return nil, fmt.Errorf("%w: line %d: unmatched [", ErrSyntax, t.line)
		}
		l := &List{toks: p.toks[p.pos:end]}
		p.pos = end + 1
		return l, nil
	case tokLParen:
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		if c, ok := p.peek(); !ok || c.kind != tokRParen {
			return nil, fmt.Errorf("%w: line %d: unmatched (", ErrSyntax, t.line)
		}
		p.pos++
		return v, nil
	case tokName:
		return p.invocation(t)
	default:
		return nil, fmt.Errorf("%w: line %d: unexpected %s", ErrSyntax, t.line, t)
	}
}

// invocation collects the inputs of the named procedure and calls it.
func (p *parser) invocation(t token) (Value, error) {
	n, ok := p.in.arity(t.text)
	if !ok {
		return nil, fmt.Errorf("%w: I don't know how to %s", ErrUnknownProcedure, t.text)
	}
	args := make([]Value, n)
	for i := range args {
		if p.done() {
			return nil, fmt.Errorf("%w: not enough inputs to %s", ErrSyntax, t.text)
		}
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("%w: an input to %s did not output a value", ErrBadInput, t.text)
		}
		args[i] = v
	}
	return p.in.call(t.text, args)
}
