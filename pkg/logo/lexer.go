package logo

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokWord             // "quoted
	tokVar              // :thing
	tokName             // procedure name
	tokOpen             // [
	tokClose            // ]
	tokLParen
	tokRParen
	tokOp
)

type token struct {
	kind tokenKind
	text string
	num  float64
	line int

	// unary marks a minus that binds to the following operand, as in
	// "FD -10" or "(-x)".
	unary bool
}

func (t token) String() string {
	switch t.kind {
	case tokWord:
		return `"` + t.text
	case tokVar:
		return ":" + t.text
	case tokOpen:
		return "["
	case tokClose:
		return "]"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	default:
		return t.text
	}
}

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("[]()+-*/<>=;", r)
}

// lex splits source into tokens. Comments run from ';' to the end of the
// line.
func lex(source string) ([]token, error) {
	var toks []token
	rs := []rune(source)
	line := 1

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case r == '\n':
			line++
			i++
		case unicode.IsSpace(r):
			i++
		case r == ';':
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case r == '[':
			toks = append(toks, token{kind: tokOpen, text: "[", line: line})
			i++
		case r == ']':
			toks = append(toks, token{kind: tokClose, text: "]", line: line})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", line: line})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", line: line})
			i++
		case r == '<' || r == '>':
			op := string(r)
			if i+1 < len(rs) && (rs[i+1] == '=' || (r == '<' && rs[i+1] == '>')) {
				op += string(rs[i+1])
			}
			toks = append(toks, token{kind: tokOp, text: op, line: line})
			i += len(op)
		case r == '-':
			prevSpace := i == 0 || unicode.IsSpace(rs[i-1]) || strings.ContainsRune("[(", rs[i-1])
			nextTight := i+1 < len(rs) && !unicode.IsSpace(rs[i+1])
			afterOperand := len(toks) > 0 && isOperandEnd(toks[len(toks)-1])
			toks = append(toks, token{
				kind:  tokOp,
				text:  "-",
				line:  line,
				unary: !afterOperand || (prevSpace && nextTight),
			})
			i++
		case strings.ContainsRune("+*/=", r):
			toks = append(toks, token{kind: tokOp, text: string(r), line: line})
			i++
		case r == '"':
			j := i + 1
			for j < len(rs) && !unicode.IsSpace(rs[j]) && !strings.ContainsRune("[]()", rs[j]) {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: string(rs[i+1 : j]), line: line})
			i = j
		case r == ':':
			j := i + 1
			for j < len(rs) && !isDelimiter(rs[j]) {
				j++
			}
			if j == i+1 {
				return nil, fmt.Errorf("%w: line %d: missing variable name after ':'", ErrSyntax, line)
			}
			toks = append(toks, token{kind: tokVar, text: string(rs[i+1 : j]), line: line})
			i = j
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			j := i
			for j < len(rs) && (unicode.IsDigit(rs[j]) || rs[j] == '.') {
				j++
			}
			if j < len(rs) && (rs[j] == 'e' || rs[j] == 'E') {
				k := j + 1
				if k < len(rs) && (rs[k] == '+' || rs[k] == '-') {
					k++
				}
				if k < len(rs) && unicode.IsDigit(rs[k]) {
					for k < len(rs) && unicode.IsDigit(rs[k]) {
						k++
					}
					j = k
				}
			}
			text := string(rs[i:j])
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad number %q", ErrSyntax, line, text)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: n, line: line})
			i = j
		default:
			j := i
			for j < len(rs) && !isDelimiter(rs[j]) {
				j++
			}
			toks = append(toks, token{kind: tokName, text: string(rs[i:j]), line: line})
			i = j
		}
	}
	return toks, nil
}

func isOperandEnd(t token) bool {
	switch t.kind {
	case tokNumber, tokWord, tokVar, tokClose, tokRParen:
		return true
	}
	return false
}
