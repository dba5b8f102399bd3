package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// Parse reads function text in the single variable x.
//
// Grammar (lowest to highest precedence):
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary | unary }   // juxtaposition multiplies
//	unary   = ("+" | "-") unary | power
//	power   = primary [ ("^" | "**") unary ]        // right associative
//	primary = number | "x" | "pi" | "e" | name "(" expr ")" | "(" expr ")"
//
// Numbers are read exactly, so 0.1 is 1/10.
func Parse(text string) (Expr, error) {
	toks, err := lex(normalizeInput(text))
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, &ParseError{Pos: 0, Msg: "empty expression"}
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return e.Simplify(), nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(text string) Expr {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

var inputReplacer = strings.NewReplacer("×", "*", "·", "*", "÷", "/", "−", "-", "²", "^2", "³", "^3")

func normalizeInput(s string) string { return inputReplacer.Replace(s) }

// ============================================================
// Lexer
// ============================================================

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
	num  *big.Rat
}

func lex(s string) ([]token, error) {
	rs := []rune(s)
	var toks []token
	i := 0
	for i < len(rs) {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
				i++
			}
			if i < len(rs) && (rs[i] == 'e' || rs[i] == 'E') && exponentFollows(rs, i+1) {
				i++
				if rs[i] == '+' || rs[i] == '-' {
					i++
				}
				for i < len(rs) && unicode.IsDigit(rs[i]) {
					i++
				}
			}
			text := string(rs[start:i])
			v, ok := new(big.Rat).SetString(text)
			if !ok {
				return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("invalid number %q", text)}
			}
			toks = append(toks, token{kind: tokNum, text: text, pos: start, num: v})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[start:i]), pos: start})
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case strings.ContainsRune("+-*/^", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, &ParseError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return append(toks, token{kind: tokEOF, text: "end of input", pos: len(rs)}), nil
}

func exponentFollows(rs []rune, i int) bool {
	if i < len(rs) && (rs[i] == '+' || rs[i] == '-') {
		i++
	}
	return i < len(rs) && unicode.IsDigit(rs[i])
}

// ============================================================
// Recursive-descent parser
// ============================================================

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops ...string) bool {
	t := p.peek()
	if t.kind != tokOp {
		return false
	}
	for _, op := range ops {
		if t.text == op {
			return true
		}
	}
	return false
}

func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+", "-") {
		op := p.next().text
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			right = &Mul{factors: []Expr{N(-1), right}}
		}
		left = &Add{terms: []Expr{left, right}}
	}
	return left, nil
}

func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch t := p.peek(); {
		case p.isOp("*", "/"):
			op := p.next().text
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			if op == "/" {
				right = &Pow{base: right, exp: N(-1)}
			}
			left = &Mul{factors: []Expr{left, right}}
		case t.kind == tokNum || t.kind == tokIdent || t.kind == tokLParen:
			right, err := p.power()
			if err != nil {
				return nil, err
			}
			left = &Mul{factors: []Expr{left, right}}
		default:
			return left, nil
		}
	}
}

func (p *parser) unary() (Expr, error) {
	if p.isOp("-", "+") {
		op := p.next().text
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			return &Mul{factors: []Expr{N(-1), operand}}, nil
		}
		return operand, nil
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Pow{base: base, exp: exp}, nil
	}
	return base, nil
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return &Num{val: t.num}, nil
	case tokLParen:
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokIdent:
		return p.identifier(t)
	}
	return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}

func (p *parser) identifier(t token) (Expr, error) {
	name := strings.ToLower(t.text)
	switch name {
	case Var:
		return X(), nil
	case "pi":
		return Pi, nil
	case "e":
		return E, nil
	}
	ctor, ok := knownFuncs[name]
	if !ok {
		return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("unknown identifier %q", t.text)}
	}
	if err := p.expect(tokLParen, "("); err != nil {
		return nil, err
	}
	arg, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokRParen, ")"); err != nil {
		return nil, err
	}
	return ctor(arg), nil
}

func (p *parser) expect(kind tokKind, text string) error {
	t := p.peek()
	if t.kind != kind {
		return &ParseError{Pos: t.pos, Msg: fmt.Sprintf("expected %q, found %q", text, t.text)}
	}
	p.next()
	return nil
}
