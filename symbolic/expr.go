// Package symbolic provides a deterministic symbolic math kernel for
// single-variable real functions.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Deterministic simplification and stable output
//   - Exact results stay symbolic (ln(2), sqrt(2), pi) until a caller asks
//     for a float
//   - Every operation a calculus front end needs: parse, differentiate,
//     integrate, limit, real solve, evaluate
package symbolic

import (
	"fmt"
	"math/big"
	"strconv"
)

// Var is the single free variable every parsed expression is written in.
const Var = "x"

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	// Eval evaluates the expression to an exact rational when possible.
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
}

// ============================================================
// Num — exact rational number
// ============================================================

// Num is an exact rational. Approximate numbers (roots found numerically,
// snapped limits) carry approx=true and print as decimals.
type Num struct {
	val    *big.Rat
	approx bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat converts a finite float exactly and marks the result approximate.
func NFloat(f float64) *Num {
	r := new(big.Rat)
	if r.SetFloat64(f) == nil {
		r.SetInt64(0)
	}
	return &Num{val: r, approx: true}
}

// NDecimal converts f through its shortest decimal representation, so that
// user input such as 0.1 becomes exactly 1/10.
func NDecimal(f float64) *Num {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return NFloat(f)
	}
	return &Num{val: r}
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }
func (n *Num) IsApprox() bool        { return n.approx }

func (n *Num) String() string {
	if n.approx && !n.val.IsInt() {
		return strconv.FormatFloat(n.Float64(), 'g', 10, 64)
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.approx || n.val.IsInt() {
		return n.String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func numAdd(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Add(a.val, b.val), approx: a.approx || b.approx}
}
func numSub(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Sub(a.val, b.val), approx: a.approx || b.approx}
}
func numMul(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Mul(a.val, b.val), approx: a.approx || b.approx}
}
func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val), approx: a.approx} }

// numRecip panics on zero; callers check first.
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val), approx: a.approx}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return &Num{val: r, approx: a.approx}
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// numPow raises a to an integer power. a must be nonzero when e < 0.
func numPow(a *Num, e int64) *Num {
	neg := e < 0
	if neg {
		e = -e
	}
	num := new(big.Int).Exp(a.val.Num(), big.NewInt(e), nil)
	den := new(big.Int).Exp(a.val.Denom(), big.NewInt(e), nil)
	r := &Num{val: new(big.Rat).SetFrac(num, den), approx: a.approx}
	if neg {
		return numRecip(r)
	}
	return r
}

// ============================================================
// Sym — symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func X() *Sym                 { return S(Var) }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return s.name }
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Const — named real constants (pi, e)
// ============================================================

type Const struct {
	name  string
	latex string
	val   float64
}

var (
	Pi = &Const{name: "pi", latex: `\pi`, val: 3.141592653589793}
	E  = &Const{name: "e", latex: "e", val: 2.718281828459045}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) LaTeX() string         { return c.latex }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Eval() (*Num, bool)    { return nil, false }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) Float64() float64      { return c.val }

// ============================================================
// Special — infinities and undefined results of exact arithmetic
// ============================================================

type specialKind int

const (
	specialPosInf specialKind = iota
	specialNegInf
	specialComplexInf
	specialNaN
)

// Special is produced by simplification when exact arithmetic leaves the
// reals: 1/0 is ComplexInfinity, 0/0 is NaN, ln(0) is -Infinity.
type Special struct{ kind specialKind }

var (
	Infinity        = &Special{kind: specialPosInf}
	NegInfinity     = &Special{kind: specialNegInf}
	ComplexInfinity = &Special{kind: specialComplexInf}
	NaN             = &Special{kind: specialNaN}
)

func (s *Special) Simplify() Expr        { return s }
func (s *Special) Sub(string, Expr) Expr { return s }
func (s *Special) Diff(string) Expr      { return NaN }
func (s *Special) Eval() (*Num, bool)    { return nil, false }
func (s *Special) Equal(other Expr) bool { o, ok := other.(*Special); return ok && s.kind == o.kind }
func (s *Special) exprType() string      { return "special" }

func (s *Special) String() string {
	switch s.kind {
	case specialPosInf:
		return "oo"
	case specialNegInf:
		return "-oo"
	case specialComplexInf:
		return "zoo"
	}
	return "nan"
}

func (s *Special) LaTeX() string {
	switch s.kind {
	case specialPosInf:
		return `\infty`
	case specialNegInf:
		return `-\infty`
	case specialComplexInf:
		return `\tilde{\infty}`
	}
	return `\text{undefined}`
}

func isSpecial(e Expr) (*Special, bool) {
	s, ok := e.(*Special)
	return s, ok
}

// ============================================================
// Helpers shared by the node types
// ============================================================

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

// DependsOn reports whether varName occurs free in e.
func DependsOn(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

// FreeSymbols returns the names of all symbols in e.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// Walk calls fn for e and every sub-expression, parents first.
func Walk(e Expr, fn func(Expr)) {
	fn(e)
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			Walk(t, fn)
		}
	case *Mul:
		for _, f := range v.factors {
			Walk(f, fn)
		}
	case *Pow:
		Walk(v.base, fn)
		Walk(v.exp, fn)
	case *Func:
		Walk(v.arg, fn)
	}
}
