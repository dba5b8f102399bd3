package symbolic

import (
	"fmt"
	"math/big"
)

// ============================================================
// Func — named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr   { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr   { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr   { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr   { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr    { return funcOf("ln", arg).Simplify() }
func SqrtOf(arg Expr) Expr  { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr   { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr  { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr  { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr  { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr  { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr  { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr  { return funcOf("tanh", arg).Simplify() }
func FloorOf(arg Expr) Expr { return funcOf("floor", arg).Simplify() }
func CeilOf(arg Expr) Expr  { return funcOf("ceil", arg).Simplify() }
func SignOf(arg Expr) Expr  { return funcOf("sign", arg).Simplify() }

// knownFuncs maps every function name the parser accepts to its constructor.
var knownFuncs = map[string]func(Expr) Expr{
	"sin": SinOf, "cos": CosOf, "tan": TanOf,
	"exp": ExpOf, "ln": LnOf, "log": LnOf, "sqrt": SqrtOf,
	"abs": AbsOf, "asin": AsinOf, "acos": AcosOf, "atan": AtanOf,
	"sinh": SinhOf, "cosh": CoshOf, "tanh": TanhOf,
	"floor": FloorOf, "ceil": CeilOf, "sign": SignOf,
}

// Simplify applies exact special values only. sin(1) stays sin(1); floats
// appear only when a caller evaluates numerically.
func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if s, ok := isSpecial(arg); ok {
		return funcSpecial(f.name, s)
	}
	n, argIsNum := arg.(*Num)
	switch f.name {
	case "sin":
		if isNumEqual(arg, 0) || isPiMultiple(arg) {
			return N(0)
		}
	case "cos":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if arg.Equal(Pi) {
			return N(-1)
		}
	case "tan":
		if isNumEqual(arg, 0) || isPiMultiple(arg) {
			return N(0)
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "ln":
		if isNumEqual(arg, 1) {
			return N(0)
		}
		if isNumEqual(arg, 0) {
			return NegInfinity
		}
		if arg.Equal(E) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "abs":
		if argIsNum {
			return numAbs(n)
		}
		if _, ok := arg.(*Const); ok {
			return arg
		}
		if inner, ok := arg.(*Func); ok && inner.name == "abs" {
			return inner
		}
		if m, ok := arg.(*Mul); ok {
			if c, rest := splitCoeff(m); !c.IsOne() {
				return MulOf(numAbs(c), AbsOf(rest))
			}
		}
		if p, ok := arg.(*Pow); ok {
			if en, ok2 := p.exp.(*Num); ok2 && en.IsInteger() && isEven(en) {
				return arg
			}
		}
	case "floor":
		if argIsNum {
			return &Num{val: new(big.Rat).SetInt(ratFloor(n.val)), approx: n.approx}
		}
	case "ceil":
		if argIsNum {
			fl := ratFloor(n.val)
			if !n.val.IsInt() {
				fl.Add(fl, big.NewInt(1))
			}
			return &Num{val: new(big.Rat).SetInt(fl), approx: n.approx}
		}
	case "sign":
		if argIsNum {
			return N(int64(n.val.Sign()))
		}
	case "asin", "atan", "sinh", "tanh":
		if isNumEqual(arg, 0) {
			return N(0)
		}
	case "cosh":
		if isNumEqual(arg, 0) {
			return N(1)
		}
	case "acos":
		if isNumEqual(arg, 1) {
			return N(0)
		}
	}
	return &Func{name: f.name, arg: arg}
}

func funcSpecial(name string, s *Special) Expr {
	switch {
	case s.kind == specialNaN || s.kind == specialComplexInf:
		return NaN
	case name == "exp" && s.kind == specialPosInf:
		return Infinity
	case name == "exp" && s.kind == specialNegInf:
		return N(0)
	case name == "ln" && s.kind == specialPosInf:
		return Infinity
	case name == "abs":
		return Infinity
	case name == "sign" && s.kind == specialPosInf:
		return N(1)
	case name == "sign" && s.kind == specialNegInf:
		return N(-1)
	}
	return NaN
}

func isPiMultiple(e Expr) bool {
	if e.Equal(Pi) {
		return true
	}
	m, ok := e.(*Mul)
	if !ok || len(m.factors) != 2 {
		return false
	}
	c, ok := m.factors[0].(*Num)
	return ok && c.IsInteger() && m.factors[1].Equal(Pi)
}

func isEven(n *Num) bool {
	return new(big.Int).Rem(n.val.Num(), big.NewInt(2)).Sign() == 0
}

func ratFloor(r *big.Rat) *big.Int {
	q := new(big.Int)
	m := new(big.Int)
	q.DivMod(r.Num(), r.Denom(), m)
	return q
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "floor":
		return "\\lfloor " + f.arg.LaTeX() + " \\rfloor"
	case "ceil":
		return "\\lceil " + f.arg.LaTeX() + " \\rceil"
	case "sign":
		return "\\operatorname{sign}\\left(" + f.arg.LaTeX() + "\\right)"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	case "abs":
		outer = SignOf(f.arg)
	case "floor", "ceil", "sign":
		// Piecewise constant away from its jumps.
		return N(0)
	default:
		// Every name in knownFuncs has a rule above.
		panic(fmt.Sprintf("symbolic: no derivative rule for %s", f.name))
	}
	return MulOf(outer, du)
}

// Eval succeeds only for exact results, such as floor(5/2) or abs(-3).
func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	v, ok := funcOf(f.name, n).Simplify().(*Num)
	return v, ok
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }
