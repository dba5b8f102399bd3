package symbolic

import (
	"math"
	"math/big"
)

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// maxExactExponent bounds exact integer powers so that simplification never
// builds huge rationals.
const maxExactExponent = 256

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if s, ok := isSpecial(base); ok {
		return powSpecial(s, exp)
	}
	if _, ok := isSpecial(exp); ok {
		return NaN
	}

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}
	if c, ok := base.(*Const); ok && c.Equal(E) {
		return ExpOf(exp)
	}

	bn, baseIsNum := base.(*Num)
	if baseIsNum && bn.IsZero() {
		if !expIsNum {
			return &Pow{base: base, exp: exp}
		}
		if en.IsPositive() {
			return N(0)
		}
		return ComplexInfinity
	}
	if baseIsNum && bn.IsOne() {
		return N(1)
	}
	if baseIsNum && expIsNum {
		if r, ok := ratPow(bn, en); ok {
			return r
		}
		return &Pow{base: base, exp: exp}
	}

	if expIsNum && en.IsInteger() {
		switch inner := base.(type) {
		case *Pow:
			return PowOf(inner.base, MulOf(inner.exp, en))
		case *Mul:
			fs := make([]Expr, len(inner.factors))
			for i, f := range inner.factors {
				fs[i] = PowOf(f, en)
			}
			return MulOf(fs...)
		}
	}
	return &Pow{base: base, exp: exp}
}

func powSpecial(s *Special, exp Expr) Expr {
	en, ok := exp.(*Num)
	if !ok {
		return NaN
	}
	switch {
	case en.IsZero():
		return N(1)
	case s.kind == specialNaN:
		return NaN
	case en.IsNegative():
		return N(0)
	case s.kind == specialComplexInf:
		return ComplexInfinity
	case s.kind == specialPosInf:
		return Infinity
	}
	// (-oo)^n
	if !en.IsInteger() {
		return ComplexInfinity
	}
	if new(big.Int).Rem(en.val.Num(), big.NewInt(2)).Sign() == 0 {
		return Infinity
	}
	return NegInfinity
}

// ratPow computes b^e exactly when the result is rational. Rational
// exponents p/q succeed only when b has an exact q-th root.
func ratPow(b, e *Num) (*Num, bool) {
	if e.IsInteger() {
		if !e.val.Num().IsInt64() {
			return nil, false
		}
		k := e.val.Num().Int64()
		if k > maxExactExponent || k < -maxExactExponent {
			return nil, false
		}
		if b.IsZero() && k < 0 {
			return nil, false
		}
		return numPow(b, k), true
	}
	if b.IsNegative() {
		return nil, false
	}
	if b.approx {
		v := math.Pow(b.Float64(), e.Float64())
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return NFloat(v), true
	}
	pNum, qNum := e.val.Num(), e.val.Denom()
	if !pNum.IsInt64() || !qNum.IsInt64() || qNum.Int64() > 64 {
		return nil, false
	}
	numRoot, ok1 := intRoot(b.val.Num(), qNum.Int64())
	denRoot, ok2 := intRoot(b.val.Denom(), qNum.Int64())
	if !ok1 || !ok2 {
		return nil, false
	}
	root := &Num{val: new(big.Rat).SetFrac(numRoot, denRoot)}
	k := pNum.Int64()
	if k > maxExactExponent || k < -maxExactExponent {
		return nil, false
	}
	return numPow(root, k), true
}

// intRoot returns the exact q-th root of a non-negative integer.
func intRoot(n *big.Int, q int64) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	if q == 2 {
		s := new(big.Int).Sqrt(n)
		return s, new(big.Int).Mul(s, s).Cmp(n) == 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	if math.IsInf(f, 0) {
		return nil, false
	}
	est := math.Round(math.Pow(f, 1/float64(q)))
	qBig := big.NewInt(q)
	for _, c := range []float64{est - 1, est, est + 1} {
		if c < 0 {
			continue
		}
		cand := big.NewInt(int64(c))
		if new(big.Int).Exp(cand, qBig, nil).Cmp(n) == 0 {
			return cand, true
		}
	}
	return nil, false
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok {
		if en.IsNegative() {
			return "1/" + denomString(PowOf(p.base, numNeg(en)))
		}
		if en.Equal(F(1, 2)) {
			return "sqrt(" + p.base.String() + ")"
		}
	}
	baseStr := p.base.String()
	if needsPowParens(p.base) {
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	if !isAtomicExponent(p.exp) {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok {
		if en.IsNegative() {
			return `\frac{1}{` + PowOf(p.base, numNeg(en)).LaTeX() + `}`
		}
		if en.Equal(F(1, 2)) {
			return `\sqrt{` + p.base.LaTeX() + `}`
		}
	}
	baseStr := p.base.LaTeX()
	if needsPowParens(p.base) {
		baseStr = `\left(` + baseStr + `\right)`
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func needsPowParens(base Expr) bool {
	switch v := base.(type) {
	case *Add, *Mul, *Pow, *Special:
		return true
	case *Num:
		return v.IsNegative() || !v.IsInteger()
	}
	return false
}

func isAtomicExponent(e Expr) bool {
	switch v := e.(type) {
	case *Sym, *Const:
		return true
	case *Num:
		return v.IsInteger() && !v.IsNegative()
	}
	return false
}

func denomString(e Expr) string {
	switch e.(type) {
	case *Add, *Mul:
		return "(" + e.String() + ")"
	}
	return e.String()
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if !DependsOn(p.exp, varName) {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	if !DependsOn(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

// Eval succeeds only when the power is an exact rational.
func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if b.IsZero() && !e.IsPositive() {
		return nil, false
	}
	return ratPow(b, e)
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) Base() Expr       { return p.base }
func (p *Pow) ExpExpr() Expr    { return p.exp }
