package symbolic

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// ============================================================
// Integration (rule based)
// ============================================================

// Integrate returns an antiderivative of e with respect to x, without the
// constant of integration.
func Integrate(e Expr) (Expr, error) {
	e = e.Simplify()
	if r, ok := integrate(e); ok {
		return r.Simplify(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoAntiderivative, e)
}

func integrate(e Expr) (Expr, bool) {
	if !DependsOn(e, Var) {
		return MulOf(e, X()), true
	}
	switch v := e.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(X(), N(2))), true
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			it, ok := integrate(t)
			if !ok {
				return nil, false
			}
			terms[i] = it
		}
		return AddOf(terms...), true
	case *Mul:
		var consts, deps []Expr
		for _, f := range v.factors {
			if DependsOn(f, Var) {
				deps = append(deps, f)
			} else {
				consts = append(consts, f)
			}
		}
		if len(deps) == 1 && len(consts) > 0 {
			inner, ok := integrate(deps[0])
			if !ok {
				return nil, false
			}
			return MulOf(append(consts, inner)...), true
		}
		return integrateExpanded(e)
	case *Pow:
		return integratePow(v)
	case *Func:
		return integrateFunc(v)
	}
	return nil, false
}

// integrateExpanded retries after multiplying out products and powers.
func integrateExpanded(e Expr) (Expr, bool) {
	expanded := Expand(e)
	if expanded.Equal(e) {
		return nil, false
	}
	return integrate(expanded)
}

func integratePow(p *Pow) (Expr, bool) {
	en, expIsNum := p.exp.(*Num)
	if expIsNum {
		if a, _, ok := linearParts(p.base); ok {
			if en.IsNegOne() {
				// 1/(a x + b) → ln|a x + b| / a
				return MulOf(numRecip(a), LnOf(AbsOf(p.base))), true
			}
			next := numAdd(en, N(1))
			return MulOf(numRecip(numMul(a, next)), PowOf(p.base, next)), true
		}
		if en.IsInteger() && en.IsPositive() {
			return integrateExpanded(p)
		}
		return nil, false
	}
	// c^(a x + b) → c^(a x + b) / (a ln c)
	if !DependsOn(p.base, Var) {
		if a, _, ok := linearParts(p.exp); ok {
			return MulOf(p, PowOf(MulOf(a, LnOf(p.base)), N(-1))), true
		}
	}
	return nil, false
}

func integrateFunc(f *Func) (Expr, bool) {
	a, _, ok := linearParts(f.arg)
	if !ok {
		return nil, false
	}
	u := f.arg
	inv := numRecip(a)
	oneMinusU2 := SubOf(N(1), PowOf(u, N(2)))
	var r Expr
	switch f.name {
	case "sin":
		r = MulOf(N(-1), CosOf(u))
	case "cos":
		r = SinOf(u)
	case "tan":
		r = MulOf(N(-1), LnOf(AbsOf(CosOf(u))))
	case "exp":
		r = ExpOf(u)
	case "ln":
		r = SubOf(MulOf(u, LnOf(u)), u)
	case "sinh":
		r = CoshOf(u)
	case "cosh":
		r = SinhOf(u)
	case "tanh":
		r = LnOf(CoshOf(u))
	case "asin":
		r = AddOf(MulOf(u, AsinOf(u)), SqrtOf(oneMinusU2))
	case "acos":
		r = SubOf(MulOf(u, AcosOf(u)), SqrtOf(oneMinusU2))
	case "atan":
		r = SubOf(MulOf(u, AtanOf(u)), MulOf(F(1, 2), LnOf(AddOf(N(1), PowOf(u, N(2))))))
	case "abs":
		r = MulOf(F(1, 2), u, AbsOf(u))
	default:
		return nil, false
	}
	return MulOf(inv, r), true
}

// linearParts matches a x + b with rational a != 0.
func linearParts(e Expr) (a, b *Num, ok bool) {
	coeffs, isPoly := AsPolynomial(e, Var)
	if !isPoly || len(coeffs) != 2 || coeffs[1].IsZero() {
		return nil, nil, false
	}
	return coeffs[1], coeffs[0], true
}

// ============================================================
// Definite integrals
// ============================================================

// DefiniteIntegral returns the exact value of the integral of e from a to b.
// An integrand c*abs(g) is split at the real roots of g, so the result is
// exact for areas. A pole of e strictly inside the interval fails with
// ErrDomain instead of producing a finite-looking value.
func (k *Kernel) DefiniteIntegral(ctx context.Context, e, a, b Expr) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	e = e.Simplify()
	af, err := EvalFloat(a, Var, 0)
	if err != nil {
		return Value{Kind: KindIndeterminate}, err
	}
	bf, err := EvalFloat(b, Var, 0)
	if err != nil {
		return Value{Kind: KindIndeterminate}, err
	}
	lo, hi := math.Min(af, bf), math.Max(af, bf)

	if den := Denominator(e); DependsOn(den, Var) {
		poles, err := k.SolveRealIn(ctx, den, lo, hi)
		if err != nil {
			return Value{Kind: KindIndeterminate}, err
		}
		for _, p := range poles {
			if p.Re > lo && p.Re < hi {
				return Value{Kind: KindIndeterminate}, fmt.Errorf("%w: integrand has a pole at x = %s", ErrDomain, p)
			}
		}
	}

	if c, g, ok := absForm(e); ok {
		return k.absIntegral(ctx, c, g, a, b, lo, hi)
	}

	antiderivative, err := Integrate(e)
	if err != nil {
		return Value{Kind: KindIndeterminate}, err
	}
	return ValueOf(SubOf(antiderivative.Sub(Var, b), antiderivative.Sub(Var, a))), nil
}

// absIntegral integrates c*|g| over [a, b] by summing |G(r_{i+1}) - G(r_i)|
// between consecutive roots of g. Without the full root set of g on [lo, hi]
// there is no exact area, and the error is returned.
func (k *Kernel) absIntegral(ctx context.Context, c, g, a, b Expr, lo, hi float64) (Value, error) {
	antiderivative, err := Integrate(g)
	if err != nil {
		return Value{Kind: KindIndeterminate}, err
	}
	roots, err := k.SolveRealIn(ctx, g, lo, hi)
	if err != nil {
		return Value{Kind: KindIndeterminate}, err
	}
	points := []Expr{a, b}
	for _, r := range roots {
		if r.Re > lo && r.Re < hi {
			points = append(points, r.Exact)
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		pi, _ := EvalFloat(points[i], Var, 0)
		pj, _ := EvalFloat(points[j], Var, 0)
		return pi < pj
	})

	total := Expr(N(0))
	for i := 0; i+1 < len(points); i++ {
		piece := SubOf(antiderivative.Sub(Var, points[i+1]), antiderivative.Sub(Var, points[i]))
		pv := ValueOf(piece)
		if pv.Kind != KindReal {
			return pv, nil
		}
		if pv.Re < 0 {
			piece = MulOf(N(-1), piece)
		}
		total = AddOf(total, piece)
	}
	// Reversed bounds integrate in the opposite orientation.
	if af, _ := EvalFloat(a, Var, 0); af > lo {
		total = MulOf(N(-1), total)
	}
	return ValueOf(MulOf(c, total)), nil
}

// absForm matches c*abs(g) with c constant.
func absForm(e Expr) (c, g Expr, ok bool) {
	if f, isFunc := e.(*Func); isFunc && f.name == "abs" {
		return N(1), f.arg, true
	}
	m, isMul := e.(*Mul)
	if !isMul {
		return nil, nil, false
	}
	var consts []Expr
	for _, f := range m.factors {
		if !DependsOn(f, Var) {
			consts = append(consts, f)
			continue
		}
		fn, isFunc := f.(*Func)
		if !isFunc || fn.name != "abs" || g != nil {
			return nil, nil, false
		}
		g = fn.arg
	}
	if g == nil {
		return nil, nil, false
	}
	return MulOf(consts...), g, true
}
