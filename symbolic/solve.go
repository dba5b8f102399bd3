package symbolic

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sort"
)

// maxDivisorSearch bounds the integers whose divisors are enumerated by the
// rational root search.
const maxDivisorSearch = 1_000_000

// maxScanPoints bounds the grid of a numeric root scan. At the configured
// scan resolution it caps how wide an interval SolveRealIn accepts.
const maxScanPoints = 1_000_000

// window is the interval searched by the numeric root scan.
type window struct{ lo, hi float64 }

// SolveReal returns the real solutions of e = 0 in ascending order without
// duplicates. Roots in closed form are exact; the rest come from a numeric
// scan of [-ScanRange, ScanRange] and are approximate.
func (k *Kernel) SolveReal(ctx context.Context, e Expr) ([]Value, error) {
	return k.solveReal(ctx, e, window{-k.opts.ScanRange, k.opts.ScanRange})
}

// SolveRealIn returns the real solutions of e = 0 in the closed interval
// [lo, hi], ascending. The numeric scan covers exactly that interval at the
// configured resolution, so the result is the whole solution set there. An
// interval too wide to scan fails with ErrNotComputable.
func (k *Kernel) SolveRealIn(ctx context.Context, e Expr, lo, hi float64) ([]Value, error) {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo > hi {
		return nil, fmt.Errorf("%w: cannot scan [%g, %g]", ErrNotComputable, lo, hi)
	}
	roots, err := k.solveReal(ctx, e, window{lo, hi})
	if err != nil {
		return nil, err
	}
	tol := 1e-12 * math.Max(1, math.Max(math.Abs(lo), math.Abs(hi)))
	out := roots[:0]
	for _, r := range roots {
		if r.Re >= lo-tol && r.Re <= hi+tol {
			out = append(out, r)
		}
	}
	return out, nil
}

func (k *Kernel) solveReal(ctx context.Context, e Expr, w window) ([]Value, error) {
	e = e.Simplify()
	if isNumEqual(e, 0) {
		return nil, ErrUnsolvable
	}
	if !DependsOn(e, Var) {
		return []Value{}, nil
	}
	roots, err := k.solveExpr(ctx, e, w)
	if err != nil {
		return nil, err
	}
	vals := make([]Value, 0, len(roots))
	for _, r := range roots {
		v := ValueOf(r.Simplify())
		if v.Kind != KindReal || math.IsNaN(v.Re) || math.IsInf(v.Re, 0) {
			continue
		}
		// A root of one factor can lie outside the domain of another.
		if EvaluateAt(e, r).Kind != KindReal {
			continue
		}
		vals = append(vals, v)
	}
	sort.SliceStable(vals, func(i, j int) bool { return vals[i].Re < vals[j].Re })
	out := vals[:0]
	for _, v := range vals {
		if len(out) > 0 && math.Abs(out[len(out)-1].Re-v.Re) <= 1e-9*math.Max(1, math.Abs(v.Re)) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (k *Kernel) solveExpr(ctx context.Context, e Expr, w window) ([]Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !DependsOn(e, Var) {
		return nil, nil
	}

	num, den := Together(e)
	if DependsOn(den, Var) {
		roots, err := k.solveExpr(ctx, num, w)
		if err != nil {
			return nil, err
		}
		poles, err := k.solveExpr(ctx, den, w)
		if err != nil {
			return nil, err
		}
		return withoutPoles(roots, poles), nil
	}

	if coeffs, ok := AsPolynomial(e, Var); ok {
		return k.solvePoly(ctx, coeffs)
	}

	switch v := e.(type) {
	case *Mul:
		var out []Expr
		for _, f := range v.factors {
			roots, err := k.solveExpr(ctx, f, w)
			if err != nil {
				return nil, err
			}
			out = append(out, roots...)
		}
		return out, nil
	case *Pow:
		if en, ok := v.exp.(*Num); ok && en.IsPositive() {
			return k.solveExpr(ctx, v.base, w)
		}
	case *Func:
		switch v.name {
		case "exp", "cosh":
			return nil, nil
		case "ln":
			return k.solveExpr(ctx, SubOf(v.arg, N(1)), w)
		case "abs", "sign", "sinh", "tanh", "atan", "asin":
			return k.solveExpr(ctx, v.arg, w)
		}
	}
	return k.scanRoots(ctx, e, w)
}

func withoutPoles(roots, poles []Expr) []Expr {
	out := roots[:0]
	for _, r := range roots {
		rf, err := EvalFloat(r, Var, 0)
		if err != nil {
			continue
		}
		isPole := false
		for _, p := range poles {
			if pf, err := EvalFloat(p, Var, 0); err == nil && math.Abs(pf-rf) <= 1e-9*math.Max(1, math.Abs(rf)) {
				isPole = true
				break
			}
		}
		if !isPole {
			out = append(out, r)
		}
	}
	return out
}

// ============================================================
// Polynomials
// ============================================================

func (k *Kernel) solvePoly(ctx context.Context, coeffs []*Num) ([]Expr, error) {
	var roots []Expr
	// Factor out x^m.
	for len(coeffs) > 1 && coeffs[0].IsZero() {
		roots = append(roots, N(0))
		coeffs = coeffs[1:]
	}
	// Rational roots p/q with p | a0 and q | an, deflating as we go.
	for len(coeffs) > 3 || (len(coeffs) == 3 && !approxCoeffs(coeffs)) {
		r, ok := rationalRoot(coeffs)
		if !ok {
			break
		}
		roots = append(roots, r)
		coeffs = deflate(coeffs, r)
	}
	switch len(coeffs) - 1 {
	case 0:
		return roots, nil
	case 1:
		return append(roots, numNeg(numDiv(coeffs[0], coeffs[1]))), nil
	case 2:
		return append(roots, quadraticRoots(coeffs[2], coeffs[1], coeffs[0])...), nil
	case 3:
		return append(roots, cubicRoots(coeffs)...), nil
	}
	numeric, err := k.newtonRoots(ctx, PolyFromCoeffs(coeffs, Var), cauchyBound(coeffs))
	if err != nil {
		return nil, err
	}
	return append(roots, numeric...), nil
}

func approxCoeffs(coeffs []*Num) bool {
	for _, c := range coeffs {
		if c.approx {
			return true
		}
	}
	return false
}

// quadraticRoots solves a x^2 + b x + c = 0 exactly; irrational roots keep
// their square root symbolic.
func quadraticRoots(a, b, c *Num) []Expr {
	disc := numSub(numMul(b, b), numMul(N(4), numMul(a, c)))
	if disc.IsNegative() {
		return nil
	}
	twoA := numMul(N(2), a)
	center := numNeg(numDiv(b, twoA))
	if disc.IsZero() {
		return []Expr{center}
	}
	half := MulOf(numRecip(twoA), SqrtOf(disc))
	return []Expr{SubOf(center, half), AddOf(center, half)}
}

// cubicRoots is the trigonometric / Cardano solution for a cubic with no
// rational root; its results are approximate.
func cubicRoots(coeffs []*Num) []Expr {
	af, bf, cf, df := coeffs[3].Float64(), coeffs[2].Float64(), coeffs[1].Float64(), coeffs[0].Float64()
	p := (3*af*cf - bf*bf) / (3 * af * af)
	q := (2*bf*bf*bf - 9*af*bf*cf + 27*af*af*df) / (27 * af * af * af)
	offset := bf / (3 * af)
	disc := -(4*p*p*p + 27*q*q)

	var roots []Expr
	switch {
	case disc > 0:
		m := 2 * math.Sqrt(-p/3)
		theta := math.Acos(3*q/(p*m)) / 3
		for i := 0; i < 3; i++ {
			roots = append(roots, snapRoot(m*math.Cos(theta-2*math.Pi*float64(i)/3)-offset))
		}
	case disc == 0:
		if q == 0 {
			roots = []Expr{snapRoot(-offset)}
		} else {
			roots = []Expr{snapRoot(3*q/p - offset), snapRoot(-3*q/(2*p) - offset)}
		}
	default:
		a := math.Cbrt(-q/2 + math.Sqrt(q*q/4+p*p*p/27))
		b := 0.0
		if a != 0 {
			b = -p / (3 * a)
		}
		roots = []Expr{snapRoot(a + b - offset)}
	}
	return roots
}

func cauchyBound(coeffs []*Num) float64 {
	lead := math.Abs(coeffs[len(coeffs)-1].Float64())
	maxRatio := 0.0
	for _, c := range coeffs[:len(coeffs)-1] {
		maxRatio = math.Max(maxRatio, math.Abs(c.Float64())/lead)
	}
	return 1 + maxRatio
}

// rationalRoot finds one rational root of the polynomial, if any.
func rationalRoot(coeffs []*Num) (*Num, bool) {
	ints, ok := integerCoeffs(coeffs)
	if !ok {
		return nil, false
	}
	a0, an := ints[0], ints[len(ints)-1]
	if a0.Sign() == 0 {
		return N(0), true
	}
	ps, ok1 := divisors(a0)
	qs, ok2 := divisors(an)
	if !ok1 || !ok2 {
		return nil, false
	}
	for _, q := range qs {
		for _, p := range ps {
			for _, sign := range []int64{1, -1} {
				cand := &Num{val: new(big.Rat).SetFrac(new(big.Int).Mul(big.NewInt(sign), p), q)}
				if hornerExact(coeffs, cand).IsZero() {
					return cand, true
				}
			}
		}
	}
	return nil, false
}

func integerCoeffs(coeffs []*Num) ([]*big.Int, bool) {
	lcm := big.NewInt(1)
	for _, c := range coeffs {
		if c.approx {
			return nil, false
		}
		d := c.val.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		scaled := new(big.Rat).Mul(c.val, new(big.Rat).SetInt(lcm))
		out[i] = new(big.Int).Set(scaled.Num())
	}
	return out, true
}

func divisors(n *big.Int) ([]*big.Int, bool) {
	abs := new(big.Int).Abs(n)
	if !abs.IsInt64() || abs.Int64() > maxDivisorSearch {
		return nil, false
	}
	v := abs.Int64()
	var out []*big.Int
	for d := int64(1); d*d <= v; d++ {
		if v%d == 0 {
			out = append(out, big.NewInt(d))
			if d*d != v {
				out = append(out, big.NewInt(v/d))
			}
		}
	}
	return out, true
}

func hornerExact(coeffs []*Num, x *Num) *Num {
	acc := N(0)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = numAdd(numMul(acc, x), coeffs[i])
	}
	return acc
}

// deflate divides the polynomial by (x - r) with synthetic division.
func deflate(coeffs []*Num, r *Num) []*Num {
	n := len(coeffs) - 1
	out := make([]*Num, n)
	carry := N(0)
	for i := n; i >= 1; i-- {
		carry = numAdd(numMul(carry, r), coeffs[i])
		out[i-1] = carry
	}
	return out
}

// ============================================================
// Numeric root finding
// ============================================================

// newtonRoots runs Newton's method from evenly spaced starts in
// [-bound, bound].
func (k *Kernel) newtonRoots(ctx context.Context, e Expr, bound float64) ([]Expr, error) {
	de := Diff(e, Var)
	const starts, maxIter = 200, 100
	var found []float64
	for i := 0; i <= starts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		x := -bound + 2*bound*float64(i)/starts
		for iter := 0; iter < maxIter; iter++ {
			fx, err := EvalFloat(e, Var, x)
			if err != nil {
				break
			}
			if math.Abs(fx) < 1e-12 {
				found = appendUnique(found, x)
				break
			}
			dfx, err := EvalFloat(de, Var, x)
			if err != nil || math.Abs(dfx) < 1e-15 {
				break
			}
			x -= fx / dfx
			if math.Abs(x) > bound*10 {
				break
			}
		}
	}
	out := make([]Expr, len(found))
	for i, r := range found {
		out[i] = snapRoot(r)
	}
	return out, nil
}

// scanRoots brackets sign changes on a grid over w and bisects them. The
// grid spacing is the one ScanPoints gives over [-ScanRange, ScanRange]. A
// bracket whose midpoint residual stays large is a pole, not a root.
func (k *Kernel) scanRoots(ctx context.Context, e Expr, w window) ([]Expr, error) {
	lo, hi := w.lo, w.hi
	step := 2 * k.opts.ScanRange / float64(k.opts.ScanPoints-1)
	cells := math.Ceil((hi-lo)/step - 1e-9)
	if cells+1 > maxScanPoints {
		return nil, fmt.Errorf("%w: [%g, %g] is too wide for a root scan", ErrNotComputable, lo, hi)
	}
	n := int(cells) + 1
	if n < 2 {
		n = 2
	}
	step = (hi - lo) / float64(n-1)
	f := func(x float64) (float64, bool) {
		v, err := EvalFloat(e, Var, x)
		return v, err == nil
	}
	var found []float64
	prevX := lo
	prevY, prevOK := f(lo)
	if prevOK && prevY == 0 {
		found = appendUnique(found, lo)
	}
	for i := 1; i < n; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		x := lo + float64(i)*step
		if i == n-1 {
			x = hi
		}
		y, ok := f(x)
		switch {
		case ok && y == 0:
			found = appendUnique(found, x)
		case ok && prevOK && prevY != 0 && (y > 0) != (prevY > 0):
			if r, isRoot := bisect(f, prevX, x, prevY, k.opts.RootTolerance); isRoot {
				found = appendUnique(found, r)
			}
		}
		prevX, prevY, prevOK = x, y, ok
	}
	out := make([]Expr, len(found))
	for i, r := range found {
		out[i] = snapRoot(r)
	}
	return out, nil
}

func bisect(f func(float64) (float64, bool), a, b, fa, tol float64) (float64, bool) {
	for i := 0; i < 100; i++ {
		m := (a + b) / 2
		fm, ok := f(m)
		if !ok {
			return 0, false
		}
		if fm == 0 {
			return m, true
		}
		if (fm > 0) == (fa > 0) {
			a, fa = m, fm
		} else {
			b = m
		}
	}
	m := (a + b) / 2
	fm, ok := f(m)
	return m, ok && math.Abs(fm) <= tol
}

func appendUnique(xs []float64, x float64) []float64 {
	for _, v := range xs {
		if math.Abs(v-x) <= 1e-9*math.Max(1, math.Abs(x)) {
			return xs
		}
	}
	return append(xs, x)
}

// snapRoot turns a numeric root into an exact one when it is within
// rounding of an integer or of a simple rational multiple of pi.
func snapRoot(r float64) Expr {
	const tol = 1e-9
	if i := math.Round(r); math.Abs(r-i) < tol {
		return N(int64(i))
	}
	for _, q := range []int64{1, 2, 3, 4, 6} {
		k := math.Round(r * float64(q) / math.Pi)
		if k != 0 && math.Abs(r-k*math.Pi/float64(q)) < tol {
			return MulOf(F(int64(k), q), Pi)
		}
	}
	return NFloat(r)
}
