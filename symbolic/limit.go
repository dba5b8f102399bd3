package symbolic

import (
	"context"
	"fmt"
	"math"
)

// Direction selects which side a limit approaches from.
type Direction int

const (
	TwoSided Direction = iota
	FromLeft
	FromRight
)

func (d Direction) String() string {
	switch d {
	case FromLeft:
		return "-"
	case FromRight:
		return "+"
	}
	return "+-"
}

// probeSteps are the offsets used by numeric limit probing, coarse to fine.
var probeSteps = []float64{1e-1, 1e-2, 1e-3, 1e-4, 1e-5, 1e-6, 1e-7, 1e-8, 1e-9}

const (
	probeConvergence = 1e-6
	probeDivergence  = 1e6
	snapTolerance    = 1e-7
)

// Limit computes the limit of e as x approaches p. A two-sided limit that
// the sides disagree on is indeterminate, not an error; ErrNoLimit is
// returned only when a side could not be determined at all.
func (k *Kernel) Limit(ctx context.Context, e, p Expr, dir Direction) (Value, error) {
	e, p = e.Simplify(), p.Simplify()
	if _, ok := isSpecial(p); ok {
		return Value{Kind: KindIndeterminate}, fmt.Errorf("%w: limit point %s is not finite", ErrNoLimit, p)
	}
	if dir != TwoSided {
		return k.oneSided(ctx, e, p, dir, 0)
	}
	left, err := k.oneSided(ctx, e, p, FromLeft, 0)
	if err != nil {
		return Value{Kind: KindIndeterminate}, err
	}
	right, err := k.oneSided(ctx, e, p, FromRight, 0)
	if err != nil {
		return Value{Kind: KindIndeterminate}, err
	}
	if sameLimit(left, right) {
		return left, nil
	}
	return Value{Kind: KindIndeterminate}, nil
}

func sameLimit(a, b Value) bool {
	switch {
	case a.Kind != b.Kind:
		return false
	case a.Kind == KindPosInfinity || a.Kind == KindNegInfinity:
		return true
	case a.Kind == KindReal:
		return math.Abs(a.Re-b.Re) <= probeConvergence*math.Max(1, math.Abs(a.Re))
	}
	return false
}

func (k *Kernel) oneSided(ctx context.Context, e, p Expr, dir Direction, depth int) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{Kind: KindIndeterminate}, err
	}
	if !DependsOn(e, Var) {
		return ValueOf(e), nil
	}
	var direct Value
	if !hasJumpFunc(e) {
		direct = EvaluateAt(e, p)
		if direct.Kind == KindReal {
			return direct, nil
		}
	}

	num, den := Together(e)
	if DependsOn(den, Var) {
		dv := EvaluateAt(den, p)
		nv := EvaluateAt(num, p)
		if isRealZero(dv) {
			switch {
			case isRealZero(nv) && depth < k.opts.MaxLHopital:
				// 0/0: L'Hôpital's rule.
				next := DivOf(Diff(num, Var), Diff(den, Var))
				return k.oneSided(ctx, next, p, dir, depth+1)
			case nv.Kind == KindReal:
				return k.probeSign(e, p, dir), nil
			}
		}
	}
	v, vals, err := k.probe(ctx, e, p, dir)
	if err == nil && v.Kind == KindIndeterminate && monotoneToward(vals, direct.Kind) {
		// ln(x) at 0+ diverges too slowly for the probe but substitution
		// already gave the signed infinity.
		return direct, nil
	}
	return v, err
}

func monotoneToward(vals []float64, kind Kind) bool {
	if len(vals) < 3 || (kind != KindPosInfinity && kind != KindNegInfinity) {
		return false
	}
	for i := 1; i < len(vals); i++ {
		if kind == KindPosInfinity && vals[i] <= vals[i-1] {
			return false
		}
		if kind == KindNegInfinity && vals[i] >= vals[i-1] {
			return false
		}
	}
	return true
}

func isRealZero(v Value) bool {
	if v.Kind != KindReal {
		return false
	}
	if n, ok := v.Exact.(*Num); ok {
		return n.IsZero()
	}
	return v.Re == 0
}

// hasJumpFunc reports whether e contains a piecewise-constant function, for
// which the value at a point says nothing about the one-sided limits.
func hasJumpFunc(e Expr) bool {
	found := false
	Walk(e, func(sub Expr) {
		if f, ok := sub.(*Func); ok {
			switch f.name {
			case "floor", "ceil", "sign":
				found = true
			}
		}
	})
	return found
}

// probeSign resolves c/0 to a signed infinity from the side of approach.
func (k *Kernel) probeSign(e, p Expr, dir Direction) Value {
	pf, err := EvalFloat(p, Var, 0)
	if err != nil {
		return Value{Kind: KindIndeterminate}
	}
	side := sideSign(dir)
	for _, h := range []float64{1e-9, 1e-8, 1e-7, 1e-6} {
		v, err := EvalFloat(e, Var, pf+side*h)
		if err != nil || v == 0 {
			continue
		}
		if v > 0 {
			return ValueOf(Infinity)
		}
		return ValueOf(NegInfinity)
	}
	return Value{Kind: KindIndeterminate}
}

func sideSign(dir Direction) float64 {
	if dir == FromLeft {
		return -1
	}
	return 1
}

// probe is the last resort: evaluate e ever closer to p and watch the
// sequence converge or blow up. Converged values are snapped to integers
// when they are within snapTolerance of one and are marked approximate
// otherwise.
func (k *Kernel) probe(ctx context.Context, e, p Expr, dir Direction) (Value, []float64, error) {
	pf, err := EvalFloat(p, Var, 0)
	if err != nil {
		return Value{Kind: KindIndeterminate}, nil, nil
	}
	side := sideSign(dir)
	vals := make([]float64, 0, len(probeSteps))
	for _, h := range probeSteps {
		if err := ctx.Err(); err != nil {
			return Value{Kind: KindIndeterminate}, nil, err
		}
		v, err := EvalFloat(e, Var, pf+side*h)
		if err != nil {
			continue
		}
		vals = append(vals, v)
	}
	n := len(vals)
	if n < 3 {
		return Value{Kind: KindIndeterminate}, vals, nil
	}
	last, prev, prev2 := vals[n-1], vals[n-2], vals[n-3]
	if math.Abs(last) > probeDivergence && math.Abs(last) > math.Abs(prev) && math.Abs(prev) > math.Abs(prev2) {
		if last > 0 {
			return ValueOf(Infinity), vals, nil
		}
		return ValueOf(NegInfinity), vals, nil
	}
	if math.Abs(last-prev) > probeConvergence*math.Max(1, math.Abs(last)) {
		return Value{Kind: KindIndeterminate}, vals, nil
	}
	if r := math.Round(last); math.Abs(last-r) < snapTolerance {
		return ValueOf(N(int64(r))), vals, nil
	}
	return ValueOf(NFloat(math.Round(last*1e9) / 1e9)), vals, nil
}
