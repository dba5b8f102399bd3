package sampling

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/njchilds90/calctool/symbolic"
)

// RootFinder is the slice of the symbolic kernel the detector needs.
type RootFinder interface {
	Denominator(ctx context.Context, e symbolic.Expr) (symbolic.Expr, error)
	SolveRealIn(ctx context.Context, e symbolic.Expr, lo, hi float64) ([]symbolic.Value, error)
}

// DetectSingularities returns the real zeros of the denominator of e in
// [lo, hi], ascending and deduplicated. An expression with a constant
// denominator has none (an empty, non-nil slice). A nil slice with a nil
// error means the denominator could not be solved over the window and the
// caller has no singularity set.
//
// Only rational denominators are inspected: the domain edge of ln(x) or the
// poles of tan(x) are not reported here.
func DetectSingularities(ctx context.Context, finder RootFinder, e symbolic.Expr, lo, hi float64) ([]float64, error) {
	den, err := finder.Denominator(ctx, e)
	if err != nil {
		return nil, err
	}
	if !symbolic.DependsOn(den, symbolic.Var) {
		return []float64{}, nil
	}
	roots, err := finder.SolveRealIn(ctx, den, lo, hi)
	if err != nil {
		if errors.Is(err, symbolic.ErrNotComputable) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]float64, 0, len(roots))
	for _, r := range roots {
		if r.Kind != symbolic.KindReal || math.IsNaN(r.Re) || math.IsInf(r.Re, 0) {
			continue
		}
		out = append(out, r.Re)
	}
	sort.Float64s(out)
	deduped := out[:0]
	for i, s := range out {
		if i > 0 && math.Abs(s-deduped[len(deduped)-1]) <= 1e-12*math.Max(1, math.Abs(s)) {
			continue
		}
		deduped = append(deduped, s)
	}
	return deduped, nil
}

// StrictlyInside returns the singularities in the open interval (lo, hi).
func StrictlyInside(singularities []float64, lo, hi float64) []float64 {
	var out []float64
	for _, s := range singularities {
		if s > lo && s < hi {
			out = append(out, s)
		}
	}
	return out
}
