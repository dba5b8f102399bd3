package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/njchilds90/calctool/symbolic"
)

// inflectionTolerance is how close to zero f'' must be to count as zero
// when only a float is available.
const inflectionTolerance = 1e-12

func (s *session) criticalPoints(f symbolic.Expr) (report, error) {
	d, err := s.p.Differentiate(s.ctx, f)
	if err != nil {
		return report{}, s.fatal("differentiate", err)
	}
	if d, err = s.p.Simplify(s.ctx, d); err != nil {
		return report{}, s.fatal("simplify", err)
	}
	d2, err := s.p.Differentiate(s.ctx, d)
	if err != nil {
		return report{}, s.fatal("differentiate", err)
	}

	var n narration
	n.heading("f′(x) = %s", d)
	n.statement("Solve f′(x) = 0")

	roots, err := s.p.SolveReal(s.ctx, d)
	switch {
	case errors.Is(err, symbolic.ErrUnsolvable):
		n.statement("f′ is identically zero: f is constant and has no isolated critical points")
		roots = nil
	case err != nil:
		if ferr := s.local("solve", err); ferr != nil {
			return report{}, ferr
		}
		n.statement("The equation could not be solved over the reals")
		roots = nil
	case len(roots) == 0:
		n.statement("f′(x) = 0 has no real solutions")
	}

	points := make([]CriticalPoint, 0, len(roots))
	for _, r := range roots {
		if r.Kind != symbolic.KindReal || math.IsNaN(r.Re) || math.IsInf(r.Re, 0) {
			continue
		}
		y, err := s.value(s.p.EvaluateAt(s.ctx, f, r.Exact))
		if err != nil {
			return report{}, err
		}
		yf, ok := y.f.Get()
		if !ok {
			continue
		}
		curv, err := s.value(s.p.EvaluateAt(s.ctx, d2, r.Exact))
		if err != nil {
			return report{}, err
		}
		points = append(points, CriticalPoint{X: r.Re, Y: yf, Kind: classify(curv), XText: r.String()})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })

	if len(points) > 0 {
		xs := make([]string, len(points))
		for i, p := range points {
			xs[i] = "x = " + p.XText
		}
		n.statement("Roots: %s", strings.Join(xs, ", "))
	}
	parts := make([]string, len(points))
	for i, p := range points {
		n.conclusion("x = %s: f″ %s, %s at (%s, %s)", p.XText, curvatureText(p.Kind), p.Kind, p.XText, formatFloat(p.Y))
		parts[i] = fmt.Sprintf("x = %s (%s)", p.XText, p.Kind)
	}

	text := "no critical points"
	if len(parts) > 0 {
		text = strings.Join(parts, ", ")
	}

	lo, hi := -s.settings.WindowHalfWidth, s.settings.WindowHalfWidth
	if len(points) > 0 {
		lo = math.Min(lo, points[0].X-1)
		hi = math.Max(hi, points[len(points)-1].X+1)
	}
	series, err := s.series(f, lo, hi)
	if err != nil {
		return report{}, err
	}

	return report{
		text:  text,
		steps: n,
		data:  CriticalPointsData{Derivative: d.String(), Points: points, Function: series},
	}, nil
}

// classify reads the sign of f'' at a critical point.
func classify(curv exact) PointKind {
	if !curv.ok || curv.v.Kind != symbolic.KindReal {
		return Indeterminate
	}
	if num, isNum := curv.v.Exact.(*symbolic.Num); isNum && num.IsZero() {
		return Inflection
	}
	c, ok := curv.f.Get()
	switch {
	case !ok:
		return Indeterminate
	case math.Abs(c) <= inflectionTolerance:
		return Inflection
	case c > 0:
		return Minimum
	}
	return Maximum
}

func curvatureText(k PointKind) string {
	switch k {
	case Minimum:
		return "> 0"
	case Maximum:
		return "< 0"
	case Inflection:
		return "= 0"
	}
	return "is undefined"
}
