package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/njchilds90/calctool/numeric"
	"github.com/njchilds90/calctool/sampling"
	"github.com/njchilds90/calctool/symbolic"
)

// integral computes the exact net and geometric integrals of f from a to b
// and a left-endpoint Riemann sum. Bounds keep their order: a > b flips the
// sign of the net result.
func (s *session) integral(f symbolic.Expr, a, b float64, rects int) (report, error) {
	lo, hi := math.Min(a, b), math.Max(a, b)
	ea, eb := point(a), point(b)
	data := IntegralData{A: a, B: b, Net: numeric.Undefined, Geometric: numeric.Undefined}

	var n narration
	n.heading("Integrate f(x) = %s from %s to %s", f, ea, eb)

	F, err := s.p.IndefiniteIntegral(s.ctx, f)
	switch {
	case err == nil:
		data.Antiderivative = F.String()
		n.statement("Antiderivative: F(x) = %s", F)
	default:
		if ferr := s.local("integrate", err); ferr != nil {
			return report{}, ferr
		}
		n.statement("No elementary antiderivative was found")
	}

	sing, err := s.singularities(f, lo, hi)
	if err != nil {
		return report{}, err
	}
	data.Singularities = sampling.StrictlyInside(sing, lo, hi)
	if data.Singularities == nil {
		data.Singularities = []float64{}
	}

	if len(data.Singularities) > 0 {
		at := make([]string, len(data.Singularities))
		for i, x := range data.Singularities {
			at[i] = "x = " + formatFloat(x)
		}
		n.statement("%v: f is undefined at %s", ErrSingularityInDomain, strings.Join(at, ", "))
		n.conclusion("Net integral and geometric area are undefined")
		data.NetText, data.GeometricText = "undefined", "undefined"
	} else {
		net, err := s.value(s.p.DefiniteIntegral(s.ctx, f, ea, eb))
		if err != nil {
			return report{}, err
		}
		area, err := s.value(s.p.DefiniteIntegral(s.ctx, symbolic.AbsOf(f), point(lo), point(hi)))
		if err != nil {
			return report{}, err
		}
		data.Net, data.Geometric = net.f, area.f
		data.NetText, data.GeometricText = net.text(), area.text()
		if data.Antiderivative != "" {
			n.statement("Net integral: F(%s) - F(%s) = %s", eb, ea, data.NetText)
		} else {
			n.statement("Net integral: %s", data.NetText)
		}
		n.statement("Geometric area: integral of |f(x)| over [%s, %s] = %s", formatFloat(lo), formatFloat(hi), data.GeometricText)
		if net.f.Defined() && area.f.Defined() && !numeric.ApproxEqual(net.f, area.f, 1e-12) {
			n.conclusion("Net integral %s differs from geometric area %s: the net integral is signed by the axis and by the direction of integration", data.NetText, data.GeometricText)
		} else {
			n.conclusion("Net integral = %s, geometric area = %s", data.NetText, data.GeometricText)
		}
	}

	sum, err := sampling.Riemann(s.evaluator(f), a, b, rects)
	if err != nil {
		return report{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	data.Riemann = sum
	n.statement("Riemann sum with %d left-endpoint rectangles: net ≈ %s, absolute ≈ %s", rects, formatFloat(sum.Net), formatFloat(sum.Absolute))

	m := math.Max(1, (hi-lo)/4)
	if data.Function, err = s.series(f, lo-m, hi+m); err != nil {
		return report{}, err
	}

	return report{
		text:  fmt.Sprintf("integral of f(x) from %s to %s = %s", ea, eb, data.NetText),
		latex: fmt.Sprintf(`\int_{%s}^{%s} %s \, dx = %s`, ea.LaTeX(), eb.LaTeX(), f.LaTeX(), data.NetText),
		steps: n,
		data:  data,
	}, nil
}
