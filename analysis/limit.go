package analysis

import (
	"fmt"
	"math"

	"github.com/njchilds90/calctool/numeric"
	"github.com/njchilds90/calctool/symbolic"
)

// limit classifies continuity at p. The three limits are attempted
// independently; one failing does not stop the others.
func (s *session) limit(f symbolic.Expr, p float64) (report, error) {
	at := point(p)

	left, err := s.value(s.p.Limit(s.ctx, f, at, symbolic.FromLeft))
	if err != nil {
		return report{}, err
	}
	right, err := s.value(s.p.Limit(s.ctx, f, at, symbolic.FromRight))
	if err != nil {
		return report{}, err
	}
	both, err := s.value(s.p.Limit(s.ctx, f, at, symbolic.TwoSided))
	if err != nil {
		return report{}, err
	}
	fp, err := s.value(s.p.EvaluateAt(s.ctx, f, at))
	if err != nil {
		return report{}, err
	}

	eps := s.settings.LimitEpsilon
	exists := left.f.Defined() && right.f.Defined() && math.Abs(left.f.Or(0)-right.f.Or(0)) < eps
	lim := numeric.Undefined
	if exists {
		lim = left.f
	}

	data := LimitData{Point: p, Left: left.f, Right: right.f, Limit: lim, Value: fp.f}
	switch {
	case !exists:
		data.Classification = NoLimit
		data.Marker = Marker{Show: false, X: p}
	case fp.f.Defined() && math.Abs(fp.f.Or(0)-lim.Or(0)) < eps:
		data.Classification = Continuous
		data.Marker = Marker{Show: true, X: p, Y: fp.f, Style: MarkerClosed}
	default:
		data.Classification = RemovableDiscontinuity
		data.Marker = Marker{Show: true, X: p, Y: lim, Style: MarkerOpen}
	}

	// The headline prefers the exact two-sided value over the agreeing side.
	var limText, headline, latex string
	if exists {
		v := left.v
		if both.ok && both.v.Kind == symbolic.KindReal {
			v = both.v
		}
		limText = v.String()
		headline = fmt.Sprintf("lim x→%s f(x) = %s", at, limText)
		latex = fmt.Sprintf(`\lim_{x \to %s} %s = %s`, at.LaTeX(), f.LaTeX(), v.LaTeX())
	} else {
		headline = fmt.Sprintf("lim x→%s f(x) does not exist", at)
		latex = fmt.Sprintf(`\lim_{x \to %s} %s \text{ does not exist}`, at.LaTeX(), f.LaTeX())
	}

	var n narration
	n.heading("Analyze f(x) = %s at x = %s", f, at)
	n.statement("Left-hand limit: lim x→%s⁻ f(x) = %s", at, left.text())
	n.statement("Right-hand limit: lim x→%s⁺ f(x) = %s", at, right.text())
	if exists {
		n.statement("The one-sided limits agree, so lim x→%s f(x) = %s", at, limText)
	} else {
		n.statement("The one-sided limits are not the same finite value, so lim x→%s f(x) does not exist", at)
	}
	switch data.Classification {
	case Continuous:
		n.conclusion("f(%s) = %s equals the limit: f is continuous at x = %s", at, fp.text(), at)
	case RemovableDiscontinuity:
		n.conclusion("f(%s) = %s but the limit is %s: removable discontinuity at x = %s", at, fp.text(), limText, at)
	case NoLimit:
		n.conclusion("No limit at x = %s, so f is not continuous there", at)
	}

	series, err := s.dualSeries(f, p-s.settings.WindowHalfWidth, p+s.settings.WindowHalfWidth, p)
	if err != nil {
		return report{}, err
	}
	data.Series = series

	return report{
		text:  headline,
		latex: latex,
		steps: n,
		data:  data,
	}, nil
}
