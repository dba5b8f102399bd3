package analysis

import (
	"fmt"

	"github.com/njchilds90/calctool/sampling"
	"github.com/njchilds90/calctool/symbolic"
)

func (s *session) derivative(f symbolic.Expr, t float64) (report, error) {
	d, err := s.p.Differentiate(s.ctx, f)
	if err != nil {
		return report{}, s.fatal("differentiate", err)
	}
	if d, err = s.p.Simplify(s.ctx, d); err != nil {
		return report{}, s.fatal("simplify", err)
	}

	at := point(t)
	ft, err := s.value(s.p.EvaluateAt(s.ctx, f, at))
	if err != nil {
		return report{}, err
	}
	dt, err := s.value(s.p.EvaluateAt(s.ctx, d, at))
	if err != nil {
		return report{}, err
	}

	data := DerivativeData{Derivative: d.String(), TangentPoint: t}
	var n narration
	n.heading("Differentiate f(x) = %s", f)
	n.statement("f′(x) = %s", d)
	n.statement("At x = %s: f(%s) = %s and f′(%s) = %s", at, at, ft.text(), at, dt.text())

	y0, okF := ft.f.Get()
	m, okD := dt.f.Get()
	if okF && okD {
		// y = f'(t)(x - t) + f(t), multiplied out.
		line := symbolic.Expand(symbolic.AddOf(
			symbolic.MulOf(dt.v.Exact, symbolic.SubOf(symbolic.X(), at)),
			ft.v.Exact,
		))
		tan := sampling.NewTangent(t, y0, m)
		data.Tangent = &tan
		data.TangentText = "y = " + line.String()
		n.conclusion("Tangent line at x = %s: %s", at, data.TangentText)
	} else {
		data.TangentText = "tangent not computable"
		n.conclusion("Tangent not computable at x = %s: f(%s) or f′(%s) has no finite real value", at, at, at)
	}

	lo, hi := t-s.settings.WindowHalfWidth, t+s.settings.WindowHalfWidth
	if data.Function, err = s.series(f, lo, hi); err != nil {
		return report{}, err
	}
	if data.DerivativeCurve, err = s.series(d, lo, hi); err != nil {
		return report{}, err
	}

	return report{
		text:  fmt.Sprintf("f′(x) = %s", d),
		latex: fmt.Sprintf(`f'(x) = %s`, d.LaTeX()),
		steps: n,
		data:  data,
	}, nil
}
