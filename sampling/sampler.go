package sampling

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/calctool/numeric"
	"github.com/njchilds90/calctool/symbolic"
)

// DefaultJumpThreshold is the jump between neighbouring samples above which
// the fallback heuristic assumes a break. The value has no analytic basis.
const DefaultJumpThreshold = 100

// Evaluator maps x to f(x), Undefined where f has no finite real value.
type Evaluator func(x float64) numeric.Float

// ExprEvaluator evaluates e numerically.
func ExprEvaluator(e symbolic.Expr) Evaluator {
	return func(x float64) numeric.Float { return numeric.Eval(e, x) }
}

// Sample is one plot point. A null Y must never be interpolated over.
type Sample struct {
	X float64       `json:"x"`
	Y numeric.Float `json:"y"`
}

// Series is an ordered run of samples with strictly increasing X.
// Approximate is set when gaps came from the jump heuristic rather than
// from a known singularity set.
type Series struct {
	Points      []Sample `json:"points"`
	Approximate bool     `json:"approximate,omitempty"`
}

func (s Series) Len() int { return len(s.Points) }

// DualSeries splits one series at a breakpoint. Both halves have the full
// grid length; each is null on the other side and both are null at the
// breakpoint itself.
type DualSeries struct {
	Breakpoint float64 `json:"breakpoint"`
	Left       Series  `json:"left"`
	Right      Series  `json:"right"`
}

// Sampler evaluates a function over a grid.
type Sampler struct {
	Eval Evaluator
	// Workers bounds parallel evaluation; 0 means GOMAXPROCS.
	Workers int
	// JumpThreshold is used only when no singularity set is available.
	JumpThreshold float64
}

func NewSampler(e symbolic.Expr) *Sampler {
	return &Sampler{Eval: ExprEvaluator(e), JumpThreshold: DefaultJumpThreshold}
}

func (s *Sampler) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Sample evaluates the grid. Points within half a step of a singularity are
// null, as are points where evaluation fails. When singularities is nil the
// set is unknown and a jump larger than JumpThreshold from the previous
// defined sample is treated as a break instead.
func (s *Sampler) Sample(ctx context.Context, grid Grid, singularities []float64) (Series, error) {
	ys, err := s.evalGrid(ctx, grid, singularities)
	if err != nil {
		return Series{}, err
	}
	out := Series{Points: make([]Sample, len(grid))}
	for i, x := range grid {
		out.Points[i] = Sample{X: x, Y: ys[i]}
	}
	if singularities == nil {
		s.markJumps(out.Points)
		out.Approximate = true
	}
	return out, nil
}

// SampleDual is Sample split at breakpoint.
func (s *Sampler) SampleDual(ctx context.Context, grid Grid, breakpoint float64, singularities []float64) (DualSeries, error) {
	whole, err := s.Sample(ctx, grid, singularities)
	if err != nil {
		return DualSeries{}, err
	}
	d := DualSeries{
		Breakpoint: breakpoint,
		Left:       Series{Points: make([]Sample, len(grid)), Approximate: whole.Approximate},
		Right:      Series{Points: make([]Sample, len(grid)), Approximate: whole.Approximate},
	}
	tol := 1e-12 * math.Max(1, math.Abs(breakpoint))
	for i, p := range whole.Points {
		left, right := Sample{X: p.X}, Sample{X: p.X}
		switch {
		case math.Abs(p.X-breakpoint) <= tol:
		case p.X < breakpoint:
			left.Y = p.Y
		default:
			right.Y = p.Y
		}
		d.Left.Points[i], d.Right.Points[i] = left, right
	}
	return d, nil
}

// evalGrid fans evaluation out over contiguous chunks. Each goroutine writes
// only its own indices, so the result is in grid order.
func (s *Sampler) evalGrid(ctx context.Context, grid Grid, singularities []float64) ([]numeric.Float, error) {
	ys := make([]numeric.Float, len(grid))
	halfStep := grid.Step() / 2
	workers := s.workers()
	chunk := (len(grid) + workers - 1) / workers
	if chunk == 0 {
		return ys, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(grid); start += chunk {
		end := min(start+chunk, len(grid))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i == start || i%64 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if nearSingularity(grid[i], halfStep, singularities) {
					continue
				}
				ys[i] = s.Eval(grid[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ys, nil
}

// markJumps nulls samples that jump too far from the previous defined value.
// The comparison uses the raw previous value, so the far side of a break is
// nulled only at its first sample.
func (s *Sampler) markJumps(points []Sample) {
	threshold := s.JumpThreshold
	if threshold <= 0 {
		threshold = DefaultJumpThreshold
	}
	var prev numeric.Float
	for i := range points {
		y := points[i].Y
		if !y.Defined() {
			continue
		}
		if prev.Defined() && math.Abs(y.Sub(prev).Or(math.Inf(1))) > threshold {
			points[i].Y = numeric.Undefined
		}
		prev = y
	}
}
