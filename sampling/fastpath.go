package sampling

import (
	"fmt"
	"math"
	"sort"

	"github.com/njchilds90/calctool/numeric"
)

// The fast path recomputes interactive quantities from a series that was
// already sampled. It never calls the symbolic kernel, and its results are
// approximations: slopes are finite differences and rectangle
// heights come from the nearest grid sample rather than the exact left edge.

// TangentHalfWidth is the half-length, in x, of the drawable tangent segment.
const TangentHalfWidth = 5

// Point is a plain finite coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Tangent is the line y = Slope*x + Intercept touching the curve at (X0, Y0).
type Tangent struct {
	X0          float64  `json:"x0"`
	Y0          float64  `json:"y0"`
	Slope       float64  `json:"slope"`
	Intercept   float64  `json:"intercept"`
	Segment     [2]Point `json:"segment"`
	Approximate bool     `json:"approximate"`
}

// NewTangent builds the tangent through (x0, y0) with the given slope.
func NewTangent(x0, y0, slope float64) Tangent {
	at := func(x float64) Point { return Point{X: x, Y: slope*(x-x0) + y0} }
	return Tangent{
		X0:        x0,
		Y0:        y0,
		Slope:     slope,
		Intercept: y0 - slope*x0,
		Segment:   [2]Point{at(x0 - TangentHalfWidth), at(x0 + TangentHalfWidth)},
	}
}

// TangentAt estimates the tangent at t from the two samples immediately
// around it. When t falls on a grid point those are its neighbours and the
// point itself gives y0; otherwise they are the bracketing pair and y0 is
// read off their secant. The tangent is anchored at t. A t outside the
// sampled range fails with ErrOutsideSeries.
func TangentAt(s Series, t float64) (Tangent, error) {
	n := len(s.Points)
	if n < 3 {
		return Tangent{}, ErrSeriesTooShort
	}
	first, last := s.Points[0].X, s.Points[n-1].X
	if math.IsNaN(t) || t < first || t > last {
		return Tangent{}, fmt.Errorf("%w: x = %g, series covers [%g, %g]", ErrOutsideSeries, t, first, last)
	}
	tol := 1e-9 * math.Max(1, math.Abs(t))
	i := sort.Search(n, func(i int) bool { return s.Points[i].X >= t-tol })
	onGrid := math.Abs(s.Points[i].X-t) <= tol

	lo, hi := i-1, i
	if onGrid {
		lo, hi = max(i-1, 0), min(i+1, n-1)
	}
	yl, okl := s.Points[lo].Y.Get()
	yr, okr := s.Points[hi].Y.Get()
	if !okl || !okr {
		return Tangent{}, fmt.Errorf("%w: x = %g", ErrFastPathGap, t)
	}
	xl, xr := s.Points[lo].X, s.Points[hi].X
	slope := (yr - yl) / (xr - xl)
	y0 := yl + slope*(t-xl)
	if onGrid {
		y, ok := s.Points[i].Y.Get()
		if !ok {
			return Tangent{}, fmt.Errorf("%w: x = %g", ErrFastPathGap, t)
		}
		y0 = y
	}
	tan := NewTangent(t, y0, slope)
	tan.Approximate = true
	return tan, nil
}

// Rectangle is one left-endpoint Riemann rectangle.
type Rectangle struct {
	X      float64 `json:"x"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RiemannSum is a left-endpoint approximation over [A, B]. Rectangles always
// cover [min(A,B), max(A,B)] with positive widths; Net carries the sign of
// B - A so reversed bounds flip it. Dropped counts rectangles whose height
// was undefined.
type RiemannSum struct {
	A           float64     `json:"a"`
	B           float64     `json:"b"`
	N           int         `json:"n"`
	Rectangles  []Rectangle `json:"rectangles"`
	Net         float64     `json:"net"`
	Absolute    float64     `json:"absolute"`
	Dropped     int         `json:"dropped"`
	Approximate bool        `json:"approximate,omitempty"`
}

// Riemann evaluates heights directly at each left edge.
func Riemann(eval Evaluator, a, b float64, n int) (RiemannSum, error) {
	return riemann(a, b, n, eval)
}

// RiemannFromSeries takes each height from the first sample at or after the
// rectangle's left edge.
func RiemannFromSeries(s Series, a, b float64, n int) (RiemannSum, error) {
	pts := s.Points
	height := func(left float64) numeric.Float {
		tol := 1e-9 * math.Max(1, math.Abs(left))
		i := sort.Search(len(pts), func(i int) bool { return pts[i].X >= left-tol })
		if i == len(pts) {
			return numeric.Undefined
		}
		return pts[i].Y
	}
	sum, err := riemann(a, b, n, height)
	sum.Approximate = true
	return sum, err
}

func riemann(a, b float64, n int, height Evaluator) (RiemannSum, error) {
	if n < 1 {
		return RiemannSum{}, fmt.Errorf("%w: got %d", ErrRectangleCount, n)
	}
	sum := RiemannSum{A: a, B: b, N: n, Rectangles: []Rectangle{}}
	lo, hi := math.Min(a, b), math.Max(a, b)
	if lo == hi {
		return sum, nil
	}
	w := (hi - lo) / float64(n)
	net := 0.0
	for k := 0; k < n; k++ {
		left := lo + float64(k)*w
		h, ok := height(left).Get()
		if !ok {
			sum.Dropped++
			continue
		}
		sum.Rectangles = append(sum.Rectangles, Rectangle{X: left, Width: w, Height: h})
		net += h * w
		sum.Absolute += math.Abs(h) * w
	}
	if b < a {
		net = -net
	}
	sum.Net = net
	return sum, nil
}
