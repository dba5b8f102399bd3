// Package sampling turns an expression into plot-ready series that never
// bridge a pole, and recomputes tangent slopes and Riemann rectangles from
// an existing series without going back to the symbolic kernel.
package sampling

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrBadGrid        = errors.New("sampling: grid needs n >= 2 and a finite lo < hi")
	ErrRectangleCount = errors.New("sampling: rectangle count must be at least 1")
	ErrFastPathGap    = errors.New("sampling: no sample value near the requested point")
	ErrSeriesTooShort = errors.New("sampling: series needs at least 3 samples")
	ErrOutsideSeries  = errors.New("sampling: point is outside the sampled range")
)

// Grid is a strictly increasing, evenly spaced list of x positions.
type Grid []float64

// Linspace returns n evenly spaced points from lo to hi inclusive.
func Linspace(lo, hi float64, n int) (Grid, error) {
	if n < 2 || !(lo < hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, fmt.Errorf("%w: lo=%g hi=%g n=%d", ErrBadGrid, lo, hi, n)
	}
	g := make(Grid, n)
	step := (hi - lo) / float64(n-1)
	for i := range g {
		g[i] = lo + float64(i)*step
	}
	g[n-1] = hi
	return g, nil
}

// Step is the spacing between neighbouring points.
func (g Grid) Step() float64 {
	if len(g) < 2 {
		return 0
	}
	return (g[len(g)-1] - g[0]) / float64(len(g)-1)
}

// nearSingularity reports whether x lies within half a grid step of any of
// the sorted singularities.
func nearSingularity(x, halfStep float64, singularities []float64) bool {
	for _, s := range singularities {
		if math.Abs(x-s) <= halfStep {
			return true
		}
		if s > x+halfStep {
			break
		}
	}
	return false
}
