package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Request is one analysis job.
type Request struct {
	FunctionText string     `json:"function_text"`
	Mode         Mode       `json:"mode"`
	Parameters   Parameters `json:"parameters"`
}

// Parameters are mode specific; nil means "use the default". Interval
// bounds may come in either order.
type Parameters struct {
	Point          *float64 `json:"point,omitempty"`
	TangentPoint   *float64 `json:"tangent_point,omitempty"`
	IntervalStart  *float64 `json:"interval_start,omitempty"`
	IntervalEnd    *float64 `json:"interval_end,omitempty"`
	RectangleCount *int     `json:"rectangle_count,omitempty"`
}

const (
	DefaultPoint          = 0.0
	DefaultTangentPoint   = 1.0
	DefaultIntervalStart  = 0.0
	DefaultIntervalEnd    = 2.0
	DefaultRectangleCount = 10
)

// Float64 returns a pointer to v, for building Parameters.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// WithDefaults returns a copy of r with every missing parameter filled in.
func (r Request) WithDefaults() Request {
	p := r.Parameters
	if p.Point == nil {
		p.Point = Float64(DefaultPoint)
	}
	if p.TangentPoint == nil {
		p.TangentPoint = Float64(DefaultTangentPoint)
	}
	if p.IntervalStart == nil {
		p.IntervalStart = Float64(DefaultIntervalStart)
	}
	if p.IntervalEnd == nil {
		p.IntervalEnd = Float64(DefaultIntervalEnd)
	}
	if p.RectangleCount == nil {
		p.RectangleCount = Int(DefaultRectangleCount)
	}
	r.Parameters = p
	return r
}

// Validate checks r against the engine limits.
func (r Request) Validate(maxRectangles int) error {
	if strings.TrimSpace(r.FunctionText) == "" {
		return fmt.Errorf("%w: function text is empty", ErrInvalidRequest)
	}
	if !r.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidRequest, int(r.Mode))
	}
	p := r.Parameters
	for name, v := range map[string]*float64{
		"point":          p.Point,
		"tangent_point":  p.TangentPoint,
		"interval_start": p.IntervalStart,
		"interval_end":   p.IntervalEnd,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidRequest, name)
		}
	}
	if n := p.RectangleCount; n != nil {
		if *n < 1 {
			return fmt.Errorf("%w: rectangle_count must be at least 1, got %d", ErrInvalidRequest, *n)
		}
		if maxRectangles > 0 && *n > maxRectangles {
			return fmt.Errorf("%w: rectangle_count must be at most %d, got %d", ErrInvalidRequest, maxRectangles, *n)
		}
	}
	return nil
}
