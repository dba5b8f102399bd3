// Package numeric holds the one type every numeric boundary of the engine
// speaks: a float that is either finite or explicitly undefined.
package numeric

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/njchilds90/calctool/symbolic"
)

// Float is a finite float64 or Undefined. The zero value is Undefined, so a
// Float that was never assigned can not be mistaken for 0.
type Float struct {
	v  float64
	ok bool
}

// Undefined is the sentinel for "no finite real value".
var Undefined = Float{}

// Of wraps f; NaN and infinities become Undefined.
func Of(f float64) Float {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Undefined
	}
	return Float{v: f, ok: true}
}

// Get returns the value and whether it is defined.
func (f Float) Get() (float64, bool) { return f.v, f.ok }

func (f Float) Defined() bool { return f.ok }

// Or returns the value, or def when f is Undefined.
func (f Float) Or(def float64) float64 {
	if !f.ok {
		return def
	}
	return f.v
}

// Sub returns f - g, Undefined if either side is.
func (f Float) Sub(g Float) Float {
	if !f.ok || !g.ok {
		return Undefined
	}
	return Of(f.v - g.v)
}

// ApproxEqual reports whether both values are defined and within eps,
// relative to the larger magnitude once that exceeds 1.
func ApproxEqual(a, b Float, eps float64) bool {
	if !a.ok || !b.ok {
		return false
	}
	return math.Abs(a.v-b.v) <= eps*math.Max(1, math.Max(math.Abs(a.v), math.Abs(b.v)))
}

func (f Float) String() string {
	if !f.ok {
		return "undefined"
	}
	return strconv.FormatFloat(f.v, 'g', -1, 64)
}

// MarshalJSON encodes Undefined as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.ok {
		return []byte("null"), nil
	}
	return json.Marshal(f.v)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Of(v)
	return nil
}

// Convert maps an exact value to a Float. Rules apply in order: a complex
// value, either infinity, then an indeterminate form are all Undefined;
// anything else is its finite real approximation. It never panics.
func Convert(v symbolic.Value) Float {
	switch v.Kind {
	case symbolic.KindComplex, symbolic.KindComplexInfinity:
		return Undefined
	case symbolic.KindPosInfinity, symbolic.KindNegInfinity:
		return Undefined
	case symbolic.KindIndeterminate:
		return Undefined
	}
	return Of(v.Re)
}

// Eval evaluates e at x and converts the outcome; domain errors are
// Undefined.
func Eval(e symbolic.Expr, x float64) Float {
	y, err := symbolic.EvalFloat(e, symbolic.Var, x)
	if err != nil {
		return Undefined
	}
	return Of(y)
}
