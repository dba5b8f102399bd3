package symbolic

import (
	"math"
	"math/cmplx"
	"strconv"
)

// Kind classifies the outcome of an exact evaluation.
type Kind int

const (
	KindReal Kind = iota
	KindComplex
	KindPosInfinity
	KindNegInfinity
	KindComplexInfinity
	KindIndeterminate
)

func (k Kind) String() string {
	switch k {
	case KindReal:
		return "real"
	case KindComplex:
		return "complex"
	case KindPosInfinity:
		return "+infinity"
	case KindNegInfinity:
		return "-infinity"
	case KindComplexInfinity:
		return "complex infinity"
	}
	return "indeterminate"
}

// Value is the result of an exact computation. Exact is set for real
// values and keeps the symbolic form (ln(2), sqrt(2)); Re and Im carry the
// numeric approximation for every finite kind.
type Value struct {
	Kind  Kind
	Exact Expr
	Re    float64
	Im    float64
}

// imagTolerance is the relative size below which an imaginary part is
// rounding noise from principal-branch arithmetic.
const imagTolerance = 1e-12

// ValueOf classifies a closed-form expression.
func ValueOf(e Expr) Value {
	switch v := e.(type) {
	case *Special:
		switch v.kind {
		case specialPosInf:
			return Value{Kind: KindPosInfinity, Exact: v, Re: math.Inf(1)}
		case specialNegInf:
			return Value{Kind: KindNegInfinity, Exact: v, Re: math.Inf(-1)}
		case specialComplexInf:
			return Value{Kind: KindComplexInfinity, Exact: v}
		}
		return Value{Kind: KindIndeterminate, Exact: v}
	case *Num:
		return Value{Kind: KindReal, Exact: v, Re: v.Float64()}
	}
	if DependsOn(e, Var) {
		return Value{Kind: KindIndeterminate, Exact: e}
	}
	c := evalComplex(e)
	switch {
	case cmplx.IsNaN(c):
		return Value{Kind: KindIndeterminate, Exact: e}
	case cmplx.IsInf(c):
		if imag(c) == 0 && math.IsInf(real(c), 1) {
			return Value{Kind: KindPosInfinity, Exact: Infinity, Re: real(c)}
		}
		if imag(c) == 0 && math.IsInf(real(c), -1) {
			return Value{Kind: KindNegInfinity, Exact: NegInfinity, Re: real(c)}
		}
		return Value{Kind: KindComplexInfinity, Exact: ComplexInfinity}
	case math.Abs(imag(c)) > imagTolerance*math.Max(1, math.Abs(real(c))):
		return Value{Kind: KindComplex, Exact: e, Re: real(c), Im: imag(c)}
	}
	return Value{Kind: KindReal, Exact: e, Re: real(c)}
}

// RealValue wraps an exact real expression.
func RealValue(e Expr) Value { return ValueOf(e.Simplify()) }

// IsFinite reports whether v is a finite real.
func (v Value) IsFinite() bool { return v.Kind == KindReal }

func (v Value) String() string {
	switch v.Kind {
	case KindReal:
		if v.Exact != nil {
			return v.Exact.String()
		}
		return strconv.FormatFloat(v.Re, 'g', -1, 64)
	case KindComplex:
		return strconv.FormatComplex(complex(v.Re, v.Im), 'g', 10, 128)
	case KindPosInfinity:
		return "oo"
	case KindNegInfinity:
		return "-oo"
	case KindComplexInfinity:
		return "zoo"
	}
	return "nan"
}

// LaTeX renders the value for step narration.
func (v Value) LaTeX() string {
	switch v.Kind {
	case KindReal:
		if v.Exact != nil {
			return v.Exact.LaTeX()
		}
	case KindComplex:
		if v.Exact != nil {
			return v.Exact.LaTeX()
		}
	case KindPosInfinity:
		return Infinity.LaTeX()
	case KindNegInfinity:
		return NegInfinity.LaTeX()
	case KindComplexInfinity:
		return ComplexInfinity.LaTeX()
	case KindIndeterminate:
		return NaN.LaTeX()
	}
	return v.String()
}

// EvaluateAt substitutes x = at into e and classifies the exact result.
func EvaluateAt(e, at Expr) Value {
	return ValueOf(e.Sub(Var, at).Simplify())
}
