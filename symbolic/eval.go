package symbolic

import (
	"fmt"
	"math"
	"math/cmplx"
)

// EvalFloat evaluates e over the reals with varName bound to x. Any step that
// leaves the reals (division by zero, ln of a non-positive, even roots of a
// negative, non-finite intermediates) fails with ErrDomain.
func EvalFloat(e Expr, varName string, x float64) (float64, error) {
	switch v := e.(type) {
	case *Num:
		return v.Float64(), nil
	case *Const:
		return v.val, nil
	case *Sym:
		if v.name != varName {
			return 0, fmt.Errorf("%w: unbound symbol %s", ErrDomain, v.name)
		}
		return x, nil
	case *Special:
		return 0, fmt.Errorf("%w: %s", ErrDomain, v)
	case *Add:
		acc := 0.0
		for _, t := range v.terms {
			tv, err := EvalFloat(t, varName, x)
			if err != nil {
				return 0, err
			}
			acc += tv
		}
		return finite(acc)
	case *Mul:
		acc := 1.0
		for _, f := range v.factors {
			fv, err := EvalFloat(f, varName, x)
			if err != nil {
				return 0, err
			}
			acc *= fv
		}
		return finite(acc)
	case *Pow:
		b, err := EvalFloat(v.base, varName, x)
		if err != nil {
			return 0, err
		}
		ex, err := EvalFloat(v.exp, varName, x)
		if err != nil {
			return 0, err
		}
		if b == 0 && ex < 0 {
			return 0, fmt.Errorf("%w: division by zero", ErrDomain)
		}
		if b < 0 && ex != math.Trunc(ex) {
			return 0, fmt.Errorf("%w: non-integer power of negative base", ErrDomain)
		}
		return finite(math.Pow(b, ex))
	case *Func:
		a, err := EvalFloat(v.arg, varName, x)
		if err != nil {
			return 0, err
		}
		return evalFuncFloat(v.name, a)
	}
	return 0, fmt.Errorf("%w: cannot evaluate %s", ErrDomain, e)
}

func evalFuncFloat(name string, a float64) (float64, error) {
	switch name {
	case "sin":
		return finite(math.Sin(a))
	case "cos":
		return finite(math.Cos(a))
	case "tan":
		return finite(math.Tan(a))
	case "exp":
		return finite(math.Exp(a))
	case "ln":
		if a <= 0 {
			return 0, fmt.Errorf("%w: ln of non-positive value", ErrDomain)
		}
		return finite(math.Log(a))
	case "abs":
		return math.Abs(a), nil
	case "asin", "acos":
		if a < -1 || a > 1 {
			return 0, fmt.Errorf("%w: %s argument outside [-1, 1]", ErrDomain, name)
		}
		if name == "asin" {
			return math.Asin(a), nil
		}
		return math.Acos(a), nil
	case "atan":
		return math.Atan(a), nil
	case "sinh":
		return finite(math.Sinh(a))
	case "cosh":
		return finite(math.Cosh(a))
	case "tanh":
		return math.Tanh(a), nil
	case "floor":
		return math.Floor(a), nil
	case "ceil":
		return math.Ceil(a), nil
	case "sign":
		switch {
		case a > 0:
			return 1, nil
		case a < 0:
			return -1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: unknown function %s", ErrDomain, name)
}

func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite result", ErrDomain)
	}
	return v, nil
}

// evalComplex evaluates a closed-form expression with principal-branch complex
// arithmetic, so sqrt(-1) is i and 1/0 is complex infinity.
func evalComplex(e Expr) complex128 {
	switch v := e.(type) {
	case *Num:
		return complex(v.Float64(), 0)
	case *Const:
		return complex(v.val, 0)
	case *Special:
		if v.kind == specialNaN {
			return cmplx.NaN()
		}
		return cmplx.Inf()
	case *Add:
		acc := complex(0, 0)
		for _, t := range v.terms {
			acc += evalComplex(t)
		}
		return acc
	case *Mul:
		acc := complex(1, 0)
		for _, f := range v.factors {
			acc *= evalComplex(f)
		}
		return acc
	case *Pow:
		b := evalComplex(v.base)
		ex := evalComplex(v.exp)
		if b == 0 && real(ex) < 0 {
			return cmplx.Inf()
		}
		if imag(b) == 0 && imag(ex) == 0 && (real(b) >= 0 || real(ex) == math.Trunc(real(ex))) {
			return complex(math.Pow(real(b), real(ex)), 0)
		}
		return cmplx.Pow(b, ex)
	case *Func:
		return evalFuncComplex(v.name, evalComplex(v.arg))
	}
	return cmplx.NaN()
}

func evalFuncComplex(name string, a complex128) complex128 {
	switch name {
	case "sin":
		return cmplx.Sin(a)
	case "cos":
		return cmplx.Cos(a)
	case "tan":
		return cmplx.Tan(a)
	case "exp":
		return cmplx.Exp(a)
	case "ln":
		if a == 0 {
			return complex(math.Inf(-1), 0)
		}
		return cmplx.Log(a)
	case "abs":
		return complex(cmplx.Abs(a), 0)
	case "asin":
		return cmplx.Asin(a)
	case "acos":
		return cmplx.Acos(a)
	case "atan":
		return cmplx.Atan(a)
	case "sinh":
		return cmplx.Sinh(a)
	case "cosh":
		return cmplx.Cosh(a)
	case "tanh":
		return cmplx.Tanh(a)
	}
	if imag(a) != 0 {
		return cmplx.NaN()
	}
	f, err := evalFuncFloat(name, real(a))
	if err != nil {
		return cmplx.NaN()
	}
	return complex(f, 0)
}
