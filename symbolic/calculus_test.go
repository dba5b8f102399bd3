package symbolic_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/njchilds90/calctool/symbolic"
)

func kernel() *symbolic.Kernel {
	return symbolic.NewKernelWithOptions(symbolic.DefaultOptions())
}

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// ============================================================
// Differentiation
// ============================================================

func TestDiff_Rules(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"x^3 - 3x", "3*x^2 - 3"},
		{"5", "0"},
		{"sin(x)", "cos(x)"},
		{"exp(2x)", "2*exp(2*x)"},
		{"ln(x)", "1/x"},
		{"abs(x)", "sign(x)"},
		{"floor(x)", "0"},
	}
	for _, c := range cases {
		got := symbolic.Diff(symbolic.MustParse(c.in), symbolic.Var)
		if got.String() != c.want {
			t.Errorf("d/dx %s: want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestDiff_EveryFunctionHasARule(t *testing.T) {
	names := []string{
		"sin", "cos", "tan", "exp", "ln", "log", "sqrt", "abs",
		"asin", "acos", "atan", "sinh", "cosh", "tanh", "floor", "ceil", "sign",
	}
	for _, name := range names {
		f := symbolic.MustParse(name + "(2x + 1)")
		var got symbolic.Expr
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("d/dx %s: panicked: %v", f, r)
				}
			}()
			got = symbolic.Diff(f, symbolic.Var)
		}()
		if got != nil && symbolic.DependsOn(got, symbolic.Var) {
			if _, err := symbolic.EvalFloat(got, symbolic.Var, -0.45); err != nil {
				t.Errorf("d/dx %s = %s does not evaluate: %v", f, got, err)
			}
		}
	}
}

func TestDiff_Second(t *testing.T) {
	got := symbolic.Diff2(symbolic.MustParse("x^3 - 3x"), symbolic.Var)
	if got.String() != "6*x" {
		t.Errorf("want 6*x, got %s", got)
	}
}

// ============================================================
// Integration
// ============================================================

func TestIntegrate_Rules(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"x^2", "x^3/3"},
		{"1", "x"},
		{"cos(x)", "sin(x)"},
		{"1/x", "ln(abs(x))"},
		{"2x + 1", "x^2 + x"},
	}
	for _, c := range cases {
		got, err := symbolic.Integrate(symbolic.MustParse(c.in))
		if err != nil {
			t.Errorf("integrate %s: unexpected error %v", c.in, err)
			continue
		}
		if got.String() != c.want {
			t.Errorf("integrate %s: want %s, got %s", c.in, c.want, got)
		}
	}
}

func TestIntegrate_VerifiedByDiff(t *testing.T) {
	for _, in := range []string{"sin(3x)", "(2x + 1)^3", "exp(-x)", "atan(x)", "x*(x + 1)"} {
		f := symbolic.MustParse(in)
		F, err := symbolic.Integrate(f)
		if err != nil {
			t.Errorf("integrate %s: %v", in, err)
			continue
		}
		back := symbolic.Diff(F, symbolic.Var)
		for _, pt := range []float64{0.3, 1.7} {
			want, _ := symbolic.EvalFloat(f, symbolic.Var, pt)
			got, err := symbolic.EvalFloat(back, symbolic.Var, pt)
			if err != nil || math.Abs(got-want) > 1e-9 {
				t.Errorf("d/dx integral(%s) at %g: want %g, got %g (%v)", in, pt, want, got, err)
			}
		}
	}
}

func TestIntegrate_NoAntiderivative(t *testing.T) {
	_, err := symbolic.Integrate(symbolic.MustParse("exp(x^2)"))
	if !errors.Is(err, symbolic.ErrNoAntiderivative) || !errors.Is(err, symbolic.ErrNotComputable) {
		t.Errorf("want ErrNoAntiderivative, got %v", err)
	}
}

func TestDefiniteIntegral(t *testing.T) {
	k := kernel()
	ctx := context.Background()
	cases := []struct {
		f    string
		a, b int64
		want string
	}{
		{"x^2", 0, 1, "1/3"},
		{"x", -2, 2, "0"},
		{"abs(x)", -2, 2, "4"},
		{"1", 5, 0, "-5"},
		{"abs(x^2 - 1)", 0, 2, "2"},
	}
	for _, c := range cases {
		v, err := k.DefiniteIntegral(ctx, symbolic.MustParse(c.f), symbolic.N(c.a), symbolic.N(c.b))
		if err != nil {
			t.Errorf("integral of %s on [%d, %d]: %v", c.f, c.a, c.b, err)
			continue
		}
		if v.Kind != symbolic.KindReal || v.String() != c.want {
			t.Errorf("integral of %s on [%d, %d]: want %s, got %s (%s)", c.f, c.a, c.b, c.want, v, v.Kind)
		}
	}
}

func TestDefiniteIntegral_PoleInside(t *testing.T) {
	_, err := kernel().DefiniteIntegral(context.Background(), symbolic.MustParse("1/x"), symbolic.N(-1), symbolic.N(1))
	if !errors.Is(err, symbolic.ErrDomain) {
		t.Errorf("want ErrDomain, got %v", err)
	}
}

func TestDefiniteIntegral_AreaPastScanRange(t *testing.T) {
	// Roots of sin at 4pi..9pi lie outside [-ScanRange, ScanRange].
	v, err := kernel().DefiniteIntegral(context.Background(), symbolic.MustParse("abs(sin(x))"), symbolic.N(0), symbolic.N(30))
	if err != nil {
		t.Fatal(err)
	}
	want := 19 + math.Cos(30)
	if v.Kind != symbolic.KindReal || math.Abs(v.Re-want) > 1e-9 {
		t.Errorf("want %.15g, got %s (%s)", want, v, v.Kind)
	}
}

func TestDefiniteIntegral_PolePastScanRange(t *testing.T) {
	_, err := kernel().DefiniteIntegral(context.Background(), symbolic.MustParse("1/sin(x)"), symbolic.N(20), symbolic.N(30))
	if !errors.Is(err, symbolic.ErrDomain) {
		t.Errorf("want ErrDomain, got %v", err)
	}
}

func TestDefiniteIntegral_UnscannableArea(t *testing.T) {
	v, err := kernel().DefiniteIntegral(context.Background(), symbolic.MustParse("abs(sin(x))"), symbolic.N(0), symbolic.N(1_000_000))
	if !errors.Is(err, symbolic.ErrNotComputable) {
		t.Errorf("want ErrNotComputable, got %s (%v)", v, err)
	}
}

// ============================================================
// Limits
// ============================================================

func TestLimit(t *testing.T) {
	k := kernel()
	ctx := context.Background()
	cases := []struct {
		f    string
		p    int64
		dir  symbolic.Direction
		kind symbolic.Kind
		want string
	}{
		{"x^2 + 1", 2, symbolic.TwoSided, symbolic.KindReal, "5"},
		{"sin(x)/x", 0, symbolic.TwoSided, symbolic.KindReal, "1"},
		{"(x^2 - 1)/(x - 1)", 1, symbolic.TwoSided, symbolic.KindReal, "2"},
		{"(1 - cos(x))/x^2", 0, symbolic.TwoSided, symbolic.KindReal, "1/2"},
		{"1/x", 0, symbolic.FromLeft, symbolic.KindNegInfinity, "-oo"},
		{"1/x", 0, symbolic.FromRight, symbolic.KindPosInfinity, "oo"},
		{"1/x", 0, symbolic.TwoSided, symbolic.KindIndeterminate, "nan"},
		{"1/x^2", 0, symbolic.TwoSided, symbolic.KindPosInfinity, "oo"},
		{"floor(x)", 0, symbolic.FromLeft, symbolic.KindReal, "-1"},
		{"floor(x)", 0, symbolic.FromRight, symbolic.KindReal, "0"},
		{"ln(x)", 0, symbolic.FromRight, symbolic.KindNegInfinity, "-oo"},
	}
	for _, c := range cases {
		v, err := k.Limit(ctx, symbolic.MustParse(c.f), symbolic.N(c.p), c.dir)
		if err != nil {
			t.Errorf("limit %s at %d%s: %v", c.f, c.p, c.dir, err)
			continue
		}
		if v.Kind != c.kind || v.String() != c.want {
			t.Errorf("limit %s at %d%s: want %s (%s), got %s (%s)", c.f, c.p, c.dir, c.want, c.kind, v, v.Kind)
		}
	}
}

func TestLimit_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := kernel().Limit(ctx, symbolic.MustParse("sin(x)/x"), symbolic.N(0), symbolic.TwoSided)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

// ============================================================
// Solving
// ============================================================

func TestSolveReal_Polynomials(t *testing.T) {
	k := kernel()
	ctx := context.Background()
	cases := []struct {
		f    string
		want []float64
	}{
		{"3x^2 - 3", []float64{-1, 1}},
		{"x^3 - 3x", []float64{-math.Sqrt(3), 0, math.Sqrt(3)}},
		{"x^2 - 2", []float64{-math.Sqrt2, math.Sqrt2}},
		{"(x - 1)^2", []float64{1}},
		{"x^2 + 1", nil},
		{"2x - 1", []float64{0.5}},
		{"x^4 - 5x^2 + 4", []float64{-2, -1, 1, 2}},
	}
	for _, c := range cases {
		roots, err := k.SolveReal(ctx, symbolic.MustParse(c.f))
		if err != nil {
			t.Errorf("solve %s: %v", c.f, err)
			continue
		}
		if len(roots) != len(c.want) {
			t.Errorf("solve %s: want %v, got %v", c.f, c.want, roots)
			continue
		}
		for i, r := range roots {
			if !approxEqual(r.Re, c.want[i]) {
				t.Errorf("solve %s: root %d: want %g, got %s", c.f, i, c.want[i], r)
			}
		}
	}
}

func TestSolveReal_ExactForms(t *testing.T) {
	roots, err := kernel().SolveReal(context.Background(), symbolic.MustParse("2x - 1"))
	if err != nil || len(roots) != 1 || roots[0].String() != "1/2" {
		t.Errorf("want [1/2], got %v (%v)", roots, err)
	}
}

func TestSolveReal_RationalExcludesPoles(t *testing.T) {
	roots, err := kernel().SolveReal(context.Background(), symbolic.MustParse("(x^2 - 1)/(x - 1)"))
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || !approxEqual(roots[0].Re, -1) {
		t.Errorf("want [-1], got %v", roots)
	}
}

func TestSolveReal_Transcendental(t *testing.T) {
	roots, err := kernel().SolveReal(context.Background(), symbolic.MustParse("sin(x)"))
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 7 {
		t.Fatalf("want 7 roots in [-10, 10], got %d: %v", len(roots), roots)
	}
	if roots[3].String() != "0" || roots[4].String() != "pi" {
		t.Errorf("want 0 and pi in the middle, got %s and %s", roots[3], roots[4])
	}
}

func TestSolveReal_RejectsPoles(t *testing.T) {
	roots, err := kernel().SolveReal(context.Background(), symbolic.MustParse("tan(x)"))
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range roots {
		if math.Abs(math.Cos(r.Re)) < 1e-6 {
			t.Errorf("pole of tan reported as root: %s", r)
		}
	}
}

func TestSolveRealIn(t *testing.T) {
	k := kernel()
	ctx := context.Background()

	roots, err := k.SolveRealIn(ctx, symbolic.MustParse("sin(x)"), 15, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 5 {
		t.Fatalf("want 5 roots in [15, 30], got %d: %v", len(roots), roots)
	}
	for i, r := range roots {
		if want := float64(i+5) * math.Pi; !approxEqual(r.Re, want) {
			t.Errorf("root %d: want %g, got %s", i, want, r)
		}
	}

	roots, err = k.SolveRealIn(ctx, symbolic.MustParse("x^2 - 1"), 0, 5)
	if err != nil || len(roots) != 1 || roots[0].String() != "1" {
		t.Errorf("want [1], got %v (%v)", roots, err)
	}

	if _, err := k.SolveRealIn(ctx, symbolic.MustParse("x"), 1, 0); !errors.Is(err, symbolic.ErrNotComputable) {
		t.Errorf("reversed interval: want ErrNotComputable, got %v", err)
	}
}

func TestSolveReal_IdenticallyZero(t *testing.T) {
	_, err := kernel().SolveReal(context.Background(), symbolic.MustParse("x - x"))
	if !errors.Is(err, symbolic.ErrUnsolvable) {
		t.Errorf("want ErrUnsolvable, got %v", err)
	}
}

// ============================================================
// Evaluation
// ============================================================

func TestEvaluateAt_Kinds(t *testing.T) {
	cases := []struct {
		f    string
		at   int64
		kind symbolic.Kind
	}{
		{"x^2", 3, symbolic.KindReal},
		{"sqrt(x)", -1, symbolic.KindComplex},
		{"1/x", 0, symbolic.KindComplexInfinity},
		{"sin(x)/x", 0, symbolic.KindIndeterminate},
		{"ln(x)", 0, symbolic.KindNegInfinity},
		{"ln(x)", 2, symbolic.KindReal},
	}
	for _, c := range cases {
		v := symbolic.EvaluateAt(symbolic.MustParse(c.f), symbolic.N(c.at))
		if v.Kind != c.kind {
			t.Errorf("%s at %d: want %s, got %s", c.f, c.at, c.kind, v.Kind)
		}
	}
	if v := symbolic.EvaluateAt(symbolic.MustParse("ln(x)"), symbolic.N(2)); v.String() != "ln(2)" {
		t.Errorf("exact value should stay symbolic, got %s", v)
	}
}

func TestEvalFloat_DomainErrors(t *testing.T) {
	cases := []struct {
		f  string
		at float64
	}{
		{"1/x", 0},
		{"ln(x)", -1},
		{"sqrt(x)", -4},
		{"asin(x)", 2},
	}
	for _, c := range cases {
		_, err := symbolic.EvalFloat(symbolic.MustParse(c.f), symbolic.Var, c.at)
		if !errors.Is(err, symbolic.ErrDomain) {
			t.Errorf("%s at %g: want ErrDomain, got %v", c.f, c.at, err)
		}
	}
	v, err := symbolic.EvalFloat(symbolic.MustParse("x^3 - 3x"), symbolic.Var, 2)
	if err != nil || v != 2 {
		t.Errorf("want 2, got %g (%v)", v, err)
	}
}

func TestConfigure_AppliesOnce(t *testing.T) {
	opts := symbolic.CurrentOptions()
	if symbolic.Configure(symbolic.Options{ScanRange: 99}) {
		t.Error("Configure after CurrentOptions must not apply")
	}
	if symbolic.CurrentOptions() != opts {
		t.Error("options changed after being frozen")
	}
}
