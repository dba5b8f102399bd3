package symbolic_test

import (
	"testing"

	"github.com/njchilds90/calctool/symbolic"
)

func x() symbolic.Expr { return symbolic.X() }

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := symbolic.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := symbolic.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	n := symbolic.F(-2, 5)
	if n.LaTeX() != `-\frac{2}{5}` {
		t.Errorf(`want -\frac{2}{5}, got %s`, n.LaTeX())
	}
}

func TestNum_DecimalIsExact(t *testing.T) {
	n := symbolic.NDecimal(0.1)
	if n.String() != "1/10" || n.IsApprox() {
		t.Errorf("want exact 1/10, got %s (approx=%v)", n, n.IsApprox())
	}
}

func TestNum_FloatIsApprox(t *testing.T) {
	n := symbolic.NFloat(0.1)
	if !n.IsApprox() {
		t.Fatal("NFloat should be approximate")
	}
	if n.String() != "0.1" {
		t.Errorf("want 0.1, got %s", n.String())
	}
}

// ============================================================
// Simplification
// ============================================================

func TestAdd_CollectsLikeTerms(t *testing.T) {
	got := symbolic.AddOf(x(), x(), symbolic.N(1), symbolic.N(2))
	if got.String() != "2*x + 3" {
		t.Errorf("want 2*x + 3, got %s", got)
	}
}

func TestAdd_CancelsToZero(t *testing.T) {
	got := symbolic.SubOf(symbolic.SinOf(x()), symbolic.SinOf(x()))
	if got.String() != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestAdd_OrdersByDegree(t *testing.T) {
	got := symbolic.AddOf(symbolic.N(-3), symbolic.MulOf(symbolic.N(-3), x()), symbolic.PowOf(x(), symbolic.N(3)))
	if got.String() != "x^3 - 3*x - 3" {
		t.Errorf("want x^3 - 3*x - 3, got %s", got)
	}
}

func TestMul_MergesPowers(t *testing.T) {
	got := symbolic.MulOf(x(), symbolic.PowOf(x(), symbolic.N(2)))
	if got.String() != "x^3" {
		t.Errorf("want x^3, got %s", got)
	}
}

func TestMul_QuotientOfSelfIsOne(t *testing.T) {
	got := symbolic.DivOf(x(), x())
	if got.String() != "1" {
		t.Errorf("want 1, got %s", got)
	}
}

func TestMul_PrintsFraction(t *testing.T) {
	cases := []struct {
		expr symbolic.Expr
		want string
	}{
		{symbolic.DivOf(symbolic.SinOf(x()), x()), "sin(x)/x"},
		{symbolic.DivOf(symbolic.PowOf(x(), symbolic.N(2)), symbolic.N(2)), "x^2/2"},
		{symbolic.MulOf(symbolic.N(-1), x()), "-x"},
		{symbolic.DivOf(symbolic.N(1), x()), "1/x"},
	}
	for _, c := range cases {
		if c.expr.String() != c.want {
			t.Errorf("want %s, got %s", c.want, c.expr.String())
		}
	}
}

func TestMul_LaTeXFraction(t *testing.T) {
	got := symbolic.DivOf(symbolic.PowOf(x(), symbolic.N(2)), symbolic.N(2)).LaTeX()
	if got != `\frac{x^{2}}{2}` {
		t.Errorf(`want \frac{x^{2}}{2}, got %s`, got)
	}
}

func TestPow_ExactRoots(t *testing.T) {
	if got := symbolic.SqrtOf(symbolic.N(4)); got.String() != "2" {
		t.Errorf("sqrt(4): want 2, got %s", got)
	}
	if got := symbolic.SqrtOf(symbolic.N(2)); got.String() != "sqrt(2)" {
		t.Errorf("sqrt(2): want sqrt(2), got %s", got)
	}
	if got := symbolic.PowOf(symbolic.F(8, 27), symbolic.F(1, 3)); got.String() != "2/3" {
		t.Errorf("(8/27)^(1/3): want 2/3, got %s", got)
	}
}

func TestPow_DivisionByZero(t *testing.T) {
	if got := symbolic.DivOf(symbolic.N(1), symbolic.N(0)); got.String() != "zoo" {
		t.Errorf("1/0: want zoo, got %s", got)
	}
	if got := symbolic.DivOf(symbolic.N(0), symbolic.N(0)); got.String() != "nan" {
		t.Errorf("0/0: want nan, got %s", got)
	}
}

func TestFunc_SpecialValues(t *testing.T) {
	cases := []struct {
		expr symbolic.Expr
		want string
	}{
		{symbolic.SinOf(symbolic.N(0)), "0"},
		{symbolic.SinOf(symbolic.Pi), "0"},
		{symbolic.CosOf(symbolic.Pi), "-1"},
		{symbolic.ExpOf(symbolic.N(0)), "1"},
		{symbolic.LnOf(symbolic.E), "1"},
		{symbolic.LnOf(symbolic.ExpOf(x())), "x"},
		{symbolic.AbsOf(symbolic.N(-3)), "3"},
		{symbolic.FloorOf(symbolic.F(-1, 2)), "-1"},
		{symbolic.CeilOf(symbolic.F(1, 2)), "1"},
		{symbolic.LnOf(symbolic.N(2)), "ln(2)"},
		{symbolic.LnOf(symbolic.N(0)), "-oo"},
	}
	for _, c := range cases {
		if c.expr.String() != c.want {
			t.Errorf("want %s, got %s", c.want, c.expr.String())
		}
	}
}

func TestExpand_Product(t *testing.T) {
	e := symbolic.MulOf(symbolic.N(2), x(), symbolic.AddOf(x(), symbolic.N(1)))
	if got := symbolic.Expand(e); got.String() != "2*x^2 + 2*x" {
		t.Errorf("want 2*x^2 + 2*x, got %s", got)
	}
}

func TestAsPolynomial(t *testing.T) {
	e := symbolic.MustParse("(x - 1)^2")
	coeffs, ok := symbolic.AsPolynomial(e, symbolic.Var)
	if !ok {
		t.Fatal("expected a polynomial")
	}
	want := []string{"1", "-2", "1"}
	if len(coeffs) != len(want) {
		t.Fatalf("want %d coefficients, got %d", len(want), len(coeffs))
	}
	for i, c := range coeffs {
		if c.String() != want[i] {
			t.Errorf("coeff %d: want %s, got %s", i, want[i], c)
		}
	}
	if _, ok := symbolic.AsPolynomial(symbolic.SinOf(x()), symbolic.Var); ok {
		t.Error("sin(x) is not a polynomial")
	}
}

func TestTogether(t *testing.T) {
	num, den := symbolic.Together(symbolic.MustParse("sin(x)/x"))
	if num.String() != "sin(x)" || den.String() != "x" {
		t.Errorf("want sin(x) / x, got %s / %s", num, den)
	}
	if den := symbolic.Denominator(symbolic.MustParse("x^2 + 1")); den.String() != "1" {
		t.Errorf("polynomial denominator: want 1, got %s", den)
	}
	if den := symbolic.Denominator(symbolic.MustParse("1/(x^2 - 1)")); den.String() != "x^2 - 1" {
		t.Errorf("want x^2 - 1, got %s", den)
	}
}

func TestFreeSymbols(t *testing.T) {
	if symbolic.DependsOn(symbolic.MustParse("sin(pi) + 2"), symbolic.Var) {
		t.Error("constant expression should not depend on x")
	}
	if !symbolic.DependsOn(symbolic.MustParse("2 + ln(x)"), symbolic.Var) {
		t.Error("ln(x) depends on x")
	}
}
