package symbolic

import (
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// SubOf returns a - b.
func SubOf(a, b Expr) Expr { return AddOf(a, MulOf(N(-1), b)) }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	if sp := addSpecials(flat); sp != nil {
		return sp
	}

	// Like terms share the same non-numeric part; only the coefficients add.
	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, n)
			continue
		}
		c, rest := splitCoeff(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], c)
	}
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		if coeffs[key].IsZero() {
			continue
		}
		result = append(result, scale(coeffs[key], rests[key]))
	}
	sortTerms(result)
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func addSpecials(terms []Expr) Expr {
	var pos, neg, zoo bool
	for _, t := range terms {
		s, ok := isSpecial(t)
		if !ok {
			continue
		}
		switch s.kind {
		case specialNaN:
			return NaN
		case specialPosInf:
			pos = true
		case specialNegInf:
			neg = true
		case specialComplexInf:
			zoo = true
		}
	}
	switch {
	case zoo && (pos || neg):
		return NaN
	case zoo:
		return ComplexInfinity
	case pos && neg:
		return NaN
	case pos:
		return Infinity
	case neg:
		return NegInfinity
	}
	return nil
}

func (a *Add) String() string {
	var b strings.Builder
	for i, t := range a.terms {
		neg, abs := negParts(t)
		switch {
		case i == 0 && neg:
			b.WriteString("-")
		case i > 0 && neg:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		b.WriteString(abs.String())
	}
	return b.String()
}

func (a *Add) LaTeX() string {
	var b strings.Builder
	for i, t := range a.terms {
		neg, abs := negParts(t)
		switch {
		case i == 0 && neg:
			b.WriteString("-")
		case i > 0 && neg:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		b.WriteString(abs.LaTeX())
	}
	return b.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) Terms() []Expr    { return a.terms }

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// DivOf returns a / b.
func DivOf(a, b Expr) Expr { return MulOf(a, PowOf(b, N(-1))) }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	if sp, ok := mulSpecials(flat); ok {
		return sp
	}

	// Factors with the same base merge by adding exponents: x*x^2 = x^3.
	type power struct {
		base Expr
		exp  Expr
	}
	coeff := N(1)
	powers := map[string]*power{}
	order := []string{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := asPower(f)
		key := base.String()
		if p, seen := powers[key]; seen {
			p.exp = AddOf(p.exp, exp)
			continue
		}
		powers[key] = &power{base: base, exp: exp}
		order = append(order, key)
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := make([]Expr, 0, len(order))
	var specials []Expr
	for _, key := range order {
		p := powers[key]
		switch v := PowOf(p.base, p.exp).(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Special:
			specials = append(specials, v)
		case *Mul:
			for _, g := range v.factors {
				if n, ok := g.(*Num); ok {
					coeff = numMul(coeff, n)
				} else {
					others = append(others, g)
				}
			}
		default:
			others = append(others, v)
		}
	}
	if len(specials) > 0 {
		all := append(append([]Expr{coeff}, others...), specials...)
		if sp, ok := mulSpecials(all); ok {
			return sp
		}
	}
	if coeff.IsZero() {
		return N(0)
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	switch {
	case len(sorted) == 0:
		return coeff
	case coeff.IsOne() && len(sorted) == 1:
		return sorted[0]
	case coeff.IsOne():
		return &Mul{factors: sorted}
	}
	return &Mul{factors: append([]Expr{coeff}, sorted...)}
}

// mulSpecials folds products that contain an infinity or NaN. It reports
// false when no special factor is present.
func mulSpecials(factors []Expr) (Expr, bool) {
	var found, zoo, zero, unknownSign bool
	sign := 1
	for _, f := range factors {
		switch v := f.(type) {
		case *Special:
			found = true
			switch v.kind {
			case specialNaN:
				return NaN, true
			case specialComplexInf:
				zoo = true
			case specialNegInf:
				sign = -sign
			}
		case *Num:
			if v.IsZero() {
				zero = true
			} else if v.IsNegative() {
				sign = -sign
			}
		default:
			if DependsOn(f, Var) {
				unknownSign = true
				continue
			}
			fv, err := EvalFloat(f, Var, 0)
			switch {
			case err != nil:
				return NaN, true
			case fv == 0:
				zero = true
			case fv < 0:
				sign = -sign
			}
		}
	}
	switch {
	case !found:
		return nil, false
	case zero:
		return NaN, true
	case zoo:
		return ComplexInfinity, true
	case unknownSign:
		return &Mul{factors: factors}, true
	case sign < 0:
		return NegInfinity, true
	}
	return Infinity, true
}

func asPower(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

// fractionParts splits a product into its rational coefficient, numerator
// factors, and denominator factors (returned with positive exponents).
func (m *Mul) fractionParts() (*Num, []Expr, []Expr) {
	coeff := N(1)
	var num, den []Expr
	for _, f := range m.factors {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		if p, ok := f.(*Pow); ok {
			if en, ok2 := p.exp.(*Num); ok2 && en.IsNegative() {
				den = append(den, PowOf(p.base, numNeg(en)))
				continue
			}
		}
		num = append(num, f)
	}
	return coeff, num, den
}

func (m *Mul) String() string {
	coeff, num, den := m.fractionParts()
	sign := ""
	if coeff.IsNegative() {
		sign = "-"
		coeff = numAbs(coeff)
	}
	var numParts, denParts []string
	switch {
	case !coeff.IsInteger() && !coeff.approx:
		if p := coeff.val.Num(); p.Cmp(big.NewInt(1)) != 0 || len(num) == 0 {
			numParts = append(numParts, p.String())
		}
		denParts = append(denParts, coeff.val.Denom().String())
	case !coeff.IsOne() || len(num) == 0:
		numParts = append(numParts, coeff.String())
	}
	for _, f := range num {
		numParts = append(numParts, factorString(f))
	}
	for _, f := range den {
		denParts = append(denParts, factorString(f))
	}
	s := strings.Join(numParts, "*")
	if len(denParts) > 0 {
		d := strings.Join(denParts, "*")
		if len(denParts) > 1 {
			d = "(" + d + ")"
		}
		s += "/" + d
	}
	return sign + s
}

func (m *Mul) LaTeX() string {
	coeff, num, den := m.fractionParts()
	sign := ""
	if coeff.IsNegative() {
		sign = "-"
		coeff = numAbs(coeff)
	}
	var numParts, denParts []string
	switch {
	case !coeff.IsInteger() && !coeff.approx:
		if p := coeff.val.Num(); p.Cmp(big.NewInt(1)) != 0 || len(num) == 0 {
			numParts = append(numParts, p.String())
		}
		denParts = append(denParts, coeff.val.Denom().String())
	case !coeff.IsOne() || len(num) == 0:
		numParts = append(numParts, coeff.LaTeX())
	}
	for _, f := range num {
		numParts = append(numParts, factorLaTeX(f))
	}
	for _, f := range den {
		denParts = append(denParts, f.LaTeX())
	}
	s := strings.Join(numParts, " ")
	if len(denParts) > 0 {
		return sign + `\frac{` + s + `}{` + strings.Join(denParts, " ") + `}`
	}
	return sign + s
}

func factorString(f Expr) string {
	if _, ok := f.(*Add); ok {
		return "(" + f.String() + ")"
	}
	return f.String()
}

func factorLaTeX(f Expr) string {
	if _, ok := f.(*Add); ok {
		return `\left(` + f.LaTeX() + `\right)`
	}
	return f.LaTeX()
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		terms[i] = MulOf(append([]Expr{dfi}, others...)...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) Factors() []Expr  { return m.factors }

// ============================================================
// Term helpers
// ============================================================

// splitCoeff separates the leading rational coefficient of a term.
func splitCoeff(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}

// scale builds c*e for an already simplified, coefficient-free e.
func scale(c *Num, e Expr) Expr {
	if c.IsOne() {
		return e
	}
	if m, ok := e.(*Mul); ok {
		return &Mul{factors: append([]Expr{c}, m.factors...)}
	}
	return &Mul{factors: []Expr{c, e}}
}

// negParts reports whether a term prints with a leading minus and returns
// the term without it.
func negParts(t Expr) (bool, Expr) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return true, numAbs(v)
		}
	case *Mul:
		c, rest := splitCoeff(v)
		if c.IsNegative() {
			return true, scale(numAbs(c), rest)
		}
	}
	return false, t
}

// sortTerms orders terms by descending degree in their symbol, then lexically.
func sortTerms(terms []Expr) {
	type keyed struct {
		e   Expr
		deg float64
		key string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		_, rest := splitCoeff(t)
		ks[i] = keyed{e: t, deg: termDegree(t), key: rest.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].deg != ks[j].deg {
			return ks[i].deg > ks[j].deg
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

func termDegree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok2 := v.exp.(*Num); ok2 {
				return n.Float64()
			}
		}
	case *Mul:
		d := 0.0
		for _, f := range v.factors {
			d += termDegree(f)
		}
		return d
	}
	return 0
}
