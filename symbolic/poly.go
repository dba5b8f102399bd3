package symbolic

// ============================================================
// Expansion
// ============================================================

// maxExpandPower bounds integer powers of sums that Expand multiplies out.
const maxExpandPower = 10

func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return expandExpr(AddOf(terms...))
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			exp := n.val.Num().Int64()
			if exp >= 0 && exp <= maxExpandPower {
				result := Expr(N(1))
				base := expandExpr(v.base)
				for i := int64(0); i < exp; i++ {
					result = mulExpanded(result, base)
				}
				return result
			}
		}
		return PowOf(expandExpr(v.base), expandExpr(v.exp))
	case *Func:
		return funcOf(v.name, expandExpr(v.arg)).Simplify()
	}
	return e
}

// mulExpanded distributes a*b term by term. Products of like sums are
// never formed, so MulOf cannot fold them back into a power.
func mulExpanded(a, b Expr) Expr {
	if s, ok := a.(*Add); ok {
		terms := make([]Expr, len(s.terms))
		for i, t := range s.terms {
			terms[i] = mulExpanded(t, b)
		}
		return AddOf(terms...)
	}
	if s, ok := b.(*Add); ok {
		terms := make([]Expr, len(s.terms))
		for i, t := range s.terms {
			terms[i] = mulExpanded(a, t)
		}
		return AddOf(terms...)
	}
	return MulOf(a, b)
}

// ============================================================
// Polynomial utilities
// ============================================================

// maxPolyDegree is the largest degree AsPolynomial recognises.
const maxPolyDegree = 64

// AsPolynomial returns the exact rational coefficients of e as a polynomial
// in varName, indexed by degree. ok is false when e is not a polynomial with
// rational coefficients.
func AsPolynomial(e Expr, varName string) (coeffs []*Num, ok bool) {
	expanded := Expand(e)
	var terms []Expr
	if a, isAdd := expanded.(*Add); isAdd {
		terms = a.terms
	} else {
		terms = []Expr{expanded}
	}
	byDegree := map[int]*Num{}
	maxDeg := 0
	for _, t := range terms {
		if n, isNum := t.(*Num); isNum {
			byDegree[0] = addOrSet(byDegree[0], n)
			continue
		}
		c, rest := splitCoeff(t)
		d, isMono := monomialDegree(rest, varName)
		if !isMono {
			return nil, false
		}
		byDegree[d] = addOrSet(byDegree[d], c)
		if d > maxDeg {
			maxDeg = d
		}
	}
	coeffs = make([]*Num, maxDeg+1)
	for i := range coeffs {
		if c, seen := byDegree[i]; seen {
			coeffs[i] = c
		} else {
			coeffs[i] = N(0)
		}
	}
	for len(coeffs) > 1 && coeffs[len(coeffs)-1].IsZero() {
		coeffs = coeffs[:len(coeffs)-1]
	}
	return coeffs, true
}

func addOrSet(acc, n *Num) *Num {
	if acc == nil {
		return n
	}
	return numAdd(acc, n)
}

func monomialDegree(e Expr, varName string) (int, bool) {
	switch v := e.(type) {
	case *Sym:
		return 1, v.name == varName
	case *Pow:
		sym, ok := v.base.(*Sym)
		if !ok || sym.name != varName {
			return 0, false
		}
		n, ok := v.exp.(*Num)
		if !ok || !n.IsInteger() || n.IsNegative() || n.Float64() > maxPolyDegree {
			return 0, false
		}
		return int(n.val.Num().Int64()), true
	}
	return 0, false
}

// Degree returns the polynomial degree of e in varName, or -1 when e is not a
// polynomial with rational coefficients.
func Degree(e Expr, varName string) int {
	coeffs, ok := AsPolynomial(e, varName)
	if !ok {
		return -1
	}
	return len(coeffs) - 1
}

// PolyFromCoeffs builds sum(coeffs[i] * x^i).
func PolyFromCoeffs(coeffs []*Num, varName string) Expr {
	terms := make([]Expr, 0, len(coeffs))
	for i, c := range coeffs {
		terms = append(terms, MulOf(c, PowOf(S(varName), N(int64(i)))))
	}
	return AddOf(terms...)
}

// ============================================================
// Rational form
// ============================================================

// Together combines e into a single fraction num/den. Function applications
// are atomic: sin(x)/x has numerator sin(x) and denominator x.
func Together(e Expr) (num, den Expr) {
	switch v := e.(type) {
	case *Add:
		num, den = Together(v.terms[0])
		for _, t := range v.terms[1:] {
			n, d := Together(t)
			if d.Equal(den) {
				num = AddOf(num, n)
				continue
			}
			num = AddOf(MulOf(num, d), MulOf(n, den))
			den = MulOf(den, d)
		}
		return num, den
	case *Mul:
		nums := make([]Expr, 0, len(v.factors))
		dens := make([]Expr, 0, len(v.factors))
		for _, f := range v.factors {
			n, d := Together(f)
			nums = append(nums, n)
			dens = append(dens, d)
		}
		return MulOf(nums...), MulOf(dens...)
	case *Pow:
		en, ok := v.exp.(*Num)
		if !ok {
			return e, N(1)
		}
		if en.IsNegative() {
			pos := numNeg(en)
			if !pos.IsInteger() {
				return N(1), PowOf(v.base, pos)
			}
			bn, bd := Together(v.base)
			return PowOf(bd, pos), PowOf(bn, pos)
		}
		if en.IsInteger() {
			bn, bd := Together(v.base)
			return PowOf(bn, en), PowOf(bd, en)
		}
	}
	return e, N(1)
}

// Denominator returns the denominator of e written as a single fraction.
func Denominator(e Expr) Expr {
	_, den := Together(e.Simplify())
	return den
}

// Numerator returns the numerator of e written as a single fraction.
func Numerator(e Expr) Expr {
	num, _ := Together(e.Simplify())
	return num
}
