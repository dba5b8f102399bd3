package symbolic

import (
	"context"
	"sync"
)

// Options tunes the numeric fallbacks of the kernel. Exact paths ignore it.
type Options struct {
	// ScanRange is the half-width of the window [-ScanRange, ScanRange]
	// searched for roots that have no closed form.
	ScanRange float64 `yaml:"scan_range"`
	// ScanPoints is the number of grid points in that window.
	ScanPoints int `yaml:"scan_points"`
	// RootTolerance is the largest |f(r)| accepted for a numeric root; sign
	// changes with a larger residual are poles, not roots.
	RootTolerance float64 `yaml:"root_tolerance"`
	// MaxLHopital bounds repeated applications of L'Hôpital's rule.
	MaxLHopital int `yaml:"max_lhopital"`
}

func DefaultOptions() Options {
	return Options{
		ScanRange:     10,
		ScanPoints:    4001,
		RootTolerance: 1e-6,
		MaxLHopital:   5,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ScanRange <= 0 {
		o.ScanRange = d.ScanRange
	}
	if o.ScanPoints < 2 {
		o.ScanPoints = d.ScanPoints
	}
	if o.RootTolerance <= 0 {
		o.RootTolerance = d.RootTolerance
	}
	if o.MaxLHopital <= 0 {
		o.MaxLHopital = d.MaxLHopital
	}
	return o
}

var (
	configureOnce sync.Once
	globalOptions = DefaultOptions()
)

// Configure sets the process-wide options. Only the first call, and only if
// it happens before any kernel is created, has an effect; it reports whether
// the options were applied.
func Configure(o Options) bool {
	applied := false
	configureOnce.Do(func() {
		globalOptions = o.withDefaults()
		applied = true
	})
	return applied
}

// CurrentOptions freezes and returns the process-wide options.
func CurrentOptions() Options {
	configureOnce.Do(func() {})
	return globalOptions
}

// Kernel is the symbolic math provider consumed by the analysis engine.
// Every method is safe for concurrent use; a Kernel holds no mutable state.
type Kernel struct {
	opts Options
}

func NewKernel() *Kernel { return &Kernel{opts: CurrentOptions()} }

// NewKernelWithOptions builds a kernel that ignores the process-wide options.
func NewKernelWithOptions(o Options) *Kernel { return &Kernel{opts: o.withDefaults()} }

func (k *Kernel) Options() Options { return k.opts }

func (k *Kernel) Parse(ctx context.Context, text string) (Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Parse(text)
}

func (k *Kernel) Differentiate(ctx context.Context, e Expr) (Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Diff(e, Var), nil
}

func (k *Kernel) IndefiniteIntegral(ctx context.Context, e Expr) (Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Integrate(e)
}

func (k *Kernel) Simplify(ctx context.Context, e Expr) (Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Simplify(), nil
}

func (k *Kernel) Denominator(ctx context.Context, e Expr) (Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Denominator(e), nil
}

func (k *Kernel) EvaluateAt(ctx context.Context, e Expr, at Expr) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	return EvaluateAt(e, at), nil
}

// NumericEvaluate is the batchable float path used by samplers.
func (k *Kernel) NumericEvaluate(e Expr, x float64) (float64, error) {
	return EvalFloat(e, Var, x)
}

// ============================================================
// Package-level helpers
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func Diff2(expr Expr, varName string) Expr {
	return Diff(Diff(expr, varName), varName)
}
