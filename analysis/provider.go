package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/njchilds90/calctool/symbolic"
)

// Provider is the exact-algebra backend. *symbolic.Kernel implements it.
type Provider interface {
	Parse(ctx context.Context, text string) (symbolic.Expr, error)
	Differentiate(ctx context.Context, e symbolic.Expr) (symbolic.Expr, error)
	IndefiniteIntegral(ctx context.Context, e symbolic.Expr) (symbolic.Expr, error)
	DefiniteIntegral(ctx context.Context, e, a, b symbolic.Expr) (symbolic.Value, error)
	Limit(ctx context.Context, e, p symbolic.Expr, dir symbolic.Direction) (symbolic.Value, error)
	SolveReal(ctx context.Context, e symbolic.Expr) ([]symbolic.Value, error)
	SolveRealIn(ctx context.Context, e symbolic.Expr, lo, hi float64) ([]symbolic.Value, error)
	Simplify(ctx context.Context, e symbolic.Expr) (symbolic.Expr, error)
	Denominator(ctx context.Context, e symbolic.Expr) (symbolic.Expr, error)
	EvaluateAt(ctx context.Context, e, at symbolic.Expr) (symbolic.Value, error)
	NumericEvaluate(e symbolic.Expr, x float64) (float64, error)
}

var _ Provider = (*symbolic.Kernel)(nil)

// guarded runs every provider call on its own goroutine under a deadline.
// The result channel is buffered so a call abandoned at the deadline can
// still finish and exit.
type guarded struct {
	p       Provider
	timeout time.Duration
}

func call[T any](ctx context.Context, g guarded, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: &ComputationError{Op: op, Err: fmt.Errorf("panic: %v", r)}}
			}
		}()
		v, err := fn(cctx)
		done <- outcome{v: v, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil && errors.Is(o.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, fmt.Errorf("%w: %s after %s", ErrComputationTimeout, op, g.timeout)
		}
		return o.v, o.err
	case <-cctx.Done():
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, fmt.Errorf("%w: %s after %s", ErrComputationTimeout, op, g.timeout)
	}
}

func (g guarded) Parse(ctx context.Context, text string) (symbolic.Expr, error) {
	return call(ctx, g, "parse", func(ctx context.Context) (symbolic.Expr, error) {
		return g.p.Parse(ctx, text)
	})
}

func (g guarded) Differentiate(ctx context.Context, e symbolic.Expr) (symbolic.Expr, error) {
	return call(ctx, g, "differentiate", func(ctx context.Context) (symbolic.Expr, error) {
		return g.p.Differentiate(ctx, e)
	})
}

func (g guarded) IndefiniteIntegral(ctx context.Context, e symbolic.Expr) (symbolic.Expr, error) {
	return call(ctx, g, "integrate", func(ctx context.Context) (symbolic.Expr, error) {
		return g.p.IndefiniteIntegral(ctx, e)
	})
}

func (g guarded) DefiniteIntegral(ctx context.Context, e, a, b symbolic.Expr) (symbolic.Value, error) {
	return call(ctx, g, "definite integral", func(ctx context.Context) (symbolic.Value, error) {
		return g.p.DefiniteIntegral(ctx, e, a, b)
	})
}

func (g guarded) Limit(ctx context.Context, e, p symbolic.Expr, dir symbolic.Direction) (symbolic.Value, error) {
	return call(ctx, g, "limit", func(ctx context.Context) (symbolic.Value, error) {
		return g.p.Limit(ctx, e, p, dir)
	})
}

func (g guarded) SolveReal(ctx context.Context, e symbolic.Expr) ([]symbolic.Value, error) {
	return call(ctx, g, "solve", func(ctx context.Context) ([]symbolic.Value, error) {
		return g.p.SolveReal(ctx, e)
	})
}

func (g guarded) SolveRealIn(ctx context.Context, e symbolic.Expr, lo, hi float64) ([]symbolic.Value, error) {
	return call(ctx, g, "solve", func(ctx context.Context) ([]symbolic.Value, error) {
		return g.p.SolveRealIn(ctx, e, lo, hi)
	})
}

func (g guarded) Simplify(ctx context.Context, e symbolic.Expr) (symbolic.Expr, error) {
	return call(ctx, g, "simplify", func(ctx context.Context) (symbolic.Expr, error) {
		return g.p.Simplify(ctx, e)
	})
}

func (g guarded) Denominator(ctx context.Context, e symbolic.Expr) (symbolic.Expr, error) {
	return call(ctx, g, "denominator", func(ctx context.Context) (symbolic.Expr, error) {
		return g.p.Denominator(ctx, e)
	})
}

func (g guarded) EvaluateAt(ctx context.Context, e, at symbolic.Expr) (symbolic.Value, error) {
	return call(ctx, g, "evaluate", func(ctx context.Context) (symbolic.Value, error) {
		return g.p.EvaluateAt(ctx, e, at)
	})
}
