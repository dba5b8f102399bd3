package analysis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/njchilds90/calctool/numeric"
	"github.com/njchilds90/calctool/sampling"
	"github.com/njchilds90/calctool/symbolic"
)

// Settings are the engine's named thresholds.
type Settings struct {
	// LimitEpsilon is the tolerance for "both sides agree" and for f(p)
	// matching the limit.
	LimitEpsilon float64 `yaml:"limit_epsilon"`
	// WindowHalfWidth is the half-width of the plot window around the
	// point of interest.
	WindowHalfWidth float64 `yaml:"window_half_width"`
	GridPoints      int     `yaml:"grid_points"`
	MaxRectangles   int     `yaml:"max_rectangles"`
	// JumpThreshold feeds the sampler's fallback break heuristic.
	JumpThreshold   float64       `yaml:"jump_threshold"`
	Workers         int           `yaml:"workers"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
}

func DefaultSettings() Settings {
	return Settings{
		LimitEpsilon:    1e-6,
		WindowHalfWidth: 10,
		GridPoints:      801,
		MaxRectangles:   1000,
		JumpThreshold:   sampling.DefaultJumpThreshold,
		Workers:         0,
		ProviderTimeout: 5 * time.Second,
	}
}

func (s Settings) Validate() error {
	switch {
	case !(s.LimitEpsilon > 0):
		return fmt.Errorf("limit_epsilon must be positive, got %g", s.LimitEpsilon)
	case !(s.WindowHalfWidth > 0):
		return fmt.Errorf("window_half_width must be positive, got %g", s.WindowHalfWidth)
	case s.GridPoints < 3:
		return fmt.Errorf("grid_points must be at least 3, got %d", s.GridPoints)
	case s.MaxRectangles < 1:
		return fmt.Errorf("max_rectangles must be at least 1, got %d", s.MaxRectangles)
	case !(s.JumpThreshold > 0):
		return fmt.Errorf("jump_threshold must be positive, got %g", s.JumpThreshold)
	case s.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", s.Workers)
	case s.ProviderTimeout <= 0:
		return fmt.Errorf("provider_timeout must be positive, got %s", s.ProviderTimeout)
	}
	return nil
}

// Engine dispatches requests to the mode analyzers. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	provider Provider
	settings Settings
	logger   *zap.Logger
}

type Option func(*Engine)

func WithSettings(s Settings) Option { return func(e *Engine) { e.settings = s } }

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(p Provider, opts ...Option) *Engine {
	e := &Engine{provider: p, settings: DefaultSettings(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Settings() Settings { return e.settings }

type requestIDKey struct{}

// WithRequestID tags ctx so results and logs carry the id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Analyze runs one request. A parse failure, timeout or unexpected provider
// failure aborts the whole request; values that merely cannot be computed
// come back as undefined.
func (e *Engine) Analyze(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	req = req.WithDefaults()
	defer func() {
		fields := []zap.Field{
			zap.String("request_id", RequestIDFrom(ctx)),
			zap.Stringer("mode", req.Mode),
			zap.Duration("duration", time.Since(start)),
			zap.String("outcome", Classify(err)),
		}
		if err != nil {
			e.logger.Warn("analysis failed", append(fields, zap.Error(err))...)
			return
		}
		e.logger.Info("analysis complete", fields...)
	}()
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, &ComputationError{Op: req.Mode.String(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := req.Validate(e.settings.MaxRectangles); err != nil {
		return nil, err
	}
	s := &session{
		ctx:      ctx,
		p:        guarded{p: e.provider, timeout: e.settings.ProviderTimeout},
		raw:      e.provider,
		settings: e.settings,
	}
	f, err := s.p.Parse(ctx, req.FunctionText)
	if err != nil {
		var pe *symbolic.ParseError
		if errors.As(err, &pe) {
			return nil, &ParseFailure{Text: req.FunctionText, Err: pe}
		}
		return nil, s.fatal("parse", err)
	}

	var out report
	switch req.Mode {
	case ModeLimit:
		out, err = s.limit(f, *req.Parameters.Point)
	case ModeDerivative:
		out, err = s.derivative(f, *req.Parameters.TangentPoint)
	case ModeCriticalPoints:
		out, err = s.criticalPoints(f)
	case ModeIntegral:
		out, err = s.integral(f, *req.Parameters.IntervalStart, *req.Parameters.IntervalEnd, *req.Parameters.RectangleCount)
	default:
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidRequest, int(req.Mode))
	}
	if err != nil {
		return nil, err
	}
	return &Result{
		RequestID:          RequestIDFrom(ctx),
		FunctionText:       req.FunctionText,
		Expression:         f.String(),
		Mode:               req.Mode,
		SymbolicResultText: out.text,
		SymbolicResultTeX:  out.latex,
		Steps:              out.steps,
		SampleData:         out.data,
	}, nil
}

// Envelope is Analyze for transports: any failure becomes ErrorMessage on
// an otherwise empty result.
func (e *Engine) Envelope(ctx context.Context, req Request) *Result {
	res, err := e.Analyze(ctx, req)
	if err == nil {
		return res
	}
	return ErrorResult(ctx, req, err)
}

// ErrorResult is the envelope for a failed request.
func ErrorResult(ctx context.Context, req Request, err error) *Result {
	msg := err.Error()
	return &Result{
		RequestID:    RequestIDFrom(ctx),
		FunctionText: req.FunctionText,
		Mode:         req.Mode,
		Steps:        []Step{},
		ErrorMessage: &msg,
	}
}

// Tangent is the fast-path tangent estimate from a dense series. It is
// approximate and never calls the provider.
func (e *Engine) Tangent(series sampling.Series, t float64) (sampling.Tangent, error) {
	return sampling.TangentAt(series, t)
}

// Riemann is the fast-path rectangle recomputation from a dense series.
func (e *Engine) Riemann(series sampling.Series, a, b float64, n int) (sampling.RiemannSum, error) {
	if n < 1 || n > e.settings.MaxRectangles {
		return sampling.RiemannSum{}, fmt.Errorf("%w: rectangle_count must be between 1 and %d, got %d", ErrInvalidRequest, e.settings.MaxRectangles, n)
	}
	return sampling.RiemannFromSeries(series, a, b, n)
}

// ============================================================
// Per-request session
// ============================================================

type report struct {
	text  string
	latex string
	steps []Step
	data  SampleData
}

type session struct {
	ctx      context.Context
	p        guarded
	raw      Provider
	settings Settings
}

// fatal wraps an error that must abort the request.
func (s *session) fatal(op string, err error) error {
	var ce *ComputationError
	switch {
	case errors.Is(err, ErrComputationTimeout), errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded), errors.As(err, &ce):
		return err
	}
	return &ComputationError{Op: op, Err: err}
}

// local splits a provider error into "this value is undefined" (nil) and a
// fatal error.
func (s *session) local(op string, err error) error {
	if err == nil || isLocal(err) {
		return nil
	}
	return s.fatal(op, err)
}

// exact is an exact value together with its safe float. ok is false when
// the provider could not compute the value at all.
type exact struct {
	v  symbolic.Value
	f  numeric.Float
	ok bool
}

func (x exact) text() string { return valueText(x.v, x.ok) }

// value converts the outcome of an exact computation. Local failures become
// an undefined value; anything else is returned as a fatal error.
func (s *session) value(v symbolic.Value, err error) (exact, error) {
	if err != nil {
		if ferr := s.local("provider", err); ferr != nil {
			return exact{}, ferr
		}
		return exact{v: symbolic.Value{Kind: symbolic.KindIndeterminate}, f: numeric.Undefined}, nil
	}
	return exact{v: v, f: numeric.Convert(v), ok: true}, nil
}

func (s *session) evaluator(e symbolic.Expr) sampling.Evaluator {
	return func(x float64) numeric.Float {
		y, err := s.raw.NumericEvaluate(e, x)
		if err != nil {
			return numeric.Undefined
		}
		return numeric.Of(y)
	}
}

func (s *session) sampler(e symbolic.Expr) *sampling.Sampler {
	return &sampling.Sampler{
		Eval:          s.evaluator(e),
		Workers:       s.settings.Workers,
		JumpThreshold: s.settings.JumpThreshold,
	}
}

// singularities returns the poles of e in [lo, hi], or nil when the
// detector could not decide.
func (s *session) singularities(e symbolic.Expr, lo, hi float64) ([]float64, error) {
	sing, err := sampling.DetectSingularities(s.ctx, s.p, e, lo, hi)
	if err != nil {
		if ferr := s.local("singularities", err); ferr != nil {
			return nil, ferr
		}
		return nil, nil
	}
	return sing, nil
}

// series samples e over [lo, hi] on the configured grid.
func (s *session) series(e symbolic.Expr, lo, hi float64) (sampling.Series, error) {
	grid, err := sampling.Linspace(lo, hi, s.settings.GridPoints)
	if err != nil {
		return sampling.Series{}, s.fatal("grid", err)
	}
	sing, err := s.singularities(e, lo, hi)
	if err != nil {
		return sampling.Series{}, err
	}
	out, err := s.sampler(e).Sample(s.ctx, grid, sing)
	if err != nil {
		return sampling.Series{}, s.fatal("sample", err)
	}
	return out, nil
}

// dualSeries samples e over [lo, hi] split at breakpoint.
func (s *session) dualSeries(e symbolic.Expr, lo, hi, breakpoint float64) (sampling.DualSeries, error) {
	grid, err := sampling.Linspace(lo, hi, s.settings.GridPoints)
	if err != nil {
		return sampling.DualSeries{}, s.fatal("grid", err)
	}
	sing, err := s.singularities(e, lo, hi)
	if err != nil {
		return sampling.DualSeries{}, err
	}
	out, err := s.sampler(e).SampleDual(s.ctx, grid, breakpoint, sing)
	if err != nil {
		return sampling.DualSeries{}, s.fatal("sample", err)
	}
	return out, nil
}

// valueText renders an exact value for narration.
func valueText(v symbolic.Value, ok bool) string {
	if !ok {
		return "not computable"
	}
	switch v.Kind {
	case symbolic.KindPosInfinity:
		return "+∞"
	case symbolic.KindNegInfinity:
		return "-∞"
	case symbolic.KindComplexInfinity:
		return "∞ (unsigned)"
	case symbolic.KindIndeterminate:
		return "undefined"
	case symbolic.KindComplex:
		return v.String() + " (not real)"
	}
	return v.String()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }

// point turns a float parameter into an exact number so 0.1 stays 1/10.
func point(x float64) symbolic.Expr { return symbolic.NDecimal(x) }
