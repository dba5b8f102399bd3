package analysis

import (
	"fmt"

	"github.com/njchilds90/calctool/numeric"
	"github.com/njchilds90/calctool/sampling"
)

// Role tags a narration step for presentation.
type Role string

const (
	RoleHeading    Role = "heading"
	RoleStatement  Role = "statement"
	RoleConclusion Role = "conclusion"
)

// Step is one line of the derivation. It carries no computation state.
type Step struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

type narration []Step

func (n *narration) heading(format string, args ...any) {
	*n = append(*n, Step{Role: RoleHeading, Text: fmt.Sprintf(format, args...)})
}

func (n *narration) statement(format string, args ...any) {
	*n = append(*n, Step{Role: RoleStatement, Text: fmt.Sprintf(format, args...)})
}

func (n *narration) conclusion(format string, args ...any) {
	*n = append(*n, Step{Role: RoleConclusion, Text: fmt.Sprintf(format, args...)})
}

// Result is the fully serialized outcome of one request. It holds numbers,
// nulls and text only. A Result with ErrorMessage set carries nothing else.
type Result struct {
	RequestID          string     `json:"request_id,omitempty"`
	FunctionText       string     `json:"function_text"`
	Expression         string     `json:"expression,omitempty"`
	Mode               Mode       `json:"mode"`
	SymbolicResultText string     `json:"symbolic_result_text"`
	SymbolicResultTeX  string     `json:"symbolic_result_latex,omitempty"`
	Steps              []Step     `json:"steps"`
	SampleData         SampleData `json:"sample_data"`
	ErrorMessage       *string    `json:"error_message"`
}

// SampleData is the mode-specific plot payload. The set of implementations
// is closed: LimitData, DerivativeData, CriticalPointsData, IntegralData.
type SampleData interface {
	Mode() Mode
	sampleData()
}

// ============================================================
// Limit
// ============================================================

// Classification is the continuity verdict at a point.
type Classification string

const (
	Continuous             Classification = "continuous"
	RemovableDiscontinuity Classification = "removable_discontinuity"
	NoLimit                Classification = "no_limit"
)

// MarkerStyle distinguishes a filled point from a hole.
type MarkerStyle string

const (
	MarkerClosed MarkerStyle = "closed"
	MarkerOpen   MarkerStyle = "open"
)

// Marker highlights the limit point. Show is false for NoLimit.
type Marker struct {
	Show  bool          `json:"show"`
	X     float64       `json:"x"`
	Y     numeric.Float `json:"y"`
	Style MarkerStyle   `json:"style,omitempty"`
}

type LimitData struct {
	Point          float64             `json:"point"`
	Left           numeric.Float       `json:"left"`
	Right          numeric.Float       `json:"right"`
	Limit          numeric.Float       `json:"limit"`
	Value          numeric.Float       `json:"value"`
	Classification Classification      `json:"classification"`
	Marker         Marker              `json:"marker"`
	Series         sampling.DualSeries `json:"series"`
}

func (LimitData) Mode() Mode  { return ModeLimit }
func (LimitData) sampleData() {}

// ============================================================
// Derivative
// ============================================================

type DerivativeData struct {
	Derivative   string `json:"derivative"`
	TangentPoint float64 `json:"tangent_point"`
	// Tangent is nil when f(t) or f'(t) is undefined.
	Tangent     *sampling.Tangent `json:"tangent"`
	TangentText string            `json:"tangent_text"`
	// Function is the dense grid the fast-path tangent reads.
	Function        sampling.Series `json:"function"`
	DerivativeCurve sampling.Series `json:"derivative_curve"`
}

func (DerivativeData) Mode() Mode  { return ModeDerivative }
func (DerivativeData) sampleData() {}

// ============================================================
// Critical points
// ============================================================

// PointKind classifies a critical point by the sign of f''.
type PointKind string

const (
	Minimum       PointKind = "minimum"
	Maximum       PointKind = "maximum"
	Inflection    PointKind = "inflection"
	Indeterminate PointKind = "indeterminate"
)

type CriticalPoint struct {
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Kind  PointKind `json:"kind"`
	XText string    `json:"x_text"`
}

type CriticalPointsData struct {
	Derivative string          `json:"derivative"`
	Points     []CriticalPoint `json:"points"`
	Function   sampling.Series `json:"function"`
}

func (CriticalPointsData) Mode() Mode  { return ModeCriticalPoints }
func (CriticalPointsData) sampleData() {}

// ============================================================
// Integral
// ============================================================

type IntegralData struct {
	A              float64             `json:"a"`
	B              float64             `json:"b"`
	Antiderivative string              `json:"antiderivative,omitempty"`
	Net            numeric.Float       `json:"net"`
	Geometric      numeric.Float       `json:"geometric"`
	NetText        string              `json:"net_text"`
	GeometricText  string              `json:"geometric_text"`
	Singularities  []float64           `json:"singularities"`
	Riemann        sampling.RiemannSum `json:"riemann"`
	Function       sampling.Series     `json:"function"`
}

func (IntegralData) Mode() Mode  { return ModeIntegral }
func (IntegralData) sampleData() {}
