package render

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/calctool/analysis"
	"github.com/njchilds90/calctool/numeric"
	"github.com/njchilds90/calctool/symbolic"
)

func analyze(t *testing.T, req analysis.Request) *analysis.Result {
	t.Helper()
	return analysis.NewEngine(symbolic.NewKernel()).Envelope(context.Background(), req)
}

func TestResult_Limit(t *testing.T) {
	res := analyze(t, analysis.Request{FunctionText: "sin(x)/x", Mode: analysis.ModeLimit})
	out := Result(res, PlainStyles())

	assert.True(t, strings.HasPrefix(out, "limit: f(x) = sin(x)/x\n"))
	assert.Contains(t, out, "lim x→0 f(x) = 1")
	assert.Contains(t, out, "  Left-hand limit")
	assert.Contains(t, out, "⇒ ")
	assert.Contains(t, out, "removable_discontinuity")
	assert.Contains(t, out, "open at (0, 1)")
}

func TestResult_Error(t *testing.T) {
	res := analyze(t, analysis.Request{FunctionText: "sin(", Mode: analysis.ModeIntegral})
	require.NotNil(t, res.ErrorMessage)
	out := Result(res, PlainStyles())
	assert.Contains(t, out, "error: ")
	assert.NotContains(t, out, "⇒")
}

func TestResult_DefaultStylesKeepText(t *testing.T) {
	res := analyze(t, analysis.Request{FunctionText: "x^3 - 3x", Mode: analysis.ModeCriticalPoints})
	out := Result(res, DefaultStyles())
	assert.Contains(t, out, "x = -1 (maximum), x = 1 (minimum)")
}

func TestSummary(t *testing.T) {
	cases := []struct {
		data analysis.SampleData
		want []string
	}{
		{
			analysis.LimitData{Left: numeric.Undefined, Right: numeric.Of(2), Classification: analysis.NoLimit},
			[]string{"left limit:      undefined", "right limit:     2", "no_limit"},
		},
		{
			analysis.CriticalPointsData{},
			[]string{"critical points: none"},
		},
		{
			analysis.IntegralData{NetText: "0", GeometricText: "4"},
			[]string{"net:             0", "area:            4", "riemann net:"},
		},
		{
			analysis.DerivativeData{TangentText: "tangent not computable"},
			[]string{"tangent:         tangent not computable"},
		},
	}
	for _, c := range cases {
		got := Summary(c.data)
		for _, w := range c.want {
			assert.Contains(t, got, w)
		}
	}
	assert.Empty(t, Summary(nil))
}
