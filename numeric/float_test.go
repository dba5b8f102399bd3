package numeric_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/calctool/numeric"
	"github.com/njchilds90/calctool/symbolic"
)

func TestOf_NonFiniteIsUndefined(t *testing.T) {
	assert.False(t, numeric.Of(math.NaN()).Defined())
	assert.False(t, numeric.Of(math.Inf(1)).Defined())
	assert.False(t, numeric.Of(math.Inf(-1)).Defined())

	v, ok := numeric.Of(2.5).Get()
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)
}

func TestZeroValueIsUndefined(t *testing.T) {
	var f numeric.Float
	assert.False(t, f.Defined())
	assert.Equal(t, 7.0, f.Or(7))
	assert.Equal(t, "undefined", f.String())
}

func TestSub(t *testing.T) {
	assert.Equal(t, numeric.Of(1), numeric.Of(3).Sub(numeric.Of(2)))
	assert.False(t, numeric.Of(3).Sub(numeric.Undefined).Defined())
}

func TestApproxEqual(t *testing.T) {
	assert.True(t, numeric.ApproxEqual(numeric.Of(1), numeric.Of(1+1e-9), 1e-6))
	assert.False(t, numeric.ApproxEqual(numeric.Of(1), numeric.Of(1.1), 1e-6))
	assert.False(t, numeric.ApproxEqual(numeric.Undefined, numeric.Undefined, 1e-6))
}

func TestJSON_NullWhenUndefined(t *testing.T) {
	type point struct {
		X numeric.Float `json:"x"`
		Y numeric.Float `json:"y"`
	}
	out, err := json.Marshal(point{X: numeric.Of(0.5), Y: numeric.Undefined})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":0.5,"y":null}`, string(out))

	var back point
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, numeric.Of(0.5), back.X)
	assert.False(t, back.Y.Defined())
}

func TestConvert_RuleOrder(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		defined bool
		want    float64
	}{
		{"rational", "1/4", true, 0.25},
		{"symbolic real", "ln(e^2)", true, 2},
		{"complex", "sqrt(-1)", false, 0},
		{"complex infinity", "1/0", false, 0},
		{"indeterminate", "0/0", false, 0},
		{"negative infinity", "ln(0)", false, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := numeric.Convert(symbolic.ValueOf(symbolic.MustParse(c.in)))
			require.Equal(t, c.defined, f.Defined(), f.String())
			if c.defined {
				assert.InDelta(t, c.want, f.Or(math.NaN()), 1e-12)
			}
		})
	}
}

func TestEval_DomainErrorIsUndefined(t *testing.T) {
	assert.False(t, numeric.Eval(symbolic.MustParse("1/x"), 0).Defined())
	assert.Equal(t, numeric.Of(4), numeric.Eval(symbolic.MustParse("x^2"), 2))
}
