package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/njchilds90/calctool/analysis"
	"github.com/njchilds90/calctool/internal/config"
	"github.com/njchilds90/calctool/numeric"
	"github.com/njchilds90/calctool/sampling"
	"github.com/njchilds90/calctool/symbolic"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T, opts ...analysis.Option) http.Handler {
	t.Helper()
	engine := analysis.NewEngine(symbolic.NewKernelWithOptions(symbolic.DefaultOptions()), opts...)
	return New(engine, config.DefaultConfig().Server, nil).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyze_OK(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/analyze",
		`{"function_text": "sin(x)/x", "mode": "limite", "parameters": {"point": 0}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "limit", body["mode"])
	assert.Nil(t, body["error_message"])
	assert.Equal(t, rec.Header().Get(RequestIDHeader), body["request_id"])
	sample := body["sample_data"].(map[string]any)
	assert.Equal(t, "removable_discontinuity", sample["classification"])
}

func TestAnalyze_StatusCodes(t *testing.T) {
	h := newTestServer(t)
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"schema violation", `{"function_text": "x", "mode": "taylor"}`, http.StatusBadRequest},
		{"trailing data", `{"function_text": "x", "mode": "limit"} {}`, http.StatusBadRequest},
		{"too many rectangles", `{"function_text": "x", "mode": "integral", "parameters": {"rectangle_count": 5000}}`, http.StatusBadRequest},
		{"parse error", `{"function_text": "sin(x", "mode": "limit"}`, http.StatusUnprocessableEntity},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/analyze", c.body)
			assert.Equal(t, c.status, rec.Code, rec.Body.String())
		})
	}
}

func TestAnalyze_ParseErrorEnvelope(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/analyze", `{"function_text": "x +", "mode": "derivative"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "x +", body["function_text"])
	assert.Equal(t, "derivative", body["mode"])
	assert.NotEmpty(t, body["error_message"])
	assert.Nil(t, body["sample_data"])
	assert.Empty(t, body["steps"])
}

// slowProvider blocks in Differentiate until its context ends.
type slowProvider struct{ *symbolic.Kernel }

func (slowProvider) Differentiate(ctx context.Context, _ symbolic.Expr) (symbolic.Expr, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAnalyze_TimeoutIs504(t *testing.T) {
	settings := analysis.DefaultSettings()
	settings.ProviderTimeout = 10 * time.Millisecond
	engine := analysis.NewEngine(slowProvider{symbolic.NewKernel()}, analysis.WithSettings(settings))
	h := New(engine, config.DefaultConfig().Server, nil).Handler()

	rec := do(t, h, http.MethodPost, "/analyze", `{"function_text": "x^2", "mode": "derivative"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "timed out")
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.MaxBodyBytes = 16
	h := New(analysis.NewEngine(symbolic.NewKernel()), cfg, nil).Handler()

	rec := do(t, h, http.MethodPost, "/analyze", `{"function_text": "x^2 + x^3 + x^4", "mode": "limit"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "a fresh id is assigned")

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader), "a valid incoming id is kept")
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/analyze", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))

	rec = do(t, h, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSchemaAndHealth(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var schema map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schema))
	assert.Equal(t, "object", schema["type"])

	rec = do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func parabola(t *testing.T) sampling.Series {
	t.Helper()
	grid, err := sampling.Linspace(-2, 2, 401)
	require.NoError(t, err)
	pts := make([]sampling.Sample, len(grid))
	for i, x := range grid {
		pts[i] = sampling.Sample{X: x, Y: numeric.Of(x * x)}
	}
	return sampling.Series{Points: pts}
}

func TestFastTangent(t *testing.T) {
	body, err := json.Marshal(TangentRequest{Series: parabola(t), T: 1})
	require.NoError(t, err)

	rec := do(t, newTestServer(t), http.MethodPost, "/fast/tangent", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tan sampling.Tangent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tan))
	assert.True(t, tan.Approximate)
	assert.InDelta(t, 1, tan.X0, 0.011)
	assert.InDelta(t, 2*tan.X0, tan.Slope, 1e-6)
}

func TestFastTangent_Gap(t *testing.T) {
	series := parabola(t)
	series.Points[300].Y = numeric.Undefined
	body, err := json.Marshal(TangentRequest{Series: series, T: series.Points[300].X})
	require.NoError(t, err)

	rec := do(t, newTestServer(t), http.MethodPost, "/fast/tangent", string(body))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFastTangent_OutsideSeries(t *testing.T) {
	body, err := json.Marshal(TangentRequest{Series: parabola(t), T: 50})
	require.NoError(t, err)

	rec := do(t, newTestServer(t), http.MethodPost, "/fast/tangent", string(body))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "outside the sampled range")
}

func TestFastRiemann(t *testing.T) {
	body, err := json.Marshal(RiemannRequest{Series: parabola(t), A: 0, B: 2, N: 4})
	require.NoError(t, err)

	rec := do(t, newTestServer(t), http.MethodPost, "/fast/riemann", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sum sampling.RiemannSum
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	require.Len(t, sum.Rectangles, 4)
	// Left endpoints 0, 0.5, 1, 1.5 with width 0.5.
	assert.InDelta(t, 1.75, sum.Net, 1e-9)
}

func TestFastRiemann_RejectsCount(t *testing.T) {
	for _, n := range []string{"0", "1001"} {
		rec := do(t, newTestServer(t), http.MethodPost, "/fast/riemann",
			`{"series": {"points": []}, "a": 0, "b": 1, "n": `+n+`}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, n)
	}
	rec := do(t, newTestServer(t), http.MethodPost, "/fast/riemann", `{"series": {}, "bogus": true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.Addr = "127.0.0.1:0"
	srv := New(analysis.NewEngine(symbolic.NewKernel()), cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
