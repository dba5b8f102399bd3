package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "calctool.yaml")))
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyze_Plain(t *testing.T) {
	out, err := run(t, "analyze", "x^3 - 3x", "--mode", "pontos_criticos", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "critical_points: f(x) = x^3 - 3x")
	assert.Contains(t, out, "x = -1 (maximum), x = 1 (minimum)")
}

func TestAnalyze_JSON(t *testing.T) {
	out, err := run(t, "analyze", "x", "--mode", "integral", "--from", "-2", "--to", "2", "--json")
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res["request_id"])
	data := res["sample_data"].(map[string]any)
	assert.Equal(t, 0.0, data["net"])
	assert.Equal(t, 4.0, data["geometric"])
}

func TestAnalyze_Failure(t *testing.T) {
	out, err := run(t, "analyze", "sin(x", "--plain")
	assert.ErrorIs(t, err, errAnalysisFailed)
	assert.Contains(t, out, "error: ")

	_, err = run(t, "analyze", "x", "--mode", "taylor")
	assert.ErrorContains(t, err, "valid: limit")
}

func TestSchemaAndVersion(t *testing.T) {
	out, err := run(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"function_text"`)

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "calctool (devel)\n", out)
}
