package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1000, cfg.Engine.MaxRectangles)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calctool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  grid_points: 401
  provider_timeout: 2s
server:
  addr: "127.0.0.1:9000"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 401, cfg.Engine.GridPoints)
	assert.Equal(t, 2*time.Second, cfg.Engine.ProviderTimeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 1e-6, cfg.Engine.LimitEpsilon)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calctool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  grid_points: 1\n"), 0644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "grid_points")

	require.NoError(t, os.WriteFile(path, []byte("engine: [oops"), 0644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calctool.yaml")
	cfg := DefaultConfig()
	cfg.Engine.JumpThreshold = 250
	cfg.Logging.Development = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("address and level", func(t *testing.T) {
		t.Setenv("CALCTOOL_ADDR", ":9999")
		t.Setenv("CALCTOOL_LOG_LEVEL", "debug")

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ":9999", cfg.Server.Addr)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("provider timeout", func(t *testing.T) {
		t.Setenv("CALCTOOL_PROVIDER_TIMEOUT", "250ms")

		cfg := DefaultConfig()
		require.NoError(t, cfg.applyEnvOverrides())
		assert.Equal(t, 250*time.Millisecond, cfg.Engine.ProviderTimeout)
	})

	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("CALCTOOL_PROVIDER_TIMEOUT", "soon")

		_, err := Load("")
		assert.ErrorContains(t, err, "CALCTOOL_PROVIDER_TIMEOUT")
	})

	t.Run("bad level", func(t *testing.T) {
		t.Setenv("CALCTOOL_LOG_LEVEL", "chatty")

		_, err := Load("")
		assert.ErrorContains(t, err, "invalid logging level")
	})
}
