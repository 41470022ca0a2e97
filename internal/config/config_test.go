package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "data/fred.db", cfg.Database.Path)
	assert.Equal(t, []string{"UNRATE", "DCOILWTICO"}, cfg.Refresh.Series)
	assert.Equal(t, "1948-01-01", cfg.Refresh.Start)
	assert.Equal(t, 1, cfg.Refresh.Parallel)
	assert.Equal(t, "outputs", cfg.Output.Dir)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/alt.db
data_source:
  base_url: http://localhost:8080
  timeout_seconds: 5
refresh:
  series: [CBBTCUSD, GLOBAL_M2]
  start: "2010-01-01"
  parallel: 4
output:
  dir: artifacts
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/tmp/alt.db", cfg.Database.Path)
	assert.Equal(t, "http://localhost:8080", cfg.DataSource.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, []string{"CBBTCUSD", "GLOBAL_M2"}, cfg.Refresh.Series)
	assert.Equal(t, 4, cfg.Refresh.Parallel)
	assert.Equal(t, "artifacts", cfg.Output.Dir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FREDLENS_DB", "/tmp/env.db")
	t.Setenv("FREDLENS_PARALLEL", "2")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, 2, cfg.Refresh.Parallel)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	cfg.Refresh.Start = "01/02/2000"
	assert.Error(t, cfg.Validate())

	cfg.Refresh.Start = "2000-01-02"
	cfg.Refresh.Parallel = -1
	assert.Error(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
