package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
settings:
  num_clients: 5
  simulation_time: 100
  limit_closest_base_stations: 3
  statistics_params:
    x: {min: -100, max: 100}
    y: {min: -100, max: 100}
    warmup_ratio: 0.1
    cooldown_ratio: 0.1
  seed: 42
slices:
  gaming:
    client_weight: 1.0
    delay_tolerance: 10
    qos_class: 2
    bandwidth_guaranteed: 1
    bandwidth_max: 10
    usage_pattern:
      distribution: uniform
      params: [1, 5]
mobility_patterns:
  stationary:
    client_weight: 1.0
    distribution: uniform
    params: [0, 0.01]
base_stations:
  - x: 0
    y: 0
    coverage: 10
    capacity_bandwidth: 20
    ratios:
      gaming: 1.0
clients:
  location:
    x:
      distribution: uniform
      params: [-10, 10]
    y:
      distribution: uniform
      params: [-10, 10]
  usage_frequency:
    distribution: uniform
    params: [0, 1]
    divide_scale: 10
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Settings.NumClients)
	assert.Equal(t, int64(42), cfg.Settings.Seed)
	assert.True(t, cfg.LatencyTrackingEnabled()) // defaults to true when absent
	assert.True(t, cfg.DynamicAllocationEnabled())
	assert.Equal(t, "info", cfg.LogLevelOrDefault())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoad_UnknownFieldIsStrictlyRejected(t *testing.T) {
	bad := validYAML + "\nnot_a_real_field: true\n"
	path := writeTempConfig(t, bad)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsZeroClients(t *testing.T) {
	path := writeTempConfig(t, `
settings:
  num_clients: 0
  simulation_time: 10
slices:
  a:
    usage_pattern: {distribution: uniform, params: [1,2]}
mobility_patterns:
  m:
    distribution: uniform
    params: [0,1]
base_stations:
  - x: 0
    y: 0
    coverage: 1
    capacity_bandwidth: 1
    ratios: {a: 1}
clients:
  location:
    x: {distribution: uniform, params: [0,1]}
    y: {distribution: uniform, params: [0,1]}
  usage_frequency: {distribution: uniform, params: [0,1]}
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownSliceReferencedByRatios(t *testing.T) {
	bad := `
settings:
  num_clients: 1
  simulation_time: 10
slices:
  a:
    usage_pattern: {distribution: uniform, params: [1,2]}
mobility_patterns:
  m:
    distribution: uniform
    params: [0,1]
base_stations:
  - x: 0
    y: 0
    coverage: 1
    capacity_bandwidth: 1
    ratios: {unknown_slice: 1}
clients:
  location:
    x: {distribution: uniform, params: [0,1]}
    y: {distribution: uniform, params: [0,1]}
  usage_frequency: {distribution: uniform, params: [0,1]}
`
	path := writeTempConfig(t, bad)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_LatencyTrackingEnabled_HonorsExplicitFalse(t *testing.T) {
	f := false
	cfg := &Config{Settings: Settings{LatencyTracking: &f}}
	assert.False(t, cfg.LatencyTrackingEnabled())
}
