package event_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const defaultYAML = `
version: "1"
base: proto
fallback: prime
metric: purchased:proto
run:
  trials: 200
  workers: 2
  max_iterations: 50000
`

const pandoraYAML = `
version: "7"
target: all:prime
variants:
  proto: {vehicle_probability: 0.02, possible_vehicles: 10, container_probability: 0.2, pity_threshold: 50}
  alpha: {vehicle_probability: 0.05, possible_vehicles: 5, container_probability: 0.2, pity_threshold: 40}
  prime: {vehicle_probability: 0.1, possible_vehicles: 3, container_probability: 0.2, pity_threshold: 20}
routing:
  proto: {proto: 0.23, alpha: 0.75, prime: 0.02}
  alpha: {proto: 0.02, alpha: 0.23, prime: 0.75}
  prime: {proto: 0.75, alpha: 0.23, prime: 0.02}
preowned: {proto: 1}
run:
  seed: 42
`

// writeConfigs lays out <dir>/events/<name>.yaml for each entry.
func writeConfigs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "events"), 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "events", name+".yaml"), []byte(body), 0o644))
	}
	return dir
}

func ptr[T any](v T) *T { return &v }
