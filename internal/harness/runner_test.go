package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// TestScenarios runs every YAML scenario under testdata. Regenerate the
// golden snapshots with `go test ./internal/harness -update`.
func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenarios found")

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			runner := NewRunner(t)
			require.NoError(t, runner.Run(context.Background(), scenario))

			if scenario.Snapshot {
				g := goldie.New(t)
				g.AssertJson(t, scenario.Name, runner.Snapshot())
			}
		})
	}
}
