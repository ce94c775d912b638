package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/eventgraph/internal/ir"
)

// Snapshot renders the outcome of a scenario as canonical JSON.
// Expectation and assertion failures are not part of the snapshot.
func Snapshot(name string, result *Result) ([]byte, error) {
	snap := map[string]any{
		"scenario": name,
		"valid":    result.Valid,
		"events":   result.EventCount,
	}

	if result.Valid {
		snap["root"] = result.Root
		snap["levels"] = result.Levels
	} else {
		errObj := map[string]any{"code": result.ErrorCode}
		if result.ErrorEvent != "" {
			errObj["event"] = result.ErrorEvent
		}
		snap["error"] = errObj
	}

	if len(result.Issues) > 0 {
		snap["issues"] = result.Issues
	}

	if d := result.Diagnostics; d != nil {
		snap["roots"] = d.Roots
		if len(d.Cycles) > 0 {
			cycles := make([][]string, len(d.Cycles))
			for i, c := range d.Cycles {
				cycles[i] = c.Path
			}
			snap["cycles"] = cycles
		}
		if len(d.FanIn) > 0 {
			fanIn := make(map[string][]string, len(d.FanIn))
			for _, f := range d.FanIn {
				fanIn[f.ID] = f.Parents
			}
			snap["fan_in"] = fanIn
		}
	}

	return ir.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
