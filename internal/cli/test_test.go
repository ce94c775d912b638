package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTreeScenario = `name: valid_tree
description: "One root with two leaves"
dependencies:
  event-1: [event-2, event-3]
catalog: [event-1, event-2, event-3]
expect:
  valid: true
  root: event-1
`

const wrongExpectationScenario = `name: wrong_expectation
description: "Expects a valid graph but declares a cycle"
dependencies:
  event-1: [event-2]
  event-2: [event-1]
catalog: [event-1, event-2]
expect:
  valid: true
  root: event-1
`

func scenariosDir() string {
	return filepath.Join("..", "..", "testdata", "scenarios")
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := executeCommand(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, _, err := executeCommand(t, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	stdout, _, err := executeCommand(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	stdout, _, err := executeCommand(t, "--format", "json", "test", t.TempDir())
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestHelpText(t *testing.T) {
	stdout, _, err := executeCommand(t, "test", "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "conformance")
	assert.Contains(t, stdout, "--update")
	assert.Contains(t, stdout, "--filter")
	assert.Contains(t, stdout, "scenarios-dir")
}

func TestTestCommandRepositoryScenarios(t *testing.T) {
	stdout, _, err := executeCommand(t, "test", scenariosDir())
	require.NoError(t, err, stdout)

	assert.Contains(t, stdout, "✓ onboarding")
	assert.Contains(t, stdout, "✓ cycle")
	assert.Contains(t, stdout, "✓ undeclared")
	assert.Contains(t, stdout, "✓ ambiguous")
	assert.Contains(t, stdout, "Test Summary: 4 passed, 0 failed, 4 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	stdout, _, err := executeCommand(t, "--format", "json", "test", scenariosDir(), "--filter", "cycl*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "cycle", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "valid_tree.yaml"), validTreeScenario)
	writeTestFile(t, filepath.Join(dir, "wrong_expectation.yaml"), wrongExpectationScenario)

	stdout, _, err := executeCommand(t, "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, "1 scenario(s) failed", resp.Error.Message)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)

	require.Len(t, resp.Data.Scenarios, 2)
	failed := resp.Data.Scenarios[1]
	assert.Equal(t, "wrong_expectation", failed.Name)
	assert.False(t, failed.Pass)
	require.NotEmpty(t, failed.Errors)
	assert.Contains(t, failed.Errors[0], "expected a valid graph")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "broken.yaml"), "name: broken\n")

	stdout, _, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestTestCommandUpdateGolden(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "valid_tree.yaml"), validTreeScenario)

	stdout, _, err := executeCommand(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ valid_tree (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "valid_tree.golden"))
	require.NoError(t, err)
	assert.Equal(t,
		`{"events":3,"levels":[["event-1"],["event-2","event-3"]],"root":"event-1","scenario":"valid_tree","valid":true}`,
		string(golden))

	// A second run compares against the written file
	_, _, err = executeCommand(t, "test", dir)
	require.NoError(t, err)
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "valid_tree.yaml"), validTreeScenario)
	writeTestFile(t, filepath.Join(dir, "golden", "valid_tree.golden"), `{"scenario":"valid_tree"}`)

	stdout, _, err := executeCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ valid_tree")
	assert.Contains(t, stdout, "does not match golden file")
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test2.yml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "cycle-self.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "cycle-long.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "tree-valid.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "cycle-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	for _, f := range files {
		assert.Contains(t, filepath.Base(f), "cycle-")
	}

	_, err = findScenarioFiles(tmpDir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestFindScenarioFilesSubdirectories(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "root.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "sub.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGoldenFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/path/to/scenario.yaml", "/path/to/golden/scenario.golden"},
		{"/path/to/scenario.yml", "/path/to/golden/scenario.golden"},
		{"scenarios/test.yaml", "scenarios/golden/test.golden"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, goldenFilePath(tc.input))
	}
}
