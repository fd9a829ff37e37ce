package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The harness package owns the reference scenarios and their goldens.
func harnessTestdata(t *testing.T) (scenarios, golden string) {
	t.Helper()
	root, err := filepath.Abs(filepath.Join("..", "harness", "testdata"))
	require.NoError(t, err)
	return filepath.Join(root, "scenarios"), filepath.Join(root, "golden")
}

func TestScenario_ReferenceSuitePasses(t *testing.T) {
	scenarios, golden := harnessTestdata(t)
	isolate(t)

	res := execute(t, nil, "--format", "json", "scenario", scenarios, "--golden", golden)
	require.NoError(t, res.err, res.stdout)

	var resp struct {
		Status string          `json:"status"`
		Data   ScenarioSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 10, resp.Data.Total)
	assert.Equal(t, resp.Data.Total, resp.Data.Passed)
}

func TestScenario_UpdateThenDetectDrift(t *testing.T) {
	scenarios, _ := harnessTestdata(t)
	dir := isolate(t)
	golden := filepath.Join(dir, "golden")

	res := execute(t, nil, "scenario", scenarios, "--golden", golden, "--filter", "*submission*", "--update")
	require.NoError(t, res.err, res.stdout)
	assert.Contains(t, res.stdout, "✓ successful_submission")
	assert.Contains(t, res.stdout, "✓ input_change_during_submission")
	assert.NotContains(t, res.stdout, "server_error")

	written, err := os.ReadFile(filepath.Join(golden, "successful_submission.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(written), `"scenario":"successful_submission"`)

	res = execute(t, nil, "scenario", scenarios, "--golden", golden, "--filter", "*submission*")
	require.NoError(t, res.err, res.stdout)

	require.NoError(t, os.WriteFile(filepath.Join(golden, "successful_submission.golden"), []byte("{}"), 0o644))
	res = execute(t, nil, "scenario", scenarios, "--golden", golden, "--filter", "successful_*")
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "✗ successful_submission")
	assert.Contains(t, res.stdout, "trace does not match golden file")
	assert.Contains(t, res.stdout, "Scenario Summary: 0 passed, 1 failed, 1 total")
}

func TestScenario_Errors(t *testing.T) {
	dir := isolate(t)

	res := execute(t, nil, "scenario", filepath.Join(dir, "missing"))
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))

	bad := filepath.Join(dir, "bad")
	require.NoError(t, os.MkdirAll(bad, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bad, "x.yaml"), []byte("name: x\nbogus: true\n"), 0o644))
	res = execute(t, nil, "scenario", bad)
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "failed to load scenarios")

	res = execute(t, nil, "scenario", bad, "--filter", "[")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid filter pattern")
}
