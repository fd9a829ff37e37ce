package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	sc, err := LoadScenario(filepath.Join(scenarioDir, "06_duplicate_submit.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "duplicate_submit", sc.Name)
	require.Len(t, sc.Endpoint.Responses, 1)
	assert.True(t, sc.Endpoint.Responses[0].Hold)
	require.Len(t, sc.Steps, 6)
	assert.Equal(t, "current", sc.Steps[0].SetFile.Slot)
	assert.True(t, sc.Steps[2].Submit)
	assert.True(t, sc.Steps[4].Release)
	require.NotNil(t, sc.Expect.Requests)
	assert.Equal(t, 1, *sc.Expect.Requests)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: d\nstep: []\nexpect: {phase: idle}\n",
			wantErr: "field step not found",
		},
		{
			name:    "missing name",
			yaml:    "description: d\nsteps: [{submit: true}]\nexpect: {phase: idle}\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\nsteps: [{submit: true}]\nexpect: {phase: idle}\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			yaml:    "name: x\ndescription: d\nexpect: {phase: idle}\n",
			wantErr: "steps list is required",
		},
		{
			name:    "two actions in one step",
			yaml:    "name: x\ndescription: d\nsteps: [{submit: true, wait: true}]\nexpect: {phase: idle}\n",
			wantErr: "exactly one action",
		},
		{
			name:    "bad slot",
			yaml:    "name: x\ndescription: d\nsteps: [{set_file: {slot: other, name: a.xlsx}}]\nexpect: {phase: idle}\n",
			wantErr: "unknown slot",
		},
		{
			name:    "bad phase",
			yaml:    "name: x\ndescription: d\nsteps: [{submit: true}]\nexpect: {phase: done}\n",
			wantErr: "expect.phase",
		},
		{
			name:    "bad role",
			yaml:    "name: x\ndescription: d\nsteps: [{submit: true}]\nexpect: {phase: idle, tokens: {extra: a.xlsx}}\n",
			wantErr: "unknown role",
		},
		{
			name:    "bad status",
			yaml:    "name: x\ndescription: d\nendpoint: {responses: [{status: 42, body: ''}]}\nsteps: [{submit: true}]\nexpect: {phase: idle}\n",
			wantErr: "invalid status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadDir_RejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	content := "name: same\ndescription: d\nsteps: [{submit: true}]\nexpect: {phase: idle}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(content), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(content), 0o644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already used")
}

func TestLoadDir_SortedByFileName(t *testing.T) {
	scenarios, err := LoadDir(scenarioDir)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(scenarios), 2)
	assert.Equal(t, "successful_submission", scenarios[0].Name)
	assert.Equal(t, "missing_previous_file", scenarios[1].Name)
}
