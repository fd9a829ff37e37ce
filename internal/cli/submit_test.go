package cli

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recon/internal/config"
)

// writeInputs creates two spreadsheet files in dir.
func writeInputs(t *testing.T, dir string) (string, string) {
	t.Helper()
	current := filepath.Join(dir, "fileA.xlsx")
	previous := filepath.Join(dir, "fileB.xlsx")
	require.NoError(t, os.WriteFile(current, []byte("current period"), 0o644))
	require.NoError(t, os.WriteFile(previous, []byte("previous period"), 0o644))
	return current, previous
}

func TestSubmit_Success(t *testing.T) {
	dir := isolate(t)
	srv := newFakeServer(t, http.StatusOK, successBody)
	t.Setenv(config.EnvBaseURL, srv.URL)
	current, previous := writeInputs(t, dir)

	res := execute(t, nil, "submit", "--current", current, "--previous", previous, "--label", "JAN 2026")
	require.NoError(t, res.err, "stdout: %s\nstderr: %s", res.stdout, res.stderr)

	assert.Equal(t, "Processing... Please wait.\n"+
		"Processing Done! Download your files below.\n"+
		"  primary   "+srv.URL+"/download/a.xlsx\n"+
		"  secondary "+srv.URL+"/download/b.xlsx\n"+
		"  summary   "+srv.URL+"/download/c.xlsx\n", res.stdout)

	requests, labels, names := srv.stats()
	assert.Equal(t, 1, requests)
	assert.Equal(t, []string{"JAN 2026"}, labels)
	assert.Equal(t, []string{"fileA.xlsx", "fileB.xlsx"}, names)
}

func TestSubmit_DefaultLabelFromConfig(t *testing.T) {
	dir := isolate(t)
	srv := newFakeServer(t, http.StatusOK, successBody)
	t.Setenv(config.EnvBaseURL, srv.URL+"/")
	t.Setenv(config.EnvDefaultLabel, "F\u00e9vrier 2026")
	current, previous := writeInputs(t, dir)

	res := execute(t, nil, "submit", "--current", current, "--previous", previous)
	require.NoError(t, res.err)

	_, labels, _ := srv.stats()
	assert.Equal(t, []string{"F\u00e9vrier 2026"}, labels)
	assert.Contains(t, res.stdout, srv.URL+"/download/a.xlsx", "trailing slash is trimmed")
}

func TestSubmit_JSONWithDownload(t *testing.T) {
	dir := isolate(t)
	srv := newFakeServer(t, http.StatusOK, successBody)
	t.Setenv(config.EnvBaseURL, srv.URL)
	current, previous := writeInputs(t, dir)
	outDir := filepath.Join(dir, "reports")

	res := execute(t, nil, "--format", "json", "submit",
		"--current", current, "--previous", previous, "--download", "--out", outDir)
	require.NoError(t, res.err, res.stderr)

	var resp struct {
		Status string       `json:"status"`
		Data   SubmitResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, config.DefaultLabel, resp.Data.Label)
	assert.NotEmpty(t, resp.Data.WorkflowID)
	assert.NotEmpty(t, resp.Data.AttemptID)
	require.Len(t, resp.Data.Artifacts, 3)
	assert.Equal(t, srv.URL+"/download/c.xlsx", resp.Data.Artifacts[2].URL)
	require.Len(t, resp.Data.Downloads, 3)

	for tok, want := range map[string]string{
		"a.xlsx": "primary workbook",
		"b.xlsx": "secondary workbook",
		"c.xlsx": "summary workbook",
	} {
		got, err := os.ReadFile(filepath.Join(outDir, tok))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestSubmit_MissingInput(t *testing.T) {
	dir := isolate(t)
	srv := newFakeServer(t, http.StatusOK, successBody)
	t.Setenv(config.EnvBaseURL, srv.URL)
	current, _ := writeInputs(t, dir)

	res := execute(t, nil, "submit", "--current", current)
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Equal(t, "Error [MISSING_INPUT]: Please upload BOTH files!\n", res.stdout)

	requests, _, _ := srv.stats()
	assert.Zero(t, requests, "no request without both files")
}

func TestSubmit_MissingInputJSON(t *testing.T) {
	isolate(t)
	srv := newFakeServer(t, http.StatusOK, successBody)
	t.Setenv(config.EnvBaseURL, srv.URL)

	res := execute(t, nil, "--format", "json", "submit")
	require.Error(t, res.err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MISSING_INPUT", resp.Error.Code)
	assert.Equal(t, []any{"current", "previous"}, resp.Error.Details)
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error":"Processing failed"}`,
			want:   "Error [TRANSPORT_OR_SERVER_FAILURE]: server answered status 500\n",
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   `{"error":"Both files are required"}`,
			want:   "Error [TRANSPORT_OR_SERVER_FAILURE]: server answered status 400\n",
		},
		{
			name:   "malformed success",
			status: http.StatusOK,
			body:   `{"current_file":"a.xlsx","prev_file":"b.xlsx"}`,
			want:   "Error [MALFORMED_RESPONSE]: response cannot be mapped to artifacts\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			srv := newFakeServer(t, tt.status, tt.body)
			t.Setenv(config.EnvBaseURL, srv.URL)
			current, previous := writeInputs(t, dir)

			res := execute(t, nil, "submit", "--current", current, "--previous", previous)
			require.Error(t, res.err)
			assert.Equal(t, ExitFailure, GetExitCode(res.err))
			assert.Equal(t, "Processing... Please wait.\nError processing files.\n"+tt.want, res.stdout)
			assert.NotContains(t, res.stdout, "/download/", "no references after a failure")
		})
	}
}

func TestSubmit_RejectedFileType(t *testing.T) {
	dir := isolate(t)
	srv := newFakeServer(t, http.StatusOK, successBody)
	t.Setenv(config.EnvBaseURL, srv.URL)
	_, previous := writeInputs(t, dir)
	csv := filepath.Join(dir, "current.csv")
	require.NoError(t, os.WriteFile(csv, []byte("a,b"), 0o644))

	res := execute(t, nil, "submit", "--current", csv, "--previous", previous)
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error [NOT_ACCEPTED]")

	requests, _, _ := srv.stats()
	assert.Zero(t, requests)
}

func TestSubmit_UnreadableFile(t *testing.T) {
	dir := isolate(t)
	res := execute(t, nil, "submit", "--current", filepath.Join(dir, "absent.xlsx"))
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "failed to read input")
}

type scriptedPrompter struct {
	answers  []string
	messages []string
	defaults []string
}

func (p *scriptedPrompter) Input(message, def string, _ func(string) error) (string, error) {
	p.messages = append(p.messages, message)
	p.defaults = append(p.defaults, def)
	if len(p.answers) == 0 {
		return "", errors.New("no scripted answer")
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func TestSubmit_Interactive(t *testing.T) {
	dir := isolate(t)
	srv := newFakeServer(t, http.StatusOK, successBody)
	t.Setenv(config.EnvBaseURL, srv.URL)
	current, previous := writeInputs(t, dir)

	prompter := &scriptedPrompter{answers: []string{previous, "MAR 2026"}}
	res := execute(t, &RootOptions{prompter: prompter},
		"submit", "--interactive", "--current", current)
	require.NoError(t, res.err, res.stdout)

	assert.Equal(t, []string{"Previous period file (.xlsx):", "Label:"}, prompter.messages)
	assert.Equal(t, []string{"", config.DefaultLabel}, prompter.defaults)

	_, labels, names := srv.stats()
	assert.Equal(t, []string{"MAR 2026"}, labels)
	assert.Equal(t, []string{"fileA.xlsx", "fileB.xlsx"}, names)
}

func TestSubmit_InteractiveAborted(t *testing.T) {
	isolate(t)
	res := execute(t, &RootOptions{prompter: &scriptedPrompter{}}, "submit", "-i")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.err.Error(), "interactive input failed")
}

func TestValidateCandidate(t *testing.T) {
	dir := t.TempDir()
	current, _ := writeInputs(t, dir)

	assert.NoError(t, validateCandidate(""))
	assert.NoError(t, validateCandidate(current))
	assert.Error(t, validateCandidate(filepath.Join(dir, "missing.xlsx")))
	assert.Error(t, validateCandidate(filepath.Join(dir, "notes.txt")))
}
