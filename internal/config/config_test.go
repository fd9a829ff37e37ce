package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{LookupEnv: noEnv})
	require.NoError(t, err)
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "http://localhost:5000", cfg.BaseURL)
	assert.Zero(t, cfg.RequestTimeout, "no timeout unless configured")
}

func TestLoadPrecedence(t *testing.T) {
	file := writeFile(t, "recon.yaml", `
base_url: http://file-host:5000/
default_label: FILE LABEL
request_timeout: 30s
journal: file.db
`)
	envFile := writeFile(t, ".env", `
RECON_DEFAULT_LABEL="DOTENV LABEL"
RECON_JOURNAL=dotenv.db
RECON_OUTPUT_DIR=/tmp/out
`)
	env := envMap(map[string]string{
		EnvJournal: "env.db",
	})

	cfg, err := Load(Options{File: file, EnvFile: envFile, LookupEnv: env})
	require.NoError(t, err)

	want := Config{
		BaseURL:        "http://file-host:5000",
		DefaultLabel:   "DOTENV LABEL",
		RequestTimeout: 30 * time.Second,
		Journal:        "env.db",
		OutputDir:      "/tmp/out",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromProcessEnvironment(t *testing.T) {
	t.Setenv(EnvBaseURL, "https://recon.example.com/api/")
	t.Setenv(EnvRequestTimeout, "2m")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://recon.example.com/api", cfg.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	file := writeFile(t, "recon.yaml", "base_ulr: http://typo\n")
	_, err := Load(Options{File: file, LookupEnv: noEnv})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_ulr")
}

func TestLoadEmptyFile(t *testing.T) {
	file := writeFile(t, "recon.yaml", "\n")
	cfg, err := Load(Options{File: file, LookupEnv: noEnv})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"missing config file", Options{File: filepath.Join(t.TempDir(), "absent.yaml"), LookupEnv: noEnv}},
		{"missing env file", Options{EnvFile: filepath.Join(t.TempDir(), "absent.env"), LookupEnv: noEnv}},
		{"bad timeout", Options{LookupEnv: envMap(map[string]string{EnvRequestTimeout: "soon"})}},
		{"negative timeout", Options{LookupEnv: envMap(map[string]string{EnvRequestTimeout: "-1s"})}},
		{"bad base url", Options{LookupEnv: envMap(map[string]string{EnvBaseURL: "localhost:5000"})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	valid := map[string]string{
		"http://localhost:5000":        "http://localhost:5000",
		"http://localhost:5000/":       "http://localhost:5000",
		" https://h.example.com/api// ": "https://h.example.com/api",
		"http://u:p@h:8080/base/":      "http://u:p@h:8080/base",
	}
	for in, want := range valid {
		got, err := NormalizeBaseURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "ftp://h", "http://", "/relative", "http://h/?x=1", "http://h/#frag", "http://h/?", "http://h/#", "http://h?", "http://h#"} {
		_, err := NormalizeBaseURL(in)
		assert.ErrorIs(t, err, ErrInvalidBaseURL, in)
	}
}
