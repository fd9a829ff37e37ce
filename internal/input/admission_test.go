package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recon/internal/ir"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestAdmitSpreadsheet(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fileA.xlsx", "current-data")

	f, err := Admit(path)
	require.NoError(t, err)
	assert.Equal(t, "fileA.xlsx", f.Name)
	assert.Equal(t, SpreadsheetMediaType, f.MediaType)
	assert.Equal(t, []byte("current-data"), f.Data)
	assert.Equal(t, ir.FileDigest([]byte("current-data")), f.Digest)
}

func TestAdmitUppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "REPORT.XLSX", "x")

	f, err := Admit(path)
	require.NoError(t, err)
	assert.Equal(t, SpreadsheetMediaType, f.MediaType)
}

func TestAdmitKeepsOnlyFirstCandidate(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.xlsx", "1")
	second := writeFile(t, dir, "second.xlsx", "2")

	f, err := Admit(first, second)
	require.NoError(t, err)
	assert.Equal(t, "first.xlsx", f.Name)
}

func TestAdmitRejectsOtherTypes(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"data.csv", "data.xls", "notes.txt", "noext"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, name, "x")
			_, err := Admit(path)
			require.ErrorIs(t, err, ErrNotAccepted)
		})
	}
}

func TestAdmitNoCandidate(t *testing.T) {
	_, err := Admit()
	require.ErrorIs(t, err, ErrNoCandidate)

	_, err = Admit("")
	require.ErrorIs(t, err, ErrNoCandidate)
}

func TestAdmitMissingFile(t *testing.T) {
	_, err := Admit(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read")
}

func TestAdmitBytes(t *testing.T) {
	f, err := AdmitBytes("fileB.xlsx", "", []byte("prev"))
	require.NoError(t, err)
	assert.Equal(t, SpreadsheetMediaType, f.MediaType)

	_, err = AdmitBytes("fileB.xlsx", "text/csv", []byte("prev"))
	require.ErrorIs(t, err, ErrNotAccepted)

	f, err = AdmitBytes("upload", SpreadsheetMediaType+"; charset=binary", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "upload", f.Name)
}

func TestAccepts(t *testing.T) {
	assert.True(t, Accepts(SpreadsheetMediaType))
	assert.True(t, Accepts(" APPLICATION/VND.OPENXMLFORMATS-OFFICEDOCUMENT.SPREADSHEETML.SHEET "))
	assert.False(t, Accepts("application/vnd.ms-excel"))
	assert.False(t, Accepts(""))
}
