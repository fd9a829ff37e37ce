package artifact

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recon/internal/ir"
)

func TestMaterializeMapsRoles(t *testing.T) {
	payload := []byte(`{"message":"Processing Complete","current_file":"a.xlsx","prev_file":"b.xlsx","summary_file":"c.xlsx"}`)

	rs, err := Materialize(payload)
	require.NoError(t, err)

	want := map[ir.Role]string{
		ir.RolePrimary:   "a.xlsx",
		ir.RoleSecondary: "b.xlsx",
		ir.RoleSummary:   "c.xlsx",
	}
	if diff := cmp.Diff(want, rs.Tokens()); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestMaterializeReferences(t *testing.T) {
	payload := []byte(`{"current_file":"a.xlsx","prev_file":"b.xlsx","summary_file":"c.xlsx"}`)
	rs, err := Materialize(payload)
	require.NoError(t, err)

	base := "http://localhost:5000"
	want := []Artifact{
		{Role: ir.RolePrimary, Token: "a.xlsx", URL: "http://localhost:5000/download/a.xlsx"},
		{Role: ir.RoleSecondary, Token: "b.xlsx", URL: "http://localhost:5000/download/b.xlsx"},
		{Role: ir.RoleSummary, Token: "c.xlsx", URL: "http://localhost:5000/download/c.xlsx"},
	}
	if diff := cmp.Diff(want, rs.Artifacts(base)); diff != "" {
		t.Errorf("artifacts mismatch (-want +got):\n%s", diff)
	}

	ref, ok := rs.Reference(base+"/", ir.RoleSummary)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:5000/download/c.xlsx", ref)
}

func TestMaterializeAllowsExtraFieldsAndNullMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{"null", `null`},
		{"number", `5`},
		{"object", `{"text":"ok"}`},
		{"list", `["done"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte(`{"message":` + tt.message + `,"current_file":"a.xlsx","prev_file":"b.xlsx","summary_file":"c.xlsx","elapsed":12}`)
			rs, err := Materialize(payload)
			require.NoError(t, err)
			tok, ok := rs.Token(ir.RoleSummary)
			require.True(t, ok)
			assert.Equal(t, "c.xlsx", tok)
		})
	}
}

func TestMaterializeFailsClosed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty body", ``},
		{"not json", `<html>ok</html>`},
		{"array", `["a.xlsx","b.xlsx","c.xlsx"]`},
		{"null", `null`},
		{"missing summary", `{"current_file":"a.xlsx","prev_file":"b.xlsx"}`},
		{"missing all", `{"message":"Processing Complete"}`},
		{"empty token", `{"current_file":"","prev_file":"b.xlsx","summary_file":"c.xlsx"}`},
		{"non-string token", `{"current_file":5,"prev_file":"b.xlsx","summary_file":"c.xlsx"}`},
		{"path token", `{"current_file":"../etc/passwd","prev_file":"b.xlsx","summary_file":"c.xlsx"}`},
		{"dot-dot token", `{"current_file":"..","prev_file":"b.xlsx","summary_file":"c.xlsx"}`},
		{"error body", `{"error":"Missing files"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, err := Materialize([]byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedPayload)
			assert.True(t, rs.IsZero(), "no partial result set")
		})
	}
}
