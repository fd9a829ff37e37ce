package artifact

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/roach88/recon/internal/ir"
)

// DownloadPath is the retrieval endpoint prefix joined with the base address.
const DownloadPath = "/download/"

// ResultSet is the fixed-role collection of artifact tokens from one
// successful submission. Fields are unexported so a constructed set cannot
// be changed; the zero value holds no artifacts.
type ResultSet struct {
	primary   string
	secondary string
	summary   string
}

// Artifact is one retrievable output file.
type Artifact struct {
	Role  ir.Role `json:"role"`
	Token string  `json:"token"`
	URL   string  `json:"url"`
}

// New builds a ResultSet from a token per role. Every role is required and
// every token must be a single non-empty path segment.
func New(tokens map[ir.Role]string) (ResultSet, error) {
	for _, role := range ir.Roles {
		tok, ok := tokens[role]
		if !ok {
			return ResultSet{}, fmt.Errorf("%w: missing %s artifact", ErrMalformedPayload, role)
		}
		if err := ValidateToken(tok); err != nil {
			return ResultSet{}, fmt.Errorf("%w: %s artifact: %v", ErrMalformedPayload, role, err)
		}
	}
	return ResultSet{
		primary:   tokens[ir.RolePrimary],
		secondary: tokens[ir.RoleSecondary],
		summary:   tokens[ir.RoleSummary],
	}, nil
}

// ValidateToken checks that tok can be used as a retrieval path segment.
func ValidateToken(tok string) error {
	switch {
	case tok == "":
		return fmt.Errorf("empty token")
	case tok == "." || tok == "..":
		return fmt.Errorf("invalid token %q", tok)
	case strings.ContainsAny(tok, "/\\"):
		return fmt.Errorf("token %q contains a path separator", tok)
	}
	return nil
}

// IsZero reports whether rs holds no artifacts.
func (rs ResultSet) IsZero() bool {
	return rs == ResultSet{}
}

// Token returns the artifact token for role.
func (rs ResultSet) Token(role ir.Role) (string, bool) {
	var tok string
	switch role {
	case ir.RolePrimary:
		tok = rs.primary
	case ir.RoleSecondary:
		tok = rs.secondary
	case ir.RoleSummary:
		tok = rs.summary
	}
	return tok, tok != ""
}

// Tokens returns a fresh role -> token map.
func (rs ResultSet) Tokens() map[ir.Role]string {
	out := make(map[ir.Role]string, len(ir.Roles))
	for _, role := range ir.Roles {
		if tok, ok := rs.Token(role); ok {
			out[role] = tok
		}
	}
	return out
}

// Artifacts lists the artifacts in role order with retrieval references
// built against base.
func (rs ResultSet) Artifacts(base string) []Artifact {
	if rs.IsZero() {
		return nil
	}
	out := make([]Artifact, 0, len(ir.Roles))
	for _, role := range ir.Roles {
		tok, _ := rs.Token(role)
		out = append(out, Artifact{Role: role, Token: tok, URL: Reference(base, tok)})
	}
	return out
}

// Reference returns the retrieval reference for role.
func (rs ResultSet) Reference(base string, role ir.Role) (string, bool) {
	tok, ok := rs.Token(role)
	if !ok {
		return "", false
	}
	return Reference(base, tok), true
}

// Reference combines a base address with an artifact token:
// <base>/download/<token>.
func Reference(base, token string) string {
	return strings.TrimRight(base, "/") + DownloadPath + url.PathEscape(token)
}
