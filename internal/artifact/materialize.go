package artifact

import (
	_ "embed"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/recon/internal/ir"
)

//go:embed contract.cue
var contractCUE string

// ErrMalformedPayload wraps every materialization failure.
var ErrMalformedPayload = errors.New("malformed response payload")

// wireFields maps each role to its field in the success body.
var wireFields = map[ir.Role]string{
	ir.RolePrimary:   "current_file",
	ir.RoleSecondary: "prev_file",
	ir.RoleSummary:   "summary_file",
}

// Materialize validates a raw response body and maps it to a ResultSet.
//
// Role mapping: primary <- current_file, secondary <- prev_file,
// summary <- summary_file. A missing or invalid token for any role fails
// the whole operation.
func Materialize(payload []byte) (ResultSet, error) {
	if len(payload) == 0 {
		return ResultSet{}, fmt.Errorf("%w: empty body", ErrMalformedPayload)
	}

	ctx := cuecontext.New()
	contract := ctx.CompileString(contractCUE, cue.Filename("contract.cue"))
	if err := contract.Err(); err != nil {
		return ResultSet{}, fmt.Errorf("compile response contract: %w", err)
	}
	schema := contract.LookupPath(cue.ParsePath("#Payload"))

	expr, err := cuejson.Extract("response.json", payload)
	if err != nil {
		return ResultSet{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	data := ctx.BuildExpr(expr)
	if err := data.Err(); err != nil {
		return ResultSet{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	unified := schema.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return ResultSet{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	tokens := make(map[ir.Role]string, len(wireFields))
	for role, field := range wireFields {
		tok, err := unified.LookupPath(cue.ParsePath(field)).String()
		if err != nil {
			return ResultSet{}, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, field, err)
		}
		tokens[role] = tok
	}
	return New(tokens)
}
