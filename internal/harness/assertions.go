package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/recon/internal/ir"
)

// evaluateExpect compares a result against exp and returns one message
// per mismatch.
func evaluateExpect(r *Result, exp Expect) []string {
	var errs []string

	if r.Phase != exp.Phase {
		errs = append(errs, mismatch("phase", exp.Phase, r.Phase))
	}
	if exp.Requests != nil && r.Requests != *exp.Requests {
		errs = append(errs, mismatch("requests", *exp.Requests, r.Requests))
	}
	if r.ErrorCode != exp.ErrorCode {
		errs = append(errs, mismatch("error_code", exp.ErrorCode, r.ErrorCode))
	}
	if exp.Warning != "" && r.Warning != exp.Warning {
		errs = append(errs, mismatch("warning", exp.Warning, r.Warning))
	}

	for _, role := range ir.Roles {
		want, wanted := exp.Tokens[string(role)]
		got := r.Tokens[role]
		if wanted && got != want {
			errs = append(errs, mismatch("tokens."+string(role), want, got))
		}
	}
	if exp.Labels != nil && !slices.Equal(exp.Labels, r.Labels) {
		errs = append(errs, mismatch("labels", exp.Labels, r.Labels))
	}

	if exp.Events != nil {
		got := make([]string, len(r.Trace))
		for i, ev := range r.Trace {
			got[i] = string(ev.Kind)
		}
		if !slices.Equal(exp.Events, got) {
			errs = append(errs, mismatch("events", exp.Events, got))
		}
	}
	return errs
}

func mismatch(field string, want, got any) string {
	return fmt.Sprintf("%s: expected %v, got %v", field, want, got)
}
