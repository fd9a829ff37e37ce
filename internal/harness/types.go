package harness

import "github.com/roach88/recon/internal/ir"

// Result is the outcome of one scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Errors lists failed expectations. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Trace is the journal of the run, ordered by seq.
	Trace []ir.Event `json:"trace"`

	Phase     string             `json:"phase"`
	Status    string             `json:"status"`
	Warning   string             `json:"warning,omitempty"`
	ErrorCode string             `json:"error_code,omitempty"`
	Tokens    map[ir.Role]string `json:"tokens,omitempty"`

	// Requests and Labels describe what the endpoint received.
	Requests int      `json:"requests"`
	Labels   []string `json:"labels,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		Trace:  []ir.Event{},
	}
}

// AddError records a failed expectation.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}
