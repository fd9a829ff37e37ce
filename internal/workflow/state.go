package workflow

import "github.com/roach88/recon/internal/artifact"

// Phase is the coarse name of a State.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// State is the orchestrator state. The set of implementations is closed:
// Idle, Submitting, Succeeded and Failed.
type State interface {
	Phase() Phase
	isState()
}

// Idle awaits a submission.
type Idle struct{}

// Submitting has exactly one request in flight.
//
// Stale is set when a slot changed after the request was issued; the
// attempt's outcome will be discarded.
type Submitting struct {
	AttemptID string
	Stale     bool
}

// Succeeded carries the materialized artifacts of one attempt.
type Succeeded struct {
	AttemptID string
	Results   artifact.ResultSet
}

// Failed carries the classified failure of one attempt.
type Failed struct {
	AttemptID string
	Err       *Error
}

func (Idle) Phase() Phase       { return PhaseIdle }
func (Submitting) Phase() Phase { return PhaseSubmitting }
func (Succeeded) Phase() Phase  { return PhaseSucceeded }
func (Failed) Phase() Phase     { return PhaseFailed }

func (Idle) isState()       {}
func (Submitting) isState() {}
func (Succeeded) isState()  {}
func (Failed) isState()     {}
