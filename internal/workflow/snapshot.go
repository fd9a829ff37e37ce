package workflow

import (
	"github.com/roach88/recon/internal/artifact"
	"github.com/roach88/recon/internal/ir"
)

// Snapshot is a read-only view of a workflow after an event was handled.
type Snapshot struct {
	WorkflowID string
	State      State
	Label      string
	Current    *ir.FileRef
	Previous   *ir.FileRef

	// Status is the single user-facing line for State.
	Status string

	// Warning is set by a rejected submit and cleared by the next accepted call.
	Warning string
}

// Phase returns the phase of the snapshot's state.
func (s Snapshot) Phase() Phase {
	if s.State == nil {
		return PhaseIdle
	}
	return s.State.Phase()
}

// Pending reports whether a request is in flight.
func (s Snapshot) Pending() bool {
	return s.Phase() == PhaseSubmitting
}

// Results returns the artifacts of a succeeded workflow.
func (s Snapshot) Results() (artifact.ResultSet, bool) {
	st, ok := s.State.(Succeeded)
	if !ok {
		return artifact.ResultSet{}, false
	}
	return st.Results, true
}

// Err returns the failure of a failed workflow, or nil.
func (s Snapshot) Err() *Error {
	if st, ok := s.State.(Failed); ok {
		return st.Err
	}
	return nil
}

// AttemptID returns the attempt the state refers to, if any.
func (s Snapshot) AttemptID() string {
	switch st := s.State.(type) {
	case Submitting:
		return st.AttemptID
	case Succeeded:
		return st.AttemptID
	case Failed:
		return st.AttemptID
	}
	return ""
}
