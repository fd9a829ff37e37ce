package ir

// EventKind names a journaled workflow event.
type EventKind string

const (
	// EventFileSet records a file entering a slot.
	EventFileSet EventKind = "file_set"
	// EventLabelSet records a label change.
	EventLabelSet EventKind = "label_set"
	// EventSubmitRejected records a submit refused by the missing-input guard.
	EventSubmitRejected EventKind = "submit_rejected"
	// EventSubmissionStarted records the single outbound request being issued.
	EventSubmissionStarted EventKind = "submission_started"
	// EventSubmissionSucceeded records a materialized result set.
	EventSubmissionSucceeded EventKind = "submission_succeeded"
	// EventSubmissionFailed records a failed attempt.
	EventSubmissionFailed EventKind = "submission_failed"
	// EventSubmissionDiscarded records a resolution dropped because an input
	// changed while the request was in flight.
	EventSubmissionDiscarded EventKind = "submission_discarded"
)

// Attribute keys used in Event.Attrs.
const (
	AttrSlot           = "slot"
	AttrName           = "name"
	AttrMediaType      = "media_type"
	AttrDigest         = "digest"
	AttrReplaced       = "replaced"
	AttrLabel          = "label"
	AttrMissing        = "missing"
	AttrCurrentName    = "current_name"
	AttrCurrentDigest  = "current_digest"
	AttrPreviousName   = "previous_name"
	AttrPreviousDigest = "previous_digest"
	AttrErrorCode      = "error_code"
	AttrStatusCode     = "status_code"
)

// Event is one journal record emitted by a workflow instance.
//
// Attrs values are strings so the record can be canonically encoded; token
// attributes use the Role names as keys.
type Event struct {
	ID         string            `json:"id"`
	WorkflowID string            `json:"workflow_id"`
	AttemptID  string            `json:"attempt_id,omitempty"`
	Kind       EventKind         `json:"kind"`
	State      string            `json:"state"`
	Seq        int64             `json:"seq"`
	Attrs      map[string]string `json:"attrs"`
}

// CanonicalMap converts the event (without its ID) to the map shape used for
// hashing and golden traces.
func (e Event) CanonicalMap() map[string]any {
	attrs := make(map[string]any, len(e.Attrs))
	for k, v := range e.Attrs {
		attrs[k] = v
	}
	m := map[string]any{
		"kind":  string(e.Kind),
		"state": e.State,
		"seq":   e.Seq,
		"attrs": attrs,
	}
	if e.AttemptID != "" {
		m["attempt_id"] = e.AttemptID
	}
	return m
}
