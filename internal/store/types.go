package store

import "github.com/roach88/recon/internal/ir"

// Outcome is the journaled result of an attempt.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeDiscarded Outcome = "discarded"
)

// Attempt is one submission attempt as recorded in the journal.
type Attempt struct {
	ID             string             `json:"id"`
	WorkflowID     string             `json:"workflow_id"`
	Label          string             `json:"label"`
	CurrentName    string             `json:"current_name"`
	CurrentDigest  string             `json:"current_digest"`
	PreviousName   string             `json:"previous_name"`
	PreviousDigest string             `json:"previous_digest"`
	Outcome        Outcome            `json:"outcome"`
	ErrorCode      string             `json:"error_code,omitempty"`
	StatusCode     int                `json:"status_code,omitempty"`
	Tokens         map[ir.Role]string `json:"tokens,omitempty"`
	StartedSeq     int64              `json:"started_seq"`
	ResolvedSeq    int64              `json:"resolved_seq,omitempty"`
}

// AttemptFilter narrows ReadAttempts.
type AttemptFilter struct {
	// WorkflowID limits results to one workflow.
	WorkflowID string
	// Label matches the label after NFC normalization.
	Label string
	// Limit caps the number of rows; zero means no cap.
	Limit int
}
