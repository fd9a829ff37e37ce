package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/recon/internal/ir"
	"github.com/roach88/recon/internal/transport"
)

// ErrStopped is returned by calls made after the loop has exited.
var ErrStopped = errors.New("workflow stopped")

// ErrorCode classifies a workflow error.
type ErrorCode string

const (
	// CodeMissingInput rejects a submit with one or both slots empty.
	// Recovered locally: no request, no state change.
	CodeMissingInput ErrorCode = "MISSING_INPUT"

	// CodeTransportOrServerFailure covers network errors and non-success
	// statuses from the submission endpoint.
	CodeTransportOrServerFailure ErrorCode = "TRANSPORT_OR_SERVER_FAILURE"

	// CodeMalformedResponse is a success status whose body cannot be mapped
	// to the artifact roles.
	CodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
)

// Error is a classified workflow error.
//
// The user-facing message for every submission failure is the same
// (see StatusMessage); Code, StatusCode and Err are for logs and journals.
type Error struct {
	Code       ErrorCode
	Message    string
	AttemptID  string
	Missing    []ir.SlotID
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.AttemptID != "" {
		fmt.Fprintf(&b, " (attempt=%s)", e.AttemptID)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsMissingInput reports whether err is a rejected submit.
func IsMissingInput(err error) bool {
	var we *Error
	if errors.As(err, &we) {
		return we.Code == CodeMissingInput
	}
	return false
}

// IsSubmissionFailure reports whether err is a failed attempt, whatever
// the cause.
func IsSubmissionFailure(err error) bool {
	var we *Error
	if errors.As(err, &we) {
		return we.Code == CodeTransportOrServerFailure || we.Code == CodeMalformedResponse
	}
	return false
}

func newMissingInputError(missing []ir.SlotID) *Error {
	names := make([]string, len(missing))
	for i, s := range missing {
		names[i] = string(s)
	}
	return &Error{
		Code:    CodeMissingInput,
		Message: "missing input: " + strings.Join(names, ", "),
		Missing: missing,
	}
}

func newTransportError(attemptID string, err error) *Error {
	msg := "submission request failed"
	var statusCode int
	if transport.IsStatusError(err) {
		statusCode = transport.StatusCode(err)
		msg = fmt.Sprintf("server answered status %d", statusCode)
	}
	return &Error{
		Code:       CodeTransportOrServerFailure,
		Message:    msg,
		AttemptID:  attemptID,
		StatusCode: statusCode,
		Err:        err,
	}
}

func newMalformedError(attemptID string, err error) *Error {
	return &Error{
		Code:      CodeMalformedResponse,
		Message:   "response cannot be mapped to artifacts",
		AttemptID: attemptID,
		Err:       err,
	}
}
