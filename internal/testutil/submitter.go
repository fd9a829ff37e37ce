package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/recon/internal/ir"
	"github.com/roach88/recon/internal/transport"
)

// ErrUnscripted is returned when a ScriptedSubmitter runs out of responses.
var ErrUnscripted = errors.New("unscripted submission")

// Response is one scripted outcome of Submit.
type Response struct {
	Body []byte
	Err  error
}

// Success returns a response with a JSON body.
func Success(body string) Response {
	return Response{Body: []byte(body)}
}

// StatusFailure returns a response shaped like a non-success answer.
func StatusFailure(status int, detail string) Response {
	return Response{Err: &transport.Error{
		Op:         transport.OpSubmit,
		URL:        "http://scripted" + transport.ProcessPath,
		StatusCode: status,
		Detail:     detail,
	}}
}

// TransportFailure returns a response shaped like a connection failure.
func TransportFailure(cause error) Response {
	return Response{Err: &transport.Error{
		Op:  transport.OpSubmit,
		URL: "http://scripted" + transport.ProcessPath,
		Err: cause,
	}}
}

// ScriptedSubmitter is an in-memory workflow.Submitter.
//
// Each Submit records the request and returns the next scripted Response.
// After Hold, calls block until Release so tests can act while a request
// is in flight.
type ScriptedSubmitter struct {
	mu        sync.Mutex
	responses []Response
	requests  []ir.SubmitRequest
	gate      chan struct{}
}

// NewScriptedSubmitter creates a submitter answering with responses in order.
func NewScriptedSubmitter(responses ...Response) *ScriptedSubmitter {
	return &ScriptedSubmitter{responses: responses}
}

// Hold makes later Submit calls block until Release.
func (s *ScriptedSubmitter) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate == nil {
		s.gate = make(chan struct{})
	}
}

// Release unblocks held calls and stops holding.
func (s *ScriptedSubmitter) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gate != nil {
		close(s.gate)
		s.gate = nil
	}
}

// Submit implements workflow.Submitter.
func (s *ScriptedSubmitter) Submit(ctx context.Context, req ir.SubmitRequest) ([]byte, error) {
	s.mu.Lock()
	idx := len(s.requests)
	s.requests = append(s.requests, req)
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if idx >= len(s.responses) {
		return nil, ErrUnscripted
	}
	r := s.responses[idx]
	return r.Body, r.Err
}

// Calls returns the number of Submit calls so far.
func (s *ScriptedSubmitter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Requests returns a copy of the recorded requests.
func (s *ScriptedSubmitter) Requests() []ir.SubmitRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ir.SubmitRequest, len(s.requests))
	copy(out, s.requests)
	return out
}
