package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/recon/internal/input"
	"github.com/roach88/recon/internal/ir"
	"github.com/roach88/recon/internal/store"
	"github.com/roach88/recon/internal/testutil"
	"github.com/roach88/recon/internal/transport"
	"github.com/roach88/recon/internal/workflow"
)

// DefaultTimeout bounds one scenario run.
const DefaultTimeout = 10 * time.Second

// Harness runs scenarios.
type Harness struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger for the workflow and client. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// WithTimeout bounds each scenario run. Default: DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(h *Harness) {
		h.timeout = d
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with default options.
func Run(sc *Scenario) (*Result, error) {
	return New().Run(context.Background(), sc)
}

// Run executes sc in isolation and evaluates its expectations.
//
// Each run gets a fresh in-memory journal, a fresh endpoint, a clock
// starting at 0, and attempt tokens attempt-1, attempt-2, ...
// The returned error covers infrastructure failures only; unmet
// expectations are reported through Result.
func (h *Harness) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("create in-memory journal: %w", err)
	}
	defer st.Close()

	ep := newEndpoint(sc.Endpoint)
	defer ep.Close()

	workflowID := "wf-" + sc.Name
	opts := []workflow.Option{
		workflow.WithID(workflowID),
		workflow.WithRecorder(st),
		workflow.WithTokenGenerator(testutil.NewSequenceGenerator("attempt")),
		workflow.WithClock(testutil.NewDeterministicClock()),
		workflow.WithLogger(h.logger),
	}
	if sc.Label != "" {
		opts = append(opts, workflow.WithLabel(sc.Label))
	}
	client := transport.New(ep.url, transport.WithLogger(h.logger))
	w := workflow.New(client, opts...)

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(runCtx)
	}()
	defer func() {
		stop()
		<-done
	}()

	result := NewResult()
	for i, step := range sc.Steps {
		if err := h.runStep(ctx, w, ep, i, step, result); err != nil {
			return nil, err
		}
	}

	snap, err := w.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("final snapshot: %w", err)
	}
	result.Phase = string(snap.Phase())
	result.Status = snap.Status
	result.Warning = snap.Warning
	if werr := snap.Err(); werr != nil {
		result.ErrorCode = string(werr.Code)
	}
	if rs, ok := snap.Results(); ok {
		result.Tokens = rs.Tokens()
	}
	result.Requests, result.Labels = ep.Stats()

	trace, err := st.ReadEvents(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	result.Trace = trace

	for _, msg := range evaluateExpect(result, sc.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

// runStep executes one step. Step failures that are part of the scenario
// (expected or unexpected error codes) go to result; infrastructure
// failures are returned.
func (h *Harness) runStep(ctx context.Context, w *workflow.Workflow, ep *endpoint, i int, step Step, result *Result) error {
	var stepErr error
	switch {
	case step.SetFile != nil:
		f, err := input.AdmitBytes(step.SetFile.Name, step.SetFile.MediaType, []byte(step.SetFile.Content))
		if err != nil {
			stepErr = err
			break
		}
		slot, _ := ir.ParseSlot(step.SetFile.Slot)
		_, stepErr = w.SetFile(ctx, slot, f)
	case step.SetLabel != nil:
		_, stepErr = w.SetLabel(ctx, *step.SetLabel)
	case step.Submit:
		_, stepErr = w.Submit(ctx)
	case step.Release:
		ep.Release()
	case step.Wait:
		_, stepErr = w.Wait(ctx)
	}

	if errors.Is(stepErr, context.DeadlineExceeded) || errors.Is(stepErr, workflow.ErrStopped) {
		return fmt.Errorf("step %d: %w", i, stepErr)
	}

	got := errorCode(stepErr)
	if got != step.ExpectError {
		result.AddError(fmt.Sprintf("step %d: expected error %q, got %q (%v)", i, step.ExpectError, got, stepErr))
	}
	return nil
}

// errorCode maps a step error to its scenario code.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	var werr *workflow.Error
	if errors.As(err, &werr) {
		return string(werr.Code)
	}
	if errors.Is(err, input.ErrNotAccepted) {
		return ErrCodeNotAccepted
	}
	return "ERROR"
}
