package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/recon/internal/artifact"
	"github.com/roach88/recon/internal/config"
	"github.com/roach88/recon/internal/input"
	"github.com/roach88/recon/internal/ir"
	"github.com/roach88/recon/internal/transport"
)

// Submitter issues the single outbound request. transport.Client
// implements it.
type Submitter interface {
	Submit(ctx context.Context, req ir.SubmitRequest) ([]byte, error)
}

// Recorder receives journal events. A Recorder error is logged and the
// workflow carries on; the journal never drives state.
type Recorder interface {
	Record(ctx context.Context, ev ir.Event) error
}

// Observer is called on the loop goroutine after every handled event that
// changed the snapshot. Observers must not call back into the Workflow.
type Observer func(Snapshot)

// Workflow is one instance of the submission state machine.
//
// Thread-safety model:
//   - SetFile, SetLabel, Submit, Snapshot, Wait: safe from any goroutine
//   - Run: must be called from exactly one goroutine
type Workflow struct {
	id        string
	submitter Submitter
	recorder  Recorder
	observers []Observer
	tokens    TokenGenerator
	clock     Sequencer
	logger    *slog.Logger
	queue     *eventQueue
	done      chan struct{}

	// Owned by the Run goroutine.
	runCtx  context.Context
	slots   input.Slots
	label   string
	state   State
	warning string
	waiters []chan result
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithID sets the workflow id instead of generating one.
func WithID(id string) Option {
	return func(w *Workflow) {
		w.id = id
	}
}

// WithRecorder sets the journal sink.
func WithRecorder(r Recorder) Option {
	return func(w *Workflow) {
		w.recorder = r
	}
}

// WithObserver adds an observer. Observers run in registration order.
func WithObserver(o Observer) Option {
	return func(w *Workflow) {
		w.observers = append(w.observers, o)
	}
}

// WithTokenGenerator sets the generator for workflow and attempt ids.
// Default: UUIDv7Generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(w *Workflow) {
		w.tokens = g
	}
}

// WithClock sets the journal sequencer. Default: NewClock().
func WithClock(c Sequencer) Option {
	return func(w *Workflow) {
		w.clock = c
	}
}

// WithLabel sets the initial label. Default: config.DefaultLabel.
func WithLabel(label string) Option {
	return func(w *Workflow) {
		w.label = label
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = l
	}
}

// New creates an Idle workflow with empty slots. Call Run to start it.
func New(submitter Submitter, opts ...Option) *Workflow {
	w := &Workflow{
		submitter: submitter,
		tokens:    UUIDv7Generator{},
		clock:     NewClock(),
		logger:    slog.Default(),
		queue:     newEventQueue(),
		done:      make(chan struct{}),
		label:     config.DefaultLabel,
		state:     Idle{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.id == "" {
		w.id = w.tokens.Generate()
	}
	w.logger = w.logger.With("workflow", w.id)
	return w
}

// ID returns the workflow id.
func (w *Workflow) ID() string {
	return w.id
}

// Run starts the single-writer event loop. It blocks until ctx is cancelled
// or Stop is called. A request still in flight at that point runs to
// completion; its outcome is dropped.
func (w *Workflow) Run(ctx context.Context) error {
	w.runCtx = ctx
	defer close(w.done)

	w.logger.Debug("workflow starting")
	for {
		if ev, ok := w.queue.TryDequeue(); ok {
			w.handle(ev)
			continue
		}

		select {
		case <-ctx.Done():
			w.logger.Debug("workflow stopping: context cancelled")
			w.queue.Close()
			return ctx.Err()
		case <-w.queue.Wait():
			if w.queue.Drained() {
				w.logger.Debug("workflow stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the event queue. Events already queued are still handled.
func (w *Workflow) Stop() {
	w.queue.Close()
}

// SetFile places f in slot, replacing any prior file. A carried result or
// failure is cleared; an in-flight attempt is marked stale.
func (w *Workflow) SetFile(ctx context.Context, slot ir.SlotID, f ir.InputFile) (Snapshot, error) {
	if !slot.Valid() {
		return Snapshot{}, fmt.Errorf("unknown slot %q", slot)
	}
	if f.Digest == "" {
		f.Digest = ir.FileDigest(f.Data)
	}
	return w.call(ctx, event{typ: eventSetFile, slot: slot, file: f})
}

// SetLabel replaces the label sent with the next submission.
func (w *Workflow) SetLabel(ctx context.Context, label string) (Snapshot, error) {
	return w.call(ctx, event{typ: eventSetLabel, label: label})
}

// Submit starts an attempt. With a slot empty it returns a MISSING_INPUT
// *Error and changes nothing. While a request is in flight it is a no-op.
// Submit does not wait for the request; use Wait.
func (w *Workflow) Submit(ctx context.Context) (Snapshot, error) {
	return w.call(ctx, event{typ: eventSubmit})
}

// Snapshot returns the current view.
func (w *Workflow) Snapshot(ctx context.Context) (Snapshot, error) {
	return w.call(ctx, event{typ: eventSnapshot})
}

// Wait blocks until no request is in flight and returns that view.
func (w *Workflow) Wait(ctx context.Context) (Snapshot, error) {
	return w.call(ctx, event{typ: eventWait})
}

type eventType int

const (
	eventSetFile eventType = iota + 1
	eventSetLabel
	eventSubmit
	eventResolved
	eventSnapshot
	eventWait
)

type event struct {
	typ       eventType
	slot      ir.SlotID
	file      ir.InputFile
	label     string
	attemptID string
	payload   []byte
	err       error
	reply     chan result
}

type result struct {
	snap Snapshot
	err  error
}

func (w *Workflow) call(ctx context.Context, ev event) (Snapshot, error) {
	ev.reply = make(chan result, 1)
	if !w.queue.Enqueue(ev) {
		return Snapshot{}, ErrStopped
	}
	select {
	case r := <-ev.reply:
		return r.snap, r.err
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-w.done:
		// The loop may have answered just before exiting.
		select {
		case r := <-ev.reply:
			return r.snap, r.err
		default:
			return Snapshot{}, ErrStopped
		}
	}
}

// handle runs one event to completion. Called only from Run.
func (w *Workflow) handle(ev event) {
	switch ev.typ {
	case eventSetFile:
		w.reply(ev, w.setFile(ev.slot, ev.file), nil)
	case eventSetLabel:
		w.reply(ev, w.setLabel(ev.label), nil)
	case eventSubmit:
		snap, err := w.submit()
		w.reply(ev, snap, err)
	case eventResolved:
		w.resolve(ev.attemptID, ev.payload, ev.err)
	case eventSnapshot:
		w.reply(ev, w.snapshot(), nil)
	case eventWait:
		if _, pending := w.state.(Submitting); pending {
			w.waiters = append(w.waiters, ev.reply)
			return
		}
		w.reply(ev, w.snapshot(), nil)
	default:
		w.logger.Error("unknown event type", "type", int(ev.typ))
	}
}

func (w *Workflow) reply(ev event, snap Snapshot, err error) {
	if ev.reply != nil {
		ev.reply <- result{snap: snap, err: err}
	}
}

func (w *Workflow) setFile(slot ir.SlotID, f ir.InputFile) Snapshot {
	replaced := w.slots.Set(slot, f)
	w.warning = ""

	switch st := w.state.(type) {
	case Succeeded, Failed:
		w.logger.Debug("input changed, clearing outcome", "slot", slot, "phase", st.Phase())
		w.state = Idle{}
	case Submitting:
		if !st.Stale {
			w.logger.Debug("input changed during submission, attempt is stale", "slot", slot, "attempt", st.AttemptID)
		}
		st.Stale = true
		w.state = st
	}

	w.record(ir.EventFileSet, "", map[string]string{
		ir.AttrSlot:      string(slot),
		ir.AttrName:      f.Name,
		ir.AttrMediaType: f.MediaType,
		ir.AttrDigest:    f.Digest,
		ir.AttrReplaced:  strconv.FormatBool(replaced),
	})
	return w.publish()
}

func (w *Workflow) setLabel(label string) Snapshot {
	w.label = label
	w.warning = ""
	w.record(ir.EventLabelSet, "", map[string]string{ir.AttrLabel: label})
	return w.publish()
}

func (w *Workflow) submit() (Snapshot, error) {
	if st, ok := w.state.(Submitting); ok {
		w.logger.Debug("submit ignored: request in flight", "attempt", st.AttemptID)
		return w.snapshot(), nil
	}

	if missing := w.slots.Missing(); len(missing) > 0 {
		werr := newMissingInputError(missing)
		w.warning = MsgMissingInput
		w.logger.Warn("submit rejected", "missing", slotList(missing))
		w.record(ir.EventSubmitRejected, "", map[string]string{ir.AttrMissing: slotList(missing)})
		return w.publish(), werr
	}

	current, _ := w.slots.Get(ir.SlotCurrent)
	previous, _ := w.slots.Get(ir.SlotPrevious)
	req := ir.SubmitRequest{
		AttemptID: w.tokens.Generate(),
		Current:   current,
		Previous:  previous,
		Label:     w.label,
	}

	w.state = Submitting{AttemptID: req.AttemptID}
	w.warning = ""
	w.logger.Info("submitting", "attempt", req.AttemptID, "current", current.Name, "previous", previous.Name, "label", req.Label)
	w.record(ir.EventSubmissionStarted, req.AttemptID, map[string]string{
		ir.AttrCurrentName:    current.Name,
		ir.AttrCurrentDigest:  current.Digest,
		ir.AttrPreviousName:   previous.Name,
		ir.AttrPreviousDigest: previous.Digest,
		ir.AttrLabel:          req.Label,
	})

	// No cancellation: the request outlives the caller's context and the
	// loop's own cancellation.
	reqCtx := context.WithoutCancel(w.runCtx)
	go func() {
		payload, err := w.submitter.Submit(reqCtx, req)
		if !w.queue.Enqueue(event{typ: eventResolved, attemptID: req.AttemptID, payload: payload, err: err}) {
			w.logger.Debug("resolution dropped: workflow stopped", "attempt", req.AttemptID)
		}
	}()

	return w.publish(), nil
}

func (w *Workflow) resolve(attemptID string, payload []byte, err error) {
	st, ok := w.state.(Submitting)
	if !ok || st.AttemptID != attemptID {
		w.logger.Warn("resolution for unknown attempt", "attempt", attemptID)
		return
	}

	switch {
	case st.Stale:
		w.state = Idle{}
		w.logger.Info("submission discarded: inputs changed", "attempt", attemptID, "error", err)
		w.record(ir.EventSubmissionDiscarded, attemptID, map[string]string{})

	case errors.Is(err, transport.ErrResponseTooLarge):
		w.fail(newMalformedError(attemptID, err))

	case err != nil:
		w.fail(newTransportError(attemptID, err))

	default:
		rs, merr := artifact.Materialize(payload)
		if merr != nil {
			w.fail(newMalformedError(attemptID, merr))
			break
		}
		w.state = Succeeded{AttemptID: attemptID, Results: rs}
		w.logger.Info("submission succeeded", "attempt", attemptID)
		attrs := make(map[string]string, len(ir.Roles))
		for role, tok := range rs.Tokens() {
			attrs[string(role)] = tok
		}
		w.record(ir.EventSubmissionSucceeded, attemptID, attrs)
	}

	snap := w.publish()
	for _, ch := range w.waiters {
		ch <- result{snap: snap}
	}
	w.waiters = nil
}

func (w *Workflow) fail(werr *Error) {
	w.state = Failed{AttemptID: werr.AttemptID, Err: werr}
	w.logger.Warn("submission failed", "attempt", werr.AttemptID, "code", werr.Code, "error", werr.Err)

	attrs := map[string]string{ir.AttrErrorCode: string(werr.Code)}
	if werr.StatusCode != 0 {
		attrs[ir.AttrStatusCode] = strconv.Itoa(werr.StatusCode)
	}
	w.record(ir.EventSubmissionFailed, werr.AttemptID, attrs)
}

func (w *Workflow) snapshot() Snapshot {
	return Snapshot{
		WorkflowID: w.id,
		State:      w.state,
		Label:      w.label,
		Current:    w.slots.Ref(ir.SlotCurrent),
		Previous:   w.slots.Ref(ir.SlotPrevious),
		Status:     StatusMessage(w.state),
		Warning:    w.warning,
	}
}

// publish notifies observers and returns the snapshot they saw.
func (w *Workflow) publish() Snapshot {
	snap := w.snapshot()
	for _, o := range w.observers {
		o(snap)
	}
	return snap
}

// record stamps and forwards a journal event. Failures are logged only.
func (w *Workflow) record(kind ir.EventKind, attemptID string, attrs map[string]string) {
	if w.recorder == nil {
		return
	}
	ev := ir.Event{
		WorkflowID: w.id,
		AttemptID:  attemptID,
		Kind:       kind,
		State:      string(w.state.Phase()),
		Seq:        w.clock.Next(),
		Attrs:      attrs,
	}
	id, err := ir.EventID(w.id, ev)
	if err != nil {
		w.logger.Error("journal event id", "kind", kind, "error", err)
		return
	}
	ev.ID = id
	if err := w.recorder.Record(w.runCtx, ev); err != nil {
		w.logger.Error("journal write failed", "kind", kind, "seq", ev.Seq, "error", err)
	}
}

func slotList(slots []ir.SlotID) string {
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = string(s)
	}
	return strings.Join(names, ",")
}
