// Package workflow implements the submission state machine.
//
// A Workflow owns two input slots, a label, and exactly one State:
//
//	Idle --Submit--> Submitting --resolve--> Succeeded | Failed
//	Succeeded | Failed --SetFile--> Idle
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every public call is turned into an event on a FIFO queue and handled by
// the Run goroutine, one at a time, to completion. Slots, label and state
// are touched only from that goroutine, so no locking guards them.
//
// The outbound request is the only suspension point. It runs on its own
// goroutine and reports back by enqueuing a resolution event; the loop keeps
// handling SetFile, SetLabel and Submit calls while it is in flight.
//
// Invariants:
//   - At most one request is in flight per Workflow (Submit while Submitting is a no-op)
//   - A Succeeded or Failed state never outlives a change to either slot
//   - A resolution for an attempt whose inputs changed is discarded
//   - Requests are never retried and never cancelled
//
// Journal events are stamped with a logical clock (seq), never wall time.
package workflow
