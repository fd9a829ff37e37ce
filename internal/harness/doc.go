// Package harness runs submission scenarios as executable contract tests.
//
// A scenario drives a real workflow against an in-process HTTP endpoint
// that answers with scripted responses. The workflow journals into an
// in-memory store with a deterministic clock and attempt tokens, so the
// resulting trace is reproducible and can be compared to a golden file.
//
// # Scenario Format
//
//	name: successful_submission
//	description: "Both files and a label produce three artifacts"
//	label: "JAN 2026"
//	endpoint:
//	  responses:
//	    - status: 200
//	      body: '{"current_file":"a.xlsx","prev_file":"b.xlsx","summary_file":"c.xlsx"}'
//	steps:
//	  - set_file: {slot: current, name: fileA.xlsx, content: "A"}
//	  - set_file: {slot: previous, name: fileB.xlsx, content: "B"}
//	  - submit: true
//	  - wait: true
//	expect:
//	  phase: succeeded
//	  requests: 1
//	  tokens: {primary: a.xlsx, secondary: b.xlsx, summary: c.xlsx}
//
// # Steps
//
// Each step does exactly one thing:
//
//   - set_file: admit a file (by name and inline content) into a slot
//   - set_label: replace the label
//   - submit: call Submit
//   - release: let held endpoint responses answer
//   - wait: block until no request is in flight
//
// expect_error on a step names the error code that step must return:
// a workflow code (MISSING_INPUT) or NOT_ACCEPTED for admission failures.
//
// # Responses
//
// Responses are consumed in request order. hold: true keeps a response back
// until a release step, which lets a scenario act while a request is in
// flight. endpoint.unreachable: true points the client at a closed port.
package harness
