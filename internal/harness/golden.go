package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/recon/internal/ir"
)

// GoldenDir holds golden traces relative to the test package.
const GoldenDir = "testdata/golden"

// TraceJSON renders the deterministic part of a run as canonical JSON:
// the journal (without event ids) and the final outcome. Server URLs and
// wall-clock values never appear.
func TraceJSON(name string, r *Result) ([]byte, error) {
	trace := make([]any, len(r.Trace))
	for i, ev := range r.Trace {
		trace[i] = ev.CanonicalMap()
	}

	final := map[string]any{
		"phase":  r.Phase,
		"status": r.Status,
	}
	if r.Warning != "" {
		final["warning"] = r.Warning
	}
	if r.ErrorCode != "" {
		final["error_code"] = r.ErrorCode
	}
	if len(r.Tokens) > 0 {
		tokens := make(map[string]any, len(r.Tokens))
		for role, tok := range r.Tokens {
			tokens[string(role)] = tok
		}
		final["tokens"] = tokens
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario": name,
		"requests": r.Requests,
		"final":    final,
		"trace":    trace,
	})
}

// RunWithGolden runs sc and compares its trace with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(sc)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, sc.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result with its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := TraceJSON(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
