package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recon/internal/ir"
	"github.com/roach88/recon/internal/workflow"
)

// Scenario is one conformance scenario.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Label is the initial workflow label. Empty keeps the workflow default.
	Label string `yaml:"label,omitempty"`

	Endpoint Endpoint `yaml:"endpoint"`
	Steps    []Step   `yaml:"steps"`
	Expect   Expect   `yaml:"expect"`
}

// Endpoint scripts the processing server.
type Endpoint struct {
	Responses   []Reply `yaml:"responses,omitempty"`
	Unreachable bool    `yaml:"unreachable,omitempty"`
}

// Reply is one scripted answer to a submission.
type Reply struct {
	Status int    `yaml:"status"`
	Body   string `yaml:"body"`
	Hold   bool   `yaml:"hold,omitempty"`
}

// Step is one scenario action. Exactly one action field must be set.
type Step struct {
	SetFile  *FileStep `yaml:"set_file,omitempty"`
	SetLabel *string   `yaml:"set_label,omitempty"`
	Submit   bool      `yaml:"submit,omitempty"`
	Release  bool      `yaml:"release,omitempty"`
	Wait     bool      `yaml:"wait,omitempty"`

	// ExpectError is the error code the step must return.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// FileStep admits an inline file into a slot.
type FileStep struct {
	Slot      string `yaml:"slot"`
	Name      string `yaml:"name"`
	Content   string `yaml:"content"`
	MediaType string `yaml:"media_type,omitempty"`
}

// Expect describes the final outcome.
type Expect struct {
	// Phase is the final workflow phase.
	Phase string `yaml:"phase"`

	// Requests is the number of submissions the endpoint received.
	Requests *int `yaml:"requests,omitempty"`

	// Tokens are the artifact tokens of a succeeded workflow, by role.
	Tokens map[string]string `yaml:"tokens,omitempty"`

	// ErrorCode is the code of a failed workflow.
	ErrorCode string `yaml:"error_code,omitempty"`

	// Warning is the final warning line.
	Warning string `yaml:"warning,omitempty"`

	// Labels are the labels the endpoint received, in order.
	Labels []string `yaml:"labels,omitempty"`

	// Events are the journal event kinds, in order.
	Events []string `yaml:"events,omitempty"`
}

// ErrCodeNotAccepted is the step error code for a rejected file.
const ErrCodeNotAccepted = "NOT_ACCEPTED"

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string)
	for _, p := range paths {
		sc, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if prev, dup := seen[sc.Name]; dup {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(p), sc.Name, prev)
		}
		seen[sc.Name] = filepath.Base(p)
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	for i, r := range s.Endpoint.Responses {
		if r.Status < 100 || r.Status > 599 {
			return fmt.Errorf("response %d: invalid status %d", i, r.Status)
		}
	}

	switch workflow.Phase(s.Expect.Phase) {
	case workflow.PhaseIdle, workflow.PhaseSubmitting, workflow.PhaseSucceeded, workflow.PhaseFailed:
	default:
		return fmt.Errorf("expect.phase must be idle, submitting, succeeded or failed, got %q", s.Expect.Phase)
	}
	for role := range s.Expect.Tokens {
		if !validRole(role) {
			return fmt.Errorf("expect.tokens: unknown role %q", role)
		}
	}
	return nil
}

func validateStep(step Step) error {
	actions := 0
	if step.SetFile != nil {
		actions++
		if _, err := ir.ParseSlot(step.SetFile.Slot); err != nil {
			return err
		}
		if step.SetFile.Name == "" {
			return fmt.Errorf("set_file.name is required")
		}
	}
	if step.SetLabel != nil {
		actions++
	}
	for _, b := range []bool{step.Submit, step.Release, step.Wait} {
		if b {
			actions++
		}
	}
	if actions != 1 {
		return fmt.Errorf("exactly one action is required, got %d", actions)
	}
	return nil
}

func validRole(role string) bool {
	for _, r := range ir.Roles {
		if string(r) == role {
			return true
		}
	}
	return false
}
