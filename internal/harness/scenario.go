package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/guidectx/internal/guideline"
)

// Scenario defines a conformance test scenario.
// Scenarios exercise the versioning engine on one context by running a
// flow of operations and asserting on the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Context names the guideline context the scenario runs against.
	// Defaults to the scenario name.
	Context string `yaml:"context,omitempty"`

	// Setup contains operations run before the main flow.
	// Setup operations must succeed.
	Setup []ActionStep `yaml:"setup,omitempty"`

	// Flow contains the main test flow, with expected outcomes.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions"`
}

// ActionStep is a single operation in a Setup section.
type ActionStep struct {
	// Action is the operation name (e.g. "save").
	Action string `yaml:"action"`

	// Args contains the operation arguments.
	Args map[string]any `yaml:"args,omitempty"`
}

// FlowStep is a step in the main test flow.
type FlowStep struct {
	// Invoke is the operation name.
	Invoke string `yaml:"invoke"`

	// Args contains the operation arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a flow step.
type ExpectClause struct {
	// Case is "Success" or a guideline error code such as "PENDING_EXISTS".
	Case string `yaml:"case"`

	// Result contains expected result field values.
	// This is a subset match: only specified fields are validated.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an operation appears in the trace with args and case
	// - "trace_order": operations appear in order
	// - "trace_count": an operation appears exactly N times
	// - "final_state": a version holds the expected entries
	Type string `yaml:"type"`

	// Action is the operation name (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Args are the expected operation arguments (trace_contains).
	// Subset match.
	Args map[string]any `yaml:"args,omitempty"`

	// Case is the expected case (trace_contains). Any case matches if empty.
	Case string `yaml:"case,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected operation order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// Slot selects the version checked by final_state: "current" (default)
	// or "pending".
	Slot string `yaml:"slot,omitempty"`

	// Guidelines are the entries the slot must hold, in order (final_state).
	Guidelines []guideline.Entry `yaml:"guidelines,omitempty"`

	// Versions is the number of versions the context must hold (final_state).
	Versions *int `yaml:"versions,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Version slots checked by final_state.
const (
	SlotCurrent = "current"
	SlotPending = "pending"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if scenario.Context == "" {
		scenario.Context = scenario.Name
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.Action == "" {
			return fmt.Errorf("setup[%d]: action is required", i)
		}
		if !slices.Contains(Operations, step.Action) {
			return fmt.Errorf("setup[%d]: unknown operation %q", i, step.Action)
		}
	}

	for i, step := range s.Flow {
		if step.Invoke == "" {
			return fmt.Errorf("flow[%d]: invoke is required", i)
		}
		if !slices.Contains(Operations, step.Invoke) {
			return fmt.Errorf("flow[%d]: unknown operation %q", i, step.Invoke)
		}
		if step.Expect != nil && step.Expect.Case == "" {
			return fmt.Errorf("flow[%d].expect: case is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Slot != "" && a.Slot != SlotCurrent && a.Slot != SlotPending {
			return fmt.Errorf("assertions[%d]: slot must be %q or %q", index, SlotCurrent, SlotPending)
		}
		if a.Guidelines == nil && a.Versions == nil {
			return fmt.Errorf("assertions[%d]: guidelines or versions is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
