package harness

import "github.com/roach88/guidectx/internal/guideline"

// Trace phases.
const (
	PhaseSetup = "setup"
	PhaseFlow  = "flow"
)

// CaseSuccess is the case recorded for an operation that did not fail.
// Rejected operations record their guideline error code instead.
const CaseSuccess = "Success"

// TraceEvent records one engine operation run by a scenario.
type TraceEvent struct {
	Seq    int64          `json:"seq"`
	Phase  string         `json:"phase"`
	Op     string         `json:"op"`
	Args   map[string]any `json:"args,omitempty"`
	Case   string         `json:"case"`
	Result map[string]any `json:"result,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains every setup and flow operation in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Current and Pending are the entries of the context's versions after
	// the flow. Pending is nil when no pending version exists.
	Current []guideline.Entry `json:"current"`
	Pending []guideline.Entry `json:"pending,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Current: []guideline.Entry{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an operation to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
