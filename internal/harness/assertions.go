package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/guidectx/internal/guideline"
	"github.com/roach88/guidectx/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %v -> %s\n", event.Seq, event.Op, event.Args, event.Case)
		}
	}

	return buf.String()
}

// assertTraceContains checks if the trace contains an operation matching
// the specified action, args (subset match) and case.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Op != assertion.Action {
			continue
		}
		if assertion.Case != "" && event.Case != assertion.Case {
			continue
		}
		if matchArgs(event.Args, assertion.Args) {
			return nil
		}
	}

	expected := fmt.Sprintf("%s with args %v", assertion.Action, assertion.Args)
	if assertion.Case != "" {
		expected += " -> " + assertion.Case
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if operations appear in the specified order.
// Operations don't need to be consecutive, and each expected entry
// consumes a distinct trace event, so repeated names are allowed.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(assertion.Actions) && event.Op == assertion.Actions[next] {
			next++
		}
	}

	if next < len(assertion.Actions) {
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: fmt.Sprintf("operations in order: %v", assertion.Actions),
			Actual:   fmt.Sprintf("no %s after %v", assertion.Actions[next], assertion.Actions[:next]),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceCount checks if the operation appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op == assertion.Action {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertFinalState reads the context's versions from the store and checks
// the version count and the entries of the selected slot.
func assertFinalState(ctx context.Context, st *store.Store, contextID int64, assertion Assertion) error {
	versions, err := st.ListVersions(ctx, contextID)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("versions of context %d", contextID),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}

	if assertion.Versions != nil && len(versions) != *assertion.Versions {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%d versions", *assertion.Versions),
			Actual:   fmt.Sprintf("%d versions", len(versions)),
		}
	}

	if assertion.Guidelines == nil {
		return nil
	}

	slot := assertion.Slot
	if slot == "" {
		slot = SlotCurrent
	}
	index := 0
	if slot == SlotPending {
		index = 1
	}

	var actual []guideline.Entry
	switch {
	case index < len(versions):
		actual = guideline.Decode(versions[index].Content)
	case slot == SlotPending:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: "a pending version",
			Actual:   fmt.Sprintf("%d versions", len(versions)),
		}
	default:
		actual = []guideline.Entry{}
	}

	if !entriesEqual(actual, assertion.Guidelines) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s entries %s", slot, formatEntries(assertion.Guidelines)),
			Actual:   formatEntries(actual),
		}
	}
	return nil
}

func entriesEqual(a, b []guideline.Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// formatEntries renders entries in blob form on one line.
func formatEntries(entries []guideline.Entry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		if e.Active {
			parts[i] = fmt.Sprintf("%q", e.Content)
		} else {
			parts[i] = fmt.Sprintf("%q", guideline.DisabledMarker+e.Content)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// matchArgs checks if actual args contain all expected args (subset match).
// Extra keys in actual are ignored.
func matchArgs(actual, expected map[string]any) bool {
	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store     *store.Store
	Ctx       context.Context
	ContextID int64
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for final_state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires database context", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Store, actx.ContextID, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
