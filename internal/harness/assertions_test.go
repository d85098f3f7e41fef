package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/guidectx/internal/guideline"
	"github.com/roach88/guidectx/internal/testutil"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Phase: PhaseSetup, Op: "save", Args: map[string]any{"entries": []any{"A"}}, Case: CaseSuccess},
		{Seq: 2, Phase: PhaseFlow, Op: "save", Args: map[string]any{"entries": []any{"B"}}, Case: CaseSuccess},
		{Seq: 3, Phase: PhaseFlow, Op: "save", Args: map[string]any{"entries": []any{"C"}}, Case: "PENDING_EXISTS"},
		{Seq: 4, Phase: PhaseFlow, Op: "validate", Case: CaseSuccess},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   bool
	}{
		{"action only", Assertion{Action: "validate"}, false},
		{"args subset", Assertion{Action: "save", Args: map[string]any{"entries": []any{"B"}}}, false},
		{"args and case", Assertion{Action: "save", Args: map[string]any{"entries": []any{"C"}}, Case: "PENDING_EXISTS"}, false},
		{"case mismatch", Assertion{Action: "save", Args: map[string]any{"entries": []any{"B"}}, Case: "PENDING_EXISTS"}, true},
		{"args mismatch", Assertion{Action: "save", Args: map[string]any{"entries": []any{"D"}}}, true},
		{"missing action", Assertion{Action: "cancel"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertTraceContains(trace, tt.assertion)
			if tt.wantErr {
				var ae *AssertionError
				require.ErrorAs(t, err, &ae)
				assert.Equal(t, AssertTraceContains, ae.Type)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"save", "validate"}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"save", "save", "save", "validate"}}))

	err := assertTraceOrder(trace, Assertion{Actions: []string{"validate", "save"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no save after [validate]")

	err = assertTraceOrder(trace, Assertion{Actions: []string{"save", "cancel"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cancel after [save]")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "save", Count: 3}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "cancel", Count: 0}))

	err := assertTraceCount(trace, Assertion{Action: "validate", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 occurrences of validate")
	assert.Contains(t, err.Error(), "Full trace:")
}

func TestAssertFinalState(t *testing.T) {
	st := testutil.OpenStore(t)
	c := testutil.SeedContext(t, st, "style")
	ctx := context.Background()

	_, err := st.InsertVersion(ctx, c.ID, testutil.Blob("A", "[DISABLED] B"))
	require.NoError(t, err)

	one := 1
	two := 2

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{
			name:      "version count",
			assertion: Assertion{Versions: &one},
		},
		{
			name: "current entries",
			assertion: Assertion{Guidelines: []guideline.Entry{
				{Content: "A", Active: true},
				{Content: "B", Active: false},
			}},
		},
		{
			name:      "wrong count",
			assertion: Assertion{Versions: &two},
			wantErr:   "2 versions",
		},
		{
			name: "wrong flag",
			assertion: Assertion{Guidelines: []guideline.Entry{
				{Content: "A", Active: true},
				{Content: "B", Active: true},
			}},
			wantErr: `["A", "[DISABLED] B"]`,
		},
		{
			name:      "no pending",
			assertion: Assertion{Slot: SlotPending, Guidelines: []guideline.Entry{}},
			wantErr:   "a pending version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := assertFinalState(ctx, st, c.ID, tt.assertion)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEvaluateAssertions_FinalStateNeedsStore(t *testing.T) {
	one := 1
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertFinalState, Versions: &one}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "final_state requires database context")
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(2, 2.0))
	assert.True(t, valuesEqual([]guideline.Entry{{Content: "A", Active: true}},
		[]any{map[string]any{"content": "A", "active": true}}))
	assert.False(t, valuesEqual([]any{"A"}, []any{"A", "B"}))
}
