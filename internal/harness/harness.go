package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/roach88/guidectx/internal/engine"
	"github.com/roach88/guidectx/internal/guideline"
	"github.com/roach88/guidectx/internal/store"
	"github.com/roach88/guidectx/internal/testutil"
)

// Operations lists the operation names a scenario step may use.
var Operations = []string{
	"save", "preview", "validate", "cancel", "gc",
	"guidelines", "add", "update", "toggle", "flip", "remove",
}

// Harness runs scenario steps against a real engine.
type Harness struct {
	store     *store.Store
	engine    *engine.Engine
	contextID int64
	seq       int64
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database with a constant
// operation id, so the same scenario always yields the same trace.
//
// Execution flow:
// 1. Create fresh in-memory database and the scenario's context
// 2. Execute setup steps, which must succeed
// 3. Execute flow steps with expect validation
// 4. Capture the final versions and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	repo, err := st.CreateRepository(ctx, testutil.DefaultRepository)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}
	c, err := st.CreateContext(ctx, repo.ID, scenario.Context, scenario.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	h := &Harness{
		store: st,
		engine: engine.New(st,
			engine.WithLogger(slog.New(slog.DiscardHandler)),
			engine.WithOpIDGenerator(testutil.NewConstantOpID(scenario.Name)),
		),
		contextID: c.ID,
	}

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	if err := h.captureState(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}

	actx := &AssertionContext{
		Store:     st,
		Ctx:       ctx,
		ContextID: c.ID,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSetup runs all setup steps. A rejected setup step aborts the run.
func (h *Harness) executeSetup(ctx context.Context, setup []ActionStep, result *Result) error {
	for i, step := range setup {
		ev, err := h.step(ctx, PhaseSetup, step.Action, step.Args)
		if err != nil {
			return fmt.Errorf("setup step %d: %w", i, err)
		}
		result.AddTrace(ev)

		if ev.Case != CaseSuccess {
			return fmt.Errorf("setup step %d: %s rejected with %s", i, step.Action, ev.Case)
		}
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses.
// Mismatches are recorded on result; only infrastructure failures abort.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		ev, err := h.step(ctx, PhaseFlow, step.Invoke, step.Args)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}
		result.AddTrace(ev)

		if step.Expect == nil {
			if ev.Case != CaseSuccess {
				result.AddError(fmt.Sprintf("flow[%d] %s: unexpected %s", i, step.Invoke, ev.Case))
			}
			continue
		}

		if ev.Case != step.Expect.Case {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected case %s, got %s",
				i, step.Invoke, step.Expect.Case, ev.Case))
			continue
		}
		for key, want := range step.Expect.Result {
			got, ok := ev.Result[key]
			if !ok {
				result.AddError(fmt.Sprintf("flow[%d] %s: result has no field %q", i, step.Invoke, key))
				continue
			}
			if !valuesEqual(got, want) {
				result.AddError(fmt.Sprintf("flow[%d] %s: result field %q = %v, expected %v",
					i, step.Invoke, key, normalize(got), normalize(want)))
			}
		}
	}
	return nil
}

// step runs one operation and records it as a trace event. Guideline
// rejections become the event's case; any other error is returned.
func (h *Harness) step(ctx context.Context, phase, op string, args map[string]any) (TraceEvent, error) {
	h.seq++
	ev := TraceEvent{Seq: h.seq, Phase: phase, Op: op, Args: args, Case: CaseSuccess}

	res, err := h.invoke(ctx, op, args)
	if err != nil {
		code := guideline.CodeOf(err)
		if code == "" {
			return TraceEvent{}, fmt.Errorf("%s: %w", op, err)
		}
		ev.Case = string(code)
		return ev, nil
	}

	ev.Result = res
	return ev, nil
}

// invoke dispatches op to the engine. Guidelines are addressed by content
// in scenarios; the harness derives their virtual ids.
func (h *Harness) invoke(ctx context.Context, op string, args map[string]any) (map[string]any, error) {
	e, id := h.engine, h.contextID

	switch op {
	case "save":
		blob, err := blobArg(args)
		if err != nil {
			return nil, err
		}
		res, err := e.Save(ctx, id, blob)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"pending": res.Pending,
			"entries": len(guideline.Decode(res.Version.Content)),
		}, nil

	case "preview":
		cmp, err := e.Preview(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"hunks": cmp.Hunks}, nil

	case "validate":
		v, err := e.Validate(ctx, id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"guidelines": guideline.Decode(v.Content)}, nil

	case "cancel":
		return nil, e.Cancel(ctx, id)

	case "gc":
		n, err := e.CollectEmpty(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"deleted": n}, nil

	case "guidelines":
		pending, err := boolArg(args, "pending", false)
		if err != nil {
			return nil, err
		}
		gs, err := e.Guidelines(ctx, id, pending)
		if err != nil {
			return nil, err
		}
		return map[string]any{"guidelines": entriesOf(gs)}, nil

	case "add":
		content, err := stringArg(args, "content")
		if err != nil {
			return nil, err
		}
		active, err := boolArg(args, "active", true)
		if err != nil {
			return nil, err
		}
		g, err := e.AddGuideline(ctx, id, content, active)
		return guidelineResult(g, err)

	case "update":
		target, err := stringArg(args, "target")
		if err != nil {
			return nil, err
		}
		content, err := stringArg(args, "content")
		if err != nil {
			return nil, err
		}
		g, err := e.UpdateGuideline(ctx, id, guideline.VirtualID(id, target), content)
		return guidelineResult(g, err)

	case "toggle":
		target, err := stringArg(args, "target")
		if err != nil {
			return nil, err
		}
		active, err := boolArg(args, "active", true)
		if err != nil {
			return nil, err
		}
		g, err := e.ToggleGuideline(ctx, id, guideline.VirtualID(id, target), active)
		return guidelineResult(g, err)

	case "flip":
		target, err := stringArg(args, "target")
		if err != nil {
			return nil, err
		}
		g, err := e.FlipGuideline(ctx, id, guideline.VirtualID(id, target))
		return guidelineResult(g, err)

	case "remove":
		target, err := stringArg(args, "target")
		if err != nil {
			return nil, err
		}
		return nil, e.DeleteGuideline(ctx, id, guideline.VirtualID(id, target))
	}

	return nil, fmt.Errorf("unknown operation %q", op)
}

// captureState records the entries of the context's versions on result.
func (h *Harness) captureState(ctx context.Context, result *Result) error {
	versions, err := h.store.ListVersions(ctx, h.contextID)
	if err != nil {
		return err
	}
	if len(versions) > 0 {
		result.Current = guideline.Decode(versions[0].Content)
	}
	if len(versions) > 1 {
		result.Pending = guideline.Decode(versions[1].Content)
	}
	return nil
}

func guidelineResult(g engine.Guideline, err error) (map[string]any, error) {
	if err != nil {
		return nil, err
	}
	return map[string]any{"content": g.Content, "active": g.Active}, nil
}

func entriesOf(gs []engine.Guideline) []guideline.Entry {
	out := make([]guideline.Entry, len(gs))
	for i, g := range gs {
		out[i] = guideline.Entry{Content: g.Content, Active: g.Active}
	}
	return out
}

// blobArg reads the save input: either a raw "blob" or an "entries" list
// where a "[DISABLED] " prefix marks an inactive entry.
func blobArg(args map[string]any) (string, error) {
	if raw, ok := args["blob"]; ok {
		s, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("arg %q: expected string, got %T", "blob", raw)
		}
		return s, nil
	}

	raw, ok := args["entries"]
	if !ok {
		return "", fmt.Errorf("save requires %q or %q", "blob", "entries")
	}
	list, ok := raw.([]any)
	if !ok {
		return "", fmt.Errorf("arg %q: expected list, got %T", "entries", raw)
	}
	entries := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return "", fmt.Errorf("arg %q[%d]: expected string, got %T", "entries", i, item)
		}
		entries[i] = s
	}
	return testutil.Blob(entries...), nil
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing arg %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("arg %q: expected string, got %T", key, raw)
	}
	return s, nil
}

func boolArg(args map[string]any, key string, def bool) (bool, error) {
	raw, ok := args[key]
	if !ok {
		return def, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("arg %q: expected bool, got %T", key, raw)
	}
	return b, nil
}

// normalize converts v to its JSON data model (maps, slices, float64), so
// YAML-decoded expectations compare equal to engine results.
func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// valuesEqual compares two values by their JSON data model.
func valuesEqual(actual, expected any) bool {
	return reflect.DeepEqual(normalize(actual), normalize(expected))
}
