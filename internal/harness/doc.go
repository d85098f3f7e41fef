// Package harness runs YAML scenarios against the versioning engine.
//
// A scenario creates one guideline context in a fresh in-memory store,
// runs setup and flow operations through the engine, then checks the
// trace of operations and the versions the context ends with.
//
// # Scenario Format
//
//	name: modify_inherits_flag
//	description: "An edited entry keeps the flag of the entry it replaced"
//	setup:
//	  - action: save
//	    args: { entries: ["Use tabs", "[DISABLED] Wrap at 80"] }
//	flow:
//	  - invoke: save
//	    args: { entries: ["Use tabs", "Wrap at 100"] }
//	    expect:
//	      case: Success
//	      result: { pending: true }
//	  - invoke: validate
//	assertions:
//	  - type: final_state
//	    versions: 1
//	    guidelines:
//	      - { content: Use tabs }
//	      - { content: Wrap at 100, active: false }
//
// # Operations
//
// save takes a raw "blob" or an "entries" list where a "[DISABLED] " prefix
// marks an inactive entry. update, toggle, flip and remove address a
// guideline by its current content in "target"; the harness derives the
// virtual id.
// The other operations are preview, validate, cancel, gc, guidelines and add.
//
// A step's case is "Success" or the guideline error code it was rejected
// with, such as PENDING_EXISTS.
//
// # Assertion Types
//
//   - trace_contains: an operation appears in the trace with matching args and case
//   - trace_order: operations appear in the given order
//   - trace_count: an operation appears exactly N times
//   - final_state: the context holds N versions and a slot holds the given entries
//
// # Golden Files
//
// RunWithGolden snapshots the trace and final entries as indented JSON in
// testdata/golden. Every run uses a fresh database and a constant operation
// id, so snapshots are byte-identical across runs.
package harness
