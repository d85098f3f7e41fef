// Package engine implements the two-version guideline workflow on top of a
// storage backend.
//
// Every context holds at most two versions. The older one is the current
// (published) version; a newer one, if present, is the pending proposal:
//
//	Save      0 versions -> current; 1 version -> pending; 2 versions -> rejected
//	Preview   diff current against pending
//	Validate  reconcile flags, publish pending, drop current
//	Cancel    drop pending
//
// Mutating operations are serialized per context inside the process and run
// in a single backend transaction that locks the context row. The store's
// version-limit trigger catches writers in other processes.
//
// Errors returned to callers are *guideline.Error values wherever the input
// or the context state is at fault; anything else is a wrapped storage error.
package engine
