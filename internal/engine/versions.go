package engine

import (
	"context"

	"github.com/roach88/guidectx/internal/guideline"
	"github.com/roach88/guidectx/internal/metrics"
	"github.com/roach88/guidectx/internal/store"
)

// SaveResult describes the version a Save wrote.
type SaveResult struct {
	Version store.Version `json:"version"`

	// Pending is true when the save created a proposal next to an existing
	// current version, false when it created the first version.
	Pending bool `json:"pending"`
}

// Comparison is the preview of a pending version against the current one.
type Comparison struct {
	ContextID int64            `json:"context_id"`
	Current   store.Version    `json:"current"`
	Pending   store.Version    `json:"pending"`
	Hunks     []guideline.Hunk `json:"hunks"`
}

// Save stores blob as the next version of contextID.
//
// The blob is stored in canonical form. Save fails with
// DUPLICATE_GUIDELINE if two entries share normalized content,
// IDENTICAL_VERSION if the context's only version already holds the same
// entries, and PENDING_EXISTS if the context already holds two versions.
func (e *Engine) Save(ctx context.Context, contextID int64, blob string) (SaveResult, error) {
	log := e.begin("save", contextID)

	entries := guideline.Decode(blob)
	if dup, ok := guideline.FindDuplicate(entries); ok {
		return SaveResult{}, e.fail(log, contextID, guideline.NewDuplicateError(dup))
	}
	canonical := guideline.Encode(entries)

	var res SaveResult
	err := e.mutate(ctx, contextID, func(tx store.Versions) error {
		versions, err := lockedVersions(ctx, tx, contextID)
		if err != nil {
			return err
		}

		switch len(versions) {
		case 0:
		case 1:
			if guideline.Canonical(versions[0].Content) == canonical {
				return guideline.NewIdenticalVersionError(contextID)
			}
			res.Pending = true
		default:
			return guideline.NewPendingExistsError(contextID)
		}

		v, err := tx.InsertVersion(ctx, contextID, canonical)
		if err != nil {
			return err
		}
		res.Version = v
		return nil
	})
	if err != nil {
		return SaveResult{}, e.fail(log, contextID, err)
	}

	slot := metrics.SlotCurrent
	if res.Pending {
		slot = metrics.SlotPending
	}
	e.metrics.ObserveSave(slot)
	log.Info("version saved", "version_id", res.Version.ID, "slot", slot, "entries", len(entries))

	return res, nil
}

// Preview diffs the pending version of contextID against its current one.
// Fails with CONTEXT_NOT_FOUND or NO_PENDING_VERSION.
func (e *Engine) Preview(ctx context.Context, contextID int64) (Comparison, error) {
	versions, err := e.readVersions(ctx, contextID)
	if err != nil {
		return Comparison{}, translate(contextID, err)
	}
	if len(versions) < 2 {
		return Comparison{}, guideline.NewNoPendingError(contextID)
	}

	return Comparison{
		ContextID: contextID,
		Current:   versions[0],
		Pending:   versions[1],
		Hunks:     guideline.Diff(versions[0].Content, versions[1].Content),
	}, nil
}

// Validate publishes the pending version of contextID.
//
// The pending blob is replaced with the reconciled blob, so entry flags
// carry over from the current version, and the current version is deleted.
// Both writes happen in one transaction. Returns the published version.
func (e *Engine) Validate(ctx context.Context, contextID int64) (store.Version, error) {
	log := e.begin("validate", contextID)

	var published store.Version
	var hunks int
	err := e.mutate(ctx, contextID, func(tx store.Versions) error {
		versions, err := lockedVersions(ctx, tx, contextID)
		if err != nil {
			return err
		}
		if len(versions) < 2 {
			return guideline.NewNoPendingError(contextID)
		}
		current, pending := versions[0], versions[1]

		final := guideline.Reconcile(current.Content, pending.Content)
		if err := tx.UpdateVersionContent(ctx, pending.ID, final); err != nil {
			return err
		}
		if err := tx.DeleteVersion(ctx, current.ID); err != nil {
			return err
		}

		hunks = len(guideline.Diff(current.Content, pending.Content))
		published = store.Version{ID: pending.ID, ContextID: contextID, Content: final}
		return nil
	})
	if err != nil {
		return store.Version{}, e.fail(log, contextID, err)
	}

	e.metrics.ObserveValidation(hunks)
	log.Info("pending version published", "version_id", published.ID, "hunks", hunks)

	return published, nil
}

// Cancel discards the pending version of contextID and leaves the current
// version untouched. Fails with NO_PENDING_VERSION if there is none.
func (e *Engine) Cancel(ctx context.Context, contextID int64) error {
	log := e.begin("cancel", contextID)

	var dropped int64
	err := e.mutate(ctx, contextID, func(tx store.Versions) error {
		versions, err := lockedVersions(ctx, tx, contextID)
		if err != nil {
			return err
		}
		if len(versions) < 2 {
			return guideline.NewNoPendingError(contextID)
		}
		dropped = versions[1].ID
		return tx.DeleteVersion(ctx, dropped)
	})
	if err != nil {
		return e.fail(log, contextID, err)
	}

	e.metrics.ObserveCancellation()
	log.Info("pending version discarded", "version_id", dropped)
	return nil
}

// ListPending returns the contexts that hold a pending version.
func (e *Engine) ListPending(ctx context.Context) ([]store.Context, error) {
	return e.backend.ListPendingContexts(ctx)
}

// CollectEmpty deletes versions whose blob decodes to no entries and
// returns how many it deleted.
//
// An empty pending version is dropped. An empty current version is dropped
// unless a non-empty pending version sits next to it: deleting it would
// promote the proposal without validation. Other contexts are not touched.
func (e *Engine) CollectEmpty(ctx context.Context) (int, error) {
	all, err := e.backend.ListAllVersions(ctx)
	if err != nil {
		return 0, err
	}

	var candidates []int64
	seen := make(map[int64]bool)
	for _, v := range all {
		if len(guideline.Decode(v.Content)) == 0 && !seen[v.ContextID] {
			seen[v.ContextID] = true
			candidates = append(candidates, v.ContextID)
		}
	}

	collected := 0
	for _, contextID := range candidates {
		n, err := e.collectContext(ctx, contextID)
		if err != nil {
			return collected, err
		}
		collected += n
	}

	e.metrics.ObserveCollected(collected)
	e.logger.Info("empty versions collected", "contexts", len(candidates), "deleted", collected)

	return collected, nil
}

func (e *Engine) collectContext(ctx context.Context, contextID int64) (int, error) {
	log := e.begin("collect", contextID)

	var deleted []int64
	err := e.mutate(ctx, contextID, func(tx store.Versions) error {
		versions, err := lockedVersions(ctx, tx, contextID)
		if err != nil {
			return err
		}

		for _, v := range emptyVersions(versions) {
			if err := tx.DeleteVersion(ctx, v.ID); err != nil {
				return err
			}
			deleted = append(deleted, v.ID)
		}
		return nil
	})
	if guideline.CodeOf(err) == guideline.ErrCodeContextNotFound {
		// Deleted since the scan.
		return 0, nil
	}
	if err != nil {
		return 0, e.fail(log, contextID, err)
	}

	if len(deleted) > 0 {
		log.Debug("empty versions deleted", "version_ids", deleted)
	}
	return len(deleted), nil
}

// emptyVersions picks the versions CollectEmpty may delete from one
// context's versions (given oldest first), pending before current.
func emptyVersions(versions []store.Version) []store.Version {
	var out []store.Version
	pendingSurvives := false

	if len(versions) > 1 {
		pending := versions[len(versions)-1]
		if len(guideline.Decode(pending.Content)) == 0 {
			out = append(out, pending)
		} else {
			pendingSurvives = true
		}
	}

	if len(versions) > 0 {
		current := versions[0]
		if len(guideline.Decode(current.Content)) == 0 && !pendingSurvives {
			out = append(out, current)
		}
	}

	return out
}
