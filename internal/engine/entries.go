package engine

import (
	"context"

	"github.com/roach88/guidectx/internal/guideline"
	"github.com/roach88/guidectx/internal/store"
)

// Guideline is a decoded entry addressed by its virtual id.
type Guideline struct {
	ID      int64  `json:"id" yaml:"id"`
	Content string `json:"content" yaml:"content"`
	Active  bool   `json:"active" yaml:"active"`
}

// WithIDs pairs each entry with its virtual id in contextID.
func WithIDs(contextID int64, entries []guideline.Entry) []Guideline {
	out := make([]Guideline, len(entries))
	for i, e := range entries {
		out[i] = Guideline{
			ID:      guideline.VirtualID(contextID, e.Content),
			Content: e.Content,
			Active:  e.Active,
		}
	}
	return out
}

// Guidelines returns the entries of the current version of contextID, or of
// the pending version when pending is set. A context without versions has
// no guidelines; asking for a pending version that does not exist fails
// with NO_PENDING_VERSION.
func (e *Engine) Guidelines(ctx context.Context, contextID int64, pending bool) ([]Guideline, error) {
	versions, err := e.readVersions(ctx, contextID)
	if err != nil {
		return nil, translate(contextID, err)
	}

	var blob string
	switch {
	case pending && len(versions) < 2:
		return nil, guideline.NewNoPendingError(contextID)
	case pending:
		blob = versions[1].Content
	case len(versions) > 0:
		blob = versions[0].Content
	}

	return WithIDs(contextID, guideline.Decode(blob)), nil
}

// AddGuideline appends content to the current version of contextID. A
// context with no versions gets its first version.
func (e *Engine) AddGuideline(ctx context.Context, contextID int64, content string, active bool) (Guideline, error) {
	var added Guideline
	err := e.editCurrent(ctx, "add_guideline", contextID, func(blob string) (string, error) {
		next, err := guideline.Append(blob, content, active)
		if err != nil {
			return "", err
		}
		normalized := guideline.Normalize(content)
		added = Guideline{ID: guideline.VirtualID(contextID, normalized), Content: normalized, Active: active}
		return next, nil
	})
	return added, err
}

// UpdateGuideline replaces the content of the entry with virtual id id,
// keeping its flag. The entry's id changes with its content.
func (e *Engine) UpdateGuideline(ctx context.Context, contextID, id int64, content string) (Guideline, error) {
	var updated Guideline
	err := e.editCurrent(ctx, "update_guideline", contextID, func(blob string) (string, error) {
		target, err := resolve(blob, contextID, id)
		if err != nil {
			return "", err
		}
		next, err := guideline.Update(blob, target.Content, content)
		if err != nil {
			return "", err
		}
		normalized := guideline.Normalize(content)
		updated = Guideline{ID: guideline.VirtualID(contextID, normalized), Content: normalized, Active: target.Active}
		return next, nil
	})
	return updated, err
}

// ToggleGuideline sets the active flag of the entry with virtual id id.
func (e *Engine) ToggleGuideline(ctx context.Context, contextID, id int64, active bool) (Guideline, error) {
	var toggled Guideline
	err := e.editCurrent(ctx, "toggle_guideline", contextID, func(blob string) (string, error) {
		target, err := resolve(blob, contextID, id)
		if err != nil {
			return "", err
		}
		next, err := guideline.Toggle(blob, target.Content, active)
		if err != nil {
			return "", err
		}
		toggled = Guideline{ID: id, Content: target.Content, Active: active}
		return next, nil
	})
	return toggled, err
}

// FlipGuideline inverts the active flag of the entry with virtual id id.
// The flag is read and written under the context lock, so concurrent flips
// never collapse into one.
func (e *Engine) FlipGuideline(ctx context.Context, contextID, id int64) (Guideline, error) {
	var flipped Guideline
	err := e.editCurrent(ctx, "flip_guideline", contextID, func(blob string) (string, error) {
		target, err := resolve(blob, contextID, id)
		if err != nil {
			return "", err
		}
		next, err := guideline.Toggle(blob, target.Content, !target.Active)
		if err != nil {
			return "", err
		}
		flipped = Guideline{ID: id, Content: target.Content, Active: !target.Active}
		return next, nil
	})
	return flipped, err
}

// DeleteGuideline removes the entry with virtual id id. Removing the last
// entry leaves an empty version for CollectEmpty.
func (e *Engine) DeleteGuideline(ctx context.Context, contextID, id int64) error {
	return e.editCurrent(ctx, "delete_guideline", contextID, func(blob string) (string, error) {
		target, err := resolve(blob, contextID, id)
		if err != nil {
			return "", err
		}
		return guideline.Remove(blob, target.Content)
	})
}

func resolve(blob string, contextID, id int64) (guideline.Entry, error) {
	entry, ok := guideline.Resolve(guideline.Decode(blob), contextID, id)
	if !ok {
		return guideline.Entry{}, guideline.NewIDNotFoundError(contextID, id)
	}
	return entry, nil
}

// editCurrent rewrites the current version of contextID in place with fn.
// Edits are refused with PENDING_EXISTS while a proposal awaits review, so
// a later Validate never reconciles against a version the proposal did not
// start from.
func (e *Engine) editCurrent(ctx context.Context, op string, contextID int64, fn func(blob string) (string, error)) error {
	log := e.begin(op, contextID)

	var versionID int64
	err := e.mutate(ctx, contextID, func(tx store.Versions) error {
		versions, err := lockedVersions(ctx, tx, contextID)
		if err != nil {
			return err
		}

		switch len(versions) {
		case 0:
			next, err := fn("")
			if err != nil {
				return err
			}
			v, err := tx.InsertVersion(ctx, contextID, next)
			if err != nil {
				return err
			}
			versionID = v.ID
			return nil
		case 1:
			next, err := fn(versions[0].Content)
			if err != nil {
				return err
			}
			versionID = versions[0].ID
			return tx.UpdateVersionContent(ctx, versionID, next)
		default:
			return guideline.NewPendingExistsError(contextID)
		}
	})
	if err != nil {
		return e.fail(log, contextID, err)
	}

	log.Info("guideline edited", "version_id", versionID)
	return nil
}
