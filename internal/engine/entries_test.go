package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/guidectx/internal/guideline"
)

func TestGuidelines_Current(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	_, err := e.Save(ctx, id, blob("Use tabs", "[DISABLED] Wrap at 80"))
	require.NoError(t, err)

	got, err := e.Guidelines(ctx, id, false)
	require.NoError(t, err)
	assert.Equal(t, []Guideline{
		{ID: guideline.VirtualID(id, "Use tabs"), Content: "Use tabs", Active: true},
		{ID: guideline.VirtualID(id, "Wrap at 80"), Content: "Wrap at 80", Active: false},
	}, got)
}

func TestGuidelines_Pending(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	_, err := e.Guidelines(ctx, id, true)
	assert.Equal(t, guideline.ErrCodeNoPendingVersion, guideline.CodeOf(err))

	_, err = e.Save(ctx, id, blob("A"))
	require.NoError(t, err)
	_, err = e.Save(ctx, id, blob("A", "B"))
	require.NoError(t, err)

	got, err := e.Guidelines(ctx, id, true)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[1].Content)
}

func TestGuidelines_NoVersions(t *testing.T) {
	e, st := setupTestEngine(t)
	id := createContext(t, st, "style")

	got, err := e.Guidelines(context.Background(), id, false)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestGuidelines_UnknownContext(t *testing.T) {
	e, _ := setupTestEngine(t)

	_, err := e.Guidelines(context.Background(), 77, false)
	assert.Equal(t, guideline.ErrCodeContextNotFound, guideline.CodeOf(err))
}

func TestAddGuideline_CreatesFirstVersion(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	g, err := e.AddGuideline(ctx, id, "  Use tabs ", true)
	require.NoError(t, err)

	assert.Equal(t, Guideline{ID: guideline.VirtualID(id, "Use tabs"), Content: "Use tabs", Active: true}, g)
	assert.Equal(t, []string{"Use tabs"}, versionContents(t, st, id))
}

func TestAddGuideline_AppendsToCurrent(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	_, err := e.Save(ctx, id, blob("A"))
	require.NoError(t, err)

	_, err = e.AddGuideline(ctx, id, "B", false)
	require.NoError(t, err)
	assert.Equal(t, []string{blob("A", "[DISABLED] B")}, versionContents(t, st, id))
}

func TestAddGuideline_Duplicate(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	_, err := e.Save(ctx, id, blob("[DISABLED] A"))
	require.NoError(t, err)

	_, err = e.AddGuideline(ctx, id, "A", true)
	require.Error(t, err)
	assert.Equal(t, guideline.ErrCodeDuplicateGuideline, guideline.CodeOf(err))

	var ge *guideline.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, id, ge.ContextID)
}

func TestAddGuideline_InvalidContent(t *testing.T) {
	e, st := setupTestEngine(t)
	id := createContext(t, st, "style")

	_, err := e.AddGuideline(context.Background(), id, "   ", true)
	assert.Equal(t, guideline.ErrCodeInvalidContent, guideline.CodeOf(err))
	assert.Empty(t, versionContents(t, st, id))
}

func TestEdits_RejectedWhilePending(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	_, err := e.Save(ctx, id, blob("A"))
	require.NoError(t, err)
	_, err = e.Save(ctx, id, blob("B"))
	require.NoError(t, err)
	vid := guideline.VirtualID(id, "A")

	_, err = e.AddGuideline(ctx, id, "C", true)
	assert.Equal(t, guideline.ErrCodePendingExists, guideline.CodeOf(err))
	_, err = e.UpdateGuideline(ctx, id, vid, "A2")
	assert.Equal(t, guideline.ErrCodePendingExists, guideline.CodeOf(err))
	_, err = e.ToggleGuideline(ctx, id, vid, false)
	assert.Equal(t, guideline.ErrCodePendingExists, guideline.CodeOf(err))
	err = e.DeleteGuideline(ctx, id, vid)
	assert.Equal(t, guideline.ErrCodePendingExists, guideline.CodeOf(err))

	assert.Equal(t, []string{blob("A"), blob("B")}, versionContents(t, st, id))
}

func TestUpdateGuideline(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	_, err := e.Save(ctx, id, blob("[DISABLED] Old", "Keep"))
	require.NoError(t, err)

	g, err := e.UpdateGuideline(ctx, id, guideline.VirtualID(id, "Old"), "New")
	require.NoError(t, err)

	assert.Equal(t, guideline.VirtualID(id, "New"), g.ID)
	assert.False(t, g.Active)
	assert.Equal(t, []string{blob("[DISABLED] New", "Keep")}, versionContents(t, st, id))
}

func TestUpdateGuideline_UnknownID(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	_, err := e.Save(ctx, id, blob("A"))
	require.NoError(t, err)

	_, err = e.UpdateGuideline(ctx, id, 12345, "B")
	assert.Equal(t, guideline.ErrCodeGuidelineNotFound, guideline.CodeOf(err))
	assert.True(t, guideline.IsNotFound(err))
}

func TestUpdateGuideline_IDIsScopedToContext(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	style := createContext(t, st, "style")
	review := createContext(t, st, "review")

	_, err := e.Save(ctx, review, blob("A"))
	require.NoError(t, err)

	_, err = e.UpdateGuideline(ctx, review, guideline.VirtualID(style, "A"), "B")
	assert.Equal(t, guideline.ErrCodeGuidelineNotFound, guideline.CodeOf(err))
}

func TestToggleGuideline(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	_, err := e.Save(ctx, id, blob("A", "B"))
	require.NoError(t, err)
	vid := guideline.VirtualID(id, "B")

	g, err := e.ToggleGuideline(ctx, id, vid, false)
	require.NoError(t, err)
	assert.Equal(t, Guideline{ID: vid, Content: "B", Active: false}, g)
	assert.Equal(t, []string{blob("A", "[DISABLED] B")}, versionContents(t, st, id))

	_, err = e.ToggleGuideline(ctx, id, vid, true)
	require.NoError(t, err)
	assert.Equal(t, []string{blob("A", "B")}, versionContents(t, st, id))
}

func TestFlipGuideline(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	_, err := e.Save(ctx, id, blob("A", "[DISABLED] B"))
	require.NoError(t, err)
	vid := guideline.VirtualID(id, "B")

	g, err := e.FlipGuideline(ctx, id, vid)
	require.NoError(t, err)
	assert.Equal(t, Guideline{ID: vid, Content: "B", Active: true}, g)
	assert.Equal(t, []string{blob("A", "B")}, versionContents(t, st, id))

	g, err = e.FlipGuideline(ctx, id, vid)
	require.NoError(t, err)
	assert.False(t, g.Active)
	assert.Equal(t, []string{blob("A", "[DISABLED] B")}, versionContents(t, st, id))

	_, err = e.FlipGuideline(ctx, id, guideline.VirtualID(id, "missing"))
	assert.Equal(t, guideline.ErrCodeGuidelineNotFound, guideline.CodeOf(err))
}

func TestFlipGuideline_ConcurrentFlipsAllApply(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	_, err := e.Save(ctx, id, blob("A"))
	require.NoError(t, err)
	vid := guideline.VirtualID(id, "A")

	const flips = 6
	var wg sync.WaitGroup
	errs := make([]error, flips)
	for i := 0; i < flips; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.FlipGuideline(ctx, id, vid)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	// An even number of flips restores the original flag.
	assert.Equal(t, []string{blob("A")}, versionContents(t, st, id))
}

func TestDeleteGuideline(t *testing.T) {
	e, st := setupTestEngine(t)
	ctx := context.Background()
	id := createContext(t, st, "style")

	_, err := e.Save(ctx, id, blob("A"))
	require.NoError(t, err)

	require.NoError(t, e.DeleteGuideline(ctx, id, guideline.VirtualID(id, "A")))
	assert.Equal(t, []string{""}, versionContents(t, st, id))

	n, err := e.CollectEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, versionContents(t, st, id))
}

func TestDeleteGuideline_NoVersions(t *testing.T) {
	e, st := setupTestEngine(t)
	id := createContext(t, st, "style")

	err := e.DeleteGuideline(context.Background(), id, guideline.VirtualID(id, "A"))
	assert.Equal(t, guideline.ErrCodeGuidelineNotFound, guideline.CodeOf(err))
	assert.Empty(t, versionContents(t, st, id))
}
