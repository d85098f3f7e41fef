// Package testutil holds fixtures shared by the engine, harness and CLI tests.
package testutil

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/guidectx/internal/guideline"
	"github.com/roach88/guidectx/internal/store"
)

// DefaultRepository is the repository SeedContext creates contexts in.
const DefaultRepository = "acme/api"

// OpenStore opens a SQLite store in a temporary directory and closes it
// when the test ends.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// SeedContext creates a context named name in DefaultRepository, creating
// the repository on first use.
func SeedContext(t testing.TB, st *store.Store, name string) store.Context {
	t.Helper()
	ctx := context.Background()

	repo, err := st.GetRepositoryByName(ctx, DefaultRepository)
	if errors.Is(err, store.ErrNotFound) {
		repo, err = st.CreateRepository(ctx, DefaultRepository)
	}
	require.NoError(t, err)

	c, err := st.CreateContext(ctx, repo.ID, name, "")
	require.NoError(t, err)
	return c
}

// Blob encodes entries as a version blob. An entry written with the
// disabled marker becomes an inactive entry.
//
//	Blob("Use tabs", "[DISABLED] Wrap at 80")
func Blob(entries ...string) string {
	out := make([]guideline.Entry, len(entries))
	for i, s := range entries {
		content := guideline.Normalize(s)
		out[i] = guideline.Entry{Content: content, Active: content == s}
	}
	return guideline.Encode(out)
}

// VersionContents returns the stored blobs of contextID, oldest first.
func VersionContents(t testing.TB, st *store.Store, contextID int64) []string {
	t.Helper()
	versions, err := st.ListVersions(context.Background(), contextID)
	require.NoError(t, err)
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.Content
	}
	return out
}
