package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedContext_SharesRepository(t *testing.T) {
	st := OpenStore(t)

	a := SeedContext(t, st, "style")
	b := SeedContext(t, st, "review")

	assert.Equal(t, a.RepositoryID, b.RepositoryID)
	assert.NotEqual(t, a.ID, b.ID)

	repos, err := st.ListRepositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, DefaultRepository, repos[0].Name)
}

func TestBlob(t *testing.T) {
	assert.Equal(t, "", Blob())
	assert.Equal(t, "Use tabs\n-_-_-\n[DISABLED] Wrap at 80", Blob("Use tabs", "[DISABLED] Wrap at 80"))
}

func TestVersionContents(t *testing.T) {
	st := OpenStore(t)
	c := SeedContext(t, st, "style")

	assert.Empty(t, VersionContents(t, st, c.ID))

	_, err := st.InsertVersion(context.Background(), c.ID, Blob("A"))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, VersionContents(t, st, c.ID))
}
