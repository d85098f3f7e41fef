package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRepositories_Empty(t *testing.T) {
	s := createTestStore(t)

	repos, err := s.ListRepositories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, repos)
	assert.Empty(t, repos)
}

func TestGetRepository_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetRepository(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetRepositoryByName(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetContext(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	c := createTestContext(t, s, "repo", "style")

	got, err := s.GetContext(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	locked, err := s.LockContext(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, locked)

	byName, err := s.GetContextByName(ctx, c.RepositoryID, " style ")
	require.NoError(t, err)
	assert.Equal(t, c, byName)
}

func TestGetContext_NotFound(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.GetContext(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LockContext(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetContextByName(ctx, 1, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListContexts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := createTestContext(t, s, "api", "style")
	b := createTestContext(t, s, "api", "testing")
	c := createTestContext(t, s, "web", "style")

	all, err := s.ListContexts(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []Context{a, b, c}, all)

	api, err := s.ListContexts(ctx, a.RepositoryID)
	require.NoError(t, err)
	assert.Equal(t, []Context{a, b}, api)
}

func TestListVersions_OrderedByID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	c := createTestContext(t, s, "repo", "ctx")

	v1, err := s.InsertVersion(ctx, c.ID, "current")
	require.NoError(t, err)
	v2, err := s.InsertVersion(ctx, c.ID, "pending")
	require.NoError(t, err)

	versions, err := s.ListVersions(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []Version{v1, v2}, versions)
}

func TestListVersions_Empty(t *testing.T) {
	s := createTestStore(t)
	c := createTestContext(t, s, "repo", "ctx")

	versions, err := s.ListVersions(context.Background(), c.ID)
	require.NoError(t, err)
	assert.NotNil(t, versions)
	assert.Empty(t, versions)
}

func TestListPendingContexts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	published := createTestContext(t, s, "repo", "published")
	pending := createTestContext(t, s, "repo", "pending")
	createTestContext(t, s, "repo", "empty")

	_, err := s.InsertVersion(ctx, published.ID, "A")
	require.NoError(t, err)
	_, err = s.InsertVersion(ctx, pending.ID, "A")
	require.NoError(t, err)
	_, err = s.InsertVersion(ctx, pending.ID, "B")
	require.NoError(t, err)

	got, err := s.ListPendingContexts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Context{pending}, got)
}

func TestListAllVersions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	c1 := createTestContext(t, s, "repo", "one")
	c2 := createTestContext(t, s, "repo", "two")

	v2, err := s.InsertVersion(ctx, c2.ID, "two")
	require.NoError(t, err)
	v1, err := s.InsertVersion(ctx, c1.ID, "one")
	require.NoError(t, err)

	all, err := s.ListAllVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Version{v1, v2}, all)
}
