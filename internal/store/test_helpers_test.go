package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestContext creates a repository and a context inside it.
func createTestContext(t *testing.T, s *Store, repoName, contextName string) Context {
	t.Helper()
	ctx := context.Background()

	repo, err := s.GetRepositoryByName(ctx, repoName)
	if errors.Is(err, ErrNotFound) {
		repo, err = s.CreateRepository(ctx, repoName)
	}
	if err != nil {
		t.Fatalf("repository %q: %v", repoName, err)
	}

	c, err := s.CreateContext(ctx, repo.ID, contextName, "")
	if err != nil {
		t.Fatalf("CreateContext(%q) failed: %v", contextName, err)
	}
	return c
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
