package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetRepository returns a repository by id.
func (s *Queries) GetRepository(ctx context.Context, id int64) (Repository, error) {
	var r Repository
	err := s.q.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT id, name FROM repositories WHERE id = ?
	`), id).Scan(&r.ID, &r.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Repository{}, fmt.Errorf("repository %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Repository{}, fmt.Errorf("get repository: %w", err)
	}
	return r, nil
}

// GetRepositoryByName returns a repository by its normalized name.
func (s *Queries) GetRepositoryByName(ctx context.Context, name string) (Repository, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Repository{}, fmt.Errorf("get repository: %w", err)
	}

	var r Repository
	err = s.q.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT id, name FROM repositories WHERE name = ?
	`), name).Scan(&r.ID, &r.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Repository{}, fmt.Errorf("repository %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Repository{}, fmt.Errorf("get repository: %w", err)
	}
	return r, nil
}

// ListRepositories returns all repositories ordered by id.
// Returns an empty slice (not nil) if none exist.
func (s *Queries) ListRepositories(ctx context.Context) ([]Repository, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name FROM repositories ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query repositories: %w", err)
	}
	defer rows.Close()

	repos := []Repository{}
	for rows.Next() {
		var r Repository
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}
	return repos, nil
}

const contextColumns = `id, repository_id, name, description`

func scanContext(row interface{ Scan(...any) error }) (Context, error) {
	var c Context
	err := row.Scan(&c.ID, &c.RepositoryID, &c.Name, &c.Description)
	return c, err
}

// GetContext returns a context by id.
func (s *Queries) GetContext(ctx context.Context, id int64) (Context, error) {
	return s.getContext(ctx, id, "")
}

// LockContext returns a context by id and, on Postgres, holds a row lock on
// it until the surrounding transaction ends. Writers that read versions and
// then insert or delete them lock the context first.
func (s *Queries) LockContext(ctx context.Context, id int64) (Context, error) {
	return s.getContext(ctx, id, s.dialect.forUpdate())
}

func (s *Queries) getContext(ctx context.Context, id int64, suffix string) (Context, error) {
	c, err := scanContext(s.q.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT `+contextColumns+` FROM guideline_contexts WHERE id = ?`+suffix), id))
	if errors.Is(err, sql.ErrNoRows) {
		return Context{}, fmt.Errorf("context %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Context{}, fmt.Errorf("get context: %w", err)
	}
	return c, nil
}

// GetContextByName returns the context of a repository by normalized name.
func (s *Queries) GetContextByName(ctx context.Context, repositoryID int64, name string) (Context, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Context{}, fmt.Errorf("get context: %w", err)
	}

	c, err := scanContext(s.q.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT `+contextColumns+` FROM guideline_contexts
		WHERE repository_id = ? AND name = ?
	`), repositoryID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Context{}, fmt.Errorf("context %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Context{}, fmt.Errorf("get context: %w", err)
	}
	return c, nil
}

// ListContexts returns the contexts of a repository ordered by id, or of
// every repository when repositoryID is 0.
func (s *Queries) ListContexts(ctx context.Context, repositoryID int64) ([]Context, error) {
	query := `SELECT ` + contextColumns + ` FROM guideline_contexts ORDER BY id ASC`
	var args []any
	if repositoryID != 0 {
		query = `SELECT ` + contextColumns + ` FROM guideline_contexts WHERE repository_id = ? ORDER BY id ASC`
		args = append(args, repositoryID)
	}
	return s.queryContexts(ctx, s.dialect.rebind(query), args...)
}

// ListPendingContexts returns contexts that currently hold a pending version.
// There is no ordering guarantee between contexts beyond id order.
func (s *Queries) ListPendingContexts(ctx context.Context) ([]Context, error) {
	return s.queryContexts(ctx, `
		SELECT `+contextColumns+` FROM guideline_contexts
		WHERE id IN (
			SELECT context_id FROM guideline_versions
			GROUP BY context_id
			HAVING COUNT(*) > 1
		)
		ORDER BY id ASC
	`)
}

func (s *Queries) queryContexts(ctx context.Context, query string, args ...any) ([]Context, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query contexts: %w", err)
	}
	defer rows.Close()

	contexts := []Context{}
	for rows.Next() {
		c, err := scanContext(rows)
		if err != nil {
			return nil, fmt.Errorf("scan context: %w", err)
		}
		contexts = append(contexts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contexts: %w", err)
	}
	return contexts, nil
}

// ListVersions returns the versions of a context, oldest first: index 0 is
// the current version, index 1 (if present) the pending version.
// Returns an empty slice (not nil) if the context has no versions.
func (s *Queries) ListVersions(ctx context.Context, contextID int64) ([]Version, error) {
	return s.queryVersions(ctx, s.dialect.rebind(`
		SELECT id, context_id, content FROM guideline_versions
		WHERE context_id = ?
		ORDER BY id ASC
	`), contextID)
}

// ListAllVersions returns every version row ordered by context, then id.
func (s *Queries) ListAllVersions(ctx context.Context) ([]Version, error) {
	return s.queryVersions(ctx, `
		SELECT id, context_id, content FROM guideline_versions
		ORDER BY context_id ASC, id ASC
	`)
}

func (s *Queries) queryVersions(ctx context.Context, query string, args ...any) ([]Version, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	versions := []Version{}
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.ContextID, &v.Content); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}
