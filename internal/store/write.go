package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds every read and write the store supports. A Store embeds one
// bound to the connection pool; Atomic hands out one bound to a transaction.
type Queries struct {
	q       execer
	dialect dialect
}

// normalizeName trims and NFC-normalizes a repository or context name so that
// composed and decomposed spellings address the same row.
func normalizeName(name string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(name))
	if n == "" {
		return "", ErrInvalidName
	}
	return n, nil
}

// CreateRepository inserts a repository. Returns ErrAlreadyExists if the
// normalized name is taken.
func (s *Queries) CreateRepository(ctx context.Context, name string) (Repository, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Repository{}, fmt.Errorf("create repository: %w", err)
	}

	repo := Repository{Name: name}
	err = s.q.QueryRowContext(ctx, s.dialect.rebind(`
		INSERT INTO repositories (name) VALUES (?)
		RETURNING id
	`), name).Scan(&repo.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Repository{}, fmt.Errorf("create repository %q: %w", name, ErrAlreadyExists)
		}
		return Repository{}, fmt.Errorf("create repository: %w", err)
	}

	return repo, nil
}

// CreateContext inserts a guideline context under a repository.
// Returns ErrNotFound if the repository does not exist and ErrAlreadyExists
// if the repository already has a context with the same normalized name.
func (s *Queries) CreateContext(ctx context.Context, repositoryID int64, name, description string) (Context, error) {
	name, err := normalizeName(name)
	if err != nil {
		return Context{}, fmt.Errorf("create context: %w", err)
	}

	if _, err := s.GetRepository(ctx, repositoryID); err != nil {
		return Context{}, fmt.Errorf("create context: %w", err)
	}

	c := Context{RepositoryID: repositoryID, Name: name, Description: strings.TrimSpace(description)}
	err = s.q.QueryRowContext(ctx, s.dialect.rebind(`
		INSERT INTO guideline_contexts (repository_id, name, description)
		VALUES (?, ?, ?)
		RETURNING id
	`), c.RepositoryID, c.Name, c.Description).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Context{}, fmt.Errorf("create context %q: %w", name, ErrAlreadyExists)
		}
		return Context{}, fmt.Errorf("create context: %w", err)
	}

	return c, nil
}

// DeleteContext removes a context and, by cascade, all of its versions.
func (s *Queries) DeleteContext(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, s.dialect.rebind(`
		DELETE FROM guideline_contexts WHERE id = ?
	`), id)
	if err != nil {
		return fmt.Errorf("delete context: %w", err)
	}
	return expectOneRow(res, "delete context")
}

// InsertVersion appends a version row for a context.
// Returns ErrVersionLimit if the context already holds two versions.
//
// Note: The context referenced by contextID must exist (foreign key constraint).
func (s *Queries) InsertVersion(ctx context.Context, contextID int64, content string) (Version, error) {
	v := Version{ContextID: contextID, Content: content}
	err := s.q.QueryRowContext(ctx, s.dialect.rebind(`
		INSERT INTO guideline_versions (context_id, content)
		VALUES (?, ?)
		RETURNING id
	`), contextID, content).Scan(&v.ID)
	if err != nil {
		if isVersionLimit(err) {
			return Version{}, fmt.Errorf("insert version: %w", ErrVersionLimit)
		}
		return Version{}, fmt.Errorf("insert version: %w", err)
	}
	return v, nil
}

// UpdateVersionContent overwrites the blob of an existing version.
func (s *Queries) UpdateVersionContent(ctx context.Context, id int64, content string) error {
	res, err := s.q.ExecContext(ctx, s.dialect.rebind(`
		UPDATE guideline_versions SET content = ? WHERE id = ?
	`), content, id)
	if err != nil {
		return fmt.Errorf("update version: %w", err)
	}
	return expectOneRow(res, "update version")
}

// DeleteVersion removes one version row.
func (s *Queries) DeleteVersion(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, s.dialect.rebind(`
		DELETE FROM guideline_versions WHERE id = ?
	`), id)
	if err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	return expectOneRow(res, "delete version")
}

func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
