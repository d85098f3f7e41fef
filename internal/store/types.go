package store

import (
	"context"
	"errors"
)

// Sentinel errors returned by store operations.
var (
	// ErrNotFound is returned when a repository, context or version row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a repository or context name is taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrVersionLimit is returned when a context already holds two versions.
	ErrVersionLimit = errors.New("guideline version limit reached")

	// ErrInvalidName is returned for blank repository or context names.
	ErrInvalidName = errors.New("name cannot be empty")
)

// Repository is a code repository that owns guideline contexts.
type Repository struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Context is a named group of guidelines within a repository.
type Context struct {
	ID           int64  `json:"id"`
	RepositoryID int64  `json:"repository_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
}

// Version is one serialized guideline blob for a context.
type Version struct {
	ID        int64  `json:"id"`
	ContextID int64  `json:"context_id"`
	Content   string `json:"content"`
}

// Versions is the version-row surface the versioning engine needs.
// Implemented by *Queries, both directly on a Store and inside Atomic.
type Versions interface {
	GetContext(ctx context.Context, id int64) (Context, error)
	LockContext(ctx context.Context, id int64) (Context, error)
	ListVersions(ctx context.Context, contextID int64) ([]Version, error)
	ListAllVersions(ctx context.Context) ([]Version, error)
	ListPendingContexts(ctx context.Context) ([]Context, error)
	InsertVersion(ctx context.Context, contextID int64, content string) (Version, error)
	UpdateVersionContent(ctx context.Context, id int64, content string) error
	DeleteVersion(ctx context.Context, id int64) error
}

var _ Versions = (*Queries)(nil)
