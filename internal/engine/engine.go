package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/guidectx/internal/guideline"
	"github.com/roach88/guidectx/internal/metrics"
	"github.com/roach88/guidectx/internal/store"
)

// Backend is the storage the engine runs on. *store.Store implements it.
type Backend interface {
	store.Versions

	// Atomic runs fn in one transaction, committing only if fn returns nil.
	Atomic(ctx context.Context, fn func(tx store.Versions) error) error
}

var _ Backend = (*store.Store)(nil)

// Engine enforces the current/pending version model for guideline contexts.
//
// Thread-safety: all methods are safe for concurrent use. Mutations on the
// same context are serialized; different contexts proceed in parallel.
type Engine struct {
	backend Backend
	logger  *slog.Logger
	metrics *metrics.Metrics
	ids     OpIDGenerator
	locks   *contextLocks
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records engine outcomes on m. Default: no metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithOpIDGenerator sets the generator for operation ids in log records.
// Default: UUIDv7Generator.
func WithOpIDGenerator(g OpIDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// New creates an Engine over backend.
func New(backend Backend, opts ...Option) *Engine {
	e := &Engine{
		backend: backend,
		logger:  slog.Default(),
		ids:     UUIDv7Generator{},
		locks:   newContextLocks(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// begin starts a logged operation on one context.
func (e *Engine) begin(op string, contextID int64) *slog.Logger {
	return e.logger.With("op", op, "op_id", e.ids.Generate(), "context_id", contextID)
}

// mutate serializes fn against other mutations of contextID and runs it in
// a backend transaction.
func (e *Engine) mutate(ctx context.Context, contextID int64, fn func(tx store.Versions) error) error {
	unlock := e.locks.lock(contextID)
	defer unlock()

	return e.backend.Atomic(ctx, fn)
}

// fail translates err, records the rejection and logs it.
// Rejections are logged at info, storage failures at error.
func (e *Engine) fail(log *slog.Logger, contextID int64, err error) error {
	err = translate(contextID, err)

	if code := guideline.CodeOf(err); code != "" {
		e.metrics.ObserveRejection(string(code))
		log.Info("operation rejected", "code", code, "error", err)
		return err
	}

	log.Error("operation failed", "error", err)
	return err
}

// translate maps storage sentinels onto guideline errors and stamps the
// context id on guideline errors raised by the pure codec helpers.
func translate(contextID int64, err error) error {
	var ge *guideline.Error
	if errors.As(err, &ge) {
		if ge.ContextID == 0 {
			ge.ContextID = contextID
		}
		return err
	}

	switch {
	case errors.Is(err, store.ErrVersionLimit):
		return guideline.NewPendingExistsError(contextID)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("context %d: %w", contextID, err)
}

// lockedVersions locks the context row and returns its versions, oldest first.
func lockedVersions(ctx context.Context, tx store.Versions, contextID int64) ([]store.Version, error) {
	if _, err := tx.LockContext(ctx, contextID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, guideline.NewContextNotFoundError(contextID)
		}
		return nil, err
	}
	return tx.ListVersions(ctx, contextID)
}

// readVersions is lockedVersions for read-only callers outside a transaction.
func (e *Engine) readVersions(ctx context.Context, contextID int64) ([]store.Version, error) {
	if _, err := e.backend.GetContext(ctx, contextID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, guideline.NewContextNotFoundError(contextID)
		}
		return nil, err
	}
	return e.backend.ListVersions(ctx, contextID)
}
