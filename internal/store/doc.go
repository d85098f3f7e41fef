// Package store provides durable storage for guideline contexts and their
// text versions.
//
// Tables:
//   - repositories: named code repositories
//   - guideline_contexts: named guideline groups scoped to a repository
//   - guideline_versions: one text blob per version, at most two per context
//
// # Version Rows
//
// Rows for one context are always read ORDER BY id ASC. The lower id is the
// current (published) version and the higher id, if any, is the pending
// version. The guideline_versions_limit trigger rejects a third row per
// context, so the two-version rule holds even across processes; the insert
// fails with ErrVersionLimit.
//
// # Drivers
//
//   - sqlite3: github.com/mattn/go-sqlite3 (default)
//   - sqlite: modernc.org/sqlite, for cgo-free builds
//   - pgx: github.com/jackc/pgx/v5 against Postgres
//
// SQLite databases are configured with:
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity (context deletes cascade)
//
// Multi-step writes go through Store.Atomic, which runs a function against a
// transaction-bound Queries value.
package store
