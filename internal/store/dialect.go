package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// dialect captures the SQL differences between the SQLite drivers and Postgres.
type dialect struct {
	sqlite bool
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite3, DriverSQLite:
		return dialect{sqlite: true}, nil
	case DriverPostgres:
		return dialect{sqlite: false}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d dialect) rebind(query string) string {
	if d.sqlite {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// forUpdate is appended to a row lookup that must hold a write lock.
// SQLite has no row locks; its single connection already serializes writers.
func (d dialect) forUpdate() string {
	if d.sqlite {
		return ""
	}
	return " FOR UPDATE"
}

// postgresSchema is applied statement by statement; the trigger function
// body contains semicolons, so the statements cannot be split naively.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS repositories (
		id   BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS guideline_contexts (
		id            BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		repository_id BIGINT NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		UNIQUE (repository_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS guideline_versions (
		id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		context_id BIGINT NOT NULL REFERENCES guideline_contexts(id) ON DELETE CASCADE,
		content    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_guideline_versions_context
		ON guideline_versions(context_id, id)`,
	`CREATE OR REPLACE FUNCTION guideline_versions_limit() RETURNS trigger AS $$
	BEGIN
		IF (SELECT COUNT(*) FROM guideline_versions WHERE context_id = NEW.context_id) >= 2 THEN
			RAISE EXCEPTION 'guideline version limit reached';
		END IF;
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS guideline_versions_limit ON guideline_versions`,
	`CREATE TRIGGER guideline_versions_limit
		BEFORE INSERT ON guideline_versions
		FOR EACH ROW EXECUTE FUNCTION guideline_versions_limit()`,
}

func applyPostgresSchema(db *sql.DB) error {
	ctx := context.Background()
	for _, stmt := range postgresSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports a UNIQUE constraint failure on any driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isVersionLimit reports a rejection by the guideline_versions_limit trigger.
func isVersionLimit(err error) bool {
	return strings.Contains(err.Error(), ErrVersionLimit.Error())
}
