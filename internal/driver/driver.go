// Package driver defines the narrow seam between the persistence core
// and a concrete SQL connection. The core never imports database/sql
// directly; it drives everything through this interface so the same
// object-tree and migration logic can sit on top of any backend that
// implements it.
package driver

import (
	"github.com/TaniGit/gerbera/internal/sqlrow"
)

// ExecResult reports the effect of a statement that was not a SELECT.
type ExecResult struct {
	LastInsertID int64
	RowsAffected int64
}

// Driver executes statements against one SQL connection. Every method
// may block; callers are expected to serialize access themselves (the
// persistence core does this with a single recursive mutex, per its
// single-writer design).
type Driver interface {
	// Exec runs a non-SELECT statement. When wantLastID is true the
	// driver must populate ExecResult.LastInsertID; callers that don't
	// need it pass false so drivers that can't cheaply report it
	// (batched statements) aren't forced to.
	Exec(sqlText string, wantLastID bool) (ExecResult, error)

	// Select runs a query and buffers its result set.
	Select(sqlText string) (sqlrow.Result, error)

	// Begin opens a named savepoint-capable transaction. Nested calls
	// with different names must nest as savepoints; the core relies on
	// this to let an outer transaction wrap several inner units of
	// work without losing atomicity if an inner one rolls back.
	Begin(name string) error

	// Commit releases the named transaction or savepoint.
	Commit(name string) error

	// Rollback aborts the named transaction or savepoint.
	Rollback(name string) error

	// Close releases the underlying connection.
	Close() error
}
