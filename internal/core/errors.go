package core

import (
	"errors"
	"fmt"
)

// Sentinel error kinds the persistence layer can raise. Callers use
// errors.Is against these; wrapped errors carry additional context via
// fmt.Errorf("...: %w", ...).
var (
	// ErrNotFound is returned when a lookup by id, path, or service id
	// yields no row. Recoverable by the caller.
	ErrNotFound = errors.New("core: not found")

	// ErrSchemaMismatch means the stored schema version's hash disagrees
	// with the hash the running binary carries for that version. Fatal;
	// the store refuses to start.
	ErrSchemaMismatch = errors.New("core: schema version hash mismatch")

	// ErrConstraintViolation means a write would break a tree invariant:
	// a missing parent, a duplicate title where uniqueness was required,
	// or an invalid reference target.
	ErrConstraintViolation = errors.New("core: constraint violation")

	// ErrOverlap means two autoscan directories' subtrees conflict.
	ErrOverlap = errors.New("core: overlapping autoscan directories")

	// ErrDriverFault means the driver reported an operation-level
	// failure (connection loss, statement timeout).
	ErrDriverFault = errors.New("core: driver fault")

	// ErrMigrationFailed means a schema migration step could not
	// complete. Fatal.
	ErrMigrationFailed = errors.New("core: migration failed")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ConstraintViolationf wraps ErrConstraintViolation with a formatted message.
func ConstraintViolationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConstraintViolation)...)
}

// DriverFaultf wraps ErrDriverFault with a formatted message.
func DriverFaultf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrDriverFault)...)
}

// OverlapError reports an autoscan overlap, naming the conflicting
// existing directory's object id so the caller can report it.
type OverlapError struct {
	NewObjectID      int
	ConflictingIDs   []int
	ConflictingPaths []string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("core: autoscan on object %d overlaps with %v", e.NewObjectID, e.ConflictingIDs)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// SchemaMismatchError names the version whose hash disagreed.
type SchemaMismatchError struct {
	Version  int
	Stored   uint32
	Expected uint32
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("core: schema version %d hash mismatch (stored %08x, binary carries %08x)", e.Version, e.Stored, e.Expected)
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }
