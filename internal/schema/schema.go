// Package schema owns the on-disk schema's version ladder: the DDL for
// every version from 1 up to TargetVersion, a per-version hash used to
// detect a stored schema that has drifted from what this binary
// expects, and the Migrator that walks a database up to the target
// version one transactional step at a time.
package schema

import (
	"hash/fnv"

	"github.com/TaniGit/gerbera/internal/dialect"
	"github.com/TaniGit/gerbera/internal/driver"
	"github.com/TaniGit/gerbera/internal/sqlrow"
)

// TargetVersion is the schema version this binary expects. A fresh
// database is initialized directly at this version; an existing one
// is migrated up to it step by step.
const TargetVersion = 13

// Step is one version-to-version migration: the DDL/DML to run while
// moving from Version-1 to Version, plus an optional data-migration
// hook for steps that can't be expressed as plain DDL (the schema
// ladder's two special cases, see mysql_steps.go).
type Step struct {
	Version     int
	Description string
	Statements  []string
	// DataMigration runs inside the same transaction as Statements,
	// after they've been applied, for steps that must rewrite existing
	// row data rather than just alter structure. Nil for pure-DDL steps.
	DataMigration func(exec Execer) error
}

// Execer is the narrow subset of driver.Driver a data migration hook
// needs: run a statement, read back rows.
type Execer interface {
	Exec(sqlText string, wantLastID bool) (driver.ExecResult, error)
	Select(sqlText string) (sqlrow.Result, error)
}

// versionHashes holds the FNV-1a 32-bit hash of each version's
// canonicalized (whitespace-collapsed, case preserved) DDL text,
// computed once at package init from the steps table itself so the
// hash can never silently drift from the statements that produce it.
var versionHashes = computeVersionHashes(mysqlSteps)

// HashFor returns the expected hash for a schema version, or false if
// no such version is known to this binary.
func HashFor(version int) (uint32, bool) {
	h, ok := versionHashes[version]
	return h, ok
}

func computeVersionHashes(steps []Step) map[int]uint32 {
	out := make(map[int]uint32, len(steps))
	for _, s := range steps {
		out[s.Version] = hashStatements(s.Statements)
	}
	return out
}

func hashStatements(statements []string) uint32 {
	h := fnv.New32a()
	for _, stmt := range statements {
		_, _ = h.Write([]byte(canonicalizeDDL(stmt)))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum32()
}

// canonicalizeDDL collapses whitespace runs to single spaces and trims
// ends, so formatting-only edits to a step's DDL (re-indenting,
// wrapping a line) don't change its hash, while an actual column or
// constraint change does.
func canonicalizeDDL(stmt string) string {
	var b []byte
	inSpace := false
	for i := 0; i < len(stmt); i++ {
		c := stmt[i]
		isSpace := c == ' ' || c == '\t' || c == '\n' || c == '\r'
		if isSpace {
			if !inSpace && len(b) > 0 {
				b = append(b, ' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b = append(b, c)
	}
	for len(b) > 0 && b[len(b)-1] == ' ' {
		b = b[:len(b)-1]
	}
	return string(b)
}

// StepsFor returns the migration ladder for a dialect. Only MySQL is
// wired today; other dialect types return nil.
func StepsFor(t dialect.Type) []Step {
	switch t {
	case dialect.MySQL:
		return mysqlSteps
	default:
		return nil
	}
}
