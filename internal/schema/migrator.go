package schema

import (
	"fmt"

	"github.com/TaniGit/gerbera/internal/core"
)

// Migrator drives a database from whatever version it currently
// stores up to TargetVersion, one transactional step at a time.
type Migrator struct {
	driverExec ExecerTx
	steps      []Step
}

// ExecerTx is the driver.Driver surface a migrator needs: each step
// runs inside its own named transaction so a failure midway through a
// step's statements never leaves the schema half-migrated. Satisfied
// directly by driver.Driver.
type ExecerTx interface {
	Execer
	Begin(name string) error
	Commit(name string) error
	Rollback(name string) error
}

// NewMigrator builds a Migrator for the given dialect's step ladder.
func NewMigrator(d ExecerTx, dialectSteps []Step) *Migrator {
	return &Migrator{driverExec: d, steps: dialectSteps}
}


// CurrentVersion reads the stored schema version, returning 0 if
// mt_internal_setting doesn't exist yet (a brand-new database).
func (m *Migrator) CurrentVersion() (int, error) {
	res, err := m.driverExec.Select(`SELECT value FROM mt_internal_setting WHERE ` + "`key`" + ` = 'db_version'`)
	if err != nil {
		// Any Select error reads as "not yet initialized" (version 0);
		// a missing table is not told apart from other failures here.
		return 0, nil
	}
	defer res.Close()

	row, ok := res.Next()
	if !ok {
		return 0, nil
	}
	val, _ := row.Col(0)
	version := 0
	_, scanErr := fmt.Sscanf(val, "%d", &version)
	if scanErr != nil {
		return 0, fmt.Errorf("parse stored schema version %q: %w", val, scanErr)
	}
	return version, nil
}

// VerifyHash checks the stored version's hash against what this
// binary expects for that version, returning a *core.SchemaMismatchError
// if they disagree. Only meaningful once at least one step has run
// (version 0 has nothing to check).
func (m *Migrator) VerifyHash(version int, storedHash uint32) error {
	expected, ok := HashFor(version)
	if !ok {
		return core.NotFoundf("no known schema hash for version %d", version)
	}
	if expected != storedHash {
		return &core.SchemaMismatchError{Version: version, Stored: storedHash, Expected: expected}
	}
	return nil
}

// StoredHash reads the persisted schema hash, returning ok=false if
// mt_internal_setting carries no db_hash row yet (a database migrated
// before this binary started recording it, or one not yet initialized).
func (m *Migrator) StoredHash() (hash uint32, ok bool, err error) {
	res, err := m.driverExec.Select(`SELECT value FROM mt_internal_setting WHERE ` + "`key`" + ` = 'db_hash'`)
	if err != nil {
		return 0, false, nil
	}
	defer res.Close()

	row, present := res.Next()
	if !present {
		return 0, false, nil
	}
	val, _ := row.Col(0)
	var parsed uint32
	if _, scanErr := fmt.Sscanf(val, "%d", &parsed); scanErr != nil {
		return 0, false, fmt.Errorf("parse stored schema hash %q: %w", val, scanErr)
	}
	return parsed, true, nil
}

// VerifyCurrent checks the database's stored (version, hash) pair
// against what this binary expects, the startup check spec step 3
// describes. A database with no stored hash yet (pre-hash-tracking) is
// treated as trusted and skipped rather than rejected.
func (m *Migrator) VerifyCurrent() error {
	current, err := m.CurrentVersion()
	if err != nil {
		return fmt.Errorf("read current schema version: %w", err)
	}
	if current == 0 {
		return nil
	}
	stored, ok, err := m.StoredHash()
	if err != nil {
		return fmt.Errorf("read stored schema hash: %w", err)
	}
	if !ok {
		return nil
	}
	return m.VerifyHash(current, stored)
}

// MigrateToTarget brings the database to TargetVersion. A database
// with no recorded version is initialized directly from the
// consolidated TargetVersion DDL (resourceAttrs names the resource
// table's attribute columns, sourced from the Config collaborator);
// an existing database instead runs each pending step in order, from
// its current version up to TargetVersion. Each step commits its own
// transaction before the next begins, so a crash between steps resumes
// cleanly at CurrentVersion()+1.
func (m *Migrator) MigrateToTarget(resourceAttrs []string) error {
	current, err := m.CurrentVersion()
	if err != nil {
		return fmt.Errorf("read current schema version: %w", err)
	}

	if current == 0 {
		return m.initializeFresh(resourceAttrs)
	}

	for _, step := range m.steps {
		if step.Version <= current {
			continue
		}
		if err := m.runStep(step); err != nil {
			return fmt.Errorf("%w: step %d (%s): %w", core.ErrMigrationFailed, step.Version, step.Description, err)
		}
	}
	return nil
}

func (m *Migrator) initializeFresh(resourceAttrs []string) error {
	const txName = "schema_init_fresh"
	if err := m.driverExec.Begin(txName); err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	for _, stmt := range freshSchemaStatements(resourceAttrs) {
		if _, err := m.driverExec.Exec(stmt, false); err != nil {
			rbErr := m.driverExec.Rollback(txName)
			return fmt.Errorf("%w: fresh init: exec %q: %w (rollback: %v)",
				core.ErrMigrationFailed, truncate(stmt, 80), err, rbErr)
		}
	}

	if err := m.recordVersionAndHash(TargetVersion); err != nil {
		rbErr := m.driverExec.Rollback(txName)
		return fmt.Errorf("%w: fresh init: record version: %w (rollback: %v)", core.ErrMigrationFailed, err, rbErr)
	}

	if err := m.driverExec.Commit(txName); err != nil {
		return fmt.Errorf("%w: fresh init: commit: %w", core.ErrMigrationFailed, err)
	}
	return nil
}

func (m *Migrator) runStep(step Step) error {
	txName := fmt.Sprintf("schema_migrate_v%d", step.Version)
	if err := m.driverExec.Begin(txName); err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := m.applyStep(step); err != nil {
		if rbErr := m.driverExec.Rollback(txName); rbErr != nil {
			return fmt.Errorf("apply failed: %w; rollback also failed: %w", err, rbErr)
		}
		return err
	}

	if err := m.driverExec.Commit(txName); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (m *Migrator) applyStep(step Step) error {
	for _, stmt := range step.Statements {
		if _, err := m.driverExec.Exec(stmt, false); err != nil {
			return fmt.Errorf("exec %q: %w", truncate(stmt, 80), err)
		}
	}

	if step.DataMigration != nil {
		if err := step.DataMigration(m.driverExec); err != nil {
			return fmt.Errorf("data migration: %w", err)
		}
	}

	if err := m.recordVersionAndHash(step.Version); err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return nil
}

func (m *Migrator) recordVersionAndHash(version int) error {
	stmt := fmt.Sprintf(
		"REPLACE INTO mt_internal_setting (`key`, `value`) VALUES ('db_version', '%d')",
		version,
	)
	if _, err := m.driverExec.Exec(stmt, false); err != nil {
		return err
	}

	hash, ok := HashFor(version)
	if !ok {
		return fmt.Errorf("no known hash for version %d", version)
	}
	hashStmt := fmt.Sprintf(
		"REPLACE INTO mt_internal_setting (`key`, `value`) VALUES ('db_hash', '%d')",
		hash,
	)
	_, err := m.driverExec.Exec(hashStmt, false)
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
