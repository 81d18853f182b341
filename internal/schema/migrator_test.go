package schema

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TaniGit/gerbera/internal/core"
	"github.com/TaniGit/gerbera/internal/driver"
	"github.com/TaniGit/gerbera/internal/sqlrow"
)

// fakeDriver is an in-memory stand-in for a driver.Driver good enough
// to drive the migrator's version bookkeeping and transaction
// boundaries without a real database. It doesn't execute DDL; it just
// records what was asked of it.
type fakeDriver struct {
	settings   map[string]string
	execLog    []string
	txDepth    int
	failOnExec string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{settings: map[string]string{}}
}

func (f *fakeDriver) Exec(sqlText string, wantLastID bool) (driver.ExecResult, error) {
	f.execLog = append(f.execLog, sqlText)
	if f.failOnExec != "" && strings.Contains(sqlText, f.failOnExec) {
		return driver.ExecResult{}, fmt.Errorf("simulated failure")
	}
	if strings.HasPrefix(sqlText, "REPLACE INTO mt_internal_setting") {
		var key, value string
		_, _ = fmt.Sscanf(sqlText, "REPLACE INTO mt_internal_setting (`key`, `value`) VALUES ('%s", &key)
		key = strings.TrimSuffix(key, "',")
		idx := strings.LastIndex(sqlText, "'")
		prefix := sqlText[:idx]
		valStart := strings.LastIndex(prefix, "'")
		value = sqlText[valStart+1 : idx]
		f.settings[key] = value
	}
	return driver.ExecResult{}, nil
}

func (f *fakeDriver) Select(sqlText string) (sqlrow.Result, error) {
	if strings.Contains(sqlText, "mt_internal_setting") {
		key := "db_version"
		if strings.Contains(sqlText, "db_hash") {
			key = "db_hash"
		}
		v, ok := f.settings[key]
		if !ok {
			return nil, fmt.Errorf("no such table")
		}
		return &fakeResult{rows: [][]string{{v}}}, nil
	}
	return &fakeResult{}, nil
}

func (f *fakeDriver) Begin(name string) error    { f.txDepth++; return nil }
func (f *fakeDriver) Commit(name string) error   { f.txDepth--; return nil }
func (f *fakeDriver) Rollback(name string) error { f.txDepth--; return nil }
func (f *fakeDriver) Close() error               { return nil }

type fakeResult struct {
	rows   [][]string
	cursor int
}

func (r *fakeResult) Next() (sqlrow.Row, bool) {
	if r.cursor >= len(r.rows) {
		return nil, false
	}
	row := fakeRow(r.rows[r.cursor])
	r.cursor++
	return row, true
}
func (r *fakeResult) NumRows() uint64 { return uint64(len(r.rows)) }
func (r *fakeResult) Close() error    { return nil }

type fakeRow []string

func (r fakeRow) Col(index int) (string, bool) {
	if index < 0 || index >= len(r) {
		return "", false
	}
	return r[index], true
}

func TestMigrateToTargetFromFresh(t *testing.T) {
	fd := newFakeDriver()
	m := NewMigrator(fd, mysqlSteps)

	current, err := m.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 0, current)

	require.NoError(t, m.MigrateToTarget([]string{"protocol_info", "size"}))

	final, err := m.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, TargetVersion, final)
}

func TestMigrateToTargetResumesFromCurrentVersion(t *testing.T) {
	fd := newFakeDriver()
	fd.settings["db_version"] = "11"
	m := NewMigrator(fd, mysqlSteps)

	require.NoError(t, m.MigrateToTarget([]string{"protocol_info", "size"}))

	ranV1 := false
	for _, stmt := range fd.execLog {
		if strings.Contains(stmt, "CREATE TABLE mt_cds_object") {
			ranV1 = true
		}
	}
	assert.False(t, ranV1, "step 1 should not re-run when already past it")

	final, err := m.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, TargetVersion, final)
}

func TestMigrateToTargetRollsBackFailedStep(t *testing.T) {
	fd := newFakeDriver()
	fd.settings["db_version"] = "1"
	fd.failOnExec = "mime_type"
	m := NewMigrator(fd, mysqlSteps)

	err := m.MigrateToTarget([]string{"protocol_info", "size"})
	require.Error(t, err)

	current, verr := m.CurrentVersion()
	require.NoError(t, verr)
	assert.Equal(t, 2, current, "step 2 commits; the failed step 3 must not advance the recorded version")
}

func TestMigrateToTargetFreshInitFailureLeavesVersionUnrecorded(t *testing.T) {
	fd := newFakeDriver()
	fd.failOnExec = "grb_cds_resource"
	m := NewMigrator(fd, mysqlSteps)

	err := m.MigrateToTarget([]string{"protocol_info", "size"})
	require.Error(t, err)

	_, ok := fd.settings["db_version"]
	assert.False(t, ok, "failed fresh init must not record a version")
}

func TestVerifyHashDetectsMismatch(t *testing.T) {
	fd := newFakeDriver()
	m := NewMigrator(fd, mysqlSteps)

	err := m.VerifyHash(1, 0xDEADBEEF)
	require.Error(t, err)

	expected, _ := HashFor(1)
	assert.NoError(t, m.VerifyHash(1, expected))
}

func TestVerifyCurrentPassesAfterFreshInit(t *testing.T) {
	fd := newFakeDriver()
	m := NewMigrator(fd, mysqlSteps)

	require.NoError(t, m.MigrateToTarget([]string{"protocol_info", "size"}))
	assert.NoError(t, m.VerifyCurrent())
}

func TestVerifyCurrentDetectsTamperedHash(t *testing.T) {
	fd := newFakeDriver()
	m := NewMigrator(fd, mysqlSteps)
	require.NoError(t, m.MigrateToTarget([]string{"protocol_info", "size"}))

	fd.settings["db_hash"] = "1"
	err := m.VerifyCurrent()
	require.Error(t, err)
	var mismatch *core.SchemaMismatchError
	assert.True(t, errors.As(err, &mismatch))
}

func TestVerifyCurrentSkipsWhenNoHashRecorded(t *testing.T) {
	fd := newFakeDriver()
	fd.settings["db_version"] = "5"
	m := NewMigrator(fd, mysqlSteps)

	assert.NoError(t, m.VerifyCurrent())
}
