// Package mysqldriver is the database/sql-backed implementation of
// driver.Driver, talking to MySQL through
// github.com/go-sql-driver/mysql. It is the one concrete driver this
// module ships; anything else implementing driver.Driver plugs into
// the same persistence core unmodified.
package mysqldriver

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql"

	"github.com/TaniGit/gerbera/internal/core"
	"github.com/TaniGit/gerbera/internal/driver"
	"github.com/TaniGit/gerbera/internal/sqlrow"
)

// Options configures connection establishment.
type Options struct {
	DSN string
	// ConnectTimeout bounds the whole backoff-retried connect sequence.
	// Zero means 30s.
	ConnectTimeout time.Duration
}

// Driver is the MySQL driver.Driver implementation. A single *sql.DB
// connection pool backs it; the persistence core is responsible for
// serializing calls into it (nothing here is safe for concurrent
// transactions against the same logical unit of work).
type Driver struct {
	db *sql.DB

	mu  sync.Mutex
	txs map[string]*sql.Tx
}

// Open establishes a connection, retrying the initial ping with
// bounded exponential backoff so a database that is still starting up
// (common in container-orchestrated deployments) doesn't fail startup
// outright. Nothing past this point is retried: once open, a failed
// statement is the core's problem to surface, not this driver's to
// paper over.
func Open(ctx context.Context, opts Options) (*Driver, error) {
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	db, err := sql.Open("mysql", opts.DSN)
	if err != nil {
		return nil, core.DriverFaultf("open mysql dsn: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = timeout
	boCtx := backoff.WithContext(bo, ctx)

	pingErr := backoff.Retry(func() error {
		return db.PingContext(ctx)
	}, boCtx)
	if pingErr != nil {
		_ = db.Close()
		return nil, core.DriverFaultf("ping mysql after retries: %w", pingErr)
	}

	return &Driver{db: db, txs: make(map[string]*sql.Tx)}, nil
}

// Close releases the connection pool.
func (d *Driver) Close() error {
	return d.db.Close()
}

func (d *Driver) currentExecer() execer {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, tx := range d.txs {
		return tx
	}
	return d.db
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
}

// Exec runs a non-SELECT statement against the innermost open
// transaction, or directly against the pool if none is open.
func (d *Driver) Exec(sqlText string, wantLastID bool) (driver.ExecResult, error) {
	res, err := d.currentExecer().Exec(sqlText)
	if err != nil {
		return driver.ExecResult{}, core.DriverFaultf("exec: %w", err)
	}

	out := driver.ExecResult{}
	if n, rerr := res.RowsAffected(); rerr == nil {
		out.RowsAffected = n
	}
	if wantLastID {
		id, lerr := res.LastInsertId()
		if lerr != nil {
			return driver.ExecResult{}, core.DriverFaultf("last insert id: %w", lerr)
		}
		out.LastInsertID = id
	}
	return out, nil
}

// Select runs a query and buffers its result set into memory before
// returning, so the caller never holds a live *sql.Rows across a
// recursive-mutex boundary.
func (d *Driver) Select(sqlText string) (sqlrow.Result, error) {
	rows, err := d.currentExecer().Query(sqlText)
	if err != nil {
		return nil, core.DriverFaultf("select: %w", err)
	}
	res, err := sqlrow.NewDriverResult(rows)
	if err != nil {
		return nil, core.DriverFaultf("buffer result: %w", err)
	}
	return res, nil
}

// Begin opens name as a transaction if none is open yet, or as a
// savepoint nested inside the current transaction otherwise.
func (d *Driver) Begin(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.txs) == 0 {
		tx, err := d.db.Begin()
		if err != nil {
			return core.DriverFaultf("begin %q: %w", name, err)
		}
		d.txs[name] = tx
		return nil
	}

	tx := d.anyTxLocked()
	if _, err := tx.Exec(fmt.Sprintf("SAVEPOINT `%s`", name)); err != nil {
		return core.DriverFaultf("savepoint %q: %w", name, err)
	}
	d.txs[name] = tx
	return nil
}

// Commit releases the named transaction or savepoint.
func (d *Driver) Commit(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, ok := d.txs[name]
	if !ok {
		return core.DriverFaultf("commit %q: no such transaction", name)
	}
	delete(d.txs, name)

	if len(d.txs) == 0 {
		if err := tx.Commit(); err != nil {
			return core.DriverFaultf("commit %q: %w", name, err)
		}
		return nil
	}

	if _, err := tx.Exec(fmt.Sprintf("RELEASE SAVEPOINT `%s`", name)); err != nil {
		return core.DriverFaultf("release savepoint %q: %w", name, err)
	}
	return nil
}

// Rollback aborts the named transaction or savepoint.
func (d *Driver) Rollback(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, ok := d.txs[name]
	if !ok {
		return core.DriverFaultf("rollback %q: no such transaction", name)
	}
	delete(d.txs, name)

	if len(d.txs) == 0 {
		if err := tx.Rollback(); err != nil {
			return core.DriverFaultf("rollback %q: %w", name, err)
		}
		return nil
	}

	if _, err := tx.Exec(fmt.Sprintf("ROLLBACK TO SAVEPOINT `%s`", name)); err != nil {
		return core.DriverFaultf("rollback to savepoint %q: %w", name, err)
	}
	return nil
}

// anyTxLocked returns an arbitrary live transaction. Callers must hold
// d.mu. All entries in d.txs alias the same *sql.Tx once one is open;
// savepoints share the connection their transaction opened on.
func (d *Driver) anyTxLocked() *sql.Tx {
	for _, tx := range d.txs {
		return tx
	}
	return nil
}
