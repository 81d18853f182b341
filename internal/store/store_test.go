package store

import (
	"context"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/TaniGit/gerbera/internal/config"
	dialectmysql "github.com/TaniGit/gerbera/internal/dialect/mysql"
	"github.com/TaniGit/gerbera/internal/driver/mysqldriver"
	"github.com/TaniGit/gerbera/internal/mimeiface"
)

// newTestStore spins up a throwaway MySQL container, runs the store's
// own migrations against it, and returns a ready Store. Every test
// using it gets its own database, so tests may run in parallel.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("cds"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err)

	drv, err := mysqldriver.Open(ctx, mysqldriver.Options{DSN: dsn, ConnectTimeout: 30 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = drv.Close() })

	cfg := config.Default()
	dial := dialectmysql.New(cfg.ResourceAttributes())
	mime := mimeiface.NewExtensionTable(nil)

	s := New(dial, drv, cfg, mime, nil)
	require.NoError(t, s.Init())
	return s
}
