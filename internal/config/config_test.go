package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := Default()
	assert.True(t, c.TransactionsEnabled())
	assert.NotEmpty(t, c.ResourceAttributes())
	assert.True(t, c.AutoscanOverlapCheck())
	assert.Equal(t, int64(30), c.BusyTimeout().Milliseconds()/1000)
}

func TestLoadFillsDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[store]
transactions_enabled = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.False(t, c.TransactionsEnabled())
	assert.NotEmpty(t, c.ResourceAttributes(), "missing resource_attributes should fall back to defaults")
	assert.Equal(t, int64(30), c.BusyTimeout().Milliseconds()/1000)
}

func TestLoadHonorsExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[store]
transactions_enabled = true
resource_attributes = ["protocol_info", "size"]
autoscan_overlap_check = false
busy_timeout_seconds = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"protocol_info", "size"}, c.ResourceAttributes())
	assert.False(t, c.AutoscanOverlapCheck())
	assert.Equal(t, int64(5), c.BusyTimeout().Milliseconds()/1000)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	require.Error(t, err)
}
