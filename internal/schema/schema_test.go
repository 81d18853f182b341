package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepsAreContiguousThroughTarget(t *testing.T) {
	seen := map[int]bool{}
	for _, s := range mysqlSteps {
		seen[s.Version] = true
	}
	for v := 1; v <= TargetVersion; v++ {
		assert.True(t, seen[v], "missing migration step for version %d", v)
	}
	assert.Len(t, mysqlSteps, TargetVersion)
}

func TestHashForKnownVersionsStable(t *testing.T) {
	h1, ok := HashFor(1)
	require.True(t, ok)
	h1Again, ok := HashFor(1)
	require.True(t, ok)
	assert.Equal(t, h1, h1Again)

	h2, ok := HashFor(2)
	require.True(t, ok)
	assert.NotEqual(t, h1, h2)
}

func TestHashForUnknownVersion(t *testing.T) {
	_, ok := HashFor(999)
	assert.False(t, ok)
}

func TestCanonicalizeDDLIgnoresWhitespaceFormatting(t *testing.T) {
	a := canonicalizeDDL("CREATE TABLE x (\n\tid INT\n)")
	b := canonicalizeDDL("CREATE TABLE x ( id INT )")
	assert.Equal(t, a, b)
}

func TestDataMigrationStepsHaveDataMigrationHook(t *testing.T) {
	for _, s := range mysqlSteps {
		if s.Version == 12 || s.Version == 13 {
			assert.NotNil(t, s.DataMigration, "version %d expected a data migration hook", s.Version)
		}
	}
}
