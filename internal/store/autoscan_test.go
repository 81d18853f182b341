package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TaniGit/gerbera/internal/core"
)

func addTestContainer(t *testing.T, s *Store, path ...string) int {
	t.Helper()
	id, _, err := s.AddContainerChain(path, "", nil, nil)
	require.NoError(t, err)
	return id
}

func TestAddAndGetAutoscanList(t *testing.T) {
	s := newTestStore(t)
	dirID := addTestContainer(t, s, "Watched")

	err := s.AddAutoscan(&core.AutoscanDirectory{
		ObjectID: dirID, ScanMode: core.ScanModeTimed, Level: core.ScanLevelFull,
		Recursive: true, Interval: 5 * time.Minute, LastModified: time.Now().UTC().Truncate(time.Second),
		Persistent: true,
	})
	require.NoError(t, err)

	list, err := s.GetAutoscanList(core.ScanModeTimed)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, dirID, list[0].ObjectID)
	assert.True(t, list[0].Recursive)
	assert.Equal(t, 5*time.Minute, list[0].Interval)
}

func TestCheckOverlappingAutoscansDetectsAncestorConflict(t *testing.T) {
	s := newTestStore(t)
	aID := addTestContainer(t, s, "A")
	bID := addTestContainer(t, s, "A", "B")

	require.NoError(t, s.AddAutoscan(&core.AutoscanDirectory{
		ObjectID: aID, ScanMode: core.ScanModeTimed, Recursive: true,
	}))

	err := s.AddAutoscan(&core.AutoscanDirectory{ObjectID: bID, ScanMode: core.ScanModeTimed, Recursive: false})
	require.Error(t, err)
	var overlapErr *core.OverlapError
	require.ErrorAs(t, err, &overlapErr)
	assert.Contains(t, overlapErr.ConflictingIDs, aID)
}

func TestCheckOverlappingAutoscansAllowsDisjointDirectories(t *testing.T) {
	s := newTestStore(t)
	aID := addTestContainer(t, s, "A")
	bID := addTestContainer(t, s, "B")

	require.NoError(t, s.AddAutoscan(&core.AutoscanDirectory{ObjectID: aID, ScanMode: core.ScanModeTimed, Recursive: true}))
	require.NoError(t, s.AddAutoscan(&core.AutoscanDirectory{ObjectID: bID, ScanMode: core.ScanModeTimed, Recursive: true}))
}

func TestRemoveObjectReattachesPersistentAutoscanToSurvivingAncestor(t *testing.T) {
	s := newTestStore(t)
	aID := addTestContainer(t, s, "A")
	bID := addTestContainer(t, s, "A", "B")

	require.NoError(t, s.AddAutoscan(&core.AutoscanDirectory{
		ObjectID: bID, ScanMode: core.ScanModeInotify, Persistent: true,
	}))

	_, err := s.RemoveObject(bID, true)
	require.NoError(t, err)

	list, err := s.GetAutoscanList(core.ScanModeInotify)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, aID, list[0].ObjectID)
}

func TestRemoveObjectDropsNonPersistentAutoscan(t *testing.T) {
	s := newTestStore(t)
	bID := addTestContainer(t, s, "A", "B")

	require.NoError(t, s.AddAutoscan(&core.AutoscanDirectory{
		ObjectID: bID, ScanMode: core.ScanModeInotify, Persistent: false,
	}))

	_, err := s.RemoveObject(bID, true)
	require.NoError(t, err)

	list, err := s.GetAutoscanList(core.ScanModeInotify)
	require.NoError(t, err)
	assert.Empty(t, list)
}
