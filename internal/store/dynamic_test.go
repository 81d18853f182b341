package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TaniGit/gerbera/internal/core"
)

func TestRegisterAndLoadDynamicContainer(t *testing.T) {
	s := newTestStore(t)

	err := s.RegisterDynamicContainer(-1, core.Object{
		ID: -1, ParentID: core.RootID, Type: core.TypeContainer,
		UpnpClass: "object.container.searchResult", Title: "Saved Search",
		LocTag: core.LocationVirtual,
	})
	require.NoError(t, err)

	loaded, err := s.LoadObject(-1)
	require.NoError(t, err)
	assert.Equal(t, "Saved Search", loaded.Title)

	s.UnregisterDynamicContainer(-1)
	_, err = s.LoadObject(-1)
	assert.True(t, core.IsNotFound(err))
}

func TestRegisterDynamicContainerRejectsNonNegativeID(t *testing.T) {
	s := newTestStore(t)
	err := s.RegisterDynamicContainer(1, core.Object{ID: 1})
	assert.Error(t, err)
}
