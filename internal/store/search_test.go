package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TaniGit/gerbera/internal/core"
	"github.com/TaniGit/gerbera/internal/search"
)

func TestSearchFiltersByMetadataProperty(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.AddObject(&core.Object{
		ParentID: core.RootID, Type: core.TypeItem, UpnpClass: "object.item.audioItem",
		Title: "Song A", LocTag: core.LocationVirtual,
		Metadata: map[string]string{"upnp:artist": "Wanted Artist"},
	})
	require.NoError(t, err)
	_, _, err = s.AddObject(&core.Object{
		ParentID: core.RootID, Type: core.TypeItem, UpnpClass: "object.item.audioItem",
		Title: "Song B", LocTag: core.LocationVirtual,
		Metadata: map[string]string{"upnp:artist": "Other Artist"},
	})
	require.NoError(t, err)

	results, err := s.Search(core.RootID, search.Comparison{
		Property: "upnp:artist", Op: search.OpEqual, Value: "Wanted Artist",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Song A", results[0].Title)
}

func TestSearchOnDynamicContainerReturnsNil(t *testing.T) {
	s := newTestStore(t)
	results, err := s.Search(-1, search.Comparison{Property: "dc:title", Op: search.OpEqual, Value: "x"})
	require.NoError(t, err)
	assert.Nil(t, results)
}
