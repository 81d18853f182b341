package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TaniGit/gerbera/internal/core"
)

func TestAddAndLoadObject(t *testing.T) {
	s := newTestStore(t)

	id, changed, err := s.AddObject(&core.Object{
		ParentID:  core.RootID,
		Type:      core.TypeItem,
		UpnpClass: "object.item.audioItem.musicTrack",
		Title:     "Track One",
		Location:  "/music/track1.flac",
		LocTag:    core.LocationReal,
		MimeType:  "audio/flac",
		Metadata:  map[string]string{"dc:title": "Track One", "upnp:artist": "Test Artist"},
		Resources: []core.Resource{{Attrs: map[string]string{"size": "1024", "duration": "0:03:00"}}},
	})
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Contains(t, changed.UpdatedIDs, core.RootID)

	loaded, err := s.LoadObject(id)
	require.NoError(t, err)
	assert.Equal(t, "Track One", loaded.Title)
	assert.Equal(t, core.LocationReal, loaded.LocTag)
	assert.Equal(t, "/music/track1.flac", loaded.Location)
	assert.Equal(t, "Test Artist", loaded.Metadata["upnp:artist"])
	require.Len(t, loaded.Resources, 1)
	assert.Equal(t, "1024", loaded.Resources[0].Attrs["size"])
}

func TestAddObjectWithMissingRefIDIsNilled(t *testing.T) {
	s := newTestStore(t)

	bogus := 999999
	id, _, err := s.AddObject(&core.Object{
		ParentID:  core.RootID,
		Type:      core.TypeItem,
		UpnpClass: "object.item",
		Title:     "Alias",
		LocTag:    core.LocationVirtual,
		RefID:     &bogus,
	})
	require.NoError(t, err)

	loaded, err := s.LoadObject(id)
	require.NoError(t, err)
	assert.Nil(t, loaded.RefID)
}

func TestRefIDAliasInheritsTargetLocationAndClass(t *testing.T) {
	s := newTestStore(t)

	realID, _, err := s.AddObject(&core.Object{
		ParentID:  core.RootID,
		Type:      core.TypeItem,
		UpnpClass: "object.item.videoItem",
		Title:     "Movie",
		Location:  "/video/movie.mkv",
		LocTag:    core.LocationReal,
		MimeType:  "video/x-matroska",
	})
	require.NoError(t, err)

	aliasID, _, err := s.AddObject(&core.Object{
		ParentID:  core.RootID,
		Type:      core.TypeItem,
		UpnpClass: "object.item.videoItem",
		Title:     "Movie (alias)",
		LocTag:    core.LocationVirtual,
		RefID:     &realID,
	})
	require.NoError(t, err)

	alias, err := s.LoadObject(aliasID)
	require.NoError(t, err)
	assert.Equal(t, "/video/movie.mkv", alias.Location)
	assert.Equal(t, "video/x-matroska", alias.MimeType)
}

func TestUpdateObjectDiffsMetadataAndResources(t *testing.T) {
	s := newTestStore(t)

	id, _, err := s.AddObject(&core.Object{
		ParentID:  core.RootID,
		Type:      core.TypeItem,
		UpnpClass: "object.item",
		Title:     "Before",
		LocTag:    core.LocationVirtual,
		Metadata:  map[string]string{"a": "1", "b": "2"},
		Resources: []core.Resource{{Attrs: map[string]string{"size": "10"}}},
	})
	require.NoError(t, err)

	existing, err := s.LoadObject(id)
	require.NoError(t, err)
	existing.Title = "After"
	existing.Metadata = map[string]string{"a": "1", "c": "3"}
	existing.Resources = []core.Resource{{Attrs: map[string]string{"size": "20"}}}

	_, err = s.UpdateObject(existing)
	require.NoError(t, err)

	reloaded, err := s.LoadObject(id)
	require.NoError(t, err)
	assert.Equal(t, "After", reloaded.Title)
	assert.Equal(t, map[string]string{"a": "1", "c": "3"}, reloaded.Metadata)
	require.Len(t, reloaded.Resources, 1)
	assert.Equal(t, "20", reloaded.Resources[0].Attrs["size"])
}

func TestBrowseChildrenOrdersContainersFirst(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.AddObject(&core.Object{
		ParentID: core.RootID, Type: core.TypeItem, UpnpClass: "object.item",
		Title: "AItem", LocTag: core.LocationVirtual,
	})
	require.NoError(t, err)
	_, _, err = s.AddObject(&core.Object{
		ParentID: core.RootID, Type: core.TypeContainer, UpnpClass: defaultContainerClass,
		Title: "ZContainer", LocTag: core.LocationVirtual,
	})
	require.NoError(t, err)

	children, err := s.BrowseChildren(core.RootID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.True(t, children[0].IsContainer())
	assert.Equal(t, "ZContainer", children[0].Title)
}

func TestBrowseChildrenOfDynamicContainerIsEmpty(t *testing.T) {
	s := newTestStore(t)
	children, err := s.BrowseChildren(-1)
	require.NoError(t, err)
	assert.Nil(t, children)
}
