package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectTypeHas(t *testing.T) {
	t.Run("container only", func(t *testing.T) {
		ty := TypeContainer
		assert.True(t, ty.Has(TypeContainer))
		assert.False(t, ty.Has(TypeItem))
	})

	t.Run("item and active item combined", func(t *testing.T) {
		ty := TypeItem | TypeActiveItem
		assert.True(t, ty.Has(TypeItem))
		assert.True(t, ty.Has(TypeActiveItem))
		assert.False(t, ty.Has(TypeContainer))
		assert.True(t, ty.Has(TypeItem|TypeActiveItem))
	})
}

func TestLocationPrefixRoundTrip(t *testing.T) {
	cases := []struct {
		name       string
		tag        LocationTag
		serviceTag byte
		path       string
	}{
		{"real path", LocationReal, 0, "/srv/media/movie.mkv"},
		{"virtual path", LocationVirtual, 0, "/Videos/Movies/2024"},
		{"service path", LocationService, 'Y', "channel/12345"},
		{"empty virtual path", LocationVirtual, 0, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stored := AddLocationPrefix(tc.tag, tc.serviceTag, tc.path)
			gotPath, gotTag, gotService := StripLocationPrefix(stored)
			assert.Equal(t, tc.path, gotPath)
			assert.Equal(t, tc.tag, gotTag)
			if tc.tag == LocationService {
				assert.Equal(t, tc.serviceTag, gotService)
			}
		})
	}
}

func TestObjectCloneIsDeep(t *testing.T) {
	ref := 7
	o := &Object{
		ID:       1,
		RefID:    &ref,
		Metadata: map[string]string{"dc:title": "Movie"},
		Resources: []Resource{
			{ObjectID: 1, Ordinal: 0, Attrs: map[string]string{"mimetype": "video/mp4"}},
		},
	}

	clone := o.Clone()
	clone.Metadata["dc:title"] = "Changed"
	clone.Resources[0].Attrs["mimetype"] = "video/webm"
	*clone.RefID = 99

	assert.Equal(t, "Movie", o.Metadata["dc:title"])
	assert.Equal(t, "video/mp4", o.Resources[0].Attrs["mimetype"])
	assert.Equal(t, 7, *o.RefID)
}

func TestCompactOrdinals(t *testing.T) {
	in := []Resource{
		{Ordinal: 5},
		{Ordinal: 1},
		{Ordinal: 9},
	}
	out := CompactOrdinals(in)
	for i, r := range out {
		assert.Equal(t, i, r.Ordinal)
	}
	assert.Len(t, out, 3)
}

func TestChangedContainersMerge(t *testing.T) {
	a := &ChangedContainers{UpdatedIDs: []int{1, 2}}
	b := &ChangedContainers{UpdatedIDs: []int{2, 3}, PurgedIDs: []int{4}}
	a.Merge(b)
	assert.ElementsMatch(t, []int{1, 2, 3}, a.UpdatedIDs)
	assert.ElementsMatch(t, []int{4}, a.PurgedIDs)
	assert.False(t, a.Empty())
	assert.True(t, (&ChangedContainers{}).Empty())
}
