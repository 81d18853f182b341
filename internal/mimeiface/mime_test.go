package mimeiface

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeForLocationKnownExtension(t *testing.T) {
	m := NewExtensionTable(nil)
	assert.Equal(t, "audio/mpeg", m.TypeForLocation("/music/song.mp3"))
	assert.Equal(t, "video/mp4", m.TypeForLocation("/Movies/Film.MP4"))
}

func TestTypeForLocationUnknownExtensionFallsBack(t *testing.T) {
	m := NewExtensionTable(nil)
	assert.Equal(t, "application/octet-stream", m.TypeForLocation("/misc/file.xyz"))
	assert.Equal(t, "application/octet-stream", m.TypeForLocation("/misc/noext"))
}

func TestOverridesWinOverDefaults(t *testing.T) {
	m := NewExtensionTable(map[string]string{"mp3": "audio/x-custom"})
	assert.Equal(t, "audio/x-custom", m.TypeForLocation("song.mp3"))
}
