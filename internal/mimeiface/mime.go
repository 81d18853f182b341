// Package mimeiface declares the Mime collaborator the store consults
// when a non-container object with a filesystem location is added
// without an explicit MIME type. Real MIME
// sniffing (magic-byte detection, libmagic) is out of scope; this
// package only defines the seam and a trivial extension-table default
// good enough for tests and for deployments that don't need better.
package mimeiface

import (
	"path/filepath"
	"strings"
)

// Mime resolves a file location to a MIME type.
type Mime interface {
	// TypeForLocation returns the MIME type for a filesystem path,
	// falling back to "application/octet-stream" when the extension is
	// unrecognized.
	TypeForLocation(location string) string
}

// extensionTable is a minimal static-table Mime implementation.
type extensionTable struct {
	byExt map[string]string
}

// NewExtensionTable builds a Mime resolver from an extension-to-type
// map (no leading dot on keys). Entries override the built-in
// defaults.
func NewExtensionTable(overrides map[string]string) Mime {
	byExt := defaultExtensions()
	for ext, mt := range overrides {
		byExt[strings.ToLower(ext)] = mt
	}
	return &extensionTable{byExt: byExt}
}

func (t *extensionTable) TypeForLocation(location string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(location)), ".")
	if mt, ok := t.byExt[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}

func defaultExtensions() map[string]string {
	return map[string]string{
		"mp3":  "audio/mpeg",
		"flac": "audio/flac",
		"ogg":  "audio/ogg",
		"wav":  "audio/wav",
		"mp4":  "video/mp4",
		"mkv":  "video/x-matroska",
		"avi":  "video/x-msvideo",
		"webm": "video/webm",
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"png":  "image/png",
		"gif":  "image/gif",
		"srt":  "text/srt",
		"m3u":  "audio/x-mpegurl",
	}
}
