package core

// DefaultResourceAttributes returns the resource attribute column set
// a dialect falls back to when no Config collaborator overrides it at
// wiring time. Mirrors the attribute names the UPnP res element carries
// (protocolInfo, size, duration, ...).
func DefaultResourceAttributes() []string {
	return []string{
		"protocol_info",
		"size",
		"duration",
		"bitrate",
		"sample_frequency",
		"nr_audio_channels",
		"resolution",
		"color_depth",
		"rights",
	}
}
