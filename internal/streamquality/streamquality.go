// Package streamquality implements StreamingQuality, the per-release
// streaming bitrate configuration, grounded on
// original_source/src/streaming_quality.rs.
package streamquality

import (
	"fmt"

	"tonearm/internal/audioformat"
)

// Quality is a per-release streaming quality configuration.
type Quality int

const (
	Frugal Quality = iota
	Standard
)

// Formats returns both streaming formats (always rendered as a pair).
// Index 0 is the primary format (opus), preferred for in-browser streaming.
// Index 1 is the secondary format (mp3), a compatibility fallback for
// in-browser streaming and the only format offered for podcast RSS, since
// opus support there is not universal.
func (q Quality) Formats() [2]audioformat.Format {
	switch q {
	case Frugal:
		return [2]audioformat.Format{audioformat.Opus48Kbps, audioformat.Mp3VbrV7}
	case Standard:
		return [2]audioformat.Format{audioformat.Opus96Kbps, audioformat.Mp3VbrV5}
	default:
		return [2]audioformat.Format{audioformat.Opus96Kbps, audioformat.Mp3VbrV5}
	}
}

// Mp3Format returns just the secondary mp3 format.
func (q Quality) Mp3Format() audioformat.Format {
	switch q {
	case Frugal:
		return audioformat.Mp3VbrV7
	case Standard:
		return audioformat.Mp3VbrV5
	default:
		return audioformat.Mp3VbrV5
	}
}

// FromKey parses a streaming_quality manifest value.
func FromKey(key string) (Quality, error) {
	switch key {
	case "frugal":
		return Frugal, nil
	case "standard":
		return Standard, nil
	default:
		return 0, fmt.Errorf("unknown key %q (available keys: standard, frugal)", key)
	}
}
