// Package downloadformat implements DownloadFormat, the user-facing subset
// of audio formats that can be enabled for release downloads, grounded on
// original_source/src/download_format.rs. Per-locale descriptions are out of
// scope (translation tables are an explicit Non-goal); Category returns a
// locale-agnostic classification in their place.
package downloadformat

import (
	"fmt"

	"tonearm/internal/audioformat"
)

// Format is a download-enabled audio format.
type Format int

const (
	Aac Format = iota
	Aiff
	Alac
	Flac
	Mp3VbrV0
	OggVorbis
	Opus48Kbps
	Opus96Kbps
	Opus128Kbps
	Wav
)

// AsAudioFormat "downcasts" a DownloadFormat to the more generic AudioFormat
// used for transcoding and cache keys.
func (f Format) AsAudioFormat() audioformat.Format {
	switch f {
	case Aac:
		return audioformat.Aac
	case Aiff:
		return audioformat.Aiff
	case Alac:
		return audioformat.Alac
	case Flac:
		return audioformat.Flac
	case Mp3VbrV0:
		return audioformat.Mp3VbrV0
	case OggVorbis:
		return audioformat.OggVorbis
	case Opus48Kbps:
		return audioformat.Opus48Kbps
	case Opus96Kbps:
		return audioformat.Opus96Kbps
	case Opus128Kbps:
		return audioformat.Opus128Kbps
	case Wav:
		return audioformat.Wav
	default:
		panic("unhandled DownloadFormat")
	}
}

// Category is a locale-agnostic classification for the format, a stand-in
// for the original's per-locale one-line description.
func (f Format) Category() string {
	switch f {
	case Aac, OggVorbis:
		return "average"
	case Aiff, Wav:
		return "uncompressed"
	case Alac:
		return "alac"
	case Flac:
		return "flac"
	case Mp3VbrV0:
		return "mp3"
	case Opus48Kbps:
		return "opus-48"
	case Opus96Kbps:
		return "opus-96"
	case Opus128Kbps:
		return "opus-128"
	default:
		return ""
	}
}

// DownloadRank orders formats for display, lowest rank first (best quality
// per format class first).
func (f Format) DownloadRank() uint8 {
	switch f {
	case Opus128Kbps:
		return 1
	case Opus96Kbps:
		return 2
	case Opus48Kbps:
		return 3
	case Mp3VbrV0:
		return 4
	case OggVorbis:
		return 5
	case Flac:
		return 6
	case Alac:
		return 7
	case Aac:
		return 8
	case Wav:
		return 9
	case Aiff:
		return 10
	default:
		return 255
	}
}

// FromManifestKey parses a download_formats manifest value. "opus" is
// accepted as an alias for "opus_128".
func FromManifestKey(key string) (Format, bool) {
	switch key {
	case "aac":
		return Aac, true
	case "aiff":
		return Aiff, true
	case "alac":
		return Alac, true
	case "flac":
		return Flac, true
	case "mp3":
		return Mp3VbrV0, true
	case "ogg_vorbis":
		return OggVorbis, true
	case "opus_48":
		return Opus48Kbps, true
	case "opus_96":
		return Opus96Kbps, true
	case "opus", "opus_128":
		return Opus128Kbps, true
	case "wav":
		return Wav, true
	default:
		return 0, false
	}
}

// IsLossless reports whether the format preserves the source audio exactly.
func (f Format) IsLossless() bool {
	switch f {
	case Aiff, Alac, Flac, Wav:
		return true
	default:
		return false
	}
}

// RecommendedDownload reports whether the format should be preferentially
// suggested to a listener: non-free technology (AAC) and wasteful
// uncompressed formats (AIFF, WAV) are excluded.
func (f Format) RecommendedDownload() bool {
	switch f {
	case Aac, Aiff, Wav:
		return false
	default:
		return true
	}
}

// UserLabel returns a verbose, user-facing label (e.g. for a download
// button).
func (f Format) UserLabel() string {
	switch f {
	case Aac:
		return "AAC"
	case Aiff:
		return "AIFF"
	case Alac:
		return "ALAC"
	case Flac:
		return "FLAC"
	case Mp3VbrV0:
		return "MP3"
	case OggVorbis:
		return "Ogg Vorbis"
	case Opus48Kbps:
		return "Opus 48Kbps"
	case Opus96Kbps:
		return "Opus 96Kbps"
	case Opus128Kbps:
		return "Opus 128Kbps"
	case Wav:
		return "WAV"
	default:
		return ""
	}
}

// String satisfies fmt.Stringer with the same text as UserLabel.
func (f Format) String() string {
	return f.UserLabel()
}

// Recommendation pairs a format with whether it is the one recommendation
// surfaced among a set of offered formats.
type Recommendation struct {
	Format      Format
	Recommended bool
}

// WithRecommendation maps a set of download formats to (format,
// recommended) pairs: the first format in iteration order that is
// RecommendedDownload is flagged true, every other pairing is false.
// formats must be non-empty.
func WithRecommendation(formats []Format) ([]Recommendation, error) {
	if len(formats) == 0 {
		return nil, fmt.Errorf("WithRecommendation requires a non-empty list of formats")
	}
	result := make([]Recommendation, len(formats))
	given := false
	for i, f := range formats {
		if !given && f.RecommendedDownload() {
			given = true
			result[i] = Recommendation{Format: f, Recommended: true}
		} else {
			result[i] = Recommendation{Format: f, Recommended: false}
		}
	}
	return result, nil
}
