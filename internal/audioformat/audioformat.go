// Package audioformat defines AudioFormat, the most generic, low-level audio
// representation shared by streamquality, downloadformat, tagmap, and
// transcode. Grounded on original_source/src/audio_format.rs.
package audioformat

// Format is a concrete, bitrate-specific audio encoding.
type Format int

const (
	Aac Format = iota
	Aiff
	Alac
	Flac
	Mp3VbrV0
	Mp3VbrV5
	Mp3VbrV7
	OggVorbis
	Opus48Kbps
	Opus96Kbps
	Opus128Kbps
	Wav
)

// Family is a simplified format description, agnostic of bitrate.
type Family int

const (
	FamilyAac Family = iota
	FamilyAiff
	FamilyAlac
	FamilyFlac
	FamilyMp3
	FamilyOggVorbis
	FamilyOpus
	FamilyWav
)

// AssetDirname returns the per-format asset subdirectory name, used to keep
// different bitrate/encoding variants of the same track from colliding.
func (f Format) AssetDirname() string {
	switch f {
	case Aac:
		return "aac"
	case Aiff:
		return "aiff"
	case Alac:
		return "alac"
	case Flac:
		return "flac"
	case Mp3VbrV0:
		return "mp3-v0"
	case Mp3VbrV5:
		return "mp3-v5"
	case Mp3VbrV7:
		return "mp3-v7"
	case OggVorbis:
		return "ogg"
	case Opus48Kbps:
		return "opus-48"
	case Opus96Kbps:
		return "opus-96"
	case Opus128Kbps:
		return "opus-128"
	case Wav:
		return "wav"
	default:
		return ""
	}
}

// Extension returns the filename extension used for this format's rendered
// asset, including the leading dot.
func (f Format) Extension() string {
	switch f {
	case Aac:
		return ".aac"
	case Aiff:
		return ".aiff"
	case Alac:
		return ".m4a"
	case Flac:
		return ".flac"
	case Mp3VbrV0, Mp3VbrV5, Mp3VbrV7:
		return ".mp3"
	case OggVorbis:
		return ".ogg"
	case Opus48Kbps, Opus96Kbps, Opus128Kbps:
		return ".opus"
	case Wav:
		return ".wav"
	default:
		return ""
	}
}

// Family returns the bitrate-agnostic family this format belongs to.
func (f Format) Family() Family {
	switch f {
	case Aac:
		return FamilyAac
	case Aiff:
		return FamilyAiff
	case Alac:
		return FamilyAlac
	case Flac:
		return FamilyFlac
	case Mp3VbrV0, Mp3VbrV5, Mp3VbrV7:
		return FamilyMp3
	case OggVorbis:
		return FamilyOggVorbis
	case Opus48Kbps, Opus96Kbps, Opus128Kbps:
		return FamilyOpus
	case Wav:
		return FamilyWav
	default:
		return 0
	}
}

// SourceType returns the MIME type used for the <source> tag in the
// streaming player. Only implemented for formats actually used for
// streaming (opus and mp3); any other format is a programming error.
func (f Format) SourceType() string {
	switch f {
	case Mp3VbrV0, Mp3VbrV5, Mp3VbrV7:
		return "audio/mpeg"
	case Opus48Kbps, Opus96Kbps, Opus128Kbps:
		return "audio/ogg; codecs=opus"
	default:
		panic("SourceType is not implemented for this format")
	}
}

// String renders a user-facing label for the format.
func (f Format) String() string {
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
		return "MP3 V0"
	case Mp3VbrV5:
		return "MP3 V5"
	case Mp3VbrV7:
		return "MP3 V7"
	case OggVorbis:
		return "Ogg Vorbis"
	case Opus48Kbps:
		return "Opus 48"
	case Opus96Kbps:
		return "Opus 96"
	case Opus128Kbps:
		return "Opus 128"
	case Wav:
		return "WAV"
	default:
		return ""
	}
}
