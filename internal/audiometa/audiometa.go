// Package audiometa extracts AudioMeta (tags plus a compressed peak
// envelope) from a decoded source audio file, grounded on
// original_source/src/audio_meta.rs. Low-level sample decoding is treated
// as an external collaborator (spec §4.4, §1 Non-goals): Decoder is the
// seam, DecodeResult its output, and tag reading uses
// github.com/dhowden/tag for the formats it supports.
package audiometa

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"tonearm/internal/audioformat"
	"tonearm/internal/constants"
)

// DecodeResult is the raw output of decoding a source audio file: channel
// count, sample rate, interleaved f32 samples normalized to [-1, 1], and
// the total sample count (per channel count, i.e. frames * channels).
type DecodeResult struct {
	Channels    int
	SampleRate  int
	Samples     []float32
	SampleCount int
}

// Decoder decodes one audio format's samples. Concrete decoders for each
// supported container/codec are the external-collaborator seam the spec
// explicitly excludes implementing ("low-level audio decoder
// implementations" — §1 Non-goals); only a PCM WAV decoder, which requires
// no external codec, is implemented directly.
type Decoder interface {
	Decode(path string) (DecodeResult, error)
}

// Meta is the tag and envelope data extracted from one source audio file.
type Meta struct {
	Album          string
	AlbumArtists   []string
	Artists        []string
	DurationSeconds float32
	FormatFamily   audioformat.Family
	Lossless       bool
	Peaks          []float32
	Title          string
	HasTrackNumber bool
	TrackNumber    int
}

// lossless reports whether the family preserves source audio exactly.
func lossless(family audioformat.Family) bool {
	switch family {
	case audioformat.FamilyAiff, audioformat.FamilyAlac, audioformat.FamilyFlac, audioformat.FamilyWav:
		return true
	default:
		return false
	}
}

// ExtractTags reads format-specific tag fields from the source file at
// path using github.com/dhowden/tag (ID3v1/v2, Vorbis comments, MP4
// atoms), and normalizes them into Meta's tag fields. decodeResult supplies
// the envelope and duration; family sets FormatFamily and Lossless, while
// the tag format itself is detected from the file contents by tag.ReadFrom.
func ExtractTags(path string, family audioformat.Family, decodeResult DecodeResult) (Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return Meta{}, err
	}
	defer f.Close()

	m := Meta{
		FormatFamily: family,
		Lossless:     lossless(family),
	}

	if decodeResult.SampleRate > 0 {
		m.DurationSeconds = float32(decodeResult.SampleCount) / float32(decodeResult.Channels) / float32(decodeResult.SampleRate)
	}
	m.Peaks = computePeaks(decodeResult, constants.PeakEnvelopePoints)

	meta, err := tag.ReadFrom(f)
	if err != nil {
		if err == tag.ErrNoTagsFound {
			return m, nil
		}
		return Meta{}, fmt.Errorf("reading tags from %s: %w", path, err)
	}

	m.Album = workaroundNullBytes(meta.Album(), meta.Format())
	m.Title = workaroundNullBytes(meta.Title(), meta.Format())

	if artist := workaroundNullBytes(meta.Artist(), meta.Format()); artist != "" {
		m.Artists = []string{artist}
	}
	if albumArtist := workaroundNullBytes(meta.AlbumArtist(), meta.Format()); albumArtist != "" {
		m.AlbumArtists = []string{albumArtist}
	}

	if track, _ := meta.Track(); track > 0 {
		m.HasTrackNumber = true
		m.TrackNumber = track
	}

	return m, nil
}

// workaroundNullBytes rewrites stray NUL bytes left inside ID3v2.2/2.3
// text frames (a known multi-value-separator encoding bug in some
// taggers) into '/' instead, matching the original's id3_util workaround.
// Vorbis-comment and MP4 tag formats never contain embedded NULs, so the
// rewrite is scoped to ID3.
func workaroundNullBytes(value string, format tag.Format) string {
	if format != tag.ID3v2_2 && format != tag.ID3v2_3 {
		return value
	}
	return strings.ReplaceAll(value, "\x00", "/")
}

// computePeaks partitions samples into `points` equal windows (the last
// window also takes the remainder when the sample count is not a multiple
// of points; fewer samples than points yield one window per sample),
// recording the mean absolute amplitude per window, then rescales all
// windows so that the largest window amplitude equals the largest
// single-sample absolute amplitude observed (spec §4.4).
func computePeaks(decodeResult DecodeResult, points int) []float32 {
	if len(decodeResult.Samples) == 0 || points <= 0 {
		return nil
	}

	windowSize := decodeResult.SampleCount / points
	if windowSize <= 0 {
		windowSize = 1
	}

	peaks := make([]float32, 0, points)

	windowSamples := 0
	windowAccumulated := float32(0)

	sampleAbsMax := float32(0)
	windowAbsMax := float32(0)

	for _, amplitude := range decodeResult.Samples {
		abs := amplitude
		if abs < 0 {
			abs = -abs
		}
		if abs > sampleAbsMax {
			sampleAbsMax = abs
		}

		if windowSamples >= windowSize && len(peaks) < points-1 {
			peak := windowAccumulated / float32(windowSamples)
			if peak > windowAbsMax {
				windowAbsMax = peak
			}
			peaks = append(peaks, peak)

			windowSamples = 0
			windowAccumulated = 0
		}

		if amplitude >= 0 {
			windowAccumulated += amplitude
		} else {
			windowAccumulated -= amplitude
		}
		windowSamples++
	}

	if windowSamples > 0 {
		peak := windowAccumulated / float32(windowSamples)
		if peak > windowAbsMax {
			windowAbsMax = peak
		}
		peaks = append(peaks, peak)
	}

	if windowAbsMax == 0 {
		return peaks
	}

	upscale := sampleAbsMax / windowAbsMax
	for i, peak := range peaks {
		peaks[i] = peak * upscale
	}
	return peaks
}

// ParseTrackNumberIgnoringTotalTracks extracts only the track number from
// a tag value that may also carry the total track count ("01/07" -> 1).
// Accepts "01/boom", happily returning 1.
func ParseTrackNumberIgnoringTotalTracks(s string) (int, bool) {
	first := strings.SplitN(strings.TrimSpace(s), "/", 2)[0]
	n, err := strconv.Atoi(strings.TrimRight(first, " \t"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// wavDecoder decodes uncompressed PCM WAV files directly, without an
// external codec dependency.
type wavDecoder struct{}

// NewWavDecoder returns the built-in PCM WAV Decoder.
func NewWavDecoder() Decoder { return wavDecoder{} }

func (wavDecoder) Decode(path string) (DecodeResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return DecodeResult{}, err
	}
	defer f.Close()

	header := make([]byte, 44)
	if _, err := io.ReadFull(f, header); err != nil {
		return DecodeResult{}, fmt.Errorf("reading WAV header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return DecodeResult{}, fmt.Errorf("%s is not a valid WAV file", path)
	}

	channels := int(le16(header[22:24]))
	sampleRate := int(le32(header[24:28]))
	bitsPerSample := int(le16(header[34:36]))
	if channels == 0 || bitsPerSample == 0 {
		return DecodeResult{}, fmt.Errorf("%s has an unsupported WAV header", path)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return DecodeResult{}, err
	}

	bytesPerSample := bitsPerSample / 8
	if bytesPerSample != 2 {
		return DecodeResult{}, fmt.Errorf("%s uses unsupported bit depth %d (only 16-bit PCM is supported)", path, bitsPerSample)
	}

	sampleCount := len(data) / bytesPerSample
	if sampleCount == 0 {
		return DecodeResult{}, fmt.Errorf("%s contains zero-length audio", path)
	}

	samples := make([]float32, sampleCount)
	for i := 0; i < sampleCount; i++ {
		v := int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
		samples[i] = float32(v) / 32768.0
	}

	return DecodeResult{
		Channels:    channels,
		SampleRate:  sampleRate,
		Samples:     samples,
		SampleCount: sampleCount,
	}, nil
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
