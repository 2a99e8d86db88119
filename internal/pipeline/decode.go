package pipeline

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"

	"tonearm/internal/audiometa"
	"tonearm/internal/transcode"
)

// ffmpegDecodeRate and ffmpegDecodeChannels are the fixed PCM parameters
// every non-WAV source is decoded to for peak-envelope and duration
// purposes: the envelope is a coarse visual approximation (spec §4.4), so
// resampling to a common rate/channel count loses nothing that matters
// for it.
const (
	ffmpegDecodeRate     = 44100
	ffmpegDecodeChannels = 2
)

// ffmpegDecoder decodes a compressed source format to raw interleaved f32
// PCM via the external ffmpeg binary, the same external-collaborator seam
// internal/transcode uses for encoding (spec §1 Non-goals: "low-level
// audio decoder implementations" are out of scope; only the WAV decoder in
// internal/audiometa is implemented directly).
type ffmpegDecoder struct{}

// NewFFmpegDecoder returns a Decoder backed by the system ffmpeg binary,
// for any source family internal/audiometa's built-in WAV decoder doesn't
// cover.
func NewFFmpegDecoder() audiometa.Decoder { return ffmpegDecoder{} }

func (ffmpegDecoder) Decode(path string) (audiometa.DecodeResult, error) {
	cmd := exec.Command(transcode.Binary,
		"-i", path,
		"-f", "f32le",
		"-ac", "2",
		"-ar", "44100",
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return audiometa.DecodeResult{}, fmt.Errorf("decoding %s via ffmpeg: %w (stderr: %s)", path, err, stderr.String())
	}

	raw := stdout.Bytes()
	sampleCount := len(raw) / 4
	samples := make([]float32, sampleCount)
	for i := 0; i < sampleCount; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
		samples[i] = math.Float32frombits(bits)
	}

	if sampleCount == 0 {
		return audiometa.DecodeResult{}, fmt.Errorf("%s decoded to zero samples", path)
	}

	return audiometa.DecodeResult{
		Channels:    ffmpegDecodeChannels,
		SampleRate:  ffmpegDecodeRate,
		Samples:     samples,
		SampleCount: sampleCount,
	}, nil
}
