package audiometa

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParseTrackNumberIgnoringTotalTracks(t *testing.T) {
	cases := map[string]int{
		"01":      1,
		"01/07":   1,
		"3":       3,
		"9/boom":  9,
		"  4  /9": 4,
	}
	for in, want := range cases {
		got, ok := ParseTrackNumberIgnoringTotalTracks(in)
		if !ok || got != want {
			t.Errorf("ParseTrackNumberIgnoringTotalTracks(%q) = %d, %v; want %d", in, got, ok, want)
		}
	}
}

func TestParseTrackNumberRejectsNonNumeric(t *testing.T) {
	if _, ok := ParseTrackNumberIgnoringTotalTracks("boom/7"); ok {
		t.Fatal("expected non-numeric leading token to be rejected")
	}
}

func TestComputePeaksRescalesToSampleMax(t *testing.T) {
	samples := make([]float32, 3200)
	for i := range samples {
		samples[i] = 0.1
	}
	samples[0] = 1.0 // the single largest absolute amplitude

	result := DecodeResult{Channels: 1, SampleRate: 44100, Samples: samples, SampleCount: len(samples)}
	peaks := computePeaks(result, 320)

	if len(peaks) == 0 {
		t.Fatal("expected a non-empty peak envelope")
	}

	var maxPeak float32
	for _, p := range peaks {
		if p > maxPeak {
			maxPeak = p
		}
	}
	if math.Abs(float64(maxPeak-1.0)) > 0.05 {
		t.Fatalf("expected max peak close to 1.0 after rescaling, got %v", maxPeak)
	}
}

func TestComputePeaksEmptySamples(t *testing.T) {
	peaks := computePeaks(DecodeResult{}, 320)
	if peaks != nil {
		t.Fatalf("expected nil peaks for empty input, got %v", peaks)
	}
}

func TestWavDecoderRejectsZeroLengthAudio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.wav")

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	copy(header[8:12], "WAVE")
	header[22] = 1 // channels
	header[24] = 0x44
	header[25] = 0xAC
	header[34] = 16 // bits per sample

	if err := os.WriteFile(path, header, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewWavDecoder().Decode(path); err == nil {
		t.Fatal("expected error decoding zero-length audio")
	}
}

func TestWavDecoderDecodesSamples(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	copy(header[8:12], "WAVE")
	header[22] = 1 // mono
	header[24] = 0x44
	header[25] = 0xAC // 44100 little-endian low bytes
	header[34] = 16   // bits per sample

	samples := []int16{0, 16384, -16384, 32767}
	body := make([]byte, len(samples)*2)
	for i, s := range samples {
		body[i*2] = byte(uint16(s))
		body[i*2+1] = byte(uint16(s) >> 8)
	}

	if err := os.WriteFile(path, append(header, body...), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := NewWavDecoder().Decode(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Channels != 1 || result.SampleCount != len(samples) {
		t.Fatalf("unexpected decode result: %+v", result)
	}
}
