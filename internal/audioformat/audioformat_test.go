package audioformat

import "testing"

func TestExtension(t *testing.T) {
	cases := map[Format]string{
		Alac:       ".m4a",
		Mp3VbrV0:   ".mp3",
		Mp3VbrV5:   ".mp3",
		Opus48Kbps: ".opus",
		Wav:        ".wav",
	}
	for f, want := range cases {
		if got := f.Extension(); got != want {
			t.Errorf("%v.Extension() = %q, want %q", f, got, want)
		}
	}
}

func TestFamilyGroupsBitrateVariants(t *testing.T) {
	if Mp3VbrV0.Family() != Mp3VbrV5.Family() || Mp3VbrV5.Family() != Mp3VbrV7.Family() {
		t.Fatal("expected all mp3 bitrate variants to share a family")
	}
	if Opus48Kbps.Family() != FamilyOpus {
		t.Fatalf("expected Opus48Kbps family to be FamilyOpus, got %v", Opus48Kbps.Family())
	}
}

func TestSourceTypeKnownFormats(t *testing.T) {
	if Mp3VbrV0.SourceType() != "audio/mpeg" {
		t.Fatalf("unexpected mp3 source type: %q", Mp3VbrV0.SourceType())
	}
	if Opus96Kbps.SourceType() != "audio/ogg; codecs=opus" {
		t.Fatalf("unexpected opus source type: %q", Opus96Kbps.SourceType())
	}
}

func TestSourceTypeUnsupportedFormatPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unsupported source type")
		}
	}()
	_ = Wav.SourceType()
}

func TestAssetDirnameDistinctPerBitrate(t *testing.T) {
	dirs := map[string]bool{}
	for _, f := range []Format{Mp3VbrV0, Mp3VbrV5, Mp3VbrV7, Opus48Kbps, Opus96Kbps, Opus128Kbps} {
		dirs[f.AssetDirname()] = true
	}
	if len(dirs) != 6 {
		t.Fatalf("expected 6 distinct asset dirnames, got %d", len(dirs))
	}
}
