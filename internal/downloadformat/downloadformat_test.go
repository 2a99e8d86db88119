package downloadformat

import "testing"

func TestAsAudioFormatRoundTrips(t *testing.T) {
	if Flac.AsAudioFormat().Extension() != ".flac" {
		t.Fatalf("unexpected extension for Flac: %q", Flac.AsAudioFormat().Extension())
	}
}

func TestFromManifestKeyOpusAlias(t *testing.T) {
	a, ok := FromManifestKey("opus")
	if !ok || a != Opus128Kbps {
		t.Fatalf("FromManifestKey(opus) = %v, %v, want Opus128Kbps", a, ok)
	}
	b, ok := FromManifestKey("opus_128")
	if !ok || b != Opus128Kbps {
		t.Fatalf("FromManifestKey(opus_128) = %v, %v, want Opus128Kbps", b, ok)
	}
	if _, ok := FromManifestKey("bogus"); ok {
		t.Fatal("expected FromManifestKey to reject unknown key")
	}
}

func TestIsLosslessPartitionsAllFormats(t *testing.T) {
	lossless := map[Format]bool{Aiff: true, Alac: true, Flac: true, Wav: true}
	all := []Format{Aac, Aiff, Alac, Flac, Mp3VbrV0, OggVorbis, Opus48Kbps, Opus96Kbps, Opus128Kbps, Wav}
	for _, f := range all {
		if f.IsLossless() != lossless[f] {
			t.Errorf("IsLossless(%v) = %v, want %v", f, f.IsLossless(), lossless[f])
		}
	}
}

func TestRecommendedDownloadExcludesNonFreeAndWasteful(t *testing.T) {
	for _, f := range []Format{Aac, Aiff, Wav} {
		if f.RecommendedDownload() {
			t.Errorf("expected %v to not be recommended", f)
		}
	}
	if !Flac.RecommendedDownload() {
		t.Fatal("expected Flac to be recommended")
	}
}

func TestWithRecommendationFlagsFirstRecommendedOnly(t *testing.T) {
	formats := []Format{Aac, Flac, Mp3VbrV0}
	got, err := WithRecommendation(formats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Recommended {
		t.Fatal("Aac is not recommended, should not be flagged")
	}
	if !got[1].Recommended {
		t.Fatal("Flac is the first recommended format, should be flagged")
	}
	if got[2].Recommended {
		t.Fatal("only one format should be flagged as recommended")
	}
}

func TestWithRecommendationRejectsEmpty(t *testing.T) {
	if _, err := WithRecommendation(nil); err == nil {
		t.Fatal("expected error for empty format list")
	}
}

func TestDownloadRankOrdersOpusAboveLossy(t *testing.T) {
	if Opus128Kbps.DownloadRank() >= Mp3VbrV0.DownloadRank() {
		t.Fatal("expected Opus128Kbps to rank above Mp3VbrV0")
	}
}
