package streamquality

import (
	"testing"

	"tonearm/internal/audioformat"
)

func TestFormatsFrugal(t *testing.T) {
	formats := Frugal.Formats()
	if formats[0] != audioformat.Opus48Kbps || formats[1] != audioformat.Mp3VbrV7 {
		t.Fatalf("unexpected Frugal formats: %v", formats)
	}
}

func TestFormatsStandard(t *testing.T) {
	formats := Standard.Formats()
	if formats[0] != audioformat.Opus96Kbps || formats[1] != audioformat.Mp3VbrV5 {
		t.Fatalf("unexpected Standard formats: %v", formats)
	}
}

func TestMp3FormatMatchesFormatsIndex1(t *testing.T) {
	for _, q := range []Quality{Frugal, Standard} {
		if q.Mp3Format() != q.Formats()[1] {
			t.Fatalf("Mp3Format() inconsistent with Formats()[1] for %v", q)
		}
	}
}

func TestFromKey(t *testing.T) {
	if q, err := FromKey("frugal"); err != nil || q != Frugal {
		t.Fatalf("FromKey(frugal) = %v, %v", q, err)
	}
	if _, err := FromKey("bogus"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
