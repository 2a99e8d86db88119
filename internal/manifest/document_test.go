package manifest

import "testing"

func TestParseScalarField(t *testing.T) {
	doc, err := Parse("title: Midnight Run\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := doc.Get("title")
	if !ok || f.Kind != Scalar || f.Value != "Midnight Run" {
		t.Fatalf("unexpected field: %+v, ok=%v", f, ok)
	}
}

func TestParseListField(t *testing.T) {
	source := "download_formats:\n- flac\n- mp3\n"
	doc, err := Parse(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := doc.Get("download_formats")
	if !ok || f.Kind != List {
		t.Fatalf("expected list field, got %+v", f)
	}
	if len(f.Items) != 2 || f.Items[0] != "flac" || f.Items[1] != "mp3" {
		t.Fatalf("unexpected items: %v", f.Items)
	}
}

func TestParseAttributedField(t *testing.T) {
	source := "artist:\nname = Alice\npermalink = alice\nalias = alice\nalias = Älice\n"
	doc, err := Parse(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := doc.Get("artist")
	if !ok || f.Kind != Attributed {
		t.Fatalf("expected attributed field, got %+v", f)
	}
	if f.Attrs["name"][0] != "Alice" {
		t.Fatalf("unexpected name attr: %v", f.Attrs["name"])
	}
	if len(f.Attrs["alias"]) != 2 {
		t.Fatalf("expected 2 repeated alias values, got %v", f.Attrs["alias"])
	}
}

func TestParseEmbedField(t *testing.T) {
	source := "more:\n  This is a longer\n  multi-line text block.\n"
	doc, err := Parse(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := doc.Get("more")
	if !ok || f.Kind != Embed {
		t.Fatalf("expected embed field, got %+v", f)
	}
	want := "This is a longer\nmulti-line text block."
	if f.Embed != want {
		t.Fatalf("Embed = %q, want %q", f.Embed, want)
	}
}

func TestParseMultipleFieldsSeparatedByBlankLines(t *testing.T) {
	source := "title: Album\n\nsynopsis: A short description\n"
	doc, err := Parse(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d: %+v", len(doc.Fields), doc.Fields)
	}
}

func TestParseRejectsMalformedLine(t *testing.T) {
	if _, err := Parse("this has no colon at all"); err == nil {
		t.Fatal("expected error for malformed line")
	}
}

func TestAllReturnsRepeatedFields(t *testing.T) {
	source := "link: https://one.example\n\nlink: https://two.example\n"
	doc, err := Parse(source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	links := doc.All("link")
	if len(links) != 2 {
		t.Fatalf("expected 2 link fields, got %d", len(links))
	}
}
