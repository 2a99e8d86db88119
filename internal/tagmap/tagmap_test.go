package tagmap

import "testing"

func TestNewAllCopy(t *testing.T) {
	m := New(AgendaCopy(), SourceMeta{}, RewriteInputs{})
	if !m.CopyAll || m.RemoveAll {
		t.Fatalf("expected CopyAll mapping, got %+v", m)
	}
}

func TestNewAllRemove(t *testing.T) {
	m := New(AgendaRemove(), SourceMeta{}, RewriteInputs{})
	if !m.RemoveAll || m.CopyAll {
		t.Fatalf("expected RemoveAll mapping, got %+v", m)
	}
}

func TestAgendaSetWidensCopyShorthand(t *testing.T) {
	agenda := AgendaCopy()
	if err := agenda.Set("image", "remove"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agenda.IsAllCopy() {
		t.Fatal("expected agenda to widen out of the copy-all shorthand")
	}
	if agenda.Album != Copy {
		t.Fatalf("expected untouched fields to remain Copy, got %v", agenda.Album)
	}
	if agenda.Image != Remove {
		t.Fatalf("expected Image to be overridden to Remove, got %v", agenda.Image)
	}
}

func TestAgendaSetRejectsUnknownKeys(t *testing.T) {
	agenda := AgendaNormalize()
	if err := agenda.Set("bogus", "copy"); err == nil {
		t.Fatal("expected error for unknown tag key")
	}
	if err := agenda.Set("album", "bogus"); err == nil {
		t.Fatal("expected error for unknown action key")
	}
}

func TestNewRewriteAlbumArtistOmittedWhenFlagged(t *testing.T) {
	agenda := AgendaNormalize()
	m := New(agenda, SourceMeta{}, RewriteInputs{
		ReleaseMainArtistNames: []string{"Solo Artist"},
		AlbumArtistOmitted:     true,
	})
	if m.AlbumArtist != nil {
		t.Fatalf("expected AlbumArtist to be omitted, got %q", *m.AlbumArtist)
	}
}

func TestNewRewriteAlbumArtistPresentWhenNotOmitted(t *testing.T) {
	agenda := AgendaNormalize()
	m := New(agenda, SourceMeta{}, RewriteInputs{
		ReleaseMainArtistNames: []string{"Artist One", "Artist Two"},
		AlbumArtistOmitted:     false,
	})
	if m.AlbumArtist == nil || *m.AlbumArtist != "Artist One, Artist Two" {
		t.Fatalf("unexpected AlbumArtist: %v", m.AlbumArtist)
	}
}

func TestNewRewriteTrackIgnoresSourceTrackNumber(t *testing.T) {
	agenda := AgendaNormalize()
	m := New(agenda, SourceMeta{HasTrackNumber: true, TrackNumber: 99}, RewriteInputs{TrackNumber: 3})
	if m.Track == nil || *m.Track != 3 {
		t.Fatalf("expected rewritten track number 3, got %v", m.Track)
	}
}

func TestNewCopyTrackUsesSourceTrackNumberWhenPresent(t *testing.T) {
	agenda := AgendaCopy()
	_ = agenda.Set("image", "remove") // force custom without touching track
	m := New(agenda, SourceMeta{HasTrackNumber: true, TrackNumber: 5}, RewriteInputs{})
	if m.Track == nil || *m.Track != 5 {
		t.Fatalf("expected copied track number 5, got %v", m.Track)
	}
}

func TestNewCopyTrackAbsentWhenSourceLacksIt(t *testing.T) {
	agenda := AgendaCopy()
	_ = agenda.Set("image", "remove")
	m := New(agenda, SourceMeta{HasTrackNumber: false}, RewriteInputs{})
	if m.Track != nil {
		t.Fatalf("expected nil track number, got %v", *m.Track)
	}
}

func TestSignatureDeterministicAndDistinguishesMappings(t *testing.T) {
	a := New(AgendaNormalize(), SourceMeta{}, RewriteInputs{ReleaseTitle: "A", TrackTitle: "One", TrackNumber: 1})
	b := New(AgendaNormalize(), SourceMeta{}, RewriteInputs{ReleaseTitle: "A", TrackTitle: "One", TrackNumber: 1})
	c := New(AgendaNormalize(), SourceMeta{}, RewriteInputs{ReleaseTitle: "B", TrackTitle: "One", TrackNumber: 1})

	if a.Signature() != b.Signature() {
		t.Fatal("expected identical mappings to produce identical signatures")
	}
	if a.Signature() == c.Signature() {
		t.Fatal("expected different mappings to produce different signatures")
	}
}

func TestSignatureCopyAllAndRemoveAllDiffer(t *testing.T) {
	copyAll := New(AgendaCopy(), SourceMeta{}, RewriteInputs{})
	removeAll := New(AgendaRemove(), SourceMeta{}, RewriteInputs{})
	if copyAll.Signature() == removeAll.Signature() {
		t.Fatal("expected CopyAll and RemoveAll to have distinct signatures")
	}
}
