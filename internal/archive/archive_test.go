package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"tonearm/internal/cache"
	"tonearm/internal/hashx"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

func TestExtrasPolicyFromManifestKey(t *testing.T) {
	cases := map[string]ExtrasPolicy{
		"disabled": ExtrasDisabled,
		"bundled":  ExtrasBundled,
		"separate": ExtrasSeparate,
	}
	for key, want := range cases {
		got, ok := ExtrasPolicyFromManifestKey(key)
		if !ok || got != want {
			t.Fatalf("ExtrasPolicyFromManifestKey(%q) = %v, %v; want %v, true", key, got, ok, want)
		}
	}
	if _, ok := ExtrasPolicyFromManifestKey("nonsense"); ok {
		t.Fatal("expected an unknown key to fail to resolve")
	}
}

func TestAssembleWritesTracksCoverAndExtras(t *testing.T) {
	dir := t.TempDir()
	track1 := writeFile(t, dir, "track1.mp3", "audio one")
	track2 := writeFile(t, dir, "track2.mp3", "audio two")
	cover := writeFile(t, dir, "cover.jpg", "cover bytes")
	linerNotes := writeFile(t, dir, "notes.txt", "liner notes")

	req := Request{
		Tracks: []TrackMember{
			{AudioPath: track1, AudioFilename: "01 First Track.mp3"},
			{AudioPath: track2, AudioFilename: "02 Second Track.mp3"},
		},
		CoverPath:      cover,
		Extras:         []MemberFile{{SourcePath: linerNotes, Filename: "notes.txt"}},
		ExtrasPolicy:   ExtrasBundled,
		ExtrasDirLabel: "extras",
	}

	store := cache.NewStore(t.TempDir())
	asset, err := Assemble(store, req)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	r, err := zip.OpenReader(store.Path(asset.Filename))
	if err != nil {
		t.Fatalf("opening assembled zip: %v", err)
	}
	defer r.Close()

	names := make(map[string]bool)
	for _, f := range r.File {
		names[f.Name] = true
	}

	for _, want := range []string{"01 First Track.mp3", "02 Second Track.mp3", "cover.jpg", "notes.txt"} {
		if !names[want] {
			t.Fatalf("expected archive to contain %q, got %v", want, names)
		}
	}
}

func TestAssembleWritesPerTrackExtrasSubdirectory(t *testing.T) {
	dir := t.TempDir()
	track := writeFile(t, dir, "track.mp3", "audio")
	trackCover := writeFile(t, dir, "track-cover.jpg", "track cover bytes")

	req := Request{
		Tracks: []TrackMember{
			{AudioPath: track, AudioFilename: "01 Track.mp3", CoverPath: trackCover},
		},
		ExtrasDirLabel: "extras",
	}

	store := cache.NewStore(t.TempDir())
	asset, err := Assemble(store, req)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	r, err := zip.OpenReader(store.Path(asset.Filename))
	if err != nil {
		t.Fatalf("opening assembled zip: %v", err)
	}
	defer r.Close()

	found := false
	for _, f := range r.File {
		if f.Name == "01 Track.mp3 (extras)/cover.jpg" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the track's cover under its own extras subdirectory")
	}
}

func TestDeduplicateFilenameAvoidsCollisions(t *testing.T) {
	used := map[string]bool{"notes.txt": true, "notes (2).txt": true}
	got := deduplicateFilename("notes.txt", used)
	if got != "notes (3).txt" {
		t.Fatalf("expected notes (3).txt, got %s", got)
	}
}

func TestSignatureIsStableAndSensitiveToExtrasPolicy(t *testing.T) {
	tracks := []hashx.Hash{hashx.String("a"), hashx.String("b")}

	s1 := Signature(tracks, hashx.String("cover"), true, ExtrasBundled, nil)
	s2 := Signature(tracks, hashx.String("cover"), true, ExtrasBundled, nil)
	if s1 != s2 {
		t.Fatal("expected identical inputs to produce the same signature")
	}

	s3 := Signature(tracks, hashx.String("cover"), true, ExtrasSeparate, nil)
	if s1 == s3 {
		t.Fatal("expected a different extras policy to change the signature")
	}
}
