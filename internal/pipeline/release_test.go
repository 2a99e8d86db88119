package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tonearm/internal/archive"
	"tonearm/internal/audioformat"
	"tonearm/internal/builderr"
	"tonearm/internal/cache"
	"tonearm/internal/catalogmodel"
	"tonearm/internal/config"
	"tonearm/internal/downloadformat"
	"tonearm/internal/logger"
	"tonearm/internal/manifest"
	"tonearm/internal/permalink"
	"tonearm/internal/sourcefile"
	"tonearm/internal/streamquality"
	"tonearm/internal/tagmap"
	"tonearm/internal/transcode"
)

type fakeTranscoder struct {
	calls int
}

func (f *fakeTranscoder) Transcode(req transcode.Request) error {
	f.calls++
	return os.WriteFile(req.OutputPath, []byte("rendered bytes"), 0644)
}

func newTestProcessor(t *testing.T, catalogDir string, tc transcode.Transcoder) (*releaseProcessor, *catalogmodel.Catalog) {
	t.Helper()

	catalog := catalogmodel.New()
	rp := &releaseProcessor{
		cfg:        &config.Config{CatalogDir: catalogDir, BuildDir: t.TempDir(), IgnoreErrors: false},
		log:        logger.NewLogger("ERROR"),
		cache:      cache.New(t.TempDir(), catalogDir, cache.Default),
		store:      cache.NewStore(t.TempDir()),
		transcoder: tc,
		catalog:    catalog,
		salt:       "",
		errs:       &builderr.Accumulator{},
	}
	return rp, catalog
}

// writeSourceTrack writes a tiny fixture file standing in for a track's
// audio, and seeds its cache.Transcodes entry with the metadata
// catalogreader's decode-on-miss pass would normally have populated.
func writeSourceTrack(t *testing.T, rp *releaseProcessor, relPath string) sourcefile.SourceHash {
	t.Helper()

	abs := filepath.Join(rp.cfg.CatalogDir, relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(abs, []byte("fixture audio bytes"), 0644); err != nil {
		t.Fatalf("writing fixture track: %v", err)
	}

	h, err := sourcefile.NewSourceHash(abs)
	if err != nil {
		t.Fatalf("hashing fixture track: %v", err)
	}

	transcodes := rp.cache.GetOrCreateTranscodes(h)
	transcodes.SourceMeta.Title = "Fixture Track"
	transcodes.SourceMeta.FormatFamily = audioformat.FamilyFlac
	transcodes.SourceMeta.DurationSeconds = 180
	transcodes.SourceMeta.Peaks = []float32{0.1, 0.5, 0.9, 0.4}
	return h
}

func newSingleTrackRelease(t *testing.T, rp *releaseProcessor, catalog *catalogmodel.Catalog, overrides manifest.Overrides) *catalogmodel.Release {
	t.Helper()

	artistID := catalog.NewArtist("Fixture Artist")

	releaseID := catalog.NewRelease("release")
	rel := catalog.Release(releaseID)
	rel.Title = "Fixture Release"
	rel.Permalink, _ = permalink.New("fixture-release")
	rel.MainArtistIDs = []catalogmodel.ArtistID{artistID}
	rel.Overrides = overrides

	trackID := catalog.NewTrack(releaseID)
	track := catalog.Track(trackID)
	track.Title = "Fixture Track"
	track.Number = 1
	track.ArtistIDs = []catalogmodel.ArtistID{artistID}
	track.SourcePath = "track.flac"
	track.SourceHash = writeSourceTrack(t, rp, track.SourcePath)
	track.TagAgenda = tagmap.AgendaNormalize()
	track.Overrides = overrides

	return rel
}

func TestProcessReleaseRendersStreamingAndTrackDownloadFormats(t *testing.T) {
	tc := &fakeTranscoder{}
	rp, catalog := newTestProcessor(t, t.TempDir(), tc)

	overrides := manifest.DefaultOverrides()
	overrides.StreamingQuality = streamquality.Standard
	overrides.TrackDownloads = []downloadformat.Format{downloadformat.Flac}

	rel := newSingleTrackRelease(t, rp, catalog, overrides)

	if err := rp.processRelease(rel); err != nil {
		t.Fatalf("processRelease: %v", err)
	}

	// Standard streaming quality renders 2 formats, plus 1 track download.
	if tc.calls != 3 {
		t.Fatalf("expected 3 transcoder invocations (2 streaming + 1 download), got %d", tc.calls)
	}

	var written []string
	filepath.Walk(rp.cfg.BuildDir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			written = append(written, path)
		}
		return nil
	})
	if len(written) == 0 {
		t.Fatal("expected at least one asset written into the build directory")
	}

	// A procedural cover (no release.Cover set) is written too.
	foundCover := false
	for _, p := range written {
		if filepath.Ext(p) == ".png" {
			foundCover = true
		}
	}
	if !foundCover {
		t.Fatal("expected a procedurally generated cover PNG to be written")
	}
}

func TestProcessReleaseAssemblesBundledArchive(t *testing.T) {
	tc := &fakeTranscoder{}
	catalogDir := t.TempDir()
	rp, catalog := newTestProcessor(t, catalogDir, tc)

	// Release-level extra file, bundled into the archive.
	extraAbs := filepath.Join(catalogDir, "liner-notes.txt")
	if err := os.WriteFile(extraAbs, []byte("liner notes"), 0644); err != nil {
		t.Fatalf("writing extra fixture: %v", err)
	}

	overrides := manifest.DefaultOverrides()
	overrides.ReleaseDownloads = []downloadformat.Format{downloadformat.Mp3VbrV0}
	overrides.ReleaseExtras = manifest.ExtrasBundled

	rel := newSingleTrackRelease(t, rp, catalog, overrides)
	rel.Extras = []catalogmodel.Extra{
		{Meta: sourcefile.FileMeta{Path: "liner-notes.txt"}, SanitizedFilename: "liner-notes.txt"},
	}

	if err := rp.processRelease(rel); err != nil {
		t.Fatalf("processRelease: %v", err)
	}

	foundZip := false
	filepath.Walk(rp.cfg.BuildDir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && filepath.Ext(path) == ".zip" {
			foundZip = true
		}
		return nil
	})
	if !foundZip {
		t.Fatal("expected one .zip archive to be written into the build directory")
	}

	if len(rp.cache.Archives) != 1 {
		t.Fatalf("expected exactly one Archives cache entry, got %d", len(rp.cache.Archives))
	}
}

func TestMapExtrasPolicyBothBundlesAndWritesSeparately(t *testing.T) {
	policy, alsoSeparate := mapExtrasPolicy(manifest.ExtrasBoth)
	if policy != archive.ExtrasBundled {
		t.Fatalf("expected ExtrasBoth to map to a bundled archive policy, got %v", policy)
	}
	if !alsoSeparate {
		t.Fatal("expected ExtrasBoth to also request separately-written extras")
	}
}

func TestMapExtrasPolicyPassesThroughSimpleCases(t *testing.T) {
	cases := map[manifest.ExtrasPolicy]archive.ExtrasPolicy{
		manifest.ExtrasDisabled: archive.ExtrasDisabled,
		manifest.ExtrasBundled:  archive.ExtrasBundled,
		manifest.ExtrasSeparate: archive.ExtrasSeparate,
	}
	for in, want := range cases {
		got, alsoSeparate := mapExtrasPolicy(in)
		if got != want {
			t.Fatalf("mapExtrasPolicy(%v) = %v, want %v", in, got, want)
		}
		if alsoSeparate {
			t.Fatalf("mapExtrasPolicy(%v) unexpectedly requested a separate write too", in)
		}
	}
}

func TestSanitizeFilenameReplacesUnsafeCharacters(t *testing.T) {
	got := sanitizeFilename(`weird:/name*?"<>|.mp3`)
	for _, bad := range []string{":", "/", "*", "?", `"`, "<", ">", "|"} {
		if strings.Contains(got, bad) {
			t.Fatalf("sanitizeFilename left unsafe character %q in %q", bad, got)
		}
	}
}
