package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tonearm/internal/audioformat"
	"tonearm/internal/hashx"
	"tonearm/internal/sourcefile"
)

func TestObsoleteNilNeverObsolete(t *testing.T) {
	c := New(t.TempDir(), t.TempDir(), Default)
	if c.Obsolete(time.Now(), nil) {
		t.Fatal("a nil stale mark must never be considered obsolete")
	}
}

func TestObsoleteDefaultRespectsDecayWindow(t *testing.T) {
	c := New(t.TempDir(), t.TempDir(), Default)
	now := time.Now()

	recentlyStale := now.Add(-1 * time.Hour)
	if c.Obsolete(now, &recentlyStale) {
		t.Fatal("recently-stale entry should survive the decay window")
	}

	longStale := now.Add(-48 * time.Hour)
	if !c.Obsolete(now, &longStale) {
		t.Fatal("entry stale for 48h should be obsolete under the 24h decay window")
	}
}

func TestObsoleteImmediateAlwaysEvicts(t *testing.T) {
	c := New(t.TempDir(), t.TempDir(), Immediate)
	now := time.Now()
	justStale := now
	if !c.Obsolete(now, &justStale) {
		t.Fatal("Immediate optimization should evict as soon as something is marked stale")
	}
}

func TestObsoleteManualNeverEvicts(t *testing.T) {
	c := New(t.TempDir(), t.TempDir(), Manual)
	now := time.Now()
	longStale := now.Add(-1000 * time.Hour)
	if c.Obsolete(now, &longStale) {
		t.Fatal("Manual optimization must never auto-evict")
	}
}

func TestStorePutIsContentAddressedAndIdempotent(t *testing.T) {
	s := NewStore(t.TempDir())
	asset, err := s.Put([]byte("hello"), ".bin")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !s.Exists(asset) {
		t.Fatal("expected asset file to exist after Put")
	}

	asset2, err := s.Put([]byte("hello"), ".bin")
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if asset.Filename != asset2.Filename {
		t.Fatalf("expected identical content to produce identical filename, got %q vs %q", asset.Filename, asset2.Filename)
	}
}

func TestStoreRemoveToleratesMissingFile(t *testing.T) {
	s := NewStore(t.TempDir())
	if err := s.Remove(Asset{Filename: "nonexistent.bin"}); err != nil {
		t.Fatalf("expected Remove of a missing asset to succeed, got %v", err)
	}
}

func TestMaintainEvictsObsoleteTranscodeFormat(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, t.TempDir(), Default)

	sourceHash := sourcefile.SourceHash{Value: hashx.String("track.flac"), Version: sourcefile.HashAlgorithmVersion}
	transcodes := c.GetOrCreateTranscodes(sourceHash)

	store := NewStore(dir)
	asset, err := store.Put([]byte("mp3 bytes"), ".mp3")
	if err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	longStale := time.Now().Add(-48 * time.Hour)
	transcodes.Formats = append(transcodes.Formats, TranscodeFormat{
		Format:       audioformat.Mp3VbrV5,
		TagSignature: hashx.String("tags"),
		Asset:        Asset{Filename: asset.Filename, MarkedStale: &longStale},
	})

	if err := c.Maintain(time.Now()); err != nil {
		t.Fatalf("Maintain: %v", err)
	}

	if len(c.Transcodes) != 0 {
		t.Fatalf("expected the transcodes entry to be fully evicted once its only format decays, got %d entries", len(c.Transcodes))
	}
	if store.Exists(asset) {
		t.Fatal("expected the obsolete asset file to be removed")
	}
}

func TestMaintainKeepsNonObsoleteFormat(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, t.TempDir(), Default)

	sourceHash := sourcefile.SourceHash{Value: hashx.String("track2.flac"), Version: sourcefile.HashAlgorithmVersion}
	transcodes := c.GetOrCreateTranscodes(sourceHash)

	store := NewStore(dir)
	asset, err := store.Put([]byte("mp3 bytes 2"), ".mp3")
	if err != nil {
		t.Fatalf("seed asset: %v", err)
	}

	recentlyStale := time.Now().Add(-1 * time.Hour)
	transcodes.Formats = append(transcodes.Formats, TranscodeFormat{
		Format:       audioformat.Mp3VbrV5,
		TagSignature: hashx.String("tags"),
		Asset:        Asset{Filename: asset.Filename, MarkedStale: &recentlyStale},
	})

	if err := c.Maintain(time.Now()); err != nil {
		t.Fatalf("Maintain: %v", err)
	}

	if len(c.Transcodes) != 1 || len(c.Transcodes[0].Formats) != 1 {
		t.Fatalf("expected the recently-stale format to survive, got %+v", c.Transcodes)
	}
	if !store.Exists(asset) {
		t.Fatal("expected the surviving asset file to remain on disk")
	}
}

func TestRetrieveWipesOnMissingVersionMarker(t *testing.T) {
	dir := t.TempDir()
	c, err := Retrieve(dir, t.TempDir(), Default)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(c.Archives)+len(c.Images)+len(c.ProceduralCovers)+len(c.Transcodes) != 0 {
		t.Fatal("expected a brand new cache directory to retrieve empty")
	}
	if _, err := os.Stat(filepath.Join(dir, "cache1.marker")); err != nil {
		t.Fatalf("expected the version marker to be written on first retrieve: %v", err)
	}
}

func TestRetrieveRemovesOrphanedAssetFiles(t *testing.T) {
	dir := t.TempDir()
	catalogDir := t.TempDir()
	c, err := Retrieve(dir, catalogDir, Default)
	if err != nil {
		t.Fatalf("first Retrieve: %v", err)
	}
	_ = c

	store := NewStore(dir)
	orphan, err := store.Put([]byte("nobody references me"), ".bin")
	if err != nil {
		t.Fatalf("seed orphan asset: %v", err)
	}

	reloaded, err := Retrieve(dir, catalogDir, Default)
	if err != nil {
		t.Fatalf("second Retrieve: %v", err)
	}
	_ = reloaded

	if store.Exists(orphan) {
		t.Fatal("expected an unreferenced asset file to be removed as an orphan on retrieve")
	}
}

func TestRetrieveImageCorruptCoverAssetsClearsArtistAssetsInstead(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	// Write the cache version marker first: Retrieve wipes a directory
	// that lacks it.
	if _, err := Retrieve(dir, t.TempDir(), Default); err != nil {
		t.Fatalf("initial Retrieve: %v", err)
	}

	artistAsset, err := store.Put([]byte("artist image bytes"), ".jpg")
	if err != nil {
		t.Fatalf("seed artist asset: %v", err)
	}
	coverAsset, err := store.Put([]byte("cover image bytes"), ".jpg")
	if err != nil {
		t.Fatalf("seed cover asset: %v", err)
	}

	img := &Image{
		SourceHash: sourcefile.SourceHash{Value: hashx.String("cover.jpg"), Version: sourcefile.HashAlgorithmVersion},
		ArtistAssets: &ArtistAssetSet{
			Variants: []ArtistVariant{{Width: 320, Height: 320, Asset: artistAsset}},
		},
		CoverAssets: &CoverAssetSet{
			Variants: []CoverVariant{
				{EdgeSize: 160, Asset: coverAsset},
				// References a cover variant asset that was never
				// actually written to the store, simulating a cache
				// manifest left over from a missing/corrupted file.
				{EdgeSize: 320, Asset: Asset{Filename: "missing-variant.jpg"}},
			},
		},
	}

	manifestName := manifestFilename("image2", imageID(img))
	if err := writeManifest(dir, manifestName, img); err != nil {
		t.Fatalf("writeManifest: %v", err)
	}

	c, err := Retrieve(dir, t.TempDir(), Default)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(c.Images) != 1 {
		t.Fatalf("expected the image manifest to survive (cover_assets reference kept), got %d images", len(c.Images))
	}
	retrieved := c.Images[0]

	if retrieved.ArtistAssets != nil {
		t.Fatal("expected artist_assets to be cleared, reproducing the upstream field-mixup defect")
	}
	if retrieved.CoverAssets == nil {
		t.Fatal("expected cover_assets to remain set (the defect leaves the corrupt reference in place)")
	}
}

func TestRetrieveRoundTripsPersistedManifest(t *testing.T) {
	dir := t.TempDir()
	catalogDir := t.TempDir()
	c, err := Retrieve(dir, catalogDir, Default)
	if err != nil {
		t.Fatalf("first Retrieve: %v", err)
	}

	sourceHash := sourcefile.SourceHash{Value: hashx.String("round-trip.flac"), Version: sourcefile.HashAlgorithmVersion}
	transcodes := c.GetOrCreateTranscodes(sourceHash)
	store := NewStore(dir)
	asset, err := store.Put([]byte("mp3 payload"), ".mp3")
	if err != nil {
		t.Fatalf("seed asset: %v", err)
	}
	transcodes.Formats = append(transcodes.Formats, TranscodeFormat{
		Format:       audioformat.Mp3VbrV5,
		TagSignature: hashx.String("tags"),
		Asset:        asset,
	})
	if err := c.Maintain(time.Now()); err != nil {
		t.Fatalf("Maintain: %v", err)
	}

	reloaded, err := Retrieve(dir, catalogDir, Default)
	if err != nil {
		t.Fatalf("second Retrieve: %v", err)
	}
	if len(reloaded.Transcodes) != 1 {
		t.Fatalf("expected persisted transcodes entry to round-trip, got %d", len(reloaded.Transcodes))
	}
	if reloaded.Transcodes[0].SourceHash.Value != sourceHash.Value {
		t.Fatalf("expected source hash to round-trip, got %v", reloaded.Transcodes[0].SourceHash)
	}
	if !store.Exists(asset) {
		t.Fatal("expected the referenced asset to survive the second retrieve")
	}
}
