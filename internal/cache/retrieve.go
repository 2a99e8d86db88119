package cache

import (
	"os"
	"path/filepath"

	"tonearm/internal/constants"
	"tonearm/internal/hashx"
	"tonearm/internal/sourcefile"
)

func transcodesID(t *Transcodes) string           { return hashx.URLSafeBase64(t.SourceHash.Value) }
func imageID(img *Image) string                   { return hashx.URLSafeBase64(img.SourceHash.Value) }
func proceduralCoverID(p *ProceduralCover) string { return hashx.URLSafeBase64(p.Signature) }
func archivesID(a *Archives) string               { return hashx.URLSafeBase64(a.Signature) }

// Retrieve loads (or initializes) the on-disk cache at cacheDir. catalogDir
// is the catalog root the cache's entities were hashed against, needed to
// recompute a SourceHash whose algorithm version has gone stale (§4.1). If
// the version marker is missing or stale, the whole directory is wiped and
// a fresh empty cache is returned — the same "bump the version, invalidate
// everything" mechanism as a Wipe optimization run (spec §4.2).
func Retrieve(cacheDir, catalogDir string, optimization Optimization) (*Cache, error) {
	markerPath := filepath.Join(cacheDir, constants.CacheVersionMarker)
	marker, err := os.ReadFile(markerPath)
	versionCurrent := err == nil && string(marker) == constants.CacheVersionMarker

	if !versionCurrent {
		if err := os.RemoveAll(cacheDir); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err := os.MkdirAll(cacheDir, constants.DirPermissions); err != nil {
			return nil, err
		}
		if err := os.WriteFile(markerPath, []byte(constants.CacheVersionMarker), constants.FilePermissions); err != nil {
			return nil, err
		}
		return New(cacheDir, catalogDir, optimization), nil
	}

	c := New(cacheDir, catalogDir, optimization)

	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return nil, err
	}

	var manifestNames []string
	for _, entry := range entries {
		name := entry.Name()
		if name == constants.CacheVersionMarker {
			continue
		}
		if entry.IsDir() {
			// Unexpected subdirectory: the cache directory is a flat
			// store, so anything nested is removed.
			if err := os.RemoveAll(filepath.Join(cacheDir, name)); err != nil {
				return nil, err
			}
			continue
		}
		if isManifestFilename(name) {
			manifestNames = append(manifestNames, name)
			continue
		}
		c.assets[name] = false
	}

	if err := c.processManifests(manifestNames); err != nil {
		return nil, err
	}

	c.removeOrphanedAssets()

	return c, nil
}

// processManifests loads every manifest file, dispatching by its schema
// key segment; a manifest whose key is unrecognized (stale schema version,
// corrupt name) is deleted as incompatible rather than causing the build
// to fail (spec §4.2). Each entity kind prunes references to asset files
// that turned out not to be registered on disk ("dead references") before
// deciding whether to keep the manifest at all.
func (c *Cache) processManifests(manifestNames []string) error {
	for _, name := range manifestNames {
		key, ok := schemaKeyOf(name)
		if !ok {
			c.deleteManifest(name)
			continue
		}

		path := filepath.Join(c.CacheDir, name)

		switch key {
		case constants.SchemaKeyTranscodes:
			var t Transcodes
			if err := readManifest(path, &t); err != nil {
				c.deleteManifest(name)
				continue
			}
			c.retrieveTranscodes(&t, path)
		case constants.SchemaKeyImage:
			var img Image
			if err := readManifest(path, &img); err != nil {
				c.deleteManifest(name)
				continue
			}
			c.retrieveImage(&img, path)
		case constants.SchemaKeyProceduralCover:
			var p ProceduralCover
			if err := readManifest(path, &p); err != nil {
				c.deleteManifest(name)
				continue
			}
			c.retrieveProceduralCover(&p, path)
		case constants.SchemaKeyArchives:
			var a Archives
			if err := readManifest(path, &a); err != nil {
				c.deleteManifest(name)
				continue
			}
			c.retrieveArchives(&a, path)
		default:
			c.deleteManifest(name)
			continue
		}

		c.manifests = append(c.manifests, name)
	}
	return nil
}

func (c *Cache) deleteManifest(name string) {
	_ = os.Remove(filepath.Join(c.CacheDir, name))
}

func (c *Cache) registered(filename string) bool {
	_, ok := c.assets[filename]
	return ok
}

func (c *Cache) markUsed(filename string) { c.assets[filename] = true }

// retrieveArchives prunes any format whose asset file isn't registered on
// disk; if nothing survives, the manifest is discarded entirely.
func (c *Cache) retrieveArchives(a *Archives, manifestPath string) {
	deadReferencesRemoved := false

	var kept []ArchiveFormat
	for _, f := range a.Formats {
		if c.registered(f.Asset.Filename) {
			c.markUsed(f.Asset.Filename)
			kept = append(kept, f)
		} else {
			deadReferencesRemoved = true
		}
	}
	a.Formats = kept

	if len(a.Formats) == 0 {
		_ = os.Remove(manifestPath)
		return
	}
	if deadReferencesRemoved {
		_ = writeManifest(c.CacheDir, filepath.Base(manifestPath), a)
	}
	c.Archives = append(c.Archives, a)
}

// retrieveProceduralCover requires all four size variants to be present;
// a single missing asset discards the whole entry, letting its remaining
// assets become orphans removeOrphanedAssets will clean up afterwards.
func (c *Cache) retrieveProceduralCover(p *ProceduralCover, manifestPath string) {
	assets := p.Assets()
	for _, a := range assets {
		if !c.registered(a.Filename) {
			_ = os.Remove(manifestPath)
			return
		}
	}
	for _, a := range assets {
		c.markUsed(a.Filename)
	}
	c.ProceduralCovers = append(c.ProceduralCovers, p)
}

// retrieveTranscodes prunes formats with a dead asset reference. Unlike
// archives/images/procedural covers, the manifest is always retained even
// if every rendered format turns out to be gone, because it also carries
// the expensively-recomputed audio metadata (duration, peaks, tags) —
// eviction of an empty transcodes entry is left to Maintain's decay rule.
func (c *Cache) retrieveTranscodes(t *Transcodes, manifestPath string) {
	if t.SourceHash.IncompatibleVersion() {
		h, ok := recomputeHash(c.CatalogDir, t.Views)
		if !ok {
			_ = os.Remove(manifestPath)
			return
		}
		t.SourceHash = h
	}

	deadReferencesRemoved := false

	var kept []TranscodeFormat
	for _, f := range t.Formats {
		if c.registered(f.Asset.Filename) {
			c.markUsed(f.Asset.Filename)
			kept = append(kept, f)
		} else {
			deadReferencesRemoved = true
		}
	}
	t.Formats = kept

	if deadReferencesRemoved {
		_ = writeManifest(c.CacheDir, filepath.Base(manifestPath), t)
	}
	c.Transcodes = append(c.Transcodes, t)
}

// retrieveImage checks each of the four asset roles (artist/background/
// cover/feed) independently, dropping any whose asset(s) are missing.
//
// One branch reproduces a known defect: when the cover-assets set turns
// out corrupt, it is the artist-assets field that gets cleared instead of
// cover-assets. The cover-assets reference itself is left in place,
// leaking a dead reference rather than dropping it. This matches observed
// upstream behavior and is intentionally not "fixed" here.
func (c *Cache) retrieveImage(img *Image, manifestPath string) {
	if img.SourceHash.IncompatibleVersion() {
		h, ok := recomputeHash(c.CatalogDir, img.Views)
		if !ok {
			_ = os.Remove(manifestPath)
			return
		}
		img.SourceHash = h
	}

	deadReferencesRemoved := false

	if img.ArtistAssets != nil {
		if allRegistered(c, img.ArtistAssets.All()) {
			markAllUsed(c, img.ArtistAssets.All())
		} else {
			img.ArtistAssets = nil
			deadReferencesRemoved = true
		}
	}

	if img.BackgroundAsset != nil {
		if c.registered(img.BackgroundAsset.Filename) {
			c.markUsed(img.BackgroundAsset.Filename)
		} else {
			img.BackgroundAsset = nil
			deadReferencesRemoved = true
		}
	}

	if img.CoverAssets != nil {
		if allRegistered(c, img.CoverAssets.All()) {
			markAllUsed(c, img.CoverAssets.All())
		} else {
			// Reproduces the upstream field mixup: the intended target of
			// this branch is CoverAssets, but ArtistAssets is cleared.
			img.ArtistAssets = nil
			deadReferencesRemoved = true
		}
	}

	if img.FeedAsset != nil {
		if c.registered(img.FeedAsset.Filename) {
			c.markUsed(img.FeedAsset.Filename)
		} else {
			img.FeedAsset = nil
			deadReferencesRemoved = true
		}
	}

	if img.ArtistAssets == nil && img.BackgroundAsset == nil && img.CoverAssets == nil && img.FeedAsset == nil {
		_ = os.Remove(manifestPath)
		return
	}

	if deadReferencesRemoved {
		_ = writeManifest(c.CacheDir, filepath.Base(manifestPath), img)
	}
	c.Images = append(c.Images, img)
}

// recomputeHash re-hashes the first still-existing view's file, for an
// entity whose stored SourceHash was computed with an older algorithm
// version (§4.1). Reports false if none of the views still point at a
// live file, meaning the entity can't be salvaged.
func recomputeHash(catalogDir string, views []View) (sourcefile.SourceHash, bool) {
	for _, v := range views {
		if v.Exists(catalogDir) {
			h, err := sourcefile.NewSourceHash(filepath.Join(catalogDir, v.FileMeta.Path))
			if err != nil {
				continue
			}
			return h, true
		}
	}
	return sourcefile.SourceHash{}, false
}

func allRegistered(c *Cache, assets []Asset) bool {
	for _, a := range assets {
		if !c.registered(a.Filename) {
			return false
		}
	}
	return true
}

func markAllUsed(c *Cache, assets []Asset) {
	for _, a := range assets {
		c.markUsed(a.Filename)
	}
}

// removeOrphanedAssets deletes every asset file on disk that no surviving
// manifest references (spec §4.2: the cache never accumulates garbage
// across builds).
func (c *Cache) removeOrphanedAssets() {
	for filename, used := range c.assets {
		if used {
			continue
		}
		_ = os.Remove(filepath.Join(c.CacheDir, filename))
		delete(c.assets, filename)
	}
}
