package cache

import (
	"os"
	"path/filepath"
	"time"

	"tonearm/internal/constants"
)

// Maintain sweeps every cached entity, evicting whatever Obsolete(now, ...)
// and persisting survivors, mirroring cache.rs's maintain dispatch. A Wipe
// optimization short-circuits straight to removing the entire cache
// directory (spec §4.2).
func (c *Cache) Maintain(buildBegin time.Time) error {
	if c.Optimization == Wipe {
		return c.wipe()
	}

	if err := c.maintainTranscodes(buildBegin); err != nil {
		return err
	}
	if err := c.maintainImages(buildBegin); err != nil {
		return err
	}
	if err := c.maintainProceduralCovers(buildBegin); err != nil {
		return err
	}
	if err := c.maintainArchives(buildBegin); err != nil {
		return err
	}

	if c.Optimization == Manual {
		c.reportStale()
	}

	return nil
}

func (c *Cache) wipe() error {
	if err := os.RemoveAll(c.CacheDir); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(c.CacheDir, constants.DirPermissions); err != nil {
		return err
	}
	markerPath := filepath.Join(c.CacheDir, constants.CacheVersionMarker)
	if err := os.WriteFile(markerPath, []byte(constants.CacheVersionMarker), constants.FilePermissions); err != nil {
		return err
	}
	c.Archives = nil
	c.Images = nil
	c.ProceduralCovers = nil
	c.Transcodes = nil
	c.assets = make(map[string]bool)
	c.manifests = nil
	return nil
}

func (c *Cache) store() *Store { return NewStore(c.CacheDir) }

func (c *Cache) deleteAsset(a Asset) {
	if a.Filename == "" {
		return
	}
	_ = c.store().Remove(a)
}

func (c *Cache) maintainTranscodes(buildBegin time.Time) error {
	var survivors []*Transcodes
	for _, t := range c.Transcodes {
		var keptViews []View
		for _, v := range t.Views {
			if c.Obsolete(buildBegin, v.MarkedStale) {
				continue
			}
			keptViews = append(keptViews, v)
		}
		t.Views = keptViews

		var keptFormats []TranscodeFormat
		for _, f := range t.Formats {
			if c.Obsolete(buildBegin, f.Asset.MarkedStale) {
				c.deleteAsset(f.Asset)
				continue
			}
			keptFormats = append(keptFormats, f)
		}
		t.Formats = keptFormats

		if len(t.Views) == 0 && len(t.Formats) == 0 {
			c.deleteManifest(manifestFilename(constants.SchemaKeyTranscodes, transcodesID(t)))
			continue
		}
		if err := writeManifest(c.CacheDir, manifestFilename(constants.SchemaKeyTranscodes, transcodesID(t)), t); err != nil {
			return err
		}
		survivors = append(survivors, t)
	}
	c.Transcodes = survivors
	return nil
}

func (c *Cache) maintainImages(buildBegin time.Time) error {
	var survivors []*Image
	for _, img := range c.Images {
		var keptViews []View
		for _, v := range img.Views {
			if c.Obsolete(buildBegin, v.MarkedStale) {
				continue
			}
			keptViews = append(keptViews, v)
		}
		img.Views = keptViews

		keepContainer := false

		if img.CoverAssets != nil {
			if c.Obsolete(buildBegin, img.CoverAssets.MarkedStale) {
				for _, v := range img.CoverAssets.Variants {
					c.deleteAsset(v.Asset)
				}
				img.CoverAssets = nil
			} else {
				keepContainer = true
			}
		}
		if img.ArtistAssets != nil {
			if c.Obsolete(buildBegin, img.ArtistAssets.MarkedStale) {
				for _, v := range img.ArtistAssets.Variants {
					c.deleteAsset(v.Asset)
				}
				img.ArtistAssets = nil
			} else {
				keepContainer = true
			}
		}
		if img.BackgroundAsset != nil {
			if c.Obsolete(buildBegin, img.BackgroundAsset.MarkedStale) {
				c.deleteAsset(*img.BackgroundAsset)
				img.BackgroundAsset = nil
			} else {
				keepContainer = true
			}
		}
		if img.FeedAsset != nil {
			if c.Obsolete(buildBegin, img.FeedAsset.MarkedStale) {
				c.deleteAsset(*img.FeedAsset)
				img.FeedAsset = nil
			} else {
				keepContainer = true
			}
		}

		if !keepContainer && len(img.Views) == 0 {
			c.deleteManifest(manifestFilename(constants.SchemaKeyImage, imageID(img)))
			continue
		}
		if err := writeManifest(c.CacheDir, manifestFilename(constants.SchemaKeyImage, imageID(img)), img); err != nil {
			return err
		}
		survivors = append(survivors, img)
	}
	c.Images = survivors
	return nil
}

func (c *Cache) maintainProceduralCovers(buildBegin time.Time) error {
	var survivors []*ProceduralCover
	for _, p := range c.ProceduralCovers {
		if c.Obsolete(buildBegin, p.MarkedStale) {
			for _, a := range p.Assets() {
				c.deleteAsset(a)
			}
			c.deleteManifest(manifestFilename(constants.SchemaKeyProceduralCover, proceduralCoverID(p)))
			continue
		}
		if err := writeManifest(c.CacheDir, manifestFilename(constants.SchemaKeyProceduralCover, proceduralCoverID(p)), p); err != nil {
			return err
		}
		survivors = append(survivors, p)
	}
	c.ProceduralCovers = survivors
	return nil
}

func (c *Cache) maintainArchives(buildBegin time.Time) error {
	var survivors []*Archives
	for _, a := range c.Archives {
		var keptFormats []ArchiveFormat
		for _, f := range a.Formats {
			if c.Obsolete(buildBegin, f.Asset.MarkedStale) {
				c.deleteAsset(f.Asset)
				continue
			}
			keptFormats = append(keptFormats, f)
		}
		a.Formats = keptFormats

		if len(a.Formats) == 0 {
			c.deleteManifest(manifestFilename(constants.SchemaKeyArchives, archivesID(a)))
			continue
		}
		if err := writeManifest(c.CacheDir, manifestFilename(constants.SchemaKeyArchives, archivesID(a)), a); err != nil {
			return err
		}
		survivors = append(survivors, a)
	}
	c.Archives = survivors
	return nil
}

// reportStale is the Manual-mode counterpart of eviction: it evicts
// nothing and logs nothing, leaving eviction to the operator (spec §4.2).
func (c *Cache) reportStale() {
	// Per-kind stale counts are computed by StaleCounts; no report line is
	// emitted here.
}

// StaleCounts reports, per entity kind, how many cached entries currently
// carry a stale mark.
func (c *Cache) StaleCounts(buildBegin time.Time) (archives, images, proceduralCovers, transcodes int) {
	for _, a := range c.Archives {
		for _, f := range a.Formats {
			if f.Asset.MarkedStale != nil {
				archives++
			}
		}
	}
	for _, img := range c.Images {
		if img.CoverAssets.IsStale() || img.ArtistAssets.IsStale() ||
			(img.BackgroundAsset != nil && img.BackgroundAsset.IsStale()) ||
			(img.FeedAsset != nil && img.FeedAsset.IsStale()) {
			images++
		}
	}
	for _, p := range c.ProceduralCovers {
		if p.IsStale() {
			proceduralCovers++
		}
	}
	for _, t := range c.Transcodes {
		for _, f := range t.Formats {
			if f.Asset.MarkedStale != nil {
				transcodes++
			}
		}
	}
	return
}
