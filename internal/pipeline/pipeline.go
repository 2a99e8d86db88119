// Package pipeline wires catalog reading, transcoding, image resizing,
// procedural cover generation and archive assembly into one build: read
// the catalog, render whatever asset each track/release needs, write the
// results into the build directory under hashed, salted paths, then run
// cache maintenance. Grounded on original_source/src/main.rs's build
// orchestration, generalized to Go the way the teacher's
// cmd/silobang/main.go sequences numbered setup steps against a *logger.Logger.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"tonearm/internal/audioformat"
	"tonearm/internal/audiometa"
	"tonearm/internal/builderr"
	"tonearm/internal/cache"
	"tonearm/internal/catalogmodel"
	"tonearm/internal/catalogreader"
	"tonearm/internal/config"
	"tonearm/internal/logger"
	"tonearm/internal/transcode"
)

// Pipeline runs one build against a resolved Config.
type Pipeline struct {
	cfg        *config.Config
	log        *logger.Logger
	transcoder transcode.Transcoder
}

// New constructs a Pipeline, defaulting to the system ffmpeg-backed
// Transcoder.
func New(cfg *config.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log, transcoder: transcode.NewExecTranscoder()}
}

// NewWithTranscoder constructs a Pipeline against an explicit Transcoder,
// bypassing the system ffmpeg binary — for driving a full Build() from
// tests that can't assume ffmpeg is installed.
func NewWithTranscoder(cfg *config.Config, log *logger.Logger, tc transcode.Transcoder) *Pipeline {
	return &Pipeline{cfg: cfg, log: log, transcoder: tc}
}

// decoders returns the full decoder set the pipeline reads source audio
// with: the built-in WAV decoder plus an ffmpeg-backed decoder for every
// other family (internal/audiometa and internal/catalogreader only ship
// the WAV one directly, per spec §1 Non-goals).
func decoders() map[audioformat.Family]audiometa.Decoder {
	d := catalogreader.DefaultDecoders()
	ffmpeg := NewFFmpegDecoder()
	for _, family := range []audioformat.Family{
		audioformat.FamilyAac,
		audioformat.FamilyAiff,
		audioformat.FamilyAlac,
		audioformat.FamilyFlac,
		audioformat.FamilyMp3,
		audioformat.FamilyOggVorbis,
		audioformat.FamilyOpus,
	} {
		d[family] = ffmpeg
	}
	return d
}

// Build runs one full build: retrieve the cache, mark everything stale,
// read the catalog, render every release's assets, then run cache
// maintenance so entries still unused after the decay window are evicted
// (spec §3 Lifecycle, §5 Concurrency & Resource Model — single-threaded,
// deterministic order).
func (p *Pipeline) Build() error {
	buildBegin := time.Now()

	p.log.SetPrefix("cache")
	p.log.Info("retrieving cache at %s", p.cfg.CacheDir)
	c, err := cache.Retrieve(p.cfg.CacheDir, p.cfg.CatalogDir, p.cfg.Optimization())
	if err != nil {
		return fmt.Errorf("retrieving cache: %w", err)
	}
	c.MarkAllStale(buildBegin)

	salt, err := resolveSalt(p.cfg)
	if err != nil {
		return fmt.Errorf("resolving URL salt: %w", err)
	}

	errs := &builderr.Accumulator{}
	opts := catalogreader.Options{
		BuildDir:     p.cfg.BuildDir,
		CacheDir:     p.cfg.CacheDir,
		IgnoreErrors: p.cfg.IgnoreErrors,
	}

	p.log.SetPrefix("catalog")
	p.log.Info("reading catalog at %s", p.cfg.CatalogDir)
	catalog, err := catalogreader.Read(p.cfg.CatalogDir, c, decoders(), opts, errs)
	if err != nil {
		if _, fatal := err.(*builderr.Fatal); fatal {
			p.log.Error("fatal error: %v", err)
		} else {
			p.log.Error("build aborted: %v", err)
		}
		return err
	}
	for _, w := range errs.Warnings() {
		p.log.Warn("%s", w.String())
	}

	if err := os.MkdirAll(p.cfg.BuildDir, 0755); err != nil {
		return fmt.Errorf("creating build directory: %w", err)
	}

	store := cache.NewStore(p.cfg.CacheDir)
	rp := &releaseProcessor{
		cfg:        p.cfg,
		log:        p.log,
		cache:      c,
		store:      store,
		transcoder: p.transcoder,
		catalog:    catalog,
		salt:       salt,
		errs:       errs,
		begin:      buildBegin,
	}

	maxTracksInCatalog := 0
	for _, rel := range catalog.Releases {
		if len(rel.TrackIDs) > maxTracksInCatalog {
			maxTracksInCatalog = len(rel.TrackIDs)
		}
	}
	rp.maxTracksInCatalog = maxTracksInCatalog

	p.log.SetPrefix("transcode")
	for _, rel := range catalog.Releases {
		p.log.Info("processing release %q (%s)", rel.Title, rel.Permalink.Slug)
		if err := rp.processRelease(rel); err != nil {
			if p.cfg.IgnoreErrors {
				p.log.Error("release %q failed, continuing (ignore_errors): %v", rel.Title, err)
				continue
			}
			return fmt.Errorf("processing release %q: %w", rel.Title, err)
		}
	}

	p.log.SetPrefix("cache")
	p.log.Info("maintaining cache")
	if err := c.Maintain(buildBegin); err != nil {
		return fmt.Errorf("maintaining cache: %w", err)
	}

	return nil
}

// copyToBuildDir copies a cache-stored asset into the build directory at
// relPath, creating parent directories as needed. Assets are written
// atomically (temp file + rename) so an interrupted build never leaves a
// half-written file behind (spec §5: "safe to Ctrl-C").
func copyToBuildDir(store *cache.Store, asset cache.Asset, buildDir, relPath string) error {
	dest := filepath.Join(buildDir, relPath)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	src, err := os.Open(store.Path(asset.Filename))
	if err != nil {
		return err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tonearm-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, dest)
}

// releaseSlug returns a release's directory name.
func releaseSlug(rel *catalogmodel.Release) string { return rel.Permalink.Slug }
