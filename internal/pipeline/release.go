package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tonearm/internal/archive"
	"tonearm/internal/audioformat"
	"tonearm/internal/builderr"
	"tonearm/internal/cache"
	"tonearm/internal/catalogmodel"
	"tonearm/internal/config"
	"tonearm/internal/constants"
	"tonearm/internal/cover"
	"tonearm/internal/downloadformat"
	"tonearm/internal/hashx"
	"tonearm/internal/imaging"
	"tonearm/internal/logger"
	"tonearm/internal/manifest"
	"tonearm/internal/sourcefile"
	"tonearm/internal/tagmap"
	"tonearm/internal/transcode"
)

// releaseProcessor renders and writes every asset belonging to one
// release: the cover (real or procedural), each track's streaming/download
// renditions, and the release's archive(s).
type releaseProcessor struct {
	cfg        *config.Config
	log        *logger.Logger
	cache      *cache.Cache
	store      *cache.Store
	transcoder transcode.Transcoder
	catalog    *catalogmodel.Catalog
	salt       string
	errs       *builderr.Accumulator
	begin      time.Time

	maxTracksInCatalog int
}

// artistNames resolves a list of artist handles to their display names.
func (rp *releaseProcessor) artistNames(ids []catalogmodel.ArtistID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = rp.catalog.Artist(id).Name
	}
	return names
}

// albumArtistOmitted reports whether rel's album_artist tag carries no
// information: its main artists are unknown, or every track is performed
// by exactly the release's main artist set (tagmap.RewriteInputs doc).
func (rp *releaseProcessor) albumArtistOmitted(rel *catalogmodel.Release) bool {
	if len(rel.MainArtistIDs) == 0 {
		return true
	}
	main := make(map[catalogmodel.ArtistID]bool, len(rel.MainArtistIDs))
	for _, id := range rel.MainArtistIDs {
		main[id] = true
	}
	for _, trackID := range rel.TrackIDs {
		track := rp.catalog.Track(trackID)
		if len(track.ArtistIDs) != len(main) {
			return false
		}
		for _, id := range track.ArtistIDs {
			if !main[id] {
				return false
			}
		}
	}
	return true
}

// coverInfo is the effective cover image resolved for tag-embedding
// purposes, at either release or track scope.
type coverInfo struct {
	absPath  string
	hash     hashx.Hash
	hasCover bool
}

// resolveTagCover resolves the cover used for audio tag embedding: a
// track's own cover overrides the release cover, which in turn is absent
// entirely when the release uses a procedural cover (those are a
// site-display asset, not embedded into track tags — see DESIGN.md).
func (rp *releaseProcessor) resolveTagCover(rel *catalogmodel.Release, track *catalogmodel.Track) (coverInfo, error) {
	described := track.Cover
	if described == nil {
		described = rel.Cover
	}
	if described == nil {
		return coverInfo{}, nil
	}

	abs := filepath.Join(rp.cfg.CatalogDir, described.RelPath)
	h, err := sourcefile.NewSourceHash(abs)
	if err != nil {
		return coverInfo{}, fmt.Errorf("hashing cover %s: %w", described.RelPath, err)
	}
	return coverInfo{absPath: abs, hash: h.Value, hasCover: true}, nil
}

// writeReleaseCover resolves and writes a release's cover images into the
// build directory: real-cover variants via internal/imaging, or a
// deterministic procedural cover via internal/cover when the release has
// none of its own (spec §4.7). Procedural covers are a site-display asset
// only: they are never tag-embedded or bundled into a download archive,
// since nothing in the catalog names a real source file for them.
func (rp *releaseProcessor) writeReleaseCover(rel *catalogmodel.Release) error {
	slug := releaseSlug(rel)

	if rel.Cover != nil {
		fileMeta, err := sourcefile.NewFileMeta(rp.cfg.CatalogDir, rel.Cover.RelPath)
		if err != nil {
			return fmt.Errorf("reading cover file metadata: %w", err)
		}
		abs := filepath.Join(rp.cfg.CatalogDir, rel.Cover.RelPath)
		img, _, err := rp.cache.ReviveOrCreateImage(fileMeta, func() (sourcefile.SourceHash, error) {
			return sourcefile.NewSourceHash(abs)
		})
		if err != nil {
			return fmt.Errorf("hashing cover image: %w", err)
		}
		set, err := imaging.EnsureCoverAssets(img, rp.store, rp.cfg.CatalogDir, rel.Cover.RelPath)
		if err != nil {
			return fmt.Errorf("resizing cover image: %w", err)
		}
		for _, variant := range set.Variants {
			name := fmt.Sprintf("cover_%d.jpg", variant.EdgeSize)
			if err := copyToBuildDir(rp.store, variant.Asset, rp.cfg.BuildDir, filepath.Join(slug, name)); err != nil {
				return fmt.Errorf("writing %s: %w", name, err)
			}
		}
		return nil
	}

	tracks := make([]cover.TrackInput, 0, len(rel.TrackIDs))
	sourceHashes := make([]hashx.Hash, 0, len(rel.TrackIDs))
	for _, trackID := range rel.TrackIDs {
		track := rp.catalog.Track(trackID)
		transcodes := rp.cache.GetOrCreateTranscodes(track.SourceHash)
		tracks = append(tracks, cover.TrackInput{
			DurationSeconds: transcodes.SourceMeta.DurationSeconds,
			Peaks:           transcodes.SourceMeta.Peaks,
		})
		sourceHashes = append(sourceHashes, track.SourceHash.Value)
	}

	themeBase := rel.Overrides.Theme["base"]
	generators := cover.AllGenerators()
	generator := generators[uint64(hashx.String(slug))%uint64(len(generators))]

	input := cover.Input{
		ReleaseTitle:       rel.Title,
		Tracks:             tracks,
		ThemeBase:          themeBase,
		MaxTracksInCatalog: rp.maxTracksInCatalog,
	}
	signature := cover.Signature(generator, rp.maxTracksInCatalog, themeBase, sourceHashes)

	pc, existed := rp.cache.GetOrCreateProceduralCover(signature)
	if !existed {
		generated, err := cover.Generate(rp.store, generator, input, signature, rp.begin)
		if err != nil {
			return fmt.Errorf("generating procedural cover: %w", err)
		}
		*pc = generated
	}
	pc.UnmarkStale()

	for i, size := range constants.ProceduralCoverSizes {
		asset := pc.Assets()[i]
		name := fmt.Sprintf("cover_%d.png", size)
		if err := copyToBuildDir(rp.store, asset, rp.cfg.BuildDir, filepath.Join(slug, name)); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

// processRelease renders and writes every asset for one release: cover,
// every track's streaming/download renditions, and the release's
// archive(s) (spec §4.5, §4.6, §4.7, §4.9).
func (rp *releaseProcessor) processRelease(rel *catalogmodel.Release) error {
	slug := releaseSlug(rel)

	if err := rp.writeReleaseCover(rel); err != nil {
		return err
	}

	mainArtistNames := rp.artistNames(rel.MainArtistIDs)
	omitted := rp.albumArtistOmitted(rel)

	archiveMembers := make(map[downloadformat.Format][]archive.TrackMember)
	archiveSourceHashes := make([]hashx.Hash, 0, len(rel.TrackIDs))

	for index, trackID := range rel.TrackIDs {
		track := rp.catalog.Track(trackID)
		archiveSourceHashes = append(archiveSourceHashes, track.SourceHash.Value)

		sourceAbs := filepath.Join(rp.cfg.CatalogDir, track.SourcePath)
		transcodes := rp.cache.GetOrCreateTranscodes(track.SourceHash)

		sourceMeta := tagmap.SourceMeta{
			Album:          transcodes.SourceMeta.Album,
			AlbumArtists:   transcodes.SourceMeta.AlbumArtists,
			Artists:        transcodes.SourceMeta.Artists,
			Title:          transcodes.SourceMeta.Title,
			HasTrackNumber: transcodes.SourceMeta.HasTrackNumber,
			TrackNumber:    transcodes.SourceMeta.TrackNumber,
		}

		tagCover, err := rp.resolveTagCover(rel, track)
		if err != nil {
			return err
		}

		rewrite := tagmap.RewriteInputs{
			ReleaseTitle:           rel.Title,
			ReleaseMainArtistNames: mainArtistNames,
			TrackArtistNames:       rp.artistNames(track.ArtistIDs),
			TrackTitle:             track.Title,
			TrackNumber:            track.Number,
			AlbumArtistOmitted:     omitted,
			HasCover:               tagCover.hasCover,
			CoverHash:              sourcefile.SourceHash{Value: tagCover.hash},
		}
		mapping := tagmap.New(track.TagAgenda, sourceMeta, rewrite)

		trackFilenameBase := sanitizeFilename(strings.TrimSpace(fmt.Sprintf("%s %s",
			track.Overrides.TrackNumbering.Format(track.Number), track.Title)))

		renderAndWrite := func(format audioformat.Format, role string) (cache.Asset, error) {
			asset, err := transcode.Render(rp.transcoder, rp.store, transcodes, sourceAbs, format, mapping, tagCover.absPath)
			if err != nil {
				return cache.Asset{}, err
			}
			filename := trackFilenameBase + format.Extension()
			segment := hashedPathSegment(rp.salt, slug, index, format.String(), filename)
			relPath := filepath.Join(slug, fmt.Sprintf("%d", index+1), role, format.String(), segment, filename)
			if err := copyToBuildDir(rp.store, asset, rp.cfg.BuildDir, relPath); err != nil {
				return cache.Asset{}, err
			}
			return asset, nil
		}

		for _, f := range track.Overrides.StreamingQuality.Formats() {
			if _, err := renderAndWrite(f, "streaming"); err != nil {
				rp.errs.AddError(track.SourcePath, 0, "transcoding streaming format: %s", err)
				if !rp.cfg.IgnoreErrors {
					return err
				}
			}
		}

		for _, df := range track.Overrides.TrackDownloads {
			if _, err := renderAndWrite(df.AsAudioFormat(), "download"); err != nil {
				rp.errs.AddError(track.SourcePath, 0, "transcoding track download format: %s", err)
				if !rp.cfg.IgnoreErrors {
					return err
				}
			}
		}

		for _, df := range rel.Overrides.ReleaseDownloads {
			asset, err := transcode.Render(rp.transcoder, rp.store, transcodes, sourceAbs, df.AsAudioFormat(), mapping, tagCover.absPath)
			if err != nil {
				rp.errs.AddError(track.SourcePath, 0, "transcoding archive member: %s", err)
				if !rp.cfg.IgnoreErrors {
					return err
				}
				continue
			}
			member := archive.TrackMember{
				AudioPath:     rp.store.Path(asset.Filename),
				AudioFilename: trackFilenameBase + df.AsAudioFormat().Extension(),
			}
			if track.Overrides.TrackExtras {
				if track.Cover != nil {
					member.CoverPath = filepath.Join(rp.cfg.CatalogDir, track.Cover.RelPath)
				}
				for _, extra := range track.Extras {
					member.Extras = append(member.Extras, archive.MemberFile{
						SourcePath: filepath.Join(rp.cfg.CatalogDir, extra.Meta.Path),
						Filename:   extra.SanitizedFilename,
					})
				}
			}
			archiveMembers[df] = append(archiveMembers[df], member)
		}
	}

	if len(rel.Overrides.ReleaseDownloads) == 0 {
		return nil
	}

	return rp.assembleArchives(rel, archiveMembers, archiveSourceHashes)
}

// assembleArchives builds one ZIP per configured release download format
// and writes it (plus, under ExtrasBoth, the release's extras again as
// standalone files) into the build directory (spec §4.6).
func (rp *releaseProcessor) assembleArchives(rel *catalogmodel.Release, members map[downloadformat.Format][]archive.TrackMember, trackSourceHashes []hashx.Hash) error {
	slug := releaseSlug(rel)

	extrasPolicy, alsoWriteSeparate := mapExtrasPolicy(rel.Overrides.ReleaseExtras)

	var extras []archive.MemberFile
	var extraHashes []hashx.Hash
	if extrasPolicy != archive.ExtrasDisabled || alsoWriteSeparate {
		for _, extra := range rel.Extras {
			extras = append(extras, archive.MemberFile{
				SourcePath: filepath.Join(rp.cfg.CatalogDir, extra.Meta.Path),
				Filename:   extra.SanitizedFilename,
			})
			h, err := sourcefile.NewSourceHash(filepath.Join(rp.cfg.CatalogDir, extra.Meta.Path))
			if err != nil {
				return fmt.Errorf("hashing release extra %s: %w", extra.Meta.Path, err)
			}
			extraHashes = append(extraHashes, h.Value)
		}
	}

	var coverAbs string
	var coverHash hashx.Hash
	hasCover := rel.Cover != nil
	if hasCover {
		coverAbs = filepath.Join(rp.cfg.CatalogDir, rel.Cover.RelPath)
		h, err := sourcefile.NewSourceHash(coverAbs)
		if err != nil {
			return fmt.Errorf("hashing release cover: %w", err)
		}
		coverHash = h.Value
	}

	signature := archive.Signature(trackSourceHashes, coverHash, hasCover, extrasPolicy, extraHashes)
	archives := rp.cache.GetOrCreateArchives(signature)

	for _, df := range rel.Overrides.ReleaseDownloads {
		tracks := members[df]
		if len(tracks) == 0 {
			continue
		}

		if existing, ok := archives.FindFormat(df); ok {
			existing.Asset.UnmarkStale()
			if err := rp.writeArchiveAsset(rel, df, existing.Asset); err != nil {
				return err
			}
			continue
		}

		asset, err := archive.Assemble(rp.store, archive.Request{
			Tracks:         tracks,
			CoverPath:      coverAbs,
			Extras:         extras,
			ExtrasPolicy:   extrasPolicy,
			ExtrasDirLabel: "extras",
		})
		if err != nil {
			return fmt.Errorf("assembling %s archive: %w", df.UserLabel(), err)
		}
		archives.Formats = append(archives.Formats, cache.ArchiveFormat{Format: df, Asset: asset})

		if err := rp.writeArchiveAsset(rel, df, asset); err != nil {
			return err
		}
	}

	if alsoWriteSeparate {
		for _, extra := range extras {
			segment := hashedPathSegment(rp.salt, slug, -1, "extras", extra.Filename)
			relPath := filepath.Join(slug, "extras", segment, extra.Filename)
			if err := copyFileToBuildDir(extra.SourcePath, rp.cfg.BuildDir, relPath); err != nil {
				return fmt.Errorf("writing separate extra %s: %w", extra.Filename, err)
			}
		}
	}

	return nil
}

func (rp *releaseProcessor) writeArchiveAsset(rel *catalogmodel.Release, df downloadformat.Format, asset cache.Asset) error {
	slug := releaseSlug(rel)
	filename := sanitizeFilename(rel.Title) + ".zip"
	segment := hashedPathSegment(rp.salt, slug, -1, df.String(), filename)
	relPath := filepath.Join(slug, "downloads", df.Category(), segment, filename)
	return copyToBuildDir(rp.store, asset, rp.cfg.BuildDir, relPath)
}

// mapExtrasPolicy narrows manifest.ExtrasPolicy's four values down to
// archive.ExtrasPolicy's three (the ZIP assembler never needed a "both"
// concept: it only describes one archive's contents). ExtrasBoth means
// "bundle them in the ZIP, and also ship them as standalone files" — the
// ZIP side maps to ExtrasBundled, and the caller additionally writes the
// extras out unbundled.
func mapExtrasPolicy(p manifest.ExtrasPolicy) (policy archive.ExtrasPolicy, alsoWriteSeparate bool) {
	switch p {
	case manifest.ExtrasDisabled:
		return archive.ExtrasDisabled, false
	case manifest.ExtrasBundled:
		return archive.ExtrasBundled, false
	case manifest.ExtrasSeparate:
		return archive.ExtrasSeparate, false
	case manifest.ExtrasBoth:
		return archive.ExtrasBundled, true
	default:
		return archive.ExtrasDisabled, false
	}
}

// sanitizeFilename replaces characters that are unsafe as a zip/filesystem
// member name on at least one common platform.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// copyFileToBuildDir copies a plain source file (not a cache asset) into
// the build directory at relPath, atomically.
func copyFileToBuildDir(sourcePath, buildDir, relPath string) error {
	dest := filepath.Join(buildDir, relPath)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	src, err := os.Open(sourcePath)
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
