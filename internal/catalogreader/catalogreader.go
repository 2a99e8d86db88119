// Package catalogreader walks a catalog directory tree and assembles the
// in-memory catalogmodel.Catalog from it: manifests (artist.eno,
// catalog.eno, release.eno, track.eno), audio/image/extra files, and the
// tag/filename-derived metadata that fills in whatever a manifest leaves
// unspecified. Grounded on original_source/src/catalog.rs (the
// read_*_dir family of functions) and fair_dir.rs (directory
// classification). Site-asset writing, label-mode/featured-artist
// resolution and every other HTML-generation concern the original mixes
// into the same read pass are left out, per SPEC_FULL.md's Non-goals.
package catalogreader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tonearm/internal/audioformat"
	"tonearm/internal/audiometa"
	"tonearm/internal/builderr"
	"tonearm/internal/cache"
	"tonearm/internal/catalogmodel"
	"tonearm/internal/manifest"
	"tonearm/internal/permalink"
	"tonearm/internal/sourcefile"
	"tonearm/internal/tracknumber"
)

// Options controls directory scanning, mirroring the manifest-level
// build.build_dir/build.cache_dir/exclude/include configuration fair_dir.rs
// reads from the top-level catalog manifest.
type Options struct {
	ExcludePatterns []string
	IncludePatterns []string
	BuildDir        string
	CacheDir        string
	IgnoreErrors    bool
}

// DefaultDecoders returns the decoder set tonearm ships without any
// external transcoder wired in. The pipeline layer adds ffmpeg-backed
// decoders (see NewFFmpegDecoder in internal/pipeline) for the formats WAV
// decoding alone can't cover.
func DefaultDecoders() map[audioformat.Family]audiometa.Decoder {
	return map[audioformat.Family]audiometa.Decoder{
		audioformat.FamilyWav: audiometa.NewWavDecoder(),
	}
}

// Reader holds the state threaded through one catalog read.
type Reader struct {
	catalog     *catalogmodel.Catalog
	cache       *cache.Cache
	catalogRoot string
	errs        *builderr.Accumulator
	decoders    map[audioformat.Family]audiometa.Decoder
	opts        Options
}

// Read walks catalogRoot and returns the populated Catalog. Non-fatal
// problems (malformed fields, skipped files, missing descriptions) are
// recorded on errs rather than returned; Read itself only fails on an
// unreadable root directory, accumulated build errors (unless
// opts.IgnoreErrors), or a permalink conflict, which is never
// suppressible.
func Read(catalogRoot string, c *cache.Cache, decoders map[audioformat.Family]audiometa.Decoder, opts Options, errs *builderr.Accumulator) (*catalogmodel.Catalog, error) {
	r := &Reader{
		catalog:     catalogmodel.New(),
		cache:       c,
		catalogRoot: catalogRoot,
		errs:        errs,
		decoders:    decoders,
		opts:        opts,
	}

	r.readCatalogDir()

	if err := errs.Err(opts.IgnoreErrors); err != nil {
		return nil, err
	}

	if err := r.claimPermalinks(); err != nil {
		return nil, err
	}

	return r.catalog, nil
}

func (r *Reader) claimPermalinks() error {
	registry := permalink.NewRegistry()
	for _, a := range r.catalog.Artists {
		if err := registry.Claim(a.Permalink.Slug, permalink.Owner{Kind: "artist", Name: a.Name}); err != nil {
			return builderr.NewFatal("%s", err)
		}
	}
	for _, rel := range r.catalog.Releases {
		owner := permalink.Owner{Kind: "release", Name: rel.Title, Path: rel.SourcePath}
		if err := registry.Claim(rel.Permalink.Slug, owner); err != nil {
			return builderr.NewFatal("%s", err)
		}
	}
	return nil
}

// readCatalogDir reads the catalog root: an optional catalog.eno (local
// options plus the starting override state) and an optional artist.eno,
// which may coexist at the root for single-artist catalogs. Every other
// entry is dispatched through readUnknownDir.
func (r *Reader) readCatalogDir() {
	sd, err := scanDir(r.catalogRoot, r.catalogRoot, r.opts, r.errs)
	if err != nil {
		r.errs.AddError(r.catalogRoot, 0, "reading catalog directory: %s", err)
		return
	}

	if sd.releaseManifest != "" {
		r.errs.AddError(sd.releaseManifest, 0, "release.eno is not valid at the catalog root; move it into a release directory")
	}
	if sd.trackManifest != "" {
		r.errs.AddError(sd.trackManifest, 0, "track.eno is not valid at the catalog root; move it into a release's track directory")
	}

	overrides := manifest.DefaultOverrides()
	local := manifest.NewLocalOptions()

	if sd.catalogManifest != "" {
		applyManifestFile(sd.catalogManifest, &local, &overrides, nil, r.errs)
	}

	if sd.artistManifest != "" {
		name, aliases, externalPage, image, artistLocal, artistOverrides := readArtistManifestFile(sd.artistManifest, r.catalogRoot, r.catalogRoot, overrides, r.errs)
		overrides = artistOverrides
		r.upsertArtist(name, aliases, externalPage, image, artistLocal)
	}

	r.catalog.Overrides = overrides
	_ = local // catalog-root local options (title/synopsis/...) have no site-facing consumer in scope; parsed only for diagnostics

	for _, dir := range sd.dirs {
		r.readUnknownDir(dir, overrides)
	}
}

// readUnknownDir dispatches a directory whose role is not yet known: an
// artist dir, a release dir (explicit via release.eno or implicit via
// bare audio files), an invalid standalone track.eno, or a plain
// pass-through directory to recurse into.
func (r *Reader) readUnknownDir(dirAbs string, parentOverrides manifest.Overrides) {
	sd, err := scanDir(dirAbs, r.catalogRoot, r.opts, r.errs)
	if err != nil {
		r.errs.AddError(dirAbs, 0, "reading directory: %s", err)
		return
	}
	if sd.catalogManifest != "" {
		r.errs.AddError(dirAbs, 0, "catalog.eno is only valid at the catalog root")
	}
	if manifestCount(sd) > 1 {
		r.errs.AddError(dirAbs, 0, "a directory may declare only one of artist.eno, release.eno or track.eno")
		return
	}

	switch {
	case sd.artistManifest != "":
		r.readArtistDir(dirAbs, parentOverrides)
	case sd.releaseManifest != "":
		r.readReleaseDir(dirAbs, parentOverrides)
	case sd.trackManifest != "":
		r.errs.AddError(dirAbs, 0, "track.eno may only appear inside a release directory's track subdirectory")
	case len(sd.audioFiles) > 0:
		r.readReleaseDir(dirAbs, parentOverrides)
	default:
		for _, dir := range sd.dirs {
			r.readUnknownDir(dir, parentOverrides)
		}
	}
}

// readArtistDir reads one artist directory: it must declare artist.eno
// and must not contain bare audio files of its own (those belong in a
// release directory), then recurses into its children with the cloned,
// manifest-mutated overrides.
func (r *Reader) readArtistDir(dirAbs string, parentOverrides manifest.Overrides) {
	sd, err := scanDir(dirAbs, r.catalogRoot, r.opts, r.errs)
	if err != nil {
		r.errs.AddError(dirAbs, 0, "reading directory: %s", err)
		return
	}
	if len(sd.audioFiles) > 0 {
		r.errs.AddError(dirAbs, 0, "audio files found directly inside an artist directory; move them into a release directory")
		return
	}
	if sd.artistManifest == "" {
		r.errs.AddError(dirAbs, 0, "expected an artist.eno manifest in this directory")
		return
	}

	name, aliases, externalPage, image, local, overrides := readArtistManifestFile(sd.artistManifest, dirAbs, r.catalogRoot, parentOverrides, r.errs)
	r.upsertArtist(name, aliases, externalPage, image, local)

	for _, dir := range sd.dirs {
		r.readUnknownDir(dir, overrides)
	}
}

func (r *Reader) upsertArtist(name string, aliases []string, externalPage string, image *manifest.DescribedImage, local manifest.LocalOptions) {
	id := r.catalog.ResolveArtistName(name)
	artist := r.catalog.Artist(id)
	artist.Automatic = false
	artist.Aliases = append(artist.Aliases, aliases...)
	artist.ExternalPage = externalPage
	artist.Image = image
	artist.Links = local.Links
	artist.More = local.More
	artist.Synopsis = local.Synopsis
	if local.Permalink != nil {
		artist.Permalink = *local.Permalink
	}
	if local.UnlistedRelease {
		artist.Unlisted = true
	}
}

// pendingTrack holds everything known about one track before the
// release's full track list is assembled — its sort position, number and
// title all depend on the *other* tracks in the release, so none of that
// can be finalized until every track in the directory has been read.
type pendingTrack struct {
	fileStem     string
	sourcePath   string
	sourceHash   sourcefile.SourceHash
	meta         audiometa.Meta
	localOptions manifest.LocalOptions
	overrides    manifest.Overrides
	cover        *manifest.DescribedImage
	extras       []catalogmodel.Extra
}

// readReleaseDir reads one release directory: an optional release.eno,
// then every subdirectory (artist dirs recurse normally, exactly one
// audio file makes a track dir, anything else is ignored with a
// warning) and every bare audio file directly inside the release dir
// (which gets no cover, no extras and no manifest of its own). Once every
// track is collected, heuristic numbering, track order, title and
// artist inference all run over the full set before the Release and its
// Tracks are materialized in the catalog.
func (r *Reader) readReleaseDir(dirAbs string, parentOverrides manifest.Overrides) {
	sd, err := scanDir(dirAbs, r.catalogRoot, r.opts, r.errs)
	if err != nil {
		r.errs.AddError(dirAbs, 0, "reading directory: %s", err)
		return
	}

	local := manifest.NewLocalOptions()
	finalizedOverrides := parentOverrides

	if sd.releaseManifest != "" {
		finalizedOverrides = parentOverrides.Clone()
		applyManifestFile(sd.releaseManifest, &local, &finalizedOverrides, nil, r.errs)
	}

	var pending []pendingTrack

	for _, dir := range sd.dirs {
		nested, err := scanDir(dir, r.catalogRoot, r.opts, r.errs)
		if err != nil {
			r.errs.AddError(dir, 0, "reading directory: %s", err)
			continue
		}
		if nested.catalogManifest != "" {
			r.errs.AddError(dir, 0, "catalog.eno is only valid at the catalog root")
			continue
		}
		if manifestCount(nested) > 1 {
			r.errs.AddError(dir, 0, "a directory may declare only one of artist.eno, release.eno or track.eno")
			continue
		}

		switch {
		case nested.artistManifest != "":
			r.readArtistDir(dir, finalizedOverrides)
		case len(nested.audioFiles) == 1:
			if t, ok := r.readTrackDir(dir, nested, finalizedOverrides); ok {
				pending = append(pending, t)
			}
		default:
			r.errs.AddWarning(dir, 0, "ignoring %s: not a valid track directory (expected exactly one audio file, found %d)", filepath.Base(dir), len(nested.audioFiles))
		}
	}

	for _, af := range sd.audioFiles {
		relPath, _ := filepath.Rel(r.catalogRoot, af.path)
		if t, ok := r.buildPendingTrack(af.path, relPath, af.family, manifest.NewLocalOptions(), finalizedOverrides); ok {
			pending = append(pending, t)
		}
	}

	if len(pending) == 0 {
		return
	}

	fileStems := make([]string, len(pending))
	for i, t := range pending {
		fileStems[i] = t.fileStem
	}
	heuristics := tracknumber.ComputeHeuristicMeta(fileStems)
	heuristicByStem := make(map[string]tracknumber.HeuristicMeta, len(heuristics))
	for i, stem := range fileStems {
		if heuristics != nil {
			heuristicByStem[stem] = heuristics[i]
		}
	}

	sortPendingTracks(pending, heuristicByStem, heuristics != nil)

	releaseID := r.catalog.NewRelease(relOf(r.catalogRoot, dirAbs))
	release := r.catalog.Release(releaseID)

	mainNames, supportNames := inferArtists(pending, finalizedOverrides)
	release.MainArtistIDs = r.catalog.ResolveArtistNames(mainNames)
	release.SupportArtistIDs = r.catalog.ResolveArtistNames(supportNames)
	for _, id := range release.MainArtistIDs {
		r.catalog.AddReleaseToArtist(id, releaseID)
	}
	for _, id := range release.SupportArtistIDs {
		r.catalog.AddReleaseToArtist(id, releaseID)
	}

	release.Title = inferReleaseTitle(local.Title, pending, filepath.Base(dirAbs))

	if local.Permalink != nil {
		release.Permalink = *local.Permalink
	} else {
		release.Permalink = permalink.Generate(release.Title)
	}

	if local.Cover != nil {
		release.Cover = local.Cover
	} else {
		release.Cover = pickBestCoverImage(sd.imageFiles, r.catalogRoot)
	}
	release.Extras = r.buildExtras(sd.imageFiles, release.Cover, sd.extraFiles)
	release.Links = local.Links
	release.More = local.More
	release.Synopsis = local.Synopsis
	release.ReleaseDate = local.ReleaseDate
	release.Unlisted = local.UnlistedRelease
	release.Overrides = finalizedOverrides

	for _, t := range pending {
		h, hasHeuristic := heuristicByStem[t.fileStem]
		trackID := r.catalog.NewTrack(releaseID)
		r.finalizeTrack(r.catalog.Track(trackID), t, h, hasHeuristic)
	}
}

// readTrackDir reads one track subdirectory of a release: an optional
// track.eno, exactly one audio file (guaranteed present by the caller),
// and its own cover/extras selected from its local image/extra files.
func (r *Reader) readTrackDir(dirAbs string, sd scannedDir, parentOverrides manifest.Overrides) (pendingTrack, bool) {
	if len(sd.dirs) > 0 {
		r.errs.AddError(dirAbs, 0, "subdirectories are not supported inside a track directory")
	}

	local := manifest.NewLocalOptions()
	overrides := parentOverrides

	if sd.trackManifest != "" {
		overrides = parentOverrides.Clone()
		applyManifestFile(sd.trackManifest, &local, &overrides, nil, r.errs)
	}

	af := sd.audioFiles[0]
	relPath, _ := filepath.Rel(r.catalogRoot, af.path)
	t, ok := r.buildPendingTrack(af.path, relPath, af.family, local, overrides)
	if !ok {
		return pendingTrack{}, false
	}

	if local.Cover != nil {
		t.cover = local.Cover
	} else {
		t.cover = pickBestCoverImage(sd.imageFiles, r.catalogRoot)
	}
	t.extras = r.buildExtras(sd.imageFiles, t.cover, sd.extraFiles)

	return t, true
}

// buildPendingTrack revives or creates the Transcodes cache entity for
// one audio file, decoding and tag-extracting it on a cache miss (the
// cache entity itself carries no decode/tag logic, per
// cache.ReviveOrCreateTranscodes's own doc comment).
func (r *Reader) buildPendingTrack(absAudioPath, relPath string, family audioformat.Family, local manifest.LocalOptions, overrides manifest.Overrides) (pendingTrack, bool) {
	fileMeta, err := sourcefile.NewFileMeta(r.catalogRoot, relPath)
	if err != nil {
		r.errs.AddError(absAudioPath, 0, "reading file metadata: %s", err)
		return pendingTrack{}, false
	}

	transcodes, created, err := r.cache.ReviveOrCreateTranscodes(fileMeta, func() (sourcefile.SourceHash, error) {
		return sourcefile.NewSourceHash(absAudioPath)
	})
	if err != nil {
		r.errs.AddError(absAudioPath, 0, "hashing audio file: %s", err)
		return pendingTrack{}, false
	}

	if created {
		decoder, ok := r.decoders[family]
		if !ok {
			r.errs.AddError(absAudioPath, 0, "decoding this audio format is not supported")
			return pendingTrack{}, false
		}
		decodeResult, err := decoder.Decode(absAudioPath)
		if err != nil {
			r.errs.AddError(absAudioPath, 0, "decoding audio: %s", err)
			return pendingTrack{}, false
		}
		meta, err := audiometa.ExtractTags(absAudioPath, family, decodeResult)
		if err != nil {
			r.errs.AddError(absAudioPath, 0, "reading tags: %s", err)
			return pendingTrack{}, false
		}
		transcodes.SourceMeta = meta
	}

	stem := strings.TrimSuffix(filepath.Base(absAudioPath), filepath.Ext(absAudioPath))

	return pendingTrack{
		fileStem:     stem,
		sourcePath:   relPath,
		sourceHash:   transcodes.SourceHash,
		meta:         transcodes.SourceMeta,
		localOptions: local,
		overrides:    overrides,
	}, true
}

// finalizeTrack writes a pendingTrack's resolved fields (which depend on
// the whole release's heuristic/sort pass) into its catalog Track entity.
func (r *Reader) finalizeTrack(track *catalogmodel.Track, t pendingTrack, heuristic tracknumber.HeuristicMeta, hasHeuristic bool) {
	track.Title = resolveTrackTitle(t.localOptions.Title, t.meta.Title, heuristic.Title, hasHeuristic, t.fileStem)

	switch {
	case t.meta.HasTrackNumber:
		track.Number = t.meta.TrackNumber
	case hasHeuristic:
		track.Number = heuristic.Number
	default:
		track.Number = 0
	}

	artistNames := t.overrides.TrackArtists
	if len(artistNames) == 0 {
		artistNames = t.meta.Artists
	}
	track.ArtistIDs = r.catalog.ResolveArtistNames(artistNames)

	track.SourceHash = t.sourceHash
	track.SourcePath = t.sourcePath
	track.TagAgenda = t.overrides.TagAgenda
	track.Cover = t.cover
	track.Extras = t.extras
	track.Links = t.localOptions.Links
	track.More = t.localOptions.More
	track.Synopsis = t.localOptions.Synopsis
	track.Overrides = t.overrides
}

func resolveTrackTitle(local, tag, heuristicTitle string, hasHeuristic bool, fileStem string) string {
	if local != "" {
		return local
	}
	if tag != "" {
		return tag
	}
	if hasHeuristic && heuristicTitle != "" {
		return heuristicTitle
	}
	return fileStem
}

// sortPendingTracks orders tracks the way the original does: a tag-
// supplied track number always wins over a heuristic one; a track with
// either kind of number sorts before one with neither; otherwise ties
// (including between two numberless tracks) fall back to filename order.
func sortPendingTracks(tracks []pendingTrack, heuristicByStem map[string]tracknumber.HeuristicMeta, hasHeuristics bool) {
	number := func(i int) (int, bool) {
		if tracks[i].meta.HasTrackNumber {
			return tracks[i].meta.TrackNumber, true
		}
		if hasHeuristics {
			return heuristicByStem[tracks[i].fileStem].Number, true
		}
		return 0, false
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		ni, oki := number(i)
		nj, okj := number(j)
		switch {
		case oki && okj:
			return ni < nj
		case oki && !okj:
			return true
		case !oki && okj:
			return false
		default:
			return tracks[i].fileStem < tracks[j].fileStem
		}
	})
}

// inferArtists resolves a release's main and support artists, in the
// original's priority order: an explicit release_artists override always
// wins; otherwise the union of non-empty album_artist tags across all
// tracks; otherwise whichever artist-tag value(s) occur most often.
// Whatever isn't selected as a main artist name but does appear on some
// track becomes a support artist.
func inferArtists(tracks []pendingTrack, overrides manifest.Overrides) (main, support []string) {
	trackArtists := make([][]string, len(tracks))
	for i, t := range tracks {
		if len(t.overrides.TrackArtists) > 0 {
			trackArtists[i] = t.overrides.TrackArtists
		} else {
			trackArtists[i] = t.meta.Artists
		}
	}

	if len(overrides.ReleaseArtists) > 0 {
		main = dedupStrings(overrides.ReleaseArtists)
		support = unionExcluding(trackArtists, main)
		return main, support
	}

	if albumArtists := unionNonEmptyAlbumArtists(tracks); len(albumArtists) > 0 {
		main = albumArtists
		support = unionExcluding(trackArtists, main)
		return main, support
	}

	freq := make(map[string]int)
	var order []string
	for _, names := range trackArtists {
		for _, name := range names {
			if _, seen := freq[name]; !seen {
				order = append(order, name)
			}
			freq[name]++
		}
	}

	maxCount := 0
	for _, name := range order {
		if freq[name] > maxCount {
			maxCount = freq[name]
		}
	}
	for _, name := range order {
		if freq[name] == maxCount {
			main = append(main, name)
		} else {
			support = append(support, name)
		}
	}
	return main, support
}

func unionNonEmptyAlbumArtists(tracks []pendingTrack) []string {
	var union []string
	seen := make(map[string]bool)
	for _, t := range tracks {
		for _, name := range t.meta.AlbumArtists {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			union = append(union, name)
		}
	}
	return union
}

func dedupStrings(names []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func unionExcluding(groups [][]string, exclude []string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}
	var out []string
	seen := make(map[string]bool)
	for _, names := range groups {
		for _, name := range names {
			if excluded[name] || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// inferReleaseTitle uses the release manifest's title if set; otherwise
// the most frequently occurring album tag among the release's tracks
// (ties broken in favor of the title that occurs latest in track order,
// matching a stable ascending sort-by-count followed by taking the
// last element); otherwise the release directory's own name.
func inferReleaseTitle(localTitle string, tracks []pendingTrack, folderName string) string {
	if localTitle != "" {
		return localTitle
	}

	freq := make(map[string]int)
	var order []string
	for _, t := range tracks {
		if t.meta.Album == "" {
			continue
		}
		if _, seen := freq[t.meta.Album]; !seen {
			order = append(order, t.meta.Album)
		}
		freq[t.meta.Album]++
	}
	if len(order) == 0 {
		return folderName
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] < freq[order[j]]
	})
	return order[len(order)-1]
}

// pickBestCoverImage picks whichever image's filename looks most like a
// cover ("cover" > "front" > "album" > anything else), first one wins
// among ties. Grounded on catalog.rs::pick_best_cover_image.
func pickBestCoverImage(imagePaths []string, catalogRoot string) *manifest.DescribedImage {
	var best string
	bestPriority := 5
	for _, p := range imagePaths {
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)))
		priority := 4
		switch stem {
		case "cover":
			priority = 1
		case "front":
			priority = 2
		case "album":
			priority = 3
		}
		if priority < bestPriority {
			bestPriority = priority
			best = p
		}
	}
	if best == "" {
		return nil
	}
	rel, _ := filepath.Rel(catalogRoot, best)
	return &manifest.DescribedImage{RelPath: rel}
}

// buildExtras turns every image not chosen as the cover, plus every bare
// extra file, into an Extra.
func (r *Reader) buildExtras(imagePaths []string, cover *manifest.DescribedImage, extraPaths []string) []catalogmodel.Extra {
	var extras []catalogmodel.Extra
	for _, p := range imagePaths {
		rel, _ := filepath.Rel(r.catalogRoot, p)
		if cover != nil && rel == cover.RelPath {
			continue
		}
		extras = append(extras, r.newExtra(p, rel))
	}
	for _, p := range extraPaths {
		rel, _ := filepath.Rel(r.catalogRoot, p)
		extras = append(extras, r.newExtra(p, rel))
	}
	return extras
}

func (r *Reader) newExtra(absPath, relPath string) catalogmodel.Extra {
	meta, err := sourcefile.NewFileMeta(r.catalogRoot, relPath)
	if err != nil {
		r.errs.AddWarning(absPath, 0, "stat failed for extra file: %s", err)
	}
	return catalogmodel.Extra{Meta: meta, SanitizedFilename: sanitizeFilename(filepath.Base(absPath))}
}

// sanitizeFilename replaces characters that are unsafe as a zip/filesystem
// member name on at least one common platform. No pack library covers
// this narrow a transform; it is a handful of lines of stdlib
// string-scanning, not worth a dependency (same reasoning as
// permalink.Slugify).
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

func manifestCount(sd scannedDir) int {
	count := 0
	if sd.artistManifest != "" {
		count++
	}
	if sd.releaseManifest != "" {
		count++
	}
	if sd.trackManifest != "" {
		count++
	}
	return count
}

func relOf(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return rel
}

// applyManifestFile reads, parses and applies one manifest file's fields
// to local/overrides, recording any I/O, parse or field-level diagnostics
// on errs. extra handles fields specific to one manifest kind (artist.eno's
// name/alias/external_page/image); pass nil for kinds with none.
func applyManifestFile(path string, local *manifest.LocalOptions, overrides *manifest.Overrides, extra func(manifest.Field) bool, errs *builderr.Accumulator) {
	data, err := os.ReadFile(path)
	if err != nil {
		errs.AddError(path, 0, "reading manifest: %s", err)
		return
	}
	doc, err := manifest.Parse(string(data))
	if err != nil {
		errs.AddError(path, 0, "%s", err)
		return
	}
	applyFields(doc.Fields, local, overrides, extra, path, errs)
}

func applyFields(fields []manifest.Field, local *manifest.LocalOptions, overrides *manifest.Overrides, extra func(manifest.Field) bool, file string, errs *builderr.Accumulator) {
	var diag manifest.Diagnostics
	for _, f := range fields {
		if local != nil && manifest.ApplyLocalField(f, local, &diag) {
			continue
		}
		if overrides != nil && manifest.ApplyOverrideField(f, overrides, &diag) {
			continue
		}
		if extra != nil && extra(f) {
			continue
		}
		diag.Errors = append(diag.Errors, fmt.Sprintf("line %d: unknown field %q", f.Line, f.Key))
	}
	for _, e := range diag.Errors {
		errs.AddError(file, 0, "%s", e)
	}
	for _, w := range diag.Warnings {
		errs.AddWarning(file, 0, "%s", w)
	}
}
