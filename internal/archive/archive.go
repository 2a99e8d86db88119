// Package archive assembles a release's downloadable ZIP archives: the
// transcoded track audio for one download format, plus the release cover
// and any bundled extras, written under collision-free member names.
// Grounded on original_source/src/release.rs's archive-writing block
// (lines ~501-740) and the Archive/Archives cache entities defined in
// original_source/src/archives.rs (already carried over as cache.Archives/
// cache.ArchiveFormat).
package archive

import (
	"strconv"

	"tonearm/internal/hashx"
)

// ExtrasPolicy controls whether a release's bundled extra files (liner
// notes, bonus images, ...) are written inside the ZIP, as standalone
// files alongside it, or not offered as downloads at all.
type ExtrasPolicy int

const (
	ExtrasDisabled ExtrasPolicy = iota
	ExtrasBundled
	ExtrasSeparate
)

// ExtrasPolicyFromManifestKey parses a release_extras manifest value.
func ExtrasPolicyFromManifestKey(key string) (ExtrasPolicy, bool) {
	switch key {
	case "disabled":
		return ExtrasDisabled, true
	case "bundled":
		return ExtrasBundled, true
	case "separate":
		return ExtrasSeparate, true
	default:
		return 0, false
	}
}

// MemberFile is one file to copy verbatim into a ZIP, under Filename
// (already sanitized and, where needed, deduplicated).
type MemberFile struct {
	SourcePath string
	Filename   string
}

// TrackMember is one track's contribution to a release archive: its
// already-transcoded audio file for the archive's download format, plus
// whatever per-track extras (cover, bundled files) travel alongside it in
// its own subdirectory.
type TrackMember struct {
	AudioPath     string
	AudioFilename string
	CoverPath     string // "" if the track has no cover of its own
	Extras        []MemberFile
}

// Request describes everything needed to assemble one release archive for
// a single download format.
type Request struct {
	Tracks       []TrackMember
	CoverPath    string // release-level cover; "" if none
	Extras       []MemberFile
	ExtrasPolicy ExtrasPolicy
	// ExtrasDirLabel names the per-track subdirectory holding a track's
	// cover/extras, e.g. "{track filename} (extras)". Translated labels
	// are out of scope; callers supply the plain-English word.
	ExtrasDirLabel string
}

// Signature hashes everything that determines a release's archive
// contents into one stable cache key: the ZIP's member identity doesn't
// depend on which download format is requested, so a release has a single
// Archives entity (spec §4.6) holding every format rendered against it so
// far, keyed by this one signature. Mirrors archives.rs's "hash computed
// from the entire dependency graph for downloads of this release".
func Signature(trackSourceHashes []hashx.Hash, coverSourceHash hashx.Hash, hasCover bool, extrasPolicy ExtrasPolicy, extraSourceHashes []hashx.Hash) hashx.Hash {
	c := hashx.NewCombiner()
	for _, h := range trackSourceHashes {
		c.WriteHash(h)
	}
	c.WriteUint64(boolToUint64(hasCover))
	if hasCover {
		c.WriteHash(coverSourceHash)
	}
	c.WriteUint64(uint64(extrasPolicy))
	for _, h := range extraSourceHashes {
		c.WriteHash(h)
	}
	return c.Sum()
}

func boolToUint64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// deduplicateFilename appends an incrementing " (n)" suffix before the
// extension until candidate no longer collides with an already-used
// member name. The original's equivalent helper (deduplicate_filename in
// its util module) isn't present in the retrieved source, so this follows
// the conventional file-manager duplicate-naming scheme instead.
func deduplicateFilename(candidate string, used map[string]bool) string {
	filename := candidate
	for n := 2; used[filename]; n++ {
		filename = suffixBeforeExtension(candidate, n)
	}
	return filename
}

func suffixBeforeExtension(filename string, n int) string {
	base, ext := splitExtension(filename)
	return base + " (" + strconv.Itoa(n) + ")" + ext
}

func splitExtension(filename string) (base, ext string) {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i], filename[i:]
		}
		if filename[i] == '/' {
			break
		}
	}
	return filename, ""
}
