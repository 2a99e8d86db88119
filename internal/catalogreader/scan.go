package catalogreader

import (
	"os"
	"path/filepath"
	"strings"

	"tonearm/internal/audioformat"
	"tonearm/internal/builderr"
)

// audioExtensions maps a lowercased filename extension (no dot) to the
// Family of source audio file it identifies. Grounded on
// original_source/src/fair_dir.rs's SUPPORTED_AUDIO_EXTENSIONS.
var audioExtensions = map[string]audioformat.Family{
	"aif":  audioformat.FamilyAiff,
	"aifc": audioformat.FamilyAiff,
	"aiff": audioformat.FamilyAiff,
	"alac": audioformat.FamilyAlac,
	"flac": audioformat.FamilyFlac,
	"mp3":  audioformat.FamilyMp3,
	"ogg":  audioformat.FamilyOggVorbis,
	"opus": audioformat.FamilyOpus,
	"wav":  audioformat.FamilyWav,
}

// imageExtensions is fair_dir.rs's SUPPORTED_IMAGE_EXTENSIONS.
var imageExtensions = map[string]bool{
	"gif":  true,
	"heif": true,
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"webp": true,
}

// unsupportedAudioExtensions is fair_dir.rs's UNSUPPORTED_AUDIO_EXTENSIONS:
// recognized audio containers with no decoder, surfaced as a build error
// rather than silently treated as an extra file.
var unsupportedAudioExtensions = map[string]bool{
	"aac": true,
	"m4a": true,
}

// audioFile is one source audio file found while scanning a directory.
type audioFile struct {
	path   string // absolute
	family audioformat.Family
}

// scannedDir is one directory's contents, classified the way
// fair_dir.rs's FairDir::read classifies them: manifests by exact
// filename, everything else by extension.
type scannedDir struct {
	path string // absolute

	artistManifest  string
	catalogManifest string
	releaseManifest string
	trackManifest   string

	audioFiles []audioFile
	imageFiles []string // absolute paths
	extraFiles []string // absolute paths

	dirs []string // absolute paths of subdirectories
}

// scanDir reads one directory level (non-recursively) and classifies its
// entries. Dotfile-prefixed entries are always skipped; entries matching
// opts.BuildDir/opts.CacheDir or any exclude pattern are skipped; if any
// include pattern is set, files not matching one are skipped too (this
// filter never applies to directories, matching the original).
func scanDir(absPath, catalogRoot string, opts Options, errs *builderr.Accumulator) (scannedDir, error) {
	entries, err := os.ReadDir(absPath)
	if err != nil {
		return scannedDir{}, err
	}

	sd := scannedDir{path: absPath}

	var buildDirAbs, cacheDirAbs string
	if opts.BuildDir != "" {
		buildDirAbs, _ = filepath.Abs(filepath.Join(catalogRoot, opts.BuildDir))
	}
	if opts.CacheDir != "" {
		cacheDirAbs, _ = filepath.Abs(filepath.Join(catalogRoot, opts.CacheDir))
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		entryPath := filepath.Join(absPath, name)

		if entry.IsDir() {
			entryAbs, _ := filepath.Abs(entryPath)
			if buildDirAbs != "" && entryAbs == buildDirAbs {
				continue
			}
			if cacheDirAbs != "" && entryAbs == cacheDirAbs {
				continue
			}
			if matchesAny(entryPath, opts.ExcludePatterns) {
				continue
			}
			sd.dirs = append(sd.dirs, entryPath)
			continue
		}

		info, err := entry.Info()
		if err != nil {
			errs.AddWarning(entryPath, 0, "skipping %s: %s", name, err)
			continue
		}
		if !info.Mode().IsRegular() {
			errs.AddWarning(entryPath, 0, "ignoring %s: not a regular file (symlinks and special files are not read)", name)
			continue
		}

		if matchesAny(entryPath, opts.ExcludePatterns) {
			continue
		}
		if len(opts.IncludePatterns) > 0 && !matchesAny(entryPath, opts.IncludePatterns) {
			continue
		}

		switch name {
		case "artist.eno":
			sd.artistManifest = entryPath
			continue
		case "catalog.eno":
			sd.catalogManifest = entryPath
			continue
		case "release.eno":
			sd.releaseManifest = entryPath
			continue
		case "track.eno":
			sd.trackManifest = entryPath
			continue
		}

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		switch {
		case ext == "eno":
			errs.AddError(entryPath, 0, "%q is not a recognized manifest filename (expected artist.eno, catalog.eno, release.eno or track.eno)", name)
		case unsupportedAudioExtensions[ext]:
			errs.AddError(entryPath, 0, "support for reading audio files with the extension %q is not yet supported", ext)
		default:
			if family, ok := audioExtensions[ext]; ok {
				sd.audioFiles = append(sd.audioFiles, audioFile{path: entryPath, family: family})
			} else if imageExtensions[ext] {
				sd.imageFiles = append(sd.imageFiles, entryPath)
			} else {
				sd.extraFiles = append(sd.extraFiles, entryPath)
			}
		}
	}

	return sd, nil
}

func matchesAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}
