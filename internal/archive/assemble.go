package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"tonearm/internal/cache"
)

// Assemble writes a release's download ZIP for one format and stores it
// as a content-addressed cache asset. Member order follows the original:
// each track's audio file, then (if it carries a cover or bundled extras)
// a per-track subdirectory, then the release cover, then bundled
// release-level extras.
func Assemble(store *cache.Store, req Request) (cache.Asset, error) {
	tmp, err := os.CreateTemp(store.Dir(), "zip-*")
	if err != nil {
		return cache.Asset{}, fmt.Errorf("creating temporary archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := writeZip(tmp, req); err != nil {
		tmp.Close()
		return cache.Asset{}, err
	}
	if err := tmp.Close(); err != nil {
		return cache.Asset{}, fmt.Errorf("closing temporary archive: %w", err)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return cache.Asset{}, fmt.Errorf("reading assembled archive: %w", err)
	}
	return store.Put(data, ".zip")
}

func writeZip(w io.Writer, req Request) error {
	zw := zip.NewWriter(w)

	usedReleaseLevel := make(map[string]bool)

	for _, track := range req.Tracks {
		filename := deduplicateFilename(track.AudioFilename, usedReleaseLevel)
		usedReleaseLevel[filename] = true
		if err := copyMember(zw, track.AudioPath, filename); err != nil {
			return err
		}

		hasTrackExtras := req.ExtrasPolicy == ExtrasBundled && len(track.Extras) > 0
		if track.CoverPath == "" && !hasTrackExtras {
			continue
		}

		dirName := fmt.Sprintf("%s (%s)", track.AudioFilename, req.ExtrasDirLabel)
		if _, err := zw.Create(dirName + "/"); err != nil {
			return fmt.Errorf("writing archive directory entry %s: %w", dirName, err)
		}

		usedTrackLevel := make(map[string]bool)

		if track.CoverPath != "" {
			coverFilename := "cover.jpg"
			usedTrackLevel[coverFilename] = true
			if err := copyMember(zw, track.CoverPath, dirName+"/"+coverFilename); err != nil {
				return err
			}
		}

		if hasTrackExtras {
			for _, extra := range track.Extras {
				filename := deduplicateFilename(extra.Filename, usedTrackLevel)
				usedTrackLevel[filename] = true
				if err := copyMember(zw, extra.SourcePath, dirName+"/"+filename); err != nil {
					return err
				}
			}
		}
	}

	if req.CoverPath != "" {
		coverFilename := deduplicateFilename("cover.jpg", usedReleaseLevel)
		usedReleaseLevel[coverFilename] = true
		if err := copyMember(zw, req.CoverPath, coverFilename); err != nil {
			return err
		}
	}

	if req.ExtrasPolicy == ExtrasBundled {
		for _, extra := range req.Extras {
			filename := deduplicateFilename(extra.Filename, usedReleaseLevel)
			usedReleaseLevel[filename] = true
			if err := copyMember(zw, extra.SourcePath, filename); err != nil {
				return err
			}
		}
	}

	return zw.Close()
}

func copyMember(zw *zip.Writer, sourcePath, memberName string) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("opening %s for archiving: %w", sourcePath, err)
	}
	defer src.Close()

	header := &zip.FileHeader{
		Name:   memberName,
		Method: zip.Deflate,
	}
	header.SetMode(0o755)

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("adding %s to archive: %w", memberName, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("writing %s into archive: %w", memberName, err)
	}
	return nil
}
