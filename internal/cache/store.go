package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"tonearm/internal/constants"
	"tonearm/internal/hashx"
)

// Store is the content-addressed, one-file-per-asset blob store backing
// a Cache's directory (spec §6: a flat directory of content-addressed
// files, in place of the teacher repo's segmented multi-entry .dat
// format).
type Store struct {
	dir string
}

// NewStore opens (without yet creating) the blob store rooted at dir.
func NewStore(dir string) *Store { return &Store{dir: dir} }

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the absolute path of the asset file named filename.
func (s *Store) Path(filename string) string { return filepath.Join(s.dir, filename) }

// Put writes data under a content-addressed filename (hash of data plus
// ext, e.g. ".png"/".mp3"/".zip") using an atomic write-then-rename so a
// crash mid-write never leaves a corrupt asset visible, then returns the
// resulting Asset.
func (s *Store) Put(data []byte, ext string) (Asset, error) {
	if err := os.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return Asset{}, err
	}

	filename := fmt.Sprintf("%s%s", hashx.URLSafeBase64(hashx.Bytes(data)), ext)
	finalPath := s.Path(filename)
	if _, err := os.Stat(finalPath); err == nil {
		return Asset{Filename: filename, FilesizeBytes: int64(len(data))}, nil
	}

	tmp, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return Asset{}, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return Asset{}, err
	}
	if err := tmp.Close(); err != nil {
		return Asset{}, err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return Asset{}, err
	}

	return Asset{Filename: filename, FilesizeBytes: int64(len(data))}, nil
}

// PutFile copies the file at sourcePath into the store under a content-
// addressed filename derived by streaming-hashing it. When no asset with
// that name exists yet, the whole file is read into memory and written
// through Put.
func (s *Store) PutFile(sourcePath, ext string) (Asset, error) {
	if err := os.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return Asset{}, err
	}

	h, err := hashx.File(sourcePath)
	if err != nil {
		return Asset{}, err
	}
	info, err := os.Stat(sourcePath)
	if err != nil {
		return Asset{}, err
	}

	filename := fmt.Sprintf("%s%s", hashx.URLSafeBase64(h), ext)
	finalPath := s.Path(filename)
	if _, err := os.Stat(finalPath); err == nil {
		return Asset{Filename: filename, FilesizeBytes: info.Size()}, nil
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return Asset{}, err
	}
	return s.Put(data, ext)
}

// Remove deletes the asset's backing file, tolerating one that is already
// gone.
func (s *Store) Remove(asset Asset) error {
	err := os.Remove(s.Path(asset.Filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether the asset's backing file is present on disk.
func (s *Store) Exists(asset Asset) bool {
	_, err := os.Stat(s.Path(asset.Filename))
	return err == nil
}
