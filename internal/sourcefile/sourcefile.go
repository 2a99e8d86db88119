// Package sourcefile implements the two-layer source-file identity model
// from spec §3/§4.1: a cheap path-layer FileMeta (path, mtime, size) used to
// detect "same file as last build" without rehashing, and a content-layer
// SourceHash (64-bit, algorithm-versioned) used to re-associate a file that
// has moved or been renamed but whose content is unchanged.
package sourcefile

import (
	"os"
	"path/filepath"
	"time"

	"tonearm/internal/hashx"
)

// HashAlgorithmVersion is bumped whenever the hashing algorithm or its input
// encoding changes; entities whose SourceHash carries an older version force
// recomputation from a live view (§4.1).
const HashAlgorithmVersion = 1

// FileMeta identifies a source file by its location and cheap stat fields.
// Path is always relative to the catalog root so that the catalog directory
// can move on disk between builds without invalidating the cache.
type FileMeta struct {
	Path     string    `msgpack:"path"`
	Modified time.Time `msgpack:"modified"`
	Size     int64     `msgpack:"size"`
}

// Equal reports whether two FileMeta values describe the same observation
// of a file (same path, same mtime down to the originally observed
// resolution, same size).
func (f FileMeta) Equal(other FileMeta) bool {
	return f.Path == other.Path && f.Size == other.Size && f.Modified.Equal(other.Modified)
}

// NewFileMeta stats catalogRoot/path and returns its current FileMeta.
func NewFileMeta(catalogRoot, path string) (FileMeta, error) {
	info, err := os.Stat(filepath.Join(catalogRoot, path))
	if err != nil {
		return FileMeta{}, err
	}
	return FileMeta{
		Path:     path,
		Modified: info.ModTime(),
		Size:     info.Size(),
	}, nil
}

// SourceHash is the content-layer identity of a source file: a 64-bit
// content hash plus the algorithm version it was computed with.
type SourceHash struct {
	Value   hashx.Hash `msgpack:"value"`
	Version int        `msgpack:"version"`
}

// NewSourceHash hashes the full content of the file at absolutePath.
func NewSourceHash(absolutePath string) (SourceHash, error) {
	h, err := hashx.File(absolutePath)
	if err != nil {
		return SourceHash{}, err
	}
	return SourceHash{Value: h, Version: HashAlgorithmVersion}, nil
}

// IncompatibleVersion reports whether this hash was computed with an older
// (or newer) algorithm version than the one this build uses.
func (s SourceHash) IncompatibleVersion() bool {
	return s.Version != HashAlgorithmVersion
}

// URLSafeBase64 renders the hash value for use in manifest filenames.
func (s SourceHash) URLSafeBase64() string {
	return hashx.URLSafeBase64(s.Value)
}
