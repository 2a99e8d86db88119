package cache

import (
	"tonearm/internal/sourcefile"
)

// ReviveOrCreateImage implements the two-layer lookup from spec §3/§4.1
// for image source files: first try to revive an existing view by exact
// FileMeta match (same path, mtime and size — no hashing needed), then
// fall back to matching by content hash (the file moved or was renamed
// but its bytes are unchanged, so a new View is added to the existing
// entity), and only create a brand-new Image entity if neither succeeds.
// hash is computed lazily (only when a FileMeta match fails) since hashing
// is the expensive path this two-layer scheme exists to avoid.
func (c *Cache) ReviveOrCreateImage(fileMeta sourcefile.FileMeta, hash func() (sourcefile.SourceHash, error)) (img *Image, created bool, err error) {
	for _, existing := range c.Images {
		for i := range existing.Views {
			if existing.Views[i].FileMeta.Equal(fileMeta) {
				existing.Views[i].UnmarkStale()
				return existing, false, nil
			}
		}
	}

	sourceHash, err := hash()
	if err != nil {
		return nil, false, err
	}

	for _, existing := range c.Images {
		if existing.SourceHash.Value == sourceHash.Value {
			existing.Views = append(existing.Views, View{FileMeta: fileMeta})
			return existing, false, nil
		}
	}

	newImage := &Image{SourceHash: sourceHash, Views: []View{{FileMeta: fileMeta}}}
	c.Images = append(c.Images, newImage)
	return newImage, true, nil
}

// ReviveOrCreateTranscodes is ReviveOrCreateImage's counterpart for audio
// source files. Unlike images, a freshly-created Transcodes entity has no
// SourceMeta populated yet — the caller (the transcode pipeline, which
// alone knows how to decode and tag-extract the format) fills it in when
// created is true.
func (c *Cache) ReviveOrCreateTranscodes(fileMeta sourcefile.FileMeta, hash func() (sourcefile.SourceHash, error)) (t *Transcodes, created bool, err error) {
	for _, existing := range c.Transcodes {
		for i := range existing.Views {
			if existing.Views[i].FileMeta.Equal(fileMeta) {
				existing.Views[i].UnmarkStale()
				return existing, false, nil
			}
		}
	}

	sourceHash, err := hash()
	if err != nil {
		return nil, false, err
	}

	for _, existing := range c.Transcodes {
		if existing.SourceHash.Value == sourceHash.Value {
			existing.Views = append(existing.Views, View{FileMeta: fileMeta})
			return existing, false, nil
		}
	}

	t = &Transcodes{SourceHash: sourceHash, Views: []View{{FileMeta: fileMeta}}}
	c.Transcodes = append(c.Transcodes, t)
	return t, true, nil
}
