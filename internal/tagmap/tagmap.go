// Package tagmap computes the concrete tag values written into a transcoded
// audio file, grounded on original_source/src/tags.rs. TagAgenda captures
// the user's per-field intent (copy/remove/rewrite); TagMapping is the
// resolved, concrete mapping derived from an agenda plus the track's actual
// metadata, and is part of the transcode cache key (its Signature feeds
// internal/hashx).
package tagmap

import (
	"fmt"

	"tonearm/internal/hashx"
	"tonearm/internal/sourcefile"
)

// Action sets the behavior for a single tag.
type Action int

const (
	Copy Action = iota
	Remove
	Rewrite
)

// FromKey parses a tag action manifest value.
func FromKey(key string) (Action, error) {
	switch key {
	case "copy":
		return Copy, nil
	case "remove":
		return Remove, nil
	case "rewrite":
		return Rewrite, nil
	default:
		return 0, fmt.Errorf("unknown tag action %q - supported are 'copy', 'remove' and 'rewrite'", key)
	}
}

// Agenda sets the behavior for every tag field. AgendaCopy and AgendaRemove
// are shorthands that, once a per-field override via Set is applied, widen
// into the per-field Custom representation.
type Agenda struct {
	allCopy   bool
	allRemove bool
	custom    bool

	Album       Action
	AlbumArtist Action
	Artist      Action
	Image       Action
	Title       Action
	Track       Action
}

// AgendaCopy copies all tags 1:1 from the source audio file.
func AgendaCopy() Agenda { return Agenda{allCopy: true} }

// AgendaRemove writes no tags at all to the output file.
func AgendaRemove() Agenda { return Agenda{allRemove: true} }

// AgendaNormalize is the default agenda: rewrite everything faircamp-derived
// and strip the embedded image, so no cover is embedded into the output
// file unless the image action is changed to rewrite or copy.
func AgendaNormalize() Agenda {
	return Agenda{
		custom:      true,
		Album:       Rewrite,
		AlbumArtist: Rewrite,
		Artist:      Rewrite,
		Image:       Remove,
		Title:       Rewrite,
		Track:       Rewrite,
	}
}

// Set overrides a single field's action, widening AgendaCopy/AgendaRemove
// into a fully custom agenda on first use.
func (a *Agenda) Set(tagKey, actionKey string) error {
	action, err := FromKey(actionKey)
	if err != nil {
		return err
	}

	if !a.custom {
		if a.allCopy {
			*a = Agenda{custom: true, Album: Copy, AlbumArtist: Copy, Artist: Copy, Image: Copy, Title: Copy, Track: Copy}
		} else if a.allRemove {
			*a = Agenda{custom: true, Album: Remove, AlbumArtist: Remove, Artist: Remove, Image: Remove, Title: Remove, Track: Remove}
		} else {
			*a = AgendaNormalize()
		}
	}

	switch tagKey {
	case "album":
		a.Album = action
	case "album_artist":
		a.AlbumArtist = action
	case "artist":
		a.Artist = action
	case "image":
		a.Image = action
	case "title":
		a.Title = action
	case "track":
		a.Track = action
	default:
		return fmt.Errorf("unknown tag key %q - supported are 'album', 'album_artist', 'artist', 'image', 'title' and 'track'", tagKey)
	}
	return nil
}

// IsAllCopy reports whether the agenda is still the unmodified "copy all" shorthand.
func (a Agenda) IsAllCopy() bool { return a.allCopy }

// IsAllRemove reports whether the agenda is still the unmodified "remove all" shorthand.
func (a Agenda) IsAllRemove() bool { return a.allRemove }

// ImageEmbed describes the cover image to embed into an output audio file.
// Only a source hash is stored; the cache layer resolves it back to actual
// image bytes at embed time.
type ImageEmbed struct {
	Copy bool                  // true: copy the embedded image straight from the source file
	Hash sourcefile.SourceHash // valid when Copy is false and a cover source is available
	None bool                  // true: no image is embedded
}

// Write reports whether this embed must encode a separate cover image file
// into the output (as opposed to copying an already-embedded image, or
// embedding nothing).
func (e *ImageEmbed) Write() bool { return e != nil && !e.Copy && !e.None }

// SourceMeta is the subset of a track's decoded audio tags that tag mapping
// reads from when an Action is Copy.
type SourceMeta struct {
	Album          string
	AlbumArtists   []string
	Artists        []string
	Title          string
	HasTrackNumber bool
	TrackNumber    int
}

// RewriteInputs supplies everything a Rewrite action needs that isn't
// available from SourceMeta: release- and catalog-derived values. The
// caller (internal/pipeline) computes AlbumArtistOmitted and
// CoverHash/HasCover since those require walking the release graph, which
// tagmap deliberately has no dependency on.
type RewriteInputs struct {
	ReleaseTitle           string
	ReleaseMainArtistNames []string
	TrackArtistNames       []string
	TrackTitle             string
	TrackNumber            int

	// AlbumArtistOmitted is true when the release's main artist(s) are
	// unknown, or every track in the release is performed by exactly the
	// release's main artist(s) — in either case the album_artist tag
	// carries no information and is omitted instead of rewritten.
	AlbumArtistOmitted bool

	HasCover  bool
	CoverHash sourcefile.SourceHash
}

// Mapping is the resolved, concrete set of tag values to write (or the
// abstract instruction to copy/remove all of them).
type Mapping struct {
	CopyAll   bool
	RemoveAll bool

	Album       *string
	AlbumArtist *string
	Artist      *string
	Image       *ImageEmbed
	Title       *string
	Track       *int
}

// New resolves an Agenda plus a track's actual metadata into a concrete
// Mapping.
func New(agenda Agenda, source SourceMeta, rewrite RewriteInputs) Mapping {
	if agenda.IsAllCopy() {
		return Mapping{CopyAll: true}
	}
	if agenda.IsAllRemove() {
		return Mapping{RemoveAll: true}
	}

	m := Mapping{}

	switch agenda.Album {
	case Copy:
		m.Album = nonEmpty(source.Album)
	case Remove:
		m.Album = nil
	case Rewrite:
		m.Album = strPtr(rewrite.ReleaseTitle)
	}

	switch agenda.AlbumArtist {
	case Copy:
		m.AlbumArtist = joinNonEmpty(source.AlbumArtists)
	case Remove:
		m.AlbumArtist = nil
	case Rewrite:
		if rewrite.AlbumArtistOmitted {
			m.AlbumArtist = nil
		} else {
			m.AlbumArtist = joinNonEmpty(rewrite.ReleaseMainArtistNames)
		}
	}

	switch agenda.Artist {
	case Copy:
		m.Artist = joinNonEmpty(source.Artists)
	case Remove:
		m.Artist = nil
	case Rewrite:
		m.Artist = joinNonEmpty(rewrite.TrackArtistNames)
	}

	switch agenda.Image {
	case Copy:
		m.Image = &ImageEmbed{Copy: true}
	case Remove:
		m.Image = nil
	case Rewrite:
		if rewrite.HasCover {
			m.Image = &ImageEmbed{Hash: rewrite.CoverHash}
		} else {
			m.Image = nil
		}
	}

	switch agenda.Title {
	case Copy:
		m.Title = nonEmpty(source.Title)
	case Remove:
		m.Title = nil
	case Rewrite:
		m.Title = strPtr(rewrite.TrackTitle)
	}

	switch agenda.Track {
	case Copy:
		if source.HasTrackNumber {
			n := source.TrackNumber
			m.Track = &n
		}
	case Remove:
		m.Track = nil
	case Rewrite:
		// Intentionally does not use the source file's own track number
		// metadata: tracks are already sorted and (re-)numbered by the
		// time tag mapping runs, so using that sequence keeps the written
		// tag consistent with what's shown on the release page.
		n := rewrite.TrackNumber
		m.Track = &n
	}

	return m
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return strPtr(s)
}

func joinNonEmpty(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	joined := ""
	for i, v := range values {
		if i > 0 {
			joined += ", "
		}
		joined += v
	}
	return &joined
}

func strPtr(s string) *string { return &s }

// Signature hashes the resolved mapping into a 64-bit value suitable for
// inclusion in a transcode cache key — two mappings with identical
// resolved values always hash identically, regardless of which Action
// produced them.
func (m Mapping) Signature() hashx.Hash {
	c := hashx.NewCombiner()

	switch {
	case m.CopyAll:
		c.WriteString("copy-all")
	case m.RemoveAll:
		c.WriteString("remove-all")
	default:
		c.WriteString("custom")
		c.WriteString(derefStr(m.Album))
		c.WriteString(derefStr(m.AlbumArtist))
		c.WriteString(derefStr(m.Artist))
		c.WriteString(derefStr(m.Title))
		if m.Track != nil {
			c.WriteUint64(uint64(*m.Track) + 1)
		} else {
			c.WriteUint64(0)
		}
		switch {
		case m.Image == nil:
			c.WriteString("image-none")
		case m.Image.Copy:
			c.WriteString("image-copy")
		default:
			c.WriteString("image-write")
			c.WriteHash(m.Image.Hash.Value)
		}
	}

	return c.Sum()
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
