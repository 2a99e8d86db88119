// Package catalogmodel holds the in-memory Artist/Release/Track/Catalog
// entities built while reading a catalog (spec §3 Data Model, §9 Design
// Notes). The original Rust implementation shares these entities through
// Rc<RefCell<_>> graphs; here they instead live in flat arenas inside
// Catalog and are referenced by opaque integer handles (ArtistID,
// ReleaseID, TrackID), grounded on the "arena of records with an opaque
// index handle" pattern spec §9 calls for in place of a Go port of shared
// interior mutability.
package catalogmodel

import (
	"time"

	"tonearm/internal/manifest"
	"tonearm/internal/permalink"
	"tonearm/internal/sourcefile"
	"tonearm/internal/tagmap"
)

// ArtistID, ReleaseID and TrackID are opaque handles into a Catalog's
// arenas. The zero value never refers to a real entity.
type ArtistID int
type ReleaseID int
type TrackID int

// Extra is an additional file bundled with a release or track (liner
// notes, bonus images, ...), identified the same way as audio/image
// source files.
type Extra struct {
	Meta              sourcefile.FileMeta
	SanitizedFilename string
}

// Artist is a performer or label, possibly shared across multiple
// releases. Auto-created artists (one matching no explicit artist.eno
// definition) get default-catalog options and are never featured.
type Artist struct {
	ID           ArtistID
	Name         string
	Aliases      []string
	Permalink    permalink.Permalink
	Links        []manifest.Link
	More         string
	Synopsis     string
	Image        *manifest.DescribedImage
	ExternalPage string
	Unlisted     bool
	Featured     bool
	Automatic    bool
	ReleaseIDs   []ReleaseID
}

// MatchesName reports whether name equals the artist's declared name or
// any declared alias (spec §4.3 artist mapping).
func (a *Artist) MatchesName(name string) bool {
	if a.Name == name {
		return true
	}
	for _, alias := range a.Aliases {
		if alias == name {
			return true
		}
	}
	return false
}

// Release is an album/EP/single: an ordered list of Tracks plus release-
// level metadata and overrides.
type Release struct {
	ID               ReleaseID
	Title            string
	Permalink        permalink.Permalink
	SourcePath       string
	MainArtistIDs    []ArtistID
	SupportArtistIDs []ArtistID
	TrackIDs         []TrackID
	Cover            *manifest.DescribedImage
	Extras           []Extra
	Links            []manifest.Link
	More             string
	Synopsis         string
	ReleaseDate      *time.Time
	Unlisted         bool
	Overrides        manifest.Overrides
}

// Track is one audio track belonging to a Release.
type Track struct {
	ID         TrackID
	ReleaseID  ReleaseID
	Title      string
	Number     int
	ArtistIDs  []ArtistID
	SourceHash sourcefile.SourceHash
	SourcePath string
	TagAgenda  tagmap.Agenda
	Cover      *manifest.DescribedImage
	Extras     []Extra
	Links      []manifest.Link
	More       string
	Synopsis   string
	// Overrides is the fully-resolved (cloned-and-mutated) override state
	// in effect at this track, carried alongside the catalog/release chain
	// it was inherited from (download access, pricing, extras policy,
	// theme, tag agenda, ...).
	Overrides manifest.Overrides
}

// Catalog is the root entity: the full set of artists, releases and
// tracks read from a catalog directory tree, plus catalog-wide overrides.
type Catalog struct {
	Artists   []*Artist
	Releases  []*Release
	Tracks    []*Track
	Overrides manifest.Overrides

	MainArtistIDs []ArtistID
}

// New returns an empty Catalog seeded with the default override state.
func New() *Catalog {
	return &Catalog{Overrides: manifest.DefaultOverrides()}
}

// NewArtist creates and registers a new Artist entity, returning its handle.
func (c *Catalog) NewArtist(name string) ArtistID {
	id := ArtistID(len(c.Artists) + 1)
	c.Artists = append(c.Artists, &Artist{ID: id, Name: name, Permalink: permalink.Generate(name)})
	return id
}

// Artist resolves a handle to its entity. Panics on an unknown handle,
// which indicates a programming error (handles are never fabricated
// outside this package).
func (c *Catalog) Artist(id ArtistID) *Artist {
	return c.Artists[id-1]
}

// NewRelease creates and registers a new Release entity.
func (c *Catalog) NewRelease(sourcePath string) ReleaseID {
	id := ReleaseID(len(c.Releases) + 1)
	c.Releases = append(c.Releases, &Release{ID: id, SourcePath: sourcePath})
	return id
}

// Release resolves a handle to its entity.
func (c *Catalog) Release(id ReleaseID) *Release {
	return c.Releases[id-1]
}

// NewTrack creates and registers a new Track entity belonging to release.
func (c *Catalog) NewTrack(release ReleaseID) TrackID {
	id := TrackID(len(c.Tracks) + 1)
	track := &Track{ID: id, ReleaseID: release}
	c.Tracks = append(c.Tracks, track)
	r := c.Release(release)
	r.TrackIDs = append(r.TrackIDs, id)
	return id
}

// Track resolves a handle to its entity.
func (c *Catalog) Track(id TrackID) *Track {
	return c.Tracks[id-1]
}

// ResolveArtistName finds the Artist matching name (by declared name or
// alias), auto-creating one with default-catalog options if no match
// exists (spec §4.3, invariant 6: a name resolves to at most one Artist).
func (c *Catalog) ResolveArtistName(name string) ArtistID {
	for _, a := range c.Artists {
		if a.MatchesName(name) {
			return a.ID
		}
	}

	id := c.NewArtist(name)
	artist := c.Artist(id)
	artist.Automatic = true
	return id
}

// ResolveArtistNames resolves a list of names to artist handles, in
// order, without introducing duplicate handles for the same artist
// (checked by ID, the arena-handle equivalent of the original's pointer
// identity check).
func (c *Catalog) ResolveArtistNames(names []string) []ArtistID {
	var ids []ArtistID
	seen := make(map[ArtistID]bool)
	for _, name := range names {
		id := c.ResolveArtistName(name)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// AddReleaseToArtist links release to artist, once (an artist is never
// linked to the same release twice).
func (c *Catalog) AddReleaseToArtist(artist ArtistID, release ReleaseID) {
	a := c.Artist(artist)
	for _, existing := range a.ReleaseIDs {
		if existing == release {
			return
		}
	}
	a.ReleaseIDs = append(a.ReleaseIDs, release)
}

// SupportArtists returns the support artists of a release: the union of
// all track artists that are not among the release's main artists.
func (c *Catalog) SupportArtists(release *Release) []ArtistID {
	isMain := make(map[ArtistID]bool, len(release.MainArtistIDs))
	for _, id := range release.MainArtistIDs {
		isMain[id] = true
	}

	var support []ArtistID
	seen := make(map[ArtistID]bool)
	for _, trackID := range release.TrackIDs {
		track := c.Track(trackID)
		for _, artistID := range track.ArtistIDs {
			if isMain[artistID] || seen[artistID] {
				continue
			}
			seen[artistID] = true
			support = append(support, artistID)
		}
	}
	return support
}
