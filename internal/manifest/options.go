package manifest

import (
	"fmt"
	"strconv"
	"time"

	"tonearm/internal/downloadformat"
	"tonearm/internal/permalink"
	"tonearm/internal/streamquality"
	"tonearm/internal/tagmap"
	"tonearm/internal/tracknumber"
)

// Link is a user-supplied external link (artist website, label, shop, ...).
type Link struct {
	URL   string
	Label string
}

// DescribedImage is a local image reference plus an optional accessibility
// description, used for cover/artist/background images.
type DescribedImage struct {
	RelPath     string
	Description string
}

// DownloadAccess controls who can retrieve downloads for a release or track.
type DownloadAccess int

const (
	DownloadAccessFree DownloadAccess = iota
	DownloadAccessExternal
	DownloadAccessCode
	DownloadAccessPaid
)

// ExtrasPolicy controls how extras (booklets, liner notes, etc.) are
// delivered alongside an archive.
type ExtrasPolicy int

const (
	ExtrasDisabled ExtrasPolicy = iota
	ExtrasBundled
	ExtrasSeparate
	ExtrasBoth
)

// PriceKind distinguishes a release/track's pricing model.
type PriceKind int

const (
	PriceFree PriceKind = iota
	PriceFixed
	PriceSuggested
)

// Price is a release or track's pricing configuration.
type Price struct {
	Kind   PriceKind
	Amount float64 // meaningful for PriceFixed and PriceSuggested
}

// LocalOptions are fields that apply only to the entity the manifest
// itself defines — they are never inherited by child directories (§4.3).
type LocalOptions struct {
	Cover           *DescribedImage
	Links           []Link
	More            string
	Permalink       *permalink.Permalink
	ReleaseDate     *time.Time
	Synopsis        string
	Title           string
	UnlistedRelease bool
}

// NewLocalOptions returns an empty LocalOptions value.
func NewLocalOptions() LocalOptions {
	return LocalOptions{}
}

// Overrides are fields that apply to everything in the manifest's directory
// and are inherited by child directories unless overridden again there
// (§4.3). Clone produces the mutable copy a child manifest mutates.
type Overrides struct {
	CopyLink             bool
	DownloadCodes        []string
	Embedding            bool
	M3uEnabled           bool
	MoreLabel            string
	PaymentInfo          string
	ReleaseArtists       []string
	ReleaseDownloadAccess DownloadAccess
	ReleaseDownloads     []downloadformat.Format
	ReleaseExtras        ExtrasPolicy
	ReleasePrice         Price
	SpeedControls        bool
	StreamingQuality     streamquality.Quality
	TagAgenda            tagmap.Agenda
	Theme                map[string]string
	TrackArtists         []string
	TrackDownloadAccess  DownloadAccess
	TrackDownloads       []downloadformat.Format
	TrackExtras          bool
	TrackNumbering       tracknumber.Numbering
	TrackPrice           Price
	UnlockInfo           string
}

// DefaultOverrides is the catalog root's starting override state before any
// manifest has been read.
func DefaultOverrides() Overrides {
	return Overrides{
		Embedding:            true,
		M3uEnabled:           true,
		ReleaseDownloadAccess: DownloadAccessFree,
		ReleaseExtras:        ExtrasDisabled,
		ReleasePrice:         Price{Kind: PriceFree},
		SpeedControls:        true,
		StreamingQuality:     streamquality.Standard,
		TagAgenda:            tagmap.AgendaNormalize(),
		Theme:                map[string]string{},
		TrackDownloadAccess:  DownloadAccessFree,
		TrackExtras:          true,
		TrackNumbering:       tracknumber.Arabic,
		TrackPrice:           Price{Kind: PriceFree},
	}
}

// Clone returns an independent copy of o, ready to be mutated by a nested
// manifest without affecting the parent's state.
func (o Overrides) Clone() Overrides {
	clone := o
	clone.DownloadCodes = append([]string(nil), o.DownloadCodes...)
	clone.ReleaseArtists = append([]string(nil), o.ReleaseArtists...)
	clone.ReleaseDownloads = append([]downloadformat.Format(nil), o.ReleaseDownloads...)
	clone.TrackArtists = append([]string(nil), o.TrackArtists...)
	clone.TrackDownloads = append([]downloadformat.Format(nil), o.TrackDownloads...)
	clone.Theme = make(map[string]string, len(o.Theme))
	for k, v := range o.Theme {
		clone.Theme[k] = v
	}
	return clone
}

// Diagnostics accumulates errors and warnings produced while applying a
// manifest's fields to a LocalOptions/Overrides pair.
type Diagnostics struct {
	Errors   []string
	Warnings []string
}

func (d *Diagnostics) errorf(line int, format string, args ...any) {
	d.Errors = append(d.Errors, fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...)))
}

func (d *Diagnostics) warnf(line int, format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf("line %d: %s", line, fmt.Sprintf(format, args...)))
}

// ApplyLocalField applies one field to local, returning true if the key was
// recognized as a local option (regardless of whether applying it
// succeeded).
func ApplyLocalField(f Field, local *LocalOptions, diag *Diagnostics) bool {
	switch f.Key {
	case "title":
		local.Title = f.Value
		return true
	case "synopsis":
		local.Synopsis = f.Value
		return true
	case "more":
		if f.Kind == Embed {
			local.More = f.Embed
		} else {
			local.More = f.Value
		}
		return true
	case "unlisted":
		b, err := parseBool(f.Value)
		if err != nil {
			diag.errorf(f.Line, "'unlisted' must be 'true' or 'false', got %q", f.Value)
			return true
		}
		local.UnlistedRelease = b
		return true
	case "permalink":
		p, err := permalink.New(f.Value)
		if err != nil {
			diag.errorf(f.Line, "%s", err)
			return true
		}
		local.Permalink = &p
		return true
	case "release_date":
		t, err := time.Parse("2006-01-02", f.Value)
		if err != nil {
			diag.errorf(f.Line, "'release_date' must be formatted YYYY-MM-DD, got %q", f.Value)
			return true
		}
		local.ReleaseDate = &t
		return true
	case "cover":
		local.Cover = &DescribedImage{RelPath: f.Value}
		return true
	case "link":
		label := f.Value
		url := f.Value
		if f.Kind == Attributed {
			url = first(f.Attrs["url"])
			label = first(f.Attrs["label"])
			if label == "" {
				label = url
			}
		}
		local.Links = append(local.Links, Link{URL: url, Label: label})
		return true
	default:
		return false
	}
}

// ApplyOverrideField applies one field to overrides (already a clone of the
// parent's state), returning true if the key was recognized.
func ApplyOverrideField(f Field, overrides *Overrides, diag *Diagnostics) bool {
	switch f.Key {
	case "embedding":
		applyBool(f, &overrides.Embedding, diag)
		return true
	case "copy_link":
		applyBool(f, &overrides.CopyLink, diag)
		return true
	case "m3u":
		applyBool(f, &overrides.M3uEnabled, diag)
		return true
	case "speed_controls":
		applyBool(f, &overrides.SpeedControls, diag)
		return true
	case "track_extras":
		applyBool(f, &overrides.TrackExtras, diag)
		return true
	case "more_label":
		overrides.MoreLabel = f.Value
		return true
	case "payment_info":
		overrides.PaymentInfo = f.Value
		return true
	case "unlock_info":
		overrides.UnlockInfo = f.Value
		return true
	case "download_code":
		overrides.DownloadCodes = append(overrides.DownloadCodes, f.Value)
		return true
	case "release_artist", "release_artists":
		applyStringList(f, &overrides.ReleaseArtists)
		return true
	case "track_artist", "track_artists":
		applyStringList(f, &overrides.TrackArtists)
		return true
	case "streaming_quality":
		q, err := streamquality.FromKey(f.Value)
		if err != nil {
			diag.errorf(f.Line, "%s", err)
			return true
		}
		overrides.StreamingQuality = q
		return true
	case "track_numbering":
		n, ok := tracknumber.FromManifestKey(f.Value)
		if !ok {
			diag.errorf(f.Line, "unknown track_numbering value %q", f.Value)
			return true
		}
		overrides.TrackNumbering = n
		return true
	case "release_downloads":
		overrides.ReleaseDownloads = parseDownloadFormats(f, diag)
		return true
	case "track_downloads":
		overrides.TrackDownloads = parseDownloadFormats(f, diag)
		return true
	case "release_download_access":
		access, ok := parseDownloadAccess(f.Value)
		if !ok {
			diag.errorf(f.Line, "unknown release_download_access value %q", f.Value)
			return true
		}
		overrides.ReleaseDownloadAccess = access
		return true
	case "track_download_access":
		access, ok := parseDownloadAccess(f.Value)
		if !ok {
			diag.errorf(f.Line, "unknown track_download_access value %q", f.Value)
			return true
		}
		overrides.TrackDownloadAccess = access
		return true
	case "release_extras":
		policy, ok := parseExtrasPolicy(f.Value)
		if !ok {
			diag.errorf(f.Line, "unknown release_extras value %q", f.Value)
			return true
		}
		overrides.ReleaseExtras = policy
		return true
	case "release_price":
		price, err := parsePrice(f.Value)
		if err != nil {
			diag.errorf(f.Line, "%s", err)
			return true
		}
		overrides.ReleasePrice = price
		return true
	case "track_price":
		price, err := parsePrice(f.Value)
		if err != nil {
			diag.errorf(f.Line, "%s", err)
			return true
		}
		overrides.TrackPrice = price
		return true
	case "tags":
		if f.Kind != Attributed {
			diag.errorf(f.Line, "'tags' must list per-field actions, e.g. \"tags:\\nalbum = rewrite\"")
			return true
		}
		for subkey, values := range f.Attrs {
			if len(values) == 0 {
				continue
			}
			if err := overrides.TagAgenda.Set(subkey, values[len(values)-1]); err != nil {
				diag.errorf(f.Line, "%s", err)
			}
		}
		return true
	case "theme":
		if f.Kind == Attributed {
			for k, v := range f.Attrs {
				if len(v) > 0 {
					overrides.Theme[k] = v[len(v)-1]
				}
			}
		} else {
			overrides.Theme["base"] = f.Value
		}
		return true
	case "artist":
		// Renamed to 'release_artist'/'track_artist' since faircamp 1.0;
		// kept here only as a diagnostic for migrating catalogs.
		diag.errorf(f.Line, "the 'artist' field was renamed to 'release_artist' (or 'track_artist' inside a track manifest); a bare 'artist:' field with attributes now defines a new artist inline instead")
		return true
	default:
		return false
	}
}

func applyBool(f Field, target *bool, diag *Diagnostics) {
	b, err := parseBool(f.Value)
	if err != nil {
		diag.errorf(f.Line, "%q must be 'true' or 'false', got %q", f.Key, f.Value)
		return
	}
	*target = b
}

func applyStringList(f Field, target *[]string) {
	switch f.Kind {
	case List:
		*target = append([]string(nil), f.Items...)
	default:
		*target = []string{f.Value}
	}
}

func parseBool(value string) (bool, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("expected 'true' or 'false', got %q", value)
	}
}

func parseDownloadFormats(f Field, diag *Diagnostics) []downloadformat.Format {
	keys := f.Items
	if f.Kind != List {
		keys = []string{f.Value}
	}
	var formats []downloadformat.Format
	for _, key := range keys {
		format, ok := downloadformat.FromManifestKey(key)
		if !ok {
			diag.errorf(f.Line, "unknown download format %q", key)
			continue
		}
		formats = append(formats, format)
	}
	return formats
}

func parseDownloadAccess(value string) (DownloadAccess, bool) {
	switch value {
	case "free":
		return DownloadAccessFree, true
	case "external":
		return DownloadAccessExternal, true
	case "code":
		return DownloadAccessCode, true
	case "paid":
		return DownloadAccessPaid, true
	default:
		return 0, false
	}
}

func parseExtrasPolicy(value string) (ExtrasPolicy, bool) {
	switch value {
	case "disabled":
		return ExtrasDisabled, true
	case "bundled":
		return ExtrasBundled, true
	case "separate":
		return ExtrasSeparate, true
	case "both":
		return ExtrasBoth, true
	default:
		return 0, false
	}
}

func parsePrice(value string) (Price, error) {
	switch value {
	case "free":
		return Price{Kind: PriceFree}, nil
	case "":
		return Price{}, fmt.Errorf("price must not be empty")
	}
	if value[0] == '>' {
		amount, err := strconv.ParseFloat(trimLeadingOperator(value, '>'), 64)
		if err != nil {
			return Price{}, fmt.Errorf("invalid suggested price %q", value)
		}
		return Price{Kind: PriceSuggested, Amount: amount}, nil
	}
	amount, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return Price{}, fmt.Errorf("invalid price %q (expected 'free', a fixed amount, or '>amount' for a suggested minimum)", value)
	}
	return Price{Kind: PriceFixed, Amount: amount}, nil
}

func trimLeadingOperator(s string, op byte) string {
	i := 0
	for i < len(s) && s[i] == op {
		i++
	}
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return s[i:]
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
