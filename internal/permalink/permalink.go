// Package permalink implements slug generation/validation and the
// catalog-wide uniqueness registry described in spec §4.3 and grounded on
// original_source/src/permalink.rs. A release or artist either carries an
// explicit, user-assigned slug (validated to already be in canonical slug
// form) or an auto-generated one derived from its name/title. After the
// whole catalog is read, the Registry is asked to check all used slugs for
// uniqueness; any conflict is a hard, non-suppressible build error.
package permalink

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Permalink is a release's or artist's URL path segment.
type Permalink struct {
	Slug      string
	Generated bool
}

// Generate derives an auto-generated permalink from an arbitrary string
// (typically a release title or artist name).
func Generate(nonSlug string) Permalink {
	return Permalink{Slug: Slugify(nonSlug), Generated: true}
}

// New validates an explicitly assigned slug: it must already equal its own
// slugified form, otherwise the assignment is rejected with a suggestion.
func New(slug string) (Permalink, error) {
	slugified := Slugify(slug)
	if slug != slugified {
		return Permalink{}, fmt.Errorf("%q is not a valid permalink, an allowed version would be %q", slug, slugified)
	}
	return Permalink{Slug: slug, Generated: false}, nil
}

// UID returns an opaque, non-slug-derived permalink, used for the
// subscribe page and per-code unlock paths (§8 scenario 4) when no
// human-meaningful slug applies. google/uuid stands in for the original's
// bespoke uid() generator.
func UID() Permalink {
	return Permalink{Slug: strings.ReplaceAll(uuid.NewString(), "-", ""), Generated: false}
}

// GeneratedOrAssigned describes the provenance of the slug for error
// messages ("auto-generated" / "user-assigned").
func (p Permalink) GeneratedOrAssigned() string {
	if p.Generated {
		return "auto-generated"
	}
	return "user-assigned"
}

// Slugify lowercases ASCII letters and digits and replaces every run of
// other characters, non-ASCII letters included, with a single hyphen
// (leading and trailing hyphens are dropped). No pack example or common Go library implements this particular transform as a
// single importable function with matching semantics (hyphen collapsing,
// leading/trailing trim), so it is hand-rolled here; it is a handful of
// lines of straightforward stdlib `strings`/`unicode` use, not a cache or
// hashing algorithm, so no ecosystem substitute was sought.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	return out
}

// Owner identifies the kind of catalog entity a slug belongs to, for
// conflict-reporting purposes.
type Owner struct {
	Kind string // "artist" or "release"
	Name string // artist name or release title
	Path string // release source directory, empty for artists
}

// Registry tracks every slug claimed across the catalog (releases, artists,
// and the reserved subscribe-page slug) and detects conflicts.
type Registry struct {
	claimed map[string]Owner
}

// NewRegistry creates an empty slug registry.
func NewRegistry() *Registry {
	return &Registry{claimed: make(map[string]Owner)}
}

// Claim registers slug for owner. If the slug is already claimed by a
// different owner, a conflict error is returned — permalink conflicts are
// never suppressible (§4.3, §6, §7).
func (r *Registry) Claim(slug string, owner Owner) error {
	if existing, ok := r.claimed[slug]; ok {
		return fmt.Errorf(
			"permalink conflict: slug %q is used by both %s and %s (assign an alias or an explicit permalink to resolve this)",
			slug, describe(existing), describe(owner),
		)
	}
	r.claimed[slug] = owner
	return nil
}

func describe(o Owner) string {
	if o.Kind == "release" && o.Path != "" {
		return fmt.Sprintf("the release %q from directory %q", o.Name, o.Path)
	}
	return fmt.Sprintf("the %s %q", o.Kind, o.Name)
}

// ReserveSubscribeSlug reserves the translated subscribe-page slug, prefixing
// it with underscores until it no longer collides with any claimed slug
// (§4.3: "the subscribe slug is prefixed with underscores until unique").
func (r *Registry) ReserveSubscribeSlug(translatedSlug string) string {
	candidate := translatedSlug
	for {
		if _, ok := r.claimed[candidate]; !ok {
			r.claimed[candidate] = Owner{Kind: "subscribe", Name: candidate}
			return candidate
		}
		candidate = "_" + candidate
	}
}
