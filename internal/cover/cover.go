// Package cover synthesizes a deterministic procedural cover image for
// releases that have no cover of their own, at four fixed sizes. Grounded
// on original_source/src/cover_generator.rs: the same six named styles,
// each a pure function of a release's track peak envelopes, a theme base
// and a stable RNG seed.
package cover

import (
	"fmt"
	"math/rand"
	"time"

	"tonearm/internal/cache"
	"tonearm/internal/hashx"
)

// Generator selects one of the fixed set of named procedural cover styles.
type Generator int

const (
	BestRillen Generator = iota
	Blocks
	GlassSplinters
	LooneyTunes
	ScratchyFaintRillen
	SpaceTimeRupture
)

var generatorKeys = map[string]Generator{
	"best_rillen":           BestRillen,
	"blocks":                Blocks,
	"glass_splinters":       GlassSplinters,
	"looney_tunes":          LooneyTunes,
	"scratchy_faint_rillen": ScratchyFaintRillen,
	"space_time_rupture":    SpaceTimeRupture,
}

var generatorNames = map[Generator]string{
	BestRillen:          "Beste Rillen",
	Blocks:              "Blocks",
	GlassSplinters:      "Glass Splinters",
	LooneyTunes:         "Looney Tunes",
	ScratchyFaintRillen: "Scratchy Faint Rillen",
	SpaceTimeRupture:    "Space Time Rupture",
}

// FromManifestKey parses a generator key as it appears in a manifest
// override.
func FromManifestKey(key string) (Generator, bool) {
	g, ok := generatorKeys[key]
	return g, ok
}

// Name returns the generator's display name.
func (g Generator) Name() string {
	if name, ok := generatorNames[g]; ok {
		return name
	}
	return "Unknown"
}

// AllGenerators returns every generator, in a stable order, for use where a
// random or round-robin choice among all styles is needed.
func AllGenerators() []Generator {
	return []Generator{BestRillen, Blocks, GlassSplinters, LooneyTunes, ScratchyFaintRillen, SpaceTimeRupture}
}

// TrackInput is the subset of a track's decoded audio data a generator
// draws from.
type TrackInput struct {
	DurationSeconds float32
	Peaks           []float32
}

// Input gathers everything a generator needs to render a release's
// procedural cover.
type Input struct {
	ReleaseTitle       string
	Tracks             []TrackInput
	ThemeBase          string // "dark" or "light"; "" defaults to dark
	MaxTracksInCatalog int
}

// strokeLightness mirrors the original's Theme::procedural_cover_stroke_lightness:
// a dark theme gets light (white) strokes, a light theme gets dark (black)
// strokes, so the generated art keeps contrast against the page background
// either way.
func (in Input) strokeLightness() float64 {
	if in.ThemeBase == "light" {
		return 0.0
	}
	return 1.0
}

// Signature hashes the inputs that affect procedural cover rendering into
// a 64-bit cache key (spec §4.7): the chosen generator, the catalog-wide
// maximum track count (the Looney Tunes style scales amplitude by it),
// the theme base, and every track's content hash.
func Signature(generator Generator, maxTracksInCatalog int, themeBase string, trackSourceHashes []hashx.Hash) hashx.Hash {
	c := hashx.NewCombiner()
	c.WriteString(generator.Name())
	c.WriteUint64(uint64(maxTracksInCatalog))
	c.WriteString(themeBase)
	for _, h := range trackSourceHashes {
		c.WriteHash(h)
	}
	return c.Sum()
}

// Generate renders all four sizes for generator against input and stores
// each as a content-addressed PNG asset. The returned entity carries
// buildBegin as its own stale mark, mirroring the original's
// ProceduralCover::generate (which stamps marked_stale at creation time) —
// the caller is expected to unmark it once it associates the cover with
// the release being built this cycle.
func Generate(store *cache.Store, generator Generator, input Input, signature hashx.Hash, buildBegin time.Time) (cache.ProceduralCover, error) {
	asset720, err := generateSize(store, generator, input, signature, 720)
	if err != nil {
		return cache.ProceduralCover{}, err
	}
	asset480, err := generateSize(store, generator, input, signature, 480)
	if err != nil {
		return cache.ProceduralCover{}, err
	}
	asset240, err := generateSize(store, generator, input, signature, 240)
	if err != nil {
		return cache.ProceduralCover{}, err
	}
	asset120, err := generateSize(store, generator, input, signature, 120)
	if err != nil {
		return cache.ProceduralCover{}, err
	}

	pc := cache.ProceduralCover{
		Signature: signature,
		Asset120:  asset120,
		Asset240:  asset240,
		Asset480:  asset480,
		Asset720:  asset720,
	}
	pc.MarkStale(buildBegin)

	return pc, nil
}

func generateSize(store *cache.Store, generator Generator, input Input, signature hashx.Hash, edgeSize int) (cache.Asset, error) {
	var c *canvas

	switch generator {
	case BestRillen:
		c = generateBestRillen(edgeSize, input)
	case Blocks:
		c = generateBlocks(edgeSize, input, signature)
	case GlassSplinters:
		c = generateGlassSplinters(edgeSize, input)
	case LooneyTunes:
		c = generateLooneyTunes(edgeSize, input)
	case ScratchyFaintRillen:
		c = generateScratchyFaintRillen(edgeSize, input)
	case SpaceTimeRupture:
		c = generateSpaceTimeRupture(edgeSize, input)
	default:
		return cache.Asset{}, fmt.Errorf("cover: unknown generator %d", generator)
	}

	data, err := c.encodePNG()
	if err != nil {
		return cache.Asset{}, fmt.Errorf("encoding procedural cover png: %w", err)
	}

	return store.Put(data, ".png")
}

func longestDuration(tracks []TrackInput) float32 {
	var longest float32
	for _, t := range tracks {
		if t.DurationSeconds > longest {
			longest = t.DurationSeconds
		}
	}
	return longest
}

func shortestDuration(tracks []TrackInput) float32 {
	if len(tracks) == 0 {
		return 0
	}
	shortest := tracks[0].DurationSeconds
	for _, t := range tracks[1:] {
		if t.DurationSeconds < shortest {
			shortest = t.DurationSeconds
		}
	}
	return shortest
}

func totalDuration(tracks []TrackInput) float32 {
	var total float32
	for _, t := range tracks {
		total += t.DurationSeconds
	}
	return total
}

// peakStep is one sample visited by a step_by(n).enumerate() walk over a
// track's peak envelope: enumIndex counts visited samples (0, 1, 2, ...)
// while the underlying array index jumps by step. Several generators key
// their angular offset off enumIndex rather than the underlying index, so
// the two must be tracked separately to match the original's geometry.
type peakStep struct {
	enumIndex int
	peak      float32
}

func stepPeaks(peaks []float32, step int) []peakStep {
	out := make([]peakStep, 0, len(peaks)/step+1)
	enumIndex := 0
	for i := 0; i < len(peaks); i += step {
		out = append(out, peakStep{enumIndex: enumIndex, peak: peaks[i]})
		enumIndex++
	}
	return out
}

func newRNG(signature hashx.Hash) *rand.Rand {
	return rand.New(rand.NewSource(int64(signature)))
}
