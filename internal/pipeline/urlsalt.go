package pipeline

import (
	"crypto/rand"
	"encoding/hex"

	"tonearm/internal/config"
	"tonearm/internal/hashx"
)

// resolveSalt returns the URL salt string in effect for one build, per
// config.URLSaltMode: stable uses a fixed empty string, frozen uses the
// configured literal, randomized draws fresh bytes once per build so every
// hashed asset path rotates (spec §4.9).
func resolveSalt(cfg *config.Config) (string, error) {
	mode, frozen := cfg.SaltMode()
	switch mode {
	case config.SaltStable:
		return "", nil
	case config.SaltFrozen:
		return frozen, nil
	case config.SaltRandomized:
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		return hex.EncodeToString(buf), nil
	default:
		return "", nil
	}
}

// hashedPathSegment derives the per-URL hashed directory segment for one
// asset: a stable hash of (release slug, track index, format key,
// filename) combined with the build's URL salt (spec §4.9). trackIndex is
// -1 for release-level assets (archives, separate extras) that aren't scoped to a
// single track.
func hashedPathSegment(salt, releaseSlug string, trackIndex int, formatKey, filename string) string {
	c := hashx.NewCombiner()
	c.WriteString(salt)
	c.WriteString(releaseSlug)
	c.WriteUint64(uint64(trackIndex + 1))
	c.WriteString(formatKey)
	c.WriteString(filename)
	return hashx.URLSafeBase64(c.Sum())
}
