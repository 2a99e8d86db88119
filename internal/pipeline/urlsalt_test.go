package pipeline

import (
	"testing"

	"tonearm/internal/config"
)

func TestResolveSaltStableIsEmpty(t *testing.T) {
	cfg := &config.Config{URLSaltMode: "stable"}
	cfg.ApplyDefaults()

	salt, err := resolveSalt(cfg)
	if err != nil {
		t.Fatalf("resolveSalt: %v", err)
	}
	if salt != "" {
		t.Fatalf("expected empty salt for stable mode, got %q", salt)
	}
}

func TestResolveSaltFrozenReturnsConfiguredValue(t *testing.T) {
	cfg := &config.Config{URLSaltMode: "frozen", URLSaltFrozen: "abc123"}
	cfg.ApplyDefaults()

	salt, err := resolveSalt(cfg)
	if err != nil {
		t.Fatalf("resolveSalt: %v", err)
	}
	if salt != "abc123" {
		t.Fatalf("expected frozen salt %q, got %q", "abc123", salt)
	}
}

func TestResolveSaltRandomizedVariesEachCall(t *testing.T) {
	cfg := &config.Config{URLSaltMode: "randomized"}
	cfg.ApplyDefaults()

	first, err := resolveSalt(cfg)
	if err != nil {
		t.Fatalf("resolveSalt: %v", err)
	}
	second, err := resolveSalt(cfg)
	if err != nil {
		t.Fatalf("resolveSalt: %v", err)
	}
	if first == "" || second == "" {
		t.Fatalf("expected non-empty randomized salts, got %q and %q", first, second)
	}
	if first == second {
		t.Fatalf("expected distinct salts across calls, got %q twice", first)
	}
}

func TestHashedPathSegmentIsDeterministic(t *testing.T) {
	a := hashedPathSegment("salt", "some-release", 0, "mp3", "01 Track.mp3")
	b := hashedPathSegment("salt", "some-release", 0, "mp3", "01 Track.mp3")
	if a != b {
		t.Fatalf("expected identical inputs to hash identically, got %q and %q", a, b)
	}
}

func TestHashedPathSegmentVariesWithEachInput(t *testing.T) {
	base := hashedPathSegment("salt", "some-release", 0, "mp3", "01 Track.mp3")

	if other := hashedPathSegment("other-salt", "some-release", 0, "mp3", "01 Track.mp3"); other == base {
		t.Fatal("expected different salt to change the hashed segment")
	}
	if other := hashedPathSegment("salt", "other-release", 0, "mp3", "01 Track.mp3"); other == base {
		t.Fatal("expected different release slug to change the hashed segment")
	}
	if other := hashedPathSegment("salt", "some-release", 1, "mp3", "01 Track.mp3"); other == base {
		t.Fatal("expected different track index to change the hashed segment")
	}
	if other := hashedPathSegment("salt", "some-release", 0, "flac", "01 Track.mp3"); other == base {
		t.Fatal("expected different format key to change the hashed segment")
	}
	if other := hashedPathSegment("salt", "some-release", 0, "mp3", "02 Other.mp3"); other == base {
		t.Fatal("expected different filename to change the hashed segment")
	}
}

func TestHashedPathSegmentHandlesNegativeTrackIndex(t *testing.T) {
	// trackIndex -1 is the release-level convention (archives, separate extras);
	// it must not collide with an actual track-level index of 0.
	releaseLevel := hashedPathSegment("salt", "some-release", -1, "archive", "release.zip")
	trackZero := hashedPathSegment("salt", "some-release", 0, "archive", "release.zip")
	if releaseLevel == trackZero {
		t.Fatal("expected release-level (-1) and track index 0 to hash differently")
	}
}
