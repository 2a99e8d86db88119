package e2e

import (
	"os"
	"path/filepath"
	"testing"

	"tonearm/internal/config"
)

// TestImmediateOptimizationSecondBuildRendersNothingNew covers spec.md §8
// scenario 3: two consecutive builds with cache_optimization: immediate and
// no source changes between them produce zero new transcoder invocations on
// the second build, and the build directory's file set is unchanged.
func TestImmediateOptimizationSecondBuildRendersNothingNew(t *testing.T) {
	tc := newTestCatalog(t)

	releaseDir := filepath.Join(tc.catalogDir, "Fixture Release")
	if err := os.MkdirAll(releaseDir, 0755); err != nil {
		t.Fatalf("mkdir release dir: %v", err)
	}
	writeSilentWav(t, filepath.Join(releaseDir, "01. Opening.wav"), 4410)
	writeSilentWav(t, filepath.Join(releaseDir, "02. Closing.wav"), 4410)
	if err := os.WriteFile(filepath.Join(releaseDir, "cover.jpg"), []byte("fake jpg"), 0644); err != nil {
		t.Fatalf("writing fixture cover: %v", err)
	}

	withImmediate := func(cfg *config.Config) { cfg.CacheOptimization = "immediate" }

	first := &stubTranscoder{}
	if err := tc.buildWithConfig(t, first, withImmediate); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if first.calls == 0 {
		t.Fatal("expected the first build to render at least one transcode")
	}
	filesAfterFirst := writtenFiles(t, tc.buildDir)

	second := &stubTranscoder{}
	if err := tc.buildWithConfig(t, second, withImmediate); err != nil {
		t.Fatalf("second build: %v", err)
	}
	if second.calls != 0 {
		t.Fatalf("expected zero transcoder invocations on the unchanged second build, got %d", second.calls)
	}

	filesAfterSecond := writtenFiles(t, tc.buildDir)
	if len(filesAfterSecond) != len(filesAfterFirst) {
		t.Fatalf("expected the build directory's file set to be unchanged, had %d files, now %d",
			len(filesAfterFirst), len(filesAfterSecond))
	}
}
