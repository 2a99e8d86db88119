// Package e2e drives whole Pipeline.Build() runs against small fixture
// catalogs, mirroring the teacher's e2e package's style of standing up a
// full component (there a test server, here a full build) and asserting on
// its externally observable output rather than on any single internal call.
package e2e

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"tonearm/internal/config"
	"tonearm/internal/logger"
	"tonearm/internal/pipeline"
	"tonearm/internal/transcode"
)

// stubTranscoder renders every request as a fixed small payload instead of
// shelling out to ffmpeg, so these tests don't depend on ffmpeg being
// installed on the machine running them. It counts invocations so tests can
// assert on re-encode avoidance (spec §8 scenario 3).
type stubTranscoder struct {
	calls int
}

func (s *stubTranscoder) Transcode(req transcode.Request) error {
	s.calls++
	return os.WriteFile(req.OutputPath, []byte("stub transcoded bytes"), 0644)
}

// writeSilentWav writes a minimal 16-bit PCM mono WAV file with sampleCount
// silent samples, enough for audiometa's WAV decoder to read successfully.
func writeSilentWav(t *testing.T, path string, sampleCount int) {
	t.Helper()
	data := make([]byte, sampleCount*2)

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(data)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1) // mono
	binary.LittleEndian.PutUint32(header[24:28], 44100)
	binary.LittleEndian.PutUint32(header[28:32], 44100*2)
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(data)))

	if err := os.WriteFile(path, append(header[:], data...), 0644); err != nil {
		t.Fatalf("writing fixture WAV %s: %v", path, err)
	}
}

// testCatalog holds the three directories one Pipeline.Build() run needs.
type testCatalog struct {
	catalogDir string
	cacheDir   string
	buildDir   string
}

func newTestCatalog(t *testing.T) testCatalog {
	t.Helper()
	root := t.TempDir()
	tc := testCatalog{
		catalogDir: filepath.Join(root, "catalog"),
		cacheDir:   filepath.Join(root, "cache"),
		buildDir:   filepath.Join(root, "build"),
	}
	if err := os.MkdirAll(tc.catalogDir, 0755); err != nil {
		t.Fatalf("mkdir catalog dir: %v", err)
	}
	return tc
}

// build runs a full Pipeline.Build() against tc using tr as the transcoder,
// returning the error Build produced (nil on success).
func (tc testCatalog) build(t *testing.T, tr transcode.Transcoder) error {
	t.Helper()
	return tc.buildWithConfig(t, tr, func(*config.Config) {})
}

// buildWithConfig is like build, but lets the caller tweak the Config
// before defaults/validation run (e.g. setting CacheOptimization).
func (tc testCatalog) buildWithConfig(t *testing.T, tr transcode.Transcoder, configure func(*config.Config)) error {
	t.Helper()
	cfg := &config.Config{
		CatalogDir: tc.catalogDir,
		CacheDir:   tc.cacheDir,
		BuildDir:   tc.buildDir,
	}
	configure(cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid fixture config: %v", err)
	}
	log := logger.NewLogger(logger.LevelError)
	p := pipeline.NewWithTranscoder(cfg, log, tr)
	return p.Build()
}

// writtenFiles walks buildDir and returns every file path found (directories
// excluded), relative to buildDir.
func writtenFiles(t *testing.T, buildDir string) []string {
	t.Helper()
	var out []string
	err := filepath.Walk(buildDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, relErr := filepath.Rel(buildDir, path)
			if relErr != nil {
				return relErr
			}
			out = append(out, rel)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("walking build dir: %v", err)
	}
	return out
}
