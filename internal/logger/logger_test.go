package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tonearm/internal/constants"
)

func TestNewLoggerDefaultsToStdout(t *testing.T) {
	log := NewLogger(LevelInfo)
	if !log.writeToStdout {
		t.Error("expected writeToStdout to be true by default")
	}
	if log.workDir != "" {
		t.Error("expected empty workDir for stdout-only logger")
	}
}

func TestNewLoggerInvalidLevelDefaultsToDebug(t *testing.T) {
	log := NewLogger("bogus")
	if log.level != LevelDebug {
		t.Errorf("expected invalid level to default to debug, got %s", log.level)
	}
}

func makeLogDirs(t *testing.T, workDir string) {
	t.Helper()
	logsDir := filepath.Join(workDir, constants.InternalDir, constants.LogsDir)
	for _, level := range []string{constants.LogsDirDebug, constants.LogsDirInfo, constants.LogsDirWarn, constants.LogsDirError} {
		if err := os.MkdirAll(filepath.Join(logsDir, level), constants.DirPermissions); err != nil {
			t.Fatalf("creating log dir: %v", err)
		}
	}
}

func readOnlyLogFile(t *testing.T, workDir, level string) string {
	t.Helper()
	dir := filepath.Join(workDir, constants.InternalDir, constants.LogsDir, level)
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	if len(files) != 1 {
		t.Fatalf("expected exactly one file in %s, got %d", dir, len(files))
	}
	content, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	return string(content)
}

func TestLoggerWritesToLevelDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	makeLogDirs(t, tmpDir)

	log := NewLoggerWithOptions(LoggerOptions{Level: LevelDebug, WorkDir: tmpDir})
	defer log.Close()

	log.Info("hello %s", "world")

	content := readOnlyLogFile(t, tmpDir, constants.LogsDirInfo)
	if !strings.Contains(content, "[INFO]") {
		t.Error("expected log line to carry the [INFO] level tag")
	}
	if !strings.Contains(content, "hello world") {
		t.Error("expected log line to carry the formatted message")
	}
}

func TestLoggerSetPrefixTagsSubsequentLines(t *testing.T) {
	tmpDir := t.TempDir()
	makeLogDirs(t, tmpDir)

	log := NewLoggerWithOptions(LoggerOptions{Level: LevelDebug, WorkDir: tmpDir})
	defer log.Close()

	log.Info("before prefix")
	log.SetPrefix("cache")
	log.Info("retrieving cache")
	log.SetPrefix("catalog")
	log.Info("reading catalog")

	content := readOnlyLogFile(t, tmpDir, constants.LogsDirInfo)
	if strings.Contains(content, "[cache] before prefix") {
		t.Error("prefix should not apply retroactively to lines logged before SetPrefix")
	}
	if !strings.Contains(content, "[cache] retrieving cache") {
		t.Error("expected the cache-phase line to carry the [cache] prefix")
	}
	if !strings.Contains(content, "[catalog] reading catalog") {
		t.Error("expected the catalog-phase line to carry the [catalog] prefix")
	}
}

func TestLoggerSetPrefixEmptyClearsIt(t *testing.T) {
	tmpDir := t.TempDir()
	makeLogDirs(t, tmpDir)

	log := NewLoggerWithOptions(LoggerOptions{Level: LevelDebug, WorkDir: tmpDir})
	defer log.Close()

	log.SetPrefix("cache")
	log.SetPrefix("")
	log.Info("plain message")

	content := readOnlyLogFile(t, tmpDir, constants.LogsDirInfo)
	if strings.Contains(content, "[cache]") {
		t.Error("expected SetPrefix(\"\") to clear the prefix")
	}
}

func TestLoggerShouldLogRespectsLevelOrder(t *testing.T) {
	log := NewLogger(LevelWarn)
	if log.shouldLog(LevelInfo) {
		t.Error("expected INFO to be suppressed when logger level is WARN")
	}
	if !log.shouldLog(LevelError) {
		t.Error("expected ERROR to pass when logger level is WARN")
	}
}
