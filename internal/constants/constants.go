// Package constants collects fixed values shared across tonearm's packages:
// cache schema keys, decay windows, default resize targets and file
// permissions. Centralizing them here keeps the individual cache/pipeline
// packages free of magic numbers.
package constants

import (
	"os"
	"time"
)

// Application
const (
	AppName        = "tonearm"
	AppDisplayName = "Tonearm"
)

// File permissions
const (
	DirPermissions  os.FileMode = 0755
	FilePermissions os.FileMode = 0644
)

// Cache layout (see spec §4.2, §6).
const (
	CacheVersionMarker = "cache1.marker"

	// Schema keys embed a version suffix; bumping the suffix invalidates
	// old manifests automatically on next retrieve.
	SchemaKeyArchives        = "archives1"
	SchemaKeyImage           = "image2"
	SchemaKeyProceduralCover = "procedural_cover1"
	SchemaKeyTranscodes      = "transcodes1"

	ManifestExt = "msgpack"
)

// Decay / eviction (§3 Lifecycle, §4.2 obsolete rule).
const (
	DecayWindow = 24 * time.Hour
)

// Audio peak envelope (§4.4).
const PeakEnvelopePoints = 320

// Image resize targets (§4.8).
const (
	MinOvershoot = 1.2

	CoverEdge160  = 160
	CoverEdge320  = 320
	CoverEdge480  = 480
	CoverEdge800  = 800
	CoverEdge1280 = 1280

	ArtistFixedWidth320 = 320
	ArtistFixedWidth480 = 480
	ArtistFixedWidth640 = 640

	ArtistFluidWidth640  = 640
	ArtistFluidWidth960  = 960
	ArtistFluidWidth1280 = 1280

	BackgroundMaxEdge = 1280
	FeedMaxEdge       = 920
)

// Procedural cover sizes (§4.7).
var ProceduralCoverSizes = [4]int{120, 240, 480, 720}

// Logging.
const (
	LogsDir            = "logs"
	LogsDirDebug       = "debug"
	LogsDirInfo        = "info"
	LogsDirWarn        = "warn"
	LogsDirError       = "error"
	LogFileExtension   = ".log"
	LogTimestampFormat = "2006-01-02 15:04:05"
	DefaultLogLevel    = "INFO"
)

// InternalDir is the bookkeeping directory name: the default cache dir is
// <catalog>/.tonearm/cache, and file logging writes under
// <workDir>/.tonearm/logs.
const InternalDir = ".tonearm"
