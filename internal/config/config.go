// Package config loads tonearm's build configuration, grounded on
// silobang/internal/config's load-or-create-with-defaults/validate/
// log-effective-values idiom (Fantasim-silobang is the teacher for this
// module).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tonearm/internal/cache"
	"tonearm/internal/constants"
	"tonearm/internal/logger"
)

// URLSaltMode selects how the hashed path segments embedded in asset
// filenames (spec §4.9) are derived across builds.
type URLSaltMode int

const (
	// SaltStable uses a fixed empty salt: asset paths stay identical
	// across builds as long as their content does.
	SaltStable URLSaltMode = iota
	// SaltFrozen uses a user-supplied fixed string.
	SaltFrozen
	// SaltRandomized generates a new salt every build, rotating every
	// hashed asset path.
	SaltRandomized
)

// Config holds tonearm's effective build configuration, merged from a YAML
// file (if present) and CLI flags.
type Config struct {
	CatalogDir string `yaml:"catalog_dir"`
	CacheDir   string `yaml:"cache_dir"`
	BuildDir   string `yaml:"build_dir"`

	CacheOptimization string `yaml:"cache_optimization"`

	URLSaltMode   string `yaml:"url_salt_mode"`
	URLSaltFrozen string `yaml:"url_salt_frozen"`

	IgnoreErrors bool `yaml:"ignore_errors"`

	// Workers is reserved for a future parallel pipeline; the build
	// itself is single-threaded per spec (§5 Concurrency & Resource
	// Model), so this value is currently read but unused.
	Workers int `yaml:"workers"`

	LogLevel string `yaml:"log_level"`
	LogDir   string `yaml:"log_dir"`
}

// ApplyDefaults fills zero-valued fields with constant defaults.
func (cfg *Config) ApplyDefaults() {
	if cfg.CatalogDir == "" {
		cfg.CatalogDir = "."
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(cfg.CatalogDir, constants.InternalDir, "cache")
	}
	if cfg.BuildDir == "" {
		cfg.BuildDir = filepath.Join(cfg.CatalogDir, "build")
	}
	if cfg.CacheOptimization == "" {
		cfg.CacheOptimization = "default"
	}
	if cfg.URLSaltMode == "" {
		cfg.URLSaltMode = "stable"
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = constants.DefaultLogLevel
	}
}

// Validate re-checks a Config after its fields have been overridden (e.g.
// by CLI flags applied on top of a loaded file), mirroring the check Load
// already performs internally.
func (cfg *Config) Validate() error {
	return cfg.validate()
}

// validate checks that all configurable values resolve to a known option.
func (cfg *Config) validate() error {
	var errs []string

	if _, ok := parseOptimization(cfg.CacheOptimization); !ok {
		errs = append(errs, fmt.Sprintf("cache_optimization: unknown value %q", cfg.CacheOptimization))
	}
	if _, err := cfg.saltMode(); err != nil {
		errs = append(errs, err.Error())
	}
	if cfg.Workers < 1 {
		errs = append(errs, "workers must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// saltMode parses URLSaltMode/URLSaltFrozen into a URLSaltMode value.
func (cfg *Config) saltMode() (URLSaltMode, error) {
	switch cfg.URLSaltMode {
	case "stable":
		return SaltStable, nil
	case "frozen":
		if cfg.URLSaltFrozen == "" {
			return 0, fmt.Errorf("url_salt_mode: \"frozen\" requires url_salt_frozen to be set")
		}
		return SaltFrozen, nil
	case "randomized":
		return SaltRandomized, nil
	default:
		return 0, fmt.Errorf("url_salt_mode: unknown value %q (expected stable, frozen or randomized)", cfg.URLSaltMode)
	}
}

// parseOptimization parses a cache_optimization config value, accepting
// "default" on top of the values cache.OptimizationFromManifestKey
// recognizes (that function's key set excludes "default" because it is
// spelled out only as the zero value of cache.Optimization).
func parseOptimization(key string) (cache.Optimization, bool) {
	if key == "default" {
		return cache.Default, true
	}
	return cache.OptimizationFromManifestKey(key)
}

// Optimization resolves the configured cache optimization mode.
func (cfg *Config) Optimization() cache.Optimization {
	o, _ := parseOptimization(cfg.CacheOptimization)
	return o
}

// SaltMode resolves the configured URL salt mode, along with the frozen
// string when SaltFrozen is selected.
func (cfg *Config) SaltMode() (URLSaltMode, string) {
	mode, _ := cfg.saltMode()
	return mode, cfg.URLSaltFrozen
}

// LogEffectiveValues logs every effective configuration value at startup.
func (cfg *Config) LogEffectiveValues(log *logger.Logger) {
	log.Info("config: catalog_dir=%s", cfg.CatalogDir)
	log.Info("config: cache_dir=%s", cfg.CacheDir)
	log.Info("config: build_dir=%s", cfg.BuildDir)
	log.Info("config: cache_optimization=%s", cfg.CacheOptimization)
	log.Info("config: url_salt_mode=%s", cfg.URLSaltMode)
	log.Info("config: ignore_errors=%t", cfg.IgnoreErrors)
	log.Info("config: workers=%d", cfg.Workers)
	log.Info("config: log_level=%s", cfg.LogLevel)
}

// Load reads path (if it exists) as YAML into a Config, applying defaults
// for any field left unset and validating the result. A missing file is
// not an error: Load returns an all-defaults Config instead, mirroring the
// teacher's load-or-create behavior but without writing the file back
// (tonearm has no interactive setup step that owns the config's lifetime).
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No config file: proceed with defaults only.
	default:
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
