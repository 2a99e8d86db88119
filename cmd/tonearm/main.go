package main

import (
	"flag"
	"fmt"
	"os"

	"tonearm/internal/config"
	"tonearm/internal/constants"
	"tonearm/internal/logger"
	"tonearm/internal/pipeline"
	"tonearm/internal/version"
)

func main() {
	// 0. Version flag
	showVersion := flag.Bool("version", false, "print version and exit")

	catalogDir := flag.String("catalog", "", "catalog directory (default: current directory)")
	cacheDir := flag.String("cache", "", "cache directory (default: <catalog>/.tonearm/cache)")
	buildDir := flag.String("build", "", "build output directory (default: <catalog>/build)")
	cacheOptimization := flag.String("cache-optimization", "", "cache optimization mode: default, delayed, immediate, manual or wipe")
	urlSaltMode := flag.String("url-salt", "", "URL salt mode: stable, frozen or randomized")
	urlSaltFrozen := flag.String("url-salt-value", "", "frozen salt value, required when -url-salt=frozen")
	ignoreErrors := flag.Bool("ignore-errors", false, "skip releases/tracks that fail instead of aborting the build")
	configPath := flag.String("config", "", "path to a tonearm.yml config file (default: <catalog>/tonearm.yml)")

	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", constants.AppDisplayName, version.Version)
		os.Exit(0)
	}

	// 1. Initialize logger
	log := logger.NewLogger(constants.DefaultLogLevel)
	log.Info("%s version %s starting", constants.AppDisplayName, version.Version)

	// 2. Load config, overlaying CLI flags over whatever the YAML file sets
	path := *configPath
	if path == "" {
		dir := *catalogDir
		if dir == "" {
			dir = "."
		}
		path = dir + string(os.PathSeparator) + "tonearm.yml"
	}

	log.Info("Loading configuration from %s", path)
	cfg, err := config.Load(path)
	if err != nil {
		log.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	if *catalogDir != "" {
		cfg.CatalogDir = *catalogDir
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
	if *buildDir != "" {
		cfg.BuildDir = *buildDir
	}
	if *cacheOptimization != "" {
		cfg.CacheOptimization = *cacheOptimization
	}
	if *urlSaltMode != "" {
		cfg.URLSaltMode = *urlSaltMode
	}
	if *urlSaltFrozen != "" {
		cfg.URLSaltFrozen = *urlSaltFrozen
	}
	if *ignoreErrors {
		cfg.IgnoreErrors = true
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration: %v", err)
		os.Exit(1)
	}
	cfg.LogEffectiveValues(log)

	// 3. Run the build
	p := pipeline.New(cfg, log)
	if err := p.Build(); err != nil {
		log.Error("Build failed: %v", err)
		os.Exit(1)
	}
	log.Info("Build complete")
}
