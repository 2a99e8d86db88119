package config

import (
	"os"
	"path/filepath"
	"testing"

	"tonearm/internal/cache"
)

func TestLoadMissingFileAppliesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "tonearm.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CatalogDir != "." {
		t.Fatalf("expected default catalog dir \".\", got %q", cfg.CatalogDir)
	}
	if cfg.CacheOptimization != "default" {
		t.Fatalf("expected default cache_optimization, got %q", cfg.CacheOptimization)
	}
	if cfg.Optimization() != cache.Default {
		t.Fatalf("expected cache.Default, got %v", cfg.Optimization())
	}
	mode, _ := cfg.SaltMode()
	if mode != SaltStable {
		t.Fatalf("expected SaltStable, got %v", mode)
	}
	if cfg.Workers != 1 {
		t.Fatalf("expected default workers=1, got %d", cfg.Workers)
	}
}

func TestLoadParsesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tonearm.yaml")
	content := "catalog_dir: /music\ncache_optimization: immediate\nurl_salt_mode: frozen\nurl_salt_frozen: abc123\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CatalogDir != "/music" {
		t.Fatalf("expected catalog_dir /music, got %q", cfg.CatalogDir)
	}
	if cfg.Optimization() != cache.Immediate {
		t.Fatalf("expected cache.Immediate, got %v", cfg.Optimization())
	}
	mode, frozen := cfg.SaltMode()
	if mode != SaltFrozen || frozen != "abc123" {
		t.Fatalf("expected frozen salt \"abc123\", got mode=%v frozen=%q", mode, frozen)
	}
}

func TestLoadRejectsUnknownCacheOptimization(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tonearm.yaml")
	if err := os.WriteFile(path, []byte("cache_optimization: bogus\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown cache_optimization value")
	}
}

func TestLoadRejectsFrozenSaltWithoutValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tonearm.yaml")
	if err := os.WriteFile(path, []byte("url_salt_mode: frozen\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error when url_salt_mode is frozen but url_salt_frozen is empty")
	}
}
