package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scan.HoursBack != 24 {
		t.Errorf("HoursBack = %d, want 24", cfg.Scan.HoursBack)
	}
	if cfg.Scan.MinScore != 6.0 {
		t.Errorf("MinScore = %v, want 6.0", cfg.Scan.MinScore)
	}
	if cfg.Scan.MinContentLength != 50 {
		t.Errorf("MinContentLength = %d, want 50", cfg.Scan.MinContentLength)
	}
	if cfg.RateLimit.PerMinute != 100 || cfg.RateLimit.MinSpacing != 350*time.Millisecond {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
	if cfg.Scoring.PriorityWeights["critical"] != 3 {
		t.Errorf("critical priority weight = %v, want 3", cfg.Scoring.PriorityWeights["critical"])
	}
	if cfg.Scoring.CategoryWeights["news"] != 0.5 {
		t.Errorf("news category weight = %v, want 0.5", cfg.Scoring.CategoryWeights["news"])
	}
	if len(cfg.Scoring.BrandTerms) != 3 {
		t.Errorf("brand terms = %v", cfg.Scoring.BrandTerms)
	}
	if cfg.Scan.VKBatchSize != 5 || cfg.Scan.VKBatchPause != 30*time.Second {
		t.Errorf("vk pacing = %d / %v", cfg.Scan.VKBatchSize, cfg.Scan.VKBatchPause)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SCAN_HOURS_BACK", "48")
	t.Setenv("SCAN_MIN_SCORE", "7.5")
	t.Setenv("SCORING_BRAND_TERMS", "acme, acme corp")
	t.Setenv("RATE_LIMIT_MIN_SPACING", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scan.HoursBack != 48 {
		t.Errorf("HoursBack = %d, want 48", cfg.Scan.HoursBack)
	}
	if cfg.Scan.MinScore != 7.5 {
		t.Errorf("MinScore = %v, want 7.5", cfg.Scan.MinScore)
	}
	if len(cfg.Scoring.BrandTerms) != 2 || cfg.Scoring.BrandTerms[1] != "acme corp" {
		t.Errorf("BrandTerms = %v, want trimmed pair", cfg.Scoring.BrandTerms)
	}
	if cfg.RateLimit.MinSpacing != 500*time.Millisecond {
		t.Errorf("MinSpacing = %v, want 500ms", cfg.RateLimit.MinSpacing)
	}
}

func TestLoadWeightsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weights.yaml")
	content := []byte(`
brand_terms:
  - acme
priority_weights:
  critical: 5
category_weights:
  esports: 2.5
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCORING_WEIGHTS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.Scoring.BrandTerms) != 1 || cfg.Scoring.BrandTerms[0] != "acme" {
		t.Errorf("BrandTerms = %v, want [acme]", cfg.Scoring.BrandTerms)
	}
	if cfg.Scoring.PriorityWeights["critical"] != 5 {
		t.Errorf("critical weight = %v, want override 5", cfg.Scoring.PriorityWeights["critical"])
	}
	// Untouched defaults survive the overlay.
	if cfg.Scoring.PriorityWeights["high"] != 2 {
		t.Errorf("high weight = %v, want default 2", cfg.Scoring.PriorityWeights["high"])
	}
	if cfg.Scoring.CategoryWeights["esports"] != 2.5 {
		t.Errorf("esports weight = %v, want 2.5", cfg.Scoring.CategoryWeights["esports"])
	}
}

func TestLoadWeightsFileMissing(t *testing.T) {
	t.Setenv("SCORING_WEIGHTS_FILE", "/nonexistent/weights.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing weights file")
	}
}
