package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.ThresholdAmber != 4.0 {
		t.Errorf("expected amber threshold 4.0, got %f", cfg.ThresholdAmber)
	}
	if cfg.ThresholdRed != 7.0 {
		t.Errorf("expected red threshold 7.0, got %f", cfg.ThresholdRed)
	}
	if cfg.ThresholdAmber >= cfg.ThresholdRed {
		t.Error("amber threshold must sit below red threshold")
	}
	if cfg.WindowSize != 10 {
		t.Errorf("expected window size 10, got %d", cfg.WindowSize)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected session TTL 30m, got %s", cfg.SessionTTL)
	}
	if !cfg.TrendOnlyFloor {
		t.Error("trend-only floor should default to enabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TRIAGE_THRESHOLD_AMBER", "3.5")
	t.Setenv("TRIAGE_SESSION_TTL", "10m")
	t.Setenv("TRIAGE_TREND_ONLY_FLOOR", "false")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.ThresholdAmber != 3.5 {
		t.Errorf("expected amber threshold 3.5, got %f", cfg.ThresholdAmber)
	}
	if cfg.SessionTTL != 10*time.Minute {
		t.Errorf("expected session TTL 10m, got %s", cfg.SessionTTL)
	}
	if cfg.TrendOnlyFloor {
		t.Error("trend-only floor should be disabled by override")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("TRIAGE_THRESHOLD_RED", "not-a-number")
	t.Setenv("TRIAGE_WINDOW_SIZE", "ten")

	cfg := Load()

	if cfg.ThresholdRed != 7.0 {
		t.Errorf("expected default red threshold on malformed value, got %f", cfg.ThresholdRed)
	}
	if cfg.WindowSize != 10 {
		t.Errorf("expected default window size on malformed value, got %d", cfg.WindowSize)
	}
}
