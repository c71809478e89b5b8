package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
)

func TestParseLayoutOverrides(t *testing.T) {
	ov, err := ParseLayoutOverrides([]byte("seat_size: 28\npadding: 0\ndefault_standing_size:\n  width: 240\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ov.SeatSize == nil || *ov.SeatSize != 28 {
		t.Fatalf("expected seat size 28, got %v", ov.SeatSize)
	}
	if ov.Padding == nil || *ov.Padding != 0 {
		t.Fatalf("expected explicit zero padding, got %v", ov.Padding)
	}
	if ov.DefaultStandingSize == nil || ov.DefaultStandingSize.Width == nil || ov.DefaultStandingSize.Height != nil {
		t.Fatalf("expected standing width only, got %+v", ov.DefaultStandingSize)
	}
	if ov.SeatGap != nil {
		t.Fatalf("expected seat gap unset, got %v", *ov.SeatGap)
	}
}

func TestParseLayoutOverridesRejectsUnknownKeys(t *testing.T) {
	if _, err := ParseLayoutOverrides([]byte("seat_sise: 28\n")); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestParseLayoutOverridesCommentOnly(t *testing.T) {
	ov, err := ParseLayoutOverrides([]byte("# nothing yet\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ov.SeatSize != nil || ov.Padding != nil {
		t.Fatalf("expected empty overrides, got %+v", ov)
	}
}

func TestLoadLayoutOverrides(t *testing.T) {
	if ov, err := LoadLayoutOverrides(""); err != nil || ov.SeatSize != nil {
		t.Fatalf("expected empty overrides for empty path, got %+v, %v", ov, err)
	}
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte("seat_gap: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	ov, err := LoadLayoutOverrides(path)
	if err != nil || ov.SeatGap == nil || *ov.SeatGap != 2 {
		t.Fatalf("expected seat gap 2, got %+v, %v", ov, err)
	}
	if _, err := LoadLayoutOverrides(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 || cfg.RefillTokens != 1 {
		t.Fatalf("expected capacity and refill clamped to 1, got %+v", cfg)
	}
	if cfg.TTL != 10*time.Second {
		t.Fatalf("expected ttl raised to 5 intervals, got %s", cfg.TTL)
	}
}

func TestLoadRateLimitConfigShorthands(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "15")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "250ms")
	t.Setenv("RATE_LIMIT_ENABLED", "off")
	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 15 || cfg.RefillTokens != 1 || cfg.RefillInterval != 250*time.Millisecond {
		t.Fatalf("expected shorthand values, got %+v", cfg)
	}
	if cfg.Enabled {
		t.Fatal("expected rate limit disabled")
	}
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", " get, head ,")
	t.Setenv("CACHE_TTL", "bogus")
	cfg := LoadCacheConfig()
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || len(cfg.Methods) != 2 {
		t.Fatalf("unexpected methods: %v", cfg.Methods)
	}
	if cfg.TTL != time.Second {
		t.Fatalf("expected fallback ttl, got %s", cfg.TTL)
	}
	if cfg.Prefix != "layout-cache" {
		t.Fatalf("unexpected prefix %q", cfg.Prefix)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]log.Lvl{"debug": log.DEBUG, "WARN": log.WARN, "error": log.ERROR, "off": log.OFF, "": log.INFO, "loud": log.INFO}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}
}

func TestRedisAddr(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_ADDR", "")
	if got := RedisAddr(); got != "localhost:6379" {
		t.Fatalf("expected default addr, got %q", got)
	}
	t.Setenv("REDIS_ADDR", "cache:6380")
	if got := RedisAddr(); got != "cache:6380" {
		t.Fatalf("expected REDIS_ADDR, got %q", got)
	}
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "7000")
	if got := RedisAddr(); got != "redis:7000" {
		t.Fatalf("expected host:port, got %q", got)
	}
}
