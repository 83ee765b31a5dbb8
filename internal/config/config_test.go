package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	if !cfg.Enabled {
		t.Fatal("rate limiting disabled by default")
	}
	if cfg.Capacity != 10 || cfg.RefillTokens != 1 || cfg.RefillInterval != time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.TTL != 10*time.Minute {
		t.Fatalf("TTL = %v, want 10m", cfg.TTL)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Fatalf("capacity = %d, want clamped to 1", cfg.Capacity)
	}
	// TTL must cover several refill intervals or keys expire mid-bucket.
	if cfg.TTL != 5*time.Minute {
		t.Fatalf("TTL = %v, want 5m", cfg.TTL)
	}
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "2m")

	cfg := LoadCacheConfig()
	if !cfg.Enabled {
		t.Fatal("cache disabled by default")
	}
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || cfg.Methods["POST"] {
		t.Fatalf("methods = %v", cfg.Methods)
	}
	if cfg.TTL != 2*time.Minute {
		t.Fatalf("TTL = %v, want 2m", cfg.TTL)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("MaxBodyBytes = %d, want 1MiB", cfg.MaxBodyBytes)
	}
}
