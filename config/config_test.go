package config

import (
	"testing"
	"time"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg := LoadEnv()
	if cfg.Store.Timezone != "Asia/Jakarta" {
		t.Errorf("timezone = %q", cfg.Store.Timezone)
	}
	if cfg.Pricing.ContextCacheTTL != 5*time.Minute {
		t.Errorf("context cache ttl = %v", cfg.Pricing.ContextCacheTTL)
	}
	if cfg.Kafka.OrdersTopic != "orders.events" || cfg.Kafka.CustomersTopic != "customers.events" {
		t.Errorf("topics = %+v", cfg.Kafka)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PRICING_CONTEXT_CACHE_TTL", "90s")
	t.Setenv("PRODUCT_CACHE_TTL", "15")
	t.Setenv("PRICING_LOOKUP_TIMEOUT", "soon")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("APP_STORAGE", "memory")

	cfg := LoadEnv()
	if cfg.Pricing.ContextCacheTTL != 90*time.Second {
		t.Errorf("context cache ttl = %v", cfg.Pricing.ContextCacheTTL)
	}
	if cfg.Pricing.ProductCacheTTL != 15*time.Second {
		t.Errorf("product cache ttl = %v", cfg.Pricing.ProductCacheTTL)
	}
	if cfg.Pricing.LookupTimeout != 500*time.Millisecond {
		t.Errorf("unparseable timeout should fall back, got %v", cfg.Pricing.LookupTimeout)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Redis.Enabled || cfg.Server.Storage != "memory" {
		t.Errorf("cfg = %+v %+v %+v", cfg.Kafka, cfg.Redis, cfg.Server)
	}
}

func TestStoreLocation(t *testing.T) {
	loc, err := StoreConfig{Timezone: "Asia/Jakarta"}.Location()
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	if _, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone(); offset != 7*3600 {
		t.Errorf("offset = %d", offset)
	}
	if _, err := (StoreConfig{Timezone: "Mars/Olympus"}).Location(); err == nil {
		t.Error("unknown zone should fail")
	}
}
