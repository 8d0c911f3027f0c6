package cache

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestCache(t *testing.T) *RistrettoCache {
	t.Helper()

	logger, _ := zap.NewDevelopment()
	c, err := NewRistrettoCache(&RistrettoConfig{
		Name:        "test",
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestRistrettoCache(t *testing.T) {
	cache := newTestCache(t)

	t.Run("set-and-get", func(t *testing.T) {
		if !cache.Set("test-key", "test-value", time.Hour) {
			t.Fatal("expected Set to succeed")
		}

		retrieved, found := cache.Get("test-key")
		if !found {
			t.Fatal("expected key to be found")
		}
		if retrieved != "test-value" {
			t.Errorf("expected %q, got %q", "test-value", retrieved)
		}
	})

	t.Run("get-missing-key", func(t *testing.T) {
		_, found := cache.Get("nonexistent")
		if found {
			t.Error("expected key to not be found")
		}
	})

	t.Run("delete", func(t *testing.T) {
		cache.Set("delete-test", "delete-value", time.Hour)
		cache.Delete("delete-test")

		_, found := cache.Get("delete-test")
		if found {
			t.Error("expected key to be deleted")
		}
	})

	t.Run("ttl-expiration", func(t *testing.T) {
		cache.Set("ttl-test", "ttl-value", 200*time.Millisecond)

		_, found := cache.Get("ttl-test")
		if !found {
			t.Error("expected key to exist before TTL expires")
		}

		time.Sleep(1500 * time.Millisecond)

		_, found = cache.Get("ttl-test")
		if found {
			t.Error("expected key to be expired after TTL")
		}
	})

	t.Run("structured-values", func(t *testing.T) {
		value := map[string]float64{"BTCUSDT": 50000}
		cache.Set("map", value, time.Hour)

		got, found := cache.Get("map")
		if !found {
			t.Fatal("expected key to be found")
		}
		m, ok := got.(map[string]float64)
		if !ok || m["BTCUSDT"] != 50000 {
			t.Errorf("unexpected cached value %v", got)
		}
	})

	t.Run("clear", func(t *testing.T) {
		cache.Set("clear-key1", "value1", time.Hour)
		cache.Set("clear-key2", "value2", time.Hour)

		cache.Clear()

		_, found1 := cache.Get("clear-key1")
		_, found2 := cache.Get("clear-key2")
		if found1 || found2 {
			t.Error("expected all keys to be cleared")
		}
	})
}

func TestRistrettoCache_DefaultName(t *testing.T) {
	c, err := NewRistrettoCache(&RistrettoConfig{NumCounters: 10, MaxCost: 1, BufferItems: 64})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	defer c.Close()

	if c.name != "default" {
		t.Errorf("expected default name, got %q", c.name)
	}
}
