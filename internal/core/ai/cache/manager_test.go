package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

func newTestManager(t *testing.T, maxSize int) (*CacheManager, *time.Time) {
	t.Helper()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: time.Hour})
	m.now = func() time.Time { return now }
	t.Cleanup(func() { _ = m.Close() })
	return m, &now
}

func TestManagerGetSet(t *testing.T) {
	m, _ := newTestManager(t, 10)
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, common.ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}
	if err := m.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	stats := m.GetStats()
	if stats["hits"].(int64) != 1 || stats["misses"].(int64) != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestManagerExpiry(t *testing.T) {
	m, now := newTestManager(t, 10)
	ctx := context.Background()

	if err := m.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	*now = now.Add(2 * time.Hour)

	if _, err := m.Get(ctx, "k"); !errors.Is(err, common.ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
	if size := m.GetStats()["size"].(int); size != 0 {
		t.Errorf("expired entry should be removed, size = %d", size)
	}
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	m, now := newTestManager(t, 2)
	ctx := context.Background()

	_ = m.Set(ctx, "a", "1")
	*now = now.Add(time.Minute)
	_ = m.Set(ctx, "b", "2")
	if _, err := m.Get(ctx, "a"); err != nil {
		t.Fatalf("Get a: %v", err)
	}

	if err := m.Set(ctx, "c", "3"); err != nil {
		t.Fatalf("Set c: %v", err)
	}
	if _, err := m.Get(ctx, "b"); !errors.Is(err, common.ErrCacheMiss) {
		t.Errorf("b was never read and should have been evicted")
	}
	if v, err := m.Get(ctx, "a"); err != nil || v != "1" {
		t.Errorf("a should survive eviction, got %q %v", v, err)
	}
}

func TestManagerOverwriteDoesNotEvict(t *testing.T) {
	m, _ := newTestManager(t, 1)
	ctx := context.Background()

	_ = m.Set(ctx, "a", "1")
	if err := m.Set(ctx, "a", "2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, _ := m.Get(ctx, "a"); v != "2" {
		t.Errorf("value = %q, want 2", v)
	}
}

func TestKeyIsStable(t *testing.T) {
	if Key("a", "b") != Key("a", "b") {
		t.Error("same parts should give the same key")
	}
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("part boundaries should change the key")
	}
}

func TestNewSelectsDriver(t *testing.T) {
	store, err := New(config.CacheConfig{Enabled: false})
	if err != nil || store != nil {
		t.Fatalf("disabled cache should be nil, got %v %v", store, err)
	}

	store, err = New(config.CacheConfig{Enabled: true, Driver: "memory", MaxSize: 1, TTL: time.Minute})
	if err != nil {
		t.Fatalf("memory driver: %v", err)
	}
	if _, ok := store.(*CacheManager); !ok {
		t.Errorf("expected *CacheManager, got %T", store)
	}
	_ = store.Close()

	if _, err := New(config.CacheConfig{Enabled: true, Driver: "memcached"}); err == nil {
		t.Error("unknown driver should fail")
	}
}

func TestRedisUnreachable(t *testing.T) {
	_, err := NewService(config.CacheConfig{Enabled: true, Driver: DriverRedis, RedisAddr: "127.0.0.1:1", TTL: time.Minute})
	if err == nil {
		t.Fatal("expected connection error")
	}
}
