package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/gtrends/gtrends-go/pkg/config"
	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("gtrends:k") {
		t.Error("key should be stored under the gtrends: prefix")
	}

	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get(k) = %q, hit %v, err %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should be gone after Delete")
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Second)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if ttl := mr.TTL("gtrends:forever"); ttl != 0 {
		t.Errorf("zero ttl should store without expiry, got %v", ttl)
	}
}

func TestRedisCacheClear(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := mr.Set("other:key", "keep"); err != nil {
		t.Fatal(err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if keys := mr.Keys(); len(keys) != 1 || keys[0] != "other:key" {
		t.Errorf("keys after Clear = %v, want [other:key]", keys)
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisCache(context.Background(), addr); err == nil {
		t.Fatal("expected connection error")
	}

	_, err = Open(context.Background(), config.CacheSettings{Enabled: true, Driver: DriverRedis, RedisAddr: addr})
	var ne *gterrors.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("Open error = %v (%T), want *NetworkError", err, err)
	}
	if ne.URL != addr {
		t.Errorf("URL = %q, want %q", ne.URL, addr)
	}
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Open(context.Background(), config.CacheSettings{Enabled: true, Driver: DriverRedis, RedisAddr: mr.Addr()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()
	if _, ok := c.(*RedisCache); !ok {
		t.Errorf("Open returned %T, want *RedisCache", c)
	}
}
