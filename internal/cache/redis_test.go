package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"jsonblob/internal/blobid"
)

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	id := blobid.New()

	body, hit, err := c.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hit || body != "" {
		t.Fatalf("expected miss from nil cache, got hit=%v body=%q", hit, body)
	}
	if err := c.Set(ctx, id, `{"v":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewRequiresAddr(t *testing.T) {
	if _, err := New(context.Background(), "", time.Minute); err == nil {
		t.Fatal("expected error for empty addr")
	}
}

// testCache connects to a real Redis when JSONBLOB_TEST_REDIS_ADDR is set.
func testCache(t *testing.T) *Cache {
	t.Helper()
	addr := os.Getenv("JSONBLOB_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("JSONBLOB_TEST_REDIS_ADDR not set")
	}
	c, err := New(context.Background(), addr, time.Minute)
	if err != nil {
		t.Fatalf("connect to redis: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheRoundtrip(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	id := blobid.New()
	body := `{"cached":true}`

	if _, hit, err := c.Get(ctx, id); err != nil || hit {
		t.Fatalf("expected miss before set, hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, id, body); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, hit, err := c.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !hit || got != body {
		t.Fatalf("expected cached body, hit=%v got=%q", hit, got)
	}

	if err := c.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, hit, err := c.Get(ctx, id); err != nil || hit {
		t.Fatalf("expected miss after delete, hit=%v err=%v", hit, err)
	}
}
