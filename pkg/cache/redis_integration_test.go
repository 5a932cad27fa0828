//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func redisURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("SHATTERED_TEST_REDIS")
	if url == "" {
		t.Skip("SHATTERED_TEST_REDIS not set")
	}
	return url
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewRedisCache(ctx, redisURL(t))
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "test:" + t.Name()
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get before Set = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("ink"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "ink" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry survived Delete")
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewRedisCache(ctx, redisURL(t))
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "test:" + t.Name()
	if err := c.Set(ctx, key, []byte("x"), 100*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry should have expired")
	}
}
