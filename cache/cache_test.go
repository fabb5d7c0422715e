package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c, err := New(time.Minute)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()

	if err := c.Set("projection", []byte(`{"percent_mined":95.03}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	payload, ok := c.Get("projection")
	if !ok {
		t.Fatal("Expected cache hit, got miss")
	}
	if string(payload) != `{"percent_mined":95.03}` {
		t.Errorf("Unexpected payload %q", payload)
	}
}

func TestCacheMiss(t *testing.T) {
	c, err := New(time.Minute)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected cache miss for unknown key")
	}
}

func TestCacheDelete(t *testing.T) {
	c, err := New(time.Minute)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()

	if err := c.Set("stats", []byte("payload")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete("stats"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := c.Get("stats"); ok {
		t.Error("Expected miss after delete")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete("stats"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestCacheOverwrite(t *testing.T) {
	c, err := New(time.Minute)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	defer c.Close()

	if err := c.Set("halving", []byte("old")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set("halving", []byte("new")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	payload, ok := c.Get("halving")
	if !ok {
		t.Fatal("Expected cache hit after overwrite")
	}
	if string(payload) != "new" {
		t.Errorf("Payload = %q, want new", payload)
	}
}
