package cache

import (
	"strings"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got) != "v" {
		t.Errorf("expected v, got %s", got)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestMemoryCache_DeleteClear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)

	_ = c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be deleted")
	}

	_ = c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be cleared")
	}
}

func TestKey(t *testing.T) {
	k1 := Key("md", "# Title")
	k2 := Key("md", "# Title")
	k3 := Key("dims", "# Title")

	if k1 != k2 {
		t.Errorf("expected stable keys, got %s and %s", k1, k2)
	}
	if k1 == k3 {
		t.Error("expected namespaces to produce different keys")
	}
	if !strings.HasPrefix(k1, "artexplorer:v1:md:") {
		t.Errorf("unexpected key prefix: %s", k1)
	}
}

func TestNew_Disabled(t *testing.T) {
	c := New(false, time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 0)
	if _, ok := c.Get("k"); ok {
		t.Error("expected disabled cache to miss")
	}
}
