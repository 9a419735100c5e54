package cache

import (
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	tests := []struct {
		prefix string
		params []any
		want   string
	}{
		{"route", nil, "route"},
		{"fares", []any{"a", "b"}, "fares:a:b"},
		{"page", []any{2, true}, "page:2:true"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Key(tt.prefix, tt.params...); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheSetGetFlush(t *testing.T) {
	c := New(time.Minute)
	c.SetIfCurrent("route", []string{"s1", "s2"}, c.Version())

	v, ok := c.Get("route")
	if !ok {
		t.Fatal("Get() missed a fresh entry")
	}
	if ids := v.([]string); len(ids) != 2 {
		t.Errorf("cached value = %v", ids)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	c.Flush()
	if _, ok := c.Get("route"); ok {
		t.Error("Get() hit after Flush()")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.SetIfCurrent("k", 1, c.Version())
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should have expired")
	}
}

func TestCacheDisabled(t *testing.T) {
	c := New(0)
	if c.SetIfCurrent("k", 1, c.Version()) {
		t.Error("SetIfCurrent() stored into a disabled cache")
	}
	if _, ok := c.Get("k"); ok {
		t.Error("disabled cache should never hit")
	}
	c.Flush()
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCacheSetAfterFlushIsDropped(t *testing.T) {
	c := New(time.Minute)

	// a read loads its view, then a write flushes before the read stores it
	v := c.Version()
	c.Flush()
	if c.SetIfCurrent("missing", 6, v) {
		t.Error("SetIfCurrent() stored a view computed before Flush()")
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get() returned a view computed before Flush()")
	}

	if !c.SetIfCurrent("missing", 0, c.Version()) {
		t.Error("SetIfCurrent() with the current version should store")
	}
	if got, _ := c.Get("missing"); got != 0 {
		t.Errorf("Get() = %v, want 0", got)
	}
}

func TestCacheFlushBumpsVersion(t *testing.T) {
	c := New(0)
	v := c.Version()
	c.Flush()
	if c.Version() == v {
		t.Error("Flush() should bump the version even when caching is disabled")
	}
}
