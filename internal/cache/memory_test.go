package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bilgisen/khabar/internal/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemory(15*time.Minute, clock.Now)

	items := []models.NewsItem{{Title: "A", Link: "http://x/1"}}
	c.Put(ctx, "en", items)

	clock.Advance(15*time.Minute - time.Second)
	got, ok := c.Get(ctx, "en")
	if !ok || len(got) != 1 || got[0].Title != "A" {
		t.Fatalf("Get before expiry = %v, %v; want cached item", got, ok)
	}

	clock.Advance(time.Second)
	if _, ok := c.Get(ctx, "en"); ok {
		t.Fatal("Get at expiry should report absent")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be evicted on read, Len() = %d", c.Len())
	}
}

func TestMemoryPutReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(0, 0)}
	c := NewMemory(time.Hour, clock.Now)

	c.Put(ctx, "np", []models.NewsItem{{Title: "old"}, {Title: "older"}})
	clock.Advance(50 * time.Minute)
	c.Put(ctx, "np", []models.NewsItem{{Title: "new"}})

	// Expiry restarts from the second write.
	clock.Advance(50 * time.Minute)
	got, ok := c.Get(ctx, "np")
	if !ok {
		t.Fatal("entry should still be live after rewrite")
	}
	if len(got) != 1 || got[0].Title != "new" {
		t.Errorf("Get = %v, want only the new entry", got)
	}
}

func TestMemoryTiersAreIndependent(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(0, 0)}
	short := NewMemory(15*time.Minute, clock.Now)
	long := NewMemory(2*time.Hour, clock.Now)

	short.Put(ctx, "tech", []models.NewsItem{{Title: "t"}})
	long.Put(ctx, "en", []models.NewsItem{{Title: "e"}})

	clock.Advance(time.Hour)
	if _, ok := short.Get(ctx, "tech"); ok {
		t.Error("short tier entry should have expired")
	}
	if _, ok := long.Get(ctx, "en"); !ok {
		t.Error("long tier entry should still be live")
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour, nil)
	c.Put(ctx, "en", []models.NewsItem{{Title: "A"}})
	c.Delete(ctx, "en")
	if _, ok := c.Get(ctx, "en"); ok {
		t.Error("deleted key should be absent")
	}
}
