package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/waspersolution/vigilant-soundscape-sub000/module/safety/domain"
)

func newTestCache(t *testing.T) (*HistoryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewHistoryCache(client), mr
}

func TestHistoryCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	samples := []domain.LocationSample{
		{Lat: 6.5244, Lon: 3.3792, Accuracy: 10, Timestamp: time.Unix(1715003456, 0).UTC()},
		{Lat: 6.5250, Lon: 3.3800, Accuracy: 8, Timestamp: time.Unix(1715003466, 0).UTC()},
	}
	if err := c.Set(ctx, "member-1", samples); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := c.Get(ctx, "member-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}
	if got[0].Lat != 6.5244 || !got[0].Timestamp.Equal(samples[0].Timestamp) {
		t.Errorf("unexpected first sample: %+v", got[0])
	}
}

func TestHistoryCache_AbsentKey(t *testing.T) {
	c, _ := newTestCache(t)

	got, err := c.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("absent key must not error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil samples, got %+v", got)
	}
}

func TestHistoryCache_Remove(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "member-1", []domain.LocationSample{{Lat: 6.52}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Remove(ctx, "member-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if mr.Exists("location_history:member-1") {
		t.Error("expected key deleted")
	}
	got, err := c.Get(ctx, "member-1")
	if err != nil || got != nil {
		t.Errorf("expected empty after remove, got %+v err %v", got, err)
	}
}

func TestHistoryCache_CorruptPayload(t *testing.T) {
	c, mr := newTestCache(t)

	if err := mr.Set("location_history:member-1", "not json"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(context.Background(), "member-1"); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestHistoryCache_OverwriteReplacesSnapshot(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "member-1", []domain.LocationSample{{Lat: 1}, {Lat: 2}}); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "member-1", []domain.LocationSample{{Lat: 3}}); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(ctx, "member-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Lat != 3 {
		t.Fatalf("expected latest snapshot only, got %+v", got)
	}
}
