package freshness

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"portfolio/api/internal/store"
)

func setupSnapshotCache(t *testing.T, directive Directive) (*SnapshotCache, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewSnapshotCacheWithClient(client, directive)
	clock := newFakeClock()
	cache.now = clock.Now
	t.Cleanup(func() { cache.Close() })
	return cache, clock
}

func cachedEntity() store.Entity {
	return store.Entity{
		ID:    1,
		Kind:  store.KindBlog,
		Slug:  "2024-retrospective",
		Title: "2024 Retrospective",
		Sections: []store.ContentSection{
			{ID: "intro", Title: "Introduction", Content: store.SectionContent{Text: "hello"}},
		},
	}
}

func TestSnapshotCacheMissOnEmpty(t *testing.T) {
	cache, _ := setupSnapshotCache(t, ListDirective)

	_, state, err := cache.Get(context.Background(), store.KindBlog, "nothing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state != CacheMiss {
		t.Fatalf("expected miss, got %v", state)
	}
}

func TestSnapshotCacheFreshThenStaleThenMiss(t *testing.T) {
	directive := Directive{FreshFor: 5 * time.Minute, StaleWhileRevalidate: 10 * time.Minute}
	cache, clock := setupSnapshotCache(t, directive)
	ctx := context.Background()

	if err := cache.Set(ctx, cachedEntity()); err != nil {
		t.Fatalf("Set: %v", err)
	}

	entity, state, err := cache.Get(ctx, store.KindBlog, "2024-retrospective")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state != CacheFresh {
		t.Fatalf("expected fresh, got %v", state)
	}
	if entity.Title != "2024 Retrospective" || len(entity.Sections) != 1 {
		t.Fatalf("snapshot did not round-trip: %+v", entity)
	}

	clock.Advance(6 * time.Minute)
	_, state, err = cache.Get(ctx, store.KindBlog, "2024-retrospective")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state != CacheStale {
		t.Fatalf("expected stale inside the revalidate window, got %v", state)
	}

	clock.Advance(10 * time.Minute)
	_, state, err = cache.Get(ctx, store.KindBlog, "2024-retrospective")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state != CacheMiss {
		t.Fatalf("expected miss past the total window, got %v", state)
	}
}

func TestSnapshotCacheKeysAreKindScoped(t *testing.T) {
	cache, _ := setupSnapshotCache(t, ListDirective)
	ctx := context.Background()

	if err := cache.Set(ctx, cachedEntity()); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, state, err := cache.Get(ctx, store.KindProject, "2024-retrospective")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state != CacheMiss {
		t.Fatal("a blog snapshot must not satisfy a project lookup")
	}
}

func TestSnapshotCacheInvalidate(t *testing.T) {
	cache, _ := setupSnapshotCache(t, ListDirective)
	ctx := context.Background()

	if err := cache.Set(ctx, cachedEntity()); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cache.Invalidate(ctx, store.KindBlog, "2024-retrospective"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}

	_, state, err := cache.Get(ctx, store.KindBlog, "2024-retrospective")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state != CacheMiss {
		t.Fatal("expected miss after invalidation")
	}
}
