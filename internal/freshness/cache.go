package freshness

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio/api/internal/store"
)

// CacheState classifies a snapshot cache hit against a Directive.
type CacheState int

const (
	CacheMiss CacheState = iota
	// CacheFresh: younger than FreshFor, serve as-is.
	CacheFresh
	// CacheStale: past FreshFor but inside the stale window, serve
	// immediately while the caller refreshes in the background.
	CacheStale
)

type cachedSnapshot struct {
	Entity   snapshotEntity `json:"entity"`
	StoredAt time.Time      `json:"stored_at"`
}

// snapshotEntity is the cache encoding of store.Entity.
type snapshotEntity struct {
	ID           int64                  `json:"id"`
	Kind         string                 `json:"kind"`
	Slug         string                 `json:"slug"`
	Title        string                 `json:"title"`
	Summary      string                 `json:"summary,omitempty"`
	HeroImage    string                 `json:"hero_image,omitempty"`
	PublishedAt  *time.Time             `json:"published_at,omitempty"`
	ReadTime     string                 `json:"read_time,omitempty"`
	Technologies []string               `json:"technologies,omitempty"`
	RepoURL      string                 `json:"repo_url,omitempty"`
	ExternalURL  string                 `json:"external_url,omitempty"`
	Sections     []store.ContentSection `json:"sections"`
}

// SnapshotCache is the origin-side rendition of the freshness directive: a
// Redis-held snapshot per (kind, slug) whose age decides fresh/stale/miss.
type SnapshotCache struct {
	client    *redis.Client
	prefix    string
	directive Directive
	now       func() time.Time
}

func NewSnapshotCache(redisURL string, directive Directive) (*SnapshotCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewSnapshotCacheWithClient(client, directive), nil
}

func NewSnapshotCacheWithClient(client *redis.Client, directive Directive) *SnapshotCache {
	return &SnapshotCache{
		client:    client,
		prefix:    "snapshot:",
		directive: directive,
		now:       time.Now,
	}
}

func (c *SnapshotCache) key(kind store.Kind, slug string) string {
	return c.prefix + string(kind) + ":" + slug
}

// Get returns the cached snapshot and its freshness classification. A miss
// returns CacheMiss with no error; transport failures are errors.
func (c *SnapshotCache) Get(ctx context.Context, kind store.Kind, slug string) (store.Entity, CacheState, error) {
	raw, err := c.client.Get(ctx, c.key(kind, slug)).Result()
	if err == redis.Nil {
		return store.Entity{}, CacheMiss, nil
	}
	if err != nil {
		return store.Entity{}, CacheMiss, fmt.Errorf("get snapshot: %w", err)
	}

	var snap cachedSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return store.Entity{}, CacheMiss, fmt.Errorf("decode snapshot: %w", err)
	}

	age := c.now().Sub(snap.StoredAt)
	switch {
	case age < c.directive.FreshFor:
		return snap.Entity.toEntity(), CacheFresh, nil
	case age < c.directive.TotalWindow():
		return snap.Entity.toEntity(), CacheStale, nil
	default:
		return store.Entity{}, CacheMiss, nil
	}
}

// Set stores a snapshot. The Redis TTL covers the whole stale window so an
// expired key never outlives its usefulness.
func (c *SnapshotCache) Set(ctx context.Context, entity store.Entity) error {
	snap := cachedSnapshot{Entity: fromEntity(entity), StoredAt: c.now()}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	key := c.key(entity.Kind, entity.Slug)
	if err := c.client.Set(ctx, key, raw, c.directive.TotalWindow()).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Invalidate drops one snapshot.
func (c *SnapshotCache) Invalidate(ctx context.Context, kind store.Kind, slug string) error {
	if err := c.client.Del(ctx, c.key(kind, slug)).Err(); err != nil {
		return fmt.Errorf("invalidate snapshot: %w", err)
	}
	return nil
}

func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SnapshotCache) Close() error {
	return c.client.Close()
}

func fromEntity(e store.Entity) snapshotEntity {
	return snapshotEntity{
		ID:           e.ID,
		Kind:         string(e.Kind),
		Slug:         e.Slug,
		Title:        e.Title,
		Summary:      e.Summary,
		HeroImage:    e.HeroImage,
		PublishedAt:  e.PublishedAt,
		ReadTime:     e.ReadTime,
		Technologies: e.Technologies,
		RepoURL:      e.RepoURL,
		ExternalURL:  e.ExternalURL,
		Sections:     e.Sections,
	}
}

func (s snapshotEntity) toEntity() store.Entity {
	return store.Entity{
		ID:           s.ID,
		Kind:         store.Kind(s.Kind),
		Slug:         s.Slug,
		Title:        s.Title,
		Summary:      s.Summary,
		HeroImage:    s.HeroImage,
		PublishedAt:  s.PublishedAt,
		ReadTime:     s.ReadTime,
		Technologies: s.Technologies,
		RepoURL:      s.RepoURL,
		ExternalURL:  s.ExternalURL,
		Sections:     s.Sections,
	}
}
