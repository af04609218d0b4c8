// Package resolver turns a slug into a single fully-loaded entity.
//
// Resolution is pure lookup: all caching lives in the freshness package.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"portfolio/api/internal/slug"
	"portfolio/api/internal/store"
)

// Store is the narrow query surface the resolver needs.
type Store interface {
	FindEntityBySlug(ctx context.Context, kind store.Kind, slug string) (store.Entity, error)
	FindEntityByID(ctx context.Context, kind store.Kind, id int64) (store.Entity, error)
	ListEntityRefs(ctx context.Context, kind store.Kind) ([]store.EntityRef, error)
}

// Status tags a resolution outcome.
type Status int

const (
	// StatusFound carries a fully-loaded entity.
	StatusFound Status = iota
	// StatusNotFound is terminal: the identifier resolves to nothing and
	// must not be retried automatically.
	StatusNotFound
	// StatusTransient is a store/transport failure and is retryable.
	StatusTransient
)

// Outcome is the tagged result of one resolution attempt.
type Outcome struct {
	Status Status
	Slug   string
	Entity *store.Entity
	Err    error
}

func Found(s string, entity store.Entity) Outcome {
	return Outcome{Status: StatusFound, Slug: s, Entity: &entity}
}

func NotFound(s string) Outcome {
	return Outcome{Status: StatusNotFound, Slug: s}
}

func Transient(s string, err error) Outcome {
	return Outcome{Status: StatusTransient, Slug: s, Err: err}
}

type Resolver struct {
	kind store.Kind
	src  Store
	// titleFallback selects the O(n) normalized-title scan for stores
	// without a persisted slug column.
	titleFallback bool
}

// New returns a resolver for one entity kind using the persisted slug
// column (equality lookup).
func New(kind store.Kind, src Store) *Resolver {
	return &Resolver{kind: kind, src: src}
}

// NewWithTitleFallback returns a resolver that matches the incoming slug
// against every stored title via slug.Normalize. Interim mode for stores
// without a slug column; under a title collision the first match in store
// order wins, which is non-deterministic across stores.
func NewWithTitleFallback(kind store.Kind, src Store) *Resolver {
	return &Resolver{kind: kind, src: src, titleFallback: true}
}

// Resolve looks up one entity by slug. The identifier must be non-empty;
// empty identifiers are the HTTP boundary's bad-request condition and never
// reach this method.
//
// An entity whose detail payload has no content sections resolves as
// NotFound: the detail page cannot render without sections, and the source
// system treated the two cases identically.
func (r *Resolver) Resolve(ctx context.Context, s string) Outcome {
	entity, err := r.lookup(ctx, s)
	if errors.Is(err, store.ErrNotFound) {
		return NotFound(s)
	}
	if err != nil {
		return Transient(s, err)
	}
	if len(entity.Sections) == 0 {
		return NotFound(s)
	}
	if entity.Slug == "" {
		entity.Slug = s
	}
	return Found(s, entity)
}

func (r *Resolver) lookup(ctx context.Context, s string) (store.Entity, error) {
	if !r.titleFallback {
		return r.src.FindEntityBySlug(ctx, r.kind, s)
	}

	refs, err := r.src.ListEntityRefs(ctx, r.kind)
	if err != nil {
		return store.Entity{}, fmt.Errorf("list refs for slug scan: %w", err)
	}
	for _, ref := range refs {
		if slug.Matches(ref.Title, s) {
			return r.src.FindEntityByID(ctx, r.kind, ref.ID)
		}
	}
	return store.Entity{}, store.ErrNotFound
}
