package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound reports that a lookup matched zero rows. Callers must treat it
// differently from transport errors.
var ErrNotFound = errors.New("store: not found")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

const entityColumns = `
	e.id, e.kind, COALESCE(e.slug, ''), e.title, COALESCE(e.summary, ''),
	COALESCE(e.hero_image, ''), e.published_at, COALESCE(e.read_time, ''),
	COALESCE(e.technologies::text, '[]'), COALESCE(e.repo_url, '')
`

// ListEntities returns the listing payload for one kind, ordered by id
// ascending (creation order). Detail payloads are not loaded here.
func (s *PostgresStore) ListEntities(ctx context.Context, kind Kind) ([]Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entityColumns+`
		FROM entities e
		WHERE e.kind=$1
		ORDER BY e.id ASC
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	defer rows.Close()

	items := make([]Entity, 0)
	for rows.Next() {
		item, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return items, nil
}

// ListEntityRefs returns id/title pairs for one kind in store order. Used
// only by the normalized-slug fallback path.
func (s *PostgresStore) ListEntityRefs(ctx context.Context, kind Kind) ([]EntityRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title FROM entities WHERE kind=$1 ORDER BY id ASC
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list entity refs: %w", err)
	}
	defer rows.Close()

	items := make([]EntityRef, 0)
	for rows.Next() {
		var item EntityRef
		if err := rows.Scan(&item.ID, &item.Title); err != nil {
			return nil, fmt.Errorf("scan entity ref: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entity refs: %w", err)
	}
	return items, nil
}

// FindEntityBySlug looks an entity up by its persisted slug column and loads
// its detail rows. Returns ErrNotFound when no row has that slug.
func (s *PostgresStore) FindEntityBySlug(ctx context.Context, kind Kind, slug string) (Entity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entityColumns+`
		FROM entities e
		WHERE e.kind=$1 AND e.slug=$2
	`, string(kind), slug)
	return s.finishEntity(ctx, row)
}

// FindEntityByID loads one entity plus its detail rows by row id.
func (s *PostgresStore) FindEntityByID(ctx context.Context, kind Kind, id int64) (Entity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entityColumns+`
		FROM entities e
		WHERE e.kind=$1 AND e.id=$2
	`, string(kind), id)
	return s.finishEntity(ctx, row)
}

func (s *PostgresStore) finishEntity(ctx context.Context, row *sql.Row) (Entity, error) {
	item, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entity{}, ErrNotFound
	}
	if err != nil {
		return Entity{}, fmt.Errorf("scan entity: %w", err)
	}
	if err := s.loadDetails(ctx, &item); err != nil {
		return Entity{}, err
	}
	return item, nil
}

func (s *PostgresStore) loadDetails(ctx context.Context, item *Entity) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(external_url, ''), content_sections
		FROM entity_details
		WHERE entity_id=$1
		ORDER BY id ASC
	`, item.ID)
	if err != nil {
		return fmt.Errorf("load entity details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var externalURL string
		var sectionsRaw []byte
		if err := rows.Scan(&externalURL, &sectionsRaw); err != nil {
			return fmt.Errorf("scan entity detail: %w", err)
		}
		var sections []ContentSection
		if err := json.Unmarshal(sectionsRaw, &sections); err != nil {
			return fmt.Errorf("decode content sections: %w", err)
		}
		if item.ExternalURL == "" {
			item.ExternalURL = externalURL
		}
		item.Sections = append(item.Sections, sections...)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate entity details: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (Entity, error) {
	var item Entity
	var kind string
	var technologiesRaw string
	err := row.Scan(
		&item.ID,
		&kind,
		&item.Slug,
		&item.Title,
		&item.Summary,
		&item.HeroImage,
		&item.PublishedAt,
		&item.ReadTime,
		&technologiesRaw,
		&item.RepoURL,
	)
	if err != nil {
		return Entity{}, err
	}
	item.Kind = Kind(kind)
	if err := json.Unmarshal([]byte(technologiesRaw), &item.Technologies); err != nil {
		return Entity{}, fmt.Errorf("decode technologies: %w", err)
	}
	return item, nil
}

// InsertComment stores one comment row.
func (s *PostgresStore) InsertComment(ctx context.Context, comment Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, page, body)
		VALUES ($1, $2, $3)
	`, comment.ID, comment.Page, comment.Body)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// Ping verifies the database connection is alive
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
