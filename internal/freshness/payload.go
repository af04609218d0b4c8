package freshness

import (
	"time"

	"portfolio/api/internal/store"
)

// Payload is the wire shape of one resolved entity, shared by the detail
// endpoints and the client-side fetcher.
type Payload struct {
	Slug          string                 `json:"slug"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Image         string                 `json:"image,omitempty"`
	Sections      []store.ContentSection `json:"content_sections"`
	PublishedDate string                 `json:"published_date,omitempty"`
	ReadingTime   string                 `json:"reading_time,omitempty"`
	Technologies  []string               `json:"technologies,omitempty"`
	ProjectURL    string                 `json:"project_url,omitempty"`
	GitHub        string                 `json:"github,omitempty"`
}

func PayloadFromEntity(e store.Entity) Payload {
	p := Payload{
		Slug:         e.Slug,
		Title:        e.Title,
		Description:  e.Summary,
		Image:        e.HeroImage,
		Sections:     e.Sections,
		ReadingTime:  e.ReadTime,
		Technologies: e.Technologies,
		ProjectURL:   e.ExternalURL,
		GitHub:       e.RepoURL,
	}
	if e.PublishedAt != nil {
		p.PublishedDate = e.PublishedAt.UTC().Format(time.RFC3339)
	}
	return p
}

func (p Payload) Entity(kind store.Kind) store.Entity {
	e := store.Entity{
		Kind:         kind,
		Slug:         p.Slug,
		Title:        p.Title,
		Summary:      p.Description,
		HeroImage:    p.Image,
		Sections:     p.Sections,
		ReadTime:     p.ReadingTime,
		Technologies: p.Technologies,
		ExternalURL:  p.ProjectURL,
		RepoURL:      p.GitHub,
	}
	if p.PublishedDate != "" {
		if published, err := time.Parse(time.RFC3339, p.PublishedDate); err == nil {
			e.PublishedAt = &published
		}
	}
	return e
}
