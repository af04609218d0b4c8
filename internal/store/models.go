package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates the two entity families. Blogs and projects share one
// shape and one table; kind is part of every lookup key.
type Kind string

const (
	KindBlog    Kind = "blog"
	KindProject Kind = "project"
)

func (k Kind) Valid() bool {
	return k == KindBlog || k == KindProject
}

// SectionContent is either a single paragraph or an ordered list of items.
// The store holds it as a JSON string or JSON array of strings.
type SectionContent struct {
	Text  string
	Items []string
}

func (c SectionContent) IsList() bool { return c.Items != nil }

func (c SectionContent) MarshalJSON() ([]byte, error) {
	if c.Items != nil {
		return json.Marshal(c.Items)
	}
	return json.Marshal(c.Text)
}

func (c *SectionContent) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.Text = text
		c.Items = nil
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		c.Text = ""
		c.Items = items
		return nil
	}
	return fmt.Errorf("section content is neither string nor string list")
}

// ContentSection is one anchored block of an entity's detail payload.
// ID is the anchor key and must be unique within an entity; Title is
// display-only.
type ContentSection struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Content SectionContent `json:"content"`
}

// EntityRef is the minimal row used by the normalized-slug fallback scan.
type EntityRef struct {
	ID    int64
	Title string
}

// Entity is a fully resolved blog or project, including its detail payload.
type Entity struct {
	ID           int64
	Kind         Kind
	Slug         string
	Title        string
	Summary      string
	HeroImage    string
	PublishedAt  *time.Time
	ReadTime     string
	Technologies []string
	RepoURL      string
	ExternalURL  string
	Sections     []ContentSection
}

type Comment struct {
	ID        string
	Page      string
	Body      string
	CreatedAt time.Time
}
