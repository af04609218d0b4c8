package app

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio/api/internal/captcha"
	"portfolio/api/internal/email"
	"portfolio/api/internal/freshness"
	"portfolio/api/internal/resolver"
	"portfolio/api/internal/store"
)

// Store is the persistence surface the service needs.
type Store interface {
	ListEntities(ctx context.Context, kind store.Kind) ([]store.Entity, error)
	FindEntityBySlug(ctx context.Context, kind store.Kind, slug string) (store.Entity, error)
	FindEntityByID(ctx context.Context, kind store.Kind, id int64) (store.Entity, error)
	ListEntityRefs(ctx context.Context, kind store.Kind) ([]store.EntityRef, error)
	InsertComment(ctx context.Context, comment store.Comment) error
	Ping(ctx context.Context) error
}

// Mailer is the outbound email surface. *email.Service satisfies it.
type Mailer interface {
	IsConfigured() bool
	SendContactNotification(msg email.ContactMessage) error
	SendContactConfirmation(msg email.ContactMessage) error
}

type Service struct {
	store     Store
	blogs     *resolver.Resolver
	projects  *resolver.Resolver
	snapshots *freshness.SnapshotCache
	mailer    Mailer
	verifier  captcha.Verifier

	listDirective   freshness.Directive
	detailDirective freshness.Directive
	sendConfirm     bool

	refreshMu sync.Mutex
	// keys with a background refresh already running
	refreshing map[string]bool
}

type ServiceOptions struct {
	Store Store
	// SlugFallback selects normalized-title scanning instead of the
	// persisted slug column.
	SlugFallback bool
	// Snapshots is optional; a nil cache resolves every detail request at
	// the origin.
	Snapshots *freshness.SnapshotCache
	// Mailer is optional; without it the contact endpoint reports
	// server_error.
	Mailer          Mailer
	Verifier        captcha.Verifier
	SendConfirm     bool
	ListDirective   freshness.Directive
	DetailDirective freshness.Directive
}

func NewService(opts ServiceOptions) *Service {
	newResolver := resolver.New
	if opts.SlugFallback {
		newResolver = resolver.NewWithTitleFallback
	}
	verifier := opts.Verifier
	if verifier == nil {
		verifier = captcha.Disabled{}
	}
	listDirective := opts.ListDirective
	if listDirective == (freshness.Directive{}) {
		listDirective = freshness.ListDirective
	}
	detailDirective := opts.DetailDirective
	if detailDirective == (freshness.Directive{}) {
		detailDirective = freshness.DetailDirective
	}

	return &Service{
		store:           opts.Store,
		blogs:           newResolver(store.KindBlog, opts.Store),
		projects:        newResolver(store.KindProject, opts.Store),
		snapshots:       opts.Snapshots,
		mailer:          opts.Mailer,
		verifier:        verifier,
		listDirective:   listDirective,
		detailDirective: detailDirective,
		sendConfirm:     opts.SendConfirm,
		refreshing:      map[string]bool{},
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) ListDirective() freshness.Directive   { return s.listDirective }
func (s *Service) DetailDirective() freshness.Directive { return s.detailDirective }

// ListItem is one row of a list response. Lists never carry content
// sections.
type ListItem struct {
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Image         string   `json:"image,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	ReadingTime   string   `json:"reading_time,omitempty"`
	Technologies  []string `json:"technologies,omitempty"`
	ProjectURL    string   `json:"project_url,omitempty"`
	GitHub        string   `json:"github,omitempty"`
}

func listItemFromEntity(e store.Entity) ListItem {
	item := ListItem{
		Slug:         e.Slug,
		Title:        e.Title,
		Description:  e.Summary,
		Image:        e.HeroImage,
		ReadingTime:  e.ReadTime,
		Technologies: e.Technologies,
		ProjectURL:   e.ExternalURL,
		GitHub:       e.RepoURL,
	}
	if e.PublishedAt != nil {
		item.PublishedDate = e.PublishedAt.UTC().Format(time.RFC3339)
	}
	return item
}

// ListEntities returns all entities of one kind in id order.
func (s *Service) ListEntities(ctx context.Context, kind store.Kind) ([]ListItem, error) {
	entities, err := s.store.ListEntities(ctx, kind)
	if err != nil {
		return nil, domainError(http.StatusInternalServerError, ErrorTypeServerError, "Could not load "+string(kind)+"s")
	}
	items := make([]ListItem, 0, len(entities))
	for _, entity := range entities {
		items = append(items, listItemFromEntity(entity))
	}
	return items, nil
}

func (s *Service) resolverFor(kind store.Kind) *resolver.Resolver {
	if kind == store.KindProject {
		return s.projects
	}
	return s.blogs
}

// GetDetails resolves one entity by slug, serving from the snapshot cache
// when it holds a usable rendition. A stale snapshot is returned
// immediately and refreshed in the background.
func (s *Service) GetDetails(ctx context.Context, kind store.Kind, slug string) (freshness.Payload, error) {
	if strings.TrimSpace(slug) == "" {
		return freshness.Payload{}, domainError(http.StatusBadRequest, ErrorTypeBadRequest, "slug query parameter is required")
	}

	if s.snapshots != nil {
		cached, state, err := s.snapshots.Get(ctx, kind, slug)
		if err != nil {
			log.Printf(`{"event":"snapshot_get_failed","kind":"%s","slug":"%s","error":"%v"}`, kind, slug, err)
		}
		switch state {
		case freshness.CacheFresh:
			return freshness.PayloadFromEntity(cached), nil
		case freshness.CacheStale:
			s.refreshInBackground(kind, slug)
			return freshness.PayloadFromEntity(cached), nil
		}
	}

	return s.resolveDetails(ctx, kind, slug)
}

func (s *Service) resolveDetails(ctx context.Context, kind store.Kind, slug string) (freshness.Payload, error) {
	outcome := s.resolverFor(kind).Resolve(ctx, slug)
	switch outcome.Status {
	case resolver.StatusFound:
		if s.snapshots != nil {
			if err := s.snapshots.Set(ctx, *outcome.Entity); err != nil {
				log.Printf(`{"event":"snapshot_set_failed","kind":"%s","slug":"%s","error":"%v"}`, kind, slug, err)
			}
		}
		return freshness.PayloadFromEntity(*outcome.Entity), nil
	case resolver.StatusNotFound:
		return freshness.Payload{}, notFoundError("No "+string(kind)+" found with that slug", slug)
	default:
		log.Printf(`{"event":"resolve_failed","kind":"%s","slug":"%s","error":"%v"}`, kind, slug, outcome.Err)
		return freshness.Payload{}, domainError(http.StatusInternalServerError, ErrorTypeServerError, "Could not load "+string(kind)+" details")
	}
}

// refreshInBackground re-resolves one stale snapshot at most once at a
// time per (kind, slug).
func (s *Service) refreshInBackground(kind store.Kind, slug string) {
	key := string(kind) + ":" + slug

	s.refreshMu.Lock()
	if s.refreshing[key] {
		s.refreshMu.Unlock()
		return
	}
	s.refreshing[key] = true
	s.refreshMu.Unlock()

	go func() {
		defer func() {
			s.refreshMu.Lock()
			delete(s.refreshing, key)
			s.refreshMu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		outcome := s.resolverFor(kind).Resolve(ctx, slug)
		switch outcome.Status {
		case resolver.StatusFound:
			if err := s.snapshots.Set(ctx, *outcome.Entity); err != nil {
				log.Printf(`{"event":"snapshot_refresh_failed","kind":"%s","slug":"%s","error":"%v"}`, kind, slug, err)
			}
		case resolver.StatusNotFound:
			// The entity is gone; drop the stale snapshot so the next
			// request reports not_found.
			if err := s.snapshots.Invalidate(ctx, kind, slug); err != nil {
				log.Printf(`{"event":"snapshot_invalidate_failed","kind":"%s","slug":"%s","error":"%v"}`, kind, slug, err)
			}
		default:
			log.Printf(`{"event":"snapshot_refresh_failed","kind":"%s","slug":"%s","error":"%v"}`, kind, slug, outcome.Err)
		}
	}()
}

// CreateComment validates and stores one comment.
func (s *Service) CreateComment(ctx context.Context, text, page string) error {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(page) == "" {
		return domainError(http.StatusBadRequest, ErrorTypeBadRequest, "text and page are required")
	}

	comment := store.Comment{
		ID:   uuid.NewString(),
		Page: strings.TrimSpace(page),
		Body: strings.TrimSpace(text),
	}
	if err := s.store.InsertComment(ctx, comment); err != nil {
		log.Printf(`{"event":"comment_insert_failed","page":"%s","error":"%v"}`, comment.Page, err)
		return domainError(http.StatusInternalServerError, ErrorTypeServerError, "Could not save comment")
	}
	return nil
}

// ContactInput is one contact-form submission.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// SubmitContact verifies and delivers a contact-form submission. A failed
// confirmation email does not fail the request.
func (s *Service) SubmitContact(ctx context.Context, input ContactInput) error {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Message) == "" {
		return domainError(http.StatusBadRequest, ErrorTypeBadRequest, "Name, email, and message are required")
	}
	if !validEmail(input.Email) {
		return domainError(http.StatusBadRequest, ErrorTypeBadRequest, "Please provide a valid email address")
	}

	ok, err := s.verifier.Verify(ctx, input.Token)
	if err != nil {
		log.Printf(`{"event":"captcha_verify_failed","error":"%v"}`, err)
		return domainError(http.StatusInternalServerError, ErrorTypeServerError, "Could not verify the request")
	}
	if !ok {
		return domainError(http.StatusBadRequest, ErrorTypeBadRequest, "reCAPTCHA verification failed")
	}

	if s.mailer == nil || !s.mailer.IsConfigured() {
		return domainError(http.StatusInternalServerError, ErrorTypeServerError, "Email delivery is not configured")
	}

	msg := email.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Message: input.Message,
	}
	if err := s.mailer.SendContactNotification(msg); err != nil {
		log.Printf(`{"event":"contact_notification_failed","error":"%v"}`, err)
		return domainError(http.StatusInternalServerError, ErrorTypeServerError, "Failed to send email. Please try again later.")
	}

	if s.sendConfirm {
		if err := s.mailer.SendContactConfirmation(msg); err != nil {
			log.Printf(`{"event":"contact_confirmation_failed","error":"%v"}`, err)
		}
	}
	return nil
}

// validEmail applies the same loose shape check the contact form uses:
// something@something.something, no whitespace.
func validEmail(address string) bool {
	at := strings.IndexByte(address, '@')
	if at <= 0 || at == len(address)-1 {
		return false
	}
	domain := address[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	if strings.ContainsAny(address, " \t\n") || strings.Count(address, "@") != 1 {
		return false
	}
	return true
}
