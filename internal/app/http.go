package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"portfolio/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
	writes     *clientLimiter
}

func NewHTTPServer(service *Service, corsOrigin string, writeRatePerMinute int) *HTTPServer {
	return &HTTPServer{
		service:    service,
		corsOrigin: corsOrigin,
		writes:     newClientLimiter(writeRatePerMinute),
	}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/blogs" {
		s.handleList(w, r, store.KindBlog, "blogs")
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/projects" {
		s.handleList(w, r, store.KindProject, "projects")
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/blog_details" {
		s.handleDetails(w, r, store.KindBlog, "blogs")
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/project_details" {
		s.handleDetails(w, r, store.KindProject, "projects")
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/comment" {
		if !s.writes.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, ErrorTypeBadRequest, "Too many requests", "")
			return
		}
		var body struct {
			Text string `json:"text"`
			Page string `json:"page"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, ErrorTypeBadRequest, err.Error(), "")
			return
		}
		if err := s.service.CreateComment(r.Context(), body.Text, body.Page); err != nil {
			status, errorType, message, slug := mapError(err)
			writeError(w, status, errorType, message, slug)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/contact" {
		if !s.writes.allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, ErrorTypeBadRequest, "Too many requests", "")
			return
		}
		var body ContactInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, ErrorTypeBadRequest, err.Error(), "")
			return
		}
		if err := s.service.SubmitContact(r.Context(), body); err != nil {
			status, errorType, message, slug := mapError(err)
			writeError(w, status, errorType, message, slug)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Your message has been sent successfully!",
		})
		return
	}

	writeError(w, http.StatusNotFound, ErrorTypeNotFound, "Not found", "")
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request, kind store.Kind, field string) {
	items, err := s.service.ListEntities(r.Context(), kind)
	if err != nil {
		status, errorType, message, slug := mapError(err)
		writeError(w, status, errorType, message, slug)
		return
	}
	w.Header().Set("Cache-Control", s.service.ListDirective().CacheControl())
	writeJSON(w, http.StatusOK, map[string]any{field: items})
}

func (s *HTTPServer) handleDetails(w http.ResponseWriter, r *http.Request, kind store.Kind, field string) {
	slug := r.URL.Query().Get("slug")
	payload, err := s.service.GetDetails(r.Context(), kind, slug)
	if err != nil {
		status, errorType, message, errSlug := mapError(err)
		writeError(w, status, errorType, message, errSlug)
		return
	}
	w.Header().Set("Cache-Control", s.service.DetailDirective().CacheControl())
	writeJSON(w, http.StatusOK, map[string]any{field: []any{payload}})
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, errorType ErrorType, message, slug string) {
	response := map[string]any{
		"error":     message,
		"errorType": errorType,
	}
	if slug != "" {
		response["slug"] = slug
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func mapError(err error) (status int, errorType ErrorType, message, slug string) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Type, domainErr.Message, domainErr.Slug
	}
	return http.StatusInternalServerError, ErrorTypeServerError, "Server error", ""
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// clientLimiter rate-limits mutating endpoints per client address.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func newClientLimiter(perMinute int) *clientLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &clientLimiter{
		clients: map[string]*rate.Limiter{},
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	limiter, ok := l.clients[client]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.clients[client] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}
