package freshness

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"portfolio/api/internal/resolver"
	"portfolio/api/internal/store"
)

// HTTPFetcher resolves entities through the detail endpoints. Server
// failures trip a circuit breaker so a flapping origin does not get
// hammered by every mounted view; 404s are real answers and never count
// against the breaker.
type HTTPFetcher struct {
	baseURL string
	kind    store.Kind
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewHTTPFetcher(baseURL string, kind store.Kind) *HTTPFetcher {
	settings := gobreaker.Settings{
		Name:    "entity-details-" + string(kind),
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &HTTPFetcher{
		baseURL: baseURL,
		kind:    kind,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

type detailResponse struct {
	Blogs    []Payload `json:"blogs"`
	Projects []Payload `json:"projects"`
}

func (f *HTTPFetcher) endpoint(slug string) string {
	path := "/api/blog_details"
	if f.kind == store.KindProject {
		path = "/api/project_details"
	}
	return f.baseURL + path + "?slug=" + url.QueryEscape(slug)
}

// Fetch issues one resolution request and maps the response onto the
// resolver's outcome taxonomy.
func (f *HTTPFetcher) Fetch(ctx context.Context, slug string) resolver.Outcome {
	result, err := f.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint(slug), nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return resolver.NotFound(slug), nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("detail endpoint returned %d", resp.StatusCode)
		}

		var body detailResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, fmt.Errorf("decode detail response: %w", err)
		}
		payloads := body.Blogs
		if f.kind == store.KindProject {
			payloads = body.Projects
		}
		if len(payloads) == 0 {
			return resolver.NotFound(slug), nil
		}
		return resolver.Found(slug, payloads[0].Entity(f.kind)), nil
	})
	if err != nil {
		return resolver.Transient(slug, err)
	}
	return result.(resolver.Outcome)
}
