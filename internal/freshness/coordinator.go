package freshness

import (
	"context"
	"sync"
	"time"

	"portfolio/api/internal/resolver"
	"portfolio/api/internal/store"
)

// FetchFunc issues one resolution attempt for a slug.
type FetchFunc func(ctx context.Context, slug string) resolver.Outcome

// State of a mounted view.
type State int

const (
	// StateSeeded: rendering the server-produced snapshot, untouched so far.
	StateSeeded State = iota
	// StateRevalidating: a background fetch is outstanding; the held value
	// (if any) keeps rendering.
	StateRevalidating
	// StateReconciled: the held value came back from a background fetch.
	StateReconciled
	// StateNotFound is terminal: the identifier confirmed absent, interval
	// refresh canceled, never retried silently.
	StateNotFound
	// StateFailed: no value is held and the last attempt failed; a manual
	// retry is the only way forward.
	StateFailed
)

// View is an immutable observation of a mounted entity. Err is set while a
// retryable error affordance should be shown; Entity stays populated
// through transient failures (stale data is preferred over no data).
type View struct {
	Slug   string
	State  State
	Entity *store.Entity
	Err    error
}

// Options tune a Coordinator. Zero values pick the design defaults.
type Options struct {
	// RefreshInterval between background revalidations. Default 5 minutes.
	RefreshInterval time.Duration
	// DedupWindow within which overlapping refresh requests collapse into
	// one network call. Default 2 seconds.
	DedupWindow time.Duration
	// OnChange is invoked after every state transition with the new view.
	OnChange func(View)

	now func() time.Time
}

const (
	defaultRefreshInterval = 5 * time.Minute
	defaultDedupWindow     = 2 * time.Second
)

// Coordinator drives the freshness state machine for one viewed entity.
// It is the single writer of the held snapshot; readers only ever observe
// a fully-formed value via Snapshot.
type Coordinator struct {
	fetch FetchFunc
	slug  string
	opts  Options

	mu         sync.Mutex
	state      State
	retained   State
	entity     *store.Entity
	err        error
	issued     uint64
	applied    uint64
	lastIssued time.Time
	ctx        context.Context
	cancel     context.CancelFunc
	stop       chan struct{}
	stopOnce   sync.Once
}

// Mount starts coordinating one identifier. A non-nil seeded snapshot is
// immediately renderable, so first paint never waits on the network; a nil
// seed means the server produced nothing and the mount begins in
// StateRevalidating. A background revalidation is issued at mount and then
// on every refresh interval.
func Mount(fetch FetchFunc, slug string, seeded *store.Entity, opts Options) *Coordinator {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = defaultDedupWindow
	}
	if opts.now == nil {
		opts.now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		fetch:  fetch,
		slug:   slug,
		opts:   opts,
		state:  StateSeeded,
		entity: seeded,
		ctx:    ctx,
		cancel: cancel,
		stop:   make(chan struct{}),
	}
	if seeded == nil {
		c.state = StateRevalidating
	}

	c.requestRefresh()
	go c.refreshLoop()
	return c
}

// Snapshot returns the current view.
func (c *Coordinator) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Retry re-issues exactly one resolution attempt after a failure. It is
// the only retry path: nothing retries automatically besides the fixed
// interval, and a terminal NotFound is never retried at all.
func (c *Coordinator) Retry() {
	c.requestRefresh()
}

// Unmount cancels the refresh interval and detaches any in-flight request;
// a response completing after Unmount is discarded.
func (c *Coordinator) Unmount() {
	c.stopOnce.Do(func() {
		close(c.stop)
		c.cancel()
	})
}

func (c *Coordinator) refreshLoop() {
	ticker := time.NewTicker(c.opts.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.requestRefresh()
		case <-c.stop:
			return
		}
	}
}

// requestRefresh issues a background fetch unless one was already issued
// inside the dedup window or the view is torn down or terminal.
func (c *Coordinator) requestRefresh() {
	c.mu.Lock()
	select {
	case <-c.stop:
		c.mu.Unlock()
		return
	default:
	}
	if c.state == StateNotFound {
		c.mu.Unlock()
		return
	}
	now := c.opts.now()
	if !c.lastIssued.IsZero() && now.Sub(c.lastIssued) < c.opts.DedupWindow {
		c.mu.Unlock()
		return
	}
	c.lastIssued = now
	c.issued++
	seq := c.issued
	if c.state != StateRevalidating {
		c.retained = c.state
	}
	c.state = StateRevalidating
	view := c.viewLocked()
	c.mu.Unlock()

	c.notify(view)

	go func() {
		outcome := c.fetch(c.ctx, c.slug)
		c.apply(seq, outcome)
	}()
}

// apply reconciles one completed fetch. Responses that complete after a
// newer response has already been applied are dropped, so a slow retry can
// never overwrite a fresher interval refresh.
func (c *Coordinator) apply(seq uint64, outcome resolver.Outcome) {
	c.mu.Lock()
	select {
	case <-c.stop:
		c.mu.Unlock()
		return
	default:
	}
	if seq < c.applied {
		c.mu.Unlock()
		return
	}
	c.applied = seq

	switch outcome.Status {
	case resolver.StatusFound:
		c.entity = outcome.Entity
		c.err = nil
		c.state = StateReconciled
	case resolver.StatusNotFound:
		c.entity = nil
		c.err = nil
		c.state = StateNotFound
	case resolver.StatusTransient:
		c.err = outcome.Err
		if c.entity == nil {
			c.state = StateFailed
		} else {
			// Stale data is preferred over no data: fall back to the state
			// the value was rendered under before this attempt.
			c.state = c.retained
		}
	}
	view := c.viewLocked()
	terminal := c.state == StateNotFound
	c.mu.Unlock()

	if terminal {
		// No further interval refreshes for a confirmed-absent identifier.
		c.Unmount()
	}
	c.notify(view)
}

func (c *Coordinator) viewLocked() View {
	return View{Slug: c.slug, State: c.state, Entity: c.entity, Err: c.err}
}

func (c *Coordinator) notify(view View) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(view)
	}
}
