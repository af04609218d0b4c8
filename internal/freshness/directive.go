// Package freshness owns every caching decision around resolved entities:
// the advisory Cache-Control pair attached to server responses, the
// origin-side Redis snapshot cache, and the client-side coordinator that
// keeps a mounted view revalidated without ever flashing a loading state.
package freshness

import (
	"fmt"
	"time"
)

// Directive is the advisory freshness pair carried alongside a payload.
// A cached copy younger than FreshFor may be served as-is; one older than
// that but within StaleWhileRevalidate may be served immediately while a
// refresh happens in the background.
type Directive struct {
	FreshFor             time.Duration
	StaleWhileRevalidate time.Duration
}

// Lists are rebuilt often; individual entities change rarely once
// published, so details trade slower edit propagation for fewer origin
// recomputations.
var (
	ListDirective   = Directive{FreshFor: 5 * time.Minute, StaleWhileRevalidate: 10 * time.Minute}
	DetailDirective = Directive{FreshFor: 48 * time.Hour, StaleWhileRevalidate: 24 * time.Hour}
)

// CacheControl renders the directive as the shared-cache header value.
func (d Directive) CacheControl() string {
	return fmt.Sprintf("s-maxage=%d, stale-while-revalidate=%d",
		int(d.FreshFor.Seconds()), int(d.StaleWhileRevalidate.Seconds()))
}

// TotalWindow is the age beyond which a cached copy may not be served at
// all.
func (d Directive) TotalWindow() time.Duration {
	return d.FreshFor + d.StaleWhileRevalidate
}
