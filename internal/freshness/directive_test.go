package freshness

import (
	"testing"
	"time"
)

func TestCacheControlRendering(t *testing.T) {
	directive := Directive{FreshFor: 300 * time.Second, StaleWhileRevalidate: 600 * time.Second}
	if got := directive.CacheControl(); got != "s-maxage=300, stale-while-revalidate=600" {
		t.Errorf("unexpected header value: %q", got)
	}
}

func TestDetailDirectiveFavorsLongFreshness(t *testing.T) {
	if DetailDirective.FreshFor < 24*time.Hour {
		t.Errorf("detail freshness should be on the order of days, got %v", DetailDirective.FreshFor)
	}
	if ListDirective.FreshFor != 5*time.Minute || ListDirective.StaleWhileRevalidate != 10*time.Minute {
		t.Errorf("unexpected list directive: %+v", ListDirective)
	}
}

func TestTotalWindow(t *testing.T) {
	directive := Directive{FreshFor: time.Minute, StaleWhileRevalidate: 2 * time.Minute}
	if directive.TotalWindow() != 3*time.Minute {
		t.Errorf("unexpected total window: %v", directive.TotalWindow())
	}
}
