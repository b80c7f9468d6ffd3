package authapi

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"placemate/cmd/internal/webutil"
)

// throttle is a per-key sliding-window counter guarding the credential
// endpoints. State is in-process; multi-instance deployments shard naturally
// by load balancer affinity and the limit is a nuisance bound, not an exact
// quota.
type throttle struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
	now    func() time.Time
}

func newThrottle(window time.Duration, max int) *throttle {
	return &throttle{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// allow records an attempt for key and reports whether it is within budget.
// When the budget is exhausted it returns the wait until the oldest attempt
// leaves the window.
func (t *throttle) allow(key string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	cutoff := now.Add(-t.window)

	kept := t.hits[key][:0]
	for _, ts := range t.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= t.max {
		t.hits[key] = kept
		return false, kept[0].Sub(cutoff)
	}

	t.hits[key] = append(kept, now)
	return true, 0
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(retryAfter.Seconds())
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	webutil.WriteError(w, http.StatusTooManyRequests, "Too many attempts, please try again later")
}
