package retry

import (
	"context"
	"time"
)

// Wait polls probe until it reports success, the budget elapses, or ctx is
// cancelled. It returns the probe's value and true on success, or the zero
// value and false otherwise.
//
// The probe runs once immediately, then once per interval. Wait returns as
// soon as the probe succeeds rather than sleeping out the remaining budget,
// so fast downloads cost only their actual latency.
func Wait(ctx context.Context, interval, budget time.Duration, probe func() (string, bool)) (string, bool) {
	if v, ok := probe(); ok {
		return v, true
	}
	if budget <= 0 {
		return "", false
	}
	// time.NewTicker panics on non-positive intervals
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(budget)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", false
		case <-deadline.C:
			return "", false
		case <-ticker.C:
			if v, ok := probe(); ok {
				return v, true
			}
		}
	}
}
