package domain

import (
	"time"
)

// RateLimitResult is the outcome of one sliding-window check. Returned for
// accepted and rejected calls alike so transports can surface limit metadata
// to the caller.
type RateLimitResult struct {
	// Allowed reports whether the call was admitted.
	Allowed bool

	// Count is the number of in-window requests after this check. A rejected
	// call is not recorded and does not raise the count.
	Count int

	// Limit is the tier's request budget per window.
	Limit int

	// Window is the sliding window length.
	Window time.Duration

	// ResetTime is when the oldest in-window request leaves the window.
	ResetTime time.Time

	// RetryAfter is the wait before a rejected caller may try again. Zero
	// when the call was allowed.
	RetryAfter time.Duration
}

// Remaining returns how many requests the client may still make in the
// current window.
func (r RateLimitResult) Remaining() int {
	remaining := r.Limit - r.Count
	if remaining < 0 {
		return 0
	}
	return remaining
}
