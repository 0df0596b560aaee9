package service

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/parsivoice/pasban/internal/auth/domain"
)

// rateLimiterShards bounds lock contention: buckets are spread over this many
// independently locked maps by FNV hash of the client ID.
const rateLimiterShards = 32

// rateLimiterShard holds the timestamp buckets of one shard.
type rateLimiterShard struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
}

// slidingWindowLimiter implements RateLimiter with a per-client sliding
// window. The prune-then-append sequence for one client runs atomically
// under its shard lock.
type slidingWindowLimiter struct {
	shards   [rateLimiterShards]*rateLimiterShard
	profiles map[domain.Tier]domain.RateProfile
	fallback domain.RateProfile
	now      func() time.Time
}

// Check prunes the client's window and admits or rejects the call. The
// window boundary is exclusive: a timestamp exactly window-old is pruned.
// Rejected calls are not recorded, so a rejected client's reset time never
// moves further away.
func (l *slidingWindowLimiter) Check(clientID string, tier domain.Tier) domain.RateLimitResult {
	profile := l.profileFor(tier)
	now := l.now()
	cutoff := now.Add(-profile.Window)

	shard := l.shardFor(clientID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	timestamps := shard.buckets[clientID]
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= profile.Limit {
		shard.buckets[clientID] = kept
		oldest := kept[0]
		return domain.RateLimitResult{
			Allowed:    false,
			Count:      len(kept),
			Limit:      profile.Limit,
			Window:     profile.Window,
			ResetTime:  oldest.Add(profile.Window),
			RetryAfter: oldest.Add(profile.Window).Sub(now),
		}
	}

	kept = append(kept, now)
	shard.buckets[clientID] = kept

	return domain.RateLimitResult{
		Allowed:   true,
		Count:     len(kept),
		Limit:     profile.Limit,
		Window:    profile.Window,
		ResetTime: kept[0].Add(profile.Window),
	}
}

// ActiveBuckets reports how many clients hold at least one in-window
// timestamp. Windows differ per tier, so a bucket counts as active when any
// of its timestamps is inside the largest configured window.
func (l *slidingWindowLimiter) ActiveBuckets() int {
	now := l.now()
	cutoff := now.Add(-l.largestWindow())

	active := 0
	for _, shard := range l.shards {
		shard.mu.Lock()
		for _, timestamps := range shard.buckets {
			for _, ts := range timestamps {
				if ts.After(cutoff) {
					active++
					break
				}
			}
		}
		shard.mu.Unlock()
	}
	return active
}

func (l *slidingWindowLimiter) profileFor(tier domain.Tier) domain.RateProfile {
	if profile, ok := l.profiles[tier]; ok {
		return profile
	}
	return l.fallback
}

func (l *slidingWindowLimiter) largestWindow() time.Duration {
	largest := l.fallback.Window
	for _, profile := range l.profiles {
		if profile.Window > largest {
			largest = profile.Window
		}
	}
	return largest
}

func (l *slidingWindowLimiter) shardFor(clientID string) *rateLimiterShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return l.shards[h.Sum32()%rateLimiterShards]
}

// NewRateLimiter creates a sliding-window RateLimiter with the given per-tier
// profiles. Unknown tiers fall back to the most restrictive profile.
func NewRateLimiter(profiles map[domain.Tier]domain.RateProfile) RateLimiter {
	limiter := &slidingWindowLimiter{
		profiles: make(map[domain.Tier]domain.RateProfile, len(profiles)),
		now:      time.Now,
	}
	for tier, profile := range profiles {
		limiter.profiles[tier] = profile
		if limiter.fallback.Limit == 0 || profile.Limit < limiter.fallback.Limit {
			limiter.fallback = profile
		}
	}
	if limiter.fallback.Limit == 0 {
		limiter.fallback = domain.RateProfile{Limit: 10, Window: time.Hour}
	}
	for i := range limiter.shards {
		limiter.shards[i] = &rateLimiterShard{buckets: make(map[string][]time.Time)}
	}
	return limiter
}
