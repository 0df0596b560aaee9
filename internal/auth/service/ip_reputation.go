package service

import (
	"hash/fnv"
	"sync"
	"time"
)

// reputationShards matches the limiter's sharding so both halves of the auth
// chain degrade the same way under many distinct sources.
const reputationShards = 32

// reputationShard holds failure histories and block entries for a slice of
// the address space.
type reputationShard struct {
	mu       sync.Mutex
	failures map[string][]time.Time
	blocks   map[string]time.Time
}

// ReputationThresholds configures the failure-to-block escalation.
type ReputationThresholds struct {
	// FailureWindow is how long a failure counts against an address.
	FailureWindow time.Duration

	// ShortThreshold failures inside the window trigger ShortBlock.
	ShortThreshold int
	ShortBlock     time.Duration

	// LongThreshold failures inside the window trigger LongBlock.
	LongThreshold int
	LongBlock     time.Duration
}

// DefaultReputationThresholds returns the standard escalation: 5 failures in
// an hour block for 15 minutes, 10 failures block for 30 minutes.
func DefaultReputationThresholds() ReputationThresholds {
	return ReputationThresholds{
		FailureWindow:  time.Hour,
		ShortThreshold: 5,
		ShortBlock:     15 * time.Minute,
		LongThreshold:  10,
		LongBlock:      30 * time.Minute,
	}
}

// ipReputationTracker implements IPReputationTracker with lazily expired
// block entries. No background sweeper: expired state is dropped on the
// check that observes it.
type ipReputationTracker struct {
	shards     [reputationShards]*reputationShard
	thresholds ReputationThresholds
	now        func() time.Time
}

// TrackFailure appends a failure for ip, prunes history older than the
// failure window, and applies the block thresholds to the pruned count.
// A longer existing block is never shortened by a later, smaller escalation.
func (t *ipReputationTracker) TrackFailure(ip string) (bool, time.Time) {
	now := t.now()
	cutoff := now.Add(-t.thresholds.FailureWindow)

	shard := t.shardFor(ip)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	history := shard.failures[ip]
	kept := history[:0]
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)
	shard.failures[ip] = kept

	var blockFor time.Duration
	switch {
	case len(kept) >= t.thresholds.LongThreshold:
		blockFor = t.thresholds.LongBlock
	case len(kept) >= t.thresholds.ShortThreshold:
		blockFor = t.thresholds.ShortBlock
	}

	if blockFor > 0 {
		until := now.Add(blockFor)
		if existing, ok := shard.blocks[ip]; !ok || until.After(existing) {
			shard.blocks[ip] = until
		}
	}

	if until, ok := shard.blocks[ip]; ok && until.After(now) {
		return true, until
	}
	return false, time.Time{}
}

// IsBlocked reports whether ip holds a non-expired block entry. An expired
// entry is removed here rather than by a background sweep.
func (t *ipReputationTracker) IsBlocked(ip string) (bool, time.Time) {
	now := t.now()

	shard := t.shardFor(ip)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	until, ok := shard.blocks[ip]
	if !ok {
		return false, time.Time{}
	}
	if !until.After(now) {
		delete(shard.blocks, ip)
		return false, time.Time{}
	}
	return true, until
}

// BlockedCount reports the number of addresses with a non-expired block.
func (t *ipReputationTracker) BlockedCount() int {
	now := t.now()

	blocked := 0
	for _, shard := range t.shards {
		shard.mu.Lock()
		for ip, until := range shard.blocks {
			if until.After(now) {
				blocked++
			} else {
				delete(shard.blocks, ip)
			}
		}
		shard.mu.Unlock()
	}
	return blocked
}

func (t *ipReputationTracker) shardFor(ip string) *reputationShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(ip))
	return t.shards[h.Sum32()%reputationShards]
}

// NewIPReputationTracker creates an IPReputationTracker with the given
// escalation thresholds.
func NewIPReputationTracker(thresholds ReputationThresholds) IPReputationTracker {
	tracker := &ipReputationTracker{
		thresholds: thresholds,
		now:        time.Now,
	}
	for i := range tracker.shards {
		tracker.shards[i] = &reputationShard{
			failures: make(map[string][]time.Time),
			blocks:   make(map[string]time.Time),
		}
	}
	return tracker
}
