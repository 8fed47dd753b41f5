package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/time/rate"
)

// LocalStore is an in-process fixed-window counter table. Keys are spread
// over independently locked shards; each Observe is a single read-modify-write
// under its shard's lock, so concurrent callers never lose an increment.
type LocalStore struct {
	shards []*shard
	now    Clock
	purge  *rate.Sometimes
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*counterEntry
}

type counterEntry struct {
	count   int
	resetAt time.Time
}

// NewLocalStore creates a counter table with the given number of shards.
// A purgeEvery above zero runs Purge in-line on every Nth Observe.
func NewLocalStore(shards, purgeEvery int, now Clock) *LocalStore {
	if shards <= 0 {
		shards = defaultShards
	}
	if now == nil {
		now = wallClock
	}

	s := &LocalStore{
		shards: make([]*shard, shards),
		now:    now,
	}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]*counterEntry)}
	}
	if purgeEvery > 0 {
		s.purge = &rate.Sometimes{Every: purgeEvery}
	}
	return s
}

// Observe records one attempt against key
func (s *LocalStore) Observe(_ context.Context, key string, limit int, window time.Duration) Decision {
	// Must run before any shard lock is taken; Purge locks every shard.
	if s.purge != nil {
		s.purge.Do(func() { s.Purge() })
	}

	now := s.now()
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	entry, ok := sh.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &counterEntry{count: 1, resetAt: now.Add(window)}
		sh.entries[key] = entry
		return newDecision(limit, entry.count, entry.resetAt)
	}

	entry.count++
	return newDecision(limit, entry.count, entry.resetAt)
}

// Purge removes expired entries and returns how many were dropped
func (s *LocalStore) Purge() int {
	now := s.now()
	removed := 0

	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, entry := range sh.entries {
			if !now.Before(entry.resetAt) {
				delete(sh.entries, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}

	return removed
}

// Len returns the number of entries held, including expired ones not yet purged
func (s *LocalStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

func (s *LocalStore) shardFor(key string) *shard {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

var _ Store = (*LocalStore)(nil)
