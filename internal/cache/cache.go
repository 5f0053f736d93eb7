// Package cache provides the process-local key/value stores used by the pipeline: the question
// cache and the quick-optimization cache. Both are injected as Store so tests can substitute a
// deterministic implementation.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store is a bounded key/value store with time-based eviction
type Store[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
	Evict(key string)
}

// Fingerprint derives a cache key from an input tuple
func Fingerprint(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(hash[:])
}

// LRU is a size-bounded store whose entries expire after a fixed TTL
type LRU[V any] struct {
	lru *expirable.LRU[string, V]
}

// NewLRU returns an LRU holding at most size entries for ttl each
func NewLRU[V any](size int, ttl time.Duration) *LRU[V] {
	if size <= 0 {
		size = 1
	}
	return &LRU[V]{lru: expirable.NewLRU[string, V](size, nil, ttl)}
}

func (c *LRU[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

func (c *LRU[V]) Set(key string, value V) {
	c.lru.Add(key, value)
}

func (c *LRU[V]) Evict(key string) {
	c.lru.Remove(key)
}

// Len reports the number of live entries
func (c *LRU[V]) Len() int {
	return c.lru.Len()
}

// Memory is an unbounded map store with an injectable clock. It runs no background work.
type Memory[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry[V]
}

type memoryEntry[V any] struct {
	value   V
	expires time.Time
}

// NewMemory returns a Memory store. A zero ttl never expires entries; a nil now uses time.Now.
func NewMemory[V any](ttl time.Duration, now func() time.Time) *Memory[V] {
	if now == nil {
		now = time.Now
	}
	return &Memory[V]{ttl: ttl, now: now, entries: make(map[string]memoryEntry[V])}
}

func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	e, ok := m.entries[key]
	if !ok {
		return zero, false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return zero, false
	}
	return e.value, true
}

func (m *Memory[V]) Set(key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry[V]{value: value}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[key] = e
}

func (m *Memory[V]) Evict(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

var (
	_ Store[string] = (*LRU[string])(nil)
	_ Store[string] = (*Memory[string])(nil)
)
