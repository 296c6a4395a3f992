// Package cache stores compiled statements keyed by the request that produced them.
// Compilation is deterministic, so an entry stays valid for as long as the schema
// and base statement do not change; the TTL bounds that window.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Param is one placeholder table entry.
type Param struct {
	Name  string `msgpack:"n"`
	Value string `msgpack:"v"`
}

// Entry is a cached compilation result.
type Entry struct {
	Statement  string  `msgpack:"s"`
	Parameters []Param `msgpack:"p"`
}

// Store is a compiled-statement cache. Get returns (nil, nil) on a miss.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, e *Entry) error
}

// Scope fingerprints the compiler settings an entry depends on. Services with
// different base statements or depth limits never share entries.
func Scope(base string, maxDepth int) string {
	sum := sha256.Sum256([]byte(base + "\x00" + strconv.Itoa(maxDepth)))
	return hex.EncodeToString(sum[:8])
}

// Key derives the cache key for a request body within scope. Bodies differing only in
// insignificant whitespace share a key.
func Key(scope, object, style string, body []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return scope + ":" + object + ":" + style + ":" + hex.EncodeToString(sum[:]), nil
}

func encode(e *Entry) ([]byte, error) {
	return msgpack.Marshal(e)
}

func decode(b []byte) (*Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &e, nil
}

// Memory is an in-process Store. Entries are stored encoded so callers never share
// mutable state with the cache.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// NewMemory returns an in-process store. A zero ttl keeps entries forever.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (*Entry, error) {
	m.mu.RLock()
	me, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !me.expires.IsZero() && m.now().After(me.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, nil
	}
	return decode(me.data)
}

func (m *Memory) Set(_ context.Context, key string, e *Entry) error {
	data, err := encode(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	me := memoryEntry{data: data}
	if m.ttl > 0 {
		me.expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[key] = me
	m.mu.Unlock()
	return nil
}

// Sweep removes expired entries and returns how many it removed.
func (m *Memory) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key, me := range m.entries {
		if !me.expires.IsZero() && now.After(me.expires) {
			delete(m.entries, key)
			n++
		}
	}
	return n
}

// Run sweeps expired entries every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
