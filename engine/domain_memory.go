package engine

import (
	"sync"
	"time"
)

type memoryEntry struct {
	engine    string
	expiresAt time.Time
}

// DomainMemory remembers which engine last won the race for each host, so
// later pages of the same storefront skip straight to it. Entries expire
// after the TTL. A nil *DomainMemory remembers nothing.
type DomainMemory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewDomainMemory creates a DomainMemory with the given TTL.
func NewDomainMemory(ttl time.Duration) *DomainMemory {
	return &DomainMemory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the remembered engine for host, or "" if none or expired.
// Expired entries are dropped on read.
func (dm *DomainMemory) Get(host string) string {
	if dm == nil {
		return ""
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	e, ok := dm.entries[host]
	if !ok {
		return ""
	}
	if dm.now().After(e.expiresAt) {
		delete(dm.entries, host)
		return ""
	}
	return e.engine
}

// Set records the engine that succeeded for host.
func (dm *DomainMemory) Set(host, engine string) {
	if dm == nil {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.entries[host] = memoryEntry{engine: engine, expiresAt: dm.now().Add(dm.ttl)}
}

// Delete forgets host, e.g. after the remembered engine fails.
func (dm *DomainMemory) Delete(host string) {
	if dm == nil {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	delete(dm.entries, host)
}

// Len returns the number of remembered hosts, expired or not.
func (dm *DomainMemory) Len() int {
	if dm == nil {
		return 0
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return len(dm.entries)
}
