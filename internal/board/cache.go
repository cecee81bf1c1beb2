package board

import (
	"sync"
	"time"

	"github.com/amahpour/arduino-mcp-server-simple/internal/validate"
)

// Cache maps serial port addresses to resolved FQBNs. It is owned by the
// Registry and shared by concurrent resolutions; last writer wins on a
// key, which is harmless because resolution is idempotent for a given
// port. Entries never expire unless a TTL is configured.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry

	now func() time.Time
}

type cacheEntry struct {
	fqbn string
	at   time.Time
}

// NewCache returns a Cache whose entries expire after ttl. A zero ttl
// means entries live for the life of the process.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached FQBN for port, if present and not expired.
func (c *Cache) Get(port string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[port]
	if !ok {
		return "", false
	}
	if c.ttl > 0 && c.now().Sub(e.at) > c.ttl {
		delete(c.entries, port)
		return "", false
	}
	return e.fqbn, true
}

// Put records the FQBN for port. Values that are not well-formed FQBNs
// are never written.
func (c *Cache) Put(port, fqbn string) {
	if !validate.FQBN(fqbn) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[port] = cacheEntry{fqbn: fqbn, at: c.now()}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
