package transcribe

import "sync"

// supportCache remembers, per base URL, whether a server was observed to
// honor streaming responses. Readers share a lock; writers are exclusive.
type supportCache struct {
	mu      sync.RWMutex
	servers map[string]bool
}

// newSupportCache creates an empty capability cache.
func newSupportCache() *supportCache {
	return &supportCache{servers: make(map[string]bool)}
}

// Lookup returns the cached capability and whether the server is known.
func (c *supportCache) Lookup(baseURL string) (supported, known bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	supported, known = c.servers[baseURL]
	return supported, known
}

// Set records the observed streaming capability for a server.
func (c *supportCache) Set(baseURL string, supported bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.servers[baseURL] = supported
}
