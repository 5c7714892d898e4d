package editor

import (
	"sync"

	"sitebuilder/internal/domain"
)

// ZoneCache keeps the contents of unregistered zones so that registering the
// same key again restores them. A Store that returns an error has not kept
// the nodes.
type ZoneCache interface {
	Load(key string) ([]domain.Node, bool)
	Store(key string, nodes []domain.Node) error
}

// MemoryZoneCache is an in-process ZoneCache. One instance belongs to one
// editing session. Entries never expire; they are overwritten by the next
// unregister of the same key.
type MemoryZoneCache struct {
	mu      sync.RWMutex
	entries map[string][]domain.Node
}

func NewMemoryZoneCache() *MemoryZoneCache {
	return &MemoryZoneCache{entries: make(map[string][]domain.Node)}
}

func (c *MemoryZoneCache) Load(key string) ([]domain.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nodes, ok := c.entries[key]
	return nodes, ok
}

func (c *MemoryZoneCache) Store(key string, nodes []domain.Node) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = nodes
	return nil
}

// Len returns the number of cached zones.
func (c *MemoryZoneCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
