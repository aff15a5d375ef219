package moderation

import "sync"

// NameCache memoizes a member's resolved display name for the process
// lifetime. Names are never invalidated; a stale name is an accepted,
// bounded inconsistency. Safe for concurrent use.
type NameCache struct {
	names sync.Map // memberID int64 → name string
}

// NewNameCache creates an empty cache.
func NewNameCache() *NameCache {
	return &NameCache{}
}

// Resolve returns the cached display name for the sender, computing and
// storing it on first use.
func (c *NameCache) Resolve(s Sender) string {
	if v, ok := c.names.Load(s.ID); ok {
		return v.(string)
	}
	name := s.DisplayName()
	c.names.Store(s.ID, name)
	return name
}
