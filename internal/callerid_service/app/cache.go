package app

import (
	"sync"
	"time"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"
)

// PhoneCache is the process-local write-through cache of normalized phone →
// last-known identity. It exists because the upstream directory lags behind
// real-time writes: customers created moments ago are registered here
// out-of-band so the next call from them resolves instantly.
//
// Entries are never evicted; a later Register for the same key overwrites
// the earlier one. Shared by all concurrent requests.
type PhoneCache struct {
	mu      sync.RWMutex
	entries map[domain.PhoneKey]domain.CacheEntry
}

func NewPhoneCache() *PhoneCache {
	return &PhoneCache{entries: make(map[domain.PhoneKey]domain.CacheEntry)}
}

// Register normalizes the entry's phone and stores it, last write wins.
// Entries with no usable phone digits are ignored.
func (c *PhoneCache) Register(entry domain.CacheEntry) domain.PhoneKey {
	key := domain.NormalizePhone(entry.Phone)
	if key.IsEmpty() {
		return key
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	c.mu.Lock()
	c.entries[key] = entry
	size := len(c.entries)
	c.mu.Unlock()

	cacheSizeGauge.Set(float64(size))
	return key
}

func (c *PhoneCache) Get(key domain.PhoneKey) (domain.CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

func (c *PhoneCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
