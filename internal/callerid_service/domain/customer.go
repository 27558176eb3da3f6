package domain

import "time"

// Source identifies which resolver stage produced a customer match.
type Source string

const (
	SourceCache         Source = "cache"
	SourceCacheVerified Source = "cache+verified"
	SourceChangeFeed    Source = "recent-change-feed"
	SourceDirectoryScan Source = "directory-scan"
)

// CustomerRecord is the outcome of a successful phone resolution. It is a
// value object: created once by a resolver, never mutated, discarded after
// the webhook response is written.
type CustomerRecord struct {
	ID        string `json:"client_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Source    Source `json:"source"`
}

// CacheEntry holds the last-known identity for a phone key in the local
// write-through cache. Entries are inserted by the out-of-band registration
// endpoint when a new customer is created elsewhere, overwrite any prior
// entry for the same key, and live for the lifetime of the process.
type CacheEntry struct {
	ClientID  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// Record converts a cache entry to a CustomerRecord with the given source.
func (e CacheEntry) Record(src Source) *CustomerRecord {
	return &CustomerRecord{
		ID:        e.ClientID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Phone:     e.Phone,
		Source:    src,
	}
}
