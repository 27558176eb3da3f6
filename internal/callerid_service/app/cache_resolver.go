package app

import (
	"context"
	"log/slog"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"
)

// CacheResolver consults the local write-through cache and, on a hit,
// verifies the entry against a direct-by-id upstream fetch. The direct path
// is not subject to the directory's write lag, so a successful verification
// yields fresher fields than the cache holds; if verification fails the
// cached fields are trusted as-is rather than losing the match.
type CacheResolver struct {
	cache  *PhoneCache
	api    DirectoryAPI
	logger *slog.Logger
}

func NewCacheResolver(cache *PhoneCache, api DirectoryAPI, logger *slog.Logger) *CacheResolver {
	return &CacheResolver{cache: cache, api: api, logger: logger.With("resolver", "cache")}
}

func (r *CacheResolver) Name() string { return "cache" }

func (r *CacheResolver) Resolve(ctx context.Context, token string, key domain.PhoneKey) (*domain.CustomerRecord, error) {
	entry, ok := r.cache.Get(key)
	if !ok {
		return nil, nil
	}

	upstream, err := r.api.ClientByID(ctx, token, entry.ClientID)
	if err != nil {
		r.logger.WarnContext(ctx, "Cache entry verification failed, using cached fields",
			"client_id", entry.ClientID, "error", err)
		return entry.Record(domain.SourceCache), nil
	}

	// Field-by-field merge: a non-empty upstream value wins over the cached one.
	return &domain.CustomerRecord{
		ID:        firstNonEmpty(upstream.ClientID, entry.ClientID),
		FirstName: firstNonEmpty(upstream.FirstName, entry.FirstName),
		LastName:  firstNonEmpty(upstream.LastName, entry.LastName),
		Email:     firstNonEmpty(upstream.EmailAddress, entry.Email),
		Phone:     firstNonEmpty(upstream.PrimaryPhoneNumber, entry.Phone),
		Source:    domain.SourceCacheVerified,
	}, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
