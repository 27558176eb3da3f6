package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"
)

// FeedResolver queries the upstream change feed for records modified within
// the lookback window. It is a best-effort fast path for recently created or
// edited clients that the bulk directory has not surfaced yet: any page
// failure aborts the stage without retry, and the directory scan remains the
// fallback source of truth.
type FeedResolver struct {
	api      DirectoryAPI
	lookback time.Duration
	maxPages int
	logger   *slog.Logger

	now func() time.Time
}

func NewFeedResolver(api DirectoryAPI, lookback time.Duration, maxPages int, logger *slog.Logger) *FeedResolver {
	return &FeedResolver{
		api:      api,
		lookback: lookback,
		maxPages: maxPages,
		logger:   logger.With("resolver", "recent-change-feed"),
		now:      time.Now,
	}
}

func (r *FeedResolver) Name() string { return "recent-change-feed" }

func (r *FeedResolver) Resolve(ctx context.Context, token string, key domain.PhoneKey) (*domain.CustomerRecord, error) {
	since := r.now().Add(-r.lookback)

	for page := 1; page <= r.maxPages; page++ {
		records, err := r.api.ChangedClientsPage(ctx, token, since, page)
		if err != nil {
			r.logger.WarnContext(ctx, "Change feed page failed, aborting feed scan", "page", page, "error", err)
			return nil, err
		}
		upstreamPagesScannedCounter.WithLabelValues(r.Name()).Inc()

		if len(records) == 0 {
			break
		}
		for _, rec := range records {
			if rec.MatchesPhone(key) {
				return rec.Customer(domain.SourceChangeFeed), nil
			}
		}
	}
	return nil, nil
}
