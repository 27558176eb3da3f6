package app

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/adapters/meevo"
	"github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"
)

// DirectoryResolver paginates the full client directory looking for a phone
// match. Pages are 1-indexed and an empty page marks the end of the
// directory. The page cap, not per-call timeouts, is what bounds this
// stage's contribution to the overall latency budget.
type DirectoryResolver struct {
	api          DirectoryAPI
	itemsPerPage int
	maxPages     int
	parallel     bool
	batchSize    int
	logger       *slog.Logger
}

func NewDirectoryResolver(api DirectoryAPI, itemsPerPage, maxPages int, parallel bool, batchSize int, logger *slog.Logger) *DirectoryResolver {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &DirectoryResolver{
		api:          api,
		itemsPerPage: itemsPerPage,
		maxPages:     maxPages,
		parallel:     parallel,
		batchSize:    batchSize,
		logger:       logger.With("resolver", "directory-scan"),
	}
}

func (r *DirectoryResolver) Name() string { return "directory-scan" }

func (r *DirectoryResolver) Resolve(ctx context.Context, token string, key domain.PhoneKey) (*domain.CustomerRecord, error) {
	if r.parallel {
		return r.resolveParallel(ctx, token, key)
	}
	return r.resolveSequential(ctx, token, key)
}

func (r *DirectoryResolver) resolveSequential(ctx context.Context, token string, key domain.PhoneKey) (*domain.CustomerRecord, error) {
	for page := 1; page <= r.maxPages; page++ {
		records, err := r.api.ClientsPage(ctx, token, page, r.itemsPerPage)
		if err != nil {
			r.logger.WarnContext(ctx, "Directory page failed, aborting scan", "page", page, "error", err)
			return nil, err
		}
		upstreamPagesScannedCounter.WithLabelValues(r.Name()).Inc()

		if len(records) == 0 {
			break
		}
		for _, rec := range records {
			if rec.MatchesPhone(key) {
				return rec.Customer(domain.SourceDirectoryScan), nil
			}
		}
	}
	return nil, nil
}

type pageResult struct {
	records []meevo.ClientRecord
	err     error
}

// resolveParallel fetches a bounded batch of pages concurrently per round.
// Results are examined in ascending page order so the lowest-numbered match
// wins deterministically, an error aborts at its page position, and an empty
// page ends the scan after the pages before it have been checked. Later
// results in the same round are simply discarded.
func (r *DirectoryResolver) resolveParallel(ctx context.Context, token string, key domain.PhoneKey) (*domain.CustomerRecord, error) {
	for first := 1; first <= r.maxPages; first += r.batchSize {
		last := first + r.batchSize - 1
		if last > r.maxPages {
			last = r.maxPages
		}

		results := make([]pageResult, last-first+1)
		var g errgroup.Group
		for page := first; page <= last; page++ {
			page := page
			g.Go(func() error {
				records, err := r.api.ClientsPage(ctx, token, page, r.itemsPerPage)
				results[page-first] = pageResult{records: records, err: err}
				return nil
			})
		}
		g.Wait()

		for i, res := range results {
			page := first + i
			if res.err != nil {
				r.logger.WarnContext(ctx, "Directory page failed, aborting scan", "page", page, "error", res.err)
				return nil, res.err
			}
			upstreamPagesScannedCounter.WithLabelValues(r.Name()).Inc()

			if len(res.records) == 0 {
				return nil, nil
			}
			for _, rec := range res.records {
				if rec.MatchesPhone(key) {
					return rec.Customer(domain.SourceDirectoryScan), nil
				}
			}
		}
	}
	return nil, nil
}
