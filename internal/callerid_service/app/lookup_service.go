package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"
	"github.com/keepitcut/callerid-lookup/internal/platform/messagebroker"
)

const (
	subjectLookupResolved = "callerid.lookup.resolved"
	subjectLookupNotFound = "callerid.lookup.not_found"
)

// Result is the terminal state of a lookup. Customer == nil means not found.
// Err is diagnostic only: failures never propagate to the webhook caller,
// who always receives a structurally valid not-found style answer so the
// telephony flow can proceed as a new-customer scenario.
type Result struct {
	Customer *domain.CustomerRecord
	Err      error
}

// LookupService sequences the resolver pipeline under the latency budget:
// local cache (with verification), then the recent-change feed, then the
// paginated directory scan. Stages run in fixed order; a stage error
// degrades to the next stage, exhaustion degrades to not-found.
type LookupService struct {
	api       DirectoryAPI
	resolvers []Resolver
	publisher messagebroker.Publisher // nil disables event publishing
	logger    *slog.Logger
}

func NewLookupService(api DirectoryAPI, resolvers []Resolver, publisher messagebroker.Publisher, logger *slog.Logger) *LookupService {
	return &LookupService{
		api:       api,
		resolvers: resolvers,
		publisher: publisher,
		logger:    logger.With("component", "lookup_service"),
	}
}

// Lookup resolves a raw caller phone string to a customer record. An empty
// or digit-free phone short-circuits to not-found with zero upstream calls.
func (s *LookupService) Lookup(ctx context.Context, rawPhone string) (result Result) {
	start := time.Now()

	// The caller must get a well-formed answer no matter what goes wrong in
	// a stage, including a panic in an adapter.
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "Lookup panicked", "panic", rec)
			result = Result{Err: fmt.Errorf("lookup panic: %v", rec)}
			lookupsTotal.WithLabelValues("error", "").Inc()
		}
	}()

	key := domain.NormalizePhone(rawPhone)
	if key.IsEmpty() {
		lookupsTotal.WithLabelValues("not_found", "").Inc()
		return Result{}
	}

	token, err := s.api.Token(ctx)
	if err != nil {
		// Without a token nothing upstream is reachable; answer as not-found.
		s.logger.ErrorContext(ctx, "Token acquisition failed", "error", err)
		lookupsTotal.WithLabelValues("error", "").Inc()
		return Result{Err: err}
	}

	for _, resolver := range s.resolvers {
		stageStart := time.Now()
		customer, err := resolver.Resolve(ctx, token, key)
		resolverStageDurationHist.WithLabelValues(resolver.Name()).Observe(time.Since(stageStart).Seconds())

		if err != nil {
			s.logger.WarnContext(ctx, "Resolver stage failed, degrading to next stage",
				"stage", resolver.Name(), "error", err)
			continue
		}
		if customer != nil {
			s.logger.InfoContext(ctx, "Caller resolved",
				"stage", resolver.Name(), "source", string(customer.Source),
				"client_id", customer.ID, "elapsed_ms", time.Since(start).Milliseconds())
			lookupsTotal.WithLabelValues("found", string(customer.Source)).Inc()
			s.publishEvent(ctx, key, customer, time.Since(start))
			return Result{Customer: customer}
		}
	}

	s.logger.InfoContext(ctx, "Caller not found",
		"phone_key", key.String(), "elapsed_ms", time.Since(start).Milliseconds())
	lookupsTotal.WithLabelValues("not_found", "").Inc()
	s.publishEvent(ctx, key, nil, time.Since(start))
	return Result{}
}

type lookupEvent struct {
	EventID   string `json:"event_id"`
	PhoneKey  string `json:"phone_key"`
	Found     bool   `json:"found"`
	Source    string `json:"source,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

// publishEvent emits a lookup outcome for downstream consumers. Publishing
// is fire-and-forget: a broker failure is logged and never affects the
// response.
func (s *LookupService) publishEvent(ctx context.Context, key domain.PhoneKey, customer *domain.CustomerRecord, elapsed time.Duration) {
	if s.publisher == nil {
		return
	}

	evt := lookupEvent{
		EventID:   uuid.NewString(),
		PhoneKey:  key.String(),
		ElapsedMs: elapsed.Milliseconds(),
	}
	subject := subjectLookupNotFound
	if customer != nil {
		evt.Found = true
		evt.Source = string(customer.Source)
		evt.ClientID = customer.ID
		subject = subjectLookupResolved
	}

	data, err := json.Marshal(evt)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal lookup event", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, subject, data); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish lookup event", "subject", subject, "error", err)
	}
}
