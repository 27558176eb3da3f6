package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/app"
	"github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"
)

// PhoneLookuper is the application surface the handler needs; *app.LookupService
// satisfies it, tests substitute a mock.
type PhoneLookuper interface {
	Lookup(ctx context.Context, phone string) app.Result
}

type LookupHandler struct {
	svc    PhoneLookuper
	logger *slog.Logger
}

func NewLookupHandler(svc PhoneLookuper, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{svc: svc, logger: logger.With("component", "lookup_handler")}
}

func (h *LookupHandler) RegisterRoutes(r chi.Router) {
	r.Post("/lookup", h.HandleLookup)
}

// lookupRequest is the inbound webhook payload. The telephony platform sends
// the caller inside call_inbound; direct/test callers send a top-level phone.
type lookupRequest struct {
	Event       string       `json:"event"`
	CallInbound *callInbound `json:"call_inbound"`
	Phone       string       `json:"phone"`
}

type callInbound struct {
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number,omitempty"`
}

// dynamicVariables is the call_inbound response shape. Every value is a
// string (existing_customer is the literal "true"/"false", not a boolean)
// and absent identity fields are empty strings — the telephony platform
// rejects anything else.
type dynamicVariables struct {
	ExistingCustomer string `json:"existing_customer"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	ClientID         string `json:"client_id"`
	Email            string `json:"email"`
	Phone            string `json:"phone,omitempty"`
}

type callInboundResponse struct {
	CallInbound struct {
		DynamicVariables dynamicVariables `json:"dynamic_variables"`
	} `json:"call_inbound"`
}

// directResponse is the direct/test-mode shape: booleans and JSON nulls
// instead of the string conventions above.
type directResponse struct {
	ExistingCustomer bool    `json:"existing_customer"`
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	ClientID         *string `json:"client_id"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	Source           *string `json:"source,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// HandleLookup answers the inbound caller-ID webhook. The response is always
// HTTP 200 with a structurally complete payload: a malformed request, an
// upstream outage or any internal failure surfaces as existing_customer
// false, never as an error status that would disrupt a live call.
func (h *LookupHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chimiddleware.GetReqID(ctx))

	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "Failed to decode lookup request", "error", err)
		// Fall through with an empty request; the not-found shape below is
		// still a valid answer for the caller.
	}

	phone := req.Phone
	if req.CallInbound != nil && req.CallInbound.FromNumber != "" {
		phone = req.CallInbound.FromNumber
	}

	logger.InfoContext(ctx, "Lookup webhook received",
		"event", req.Event, "phone", phone,
		"phone_key", domain.NormalizePhone(phone).String())

	if req.Event == "call_inbound" {
		h.respondCallInbound(ctx, w, logger, phone)
		return
	}
	h.respondDirect(ctx, w, logger, phone)
}

func (h *LookupHandler) respondCallInbound(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, phone string) {
	vars := dynamicVariables{ExistingCustomer: "false", Phone: phone}

	if phone != "" {
		result := h.svc.Lookup(ctx, phone)
		if result.Err != nil {
			logger.ErrorContext(ctx, "Lookup failed, answering as new customer", "error", result.Err)
		}
		if c := result.Customer; c != nil {
			vars.ExistingCustomer = "true"
			vars.FirstName = c.FirstName
			vars.LastName = c.LastName
			vars.ClientID = c.ID
			vars.Email = c.Email
			if c.Phone != "" {
				vars.Phone = c.Phone
			}
		}
	}

	var resp callInboundResponse
	resp.CallInbound.DynamicVariables = vars
	writeJSON(w, http.StatusOK, resp)
}

func (h *LookupHandler) respondDirect(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, phone string) {
	resp := directResponse{Phone: nullable(phone)}

	if phone != "" {
		result := h.svc.Lookup(ctx, phone)
		if result.Err != nil {
			logger.ErrorContext(ctx, "Lookup failed", "error", result.Err)
			resp.Error = result.Err.Error()
		}
		if c := result.Customer; c != nil {
			src := string(c.Source)
			resp.ExistingCustomer = true
			resp.FirstName = nullable(c.FirstName)
			resp.LastName = nullable(c.LastName)
			resp.ClientID = nullable(c.ID)
			resp.Email = nullable(c.Email)
			resp.Source = &src
			if c.Phone != "" {
				resp.Phone = nullable(c.Phone)
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// nullable maps empty strings to JSON null per the direct-mode contract.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
