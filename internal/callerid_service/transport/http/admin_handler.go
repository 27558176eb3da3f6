package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/app"
	"github.com/keepitcut/callerid-lookup/internal/callerid_service/domain"
)

// AdminHandler serves the auxiliary endpoints: health, out-of-band cache
// registration, and the lookup diagnostic.
type AdminHandler struct {
	cache      *app.PhoneCache
	svc        PhoneLookuper
	validate   *validator.Validate
	locationID string
	logger     *slog.Logger
}

func NewAdminHandler(cache *app.PhoneCache, svc PhoneLookuper, validate *validator.Validate, locationID string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		cache:      cache,
		svc:        svc,
		validate:   validate,
		locationID: locationID,
		logger:     logger.With("component", "admin_handler"),
	}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Post("/cache/register", h.HandleRegisterCustomer)
	r.Get("/test-lookup", h.HandleTestLookup)
}

func (h *AdminHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"location_id": h.locationID,
		"cache_size":  h.cache.Len(),
	})
}

// registerCustomerRequest is posted by the booking flow when it creates a new
// customer upstream, covering the window where the directory has not caught
// up yet.
type registerCustomerRequest struct {
	ClientID  string `json:"client_id" validate:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone" validate:"required"`
}

func (h *AdminHandler) HandleRegisterCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode cache registration", "error", err)
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		h.logger.WarnContext(ctx, "Cache registration failed validation", "error", err)
		http.Error(w, "client_id and phone are required", http.StatusBadRequest)
		return
	}

	key := h.cache.Register(domain.CacheEntry{
		ClientID:  req.ClientID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if key.IsEmpty() {
		http.Error(w, "phone has no digits", http.StatusBadRequest)
		return
	}

	h.logger.InfoContext(ctx, "Customer registered in local cache",
		"client_id", req.ClientID, "phone_key", key.String(), "cache_size", h.cache.Len())

	writeJSON(w, http.StatusOK, map[string]any{
		"registered": true,
		"phone_key":  key.String(),
		"cache_size": h.cache.Len(),
	})
}

// HandleTestLookup runs a lookup for a query-supplied phone and reports the
// elapsed time, for validating upstream behavior without placing a call.
func (h *AdminHandler) HandleTestLookup(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		writeJSON(w, http.StatusOK, map[string]any{"error": "Phone query parameter required"})
		return
	}

	key := domain.NormalizePhone(phone)
	start := time.Now()
	result := h.svc.Lookup(r.Context(), phone)

	resp := map[string]any{
		"search_phone": key.String(),
		"elapsed_ms":   time.Since(start).Milliseconds(),
		"found":        nil,
	}
	if result.Customer != nil {
		resp["found"] = result.Customer
	}
	if result.Err != nil {
		resp["error"] = result.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
