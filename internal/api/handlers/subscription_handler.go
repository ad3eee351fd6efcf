package handlers

import (
	"net/http"

	"github.com/crossroads-hq/crossroads-backend/internal/api/middleware"
	"github.com/crossroads-hq/crossroads-backend/internal/application/services"
)

// SubscriptionHandler handles business follow/unfollow HTTP requests
type SubscriptionHandler struct {
	service *services.SubscriptionService
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(service *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// Subscribe handles POST /api/businesses/{id}/subscribe
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	sub, err := h.service.Subscribe(r.Context(), principal, businessID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /api/businesses/{id}/subscribe
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	if err := h.service.Unsubscribe(r.Context(), principal, businessID); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMySubscriptions handles GET /api/subscriptions
func (h *SubscriptionHandler) ListMySubscriptions(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	subs, err := h.service.ListByUser(r.Context(), principal, principal.Subject)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"subscriptions": subs,
		"count":         len(subs),
	})
}

// ListSubscribers handles GET /api/businesses/{id}/subscribers
func (h *SubscriptionHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	subs, err := h.service.ListByBusiness(r.Context(), principal, businessID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"subscribers": subs,
		"count":       len(subs),
	})
}
