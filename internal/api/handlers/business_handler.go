package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crossroads-hq/crossroads-backend/internal/api/middleware"
	"github.com/crossroads-hq/crossroads-backend/internal/application/services"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
)

// BusinessHandler handles business-related HTTP requests
type BusinessHandler struct {
	service *services.BusinessService
}

// NewBusinessHandler creates a new business handler
func NewBusinessHandler(service *services.BusinessService) *BusinessHandler {
	return &BusinessHandler{service: service}
}

// CreateBusiness handles POST /api/businesses
func (h *BusinessHandler) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	var business entities.Business
	if err := json.NewDecoder(r.Body).Decode(&business); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	if err := h.service.Create(r.Context(), principal, &business); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, business)
}

// GetBusiness handles GET /api/businesses/{id}
func (h *BusinessHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}

	business, err := h.service.GetByID(r.Context(), businessID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, business)
}

// UpdateBusiness handles PUT /api/businesses/{id}
func (h *BusinessHandler) UpdateBusiness(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}

	var business entities.Business
	if err := json.NewDecoder(r.Body).Decode(&business); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	business.ID = businessID

	principal := middleware.PrincipalFromContext(r.Context())
	if err := h.service.Update(r.Context(), principal, &business); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, business)
}

// DeleteBusiness handles DELETE /api/businesses/{id}
func (h *BusinessHandler) DeleteBusiness(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, businessID); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListBusinesses handles GET /api/businesses
//
// Public callers only see verified listings. Category and city filters map
// straight onto the repository filter.
func (h *BusinessHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 30, 100)

	filter := repositories.BusinessFilter{
		Statuses: []entities.BusinessStatus{entities.BusinessStatusVerified},
		Category: r.URL.Query().Get("category"),
		City:     r.URL.Query().Get("city"),
		Limit:    limit,
		Offset:   offset,
	}

	businesses, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list businesses")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"businesses": businesses,
		"count":      len(businesses),
	})
}

// ListMyBusinesses handles GET /api/businesses/mine
func (h *BusinessHandler) ListMyBusinesses(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())

	businesses, err := h.service.ListByOwner(r.Context(), principal)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"businesses": businesses,
		"count":      len(businesses),
	})
}

// SearchBusinesses handles GET /api/businesses/search
func (h *BusinessHandler) SearchBusinesses(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 30, 100)
	query := r.URL.Query()

	params := repositories.SearchParams{
		Query:  query.Get("q"),
		City:   query.Get("city"),
		Limit:  limit,
		Offset: offset,
	}
	if categories := query.Get("categories"); categories != "" {
		params.Categories = strings.Split(categories, ",")
	}
	if query.Get("minority_owned") == "true" {
		minority := true
		params.MinorityOwned = &minority
	}

	businesses, err := h.service.Search(r.Context(), params)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"businesses": businesses,
		"count":      len(businesses),
	})
}

// ListUserBusinesses handles GET /api/users/{id}/businesses
func (h *BusinessHandler) ListUserBusinesses(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	businesses, err := h.service.ListByUser(r.Context(), principal, userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"businesses": businesses,
		"count":      len(businesses),
	})
}
