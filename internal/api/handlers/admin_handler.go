package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/api/middleware"
	"github.com/crossroads-hq/crossroads-backend/internal/application/services"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

// AdminHandler handles administrator HTTP requests: the review table,
// status changes, and group management.
type AdminHandler struct {
	listingService  *services.ListingService
	businessService *services.BusinessService
	groupService    *services.GroupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	listingService *services.ListingService,
	businessService *services.BusinessService,
	groupService *services.GroupService,
) *AdminHandler {
	return &AdminHandler{
		listingService:  listingService,
		businessService: businessService,
		groupService:    groupService,
	}
}

// ListBusinesses handles GET /api/admin/businesses
//
// Query params: statuses (comma-separated), q, updated_after, updated_before
// (RFC 3339), page, page_size.
func (h *AdminHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := services.ListingParams{
		Query: query.Get("q"),
	}
	if raw := query.Get("statuses"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := entities.BusinessStatus(strings.TrimSpace(s))
			if !status.Valid() {
				respondWithError(w, http.StatusBadRequest, "unknown status: "+string(status))
				return
			}
			params.Statuses = append(params.Statuses, status)
		}
	}
	if raw := query.Get("updated_after"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "updated_after must be RFC 3339")
			return
		}
		params.UpdatedAfter = &ts
	}
	if raw := query.Get("updated_before"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "updated_before must be RFC 3339")
			return
		}
		params.UpdatedBefore = &ts
	}
	if raw := query.Get("page"); raw != "" {
		params.Page, _ = strconv.Atoi(raw)
	}
	if raw := query.Get("page_size"); raw != "" {
		params.PageSize, _ = strconv.Atoi(raw)
	}

	principal := middleware.PrincipalFromContext(r.Context())
	page, err := h.listingService.List(r.Context(), principal, params)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, page)
}

// SetBusinessStatus handles PUT /api/admin/businesses/{id}/status
func (h *AdminHandler) SetBusinessStatus(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}

	var body struct {
		Status entities.BusinessStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	business, err := h.businessService.SetStatus(r.Context(), principal, businessID, body.Status)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, business)
}

// ChangeGroup handles POST /api/admin/groups/change
func (h *AdminHandler) ChangeGroup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID    string `json:"user_id"`
		GroupName string `json:"group_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.UserID == "" || body.GroupName == "" {
		respondWithError(w, http.StatusBadRequest, "user_id and group_name are required")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	user, err := h.groupService.ChangeGroup(r.Context(), principal, body.UserID, body.GroupName)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// ListGroups handles GET /api/admin/users/{username}/groups
func (h *AdminHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		respondWithError(w, http.StatusBadRequest, "username is required")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	groups, err := h.groupService.ListGroups(r.Context(), principal, username)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"username": username,
		"groups":   groups,
	})
}
