package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crossroads-hq/crossroads-backend/internal/api/middleware"
	"github.com/crossroads-hq/crossroads-backend/internal/application/services"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

// PostHandler handles owner-post HTTP requests
type PostHandler struct {
	service *services.PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(service *services.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// CreatePost handles POST /api/businesses/{id}/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}

	var post entities.BusinessOwnerPost
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	post.BusinessID = businessID

	principal := middleware.PrincipalFromContext(r.Context())
	if err := h.service.Create(r.Context(), principal, &post); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, post)
}

// ListPosts handles GET /api/businesses/{id}/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}

	limit, offset := parsePagination(r, 20, 100)
	posts, err := h.service.ListByBusiness(r.Context(), businessID, limit, offset)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"posts": posts,
		"count": len(posts),
	})
}

// DeletePost handles DELETE /api/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if postID == "" {
		respondWithError(w, http.StatusBadRequest, "post ID is required")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, postID); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
