package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/adapters/storage"
	"github.com/crossroads-hq/crossroads-backend/internal/api/middleware"
	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/application/services"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/providers"
)

// Upload size cap, matching the largest image the clients produce
const maxUploadBytes = 10 << 20 // 10 MiB

// StorageHandler handles media upload and retrieval requests
type StorageHandler struct {
	provider        providers.StorageProvider
	businessService *services.BusinessService
	urlExpiry       time.Duration
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(provider providers.StorageProvider, businessService *services.BusinessService, urlExpiry time.Duration) *StorageHandler {
	return &StorageHandler{
		provider:        provider,
		businessService: businessService,
		urlExpiry:       urlExpiry,
	}
}

// UploadProfilePicture handles POST /api/storage/profile-picture
//
// Profile pictures are namespaced by the caller's identity, so no further
// authorization check is needed beyond authentication.
func (h *StorageHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	file, header, err := h.formFile(w, r)
	if err != nil {
		return // formFile already responded
	}
	defer file.Close()

	path := storage.ObjectPath(storage.DirectoryProfilePictures, principal.Subject, header.Filename)
	if err := h.provider.Upload(r.Context(), path, file, header.Size, nil); err != nil {
		respondWithAppError(w, err)
		return
	}

	url, err := h.provider.GetURL(r.Context(), path, h.urlExpiry)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"path": path,
		"url":  url,
	})
}

// UploadBusinessImage handles POST /api/businesses/{id}/images
func (h *StorageHandler) UploadBusinessImage(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("id")
	if businessID == "" {
		respondWithError(w, http.StatusBadRequest, "business ID is required")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())

	// Only the listing owner (or an admin) may attach images
	business, err := h.businessService.GetByID(r.Context(), businessID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if !authz.BusinessPolicy.Allows(principal, authz.ActionUpdate, business.UserID) {
		respondWithError(w, http.StatusForbidden, "not allowed to modify this business")
		return
	}

	file, header, err := h.formFile(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	path := storage.ObjectPath(storage.DirectoryBusinessImages, businessID, header.Filename)
	if err := h.provider.Upload(r.Context(), path, file, header.Size, nil); err != nil {
		respondWithAppError(w, err)
		return
	}

	url, err := h.provider.GetURL(r.Context(), path, h.urlExpiry)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"path": path,
		"url":  url,
	})
}

// GetMediaURL handles GET /api/storage/url?path=...
func (h *StorageHandler) GetMediaURL(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondWithError(w, http.StatusBadRequest, "path is required")
		return
	}
	if !validMediaPath(path) {
		respondWithError(w, http.StatusBadRequest, "invalid media path")
		return
	}

	url, err := h.provider.GetURL(r.Context(), path, h.urlExpiry)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}

// DeleteMedia handles DELETE /api/storage?path=...
func (h *StorageHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondWithError(w, http.StatusBadRequest, "path is required")
		return
	}

	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	// Callers may only delete objects in their own namespace; admins may
	// delete anything.
	if !principal.IsAdmin() && !strings.HasPrefix(path, storage.DirectoryProfilePictures+"/"+principal.Subject+"/") {
		respondWithError(w, http.StatusForbidden, "not allowed to delete this object")
		return
	}

	if err := h.provider.Delete(r.Context(), path); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// formFile pulls the "file" part out of a multipart form, responding with an
// error itself when the form is unusable.
func (h *StorageHandler) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return nil, nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file field is required")
		return nil, nil, err
	}
	return file, header, nil
}

// validMediaPath restricts URL generation to the known media namespaces
func validMediaPath(path string) bool {
	return strings.HasPrefix(path, storage.DirectoryProfilePictures+"/") ||
		strings.HasPrefix(path, storage.DirectoryBusinessImages+"/")
}
