package services

import (
	"context"
	"strings"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	// Upper bound on rows pulled for in-memory filtering of the admin table
	listingFetchLimit = 5000
)

// ListingParams describes the admin review table query: which statuses to
// show, a free-text needle, an update-time window, and the requested page.
type ListingParams struct {
	Statuses      []entities.BusinessStatus
	Query         string
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
	Page          int
	PageSize      int
}

// ListingPage is one page of the admin review table
type ListingPage struct {
	Items      []*entities.Business `json:"items"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalItems int                  `json:"total_items"`
	TotalPages int                  `json:"total_pages"`
}

// ListingService backs the admin review table: status filters, text search
// across name, description, and categories, and page clamping.
type ListingService struct {
	repo repositories.BusinessRepository
}

// NewListingService creates a new listing service
func NewListingService(repo repositories.BusinessRepository) *ListingService {
	return &ListingService{repo: repo}
}

// List produces one page of the admin review table. Filtering preserves the
// repository's ordering; an out-of-range page clamps to the nearest valid
// page instead of erroring.
func (s *ListingService) List(ctx context.Context, principal *authz.Principal, params ListingParams) (*ListingPage, error) {
	if principal == nil || !principal.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only administrators can access the review table")
	}

	businesses, err := s.repo.List(ctx, repositories.BusinessFilter{
		Statuses: params.Statuses,
		Limit:    listingFetchLimit,
	})
	if err != nil {
		return nil, err
	}

	filtered := filterListings(businesses, params)
	return paginate(filtered, params.Page, params.PageSize), nil
}

// filterListings applies the text and time-window filters in order,
// keeping the input ordering intact.
func filterListings(businesses []*entities.Business, params ListingParams) []*entities.Business {
	needle := strings.ToLower(strings.TrimSpace(params.Query))

	filtered := make([]*entities.Business, 0, len(businesses))
	for _, business := range businesses {
		if needle != "" && !matchesQuery(business, needle) {
			continue
		}
		if params.UpdatedAfter != nil && business.UpdatedAt.Before(*params.UpdatedAfter) {
			continue
		}
		if params.UpdatedBefore != nil && business.UpdatedAt.After(*params.UpdatedBefore) {
			continue
		}
		filtered = append(filtered, business)
	}
	return filtered
}

// matchesQuery reports whether the needle appears in the business name,
// description, or any category, case-insensitively.
func matchesQuery(business *entities.Business, needle string) bool {
	if strings.Contains(strings.ToLower(business.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(business.Description), needle) {
		return true
	}
	for _, category := range business.Categories {
		if strings.Contains(strings.ToLower(category), needle) {
			return true
		}
	}
	return false
}

// paginate slices one page out of the filtered set. Pages are 1-based;
// requests below 1 clamp to the first page and requests past the end clamp
// to the last page. An empty set still reports one (empty) page.
func paginate(items []*entities.Business, page, pageSize int) *ListingPage {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	totalItems := len(items)
	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return &ListingPage{
		Items:      items[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}
