package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/graph-gophers/dataloader/v7"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/providers"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
	"github.com/crossroads-hq/crossroads-backend/pkg/utils"
)

// BusinessService handles business logic for business listings
type BusinessService struct {
	repo        repositories.BusinessRepository
	searchRepo  repositories.BusinessSearchRepository
	userRepo    repositories.UserRepository
	eventBus    providers.EventBus
	ownerLoader *dataloader.Loader[string, *entities.User]
}

// NewBusinessService creates a new business service
func NewBusinessService(
	repo repositories.BusinessRepository,
	searchRepo repositories.BusinessSearchRepository,
	userRepo repositories.UserRepository,
	eventBus providers.EventBus,
) *BusinessService {
	s := &BusinessService{
		repo:       repo,
		searchRepo: searchRepo,
		userRepo:   userRepo,
		eventBus:   eventBus,
	}
	s.ownerLoader = dataloader.NewBatchedLoader(
		s.batchLoadOwners,
		dataloader.WithWait[string, *entities.User](2*time.Millisecond),
		dataloader.WithBatchCapacity[string, *entities.User](100),
	)
	return s
}

// Create creates a new business listing. Non-admin callers always get
// PENDING_REVIEW regardless of the submitted status.
func (s *BusinessService) Create(ctx context.Context, principal *authz.Principal, business *entities.Business) error {
	if !authz.BusinessPolicy.Allows(principal, authz.ActionCreate, "") {
		return apperrors.NewForbiddenError("not allowed to create business listings")
	}
	if business.Name == "" {
		return apperrors.NewValidationError("business name is required")
	}

	if business.ID == "" {
		business.ID = uuid.New().String()
	}
	business.Categories = utils.NormalizeCategories(business.Categories)
	business.UserID = entities.ComposeOwnerKey(principal.Username, principal.Subject)
	if !authz.CanSetBusinessStatus(principal) || !business.Status.Valid() {
		business.Status = entities.BusinessStatusPendingReview
	}
	now := time.Now()
	business.CreatedAt = now
	business.UpdatedAt = now
	business.AverageRating = 0
	business.NumberOfRatings = 0

	if err := s.repo.Create(ctx, business); err != nil {
		return err
	}

	s.index(business)
	s.publish(ctx, entities.NewBusinessEvent(business.ID, entities.BusinessEventTypeProfileUpdate, map[string]interface{}{
		"created": true,
		"status":  string(business.Status),
	}))

	return nil
}

// GetByID retrieves a business by ID
func (s *BusinessService) GetByID(ctx context.Context, id string) (*entities.Business, error) {
	return s.repo.GetByID(ctx, id)
}

// Update updates a business listing. Only admins may change the moderation
// status; any other status edit from the caller is discarded.
func (s *BusinessService) Update(ctx context.Context, principal *authz.Principal, business *entities.Business) error {
	existing, err := s.repo.GetByID(ctx, business.ID)
	if err != nil {
		return err
	}

	if !authz.BusinessPolicy.Allows(principal, authz.ActionUpdate, existing.UserID) {
		return apperrors.NewForbiddenError("not allowed to update this business")
	}

	statusChanged := business.Status != existing.Status
	if statusChanged && !authz.CanSetBusinessStatus(principal) {
		business.Status = existing.Status
		statusChanged = false
	}
	if statusChanged && !business.Status.Valid() {
		return apperrors.NewValidationError("invalid business status")
	}

	business.Categories = utils.NormalizeCategories(business.Categories)

	// Owner, aggregate, and creation fields are immutable through updates
	business.UserID = existing.UserID
	business.AverageRating = existing.AverageRating
	business.NumberOfRatings = existing.NumberOfRatings
	business.CreatedAt = existing.CreatedAt
	business.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, business); err != nil {
		return err
	}

	s.index(business)

	if statusChanged {
		s.publish(ctx, entities.NewBusinessEvent(business.ID, entities.BusinessEventTypeStatusChange, map[string]interface{}{
			"old_status": string(existing.Status),
			"new_status": string(business.Status),
		}))
	} else {
		s.publish(ctx, entities.NewBusinessEvent(business.ID, entities.BusinessEventTypeProfileUpdate, nil))
	}

	return nil
}

// SetStatus changes the moderation status of a business. Admin only.
func (s *BusinessService) SetStatus(ctx context.Context, principal *authz.Principal, id string, status entities.BusinessStatus) (*entities.Business, error) {
	if !authz.CanSetBusinessStatus(principal) {
		return nil, apperrors.NewForbiddenError("only administrators can change business status")
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid business status")
	}

	business, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if business.Status == status {
		return business, nil
	}

	oldStatus := business.Status
	business.Status = status
	business.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, business); err != nil {
		return nil, err
	}

	s.index(business)
	s.publish(ctx, entities.NewBusinessEvent(business.ID, entities.BusinessEventTypeStatusChange, map[string]interface{}{
		"old_status": string(oldStatus),
		"new_status": string(status),
	}))

	return business, nil
}

// Delete deletes a business listing
func (s *BusinessService) Delete(ctx context.Context, principal *authz.Principal, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !authz.BusinessPolicy.Allows(principal, authz.ActionDelete, existing.UserID) {
		return apperrors.NewForbiddenError("not allowed to delete this business")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Delete(ctx, id); err != nil {
			log.Printf("Warning: Failed to delete business %s from index: %v", id, err)
		}
	}
	s.publish(ctx, entities.NewBusinessEvent(id, entities.BusinessEventTypeDeleted, nil))

	return nil
}

// List retrieves businesses with filters
func (s *BusinessService) List(ctx context.Context, filter repositories.BusinessFilter) ([]*entities.Business, error) {
	return s.repo.List(ctx, filter)
}

// ListByOwner retrieves the caller's own listings, including unverified ones
func (s *BusinessService) ListByOwner(ctx context.Context, principal *authz.Principal) ([]*entities.Business, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}
	ownerKey := entities.ComposeOwnerKey(principal.Username, principal.Subject)
	return s.repo.ListByOwner(ctx, ownerKey)
}

// ListByUser retrieves the listings owned by another user. The user
// themselves and admins see every status; everyone else sees only
// verified listings.
func (s *BusinessService) ListByUser(ctx context.Context, principal *authz.Principal, userID string) ([]*entities.Business, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	businesses, err := s.repo.ListByOwner(ctx, user.ProfileOwner)
	if err != nil {
		return nil, err
	}

	if principal != nil && (principal.IsAdmin() || principal.Subject == userID) {
		return businesses, nil
	}

	visible := make([]*entities.Business, 0, len(businesses))
	for _, business := range businesses {
		if business.Status == entities.BusinessStatusVerified {
			visible = append(visible, business)
		}
	}
	return visible, nil
}

// Search searches businesses using the search engine, falling back to the
// relational store when none is configured.
func (s *BusinessService) Search(ctx context.Context, params repositories.SearchParams) ([]*entities.Business, error) {
	// Public search only surfaces verified listings unless a status filter
	// was set explicitly by an admin surface.
	if len(params.Statuses) == 0 {
		params.Statuses = []entities.BusinessStatus{entities.BusinessStatusVerified}
	}
	// Category filters go through the same canonicalization as stored
	// listings so "restaurants" still hits the Restaurant facet.
	params.Categories = utils.NormalizeCategories(params.Categories)

	if s.searchRepo == nil {
		return s.searchFallback(ctx, params)
	}
	return s.searchRepo.Search(ctx, params)
}

// searchFallback serves search queries from the repository when the search
// engine is unavailable. Results are filtered in memory over a bounded fetch
// and keep the repository's ordering rather than relevance ranking.
func (s *BusinessService) searchFallback(ctx context.Context, params repositories.SearchParams) ([]*entities.Business, error) {
	businesses, err := s.repo.List(ctx, repositories.BusinessFilter{
		Statuses: params.Statuses,
		City:     params.City,
		Limit:    listingFetchLimit,
	})
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(params.Query))
	filtered := make([]*entities.Business, 0, len(businesses))
	for _, business := range businesses {
		if needle != "" && !matchesQuery(business, needle) {
			continue
		}
		if len(params.Categories) > 0 && !hasAnyCategory(business, params.Categories) {
			continue
		}
		if params.MinorityOwned != nil && business.IsMinorityOwned != *params.MinorityOwned {
			continue
		}
		if params.MinRating != nil && business.AverageRating < *params.MinRating {
			continue
		}
		filtered = append(filtered, business)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(filtered) {
		offset = len(filtered)
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], nil
}

// hasAnyCategory reports whether the business carries at least one of the
// requested categories.
func hasAnyCategory(business *entities.Business, categories []string) bool {
	for _, wanted := range categories {
		for _, category := range business.Categories {
			if strings.EqualFold(category, wanted) {
				return true
			}
		}
	}
	return false
}

// ListWithOwners retrieves businesses with their owning users resolved in a
// single batched lookup.
func (s *BusinessService) ListWithOwners(ctx context.Context, filter repositories.BusinessFilter) ([]*entities.BusinessWithOwner, error) {
	businesses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.resolveOwners(ctx, businesses), nil
}

func (s *BusinessService) resolveOwners(ctx context.Context, businesses []*entities.Business) []*entities.BusinessWithOwner {
	thunks := make([]func() (*entities.User, error), len(businesses))
	for i, business := range businesses {
		_, subject, ok := entities.ParseOwnerKey(business.UserID)
		if !ok {
			thunks[i] = nil
			continue
		}
		thunks[i] = s.ownerLoader.Load(ctx, subject)
	}

	results := make([]*entities.BusinessWithOwner, len(businesses))
	for i, business := range businesses {
		item := &entities.BusinessWithOwner{Business: business}
		if thunks[i] != nil {
			if owner, err := thunks[i](); err == nil {
				item.Owner = owner
			} else {
				log.Printf("Warning: Failed to resolve owner for business %s: %v", business.ID, err)
			}
		}
		results[i] = item
	}
	return results
}

// batchLoadOwners resolves user records for a batch of subject IDs
func (s *BusinessService) batchLoadOwners(ctx context.Context, ids []string) []*dataloader.Result[*entities.User] {
	results := make([]*dataloader.Result[*entities.User], len(ids))

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		for i := range results {
			results[i] = &dataloader.Result[*entities.User]{Error: err}
		}
		return results
	}

	byID := make(map[string]*entities.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	for i, id := range ids {
		if user, ok := byID[id]; ok {
			results[i] = &dataloader.Result[*entities.User]{Data: user}
		} else {
			results[i] = &dataloader.Result[*entities.User]{Error: apperrors.NewNotFoundError("user not found")}
		}
	}
	return results
}

func (s *BusinessService) index(business *entities.Business) {
	if s.searchRepo == nil {
		return
	}
	if err := s.searchRepo.Index(context.Background(), business); err != nil {
		// Eventual consistency: the indexer backfill reconciles misses
		log.Printf("Warning: Failed to index business %s: %v", business.ID, err)
	}
}

func (s *BusinessService) publish(ctx context.Context, event *entities.BusinessEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, providers.EventChannelBusinessUpdates, event); err != nil {
		log.Printf("Warning: Failed to publish business event %s: %v", event.ID, err)
	}
	if err := s.eventBus.Publish(ctx, providers.GetBusinessChannel(event.BusinessID), event); err != nil {
		log.Printf("Warning: Failed to publish business event %s: %v", event.ID, err)
	}
}
