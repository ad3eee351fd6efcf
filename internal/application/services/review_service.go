package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/providers"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// ReviewService handles business logic for reviews and keeps the
// denormalized rating aggregates on the business in step.
type ReviewService struct {
	repo         repositories.ReviewRepository
	businessRepo repositories.BusinessRepository
	searchRepo   repositories.BusinessSearchRepository
	eventBus     providers.EventBus
}

// NewReviewService creates a new review service
func NewReviewService(
	repo repositories.ReviewRepository,
	businessRepo repositories.BusinessRepository,
	searchRepo repositories.BusinessSearchRepository,
	eventBus providers.EventBus,
) *ReviewService {
	return &ReviewService{
		repo:         repo,
		businessRepo: businessRepo,
		searchRepo:   searchRepo,
		eventBus:     eventBus,
	}
}

// Create creates a review and recomputes the business rating aggregate
func (s *ReviewService) Create(ctx context.Context, principal *authz.Principal, review *entities.Review) error {
	if principal == nil {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	if review.Rating < 1 || review.Rating > 5 {
		return apperrors.NewValidationError("rating must be between 1 and 5")
	}

	// The business must exist and be visible before it can be reviewed
	if _, err := s.businessRepo.GetByID(ctx, review.BusinessID); err != nil {
		return err
	}

	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	review.UserID = principal.Subject
	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now

	if err := s.repo.Create(ctx, review); err != nil {
		return err
	}

	s.refreshAggregate(ctx, review.BusinessID)
	return nil
}

// GetByID retrieves a review by ID
func (s *ReviewService) GetByID(ctx context.Context, id string) (*entities.Review, error) {
	return s.repo.GetByID(ctx, id)
}

// Update updates a review; only the author or an admin may edit it
func (s *ReviewService) Update(ctx context.Context, principal *authz.Principal, review *entities.Review) error {
	existing, err := s.repo.GetByID(ctx, review.ID)
	if err != nil {
		return err
	}
	if !authz.ReviewPolicy.Allows(principal, authz.ActionUpdate, existing.UserID) {
		return apperrors.NewForbiddenError("not allowed to update this review")
	}
	if review.Rating < 1 || review.Rating > 5 {
		return apperrors.NewValidationError("rating must be between 1 and 5")
	}

	review.UserID = existing.UserID
	review.BusinessID = existing.BusinessID
	review.CreatedAt = existing.CreatedAt
	review.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, review); err != nil {
		return err
	}

	if review.Rating != existing.Rating {
		s.refreshAggregate(ctx, review.BusinessID)
	}
	return nil
}

// Delete deletes a review and recomputes the business rating aggregate
func (s *ReviewService) Delete(ctx context.Context, principal *authz.Principal, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.ReviewPolicy.Allows(principal, authz.ActionDelete, existing.UserID) {
		return apperrors.NewForbiddenError("not allowed to delete this review")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.refreshAggregate(ctx, existing.BusinessID)
	return nil
}

// ListByBusiness retrieves reviews for a business
func (s *ReviewService) ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]*entities.Review, error) {
	return s.repo.ListByBusiness(ctx, businessID, limit, offset)
}

// ListByUser retrieves reviews authored by a user
func (s *ReviewService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.Review, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// refreshAggregate recomputes the average rating and count for a business
// from its reviews, persists them, and broadcasts a rating update.
func (s *ReviewService) refreshAggregate(ctx context.Context, businessID string) {
	avg, count, err := s.repo.AggregateByBusiness(ctx, businessID)
	if err != nil {
		log.Printf("Warning: Failed to aggregate ratings for business %s: %v", businessID, err)
		return
	}

	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		log.Printf("Warning: Failed to load business %s for rating update: %v", businessID, err)
		return
	}

	business.AverageRating = avg
	business.NumberOfRatings = count
	business.UpdatedAt = time.Now()

	if err := s.businessRepo.Update(ctx, business); err != nil {
		log.Printf("Warning: Failed to persist rating aggregate for business %s: %v", businessID, err)
		return
	}

	if s.searchRepo != nil {
		if err := s.searchRepo.Index(ctx, business); err != nil {
			log.Printf("Warning: Failed to reindex business %s after rating update: %v", businessID, err)
		}
	}
	if s.eventBus != nil {
		event := entities.NewBusinessEvent(businessID, entities.BusinessEventTypeRatingUpdate, map[string]interface{}{
			"average_rating":    avg,
			"number_of_ratings": count,
		})
		if err := s.eventBus.Publish(ctx, providers.EventChannelBusinessUpdates, event); err != nil {
			log.Printf("Warning: Failed to publish rating update for business %s: %v", businessID, err)
		}
	}
}
