package services

import (
	"context"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// SubscriptionService handles follow relationships between users and businesses
type SubscriptionService struct {
	repo         repositories.SubscriptionRepository
	businessRepo repositories.BusinessRepository
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo repositories.SubscriptionRepository, businessRepo repositories.BusinessRepository) *SubscriptionService {
	return &SubscriptionService{repo: repo, businessRepo: businessRepo}
}

// Subscribe subscribes the caller to a business. Duplicate subscriptions
// surface as a conflict from the repository's composite key.
func (s *SubscriptionService) Subscribe(ctx context.Context, principal *authz.Principal, businessID string) (*entities.UserBusinessSubscription, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}

	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		return nil, err
	}

	sub := &entities.UserBusinessSubscription{
		UserID:       principal.Subject,
		BusinessID:   businessID,
		SubscribedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe removes the caller's subscription to a business
func (s *SubscriptionService) Unsubscribe(ctx context.Context, principal *authz.Principal, businessID string) error {
	if principal == nil {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	return s.repo.Delete(ctx, principal.Subject, businessID)
}

// ListByUser retrieves a user's subscriptions. Callers see their own;
// admins see anyone's.
func (s *SubscriptionService) ListByUser(ctx context.Context, principal *authz.Principal, userID string) ([]*entities.UserBusinessSubscription, error) {
	if !authz.SubscriptionPolicy.Allows(principal, authz.ActionRead, userID) && !isSelf(principal, userID) {
		return nil, apperrors.NewForbiddenError("not allowed to read these subscriptions")
	}
	return s.repo.ListByUser(ctx, userID)
}

// ListByBusiness retrieves the subscribers of a business. The business owner
// and admins may see the list.
func (s *SubscriptionService) ListByBusiness(ctx context.Context, principal *authz.Principal, businessID string) ([]*entities.UserBusinessSubscription, error) {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if !authz.BusinessPolicy.Allows(principal, authz.ActionUpdate, business.UserID) {
		return nil, apperrors.NewForbiddenError("not allowed to read this subscriber list")
	}
	return s.repo.ListByBusiness(ctx, businessID)
}

func isSelf(principal *authz.Principal, userID string) bool {
	return principal != nil && principal.Subject == userID
}
