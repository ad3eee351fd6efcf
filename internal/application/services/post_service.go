package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// PostService handles business logic for owner-authored posts
type PostService struct {
	repo         repositories.PostRepository
	businessRepo repositories.BusinessRepository
}

// NewPostService creates a new post service
func NewPostService(repo repositories.PostRepository, businessRepo repositories.BusinessRepository) *PostService {
	return &PostService{repo: repo, businessRepo: businessRepo}
}

// Create creates a post. The author must own the business the post promotes.
func (s *PostService) Create(ctx context.Context, principal *authz.Principal, post *entities.BusinessOwnerPost) error {
	if principal == nil {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	if post.Content == "" {
		return apperrors.NewValidationError("post content is required")
	}

	business, err := s.businessRepo.GetByID(ctx, post.BusinessID)
	if err != nil {
		return err
	}
	if !authz.BusinessPolicy.Allows(principal, authz.ActionUpdate, business.UserID) {
		return apperrors.NewForbiddenError("only the business owner can post for it")
	}

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	post.UserID = principal.Subject
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	return s.repo.Create(ctx, post)
}

// GetByID retrieves a post by ID
func (s *PostService) GetByID(ctx context.Context, id string) (*entities.BusinessOwnerPost, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete deletes a post; only the author or an admin may remove it
func (s *PostService) Delete(ctx context.Context, principal *authz.Principal, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.PostPolicy.Allows(principal, authz.ActionDelete, existing.UserID) {
		return apperrors.NewForbiddenError("not allowed to delete this post")
	}
	return s.repo.Delete(ctx, id)
}

// ListByBusiness retrieves posts for a business
func (s *PostService) ListByBusiness(ctx context.Context, businessID string, limit, offset int) ([]*entities.BusinessOwnerPost, error) {
	return s.repo.ListByBusiness(ctx, businessID, limit, offset)
}

// ListByUser retrieves posts authored by a user
func (s *PostService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entities.BusinessOwnerPost, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
