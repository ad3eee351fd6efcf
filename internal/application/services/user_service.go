package services

import (
	"context"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// UserService handles business logic for user profiles
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetByID retrieves a user by ID. Callers may read their own profile;
// admins may read anyone's.
func (s *UserService) GetByID(ctx context.Context, principal *authz.Principal, id string) (*entities.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.UserPolicy.Allows(principal, authz.ActionRead, user.ProfileOwner) {
		return nil, apperrors.NewForbiddenError("not allowed to read this profile")
	}
	return user, nil
}

// Me retrieves the caller's own profile via the composite owner key
func (s *UserService) Me(ctx context.Context, principal *authz.Principal) (*entities.User, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}
	ownerKey := entities.ComposeOwnerKey(principal.Username, principal.Subject)
	return s.repo.GetByOwnerKey(ctx, ownerKey)
}

// Update updates a user profile. The owner key, username, and denormalized
// group name are never writable through this path.
func (s *UserService) Update(ctx context.Context, principal *authz.Principal, user *entities.User) error {
	existing, err := s.repo.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if !authz.UserPolicy.Allows(principal, authz.ActionUpdate, existing.ProfileOwner) {
		return apperrors.NewForbiddenError("not allowed to update this profile")
	}

	user.ProfileOwner = existing.ProfileOwner
	user.Username = existing.Username
	user.GroupName = existing.GroupName
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()

	return s.repo.Update(ctx, user)
}

// List retrieves users. Admin only.
func (s *UserService) List(ctx context.Context, principal *authz.Principal, limit, offset int) ([]*entities.User, error) {
	if principal == nil || !principal.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only administrators can list users")
	}
	return s.repo.List(ctx, limit, offset)
}

// Delete deletes a user record. Admin only.
func (s *UserService) Delete(ctx context.Context, principal *authz.Principal, id string) error {
	if principal == nil || !principal.IsAdmin() {
		return apperrors.NewForbiddenError("only administrators can delete users")
	}
	return s.repo.Delete(ctx, id)
}
