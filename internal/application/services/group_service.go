package services

import (
	"context"
	"log"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/providers"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// GroupService moves users between identity-provider groups and keeps the
// denormalized group name on the directory record in step.
type GroupService struct {
	userRepo repositories.UserRepository
	identity providers.IdentityProvider
}

// NewGroupService creates a new group service
func NewGroupService(userRepo repositories.UserRepository, identity providers.IdentityProvider) *GroupService {
	return &GroupService{userRepo: userRepo, identity: identity}
}

var knownGroups = map[string]bool{
	entities.GroupAdmins:    true,
	entities.GroupCustomers: true,
	entities.GroupOwners:    true,
}

// ChangeGroup removes the user from its current group, adds it to the target
// group, and records the new group on the user record. Admin only. The
// identity provider remains the source of truth; the record mirror is
// updated last so a partial failure never reports a group the provider
// does not hold.
func (s *GroupService) ChangeGroup(ctx context.Context, principal *authz.Principal, userID, targetGroup string) (*entities.User, error) {
	if principal == nil || !principal.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only administrators can change groups")
	}
	if !knownGroups[targetGroup] {
		return nil, apperrors.NewValidationError("unknown group: " + targetGroup)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.GroupName == targetGroup {
		return user, nil
	}

	if user.GroupName != "" {
		if err := s.identity.RemoveUserFromGroup(ctx, user.Username, user.GroupName); err != nil {
			return nil, err
		}
	}
	if err := s.identity.AddUserToGroup(ctx, user.Username, targetGroup); err != nil {
		// The user is now in neither group; surface the error and leave
		// the record showing the old group until an admin retries.
		log.Printf("Failed to add user %s to group %s after removal from %s: %v",
			user.Username, targetGroup, user.GroupName, err)
		return nil, err
	}

	if err := s.userRepo.UpdateGroupName(ctx, userID, targetGroup); err != nil {
		log.Printf("Failed to record group change for user %s: %v", userID, err)
		return nil, err
	}

	user.GroupName = targetGroup
	return user, nil
}

// ListGroups returns the groups the identity provider holds for a user.
// Admin only.
func (s *GroupService) ListGroups(ctx context.Context, principal *authz.Principal, username string) ([]string, error) {
	if principal == nil || !principal.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only administrators can list groups")
	}
	return s.identity.ListGroupsForUser(ctx, username)
}
