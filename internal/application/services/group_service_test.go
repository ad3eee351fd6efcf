package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

func TestGroupService_ChangeGroup(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo(&entities.User{
		ID:        "sub-1",
		Username:  "ada",
		GroupName: entities.GroupCustomers,
	})
	identity := newFakeIdentityProvider()

	service := NewGroupService(userRepo, identity)

	user, err := service.ChangeGroup(ctx, adminPrincipal(), "sub-1", entities.GroupOwners)
	require.NoError(t, err)

	assert.Equal(t, entities.GroupOwners, user.GroupName)
	assert.Equal(t, []string{"ada/CUSTOMERS"}, identity.removed)
	assert.Equal(t, []string{"ada/OWNERS"}, identity.added)

	stored, err := userRepo.GetByID(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, entities.GroupOwners, stored.GroupName, "record mirrors the provider group")
}

func TestGroupService_ChangeGroup_SameGroupIsNoop(t *testing.T) {
	userRepo := newFakeUserRepo(&entities.User{ID: "sub-1", Username: "ada", GroupName: entities.GroupCustomers})
	identity := newFakeIdentityProvider()

	service := NewGroupService(userRepo, identity)

	_, err := service.ChangeGroup(context.Background(), adminPrincipal(), "sub-1", entities.GroupCustomers)
	require.NoError(t, err)
	assert.Empty(t, identity.removed)
	assert.Empty(t, identity.added)
}

func TestGroupService_ChangeGroup_AddFailureKeepsOldRecord(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo(&entities.User{ID: "sub-1", Username: "ada", GroupName: entities.GroupCustomers})
	identity := newFakeIdentityProvider()
	identity.addErr = errors.New("identity provider unavailable")

	service := NewGroupService(userRepo, identity)

	_, err := service.ChangeGroup(ctx, adminPrincipal(), "sub-1", entities.GroupOwners)
	require.Error(t, err)

	stored, err := userRepo.GetByID(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, entities.GroupCustomers, stored.GroupName, "record never shows a group the provider does not hold")
}

func TestGroupService_ChangeGroup_Validation(t *testing.T) {
	userRepo := newFakeUserRepo(&entities.User{ID: "sub-1", Username: "ada", GroupName: entities.GroupCustomers})
	service := NewGroupService(userRepo, newFakeIdentityProvider())

	_, err := service.ChangeGroup(context.Background(), adminPrincipal(), "sub-1", "SUPERUSERS")
	assert.Error(t, err)
}

func TestGroupService_ChangeGroup_NonAdminForbidden(t *testing.T) {
	userRepo := newFakeUserRepo(&entities.User{ID: "sub-1", Username: "ada", GroupName: entities.GroupCustomers})
	service := NewGroupService(userRepo, newFakeIdentityProvider())

	customer := &authz.Principal{Subject: "sub-2", Username: "eve", Groups: []string{entities.GroupCustomers}}
	_, err := service.ChangeGroup(context.Background(), customer, "sub-1", entities.GroupOwners)
	assert.Error(t, err)
}
