package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

func TestBusinessPolicy_OwnerCanUpdateOwnListing(t *testing.T) {
	principal := &authz.Principal{Subject: "sub-1", Username: "alice", Groups: []string{entities.GroupCustomers}}

	assert.True(t, authz.BusinessPolicy.Allows(principal, authz.ActionUpdate, "sub-1"))
	assert.False(t, authz.BusinessPolicy.Allows(principal, authz.ActionUpdate, "sub-2"))
}

func TestBusinessPolicy_OwnerKeyMatching(t *testing.T) {
	principal := &authz.Principal{Subject: "sub-1", Username: "alice", Groups: nil}

	ownerKey := entities.ComposeOwnerKey("alice", "sub-1")
	assert.True(t, authz.BusinessPolicy.Allows(principal, authz.ActionDelete, ownerKey))

	otherKey := entities.ComposeOwnerKey("bob", "sub-1")
	assert.False(t, authz.BusinessPolicy.Allows(principal, authz.ActionDelete, otherKey))
}

func TestBusinessPolicy_OwnerGroupCannotTouchOthersListings(t *testing.T) {
	principal := &authz.Principal{Subject: "sub-3", Username: "eve", Groups: []string{entities.GroupOwners}}

	assert.True(t, authz.BusinessPolicy.Allows(principal, authz.ActionCreate, ""))
	assert.False(t, authz.BusinessPolicy.Allows(principal, authz.ActionUpdate, "frank::sub-4"))
	assert.False(t, authz.BusinessPolicy.Allows(principal, authz.ActionDelete, "frank::sub-4"))
}

func TestBusinessPolicy_AdminOverridesOwnership(t *testing.T) {
	admin := &authz.Principal{Subject: "admin-sub", Username: "root", Groups: []string{entities.GroupAdmins}}

	assert.True(t, authz.BusinessPolicy.Allows(admin, authz.ActionDelete, "someone-else"))
	assert.True(t, authz.BusinessPolicy.Allows(admin, authz.ActionRead, ""))
}

func TestUserPolicy_SelfUpdateButNotDelete(t *testing.T) {
	principal := &authz.Principal{Subject: "sub-9", Username: "carol", Groups: []string{entities.GroupCustomers}}

	assert.True(t, authz.UserPolicy.Allows(principal, authz.ActionUpdate, "sub-9"))
	assert.False(t, authz.UserPolicy.Allows(principal, authz.ActionDelete, "sub-9"))
}

func TestSubscriptionPolicy_NoUpdateForOwner(t *testing.T) {
	principal := &authz.Principal{Subject: "sub-5", Username: "dave"}

	assert.True(t, authz.SubscriptionPolicy.Allows(principal, authz.ActionCreate, "sub-5"))
	assert.False(t, authz.SubscriptionPolicy.Allows(principal, authz.ActionUpdate, "sub-5"))
}

func TestCanSetBusinessStatus(t *testing.T) {
	admin := &authz.Principal{Subject: "a", Groups: []string{entities.GroupAdmins}}
	owner := &authz.Principal{Subject: "b", Groups: []string{entities.GroupOwners}}

	assert.True(t, authz.CanSetBusinessStatus(admin))
	assert.False(t, authz.CanSetBusinessStatus(owner))
	assert.False(t, authz.CanSetBusinessStatus(nil))
}

func TestPolicy_NilPrincipal(t *testing.T) {
	assert.False(t, authz.BusinessPolicy.Allows(nil, authz.ActionRead, "sub-1"))
}
