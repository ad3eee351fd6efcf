package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
)

func ownerPrincipal(subject, username string) *authz.Principal {
	return &authz.Principal{Subject: subject, Username: username, Groups: []string{entities.GroupOwners}}
}

func TestBusinessService_Create_DefaultsToPendingReview(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBusinessRepo()
	searchRepo := &fakeSearchRepo{}
	eventBus := &fakeEventBus{}
	service := NewBusinessService(repo, searchRepo, newFakeUserRepo(), eventBus)

	business := &entities.Business{
		Name:   "Corner Bakery",
		Status: entities.BusinessStatusVerified, // submitted status is ignored for non-admins
	}
	require.NoError(t, service.Create(ctx, ownerPrincipal("sub-1", "ada"), business))

	assert.Equal(t, entities.BusinessStatusPendingReview, business.Status)
	assert.Equal(t, "ada::sub-1", business.UserID)
	assert.NotEmpty(t, business.ID)
	assert.NotEmpty(t, searchRepo.indexed)
}

func TestBusinessService_Create_NormalizesCategories(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBusinessRepo()
	service := NewBusinessService(repo, &fakeSearchRepo{}, newFakeUserRepo(), &fakeEventBus{})

	business := &entities.Business{
		Name:       "Corner Bakery",
		Categories: []string{"restaurants", "food", "coffee shop"},
	}
	require.NoError(t, service.Create(ctx, ownerPrincipal("sub-1", "ada"), business))

	assert.Equal(t, []string{"Restaurant", "Cafe"}, business.Categories)
}

func TestBusinessService_ListByUser_HidesUnverifiedFromStrangers(t *testing.T) {
	ctx := context.Background()
	owner := &entities.User{ID: "sub-1", ProfileOwner: "ada::sub-1", Username: "ada"}
	repo := newFakeBusinessRepo(
		&entities.Business{ID: "biz-1", UserID: "ada::sub-1", Status: entities.BusinessStatusVerified},
		&entities.Business{ID: "biz-2", UserID: "ada::sub-1", Status: entities.BusinessStatusPendingReview},
	)
	service := NewBusinessService(repo, nil, newFakeUserRepo(owner), nil)

	visible, err := service.ListByUser(ctx, customerPrincipal("sub-9"), "sub-1")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "biz-1", visible[0].ID)

	all, err := service.ListByUser(ctx, ownerPrincipal("sub-1", "ada"), "sub-1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	asAdmin, err := service.ListByUser(ctx, adminPrincipal(), "sub-1")
	require.NoError(t, err)
	assert.Len(t, asAdmin, 2)
}

func TestBusinessService_Create_CustomerForbidden(t *testing.T) {
	service := NewBusinessService(newFakeBusinessRepo(), nil, newFakeUserRepo(), nil)

	err := service.Create(context.Background(), customerPrincipal("sub-1"), &entities.Business{Name: "Shop"})
	assert.Error(t, err)
}

func TestBusinessService_SetStatus_AdminOnly(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBusinessRepo(&entities.Business{ID: "biz-1", UserID: "ada::sub-1", Status: entities.BusinessStatusPendingReview})
	eventBus := &fakeEventBus{}
	service := NewBusinessService(repo, nil, newFakeUserRepo(), eventBus)

	_, err := service.SetStatus(ctx, ownerPrincipal("sub-1", "ada"), "biz-1", entities.BusinessStatusVerified)
	assert.Error(t, err, "owners cannot verify their own listings")

	business, err := service.SetStatus(ctx, adminPrincipal(), "biz-1", entities.BusinessStatusVerified)
	require.NoError(t, err)
	assert.Equal(t, entities.BusinessStatusVerified, business.Status)
	assert.Contains(t, eventBus.eventTypes(), entities.BusinessEventTypeStatusChange)
}

func TestBusinessService_SetStatus_InvalidStatus(t *testing.T) {
	repo := newFakeBusinessRepo(&entities.Business{ID: "biz-1", Status: entities.BusinessStatusPendingReview})
	service := NewBusinessService(repo, nil, newFakeUserRepo(), nil)

	_, err := service.SetStatus(context.Background(), adminPrincipal(), "biz-1", "ON_FIRE")
	assert.Error(t, err)
}

func TestBusinessService_Update_OwnerCannotChangeStatus(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBusinessRepo(&entities.Business{
		ID:     "biz-1",
		Name:   "Cafe",
		UserID: "ada::sub-1",
		Status: entities.BusinessStatusPendingReview,
	})
	service := NewBusinessService(repo, nil, newFakeUserRepo(), nil)

	err := service.Update(ctx, ownerPrincipal("sub-1", "ada"), &entities.Business{
		ID:     "biz-1",
		Name:   "Cafe Updated",
		Status: entities.BusinessStatusVerified,
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, "Cafe Updated", stored.Name)
	assert.Equal(t, entities.BusinessStatusPendingReview, stored.Status, "status edits from non-admins are discarded")
	assert.Equal(t, "ada::sub-1", stored.UserID)
}

func TestBusinessService_Delete_OnlyOwnerOrAdmin(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBusinessRepo(&entities.Business{ID: "biz-1", UserID: "ada::sub-1", Status: entities.BusinessStatusVerified})
	service := NewBusinessService(repo, nil, newFakeUserRepo(), nil)

	err := service.Delete(ctx, customerPrincipal("sub-other"), "biz-1")
	assert.Error(t, err)

	err = service.Delete(ctx, ownerPrincipal("sub-1", "ada"), "biz-1")
	assert.NoError(t, err)
}

func TestBusinessService_ListWithOwners(t *testing.T) {
	ctx := context.Background()
	repo := newFakeBusinessRepo(
		&entities.Business{ID: "biz-1", UserID: "ada::sub-1", Status: entities.BusinessStatusVerified},
		&entities.Business{ID: "biz-2", UserID: "grace::sub-2", Status: entities.BusinessStatusVerified},
		&entities.Business{ID: "biz-3", UserID: "not-an-owner-key", Status: entities.BusinessStatusVerified},
	)
	userRepo := newFakeUserRepo(
		&entities.User{ID: "sub-1", Username: "ada"},
		&entities.User{ID: "sub-2", Username: "grace"},
	)
	service := NewBusinessService(repo, nil, userRepo, nil)

	results, err := service.ListWithOwners(ctx, repositories.BusinessFilter{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NotNil(t, results[0].Owner)
	assert.Equal(t, "ada", results[0].Owner.Username)
	require.NotNil(t, results[1].Owner)
	assert.Equal(t, "grace", results[1].Owner.Username)
	assert.Nil(t, results[2].Owner, "malformed owner keys resolve to no owner")
}

func TestBusinessService_Search_FallsBackToRepository(t *testing.T) {
	repo := newFakeBusinessRepo(
		&entities.Business{ID: "biz-1", Name: "Velvet Bean Cafe", Description: "Single-origin coffee and pastries", Status: entities.BusinessStatusVerified, Categories: []string{"Cafe"}},
		&entities.Business{ID: "biz-2", Name: "Southside Smokehouse", Status: entities.BusinessStatusVerified, Categories: []string{"Restaurant"}},
		&entities.Business{ID: "biz-3", Name: "Pop-Up Coffee Cart", Status: entities.BusinessStatusPendingReview, Categories: []string{"Cafe"}},
	)
	service := NewBusinessService(repo, nil, newFakeUserRepo(), nil)

	results, err := service.Search(context.Background(), repositories.SearchParams{Query: "coffee"})
	require.NoError(t, err)
	require.Len(t, results, 1, "unverified matches stay hidden without a search engine too")
	assert.Equal(t, "biz-1", results[0].ID)

	results, err = service.Search(context.Background(), repositories.SearchParams{Categories: []string{"restaurants"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "biz-2", results[0].ID)
}

func TestBusinessService_Search_DefaultsToVerified(t *testing.T) {
	searchRepo := &recordingSearchRepo{}
	service := NewBusinessService(newFakeBusinessRepo(), searchRepo, newFakeUserRepo(), nil)

	_, err := service.Search(context.Background(), repositories.SearchParams{Query: "coffee"})
	require.NoError(t, err)
	require.Len(t, searchRepo.lastParams.Statuses, 1)
	assert.Equal(t, entities.BusinessStatusVerified, searchRepo.lastParams.Statuses[0])
}
