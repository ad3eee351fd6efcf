package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossroads-hq/crossroads-backend/internal/authz"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

func customerPrincipal(subject string) *authz.Principal {
	return &authz.Principal{Subject: subject, Username: "user-" + subject, Groups: []string{entities.GroupCustomers}}
}

func TestReviewService_Create_RefreshesAggregate(t *testing.T) {
	ctx := context.Background()
	businessRepo := newFakeBusinessRepo(&entities.Business{ID: "biz-1", Name: "Cafe", Status: entities.BusinessStatusVerified})
	reviewRepo := newFakeReviewRepo()
	searchRepo := &fakeSearchRepo{}
	eventBus := &fakeEventBus{}

	service := NewReviewService(reviewRepo, businessRepo, searchRepo, eventBus)

	require.NoError(t, service.Create(ctx, customerPrincipal("sub-1"), &entities.Review{BusinessID: "biz-1", Rating: 5}))
	require.NoError(t, service.Create(ctx, customerPrincipal("sub-2"), &entities.Review{BusinessID: "biz-1", Rating: 2}))

	business, err := businessRepo.GetByID(ctx, "biz-1")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, business.AverageRating, 0.001)
	assert.Equal(t, 2, business.NumberOfRatings)

	assert.NotEmpty(t, searchRepo.indexed, "rating change reaches the search index")
	assert.Contains(t, eventBus.eventTypes(), entities.BusinessEventTypeRatingUpdate)
}

func TestReviewService_Create_Validation(t *testing.T) {
	businessRepo := newFakeBusinessRepo(&entities.Business{ID: "biz-1", Status: entities.BusinessStatusVerified})
	service := NewReviewService(newFakeReviewRepo(), businessRepo, nil, nil)

	err := service.Create(context.Background(), customerPrincipal("sub-1"), &entities.Review{BusinessID: "biz-1", Rating: 0})
	assert.Error(t, err)

	err = service.Create(context.Background(), customerPrincipal("sub-1"), &entities.Review{BusinessID: "biz-1", Rating: 6})
	assert.Error(t, err)

	err = service.Create(context.Background(), nil, &entities.Review{BusinessID: "biz-1", Rating: 4})
	assert.Error(t, err)

	err = service.Create(context.Background(), customerPrincipal("sub-1"), &entities.Review{BusinessID: "missing", Rating: 4})
	assert.Error(t, err, "reviews require an existing business")
}

func TestReviewService_Delete_RefreshesAggregate(t *testing.T) {
	ctx := context.Background()
	businessRepo := newFakeBusinessRepo(&entities.Business{ID: "biz-1", AverageRating: 4, NumberOfRatings: 1, Status: entities.BusinessStatusVerified})
	reviewRepo := newFakeReviewRepo(&entities.Review{ID: "rev-1", BusinessID: "biz-1", UserID: "sub-1", Rating: 4})

	service := NewReviewService(reviewRepo, businessRepo, nil, nil)

	require.NoError(t, service.Delete(ctx, customerPrincipal("sub-1"), "rev-1"))

	business, err := businessRepo.GetByID(ctx, "biz-1")
	require.NoError(t, err)
	assert.Zero(t, business.AverageRating)
	assert.Zero(t, business.NumberOfRatings)
}

func TestReviewService_Delete_OnlyAuthorOrAdmin(t *testing.T) {
	reviewRepo := newFakeReviewRepo(&entities.Review{ID: "rev-1", BusinessID: "biz-1", UserID: "sub-1", Rating: 4})
	businessRepo := newFakeBusinessRepo(&entities.Business{ID: "biz-1", Status: entities.BusinessStatusVerified})
	service := NewReviewService(reviewRepo, businessRepo, nil, nil)

	err := service.Delete(context.Background(), customerPrincipal("sub-other"), "rev-1")
	assert.Error(t, err)

	err = service.Delete(context.Background(), adminPrincipal(), "rev-1")
	assert.NoError(t, err)
}

func TestReviewService_Update_KeepsImmutableFields(t *testing.T) {
	ctx := context.Background()
	reviewRepo := newFakeReviewRepo(&entities.Review{ID: "rev-1", BusinessID: "biz-1", UserID: "sub-1", Rating: 4})
	businessRepo := newFakeBusinessRepo(&entities.Business{ID: "biz-1", Status: entities.BusinessStatusVerified})
	service := NewReviewService(reviewRepo, businessRepo, nil, nil)

	err := service.Update(ctx, customerPrincipal("sub-1"), &entities.Review{
		ID:         "rev-1",
		BusinessID: "biz-other",
		UserID:     "someone-else",
		Rating:     3,
	})
	require.NoError(t, err)

	stored, err := reviewRepo.GetByID(ctx, "rev-1")
	require.NoError(t, err)
	assert.Equal(t, "biz-1", stored.BusinessID)
	assert.Equal(t, "sub-1", stored.UserID)
	assert.Equal(t, 3, stored.Rating)
}
