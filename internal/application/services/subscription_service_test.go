package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
	apperrors "github.com/crossroads-hq/crossroads-backend/pkg/errors"
)

// fakeSubscriptionRepo is an in-memory SubscriptionRepository
type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[string]*entities.UserBusinessSubscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: map[string]*entities.UserBusinessSubscription{}}
}

func subKey(userID, businessID string) string { return userID + "|" + businessID }

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *entities.UserBusinessSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := subKey(sub.UserID, sub.BusinessID)
	if _, ok := r.subs[key]; ok {
		return apperrors.NewConflictError("user is already subscribed to this business")
	}
	r.subs[key] = sub
	return nil
}

func (r *fakeSubscriptionRepo) Delete(ctx context.Context, userID, businessID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := subKey(userID, businessID)
	if _, ok := r.subs[key]; !ok {
		return apperrors.NewNotFoundError("subscription not found")
	}
	delete(r.subs, key)
	return nil
}

func (r *fakeSubscriptionRepo) ListByUser(ctx context.Context, userID string) ([]*entities.UserBusinessSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*entities.UserBusinessSubscription{}
	for _, s := range r.subs {
		if s.UserID == userID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (r *fakeSubscriptionRepo) ListByBusiness(ctx context.Context, businessID string) ([]*entities.UserBusinessSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []*entities.UserBusinessSubscription{}
	for _, s := range r.subs {
		if s.BusinessID == businessID {
			result = append(result, s)
		}
	}
	return result, nil
}

func TestSubscriptionService_SubscribeAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	businessRepo := newFakeBusinessRepo(&entities.Business{ID: "biz-1", Status: entities.BusinessStatusVerified})
	service := NewSubscriptionService(newFakeSubscriptionRepo(), businessRepo)

	sub, err := service.Subscribe(ctx, customerPrincipal("sub-1"), "biz-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", sub.UserID)
	assert.Equal(t, "biz-1", sub.BusinessID)
	assert.False(t, sub.SubscribedAt.IsZero())

	// Subscribing twice conflicts
	_, err = service.Subscribe(ctx, customerPrincipal("sub-1"), "biz-1")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeConflict, appErr.Type)

	require.NoError(t, service.Unsubscribe(ctx, customerPrincipal("sub-1"), "biz-1"))

	subs, err := service.ListByUser(ctx, customerPrincipal("sub-1"), "sub-1")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSubscriptionService_Subscribe_MissingBusiness(t *testing.T) {
	service := NewSubscriptionService(newFakeSubscriptionRepo(), newFakeBusinessRepo())

	_, err := service.Subscribe(context.Background(), customerPrincipal("sub-1"), "missing")
	assert.Error(t, err)
}

func TestSubscriptionService_ListByUser_Authorization(t *testing.T) {
	businessRepo := newFakeBusinessRepo(&entities.Business{ID: "biz-1", Status: entities.BusinessStatusVerified})
	service := NewSubscriptionService(newFakeSubscriptionRepo(), businessRepo)

	// Another customer cannot read someone else's subscriptions
	_, err := service.ListByUser(context.Background(), customerPrincipal("sub-2"), "sub-1")
	assert.Error(t, err)

	// Admins can
	_, err = service.ListByUser(context.Background(), adminPrincipal(), "sub-1")
	assert.NoError(t, err)
}

func TestSubscriptionService_ListByBusiness_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	businessRepo := newFakeBusinessRepo(&entities.Business{ID: "biz-1", UserID: "ada::sub-1", Status: entities.BusinessStatusVerified})
	service := NewSubscriptionService(newFakeSubscriptionRepo(), businessRepo)

	_, err := service.ListByBusiness(ctx, customerPrincipal("sub-2"), "biz-1")
	assert.Error(t, err)

	_, err = service.ListByBusiness(ctx, ownerPrincipal("sub-1", "ada"), "biz-1")
	assert.NoError(t, err)
}
