package repositories

import (
	"context"

	"github.com/crossroads-hq/crossroads-backend/internal/domain/entities"
)

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	// Create creates a subscription
	Create(ctx context.Context, sub *entities.UserBusinessSubscription) error

	// Delete removes a subscription
	Delete(ctx context.Context, userID, businessID string) error

	// ListByUser retrieves a user's subscriptions
	ListByUser(ctx context.Context, userID string) ([]*entities.UserBusinessSubscription, error)

	// ListByBusiness retrieves subscribers of a business
	ListByBusiness(ctx context.Context, businessID string) ([]*entities.UserBusinessSubscription, error)
}
